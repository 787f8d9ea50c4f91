// Package validation provides two complementary validators: a fluent
// ConfigValidator for the plain Go config structs each agent builds at
// startup (fusion weights, scheduler tick bounds, routing speeds), and a
// struct-tag validator (go-playground/validator) for inbound ingestion
// requests (route queries, scout feedback submissions).
package validation

import (
	"errors"
	"fmt"
)

// ConfigValidator collects every validation failure on a config struct
// rather than stopping at the first, so a misconfigured deployment gets
// one complete error report instead of a fix-one-rerun loop.
type ConfigValidator struct {
	errors []error
	name   string
}

// NewConfigValidator starts a validator reporting errors under configName.
func NewConfigValidator(configName string) *ConfigValidator {
	return &ConfigValidator{name: configName, errors: make([]error, 0)}
}

func (cv *ConfigValidator) Required(field, value string) *ConfigValidator {
	if value == "" {
		cv.errors = append(cv.errors, fmt.Errorf("%s.%s: required field is empty", cv.name, field))
	}
	return cv
}

func (cv *ConfigValidator) Positive(field string, value int) *ConfigValidator {
	if value <= 0 {
		cv.errors = append(cv.errors, fmt.Errorf("%s.%s: value %d must be positive", cv.name, field, value))
	}
	return cv
}

func (cv *ConfigValidator) PositiveFloat(field string, value float64) *ConfigValidator {
	if value <= 0 {
		cv.errors = append(cv.errors, fmt.Errorf("%s.%s: value %f must be positive", cv.name, field, value))
	}
	return cv
}

func (cv *ConfigValidator) RangeFloat(field string, value, min, max float64) *ConfigValidator {
	if value < min || value > max {
		cv.errors = append(cv.errors, fmt.Errorf("%s.%s: value %f is outside range [%f, %f]", cv.name, field, value, min, max))
	}
	return cv
}

// SumsTo validates that a set of named weights sums to target within tol.
// Used for the fusion composite weights (alpha+beta+gamma = 1.0, §4.5).
func (cv *ConfigValidator) SumsTo(field string, weights []float64, target, tol float64) *ConfigValidator {
	var sum float64
	for _, w := range weights {
		sum += w
	}
	if sum < target-tol || sum > target+tol {
		cv.errors = append(cv.errors, fmt.Errorf("%s.%s: weights sum to %f, want %f (+/- %f)", cv.name, field, sum, target, tol))
	}
	return cv
}

func (cv *ConfigValidator) Custom(field string, fn func() error) *ConfigValidator {
	if err := fn(); err != nil {
		cv.errors = append(cv.errors, fmt.Errorf("%s.%s: %w", cv.name, field, err))
	}
	return cv
}

func (cv *ConfigValidator) HasErrors() bool { return len(cv.errors) > 0 }

func (cv *ConfigValidator) Errors() []error { return cv.errors }

// Validate returns a combined error if any validations failed, nil otherwise.
func (cv *ConfigValidator) Validate() error {
	switch len(cv.errors) {
	case 0:
		return nil
	case 1:
		return cv.errors[0]
	default:
		return fmt.Errorf("%s validation failed with %d errors: %v", cv.name, len(cv.errors), cv.errors[0])
	}
}

// Validatable is implemented by every agent's config struct.
type Validatable interface {
	Validate() error
}

// ValidateConfig runs a Validatable's own Validate method, rejecting nil.
func ValidateConfig(config Validatable) error {
	if config == nil {
		return errors.New("config cannot be nil")
	}
	return config.Validate()
}
