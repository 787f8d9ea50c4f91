package validation

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// RouteQueryRequest is the wire shape of an inbound route query, validated
// before it is converted into a routing.RouteRequest.
type RouteQueryRequest struct {
	StartLat float64 `json:"startLat" validate:"required,latitude"`
	StartLon float64 `json:"startLon" validate:"required,longitude"`
	EndLat   float64 `json:"endLat" validate:"required,latitude"`
	EndLon   float64 `json:"endLon" validate:"required,longitude"`
	Mode     string  `json:"mode" validate:"required,oneof=safest balanced fastest"`
}

// EvacuationRequest is the wire shape of an inbound evacuation query: one
// origin and a set of candidate safe-zone destinations.
type EvacuationRequest struct {
	FromLat    float64   `json:"fromLat" validate:"required,latitude"`
	FromLon    float64   `json:"fromLon" validate:"required,longitude"`
	CandLats   []float64 `json:"candidateLats" validate:"required,min=1,dive,latitude"`
	CandLons   []float64 `json:"candidateLons" validate:"required,min=1,dive,longitude"`
	Mode       string    `json:"mode" validate:"required,oneof=safest balanced fastest"`
}

// FeedbackRequest is the wire shape of a crowd-feedback submission (§6
// "Feedback submission"), before it is folded into a synthetic ScoutReport.
type FeedbackRequest struct {
	Lat      float64 `json:"lat" validate:"required,latitude"`
	Lon      float64 `json:"lon" validate:"required,longitude"`
	Kind     string  `json:"kind" validate:"required,oneof=flooded blocked clear traffic other"`
	Severity float64 `json:"severity" validate:"omitempty,gte=0,lte=1"`
}

// ValidateRouteQueryRequest validates an inbound route query.
func ValidateRouteQueryRequest(req *RouteQueryRequest) error {
	if req == nil {
		return errors.New("route query request cannot be nil")
	}
	if err := validate.Struct(req); err != nil {
		return formatValidationError(err)
	}
	return nil
}

// ValidateEvacuationRequest validates an inbound evacuation query, including
// that the candidate latitude/longitude slices are the same length.
func ValidateEvacuationRequest(req *EvacuationRequest) error {
	if req == nil {
		return errors.New("evacuation request cannot be nil")
	}
	if err := validate.Struct(req); err != nil {
		return formatValidationError(err)
	}
	if len(req.CandLats) != len(req.CandLons) {
		return fmt.Errorf("candidateLats and candidateLons must be the same length, got %d and %d", len(req.CandLats), len(req.CandLons))
	}
	return nil
}

// ValidateFeedbackRequest validates an inbound crowd-feedback submission.
func ValidateFeedbackRequest(req *FeedbackRequest) error {
	if req == nil {
		return errors.New("feedback request cannot be nil")
	}
	return formatValidationError(validate.Struct(req))
}

// formatValidationError converts the first go-playground/validator failure
// into a single user-facing message.
func formatValidationError(err error) error {
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	for _, e := range verrs {
		field := e.Field()
		switch e.Tag() {
		case "required":
			return fmt.Errorf("%s: field is required", field)
		case "latitude":
			return fmt.Errorf("%s: must be a valid latitude", field)
		case "longitude":
			return fmt.Errorf("%s: must be a valid longitude", field)
		case "oneof":
			return fmt.Errorf("%s: must be one of %s", field, e.Param())
		case "gte":
			return fmt.Errorf("%s: must be at least %s", field, e.Param())
		case "lte":
			return fmt.Errorf("%s: must not exceed %s", field, e.Param())
		case "min":
			return fmt.Errorf("%s: must have at least %s element(s)", field, e.Param())
		default:
			return fmt.Errorf("%s: validation failed (%s)", field, e.Tag())
		}
	}
	return err
}
