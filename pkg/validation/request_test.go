package validation

import "testing"

func TestValidateRouteQueryRequest(t *testing.T) {
	valid := &RouteQueryRequest{StartLat: 14.65, StartLon: 121.10, EndLat: 14.63, EndLon: 121.12, Mode: "safest"}
	if err := ValidateRouteQueryRequest(valid); err != nil {
		t.Errorf("expected valid request, got %v", err)
	}

	badMode := &RouteQueryRequest{StartLat: 14.65, StartLon: 121.10, EndLat: 14.63, EndLon: 121.12, Mode: "quickest"}
	if err := ValidateRouteQueryRequest(badMode); err == nil {
		t.Error("expected error for unrecognized mode")
	}

	badCoord := &RouteQueryRequest{StartLat: 200, StartLon: 121.10, EndLat: 14.63, EndLon: 121.12, Mode: "safest"}
	if err := ValidateRouteQueryRequest(badCoord); err == nil {
		t.Error("expected error for out-of-range latitude")
	}
}

func TestValidateEvacuationRequestMismatchedCandidates(t *testing.T) {
	req := &EvacuationRequest{
		FromLat:  14.65,
		FromLon:  121.10,
		CandLats: []float64{14.60, 14.61},
		CandLons: []float64{121.08},
		Mode:     "balanced",
	}
	if err := ValidateEvacuationRequest(req); err == nil {
		t.Error("expected error for mismatched candidate slice lengths")
	}
}

func TestValidateFeedbackRequest(t *testing.T) {
	valid := &FeedbackRequest{Lat: 14.65, Lon: 121.10, Kind: "flooded", Severity: 0.7}
	if err := ValidateFeedbackRequest(valid); err != nil {
		t.Errorf("expected valid feedback, got %v", err)
	}

	badKind := &FeedbackRequest{Lat: 14.65, Lon: 121.10, Kind: "unknown"}
	if err := ValidateFeedbackRequest(badKind); err == nil {
		t.Error("expected error for unrecognized kind")
	}

	badSeverity := &FeedbackRequest{Lat: 14.65, Lon: 121.10, Kind: "flooded", Severity: 1.5}
	if err := ValidateFeedbackRequest(badSeverity); err == nil {
		t.Error("expected error for severity outside [0,1]")
	}
}
