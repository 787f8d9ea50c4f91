package main

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/dd0wney/floodroute/pkg/collectors"
	"github.com/dd0wney/floodroute/pkg/geo"
	"github.com/dd0wney/floodroute/pkg/health"
	"github.com/dd0wney/floodroute/pkg/logging"
	"github.com/dd0wney/floodroute/pkg/routing"
	"github.com/dd0wney/floodroute/pkg/statuspub"
	"github.com/dd0wney/floodroute/pkg/validation"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// apiServer exposes C6's route and evacuation queries, the crowd-feedback
// intake, and the health/status endpoints over HTTP, following the
// teacher's flat Server-struct-with-handler-methods shape.
type apiServer struct {
	routing *routing.Agent
	scouts  *collectors.ScoutCollector
	checker *health.Checker
	status  statuspub.Probe
	log     logging.Logger
}

func newAPIServer(routingAgent *routing.Agent, scouts *collectors.ScoutCollector, checker *health.Checker, status statuspub.Probe, log logging.Logger) *apiServer {
	return &apiServer{routing: routingAgent, scouts: scouts, checker: checker, status: status, log: log}
}

func (s *apiServer) router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/route", s.route).Methods("POST")
	r.HandleFunc("/evacuate", s.evacuate).Methods("POST")
	r.HandleFunc("/feedback", s.feedback).Methods("POST")
	r.HandleFunc("/healthz", s.healthz).Methods("GET")
	r.HandleFunc("/readyz", s.readyz).Methods("GET")
	r.HandleFunc("/livez", s.livez).Methods("GET")
	r.HandleFunc("/status", s.statusHandler).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")
	return r
}

func (s *apiServer) route(w http.ResponseWriter, r *http.Request) {
	var req validation.RouteQueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "malformed request body", http.StatusBadRequest)
		return
	}
	if err := validation.ValidateRouteQueryRequest(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := s.routing.Route(r.Context(), routing.RouteRequest{
		Start: geo.Point{Lat: req.StartLat, Lon: req.StartLon},
		End:   geo.Point{Lat: req.EndLat, Lon: req.EndLon},
		Mode:  routing.Mode(req.Mode),
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

func (s *apiServer) evacuate(w http.ResponseWriter, r *http.Request) {
	var req validation.EvacuationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "malformed request body", http.StatusBadRequest)
		return
	}
	if err := validation.ValidateEvacuationRequest(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	candidates := make([]geo.Point, len(req.CandLats))
	for i := range req.CandLats {
		candidates[i] = geo.Point{Lat: req.CandLats[i], Lon: req.CandLons[i]}
	}

	result, err := s.routing.Evacuate(r.Context(), routing.EvacuationRequest{
		From:       geo.Point{Lat: req.FromLat, Lon: req.FromLon},
		Candidates: candidates,
		Mode:       routing.Mode(req.Mode),
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

// feedback accepts a crowd-submitted hazard report (§6 "Feedback
// submission") and folds it into C4's backlog for the next tick.
func (s *apiServer) feedback(w http.ResponseWriter, r *http.Request) {
	var req validation.FeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "malformed request body", http.StatusBadRequest)
		return
	}
	if err := validation.ValidateFeedbackRequest(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.scouts.SubmitFeedback(req.Lat, req.Lon, req.Kind, req.Severity, time.Now())

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]string{"status": "queued"})
}

func (s *apiServer) healthz(w http.ResponseWriter, r *http.Request) {
	writeHealthResponse(w, s.checker.Check())
}

func (s *apiServer) readyz(w http.ResponseWriter, r *http.Request) {
	writeHealthResponse(w, s.checker.CheckReadiness())
}

func (s *apiServer) livez(w http.ResponseWriter, r *http.Request) {
	writeHealthResponse(w, s.checker.CheckLiveness())
}

func writeHealthResponse(w http.ResponseWriter, resp health.Response) {
	w.Header().Set("Content-Type", "application/json")
	if resp.Status != health.StatusHealthy {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	json.NewEncoder(w).Encode(resp)
}

func (s *apiServer) statusHandler(w http.ResponseWriter, r *http.Request) {
	st, ok := s.status.Latest()
	w.Header().Set("Content-Type", "application/json")
	if !ok {
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(map[string]string{"status": "no tick has completed yet"})
		return
	}
	json.NewEncoder(w).Encode(st)
}
