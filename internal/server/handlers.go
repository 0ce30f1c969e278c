package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/alexandrapadonou/tagStackoverflow/internal/inference"
	"github.com/alexandrapadonou/tagStackoverflow/internal/model"
	"github.com/alexandrapadonou/tagStackoverflow/internal/monitor"
	"github.com/alexandrapadonou/tagStackoverflow/internal/server/middleware"
)

type InfoResponse struct {
	Name      string   `json:"name"`
	Version   string   `json:"version"`
	Endpoints []string `json:"endpoints"`
}

type HealthResponse = inference.Health

type ModelStatus struct {
	Metadata model.Metadata     `json:"metadata"`
	Config   model.BundleConfig `json:"config"`
}

type PolicyDefaults struct {
	TopK      int      `json:"top_k,omitempty"`
	Threshold *float64 `json:"threshold,omitempty"`
	MaxTopK   int      `json:"max_top_k"`
}

type StatusResponse struct {
	Health    inference.Health  `json:"health"`
	Version   string            `json:"version"`
	Uptime    string            `json:"uptime"`
	Model     *ModelStatus      `json:"model,omitempty"`
	Defaults  PolicyDefaults    `json:"defaults"`
	Resources *monitor.Snapshot `json:"resources,omitempty"`
}

type LabelsResponse struct {
	Count  int      `json:"count"`
	Labels []string `json:"labels"`
}

// PredictRequest is the body of POST /predict. TopK and Threshold are
// optional overrides.
type PredictRequest struct {
	Text      *string  `json:"text"`
	TopK      *int     `json:"top_k,omitempty"`
	Threshold *float64 `json:"threshold,omitempty"`
}

type PredictResponse = inference.Result

type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		s.writeError(w, r, http.StatusNotFound, "not found")
		return
	}

	resp := InfoResponse{
		Name:    "tagger",
		Version: s.version,
		Endpoints: []string{
			"GET /health",
			"GET /status",
			"GET /labels",
			"POST /predict",
		},
	}

	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	h := s.service.Health()

	status := http.StatusOK
	if h.Status != inference.StatusOK {
		status = http.StatusServiceUnavailable
	}
	s.writeJSON(w, status, h)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := StatusResponse{
		Health:  s.service.Health(),
		Version: s.version,
		Uptime:  time.Since(s.started).Round(time.Second).String(),
		Defaults: PolicyDefaults{
			TopK:      s.config.Inference.DefaultTopK,
			Threshold: s.config.Inference.DefaultThreshold,
			MaxTopK:   s.service.MaxTopK(),
		},
	}

	if meta, cfg, ok := s.service.Model(); ok {
		resp.Model = &ModelStatus{Metadata: meta, Config: cfg}
	}
	if s.aggregator != nil {
		resp.Resources = s.aggregator.Snapshot()
	}

	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleLabels(w http.ResponseWriter, r *http.Request) {
	labels := s.service.Labels()
	if labels == nil {
		s.writeError(w, r, http.StatusServiceUnavailable, inference.ErrModelUnavailable.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, LabelsResponse{Count: len(labels), Labels: labels})
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	var req PredictRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			s.writeError(w, r, http.StatusRequestEntityTooLarge, "request body too large")
		case errors.Is(err, io.EOF):
			s.writeError(w, r, http.StatusBadRequest, "request body is empty")
		default:
			s.writeError(w, r, http.StatusBadRequest, "invalid request body")
		}
		return
	}

	if req.Text == nil {
		s.writeError(w, r, http.StatusBadRequest, "text field is required")
		return
	}

	res, err := s.service.Predict(r.Context(), *req.Text, inference.Options{
		TopK:      req.TopK,
		Threshold: req.Threshold,
	})
	if err != nil {
		var invalid *inference.InvalidInputError
		switch {
		case errors.As(err, &invalid):
			s.writeError(w, r, http.StatusBadRequest, invalid.Error())
		case errors.Is(err, inference.ErrModelUnavailable):
			s.writeError(w, r, http.StatusServiceUnavailable, err.Error())
		default:
			s.logger.Error("prediction failed",
				"error", err,
				"request_id", middleware.RequestIDFrom(r.Context()),
			)
			s.writeError(w, r, http.StatusInternalServerError, "prediction failed")
		}
		return
	}

	s.writeJSON(w, http.StatusOK, res)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	s.writeJSON(w, status, ErrorResponse{
		Error:     msg,
		RequestID: middleware.RequestIDFrom(r.Context()),
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("failed to encode JSON response",
			"error", err,
			"status", status,
		)
	}
}
