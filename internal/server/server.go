// internal/server/server.go
package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"loan-risk-workers/internal/common/errors"
	"loan-risk-workers/internal/common/logger"
	"loan-risk-workers/internal/common/validation"
	"loan-risk-workers/internal/models"
	"loan-risk-workers/internal/pipeline"
	"loan-risk-workers/internal/store"
)

// Server is the HTTP scoring surface. A nil pipeline puts the server in
// degraded mode: health stays up, scoring answers 503.
type Server struct {
	pipeline  *pipeline.Pipeline
	validator *validation.ApplicationValidator
	store     *store.DecisionStore
	logger    logger.Logger
}

// PredictResponse is the wire format of one scoring call.
type PredictResponse struct {
	DecisionID    string   `json:"decision_id"`
	Status        string   `json:"status"`
	RiskScore     float64  `json:"risk_score"`
	ThresholdUsed float64  `json:"threshold_used"`
	Reasons       []string `json:"reasons"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// New builds the server. The store may be nil when persistence is disabled.
func New(p *pipeline.Pipeline, validator *validation.ApplicationValidator, decisions *store.DecisionStore, log logger.Logger) *Server {
	return &Server{
		pipeline:  p,
		validator: validator,
		store:     decisions,
		logger:    log.WithFields(map[string]interface{}{"component": "http"}),
	}
}

// Routes returns the HTTP handler with all endpoints registered.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/ready", s.handleReady)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/api/v1/predict", s.handlePredict)
	mux.HandleFunc("/api/v1/decisions/", s.handleGetDecision)
	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	if s.pipeline == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "degraded",
			"reason": "model not loaded",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ready",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
		return
	}
	if s.pipeline == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "model not loaded"})
		return
	}

	payload, err := readBody(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "unreadable request body"})
		return
	}

	result, err := s.validator.ValidateJSON(payload)
	if err != nil {
		s.logger.Error("validation error", map[string]interface{}{"error": err.Error()})
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "validation unavailable"})
		return
	}
	if !result.Valid {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:   "application failed validation",
			Code:    string(errors.ErrCodeValidationFailed),
			Details: result.Describe(),
		})
		return
	}

	var raw models.RawApplication
	if err := json.Unmarshal(payload, &raw); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed application payload"})
		return
	}

	decision, err := s.pipeline.Score(r.Context(), &raw)
	if err != nil {
		s.writeScoringError(w, err)
		return
	}

	if s.store != nil {
		if err := s.store.Save(r.Context(), decision, &raw); err != nil {
			// Persistence must not block the caller's answer.
			s.logger.Warn("decision save failed", map[string]interface{}{
				"decisionId": decision.DecisionID,
				"error":      err.Error(),
			})
		}
	}

	writeJSON(w, http.StatusOK, PredictResponse{
		DecisionID:    decision.DecisionID,
		Status:        decision.Status,
		RiskScore:     decision.RiskScore,
		ThresholdUsed: decision.ThresholdUsed,
		Reasons:       decision.Reasons,
	})
}

func (s *Server) handleGetDecision(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
		return
	}
	if s.store == nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "decision storage disabled"})
		return
	}

	decisionID := strings.TrimPrefix(r.URL.Path, "/api/v1/decisions/")
	if decisionID == "" || strings.Contains(decisionID, "/") {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "missing decision id"})
		return
	}

	record, err := s.store.Get(r.Context(), decisionID)
	if err != nil {
		if errors.CodeOf(err) == errors.ErrCodeDecisionNotFound {
			writeJSON(w, http.StatusNotFound, errorResponse{Error: "decision not found"})
			return
		}
		s.logger.Error("decision lookup failed", map[string]interface{}{
			"decisionId": decisionID,
			"error":      err.Error(),
		})
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "decision lookup failed"})
		return
	}

	writeJSON(w, http.StatusOK, record)
}

func (s *Server) writeScoringError(w http.ResponseWriter, err error) {
	code := errors.CodeOf(err)
	resp := errorResponse{
		Error: "scoring failed",
		Code:  string(code),
	}
	if stdErr, ok := err.(*errors.StandardError); ok {
		resp.Details = stdErr.Details
	}

	status := http.StatusInternalServerError
	if errors.IsClientError(err) {
		status = http.StatusBadRequest
		resp.Error = "application could not be scored"
	}

	s.logger.Error("scoring request failed", map[string]interface{}{
		"code":  string(code),
		"error": err.Error(),
	})
	writeJSON(w, status, resp)
}

func readBody(r *http.Request) ([]byte, error) {
	defer r.Body.Close()
	return io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
}

// maxBodyBytes caps request bodies; a single application is a few KB.
const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// ListenAndServe runs the HTTP server until the context is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string, readTimeout, writeTimeout, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Routes(),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
