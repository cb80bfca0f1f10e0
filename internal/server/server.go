// Package server exposes the inference engine over HTTP for the chat
// layer. It carries no chat state of its own: every request is a single
// text in, a structured triage result out.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tabeebchat/triage/internal/common"
	"github.com/tabeebchat/triage/internal/engine"
)

// maxBodyBytes bounds request bodies; symptom descriptions are short.
const maxBodyBytes = 64 * 1024

// Server routes HTTP requests to the inference engine.
type Server struct {
	engine *engine.Engine
	http   *http.Server
}

// New constructs a Server listening on addr.
func New(eng *engine.Engine, addr string) *Server {
	s := &Server{engine: eng}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/triage", s.withRequestLog("triage", s.handleTriage))
	mux.HandleFunc("POST /v1/predict", s.withRequestLog("predict", s.handlePredict))
	mux.HandleFunc("POST /v1/retrieve", s.withRequestLog("retrieve", s.handleRetrieve))
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())

	s.http = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return s
}

// ListenAndServe blocks serving requests until the context is canceled,
// then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.http.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.http.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// Handler returns the underlying handler, for tests.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

type triageRequest struct {
	Text string `json:"text"`
}

func (s *Server) withRequestLog(route string, next func(http.ResponseWriter, *http.Request)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.NewString()
		w.Header().Set("X-Request-ID", requestID)

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next(rec, r)

		requestsTotal.WithLabelValues(route, strconv.Itoa(rec.status)).Inc()
		slog.Info("Handled request",
			"route", route,
			"request_id", requestID,
			"status", rec.status,
			"duration", time.Since(start))
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	if _, err := s.engine.Snapshot(); err != nil {
		http.Error(w, "snapshot not loaded", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleTriage(w http.ResponseWriter, r *http.Request) {
	text, ok := s.readText(w, r)
	if !ok {
		return
	}

	timer := time.Now()
	result, err := s.engine.Triage(text)
	inferenceLatency.WithLabelValues("triage").Observe(time.Since(timer).Seconds())
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	if result.AnswerConfidence == 0 {
		lowConfidenceTotal.Inc()
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	text, ok := s.readText(w, r)
	if !ok {
		return
	}

	timer := time.Now()
	result, err := s.engine.PredictSpecialtyAndMeta(text)
	inferenceLatency.WithLabelValues("predict").Observe(time.Since(timer).Seconds())
	if err != nil {
		s.writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"specialty":      result.Category.DisplayName,
		"model_label":    result.Category.InternalLabel,
		"severity_level": string(result.Severity),
		"urgent":         result.Urgent,
		"confidence":     result.Confidence,
	})
}

func (s *Server) handleRetrieve(w http.ResponseWriter, r *http.Request) {
	text, ok := s.readText(w, r)
	if !ok {
		return
	}

	timer := time.Now()
	result, err := s.engine.RetrieveBestAnswer(text)
	inferenceLatency.WithLabelValues("retrieve").Observe(time.Since(timer).Seconds())
	if err != nil {
		s.writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"answer":          result.Answer,
		"source_question": result.SourceQuestion,
		"similarity":      result.Similarity,
	})
}

// readText decodes the request body. An empty text is allowed: soft
// conditions are the engine's job to encode, not the transport's to
// reject.
func (s *Server) readText(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req triageRequest
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return "", false
	}
	return req.Text, true
}

func (s *Server) writeEngineError(w http.ResponseWriter, err error) {
	if errors.Is(err, common.ErrSnapshotNotReady) {
		http.Error(w, "engine not ready", http.StatusServiceUnavailable)
		return
	}
	common.LogError(err, "Inference failed", nil)
	http.Error(w, "internal error", http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}
