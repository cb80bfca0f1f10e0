package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tabeebchat/triage/internal/engine"
	"github.com/tabeebchat/triage/internal/model"
	"github.com/tabeebchat/triage/internal/severity"
	"github.com/tabeebchat/triage/internal/testutil"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	eng := engine.New(testutil.LoadSnapshot(t), severity.DefaultTable())
	return New(eng, "127.0.0.1:0")
}

func postJSON(t *testing.T, s *Server, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestHandleTriage(t *testing.T) {
	s := testServer(t)

	w := postJSON(t, s, "/v1/triage", `{"text": "أعاني من خمول الغدة الدرقية"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	var result model.TriageResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, "endocrine-disorders", result.ModelLabel)
	assert.Greater(t, result.Confidence, 0.9)
	assert.NotEmpty(t, result.Answer)
	assert.NotEmpty(t, result.Explanation)
}

func TestHandlePredict(t *testing.T) {
	s := testServer(t)

	w := postJSON(t, s, "/v1/predict", `{"text": "ألم في الصدر مع خفقان"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var result map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, "cardiology", result["model_label"])
	assert.Equal(t, "high", result["severity_level"])
	assert.Equal(t, true, result["urgent"])
}

func TestHandleRetrieve_LowConfidence(t *testing.T) {
	s := testServer(t)

	// Soft conditions surface as similarity 0 with a fallback answer,
	// never as an HTTP error.
	w := postJSON(t, s, "/v1/retrieve", `{"text": ""}`)
	require.Equal(t, http.StatusOK, w.Code)

	var result map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, 0.0, result["similarity"])
	assert.NotEmpty(t, result["answer"])
}

func TestHandleTriage_InvalidBody(t *testing.T) {
	s := testServer(t)

	w := postJSON(t, s, "/v1/triage", `{not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleHealth(t *testing.T) {
	s := testServer(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHandleHealth_NotReady(t *testing.T) {
	eng := engine.NewWithConfig(nil, severity.DefaultTable(), engine.DefaultConfig())
	s := New(eng, "127.0.0.1:0")

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	triage := postJSON(t, s, "/v1/triage", `{"text": "نص"}`)
	assert.Equal(t, http.StatusServiceUnavailable, triage.Code)
}
