package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alexandrapadonou/tagStackoverflow/internal/config"
	"github.com/alexandrapadonou/tagStackoverflow/internal/inference"
	"github.com/alexandrapadonou/tagStackoverflow/internal/model"
	"github.com/alexandrapadonou/tagStackoverflow/internal/monitor"
	"github.com/alexandrapadonou/tagStackoverflow/internal/server/middleware"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type mockMonitor struct {
	name string
	data any
}

func (m *mockMonitor) Name() string {
	return m.name
}

func (m *mockMonitor) Collect() (any, error) {
	return m.data, nil
}

type provider struct {
	state *model.State
}

func (p provider) Current() *model.State { return p.state }

// testState scores python 0.9, api 0.4 and ml 0.2 whatever the input: the
// coefficients are zero and the intercepts are the logits of those scores.
func testState(t *testing.T) *model.State {
	t.Helper()

	vec, err := model.NewVectorizer(model.VectorizerSpec{
		Vocabulary: map[string]int{"python": 0},
		IDF:        []float64{1},
	})
	if err != nil {
		t.Fatalf("NewVectorizer: %v", err)
	}
	est, err := model.NewEstimator(model.EstimatorSpec{
		Type:      model.EstimatorLogisticRegression,
		Coef:      [][]float64{{0}, {0}, {0}},
		Intercept: []float64{logit(0.9), logit(0.4), logit(0.2)},
	})
	if err != nil {
		t.Fatalf("NewEstimator: %v", err)
	}
	scorer, err := model.NewScorer(est)
	if err != nil {
		t.Fatalf("NewScorer: %v", err)
	}
	labels, err := model.NewBinarizer([]string{"python", "api", "ml"})
	if err != nil {
		t.Fatalf("NewBinarizer: %v", err)
	}

	state, err := model.NewState(vec, scorer, labels,
		model.BundleConfig{TopK: 5, Threshold: 0.3},
		model.Metadata{Dir: "models", EstimatorType: est.Type()},
	)
	if err != nil {
		t.Fatalf("NewState: %v", err)
	}
	return state
}

func logit(p float64) float64 {
	return math.Log(p / (1 - p))
}

func newTestServer(t *testing.T, state *model.State, mutate func(cfg *config.Config)) *Server {
	t.Helper()
	cfg := config.Default()
	if mutate != nil {
		mutate(cfg)
	}

	agg := monitor.NewAggregator([]monitor.Monitor{
		&mockMonitor{
			name: "memory",
			data: &monitor.MemoryState{UsedBytes: 1024, TotalBytes: 2048, UsagePercent: 50.0},
		},
	}, time.Second, testLogger())
	if err := agg.Start(context.Background()); err != nil {
		t.Fatalf("start aggregator: %v", err)
	}
	t.Cleanup(func() { _ = agg.Stop() })

	svc := inference.NewService(provider{state: state}, inference.Defaults{
		TopK:      cfg.Inference.DefaultTopK,
		Threshold: cfg.Inference.DefaultThreshold,
		MaxTopK:   cfg.Inference.MaxTopK,
	})
	return New(cfg, svc, agg, testLogger(), "0.1.0-test")
}

func do(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w
}

func TestHandleInfo(t *testing.T) {
	srv := newTestServer(t, testState(t), nil)

	w := do(t, srv, http.MethodGet, "/", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var resp InfoResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Name != "tagger" {
		t.Errorf("expected name 'tagger', got %s", resp.Name)
	}
	if resp.Version != "0.1.0-test" {
		t.Errorf("expected version '0.1.0-test', got %s", resp.Version)
	}
}

func TestHandleInfo_NotFound(t *testing.T) {
	srv := newTestServer(t, testState(t), nil)

	w := do(t, srv, http.MethodGet, "/other", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", w.Code)
	}
}

func TestHandleHealth(t *testing.T) {
	tests := []struct {
		name       string
		state      *model.State
		wantCode   int
		wantStatus string
	}{
		{"loaded", testState(t), http.StatusOK, inference.StatusOK},
		{"not loaded", nil, http.StatusServiceUnavailable, inference.StatusDegraded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, tt.state, nil)

			w := do(t, srv, http.MethodGet, "/health", "")
			if w.Code != tt.wantCode {
				t.Errorf("expected status %d, got %d", tt.wantCode, w.Code)
			}

			var resp HealthResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if resp.Status != tt.wantStatus {
				t.Errorf("expected status %q, got %q", tt.wantStatus, resp.Status)
			}
			if resp.ModelLoaded != (tt.state != nil) {
				t.Errorf("model_loaded = %v", resp.ModelLoaded)
			}
		})
	}
}

func TestHandleStatus(t *testing.T) {
	srv := newTestServer(t, testState(t), nil)

	w := do(t, srv, http.MethodGet, "/status", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected Content-Type 'application/json', got %s", ct)
	}

	var resp StatusResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Model == nil {
		t.Fatal("expected model section")
	}
	if resp.Model.Metadata.Labels != 3 || resp.Model.Metadata.ScoreKind != model.ScoreProbability {
		t.Errorf("unexpected metadata %+v", resp.Model.Metadata)
	}
	if resp.Model.Config.Threshold != 0.3 {
		t.Errorf("threshold = %v, want 0.3", resp.Model.Config.Threshold)
	}
	if resp.Resources == nil || resp.Resources.Memory.UsagePercent != 50.0 {
		t.Errorf("unexpected resources %+v", resp.Resources)
	}
	if resp.Defaults.MaxTopK != 50 {
		t.Errorf("max_top_k = %d, want 50", resp.Defaults.MaxTopK)
	}
}

func TestHandleStatus_Degraded(t *testing.T) {
	srv := newTestServer(t, nil, nil)

	w := do(t, srv, http.MethodGet, "/status", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var resp StatusResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Model != nil {
		t.Error("model section should be absent before load")
	}
	if resp.Health.Status != inference.StatusDegraded {
		t.Errorf("health = %+v", resp.Health)
	}
}

func TestHandleLabels(t *testing.T) {
	srv := newTestServer(t, testState(t), nil)

	w := do(t, srv, http.MethodGet, "/labels", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var resp LabelsResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Count != 3 || resp.Labels[0] != "python" {
		t.Errorf("unexpected labels %+v", resp)
	}

	if w := do(t, newTestServer(t, nil, nil), http.MethodGet, "/labels", ""); w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503 without model, got %d", w.Code)
	}
}

func TestHandlePredict(t *testing.T) {
	srv := newTestServer(t, testState(t), nil)

	w := do(t, srv, http.MethodPost, "/predict", `{"text": "How to parse JSON in python?", "top_k": 5, "threshold": 0.3}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp PredictResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	want := []string{"python", "api"}
	if len(resp.Tags) != len(want) {
		t.Fatalf("tags = %+v, want %v", resp.Tags, want)
	}
	for i, label := range want {
		if resp.Tags[i].Label != label {
			t.Errorf("tags[%d] = %s, want %s", i, resp.Tags[i].Label, label)
		}
	}
	if math.Abs(resp.Tags[0].Score-0.9) > 1e-9 {
		t.Errorf("python score = %v, want 0.9", resp.Tags[0].Score)
	}
	if resp.Policy.TopKSource != inference.SourceRequest {
		t.Errorf("policy = %+v", resp.Policy)
	}
}

func TestHandlePredict_EmptyResult(t *testing.T) {
	srv := newTestServer(t, testState(t), nil)

	w := do(t, srv, http.MethodPost, "/predict", `{"text": "", "threshold": 1.01}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"tags":[]`) {
		t.Errorf("expected empty tag list, got %s", w.Body.String())
	}
}

func TestHandlePredict_OperatorDefaults(t *testing.T) {
	th := 0.1
	srv := newTestServer(t, testState(t), func(cfg *config.Config) {
		cfg.Inference.DefaultTopK = 1
		cfg.Inference.DefaultThreshold = &th
	})

	w := do(t, srv, http.MethodPost, "/predict", `{"text": "anything"}`)

	var resp PredictResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Tags) != 1 || resp.Tags[0].Label != "python" {
		t.Errorf("tags = %+v", resp.Tags)
	}
	if resp.Policy.TopKSource != inference.SourceOperator || resp.Policy.ThresholdSource != inference.SourceOperator {
		t.Errorf("policy = %+v", resp.Policy)
	}
}

func TestHandlePredict_Errors(t *testing.T) {
	tests := []struct {
		name     string
		state    bool
		body     string
		wantCode int
	}{
		{"empty body", true, "", http.StatusBadRequest},
		{"malformed json", true, `{"text":`, http.StatusBadRequest},
		{"missing text", true, `{"top_k": 3}`, http.StatusBadRequest},
		{"wrong text type", true, `{"text": 42}`, http.StatusBadRequest},
		{"top_k zero", true, `{"text": "x", "top_k": 0}`, http.StatusBadRequest},
		{"top_k above max", true, `{"text": "x", "top_k": 51}`, http.StatusBadRequest},
		{"model not loaded", false, `{"text": "x"}`, http.StatusServiceUnavailable},
		{"body too large", true, `{"text": "` + strings.Repeat("a", 2<<20) + `"}`, http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var state *model.State
			if tt.state {
				state = testState(t)
			}
			srv := newTestServer(t, state, nil)

			w := do(t, srv, http.MethodPost, "/predict", tt.body)
			if w.Code != tt.wantCode {
				t.Fatalf("expected status %d, got %d: %s", tt.wantCode, w.Code, w.Body.String())
			}

			var resp ErrorResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("failed to decode error body: %v", err)
			}
			if resp.Error == "" {
				t.Error("expected error message")
			}
			if resp.RequestID == "" || resp.RequestID != w.Header().Get(middleware.RequestIDHeader) {
				t.Errorf("request id %q does not match header %q", resp.RequestID, w.Header().Get(middleware.RequestIDHeader))
			}
		})
	}
}

func TestHandlePredict_InvalidUTF8(t *testing.T) {
	srv := newTestServer(t, testState(t), nil)

	body, _ := json.Marshal(map[string]string{"text": "ok"})
	body = bytes.Replace(body, []byte("ok"), []byte("o\xffk"), 1)

	w := do(t, srv, http.MethodPost, "/predict", string(body))
	// encoding/json replaces invalid bytes with U+FFFD, so the request is
	// served rather than rejected.
	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}
}

func TestRoutes_MethodNotAllowed(t *testing.T) {
	srv := newTestServer(t, testState(t), nil)

	if w := do(t, srv, http.MethodPost, "/health", ""); w.Code != http.StatusMethodNotAllowed {
		t.Errorf("POST /health: expected 405, got %d", w.Code)
	}
}

func TestMiddlewareApplied(t *testing.T) {
	srv := newTestServer(t, testState(t), nil)

	w := do(t, srv, http.MethodGet, "/health", "")
	if w.Header().Get(middleware.RequestIDHeader) == "" {
		t.Error("expected request id header")
	}
	if w.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("expected security headers")
	}
}

func TestRateLimitOnPredictOnly(t *testing.T) {
	srv := newTestServer(t, testState(t), func(cfg *config.Config) {
		cfg.Server.RateLimit.Enabled = true
		cfg.Server.RateLimit.RequestsPerSecond = 1
		cfg.Server.RateLimit.Burst = 1
	})

	if w := do(t, srv, http.MethodPost, "/predict", `{"text": "x"}`); w.Code != http.StatusOK {
		t.Fatalf("first predict: expected 200, got %d", w.Code)
	}
	if w := do(t, srv, http.MethodPost, "/predict", `{"text": "x"}`); w.Code != http.StatusTooManyRequests {
		t.Errorf("second predict: expected 429, got %d", w.Code)
	}
	if w := do(t, srv, http.MethodGet, "/health", ""); w.Code != http.StatusOK {
		t.Errorf("health should not be limited, got %d", w.Code)
	}
}
