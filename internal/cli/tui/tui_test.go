package tui

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/alexandrapadonou/tagStackoverflow/internal/inference"
	"github.com/alexandrapadonou/tagStackoverflow/internal/model"
	"github.com/alexandrapadonou/tagStackoverflow/internal/monitor"
	"github.com/alexandrapadonou/tagStackoverflow/internal/server"
)

func fakeServer(t *testing.T, healthy bool) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		h := inference.Health{Status: inference.StatusOK, ModelLoaded: true}
		code := http.StatusOK
		if !healthy {
			h = inference.Health{Status: inference.StatusDegraded}
			code = http.StatusServiceUnavailable
		}
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(h)
	})
	mux.HandleFunc("GET /status", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(server.StatusResponse{
			Version: "1.0.0",
			Uptime:  "1m0s",
			Model: &server.ModelStatus{
				Metadata: model.Metadata{EstimatorType: model.EstimatorLogisticRegression, Labels: 3},
				Config:   model.BundleConfig{TopK: 5},
			},
		})
	})
	mux.HandleFunc("POST /predict", func(w http.ResponseWriter, r *http.Request) {
		var req server.PredictRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Text == nil {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(server.ErrorResponse{Error: "text field is required"})
			return
		}
		_ = json.NewEncoder(w).Encode(inference.Result{
			Tags: []inference.Tag{{Label: "python", Score: 0.9}, {Label: "api", Score: 0.4}},
		})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func typeText(m tea.Model, s string) tea.Model {
	for _, r := range s {
		if r == ' ' {
			m, _ = m.Update(tea.KeyMsg{Type: tea.KeySpace})
			continue
		}
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

func TestFetchHealth(t *testing.T) {
	tests := []struct {
		name    string
		healthy bool
		want    string
	}{
		{"ok", true, inference.StatusOK},
		{"degraded answers 503 with body", false, inference.StatusDegraded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := fakeServer(t, tt.healthy)

			msg := fetchHealth(Config{ServerURL: srv.URL})().(healthMsg)
			if msg.err != nil {
				t.Fatalf("unexpected error: %v", msg.err)
			}
			if msg.data.Status != tt.want {
				t.Errorf("status = %s, want %s", msg.data.Status, tt.want)
			}
		})
	}
}

func TestFetchStatus(t *testing.T) {
	srv := fakeServer(t, true)

	msg := fetchStatus(Config{ServerURL: srv.URL})().(statusMsg)
	if msg.err != nil {
		t.Fatalf("unexpected error: %v", msg.err)
	}
	if msg.data.Model == nil || msg.data.Model.Metadata.Labels != 3 {
		t.Errorf("unexpected status %+v", msg.data)
	}
}

func TestFetchStatus_Unreachable(t *testing.T) {
	srv := fakeServer(t, true)
	url := srv.URL
	srv.Close()

	msg := fetchStatus(Config{ServerURL: url})().(statusMsg)
	if msg.err == nil {
		t.Fatal("expected error for closed server")
	}
}

func TestTypingAndSubmit(t *testing.T) {
	srv := fakeServer(t, true)

	var m tea.Model = NewModel(Config{ServerURL: srv.URL, RefreshInterval: time.Second})
	m = typeText(m, "pandas merge")
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyBackspace})

	if got := string(m.(Model).input); got != "pandas merg" {
		t.Fatalf("input = %q", got)
	}

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("enter should submit a prediction")
	}
	if !m.(Model).predicting || len(m.(Model).input) != 0 {
		t.Error("expected predicting state with cleared input")
	}

	msg := cmd().(predictMsg)
	if msg.question != "pandas merg" {
		t.Errorf("question = %q", msg.question)
	}

	m, _ = m.Update(msg)
	got := m.(Model)
	if got.predicting || got.predictErr != nil {
		t.Fatalf("unexpected state: predicting=%v err=%v", got.predicting, got.predictErr)
	}
	if len(got.prediction.Tags) != 2 || got.prediction.Tags[0].Label != "python" {
		t.Errorf("tags = %+v", got.prediction.Tags)
	}
}

func TestEnterOnEmptyInput(t *testing.T) {
	var m tea.Model = NewModel(Config{ServerURL: "http://127.0.0.1:0"})
	m = typeText(m, "   ")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil {
		t.Error("blank input should not submit")
	}
}

func TestEscClearsThenQuits(t *testing.T) {
	var m tea.Model = NewModel(Config{})
	m = typeText(m, "x")

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if cmd != nil || len(m.(Model).input) != 0 {
		t.Fatal("first esc should only clear the input")
	}

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if cmd == nil {
		t.Fatal("second esc should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}

func TestView(t *testing.T) {
	srv := fakeServer(t, true)
	cfg := Config{ServerURL: srv.URL, RefreshInterval: time.Second}

	var m tea.Model = NewModel(cfg)
	if m.View() != "Loading..." {
		t.Fatal("expected loading screen before the first resize")
	}

	m, _ = m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m, _ = m.Update(fetchHealth(cfg)())
	m, _ = m.Update(fetchStatus(cfg)())
	m, _ = m.Update(predict(cfg, "How to parse JSON in python?")())

	view := m.View()
	for _, want := range []string{"TAGGER DASHBOARD", "OK", "logistic_regression", "python", "0.900"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestView_ResourcesAgainstBundleSize(t *testing.T) {
	var m tea.Model = NewModel(Config{})
	m, _ = m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m, _ = m.Update(statusMsg{data: &server.StatusResponse{
		Resources: &monitor.Snapshot{
			Memory:  monitor.MemoryState{UsedBytes: 1 << 30, TotalBytes: 4 << 30, UsagePercent: 25, ModelBytes: 64 << 20},
			Process: monitor.ProcessState{RSSBytes: 256 << 20},
		},
	}})

	view := m.View()
	for _, want := range []string{"256 MiB", "4.0x bundle 64 MiB"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestView_Degraded(t *testing.T) {
	var m tea.Model = NewModel(Config{})
	m, _ = m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	m, _ = m.Update(healthMsg{data: &inference.Health{Status: inference.StatusDegraded}})

	if !strings.Contains(m.View(), "DEGRADED") {
		t.Error("expected degraded badge")
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"python", 10, "python"},
		{"javascript", 5, "java…"},
		{"ümlaut", 3, "üm…"},
	}

	for _, tt := range tests {
		if got := truncate(tt.in, tt.n); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}
