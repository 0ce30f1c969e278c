package tui

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/alexandrapadonou/tagStackoverflow/internal/inference"
	"github.com/alexandrapadonou/tagStackoverflow/internal/server"
)

// Messages for tea.Cmd
type healthMsg struct {
	data *inference.Health
	err  error
}

type statusMsg struct {
	data *server.StatusResponse
	err  error
}

type predictMsg struct {
	question string
	data     *inference.Result
	err      error
}

type tickMsg time.Time

// API client for TUI
type apiClient struct {
	baseURL string
	client  *http.Client
}

func newAPIClient(cfg Config) *apiClient {
	return &apiClient{
		baseURL: cfg.ServerURL,
		client: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

// do sends req and decodes a JSON reply into out. Statuses listed in accept
// besides 200 are decoded too.
func (c *apiClient) do(req *http.Request, out any, accept ...int) error {
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	ok := resp.StatusCode == http.StatusOK
	for _, s := range accept {
		ok = ok || resp.StatusCode == s
	}
	if !ok {
		var e server.ErrorResponse
		if json.Unmarshal(data, &e) == nil && e.Error != "" {
			return fmt.Errorf("server returned status %d: %s", resp.StatusCode, e.Error)
		}
		return fmt.Errorf("server returned status %d", resp.StatusCode)
	}

	return json.Unmarshal(data, out)
}

func (c *apiClient) get(path string, out any, accept ...int) error {
	req, err := http.NewRequest(http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out, accept...)
}

func (c *apiClient) post(path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequest(http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

// fetchHealth polls /health. A degraded server answers 503 with a body.
func fetchHealth(cfg Config) tea.Cmd {
	return func() tea.Msg {
		var h inference.Health
		if err := newAPIClient(cfg).get("/health", &h, http.StatusServiceUnavailable); err != nil {
			return healthMsg{err: err}
		}
		return healthMsg{data: &h}
	}
}

// fetchStatus fetches status from API as tea.Cmd
func fetchStatus(cfg Config) tea.Cmd {
	return func() tea.Msg {
		var status server.StatusResponse
		if err := newAPIClient(cfg).get("/status", &status); err != nil {
			return statusMsg{err: fmt.Errorf("failed to get status: %w", err)}
		}
		return statusMsg{data: &status}
	}
}

// predict submits the question to /predict with the server's policy.
func predict(cfg Config, question string) tea.Cmd {
	return func() tea.Msg {
		var res inference.Result
		err := newAPIClient(cfg).post("/predict", server.PredictRequest{Text: &question}, &res)
		if err != nil {
			return predictMsg{question: question, err: err}
		}
		return predictMsg{question: question, data: &res}
	}
}

// tick creates a periodic tick command
func tick(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
