package tui

import (
	"time"

	"github.com/alexandrapadonou/tagStackoverflow/internal/inference"
	"github.com/alexandrapadonou/tagStackoverflow/internal/server"
)

// Config holds TUI configuration
type Config struct {
	ServerURL       string
	RefreshInterval time.Duration
}

// Model represents the TUI state
type Model struct {
	config Config

	// Data from API
	health *inference.Health
	status *server.StatusResponse

	// Question being typed and the last prediction for it
	input      []rune
	question   string
	prediction *inference.Result
	predicting bool
	predictErr error

	// UI state
	width       int
	height      int
	loading     bool
	err         error
	lastUpdated time.Time

	// Tag list scroll position
	tagOffset int
}

// NewModel creates a new TUI model
func NewModel(cfg Config) Model {
	if cfg.RefreshInterval <= 0 {
		cfg.RefreshInterval = time.Second
	}
	return Model{
		config:  cfg,
		loading: true,
	}
}
