package tui

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		fetchHealth(m.config),
		fetchStatus(m.config),
		tick(m.config.RefreshInterval),
	)
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case healthMsg:
		if msg.err != nil {
			m.err = msg.err
			m.health = nil
		} else {
			m.health = msg.data
		}
		return m, nil

	case statusMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.err = nil
			m.status = msg.data
			m.lastUpdated = time.Now()
		}
		return m, nil

	case predictMsg:
		m.predicting = false
		m.question = msg.question
		m.tagOffset = 0
		if msg.err != nil {
			m.predictErr = msg.err
			m.prediction = nil
		} else {
			m.predictErr = nil
			m.prediction = msg.data
		}
		return m, nil

	case tickMsg:
		m.loading = true
		return m, tea.Batch(
			fetchHealth(m.config),
			fetchStatus(m.config),
			tick(m.config.RefreshInterval),
		)
	}

	return m, nil
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit

	case tea.KeyEsc:
		if len(m.input) == 0 {
			return m, tea.Quit
		}
		m.input = nil
		return m, nil

	case tea.KeyCtrlR:
		m.loading = true
		return m, tea.Batch(
			fetchHealth(m.config),
			fetchStatus(m.config),
		)

	case tea.KeyEnter:
		question := strings.TrimSpace(string(m.input))
		if question == "" || m.predicting {
			return m, nil
		}
		m.predicting = true
		m.input = nil
		return m, predict(m.config, question)

	case tea.KeyBackspace:
		if len(m.input) > 0 {
			m.input = m.input[:len(m.input)-1]
		}
		return m, nil

	case tea.KeyCtrlU:
		m.input = nil
		return m, nil

	case tea.KeyUp:
		if m.tagOffset > 0 {
			m.tagOffset--
		}
		return m, nil

	case tea.KeyDown:
		if m.prediction != nil && m.tagOffset < len(m.prediction.Tags)-1 {
			m.tagOffset++
		}
		return m, nil

	case tea.KeySpace:
		m.input = append(m.input, ' ')
		return m, nil

	case tea.KeyRunes:
		m.input = append(m.input, msg.Runes...)
		return m, nil
	}

	return m, nil
}
