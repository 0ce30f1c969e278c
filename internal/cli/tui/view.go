package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/alexandrapadonou/tagStackoverflow/internal/inference"
)

const maxVisibleTags = 10

// View renders the TUI
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var sections []string

	sections = append(sections, m.renderTitleBar())

	if m.err != nil {
		sections = append(sections, errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	if m.status != nil {
		sections = append(sections, m.renderModel())
		if m.status.Resources != nil {
			sections = append(sections, m.renderResources())
		}
	}

	sections = append(sections, m.renderPrediction())
	sections = append(sections, m.renderInput())
	sections = append(sections, m.renderFooter())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderTitleBar() string {
	title := titleStyle.Render("TAGGER DASHBOARD")

	var badge string
	switch {
	case m.health == nil:
		badge = degradedBadgeStyle.Render("UNREACHABLE")
	case m.health.Status == inference.StatusOK:
		badge = okBadgeStyle.Render("OK")
	default:
		badge = degradedBadgeStyle.Render(strings.ToUpper(m.health.Status))
	}
	left := fmt.Sprintf("%s %s", title, badge)

	refreshInfo := fmt.Sprintf("↻ %s", m.config.RefreshInterval)
	if m.loading {
		refreshInfo = "↻ loading..."
	}

	help := "enter:predict esc:clear/quit ctrl+r:refresh ↑↓:scroll"

	rightPart := fmt.Sprintf("%s | %s", refreshInfo, help)
	spacing := m.width - lipgloss.Width(left) - lipgloss.Width(rightPart) - 2
	if spacing < 1 {
		spacing = 1
	}

	return fmt.Sprintf("%s%s%s", left, strings.Repeat(" ", spacing), helpStyle.Render(rightPart))
}

func (m Model) renderModel() string {
	var lines []string
	lines = append(lines, sectionHeaderStyle.Render("  Model"))

	md := m.status.Model
	if md == nil {
		lines = append(lines, "  "+labelStyle.Render("not loaded, /predict answers 503"))
		return strings.Join(lines, "\n")
	}

	meta := md.Metadata
	lines = append(lines,
		fmt.Sprintf("  %s %s    %s %s",
			labelStyle.Render("Estimator:"), valueStyle.Render(string(meta.EstimatorType)),
			labelStyle.Render("Scores:"), valueStyle.Render(string(meta.ScoreKind))),
		fmt.Sprintf("  %s %s    %s %s",
			labelStyle.Render("Labels:"), valueStyle.Render(humanize.Comma(int64(meta.Labels))),
			labelStyle.Render("Features:"), valueStyle.Render(humanize.Comma(int64(meta.Features)))),
		fmt.Sprintf("  %s %s    %s top_k=%d threshold=%g",
			labelStyle.Render("Loaded:"), valueStyle.Render(humanize.Time(meta.LoadedAt)),
			labelStyle.Render("Bundle policy:"), md.Config.TopK, md.Config.Threshold),
	)

	return strings.Join(lines, "\n")
}

func (m Model) renderResources() string {
	r := m.status.Resources

	var lines []string
	lines = append(lines, sectionHeaderStyle.Render("  Resources"))

	memBar := m.renderProgressBar("Memory", r.Memory.UsagePercent, 20)
	memInfo := fmt.Sprintf("(%s / %s)", humanize.IBytes(r.Memory.UsedBytes), humanize.IBytes(r.Memory.TotalBytes))
	lines = append(lines, fmt.Sprintf("  %s  %s", memBar, valueStyle.Render(memInfo)))

	paths := make([]string, 0, len(r.Storage))
	for path := range r.Storage {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	for _, path := range paths {
		disk := r.Storage[path]

		pathDisplay := path
		if len(pathDisplay) > 6 {
			pathDisplay = pathDisplay[:6]
		}
		pathDisplay = fmt.Sprintf("%-6s", pathDisplay)

		bar := m.renderProgressBar(pathDisplay, disk.UsagePercent, 20)
		info := fmt.Sprintf("(%s free)", humanize.IBytes(disk.FreeBytes))
		lines = append(lines, fmt.Sprintf("  %s  %s", bar, valueStyle.Render(info)))
	}

	p := r.Process
	rss := humanize.IBytes(p.RSSBytes)
	if f := r.ModelFootprint(); f > 0 {
		rss = fmt.Sprintf("%s (%.1fx bundle %s)", rss, f, humanize.IBytes(r.Memory.ModelBytes))
	}
	lines = append(lines, fmt.Sprintf("  %s %s    %s %.1f%%    %s %d",
		labelStyle.Render("RSS:"), valueStyle.Render(rss),
		labelStyle.Render("CPU:"), p.CPUPercent,
		labelStyle.Render("Goroutines:"), p.Goroutines))

	return strings.Join(lines, "\n")
}

func (m Model) renderProgressBar(label string, percent float64, width int) string {
	filled := int(percent / 100 * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}

	color := getProgressColor(percent)
	filledBar := lipgloss.NewStyle().Foreground(color).Render(strings.Repeat("█", filled))
	emptyBar := progressBarEmptyStyle.Render(strings.Repeat("░", width-filled))

	return fmt.Sprintf("%s [%s%s] %5.1f%%", labelStyle.Render(label), filledBar, emptyBar, percent)
}

func (m Model) renderScoreBar(score float64, width int) string {
	filled := int(score * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}

	filledBar := lipgloss.NewStyle().Foreground(getScoreColor(score)).Render(strings.Repeat("█", filled))
	emptyBar := progressBarEmptyStyle.Render(strings.Repeat("░", width-filled))
	return filledBar + emptyBar
}

func (m Model) renderPrediction() string {
	var lines []string
	lines = append(lines, sectionHeaderStyle.Render("  Tags"))

	switch {
	case m.predicting:
		lines = append(lines, "  "+labelStyle.Render("predicting..."))
		return strings.Join(lines, "\n")
	case m.predictErr != nil:
		lines = append(lines, "  "+errorStyle.Render(m.predictErr.Error()))
		return strings.Join(lines, "\n")
	case m.prediction == nil:
		lines = append(lines, "  "+labelStyle.Render("type a question below and press enter"))
		return strings.Join(lines, "\n")
	}

	lines = append(lines, "  "+labelStyle.Render(truncate(m.question, m.width-4)))

	tags := m.prediction.Tags
	if len(tags) == 0 {
		lines = append(lines, "  "+labelStyle.Render(fmt.Sprintf("no tag scored above %g", m.prediction.Policy.Threshold)))
		return strings.Join(lines, "\n")
	}

	start := m.tagOffset
	if start >= len(tags) {
		start = 0
	}
	end := start + maxVisibleTags
	if end > len(tags) {
		end = len(tags)
	}

	header := fmt.Sprintf("  %-24s │ %-20s │ %6s", "Tag", "", "Score")
	lines = append(lines, tableHeaderStyle.Render(header))

	for _, tag := range tags[start:end] {
		label := fmt.Sprintf("%-24s", truncate(tag.Label, 24))
		lines = append(lines, fmt.Sprintf("  %s │ %s │ %s",
			tagStyle.Render(label),
			m.renderScoreBar(tag.Score, 20),
			tableCellStyle.Render(fmt.Sprintf("%6.3f", tag.Score))))
	}

	if len(tags) > maxVisibleTags {
		lines = append(lines, helpStyle.Render(fmt.Sprintf("  [%d-%d of %d tags]", start+1, end, len(tags))))
	}

	p := m.prediction.Policy
	lines = append(lines, helpStyle.Render(fmt.Sprintf("  top_k=%d (%s) threshold=%g (%s)",
		p.TopK, p.TopKSource, p.Threshold, p.ThresholdSource)))

	return strings.Join(lines, "\n")
}

func (m Model) renderInput() string {
	text := string(m.input)
	if avail := m.width - 6; avail > 0 && len(m.input) > avail {
		text = "…" + string(m.input[len(m.input)-avail+1:])
	}
	return fmt.Sprintf("%s %s%s", promptStyle.Render("  ?"), inputStyle.Render(text), inputStyle.Render("▏"))
}

func (m Model) renderFooter() string {
	if m.status == nil {
		return ""
	}

	return helpStyle.Render(fmt.Sprintf(
		"  %s │ v%s │ up %s │ Updated: %s",
		m.config.ServerURL,
		m.status.Version,
		m.status.Uptime,
		m.lastUpdated.Format("15:04:05"),
	))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 1 || len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
