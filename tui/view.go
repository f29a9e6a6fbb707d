package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss/v2"
	"github.com/pb33f/flowscope/motor"
)

func (m *FlowViewModel) render() string {
	g := m.regions.Geometry(m.width, m.height)

	left := colorizeFlowTable(m.table.View(), m.table.Cursor(), m.rows)
	if m.regions.DetailAttached() {
		detail := DetailRegionStyle.
			Width(g.DetailWidth).
			Height(g.DetailHeight).
			Render(m.detail.View())
		left = lipgloss.JoinVertical(lipgloss.Left, left, detail)
	}

	right := RightColumnStyle.
		Width(g.RightWidth).
		Height(g.RightHeight).
		Render(m.renderRightColumn(g.RightWidth - regionPadding*2))

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, lipgloss.NewStyle().Width(g.MainWidth).Render(left), right))
	b.WriteString("\n")
	b.WriteString(m.renderStatusBar())
	return b.String()
}

func (m *FlowViewModel) renderHeader() string {
	frame := lipgloss.NewStyle().
		Width(m.width).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(RGBBlue).
		BorderBottom(true).
		Padding(0, 1)

	title := lipgloss.NewStyle().Bold(true).Render(fmt.Sprintf("flowscope: %s | ", m.fileName))

	info := fmt.Sprintf("(%d flows", m.store.Len())
	if len(m.visible) != m.store.Len() {
		info += fmt.Sprintf(", %d shown", len(m.visible))
	}
	if m.loadTime > 0 {
		info += fmt.Sprintf(", loaded in %v", m.loadTime.Round(time.Millisecond))
	}
	info += ")"

	return frame.Render(title + lipgloss.NewStyle().Faint(true).Render(info))
}

func (m *FlowViewModel) renderStatusBar() string {
	parts := []string{"↑/↓: Navigate", "Enter: Select"}
	if m.panel.IsOpen() {
		parts = append(parts, "PgUp/PgDn: Scroll", "Esc: Close Detail")
	} else {
		parts = append(parts, "o: Open Detail")
		if m.filters.HasActiveFilters() {
			parts = append(parts, "Esc: Clear Filters")
		}
	}
	parts = append(parts, "f: Flag", "F: Flagged Only", "s: Similar", "+/-: Level", "m: Similar Only", "q: Quit")

	if c := m.table.Cursor(); c >= 0 && c < len(m.visible) {
		parts = append(parts, fmt.Sprintf("Row %d/%d", c+1, len(m.visible)))
	}
	return StatusBarStyle.Render(strings.Join(parts, " | "))
}

// renderDetail draws the selected flow: request, response and the preview node
func (m *FlowViewModel) renderDetail(flow motor.FlowRecord) string {
	opts := RenderOptions{Width: m.detail.Width(), Truncate: true}

	sections := append(requestSections(flow.Request()), responseSections(flow)...)

	var b strings.Builder
	b.WriteString(renderSections(sections, opts))
	b.WriteString("\n")
	b.WriteString(sectionHeaderStyleBase.Render("Preview"))
	b.WriteString("\n")

	if m.previewLoading {
		b.WriteString(m.loadingSpinner.View() + " loading preview...")
		return b.String()
	}

	b.WriteString(renderPreview(m.preview, flow.Category()))
	return b.String()
}

func (m *FlowViewModel) refreshDetail() {
	if !m.regions.DetailAttached() {
		return
	}
	flow := m.selectedFlow()
	if flow == nil {
		m.detail.SetContent("")
		return
	}
	m.detail.SetContent(m.renderDetail(flow))
}

func (m *FlowViewModel) renderRightColumn(width int) string {
	var b strings.Builder

	b.WriteString(HeaderStyle.Render("Selection"))
	b.WriteString("\n")
	if flow := m.selectedFlow(); flow != nil {
		b.WriteString(fmt.Sprintf("#%d %s\n", flow.ID(), flow.Category()))
		b.WriteString(SubtitleStyle.Render("panel "+m.panel.State().String()) + "\n")
		if m.isTagged(flow.ID()) {
			for _, tag := range flow.FilterTags().List() {
				b.WriteString(TagStyle.Render(tag) + " ")
			}
			b.WriteString("\n")
		}
	} else {
		b.WriteString(SubtitleStyle.Render("nothing selected") + "\n")
	}

	b.WriteString("\n")
	b.WriteString(HeaderStyle.Render(fmt.Sprintf("Similar (level %d)", m.similarLevel)))
	b.WriteString("\n")
	switch {
	case m.similarLoading:
		b.WriteString(m.loadingSpinner.View() + " searching...\n")
	case m.similarErr != nil:
		b.WriteString(ErrorStyle.Render(truncateString(m.similarErr.Error(), max(width, 10))) + "\n")
	case m.hasSimilar:
		b.WriteString(formatSimilar(m.similarFor, m.similarIDs, width) + "\n")
	default:
		b.WriteString(SubtitleStyle.Render("press s to search") + "\n")
	}

	if len(m.events) > 0 {
		b.WriteString("\n")
		b.WriteString(HeaderStyle.Render("Tag events"))
		b.WriteString("\n")
		for _, e := range m.events {
			b.WriteString(SubtitleStyle.Render(e) + "\n")
		}
	}

	return b.String()
}

// formatSimilar lists matching ids, wrapped to width and elided past maxSimilarListed
func formatSimilar(ref int, ids []int, width int) string {
	if len(ids) == 0 {
		return fmt.Sprintf("none like #%d", ref)
	}

	shown := ids
	if len(shown) > maxSimilarListed {
		shown = shown[:maxSimilarListed]
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("%d like #%d:\n", len(ids), ref))
	line := 0
	for i, id := range shown {
		token := "#" + strconv.Itoa(id)
		if i > 0 {
			if width > 0 && line+len(token)+1 > width {
				b.WriteString("\n")
				line = 0
			} else {
				b.WriteString(" ")
				line++
			}
		}
		b.WriteString(token)
		line += len(token)
	}
	if len(ids) > len(shown) {
		b.WriteString(fmt.Sprintf(" (+%d more)", len(ids)-len(shown)))
	}
	return b.String()
}

func formatTagEvent(e motor.FilterTagEvent) string {
	return fmt.Sprintf("%s %s #%d", e.Name, e.Tag, e.FlowID)
}

func truncateBody(content string, maxLen int) string {
	if len(content) <= maxLen {
		return content
	}
	return content[:maxLen] + "\n...[truncated]"
}
