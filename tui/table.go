package tui

import (
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/v2/table"
	"github.com/pb33f/flowscope/motor"
)

func flowColumns(width int) []table.Column {
	return []table.Column{
		{Title: "#", Width: idColumnWidth},
		{Title: "Method", Width: methodColumnWidth},
		{Title: "URL", Width: urlColumnWidth(width)},
		{Title: "Status", Width: statusColumnWidth},
		{Title: "Category", Width: categoryColumnWidth},
		{Title: "Duration", Width: durationColumnWidth},
	}
}

func urlColumnWidth(width int) int {
	w := width - idColumnWidth - methodColumnWidth - statusColumnWidth - categoryColumnWidth - durationColumnWidth - borderPadding
	if w < minURLColumnWidth {
		return minURLColumnWidth
	}
	if w > maxURLColumnWidth {
		return maxURLColumnWidth
	}
	return w
}

// buildFlowRows renders one row per visible flow
func buildFlowRows(flows []motor.FlowRecord, regions *Regions, tagged func(id int) bool, width int) []table.Row {
	rows := make([]table.Row, 0, len(flows))
	urlWidth := urlColumnWidth(width)
	for _, flow := range flows {
		rows = append(rows, formatFlowRow(flow, regions.IsHighlighted(flow.ID()), tagged(flow.ID()), urlWidth))
	}
	return rows
}

func formatFlowRow(flow motor.FlowRecord, highlighted, tagged bool, urlWidth int) table.Row {
	req, resp := flow.Request(), flow.Response()
	return table.Row{
		formatID(flow.ID(), highlighted, tagged),
		formatMethod(req.Method()),
		formatURL(req.URL(), urlWidth),
		formatStatus(resp.Status(), resp.StatusText()),
		flow.Category(),
		formatDuration(flow.Entry().Time),
	}
}

// formatID prefixes the id with the highlight marker, tagged flows get a trailing *
func formatID(id int, highlighted, tagged bool) string {
	s := "#" + strconv.Itoa(id)
	if tagged {
		s += "*"
	}
	if highlighted {
		return highlightMarker + " " + s
	}
	return s
}

func formatMethod(method string) string {
	if method == "" {
		method = "GET"
	}
	if len(method) > 7 {
		return method[:7]
	}
	return method
}

func formatURL(fullURL string, width int) string {
	if fullURL == "" {
		return "/"
	}

	u, err := url.Parse(fullURL)
	if err != nil {
		return truncateString(fullURL, width)
	}

	path := u.Path
	if path == "" {
		path = "/"
	}
	if u.RawQuery != "" {
		path += "?" + u.RawQuery
	}
	return truncateString(path, width)
}

func formatStatus(code int, text string) string {
	if code == 0 {
		return "---"
	}
	if text != "" {
		status := fmt.Sprintf("%d %s", code, text)
		if len(status) <= statusColumnWidth {
			return status
		}
	}
	return strconv.Itoa(code)
}

func formatDuration(durationMs float64) string {
	if durationMs <= 0 {
		return "---"
	}

	d := time.Duration(durationMs * float64(time.Millisecond))

	switch {
	case d < time.Millisecond:
		return fmt.Sprintf("%dμs", d.Microseconds())
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", float64(d.Milliseconds())/1000.0)
	default:
		minutes := int(d.Minutes())
		return fmt.Sprintf("%dm%ds", minutes, int(d.Seconds())-minutes*60)
	}
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
