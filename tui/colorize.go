package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/v2/table"
)

// methods ordered by how often they show up in captures
var methodStyles = []struct {
	token    string
	rendered string
}{
	{" GET ", " " + StyleMethodGreen.Render("GET") + " "},
	{" POST ", " " + StyleMethodBlue.Render("POST") + " "},
	{" PUT ", " " + StyleMethodBlue.Render("PUT") + " "},
	{" DELETE ", " " + StyleMethodRed.Render("DELETE") + " "},
	{" PATCH ", " " + StyleMethodYellow.Render("PATCH") + " "},
	{" HEAD ", " " + StyleMethodGreen.Render("HEAD") + " "},
}

var renderedMarker = StyleHighlight.Render(highlightMarker)

// colorizeFlowTable post-processes the rendered table. The bubbles table measures
// cell widths on plain text, so colour has to be added after rendering. The cursor
// row is left alone to keep its background intact.
func colorizeFlowTable(tableView string, cursor int, rows []table.Row) string {
	lines := strings.Split(tableView, "\n")

	var cursorKey string
	if cursor >= 0 && cursor < len(rows) && len(rows[cursor]) > 0 {
		// the id cell is unique per row, the trailing space stops #1 matching #12
		cursorKey = rows[cursor][0] + " "
	}

	var out strings.Builder
	out.Grow(len(tableView) + len(lines)*40)

	for i, line := range lines {
		// header is line 0 and its border is line 1
		if i >= 2 && (cursorKey == "" || !strings.Contains(line, cursorKey)) {
			line = colorizeMethod(line)
			line = colorizeStatus(line)
			line = strings.Replace(line, highlightMarker, renderedMarker, 1)
		}
		out.WriteString(line)
		if i < len(lines)-1 {
			out.WriteByte('\n')
		}
	}
	return out.String()
}

func colorizeMethod(line string) string {
	for _, m := range methodStyles {
		if strings.Contains(line, m.token) {
			return strings.Replace(line, m.token, m.rendered, 1)
		}
	}
	return line
}

// colorizeStatus colours the first " NNN " in the line when it is a 4xx or 5xx
func colorizeStatus(line string) string {
	for i := 0; i+4 < len(line); i++ {
		if line[i] != ' ' || line[i+4] != ' ' || !isDigit(line[i+1]) || !isDigit(line[i+2]) || !isDigit(line[i+3]) {
			continue
		}
		code := line[i+1 : i+4]
		switch code[0] {
		case '4':
			return line[:i+1] + StyleStatus4xx.Render(code) + line[i+4:]
		case '5':
			return line[:i+1] + StyleStatus5xx.Render(code) + line[i+4:]
		}
		return line
	}
	return line
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
