package tui

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/pb33f/flowscope/motor"
)

// renderPreview draws a preview node. JSON bodies are indented with their keys and
// brackets coloured, anything else is drawn as captured.
func renderPreview(node motor.PreviewNode, category string) string {
	text := truncateBody(node.Text, maxPreviewLength)
	if node.IsEmpty() || category != motor.CategoryJSON {
		return previewStyle(node.Class).Render(text)
	}

	var indented bytes.Buffer
	if err := json.Indent(&indented, []byte(node.Text), "", "  "); err != nil {
		return previewStyle(node.Class).Render(text)
	}

	lines := strings.Split(truncateBody(indented.String(), maxPreviewLength), "\n")
	for i, line := range lines {
		lines[i] = highlightJSONLine(line)
	}
	return strings.Join(lines, "\n")
}

// highlightJSONLine colours the "key": part of a line and its brackets, values stay plain
func highlightJSONLine(line string) string {
	trimmed := strings.TrimLeft(line, " \t")
	indent := line[:len(line)-len(trimmed)]

	idx := strings.Index(trimmed, "\":")
	if idx <= 0 || trimmed[0] != '"' {
		return indent + styleBrackets(trimmed)
	}

	key := trimmed[:idx+2]
	return indent + SyntaxKeyStyle.Render(key) + styleBrackets(trimmed[idx+2:])
}

// styleBrackets colours braces pink and square brackets yellow. Brackets inside
// string values get coloured too, which is fine for a preview.
func styleBrackets(text string) string {
	if !strings.ContainsAny(text, "{}[]") {
		return text
	}

	var b strings.Builder
	for _, r := range text {
		switch r {
		case '{', '}':
			b.WriteString(SyntaxBraceStyle.Render(string(r)))
		case '[', ']':
			b.WriteString(SyntaxBracketStyle.Render(string(r)))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
