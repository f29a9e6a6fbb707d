package tui

import (
	"github.com/charmbracelet/bubbles/v2/table"
	"github.com/charmbracelet/lipgloss/v2"
)

var (
	RGBBlue       = lipgloss.Color("45")
	RGBPink       = lipgloss.Color("201")
	RGBRed        = lipgloss.Color("196")
	RGBYellow     = lipgloss.Color("220")
	RGBGreen      = lipgloss.Color("46")
	RGBGrey       = lipgloss.Color("246")
	RGBDimGrey    = lipgloss.Color("240")
	RGBSubtlePink = lipgloss.Color("#2a1a2a")
)

var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(RGBPink)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(RGBGrey)

	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(RGBBlue)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(RGBRed).
			Bold(true)

	StatusBarStyle = lipgloss.NewStyle().Faint(true)

	// region frames
	DetailRegionStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.NormalBorder()).
				BorderForeground(RGBBlue)

	RightColumnStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.NormalBorder()).
				BorderForeground(RGBDimGrey).
				Padding(0, 1)

	// preview node classes
	PreviewStyle = lipgloss.NewStyle()

	PreviewEmptyStyle = lipgloss.NewStyle().
				Faint(true).
				Italic(true)

	TagStyle = lipgloss.NewStyle().
			Foreground(RGBSubtlePink).
			Background(RGBPink).
			Padding(0, 1)
)

// method and status colours for the flow table
var (
	StyleMethodGreen  = lipgloss.NewStyle().Foreground(RGBGreen)  // GET, HEAD
	StyleMethodYellow = lipgloss.NewStyle().Foreground(RGBYellow) // PATCH
	StyleMethodBlue   = lipgloss.NewStyle().Foreground(RGBBlue)   // PUT, POST
	StyleMethodRed    = lipgloss.NewStyle().Foreground(RGBRed)    // DELETE

	StyleStatus4xx = lipgloss.NewStyle().Foreground(RGBYellow)
	StyleStatus5xx = lipgloss.NewStyle().Foreground(RGBRed)

	StyleHighlight = lipgloss.NewStyle().Foreground(RGBPink).Bold(true)
)

// json preview colours
var (
	SyntaxKeyStyle     = lipgloss.NewStyle().Foreground(RGBBlue)
	SyntaxBraceStyle   = lipgloss.NewStyle().Foreground(RGBPink)
	SyntaxBracketStyle = lipgloss.NewStyle().Foreground(RGBYellow)
)

// ApplyTableStyles themes the flow table
func ApplyTableStyles(t table.Model) table.Model {
	s := table.DefaultStyles()

	s.Header = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(RGBPink).
		BorderBottom(true).
		Foreground(RGBPink).
		Bold(true).
		Padding(0, 1)

	s.Selected = lipgloss.NewStyle().
		Bold(true).
		Foreground(RGBPink).
		Background(RGBSubtlePink)

	s.Cell = lipgloss.NewStyle().Padding(0, 1)

	t.SetStyles(s)
	return t
}

// previewStyle picks the style for a preview node class
func previewStyle(class string) lipgloss.Style {
	if class == "preview-empty" {
		return PreviewEmptyStyle
	}
	return PreviewStyle
}
