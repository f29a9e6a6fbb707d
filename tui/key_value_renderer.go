package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss/v2"
	"github.com/pb33f/flowscope/motor"
	"github.com/pb33f/harhar"
)

// pre-computed styles, rendering runs on every repaint
var (
	keyStyleBase = lipgloss.NewStyle().
			Foreground(RGBGrey).
			Align(lipgloss.Right)

	sectionHeaderStyleBase = lipgloss.NewStyle().
				Bold(true).
				Foreground(RGBPink)

	emptyValueText = lipgloss.NewStyle().Faint(true).Render("(empty)")
)

type KeyValuePair struct {
	Key   string
	Value string
}

// Section is a titled group of pairs
type Section struct {
	Title string
	Pairs []KeyValuePair
}

type RenderOptions struct {
	Width    int  // total available width
	Truncate bool // cut values to the line
	KeyWidth int  // 0 = derive from Width
}

func renderSections(sections []Section, opts RenderOptions) string {
	if len(sections) == 0 {
		return ""
	}

	keyWidth := opts.KeyWidth
	if keyWidth == 0 {
		keyWidth = min(max(opts.Width*3/10, 12), 22)
	}
	valueWidth := opts.Width - keyWidth - 3

	var output strings.Builder
	for i, section := range sections {
		if section.Title != "" {
			output.WriteString(sectionHeaderStyleBase.Width(opts.Width).Render(section.Title))
			output.WriteString("\n")
		}
		for _, pair := range section.Pairs {
			output.WriteString(renderKeyValueRow(pair, keyWidth, valueWidth, opts.Truncate))
			output.WriteString("\n")
		}
		if i < len(sections)-1 {
			output.WriteString("\n")
		}
	}
	return output.String()
}

func renderKeyValueRow(pair KeyValuePair, keyWidth, valueWidth int, truncate bool) string {
	value := pair.Value
	if value == "" {
		value = emptyValueText
	} else if truncate && valueWidth > 3 && len(value) > valueWidth {
		value = value[:valueWidth-3] + "..."
	}
	return keyStyleBase.Width(keyWidth).Render(pair.Key) + "  " + value
}

// requestSections describes a flow's request through its facade
func requestSections(req *motor.Request) []Section {
	sections := []Section{{
		Title: "Request",
		Pairs: []KeyValuePair{
			{"Method", req.Method()},
			{"URL", req.URL()},
			{"Host", req.Host()},
			{"HTTP Version", req.HTTPVersion()},
		},
	}}

	if headers := req.Headers(); len(headers) > 0 {
		sections = append(sections, Section{Title: "Request Headers", Pairs: nameValuePairs(headers)})
	}
	if body := req.Body(); body != "" {
		sections = append(sections, Section{
			Title: "Request Body",
			Pairs: []KeyValuePair{
				{"Content-Type", req.Header("Content-Type")},
				{"Size", fmt.Sprintf("%d bytes", len(body))},
			},
		})
	}
	return sections
}

// responseSections describes a flow's response. The body itself is the preview's job.
func responseSections(flow motor.FlowRecord) []Section {
	resp := flow.Response()
	sections := []Section{{
		Title: "Response",
		Pairs: []KeyValuePair{
			{"Status", fmt.Sprintf("%d %s", resp.Status(), resp.StatusText())},
			{"Content-Type", resp.MimeType()},
			{"Size", fmt.Sprintf("%d bytes", resp.Size())},
			{"Category", flow.Category()},
		},
	}}

	if headers := resp.Headers(); len(headers) > 0 {
		sections = append(sections, Section{Title: "Response Headers", Pairs: nameValuePairs(headers)})
	}
	if timings := timingPairs(&flow.Entry().Timings); len(timings) > 0 {
		sections = append(sections, Section{Title: "Timings", Pairs: timings})
	}
	return sections
}

// timingPairs skips phases HAR marks as not applicable (-1)
func timingPairs(t *harhar.Timings) []KeyValuePair {
	phases := []struct {
		name  string
		value float64
	}{
		{"DNS", t.DNS},
		{"Connect", t.Connect},
		{"SSL", t.SSL},
		{"Send", t.Send},
		{"Wait", t.Wait},
		{"Receive", t.Receive},
	}

	pairs := make([]KeyValuePair, 0, len(phases))
	for _, p := range phases {
		if p.value > 0 {
			pairs = append(pairs, KeyValuePair{p.name, fmt.Sprintf("%.2fms", p.value)})
		}
	}
	return pairs
}

func nameValuePairs(nvps []harhar.NameValuePair) []KeyValuePair {
	pairs := make([]KeyValuePair, len(nvps))
	for i, nvp := range nvps {
		pairs[i] = KeyValuePair{nvp.Name, nvp.Value}
	}
	return pairs
}
