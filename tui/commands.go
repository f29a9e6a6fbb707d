package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/pb33f/flowscope/motor"
)

// previewMsg carries a preview back to the event loop, tagged with the selection
// it was requested for.
type previewMsg struct {
	flowID     int
	generation uint64
	node       motor.PreviewNode
}

// similarMsg carries the result of a similarity query
type similarMsg struct {
	flowID     int
	generation uint64
	level      int
	ids        []int
	err        error
}

// fetchPreview runs Preview off the event loop
func fetchPreview(ctx context.Context, flow motor.FlowRecord, gen uint64) tea.Cmd {
	return func() tea.Msg {
		return previewMsg{
			flowID:     flow.ID(),
			generation: gen,
			node:       flow.Preview(ctx),
		}
	}
}

// querySimilar runs QuerySimilar off the event loop
func querySimilar(ctx context.Context, flow motor.FlowRecord, level int, gen uint64) tea.Cmd {
	return func() tea.Msg {
		ids, err := flow.QuerySimilar(ctx, level)
		return similarMsg{
			flowID:     flow.ID(),
			generation: gen,
			level:      level,
			ids:        ids,
			err:        err,
		}
	}
}
