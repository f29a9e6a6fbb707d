package tui

// PanelState is the visibility of the detail region
type PanelState int

const (
	PanelClosed PanelState = iota
	PanelOpen
)

func (s PanelState) String() string {
	if s == PanelOpen {
		return "open"
	}
	return "closed"
}

// Layout is the region container the panel controller drives. The controller decides
// when the detail region is attached and which row is highlighted, the layout decides how.
type Layout interface {
	AttachDetail()
	DetachDetail()
	SetRowHighlight(flowID int, on bool)
}

// PanelController coordinates row selection, the single highlighted row and the
// detail panel. It is owned by the UI event loop and is not safe for concurrent use.
//
// Every Select bumps a generation counter. Work started for a selection carries the
// (id, generation) pair it was issued with, and results are applied only while
// IsCurrent still holds for that pair.
type PanelController struct {
	layout Layout

	selected     int
	hasSelection bool

	highlighted  int
	hasHighlight bool

	state      PanelState
	generation uint64
}

// NewPanelController starts closed with nothing selected.
func NewPanelController(layout Layout) *PanelController {
	return &PanelController{layout: layout, state: PanelClosed}
}

// Select makes id the selection, moves the highlight to it and opens the panel.
// The highlight is updated before Select returns, so callers can start fetching
// data for the new selection knowing the view already reflects it.
func (p *PanelController) Select(id int) uint64 {
	p.selected = id
	p.hasSelection = true

	if !p.hasHighlight || p.highlighted != id {
		if p.hasHighlight {
			p.layout.SetRowHighlight(p.highlighted, false)
		}
		p.layout.SetRowHighlight(id, true)
		p.highlighted = id
		p.hasHighlight = true
	}

	p.generation++
	p.Open()
	return p.generation
}

// Open attaches the detail region. No-op when already open or when nothing is selected.
func (p *PanelController) Open() {
	if p.state == PanelOpen || !p.hasSelection {
		return
	}
	p.state = PanelOpen
	p.layout.AttachDetail()
}

// Close detaches the detail region. No-op when already closed. Selection and
// highlight survive a close.
func (p *PanelController) Close() {
	if p.state == PanelClosed {
		return
	}
	p.state = PanelClosed
	p.layout.DetachDetail()
}

// Toggle closes an open panel and reopens a closed one.
func (p *PanelController) Toggle() {
	if p.state == PanelOpen {
		p.Close()
		return
	}
	p.Open()
}

// IsCurrent reports whether a result issued for (id, gen) still belongs to the selection.
func (p *PanelController) IsCurrent(id int, gen uint64) bool {
	return p.hasSelection && p.selected == id && p.generation == gen
}

func (p *PanelController) Selected() (int, bool) {
	return p.selected, p.hasSelection
}

func (p *PanelController) Highlighted() (int, bool) {
	return p.highlighted, p.hasHighlight
}

func (p *PanelController) State() PanelState {
	return p.state
}

func (p *PanelController) IsOpen() bool {
	return p.state == PanelOpen
}

func (p *PanelController) Generation() uint64 {
	return p.generation
}
