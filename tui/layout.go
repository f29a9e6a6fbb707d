package tui

// Region names one of the screen containers
type Region int

const (
	RegionHeader   Region = iota // top
	RegionMain                   // center, the flow table
	RegionDetail                 // bottom, toggled by the panel controller
	RegionRightCol               // right, tags and similar flows
)

func (r Region) String() string {
	switch r {
	case RegionHeader:
		return "header"
	case RegionMain:
		return "main"
	case RegionDetail:
		return "detail"
	case RegionRightCol:
		return "rightCol"
	}
	return "unknown"
}

// Regions is the terminal layout. It implements Layout for the panel controller and
// knows nothing about flows beyond their ids.
type Regions struct {
	detailAttached bool
	highlighted    map[int]struct{}
}

func NewRegions() *Regions {
	return &Regions{highlighted: make(map[int]struct{})}
}

func (r *Regions) AttachDetail() {
	r.detailAttached = true
}

func (r *Regions) DetachDetail() {
	r.detailAttached = false
}

func (r *Regions) SetRowHighlight(flowID int, on bool) {
	if on {
		r.highlighted[flowID] = struct{}{}
		return
	}
	delete(r.highlighted, flowID)
}

func (r *Regions) DetailAttached() bool {
	return r.detailAttached
}

func (r *Regions) IsHighlighted(flowID int) bool {
	_, ok := r.highlighted[flowID]
	return ok
}

// Visible lists the attached regions in render order
func (r *Regions) Visible() []Region {
	if r.detailAttached {
		return []Region{RegionHeader, RegionMain, RegionDetail, RegionRightCol}
	}
	return []Region{RegionHeader, RegionMain, RegionRightCol}
}

// Geometry is the size of each region for a terminal size
type Geometry struct {
	MainWidth, MainHeight     int
	DetailWidth, DetailHeight int
	RightWidth, RightHeight   int
}

// Geometry splits the screen: the right column takes a fixed share of the width,
// the detail region takes the bottom half of the left side when attached.
func (r *Regions) Geometry(width, height int) Geometry {
	body := height - headerHeight - statusBarHeight
	if body < 1 {
		body = 1
	}

	right := int(float64(width) * rightColumnRatio)
	if right < minRightColumnWidth {
		right = minRightColumnWidth
	}
	if right > width/2 {
		right = width / 2
	}
	left := width - right

	g := Geometry{
		MainWidth:   left,
		MainHeight:  body,
		RightWidth:  right,
		RightHeight: body,
	}

	if r.detailAttached {
		g.MainHeight = body / 2
		g.DetailWidth = left
		g.DetailHeight = body - g.MainHeight
	}
	return g
}
