package tui

const (
	headerHeight    = 2
	statusBarHeight = 1
	regionPadding   = 2
	tableChrome     = 2 // table header and its border

	rightColumnRatio    = 0.28
	minRightColumnWidth = 24

	minURLColumnWidth = 20
	maxURLColumnWidth = 100

	idColumnWidth       = 6
	methodColumnWidth   = 8
	statusColumnWidth   = 10
	categoryColumnWidth = 11
	durationColumnWidth = 10
	borderPadding       = 12

	maxPreviewLength = 5000

	// similarity level bounds for the +/- keys
	defaultSimilarLevel = 1
	maxSimilarLevel     = 9

	// tag toggled by the f key
	flaggedTag = "flagged"

	// flows the right column lists before eliding
	maxSimilarListed = 20
	maxEventsShown   = 5

	highlightMarker = "●"
)
