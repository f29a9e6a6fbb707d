package tui

import (
	"context"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/v2/spinner"
	"github.com/charmbracelet/bubbles/v2/table"
	"github.com/charmbracelet/bubbles/v2/viewport"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/pb33f/flowscope/motor"
)

// FlowViewModel is the terminal UI over a flow store. Selection, tag changes and
// panel transitions all happen in Update; previews and similarity queries run as
// commands and come back as messages tagged with the selection they were issued for.
type FlowViewModel struct {
	ctx    context.Context
	loader StoreLoader
	store  *motor.Store
	logger *slog.Logger

	table   table.Model
	rows    []table.Row
	visible []motor.FlowRecord

	regions *Regions
	panel   *PanelController

	similarFilter *IDFilter
	tagFilter     *TagFilter
	filters       *FilterChain
	tagSubs       map[int]func()
	tagCounts     map[int]int
	events        []string

	detail         viewport.Model
	preview        motor.PreviewNode
	previewLoading bool

	similarLevel   int
	similarFor     int
	similarIDs     []int
	similarErr     error
	similarLoading bool
	hasSimilar     bool

	width    int
	height   int
	ready    bool
	quitting bool

	fileName       string
	loadState      LoadState
	loadingSpinner spinner.Model
	loadTime       time.Duration
	err            error
}

// NewFlowViewModel creates a model that loads its store with loader on Init.
func NewFlowViewModel(ctx context.Context, fileName string, loader StoreLoader) *FlowViewModel {
	regions := NewRegions()
	tagFilter := NewTagFilter(flaggedTag)
	similarFilter := NewIDFilter()

	return &FlowViewModel{
		ctx:            ctx,
		loader:         loader,
		logger:         slog.Default(),
		regions:        regions,
		panel:          NewPanelController(regions),
		similarFilter:  similarFilter,
		tagFilter:      tagFilter,
		filters:        NewFilterChain(similarFilter, tagFilter),
		tagSubs:        make(map[int]func()),
		tagCounts:      make(map[int]int),
		similarLevel:   defaultSimilarLevel,
		fileName:       fileName,
		loadState:      LoadStateLoading,
		loadingSpinner: createLoadingSpinner(),
	}
}

// NewFlowViewModelForStore creates a model over an already loaded store.
func NewFlowViewModelForStore(ctx context.Context, name string, store *motor.Store) *FlowViewModel {
	m := NewFlowViewModel(ctx, name, func(context.Context) (*motor.Store, error) {
		return store, nil
	})
	m.setStore(store, store.Stats().LoadTime)
	return m
}

func (m *FlowViewModel) Init() tea.Cmd {
	if m.loadState != LoadStateLoading {
		return nil
	}
	return tea.Batch(m.loadingSpinner.Tick, m.startLoading())
}

func (m *FlowViewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	if m.busy() {
		var cmd tea.Cmd
		m.loadingSpinner, cmd = m.loadingSpinner.Update(msg)
		cmds = append(cmds, cmd)
		if m.previewLoading {
			m.refreshDetail()
		}
	}

	switch msg := msg.(type) {
	case storeLoadedMsg:
		m.setStore(msg.store, msg.duration)
		return m, nil

	case storeErrorMsg:
		m.loadState = LoadStateError
		m.err = msg.err
		return m, nil

	case previewMsg:
		m.applyPreview(msg)
		return m, nil

	case similarMsg:
		m.applySimilar(msg)
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		return m, tea.Batch(cmds...)

	case tea.KeyPressMsg:
		key := msg.String()
		if cmd, handled := m.handleKey(key); handled {
			return m, cmd
		}
		if m.loadState == LoadStateLoaded && m.regions.DetailAttached() && (key == "pgup" || key == "pgdown") {
			var cmd tea.Cmd
			m.detail, cmd = m.detail.Update(msg)
			return m, cmd
		}
	}

	if m.loadState == LoadStateLoaded {
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *FlowViewModel) View() string {
	if m.quitting {
		return ""
	}

	switch m.loadState {
	case LoadStateLoading:
		return m.renderLoadingView()
	case LoadStateError:
		return m.renderErrorView()
	case LoadStateLoaded:
		if !m.ready {
			return "Initializing..."
		}
		return m.render()
	default:
		return "Unknown state"
	}
}

// handleKey runs the model's own key bindings. Keys it does not bind fall through
// to the table.
func (m *FlowViewModel) handleKey(key string) (tea.Cmd, bool) {
	switch key {
	case "q", "ctrl+c":
		m.quitting = true
		return tea.Quit, true
	}

	if m.loadState != LoadStateLoaded {
		return nil, false
	}

	switch key {
	case "enter":
		return m.selectCursor(), true

	case "esc":
		if m.panel.IsOpen() {
			m.panel.Close()
			m.layout()
		} else if m.filters.HasActiveFilters() {
			m.similarFilter.Clear()
			m.tagFilter.SetActive(false)
			m.refreshRows()
		}
		return nil, true

	case "o":
		m.panel.Toggle()
		m.layout()
		return nil, true

	case "f":
		m.toggleFlag()
		return nil, true

	case "F":
		m.tagFilter.SetActive(!m.tagFilter.IsActive())
		m.refreshRows()
		return nil, true

	case "s":
		return m.startSimilarQuery(), true

	case "+", "=":
		m.similarLevel = min(m.similarLevel+1, maxSimilarLevel)
		return nil, true

	case "-":
		m.similarLevel = max(m.similarLevel-1, 0)
		return nil, true

	case "m":
		m.toggleSimilarFilter()
		return nil, true
	}

	return nil, false
}

func (m *FlowViewModel) busy() bool {
	return m.loadState == LoadStateLoading || m.previewLoading || m.similarLoading
}

func (m *FlowViewModel) setStore(store *motor.Store, duration time.Duration) {
	m.store = store
	m.loadTime = duration
	m.loadState = LoadStateLoaded

	m.table = ApplyTableStyles(table.New(
		table.WithColumns(flowColumns(m.width)),
		table.WithFocused(true),
	))
	m.layout()

	m.logger.Info("capture loaded",
		"file", m.fileName,
		"flows", store.Len(),
		"fingerprint", store.Fingerprint(),
		"load_time", duration)
}

// layout recomputes region sizes after a resize or a panel transition
func (m *FlowViewModel) layout() {
	if m.loadState != LoadStateLoaded || m.width == 0 || m.height == 0 {
		return
	}

	g := m.regions.Geometry(m.width, m.height)

	m.table.SetColumns(flowColumns(g.MainWidth))
	m.table.SetWidth(g.MainWidth)
	m.table.SetHeight(max(g.MainHeight-tableChrome, 1))

	if m.regions.DetailAttached() {
		w := max(g.DetailWidth-regionPadding, 1)
		h := max(g.DetailHeight-regionPadding, 1)
		if m.detail.Width() == 0 {
			m.detail = viewport.New(viewport.WithWidth(w), viewport.WithHeight(h))
		} else {
			m.detail.SetWidth(w)
			m.detail.SetHeight(h)
		}
	}

	m.refreshRows()
	m.refreshDetail()
	m.ready = true
}

// refreshRows rebuilds the table from the store through the active filters
func (m *FlowViewModel) refreshRows() {
	if m.store == nil {
		return
	}

	width := m.width
	if width > 0 {
		width = m.regions.Geometry(m.width, m.height).MainWidth
	}

	m.visible = m.filters.Apply(m.store.Flows())
	m.rows = buildFlowRows(m.visible, m.regions, m.isTagged, width)
	m.table.SetRows(m.rows)

	if c := m.table.Cursor(); len(m.rows) > 0 && (c < 0 || c >= len(m.rows)) {
		m.table.SetCursor(len(m.rows) - 1)
	}
}

func (m *FlowViewModel) cursorFlow() motor.FlowRecord {
	c := m.table.Cursor()
	if c < 0 || c >= len(m.visible) {
		return nil
	}
	return m.visible[c]
}

func (m *FlowViewModel) selectedFlow() motor.FlowRecord {
	id, ok := m.panel.Selected()
	if !ok {
		return nil
	}
	flow, found := m.store.Get(id)
	if !found {
		return nil
	}
	return flow
}

// selectCursor selects the flow under the cursor. The highlight and the table are
// updated before the preview command is handed back to the runtime.
func (m *FlowViewModel) selectCursor() tea.Cmd {
	flow := m.cursorFlow()
	if flow == nil {
		return nil
	}

	gen := m.panel.Select(flow.ID())
	m.previewLoading = true
	// a query still in flight belongs to the old selection and will be dropped
	m.similarLoading = false
	m.preview = flow.PreviewEmpty()
	m.layout()
	m.detail.GotoTop()

	return tea.Batch(fetchPreview(m.ctx, flow, gen), m.loadingSpinner.Tick)
}

func (m *FlowViewModel) applyPreview(msg previewMsg) {
	if !m.panel.IsCurrent(msg.flowID, msg.generation) {
		m.logger.Debug("discarding stale preview", "flow", msg.flowID, "generation", msg.generation)
		return
	}
	m.preview = msg.node
	m.previewLoading = false
	m.refreshDetail()
}

func (m *FlowViewModel) startSimilarQuery() tea.Cmd {
	flow := m.selectedFlow()
	if flow == nil {
		return nil
	}

	m.similarLoading = true
	m.similarErr = nil
	return tea.Batch(
		querySimilar(m.ctx, flow, m.similarLevel, m.panel.Generation()),
		m.loadingSpinner.Tick,
	)
}

func (m *FlowViewModel) applySimilar(msg similarMsg) {
	if !m.panel.IsCurrent(msg.flowID, msg.generation) {
		m.logger.Debug("discarding stale similarity result", "flow", msg.flowID, "generation", msg.generation)
		return
	}

	m.similarLoading = false
	m.similarFor = msg.flowID
	m.similarErr = msg.err
	m.similarIDs = msg.ids
	m.hasSimilar = true

	if msg.err != nil {
		m.logger.Warn("similarity query failed", "flow", msg.flowID, "level", msg.level, "error", msg.err)
		m.similarIDs = nil
		return
	}

	if m.similarFilter.IsActive() {
		m.applySimilarFilter()
	}
}

func (m *FlowViewModel) toggleSimilarFilter() {
	if m.similarFilter.IsActive() {
		m.similarFilter.Clear()
		m.refreshRows()
		return
	}
	if !m.hasSimilar || m.similarErr != nil {
		return
	}
	m.applySimilarFilter()
}

// the reference flow stays visible next to its matches
func (m *FlowViewModel) applySimilarFilter() {
	m.similarFilter.Set(m.similarIDs)
	m.similarFilter.Include(m.similarFor)
	m.refreshRows()
}

func (m *FlowViewModel) toggleFlag() {
	flow := m.cursorFlow()
	if flow == nil {
		return
	}

	m.observeTags(flow)
	if flow.FilterTags().Has(flaggedTag) {
		flow.RemoveFilterTag(flaggedTag)
	} else {
		flow.AddFilterTag(flaggedTag)
	}
}

// observeTags subscribes to a flow's tag events the first time the UI touches its tags
func (m *FlowViewModel) observeTags(flow motor.FlowRecord) {
	if _, ok := m.tagSubs[flow.ID()]; ok {
		return
	}
	m.tagSubs[flow.ID()] = flow.FilterTags().On(m.onTagEvent)
}

func (m *FlowViewModel) onTagEvent(e motor.FilterTagEvent) {
	switch e.Name {
	case motor.EventFilterTagAdd:
		m.tagCounts[e.FlowID]++
	case motor.EventFilterTagRemove:
		if m.tagCounts[e.FlowID]--; m.tagCounts[e.FlowID] <= 0 {
			delete(m.tagCounts, e.FlowID)
		}
	}
	m.tagFilter.Observe(e)

	m.events = append(m.events, formatTagEvent(e))
	if len(m.events) > maxEventsShown {
		m.events = m.events[len(m.events)-maxEventsShown:]
	}
	m.refreshRows()
}

func (m *FlowViewModel) isTagged(id int) bool {
	return m.tagCounts[id] > 0
}

// Cleanup drops tag subscriptions
func (m *FlowViewModel) Cleanup() error {
	for id, unsubscribe := range m.tagSubs {
		unsubscribe()
		delete(m.tagSubs, id)
	}
	return nil
}
