package tui

import (
	"github.com/pb33f/flowscope/motor"
)

// FlowFilter decides which flows the table shows
type FlowFilter interface {
	ShouldShow(flow motor.FlowRecord) bool
	IsActive() bool
}

// IDFilter shows a fixed set of flow ids, e.g. the result of a similarity query
type IDFilter struct {
	ids    map[int]struct{}
	active bool
}

func NewIDFilter() *IDFilter {
	return &IDFilter{ids: make(map[int]struct{})}
}

// Set replaces the id set and activates the filter, even when ids is empty
func (f *IDFilter) Set(ids []int) {
	f.ids = make(map[int]struct{}, len(ids))
	for _, id := range ids {
		f.ids[id] = struct{}{}
	}
	f.active = true
}

// Include adds an id to an active filter, used to keep the reference flow visible
func (f *IDFilter) Include(id int) {
	f.ids[id] = struct{}{}
}

func (f *IDFilter) ShouldShow(flow motor.FlowRecord) bool {
	_, found := f.ids[flow.ID()]
	return found
}

func (f *IDFilter) IsActive() bool {
	return f.active
}

func (f *IDFilter) Clear() {
	f.ids = make(map[int]struct{})
	f.active = false
}

func (f *IDFilter) Len() int {
	return len(f.ids)
}

// TagFilter shows flows carrying a filter tag. Membership is fed from tag events
// rather than read off each flow, so untagged flows never grow a tag set.
type TagFilter struct {
	tag     string
	members map[int]struct{}
	active  bool
}

func NewTagFilter(tag string) *TagFilter {
	return &TagFilter{tag: tag, members: make(map[int]struct{})}
}

// Observe applies a tag event. Events for other tags are ignored.
func (f *TagFilter) Observe(e motor.FilterTagEvent) {
	if e.Tag != f.tag {
		return
	}
	switch e.Name {
	case motor.EventFilterTagAdd:
		f.members[e.FlowID] = struct{}{}
	case motor.EventFilterTagRemove:
		delete(f.members, e.FlowID)
	}
}

func (f *TagFilter) Has(flowID int) bool {
	_, ok := f.members[flowID]
	return ok
}

func (f *TagFilter) Len() int {
	return len(f.members)
}

func (f *TagFilter) ShouldShow(flow motor.FlowRecord) bool {
	return f.Has(flow.ID())
}

func (f *TagFilter) IsActive() bool {
	return f.active
}

func (f *TagFilter) SetActive(active bool) {
	f.active = active
}

func (f *TagFilter) Tag() string {
	return f.tag
}

// FilterChain ANDs the active filters
type FilterChain struct {
	filters []FlowFilter
}

func NewFilterChain(filters ...FlowFilter) *FilterChain {
	return &FilterChain{filters: filters}
}

func (fc *FilterChain) HasActiveFilters() bool {
	for _, f := range fc.filters {
		if f.IsActive() {
			return true
		}
	}
	return false
}

// Apply returns the flows passing every active filter, in input order
func (fc *FilterChain) Apply(flows []motor.FlowRecord) []motor.FlowRecord {
	if !fc.HasActiveFilters() {
		return flows
	}

	filtered := make([]motor.FlowRecord, 0, len(flows))
	for _, flow := range flows {
		if fc.passes(flow) {
			filtered = append(filtered, flow)
		}
	}
	return filtered
}

func (fc *FilterChain) passes(flow motor.FlowRecord) bool {
	for _, f := range fc.filters {
		if f.IsActive() && !f.ShouldShow(flow) {
			return false
		}
	}
	return true
}
