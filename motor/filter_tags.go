package motor

import (
	"sort"
	"sync"
)

// event names emitted by FilterTags, the payload is always the tag
const (
	EventFilterTagAdd    = "filterTag:add"
	EventFilterTagRemove = "filterTag:remove"
)

// FilterTagEvent is delivered to observers when a tag is added to or removed from a flow.
type FilterTagEvent struct {
	Name   string // EventFilterTagAdd or EventFilterTagRemove
	FlowID int
	Tag    string
}

// FilterTagObserver receives filter tag events. It is called synchronously on the
// goroutine that changed the tag set, after the change is visible.
type FilterTagObserver func(FilterTagEvent)

type tagObserver struct {
	id int
	fn FilterTagObserver
}

// FilterTags is the set of filter tags attached to a single flow. Filter tags are labels
// used for conditional display (highlighting, hiding) and are independent of the category.
//
// The set is only mutated through Flow.AddFilterTag and Flow.RemoveFilterTag; readers get
// Has, Len and List. Observers are only notified when membership actually changes.
type FilterTags struct {
	flowID    int
	mu        sync.Mutex
	tags      map[string]struct{}
	observers []tagObserver
	nextID    int
}

func newFilterTags(flowID int) *FilterTags {
	return &FilterTags{
		flowID: flowID,
		tags:   make(map[string]struct{}),
	}
}

// Has reports whether the tag is set.
func (t *FilterTags) Has(tag string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.tags[tag]
	return ok
}

// Len returns the number of tags.
func (t *FilterTags) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.tags)
}

// List returns a sorted copy of the tags.
func (t *FilterTags) List() []string {
	t.mu.Lock()
	out := make([]string, 0, len(t.tags))
	for tag := range t.tags {
		out = append(out, tag)
	}
	t.mu.Unlock()

	sort.Strings(out)
	return out
}

// On registers an observer and returns a function that removes it.
func (t *FilterTags) On(fn FilterTagObserver) (unsubscribe func()) {
	if fn == nil {
		return func() {}
	}

	t.mu.Lock()
	id := t.nextID
	t.nextID++
	t.observers = append(t.observers, tagObserver{id: id, fn: fn})
	t.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			t.mu.Lock()
			defer t.mu.Unlock()
			for i, o := range t.observers {
				if o.id == id {
					t.observers = append(t.observers[:i], t.observers[i+1:]...)
					return
				}
			}
		})
	}
}

func (t *FilterTags) add(tag string) bool {
	t.mu.Lock()
	if _, exists := t.tags[tag]; exists {
		t.mu.Unlock()
		return false
	}
	t.tags[tag] = struct{}{}
	observers := t.snapshotObservers()
	t.mu.Unlock()

	t.emit(observers, EventFilterTagAdd, tag)
	return true
}

func (t *FilterTags) remove(tag string) bool {
	t.mu.Lock()
	if _, exists := t.tags[tag]; !exists {
		t.mu.Unlock()
		return false
	}
	delete(t.tags, tag)
	observers := t.snapshotObservers()
	t.mu.Unlock()

	t.emit(observers, EventFilterTagRemove, tag)
	return true
}

// must hold t.mu
func (t *FilterTags) snapshotObservers() []tagObserver {
	if len(t.observers) == 0 {
		return nil
	}
	out := make([]tagObserver, len(t.observers))
	copy(out, t.observers)
	return out
}

// observers run outside the lock so they may read the set back
func (t *FilterTags) emit(observers []tagObserver, name, tag string) {
	evt := FilterTagEvent{Name: name, FlowID: t.flowID, Tag: tag}
	for _, o := range observers {
		o.fn(evt)
	}
}
