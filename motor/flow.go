package motor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"github.com/pb33f/harhar"
)

// CategoryNone is the category of flows that no registered descriptor claimed.
const CategoryNone = "none"

// FlowRecord is a captured request/response exchange. *Flow is the generic record,
// category specific records embed *Flow and override what they need (usually Preview).
type FlowRecord interface {
	ID() int
	Category() string
	Entry() *harhar.Entry
	Request() *Request
	Response() *Response
	FilterTags() *FilterTags
	AddFilterTag(tag string)
	RemoveFilterTag(tag string)
	Preview(ctx context.Context) PreviewNode
	PreviewEmpty() PreviewNode
	QuerySimilar(ctx context.Context, level int) ([]int, error)
}

// FlowDeps are the collaborators shared by all flows of a store.
type FlowDeps struct {
	Content  ContentSource
	Searcher Searcher
	Previews *PreviewService
	Logger   *slog.Logger
}

// Flow is the generic flow record.
//
// Request and Response facades are built on first use and then kept for the life
// of the flow; they are not rebuilt if the raw entry changes underneath them.
type Flow struct {
	id       int
	category string
	entry    *harhar.Entry
	deps     FlowDeps

	requestOnce  sync.Once
	request      *Request
	responseOnce sync.Once
	response     *Response
	tagsOnce     sync.Once
	tags         *FilterTags
}

// NewFlow creates a generic flow with category "none". Most callers go through
// Registry.Resolve instead.
func NewFlow(id int, entry *harhar.Entry, deps FlowDeps) *Flow {
	if entry == nil {
		entry = &harhar.Entry{}
	}
	if deps.Previews == nil {
		deps.Previews = NewPreviewService()
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Flow{
		id:       id,
		category: CategoryNone,
		entry:    entry,
		deps:     deps,
	}
}

func (f *Flow) ID() int {
	return f.id
}

func (f *Flow) Category() string {
	return f.category
}

// Entry returns the raw capture.
func (f *Flow) Entry() *harhar.Entry {
	return f.entry
}

func (f *Flow) Request() *Request {
	f.requestOnce.Do(func() {
		f.request = newRequest(f.entry)
	})
	return f.request
}

func (f *Flow) Response() *Response {
	f.responseOnce.Do(func() {
		f.response = newResponse(f.id, f.entry, f.deps.Content)
	})
	return f.response
}

// FilterTags returns the live tag set. Use AddFilterTag and RemoveFilterTag to change it.
func (f *Flow) FilterTags() *FilterTags {
	f.tagsOnce.Do(func() {
		f.tags = newFilterTags(f.id)
	})
	return f.tags
}

// AddFilterTag adds a tag, emitting filterTag:add only if it was not already set.
func (f *Flow) AddFilterTag(tag string) {
	f.FilterTags().add(tag)
}

// RemoveFilterTag removes a tag, emitting filterTag:remove only if it was set.
func (f *Flow) RemoveFilterTag(tag string) {
	f.FilterTags().remove(tag)
}

// Preview fetches the response content and wraps it for display. It never fails:
// when the content cannot be fetched the empty placeholder is returned.
func (f *Flow) Preview(ctx context.Context) PreviewNode {
	content, err := f.Response().Content(ctx)
	if err != nil {
		f.deps.Logger.Debug("preview content unavailable", "flow", f.id, "error", err)
		return f.PreviewEmpty()
	}
	return f.deps.Previews.BuildPreview(content)
}

// PreviewEmpty returns the no-content placeholder.
func (f *Flow) PreviewEmpty() PreviewNode {
	return f.deps.Previews.BuildEmptyPreview()
}

// QuerySimilar asks the search service for the ids of flows similar to this one at the
// given distance level. It does not change the flow.
func (f *Flow) QuerySimilar(ctx context.Context, level int) ([]int, error) {
	if level < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLevel, level)
	}

	query := SimilarQuery(f.id, level)
	if f.deps.Searcher == nil {
		return nil, &SearchError{Query: query, Err: ErrNoSearcher}
	}

	ids, err := f.deps.Searcher.Search(ctx, query)
	if err != nil {
		var searchErr *SearchError
		if !errors.As(err, &searchErr) {
			err = &SearchError{Query: query, Err: err}
		}
		return nil, err
	}
	return ids, nil
}

// SimilarQuery builds the ids-only similarTo query for a flow.
func SimilarQuery(id, level int) SearchQuery {
	return SearchQuery{
		IDsOnly: true,
		Filter: []SearchFilter{{
			Type:  FilterSimilarTo,
			Value: strconv.Itoa(id) + "," + strconv.Itoa(level),
			Field: FieldAny,
		}},
	}
}
