package motor

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlow_FacadesAreMemoized(t *testing.T) {
	flow := NewFlow(7, newTestEntry("GET", "https://example.com/a", 200, "text/plain", "hello"), FlowDeps{})

	req1 := flow.Request()
	req2 := flow.Request()
	assert.Same(t, req1, req2)

	resp1 := flow.Response()
	resp2 := flow.Response()
	assert.Same(t, resp1, resp2)
}

func TestFlow_FacadeNotRebuiltAfterRawMutation(t *testing.T) {
	entry := newTestEntry("GET", "https://example.com/a", 200, "text/plain", "hello")
	flow := NewFlow(1, entry, FlowDeps{})

	req := flow.Request()
	entry.Request.URL = "https://example.com/b"

	// same facade, reading the raw data live
	assert.Same(t, req, flow.Request())
	assert.Equal(t, "https://example.com/b", flow.Request().URL())
}

func TestFlow_Accessors(t *testing.T) {
	flow := NewFlow(3, newTestEntry("POST", "https://api.example.com/v1/users?x=1", 201, "application/json", `{"id":1}`), FlowDeps{})

	assert.Equal(t, 3, flow.ID())
	assert.Equal(t, CategoryNone, flow.Category())
	assert.Equal(t, "POST", flow.Request().Method())
	assert.Equal(t, "api.example.com", flow.Request().Host())
	assert.Equal(t, "/v1/users", flow.Request().Path())
	assert.Equal(t, 201, flow.Response().Status())
	assert.Equal(t, "application/json", flow.Response().MimeType())
}

func TestFlow_NilEntry(t *testing.T) {
	flow := NewFlow(0, nil, FlowDeps{})
	require.NotNil(t, flow.Entry())
	assert.Equal(t, "/", flow.Request().Path())
	assert.True(t, flow.Preview(context.Background()).IsEmpty())
}

func TestFlow_Preview_Content(t *testing.T) {
	flow := NewFlow(1, newTestEntry("GET", "https://example.com/", 200, "text/plain", "hello world"), FlowDeps{})

	node := flow.Preview(context.Background())
	assert.Equal(t, PreviewContent, node.Kind)
	assert.Equal(t, "preview", node.Class)
	assert.Equal(t, "hello world", node.Text)
}

func TestFlow_Preview_Base64(t *testing.T) {
	entry := newTestEntry("GET", "https://example.com/", 200, "text/plain", "aGVsbG8=")
	entry.Response.Body.Encoding = "base64"
	flow := NewFlow(1, entry, FlowDeps{})

	assert.Equal(t, "hello", flow.Preview(context.Background()).Text)
}

func TestFlow_Preview_FetchFailureResolvesToPlaceholder(t *testing.T) {
	source := &stubContent{err: errTransport}
	flow := NewFlow(1, newTestEntry("GET", "https://example.com/", 200, "text/plain", "ignored"), FlowDeps{Content: source})

	node := flow.Preview(context.Background())
	assert.True(t, node.IsEmpty())
	assert.Equal(t, flow.PreviewEmpty(), node)
	assert.Equal(t, 1, source.calls)
}

func TestFlow_Preview_EmptyContentResolvesToPlaceholder(t *testing.T) {
	flow := NewFlow(1, newTestEntry("GET", "https://example.com/", 204, "", ""), FlowDeps{})
	assert.True(t, flow.Preview(context.Background()).IsEmpty())
}

func TestFlow_Preview_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	flow := NewFlow(1, newTestEntry("GET", "https://example.com/", 200, "text/plain", "hello"), FlowDeps{})
	assert.True(t, flow.Preview(ctx).IsEmpty())
}

func TestFlow_PreviewEmpty(t *testing.T) {
	flow := NewFlow(1, nil, FlowDeps{})
	node := flow.PreviewEmpty()
	assert.Equal(t, PreviewEmpty, node.Kind)
	assert.Equal(t, "No response content.", node.Text)
}

func TestFlow_QuerySimilar_Payload(t *testing.T) {
	searcher := &recordingSearcher{ids: []int{3, 9}}
	flow := NewFlow(42, nil, FlowDeps{Searcher: searcher})

	ids, err := flow.QuerySimilar(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, []int{3, 9}, ids)

	require.Len(t, searcher.queries, 1)
	q := searcher.queries[0]
	assert.True(t, q.IDsOnly)
	require.Len(t, q.Filter, 1)
	assert.Equal(t, "similarTo", q.Filter[0].Type)
	assert.Equal(t, "42,2", q.Filter[0].Value)
	assert.Equal(t, "any", q.Filter[0].Field)
}

func TestFlow_QuerySimilar_NegativeLevel(t *testing.T) {
	searcher := &recordingSearcher{}
	flow := NewFlow(1, nil, FlowDeps{Searcher: searcher})

	_, err := flow.QuerySimilar(context.Background(), -1)
	assert.ErrorIs(t, err, ErrInvalidLevel)
	assert.Empty(t, searcher.queries)
}

func TestFlow_QuerySimilar_FailureIsSearchError(t *testing.T) {
	flow := NewFlow(5, nil, FlowDeps{Searcher: &recordingSearcher{err: errTransport}})

	_, err := flow.QuerySimilar(context.Background(), 1)
	require.Error(t, err)

	var searchErr *SearchError
	require.True(t, errors.As(err, &searchErr))
	assert.ErrorIs(t, err, errTransport)
	assert.Equal(t, "5,1", searchErr.Query.Filter[0].Value)
}

func TestFlow_QuerySimilar_NoSearcher(t *testing.T) {
	flow := NewFlow(5, nil, FlowDeps{})

	_, err := flow.QuerySimilar(context.Background(), 0)
	assert.ErrorIs(t, err, ErrNoSearcher)
}

func TestFlow_QuerySimilar_DoesNotTouchFlow(t *testing.T) {
	flow := NewFlow(5, nil, FlowDeps{Searcher: &recordingSearcher{ids: []int{1}}})
	flow.AddFilterTag("keep")

	_, err := flow.QuerySimilar(context.Background(), 1)
	require.NoError(t, err)
	_, err = flow.QuerySimilar(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, []string{"keep"}, flow.FilterTags().List())
	assert.Equal(t, CategoryNone, flow.Category())
}
