package motor

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pb33f/harhar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testHAR = `{
  "log": {
    "version": "1.2",
    "creator": {"name": "flowscope-test", "version": "0.1"},
    "browser": {"name": "Firefox", "version": "120"},
    "pages": [{"startedDateTime": "2024-01-01T00:00:00Z", "id": "page_1", "title": "x", "pageTimings": {}}],
    "entries": [
      {
        "startedDateTime": "2024-01-01T00:00:00Z",
        "time": 10,
        "request": {"method": "GET", "url": "https://api.example.com/users/1", "httpVersion": "HTTP/1.1", "cookies": [], "headers": [], "queryString": [], "headersSize": -1, "bodySize": 0},
        "response": {"status": 200, "statusText": "OK", "httpVersion": "HTTP/1.1", "cookies": [], "headers": [], "redirectURL": "", "headersSize": -1, "bodySize": 13,
          "content": {"size": 13, "mimeType": "application/json", "text": "{\"id\":1}"}},
        "cache": {},
        "timings": {"send": 1, "wait": 8, "receive": 1}
      },
      {
        "startedDateTime": "2024-01-01T00:00:01Z",
        "time": 20,
        "request": {"method": "GET", "url": "https://cdn.example.com/logo.png", "httpVersion": "HTTP/1.1", "cookies": [], "headers": [], "queryString": [], "headersSize": -1, "bodySize": 0},
        "response": {"status": 200, "statusText": "OK", "httpVersion": "HTTP/1.1", "cookies": [], "headers": [], "redirectURL": "", "headersSize": -1, "bodySize": 4,
          "content": {"size": 4, "mimeType": "image/png", "text": "iVBO", "encoding": "base64"}},
        "cache": {},
        "timings": {"send": 1, "wait": 18, "receive": 1}
      },
      {
        "startedDateTime": "2024-01-01T00:00:02Z",
        "time": 5,
        "request": {"method": "DELETE", "url": "https://api.example.com/users/2", "httpVersion": "HTTP/1.1", "cookies": [], "headers": [], "queryString": [], "headersSize": -1, "bodySize": 0},
        "response": {"status": 204, "statusText": "No Content", "httpVersion": "HTTP/1.1", "cookies": [], "headers": [], "redirectURL": "", "headersSize": -1, "bodySize": 0,
          "content": {"size": 0, "mimeType": ""}},
        "cache": {},
        "timings": {"send": 1, "wait": 3, "receive": 1}
      }
    ]
  }
}`

func readTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := ReadStore(context.Background(), strings.NewReader(testHAR), DefaultRegistry(), DefaultStoreOptions())
	require.NoError(t, err)
	return store
}

func TestReadStore(t *testing.T) {
	store := readTestStore(t)

	assert.Equal(t, 3, store.Len())
	assert.Equal(t, "1.2", store.Version())
	require.NotNil(t, store.Creator())
	assert.Equal(t, "flowscope-test", store.Creator().Name)
	require.NotNil(t, store.Browser())
	assert.Equal(t, "Firefox", store.Browser().Name)
	assert.NotEmpty(t, store.Fingerprint())

	flows := store.Flows()
	require.Len(t, flows, 3)
	for i, f := range flows {
		assert.Equal(t, i, f.ID())
	}

	assert.Equal(t, CategoryJSON, flows[0].Category())
	assert.Equal(t, CategoryImage, flows[1].Category())
	assert.Equal(t, CategoryNone, flows[2].Category())
}

func TestReadStore_FingerprintStable(t *testing.T) {
	a := readTestStore(t)
	b := readTestStore(t)
	assert.Equal(t, a.Fingerprint(), b.Fingerprint())

	c, err := ReadStore(context.Background(), strings.NewReader(strings.Replace(testHAR, "users/2", "users/3", 1)), nil, DefaultStoreOptions())
	require.NoError(t, err)
	assert.NotEqual(t, a.Fingerprint(), c.Fingerprint())
}

func TestReadStore_Invalid(t *testing.T) {
	_, err := ReadStore(context.Background(), strings.NewReader(`[1,2,3]`), nil, DefaultStoreOptions())
	assert.Error(t, err)

	_, err = ReadStore(context.Background(), strings.NewReader(`{"log": {"entries": [{"time": "oops"}]}}`), nil, DefaultStoreOptions())
	assert.Error(t, err)
}

func TestReadStore_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ReadStore(ctx, strings.NewReader(testHAR), nil, DefaultStoreOptions())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoadStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "capture.har")
	require.NoError(t, os.WriteFile(path, []byte(testHAR), 0o644))

	store, err := LoadStore(context.Background(), path, nil, DefaultStoreOptions())
	require.NoError(t, err)
	assert.Equal(t, 3, store.Len())
	assert.Equal(t, readTestStore(t).Fingerprint(), store.Fingerprint())
}

func TestLoadStore_MissingFile(t *testing.T) {
	_, err := LoadStore(context.Background(), filepath.Join(t.TempDir(), "nope.har"), nil, DefaultStoreOptions())
	assert.Error(t, err)
}

func TestStore_Purge(t *testing.T) {
	store := readTestStore(t)

	require.NoError(t, store.Purge(1))
	assert.Equal(t, 2, store.Len())

	_, ok := store.Get(1)
	assert.False(t, ok)

	ids := []int{}
	for _, f := range store.Flows() {
		ids = append(ids, f.ID())
	}
	assert.Equal(t, []int{0, 2}, ids)

	assert.ErrorIs(t, store.Purge(1), ErrFlowNotFound)
	assert.ErrorIs(t, store.Purge(99), ErrFlowNotFound)

	// ids are never reused
	added := store.Add(newTestEntry("GET", "https://x.test/", 200, "", ""))
	assert.Equal(t, 3, added.ID())

	stats := store.Stats()
	assert.Equal(t, int64(4), stats.Loaded)
	assert.Equal(t, int64(1), stats.Purged)
}

func TestStore_ResponseContent(t *testing.T) {
	store := readTestStore(t)
	ctx := context.Background()

	content, err := store.ResponseContent(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, `{"id":1}`, content)

	_, err = store.ResponseContent(ctx, 2)
	assert.ErrorIs(t, err, ErrContentUnavailable)

	_, err = store.ResponseContent(ctx, 42)
	assert.ErrorIs(t, err, ErrFlowNotFound)

	stats := store.Stats()
	assert.Equal(t, int64(3), stats.ContentReads)
	assert.Equal(t, int64(2), stats.ContentErrors)
}

func TestStore_FlowsPreviewThroughStore(t *testing.T) {
	store := readTestStore(t)
	ctx := context.Background()

	flow, ok := store.Get(0)
	require.True(t, ok)
	assert.Equal(t, `{"id":1}`, flow.Preview(ctx).Text)

	empty, ok := store.Get(2)
	require.True(t, ok)
	assert.True(t, empty.Preview(ctx).IsEmpty())

	// purged flows lose their content but previewing them still resolves
	require.NoError(t, store.Purge(0))
	assert.True(t, flow.Preview(ctx).IsEmpty())
}

func TestStore_SearchWithoutSearcher(t *testing.T) {
	store := readTestStore(t)
	flow, _ := store.Get(0)

	_, err := flow.QuerySimilar(context.Background(), 1)
	assert.ErrorIs(t, err, ErrNoSearcher)

	var searchErr *SearchError
	assert.ErrorAs(t, err, &searchErr)
}

func TestStore_SetSearcher(t *testing.T) {
	store := readTestStore(t)
	searcher := &recordingSearcher{ids: []int{2}}
	store.SetSearcher(searcher)

	flow, _ := store.Get(0)
	ids, err := flow.QuerySimilar(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, []int{2}, ids)
	assert.Equal(t, "0,1", searcher.queries[0].Filter[0].Value)
}

func TestNewStore(t *testing.T) {
	store := NewStore([]*harhar.Entry{
		newTestEntry("GET", "https://x.test/a.css", 200, "text/css", "body{}"),
		nil,
	}, nil, DefaultStoreOptions())

	assert.Equal(t, 2, store.Len())
	assert.NotEmpty(t, store.Fingerprint())
	assert.Equal(t, map[string]int{CategoryCSS: 1, CategoryNone: 1}, store.Categories())
}

func TestStore_InternsStrings(t *testing.T) {
	store := readTestStore(t)
	// GET, OK, No Content, DELETE, application/json, image/png
	assert.Equal(t, 6, store.strings.Len())
}
