package motor

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/pb33f/harhar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngineStore(t *testing.T) *Store {
	t.Helper()
	return NewStore([]*harhar.Entry{
		newTestEntry("GET", "https://api.example.com/users/1", 200, "application/json", `{"id":1}`),  // 0
		newTestEntry("GET", "https://api.example.com/users/2", 200, "application/json", `{"id":2}`),  // 1
		newTestEntry("GET", "https://api.example.com/users/2/posts", 200, "application/json", `[]`),  // 2
		newTestEntry("POST", "https://api.example.com/users/3", 201, "application/json", `{"id":3}`), // 3
		newTestEntry("GET", "https://other.example.com/users/1", 404, "text/html", "<p>missing</p>"), // 4
		newTestEntry("GET", "https://api.example.com/orders/9/items", 500, "text/plain", "boom"),     // 5
	}, nil, DefaultStoreOptions())
}

func TestSearchEngine_SimilarTo(t *testing.T) {
	store := newEngineStore(t)
	engine := NewSearchEngine(store, DefaultEngineOptions)

	tests := []struct {
		level    int
		expected []int
	}{
		{0, []int{}},
		{1, []int{1}},
		{2, []int{1, 2}},
		{3, []int{1, 2, 5}},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("level %d", tt.level), func(t *testing.T) {
			ids, err := engine.Search(context.Background(), SimilarQuery(0, tt.level))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, ids)
		})
	}
}

func TestSearchEngine_ThroughFlow(t *testing.T) {
	store := newEngineStore(t)
	store.SetSearcher(NewSearchEngine(store, DefaultEngineOptions))

	flow, ok := store.Get(1)
	require.True(t, ok)

	ids, err := flow.QuerySimilar(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2}, ids)
}

func TestSearchEngine_TextFilters(t *testing.T) {
	engine := NewSearchEngine(newEngineStore(t), EngineOptions{WorkerCount: 2, ChunkSize: 1})

	tests := []struct {
		name     string
		filters  []SearchFilter
		expected []int
	}{
		{"contains url", []SearchFilter{{Type: FilterContains, Value: "orders", Field: FieldURL}}, []int{5}},
		{"contains method", []SearchFilter{{Type: FilterContains, Value: "POST", Field: FieldMethod}}, []int{3}},
		{"status", []SearchFilter{{Type: FilterContains, Value: "404", Field: FieldStatus}}, []int{4}},
		{"regex status 5xx", []SearchFilter{{Type: FilterRegex, Value: `^5\d\d$`, Field: FieldStatus}}, []int{5}},
		{"mime any", []SearchFilter{{Type: FilterContains, Value: "text/", Field: FieldAny}}, []int{4, 5}},
		{"empty field is any", []SearchFilter{{Type: FilterContains, Value: "other.example"}}, []int{4}},
		{"and", []SearchFilter{
			{Type: FilterContains, Value: "users", Field: FieldURL},
			{Type: FilterContains, Value: "GET", Field: FieldMethod},
		}, []int{0, 1, 2, 4}},
		{"and with similar", []SearchFilter{
			{Type: FilterSimilarTo, Value: "0,2", Field: FieldAny},
			{Type: FilterContains, Value: "posts", Field: FieldURL},
		}, []int{2}},
		{"no match", []SearchFilter{{Type: FilterContains, Value: "xyznotfound999", Field: FieldAny}}, []int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ids, err := engine.Search(context.Background(), SearchQuery{IDsOnly: true, Filter: tt.filters})
			require.NoError(t, err)
			assert.Equal(t, tt.expected, ids)
		})
	}
}

func TestSearchEngine_InvalidQueries(t *testing.T) {
	engine := NewSearchEngine(newEngineStore(t), DefaultEngineOptions)

	tests := []struct {
		name   string
		filter []SearchFilter
	}{
		{"no filters", nil},
		{"unknown type", []SearchFilter{{Type: "fuzzy", Value: "x"}}},
		{"unknown field", []SearchFilter{{Type: FilterContains, Value: "x", Field: "cookie"}}},
		{"bad regex", []SearchFilter{{Type: FilterRegex, Value: "[invalid("}}},
		{"similar no comma", []SearchFilter{{Type: FilterSimilarTo, Value: "42"}}},
		{"similar bad id", []SearchFilter{{Type: FilterSimilarTo, Value: "x,1"}}},
		{"similar bad level", []SearchFilter{{Type: FilterSimilarTo, Value: "1,y"}}},
		{"similar negative level", []SearchFilter{{Type: FilterSimilarTo, Value: "1,-1"}}},
		{"similar unknown flow", []SearchFilter{{Type: FilterSimilarTo, Value: "99,1"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := engine.Search(context.Background(), SearchQuery{Filter: tt.filter})
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidFilter)

			var searchErr *SearchError
			require.True(t, errors.As(err, &searchErr))
			assert.Equal(t, 400, searchErr.Status)
		})
	}
}

func TestSearchEngine_EmptyStore(t *testing.T) {
	engine := NewSearchEngine(NewStore(nil, nil, DefaultStoreOptions()), DefaultEngineOptions)

	ids, err := engine.Search(context.Background(), SearchQuery{Filter: []SearchFilter{{Type: FilterContains, Value: "x"}}})
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestSearchEngine_CancelledContext(t *testing.T) {
	engine := NewSearchEngine(newEngineStore(t), DefaultEngineOptions)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := engine.Search(ctx, SearchQuery{Filter: []SearchFilter{{Type: FilterContains, Value: "x"}}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSearchEngine_SkipsPurged(t *testing.T) {
	store := newEngineStore(t)
	require.NoError(t, store.Purge(1))
	engine := NewSearchEngine(store, DefaultEngineOptions)

	ids, err := engine.Search(context.Background(), SimilarQuery(0, 2))
	require.NoError(t, err)
	assert.Equal(t, []int{2}, ids)
}

func TestSearchEngine_Stats(t *testing.T) {
	engine := NewSearchEngine(newEngineStore(t), DefaultEngineOptions)

	_, err := engine.Search(context.Background(), SimilarQuery(0, 1))
	require.NoError(t, err)

	stats := engine.Stats()
	assert.Equal(t, int64(1), stats.Queries)
	assert.Equal(t, int64(6), stats.FlowsSearched)
	assert.Equal(t, int64(1), stats.MatchesFound)
}

func TestCreateWorkBatches(t *testing.T) {
	batches := createWorkBatches(10, EngineOptions{WorkerCount: 3})
	require.Len(t, batches, 3)
	assert.Equal(t, workBatch{0, 4}, batches[0])
	assert.Equal(t, workBatch{8, 10}, batches[2])

	batches = createWorkBatches(5, EngineOptions{WorkerCount: 1, ChunkSize: 2})
	assert.Equal(t, []workBatch{{0, 2}, {2, 4}, {4, 5}}, batches)

	assert.Empty(t, createWorkBatches(0, EngineOptions{WorkerCount: 4}))
}
