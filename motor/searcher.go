package motor

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// EngineOptions configures the local search engine
type EngineOptions struct {
	WorkerCount int // default: runtime.NumCPU()
	ChunkSize   int // flows per work batch (default: 0 = auto-partition)
}

// DefaultEngineOptions provides sensible defaults
var DefaultEngineOptions = EngineOptions{
	WorkerCount: runtime.NumCPU(),
	ChunkSize:   0,
}

// SearchStats tracks search performance metrics
type SearchStats struct {
	Queries        int64         // queries executed
	FlowsSearched  int64         // total flows evaluated
	MatchesFound   int64         // total matches found
	SearchDuration time.Duration // duration of the last query
}

type searchAtomicStats struct {
	queries        int64
	flowsSearched  int64
	matchesFound   int64
	searchDuration int64 // nanoseconds
}

// SearchEngine answers search queries over a flow collection in process. It is what
// the serve command exposes, and it satisfies Searcher directly for single-process use.
type SearchEngine struct {
	source FlowSource
	opts   EngineOptions
	stats  searchAtomicStats
}

// NewSearchEngine creates an engine over the given flows
func NewSearchEngine(source FlowSource, opts EngineOptions) *SearchEngine {
	if opts.WorkerCount <= 0 {
		opts.WorkerCount = runtime.NumCPU()
	}
	return &SearchEngine{source: source, opts: opts}
}

// flowMatcher is a compiled filter
type flowMatcher func(FlowRecord) bool

// Search evaluates every filter of the query against every live flow and returns the
// ids of flows matching all of them, in ascending order.
func (e *SearchEngine) Search(ctx context.Context, query SearchQuery) ([]int, error) {
	// compile filters once (not per flow!)
	matchers, err := e.compile(query)
	if err != nil {
		return nil, &SearchError{Query: query, Status: 400, Err: err}
	}

	atomic.AddInt64(&e.stats.queries, 1)
	startTime := time.Now()

	flows := e.source.Flows()
	if len(flows) == 0 {
		return []int{}, nil
	}

	batches := createWorkBatches(len(flows), e.opts)

	workQueue := make(chan workBatch, e.opts.WorkerCount*2)
	results := make(chan []int, e.opts.WorkerCount)

	var wg sync.WaitGroup
	for i := 0; i < e.opts.WorkerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			worker(ctx, workQueue, results, e, flows, matchers)
		}()
	}

	// producer goroutine
	go func() {
		defer close(workQueue)
		for _, batch := range batches {
			select {
			case workQueue <- batch:
			case <-ctx.Done():
				return
			}
		}
	}()

	// collector goroutine
	go func() {
		wg.Wait()
		close(results)
	}()

	ids := make([]int, 0)
	for batch := range results {
		ids = append(ids, batch...)
	}

	atomic.StoreInt64(&e.stats.searchDuration, int64(time.Since(startTime)))

	if err := ctx.Err(); err != nil {
		return nil, &SearchError{Query: query, Err: err}
	}

	sort.Ints(ids)
	return ids, nil
}

// Stats returns current search statistics
func (e *SearchEngine) Stats() SearchStats {
	return SearchStats{
		Queries:        atomic.LoadInt64(&e.stats.queries),
		FlowsSearched:  atomic.LoadInt64(&e.stats.flowsSearched),
		MatchesFound:   atomic.LoadInt64(&e.stats.matchesFound),
		SearchDuration: time.Duration(atomic.LoadInt64(&e.stats.searchDuration)),
	}
}

func (e *SearchEngine) compile(query SearchQuery) ([]flowMatcher, error) {
	if len(query.Filter) == 0 {
		return nil, fmt.Errorf("%w: query has no filters", ErrInvalidFilter)
	}

	matchers := make([]flowMatcher, 0, len(query.Filter))
	for _, f := range query.Filter {
		m, err := e.compileFilter(f)
		if err != nil {
			return nil, err
		}
		matchers = append(matchers, m)
	}
	return matchers, nil
}

func (e *SearchEngine) compileFilter(f SearchFilter) (flowMatcher, error) {
	switch f.Type {
	case FilterSimilarTo:
		return e.compileSimilar(f.Value)
	case FilterContains:
		return compileTextFilter(f, PlainText)
	case FilterRegex:
		return compileTextFilter(f, Regex)
	default:
		return nil, fmt.Errorf("%w: unknown type %q", ErrInvalidFilter, f.Type)
	}
}

// similarTo values are "<id>,<level>"
func (e *SearchEngine) compileSimilar(value string) (flowMatcher, error) {
	idPart, levelPart, ok := strings.Cut(value, ",")
	if !ok {
		return nil, fmt.Errorf("%w: similarTo value %q is not <id>,<level>", ErrInvalidFilter, value)
	}

	id, err := strconv.Atoi(strings.TrimSpace(idPart))
	if err != nil {
		return nil, fmt.Errorf("%w: similarTo id %q: %v", ErrInvalidFilter, idPart, err)
	}
	level, err := strconv.Atoi(strings.TrimSpace(levelPart))
	if err != nil {
		return nil, fmt.Errorf("%w: similarTo level %q: %v", ErrInvalidFilter, levelPart, err)
	}
	if level < 0 {
		return nil, fmt.Errorf("%w: %w: %d", ErrInvalidFilter, ErrInvalidLevel, level)
	}

	ref, found := e.source.Get(id)
	if !found {
		return nil, fmt.Errorf("%w: %w: %d", ErrInvalidFilter, ErrFlowNotFound, id)
	}

	return func(candidate FlowRecord) bool {
		return similarTo(ref, candidate, level)
	}, nil
}

func compileTextFilter(f SearchFilter, mode SearchMode) (flowMatcher, error) {
	pattern, err := compilePattern(f.Value, mode)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFilter, err)
	}

	field := f.Field
	if field == "" {
		field = FieldAny
	}

	var fields []string
	switch field {
	case FieldAny:
		fields = []string{FieldURL, FieldMethod, FieldStatus, FieldMimeType}
	case FieldURL, FieldMethod, FieldStatus, FieldMimeType:
		fields = []string{field}
	default:
		return nil, fmt.Errorf("%w: unknown field %q", ErrInvalidFilter, f.Field)
	}

	return func(flow FlowRecord) bool {
		for _, name := range fields {
			if matches(fieldValue(flow, name), pattern) {
				return true
			}
		}
		return false
	}, nil
}

func fieldValue(flow FlowRecord, field string) string {
	switch field {
	case FieldURL:
		return flow.Request().URL()
	case FieldMethod:
		return flow.Request().Method()
	case FieldStatus:
		return strconv.Itoa(flow.Response().Status())
	case FieldMimeType:
		return flow.Response().MimeType()
	}
	return ""
}
