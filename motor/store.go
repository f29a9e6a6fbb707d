package motor

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/pb33f/harhar"
)

const (
	keyLog     = "log"
	keyVersion = "version"
	keyCreator = "creator"
	keyBrowser = "browser"
	keyEntries = "entries"

	// how many entries are decoded between context checks
	ctxCheckInterval = 64
)

// Store owns the flows of one capture. Ids are assigned in capture order starting at 0
// and are never reused; Purge is the only way a flow goes away.
type Store struct {
	registry *Registry
	deps     FlowDeps
	searcher Searcher

	mu    sync.RWMutex
	flows []FlowRecord // indexed by id, nil once purged
	live  int

	strings     stringTable
	fingerprint string
	version     string
	creator     *harhar.Creator
	browser     *harhar.Creator
	loadTime    time.Duration
	stats       storeAtomicStats
}

func newStore(registry *Registry, opts StoreOptions) *Store {
	if registry == nil {
		registry = DefaultRegistry()
	}
	s := &Store{
		registry: registry,
		searcher: opts.Searcher,
	}
	s.deps = FlowDeps{
		Content:  s,
		Searcher: s,
		Previews: opts.Previews,
		Logger:   opts.Logger,
	}
	if s.deps.Previews == nil {
		s.deps.Previews = NewPreviewService()
	}
	return s
}

// NewStore builds a store from in-memory captures.
func NewStore(entries []*harhar.Entry, registry *Registry, opts StoreOptions) *Store {
	start := time.Now()
	s := newStore(registry, opts)

	h := xxhash.New()
	for _, entry := range entries {
		if entry == nil {
			entry = &harhar.Entry{}
		}
		h.WriteString(entry.Request.Method)
		h.WriteString(entry.Request.URL)
		h.WriteString(entry.Start)
		s.add(entry)
	}
	s.fingerprint = fmt.Sprintf("%x", h.Sum64())
	s.loadTime = time.Since(start)
	return s
}

// LoadStore reads a HAR file and builds a store from its entries.
func LoadStore(ctx context.Context, filePath string, registry *Registry, opts StoreOptions) (*Store, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return ReadStore(ctx, file, registry, opts)
}

// ReadStore streams a HAR document, decoding one entry at a time, and builds a store.
// The document is hashed as it is read to produce the store fingerprint.
func ReadStore(ctx context.Context, reader io.Reader, registry *Registry, opts StoreOptions) (*Store, error) {
	start := time.Now()
	s := newStore(registry, opts)

	hash := xxhash.New()
	tee := io.TeeReader(reader, hash)

	if err := s.parseHAR(ctx, newHARDecoder(tee)); err != nil {
		return nil, fmt.Errorf("failed to parse har file: %w", err)
	}

	// hash whatever the decoder left unread so the fingerprint covers the whole file
	if _, err := io.Copy(io.Discard, tee); err != nil {
		return nil, fmt.Errorf("failed to read har file: %w", err)
	}

	s.fingerprint = fmt.Sprintf("%x", hash.Sum64())
	s.loadTime = time.Since(start)
	return s, nil
}

func (s *Store) parseHAR(ctx context.Context, decoder HARDecoder) error {
	if err := helper.expectDelim(decoder, '{'); err != nil {
		return err
	}

	for decoder.More() {
		token, err := decoder.Token()
		if err != nil {
			return err
		}

		key, _ := token.(string)
		if key == keyLog {
			if err := s.parseLog(ctx, decoder); err != nil {
				return err
			}
			continue
		}
		if err := helper.skipValue(decoder); err != nil {
			return err
		}
	}

	return nil
}

func (s *Store) parseLog(ctx context.Context, decoder HARDecoder) error {
	if err := helper.expectDelim(decoder, '{'); err != nil {
		return err
	}

	for decoder.More() {
		token, err := decoder.Token()
		if err != nil {
			return err
		}

		key, _ := token.(string)
		switch key {
		case keyVersion:
			if err := decoder.Decode(&s.version); err != nil {
				return err
			}
		case keyCreator:
			var creator harhar.Creator
			if err := decoder.Decode(&creator); err != nil {
				return err
			}
			s.creator = &creator
		case keyBrowser:
			var browser harhar.Creator
			if err := decoder.Decode(&browser); err != nil {
				return err
			}
			s.browser = &browser
		case keyEntries:
			if err := s.parseEntries(ctx, decoder); err != nil {
				return err
			}
		default:
			if err := helper.skipValue(decoder); err != nil {
				return err
			}
		}
	}

	// closing brace of log
	_, err := decoder.Token()
	return err
}

func (s *Store) parseEntries(ctx context.Context, decoder HARDecoder) error {
	if err := helper.expectDelim(decoder, '['); err != nil {
		return err
	}

	n := 0
	for decoder.More() {
		if n%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}

		var entry harhar.Entry
		if err := decoder.Decode(&entry); err != nil {
			return fmt.Errorf("failed to parse entry %d: %w", n, err)
		}
		s.add(&entry)
		n++
	}

	// closing bracket of entries
	_, err := decoder.Token()
	return err
}

func (s *Store) add(entry *harhar.Entry) FlowRecord {
	entry.Request.Method = s.strings.Intern(entry.Request.Method)
	entry.Response.StatusText = s.strings.Intern(entry.Response.StatusText)
	entry.Response.Body.MIMEType = s.strings.Intern(entry.Response.Body.MIMEType)
	entry.ServerIP = s.strings.Intern(entry.ServerIP)

	s.mu.Lock()
	defer s.mu.Unlock()

	flow := s.registry.Resolve(len(s.flows), entry, s.deps)
	s.flows = append(s.flows, flow)
	s.live++
	atomic.AddInt64(&s.stats.loaded, 1)
	return flow
}

// Add appends a capture that arrived after loading and returns its flow.
func (s *Store) Add(entry *harhar.Entry) FlowRecord {
	if entry == nil {
		entry = &harhar.Entry{}
	}
	return s.add(entry)
}

func (s *Store) Get(id int) (FlowRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if id < 0 || id >= len(s.flows) || s.flows[id] == nil {
		return nil, false
	}
	return s.flows[id], true
}

func (s *Store) Flows() []FlowRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]FlowRecord, 0, s.live)
	for _, f := range s.flows {
		if f != nil {
			out = append(out, f)
		}
	}
	return out
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.live
}

// Purge removes a flow from the store. Its id is not reused.
func (s *Store) Purge(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id < 0 || id >= len(s.flows) || s.flows[id] == nil {
		return fmt.Errorf("%w: %d", ErrFlowNotFound, id)
	}
	s.flows[id] = nil
	s.live--
	atomic.AddInt64(&s.stats.purged, 1)
	return nil
}

// ResponseContent implements ContentSource from the captured body.
func (s *Store) ResponseContent(ctx context.Context, flowID int) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	atomic.AddInt64(&s.stats.contentReads, 1)

	flow, ok := s.Get(flowID)
	if !ok {
		atomic.AddInt64(&s.stats.contentErrors, 1)
		return "", fmt.Errorf("%w: %d", ErrFlowNotFound, flowID)
	}

	content, err := decodeResponseContent(flow.Entry())
	if err != nil {
		atomic.AddInt64(&s.stats.contentErrors, 1)
		return "", err
	}
	return content, nil
}

// SetSearcher replaces the search collaborator used by every flow of the store.
// Call it before handing flows to other goroutines.
func (s *Store) SetSearcher(searcher Searcher) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.searcher = searcher
}

// Search implements Searcher by forwarding to the configured collaborator.
func (s *Store) Search(ctx context.Context, query SearchQuery) ([]int, error) {
	s.mu.RLock()
	searcher := s.searcher
	s.mu.RUnlock()

	if searcher == nil {
		return nil, &SearchError{Query: query, Err: ErrNoSearcher}
	}
	return searcher.Search(ctx, query)
}

// Registry returns the registry flows were resolved with.
func (s *Store) Registry() *Registry {
	return s.registry
}

// Fingerprint is the xxhash of the source document (or of the captures for NewStore).
func (s *Store) Fingerprint() string {
	return s.fingerprint
}

// Version is the HAR log version, empty for in-memory stores.
func (s *Store) Version() string {
	return s.version
}

func (s *Store) Creator() *harhar.Creator {
	return s.creator
}

func (s *Store) Browser() *harhar.Creator {
	return s.browser
}

// Categories counts live flows per category.
func (s *Store) Categories() map[string]int {
	counts := make(map[string]int)
	for _, f := range s.Flows() {
		counts[f.Category()]++
	}
	return counts
}

func (s *Store) Stats() StoreStats {
	return StoreStats{
		Loaded:        atomic.LoadInt64(&s.stats.loaded),
		Purged:        atomic.LoadInt64(&s.stats.purged),
		ContentReads:  atomic.LoadInt64(&s.stats.contentReads),
		ContentErrors: atomic.LoadInt64(&s.stats.contentErrors),
		LoadTime:      s.loadTime,
	}
}
