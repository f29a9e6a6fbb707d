package motor

import (
	"log/slog"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
)

type StoreOptions struct {
	Searcher Searcher
	Previews *PreviewService
	Logger   *slog.Logger
}

func DefaultStoreOptions() StoreOptions {
	return StoreOptions{
		Previews: NewPreviewService(),
		Logger:   slog.Default(),
	}
}

type StoreStats struct {
	Loaded        int64
	Purged        int64
	ContentReads  int64
	ContentErrors int64
	LoadTime      time.Duration
}

type storeAtomicStats struct {
	loaded        int64
	purged        int64
	contentReads  int64
	contentErrors int64
}

// stringTable interns repeated strings (methods, mime types, status texts, server ips)
type stringTable struct {
	shards [256]*stringTableShard
	once   [256]sync.Once
}

type stringTableShard struct {
	table map[string]string
	mu    sync.RWMutex
}

// uses 256 shards with xxhash distribution to minimize lock contention
func (t *stringTable) Intern(s string) string {
	if s == "" {
		return ""
	}

	shardIdx := xxhash.Sum64String(s) % 256
	t.once[shardIdx].Do(func() {
		t.shards[shardIdx] = &stringTableShard{table: make(map[string]string)}
	})
	shard := t.shards[shardIdx]

	shard.mu.RLock()
	if interned, exists := shard.table[s]; exists {
		shard.mu.RUnlock()
		return interned
	}
	shard.mu.RUnlock()

	// double-checked locking: another writer may have won between the locks
	shard.mu.Lock()
	defer shard.mu.Unlock()

	if interned, exists := shard.table[s]; exists {
		return interned
	}

	shard.table[s] = s
	return s
}

// Len returns the number of distinct strings held
func (t *stringTable) Len() int {
	n := 0
	for i := range t.shards {
		shard := t.shards[i]
		if shard == nil {
			continue
		}
		shard.mu.RLock()
		n += len(shard.table)
		shard.mu.RUnlock()
	}
	return n
}
