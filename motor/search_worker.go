package motor

import (
	"context"
	"sync/atomic"
)

// workBatch represents a range of flows to process
type workBatch struct {
	startIndex int // inclusive start
	endIndex   int // exclusive end (go range convention)
}

// createWorkBatches divides flows into batches for workers
func createWorkBatches(total int, opts EngineOptions) []workBatch {
	var batches []workBatch

	chunkSize := opts.ChunkSize

	// fallback: auto-partition based on worker count
	if chunkSize <= 0 {
		workers := opts.WorkerCount
		if workers <= 0 {
			workers = 1
		}
		chunkSize = (total + workers - 1) / workers
	}
	if chunkSize <= 0 {
		chunkSize = 1
	}

	for start := 0; start < total; start += chunkSize {
		end := start + chunkSize
		if end > total {
			end = total
		}
		batches = append(batches, workBatch{startIndex: start, endIndex: end})
	}

	return batches
}

// worker evaluates batches of flows against every matcher
func worker(ctx context.Context,
	workQueue <-chan workBatch,
	results chan<- []int,
	engine *SearchEngine,
	flows []FlowRecord,
	matchers []flowMatcher) {

	for {
		select {
		case <-ctx.Done():
			return

		case batch, ok := <-workQueue:
			if !ok {
				return // work queue closed, all done
			}

			batchResults := make([]int, 0, 8)

			for i := batch.startIndex; i < batch.endIndex; i++ {
				if matchAll(flows[i], matchers) {
					batchResults = append(batchResults, flows[i].ID())
				}
				atomic.AddInt64(&engine.stats.flowsSearched, 1)
			}

			if len(batchResults) > 0 {
				select {
				case results <- batchResults:
					atomic.AddInt64(&engine.stats.matchesFound, int64(len(batchResults)))
				case <-ctx.Done():
					return
				}
			}
		}
	}
}

func matchAll(flow FlowRecord, matchers []flowMatcher) bool {
	for _, m := range matchers {
		if !m(flow) {
			return false
		}
	}
	return true
}
