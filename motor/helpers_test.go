package motor

import (
	"context"
	"errors"
	"sync"

	"github.com/pb33f/harhar"
)

// newTestEntry builds a minimal capture for tests
func newTestEntry(method, url string, status int, mime, body string) *harhar.Entry {
	return &harhar.Entry{
		Start: "2024-01-01T00:00:00Z",
		Time:  12.5,
		Request: harhar.Request{
			Method:      method,
			URL:         url,
			HTTPVersion: "HTTP/1.1",
		},
		Response: harhar.Response{
			StatusCode:  status,
			StatusText:  "OK",
			HTTPVersion: "HTTP/1.1",
			Body: harhar.BodyResponseType{
				Size:     len(body),
				MIMEType: mime,
				Content:  body,
			},
		},
	}
}

// stubContent is a ContentSource returning a fixed result
type stubContent struct {
	content string
	err     error
	calls   int
	mu      sync.Mutex
}

func (s *stubContent) ResponseContent(ctx context.Context, flowID int) (string, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	return s.content, s.err
}

// recordingSearcher captures queries and returns a canned answer
type recordingSearcher struct {
	ids     []int
	err     error
	queries []SearchQuery
}

func (r *recordingSearcher) Search(ctx context.Context, query SearchQuery) ([]int, error) {
	r.queries = append(r.queries, query)
	return r.ids, r.err
}

var errTransport = errors.New("connection refused")
