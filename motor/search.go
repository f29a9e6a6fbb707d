package motor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"
)

// filter types understood by the search service
const (
	FilterSimilarTo = "similarTo"
	FilterContains  = "contains"
	FilterRegex     = "regex"
)

// filter fields
const (
	FieldAny      = "any"
	FieldURL      = "url"
	FieldMethod   = "method"
	FieldStatus   = "status"
	FieldMimeType = "mimeType"
)

// SearchPath is where the search service is mounted
const SearchPath = "/api/search"

// maximum size of a search response body we are willing to decode
const maxSearchResponseSize = 16 * 1024 * 1024

// SearchQuery is the body of a search request.
type SearchQuery struct {
	IDsOnly bool           `json:"idsOnly"`
	Filter  []SearchFilter `json:"filter"`
}

// SearchFilter is one condition of a query, all filters of a query must match.
type SearchFilter struct {
	Type  string `json:"type"`
	Value string `json:"value"`
	Field string `json:"field"`
}

// key identifies a query for request coalescing
func (q SearchQuery) key() string {
	var b strings.Builder
	if q.IDsOnly {
		b.WriteString("ids|")
	}
	for _, f := range q.Filter {
		b.WriteString(f.Type)
		b.WriteByte(0)
		b.WriteString(f.Field)
		b.WriteByte(0)
		b.WriteString(f.Value)
		b.WriteByte('|')
	}
	return b.String()
}

// SearchClient talks to a remote search service over HTTP. Identical queries in
// flight at the same time share one request.
type SearchClient struct {
	baseURL     string
	httpClient  *http.Client
	timeout     time.Duration
	queryParams bool
	group       singleflight.Group
}

// SearchClientOption configures a SearchClient
type SearchClientOption func(*SearchClient)

// WithQueryParams sends idsOnly and the JSON encoded filter list as URL query
// parameters of an empty POST, the form HoneyProxy style services expect.
func WithQueryParams() SearchClientOption {
	return func(c *SearchClient) {
		c.queryParams = true
	}
}

// NewSearchClient creates a client for the service at baseURL (scheme and host,
// the search path is appended). A nil httpClient gets a client with the given timeout.
func NewSearchClient(baseURL string, httpClient *http.Client, timeout time.Duration, opts ...SearchClientOption) *SearchClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	c := &SearchClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		timeout:    timeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Search posts the query and decodes the JSON array of ids in the response.
// A shared request is not cancelled by any one caller; each caller stops waiting
// when its own context is done.
func (c *SearchClient) Search(ctx context.Context, query SearchQuery) ([]int, error) {
	flight := c.group.DoChan(query.key(), func() (interface{}, error) {
		flightCtx := context.WithoutCancel(ctx)
		if c.timeout > 0 {
			var cancel context.CancelFunc
			flightCtx, cancel = context.WithTimeout(flightCtx, c.timeout)
			defer cancel()
		}
		return c.do(flightCtx, query)
	})

	select {
	case <-ctx.Done():
		return nil, &SearchError{Query: query, Err: ctx.Err()}
	case res := <-flight:
		if res.Err != nil {
			return nil, res.Err
		}
		// callers sharing a flight must not share the slice
		ids := res.Val.([]int)
		out := make([]int, len(ids))
		copy(out, ids)
		return out, nil
	}
}

func (c *SearchClient) newRequest(ctx context.Context, query SearchQuery) (*http.Request, error) {
	endpoint := c.baseURL + SearchPath

	if c.queryParams {
		filter, err := json.Marshal(query.Filter)
		if err != nil {
			return nil, fmt.Errorf("failed to encode filter: %w", err)
		}
		params := url.Values{}
		params.Set("idsOnly", strconv.FormatBool(query.IDsOnly))
		params.Set("filter", string(filter))
		return http.NewRequestWithContext(ctx, http.MethodPost, endpoint+"?"+params.Encode(), nil)
	}

	body, err := json.Marshal(query)
	if err != nil {
		return nil, fmt.Errorf("failed to encode query: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// QueryFromParams decodes the query parameter form of a search request. ok is false
// when the request carries no filter parameter.
func QueryFromParams(params url.Values) (query SearchQuery, ok bool, err error) {
	if !params.Has("filter") {
		return SearchQuery{}, false, nil
	}
	if err := json.Unmarshal([]byte(params.Get("filter")), &query.Filter); err != nil {
		return SearchQuery{}, true, fmt.Errorf("malformed filter parameter: %w", err)
	}
	if v := params.Get("idsOnly"); v != "" {
		query.IDsOnly, err = strconv.ParseBool(v)
		if err != nil {
			return SearchQuery{}, true, fmt.Errorf("malformed idsOnly parameter: %w", err)
		}
	}
	return query, true, nil
}

func (c *SearchClient) do(ctx context.Context, query SearchQuery) ([]int, error) {
	req, err := c.newRequest(ctx, query)
	if err != nil {
		return nil, &SearchError{Query: query, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &SearchError{Query: query, Err: err}
	}
	defer resp.Body.Close()

	limited := io.LimitReader(resp.Body, maxSearchResponseSize)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(limited, 512))
		return nil, &SearchError{
			Query:  query,
			Status: resp.StatusCode,
			Err:    fmt.Errorf("unexpected response: %s", strings.TrimSpace(string(msg))),
		}
	}

	var ids []int
	if err := json.NewDecoder(limited).Decode(&ids); err != nil {
		return nil, &SearchError{Query: query, Status: resp.StatusCode, Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	if ids == nil {
		ids = []int{}
	}
	return ids, nil
}
