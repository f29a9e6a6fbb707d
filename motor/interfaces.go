package motor

import (
	"context"
	"encoding/json"
)

// ContentSource fetches the response body of a flow. The Store implements it by
// decoding the captured body; other implementations may go over the network.
type ContentSource interface {
	ResponseContent(ctx context.Context, flowID int) (string, error)
}

// Searcher runs structured queries against a search service and returns matching flow ids.
// Failures should be reported as *SearchError.
type Searcher interface {
	Search(ctx context.Context, query SearchQuery) ([]int, error)
}

// FlowSource is the read side of a flow collection
type FlowSource interface {
	// Get returns the flow with the given id, false if it never existed or was purged
	Get(id int) (FlowRecord, bool)

	// Flows returns the live flows in id order
	Flows() []FlowRecord

	// Len returns the number of live flows
	Len() int
}

// HARDecoder is the token level JSON decoder the store streams captures with
type HARDecoder interface {
	// Token returns the next JSON token in the input stream
	Token() (json.Token, error)

	// Decode decodes the next JSON value into v
	Decode(v interface{}) error

	// More reports whether there is another element in the current array or object
	More() bool
}
