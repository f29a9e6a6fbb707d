package motor

import "strings"

// pathSegments splits a URL path into its non-empty segments
func pathSegments(p string) []string {
	parts := strings.Split(p, "/")
	out := parts[:0]
	for _, part := range parts {
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// segmentDistance is the edit distance between two paths counted in whole segments:
// /api/users/1 and /api/users/2 are 1 apart, /api/users and /api/users/2/posts are 2.
func segmentDistance(a, b []string) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	// two rows are enough
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}

	return prev[len(b)]
}

// similarTo reports whether candidate is within level of ref: same method, same host,
// and a path no more than level segment edits away. A flow is not similar to itself.
func similarTo(ref, candidate FlowRecord, level int) bool {
	if ref.ID() == candidate.ID() {
		return false
	}

	refReq, candReq := ref.Request(), candidate.Request()
	if refReq.Method() != candReq.Method() || refReq.Host() != candReq.Host() {
		return false
	}

	return segmentDistance(pathSegments(refReq.Path()), pathSegments(candReq.Path())) <= level
}
