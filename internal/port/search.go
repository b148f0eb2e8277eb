package port

import "context"

// SearchRequest is one approximate text query against the search backend.
type SearchRequest struct {
	Query string
	Limit int
}

// SearchHit pairs an item id with any monotonic similarity measure. The
// caller normalizes scores to [0,1] on receipt.
type SearchHit struct {
	ItemID string
	Score  float64
}

// FuzzySearcher is the external fuzzy search backend, consumed as a
// black box. Queries are read-only and idempotent, so callers may issue
// them concurrently.
type FuzzySearcher interface {
	Search(ctx context.Context, projectID string, req SearchRequest) ([]SearchHit, error)
}
