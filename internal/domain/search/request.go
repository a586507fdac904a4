package search

import (
	"fmt"
	"strings"
)

// TopK bounds applied before querying the index store.
const (
	DefaultTopK = 100
	MaxTopK     = 1000
)

// DefaultMinScore is the relevance floor applied when the caller supplies
// none. Calibrated empirically for the embedding model in use; configurable,
// not sacred.
const DefaultMinScore = 0.356

// Request is a validated hybrid search request.
type Request struct {
	Query     string
	QueryKind string // media kind when the query is a file reference, empty for plain text
	Filters   []Condition
	TopK      int
	MinScore  *float64 // nil means use the configured default
}

// Validate checks the request invariants that do not depend on configuration.
func (r *Request) Validate() error {
	if strings.TrimSpace(r.Query) == "" {
		return fmt.Errorf("search query cannot be empty")
	}
	if len(r.Filters) > MaxConditions {
		return fmt.Errorf("too many filter conditions (max %d)", MaxConditions)
	}
	return nil
}

// ClampTopK bounds TopK to [1, max], substituting def when unset.
func (r *Request) ClampTopK(def, max int) {
	if r.TopK <= 0 {
		r.TopK = def
	}
	if r.TopK > max {
		r.TopK = max
	}
}

// EffectiveMinScore resolves the relevance floor: the caller's value when
// supplied, else the given default.
func (r *Request) EffectiveMinScore(def float64) float64 {
	if r.MinScore != nil {
		return *r.MinScore
	}
	return def
}
