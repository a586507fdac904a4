// Package search holds the query-side domain types: filter conditions,
// search requests and result hits.
package search

import "fmt"

// MaxConditions bounds the number of filter conditions per request.
const MaxConditions = 32

// Condition is a single filter clause: an exact term match (a list of values
// means OR within the field) or a numeric range. Conditions are AND-combined.
type Condition struct {
	key      string
	values   []string
	rangeExp *Range
}

// NewMatch creates an exact-term condition. Multiple values are OR-ed.
func NewMatch(key string, values ...string) (Condition, error) {
	if key == "" {
		return Condition{}, fmt.Errorf("filter key is required")
	}
	if len(values) == 0 {
		return Condition{}, fmt.Errorf("match values are required for key %q", key)
	}
	for _, v := range values {
		if v == "" {
			return Condition{}, fmt.Errorf("empty match value for key %q", key)
		}
	}
	return Condition{key: key, values: values}, nil
}

// NewRange creates a numeric range condition.
func NewRange(key string, r Range) (Condition, error) {
	if key == "" {
		return Condition{}, fmt.Errorf("filter key is required")
	}
	if r.GT == nil && r.GTE == nil && r.LT == nil && r.LTE == nil {
		return Condition{}, fmt.Errorf("at least one range bound is required for key %q", key)
	}
	if r.GT != nil && r.GTE != nil {
		return Condition{}, fmt.Errorf("cannot specify both gt and gte for key %q", key)
	}
	if r.LT != nil && r.LTE != nil {
		return Condition{}, fmt.Errorf("cannot specify both lt and lte for key %q", key)
	}
	return Condition{key: key, rangeExp: &r}, nil
}

// Key returns the field name.
func (c Condition) Key() string { return c.key }

// Values returns the exact match values.
func (c Condition) Values() []string { return c.values }

// Range returns the numeric range, or nil for match conditions.
func (c Condition) Range() *Range { return c.rangeExp }

// IsMatch reports whether this is an exact-term condition.
func (c Condition) IsMatch() bool { return len(c.values) > 0 }

// IsRange reports whether this is a range condition.
func (c Condition) IsRange() bool { return c.rangeExp != nil }

// Range is a numeric range with optional gt/gte/lt/lte bounds.
type Range struct {
	GT  *float64
	GTE *float64
	LT  *float64
	LTE *float64
}
