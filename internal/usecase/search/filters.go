package search

import (
	"fmt"

	"github.com/lodestone-search/lodestone/internal/domain"
	domsearch "github.com/lodestone-search/lodestone/internal/domain/search"
)

// Filterable fields. Keys outside these sets are silently dropped so callers
// can send their full metadata shape without tripping validation.
var (
	matchKeys = map[string]bool{
		"file_type": true,
		"file_name": true,
		"author":    true,
		"tags":      true,
		"category":  true,
	}
	rangeKeys = map[string]bool{
		"created_at": true,
		"updated_at": true,
	}
)

// translateFilters maps a raw filter object onto the filterable field
// allow-list. Allow-listed keys with a malformed value are an error; unknown
// keys are ignored.
func translateFilters(raw map[string]any) ([]domsearch.Condition, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	conditions := make([]domsearch.Condition, 0, len(raw))
	for key, value := range raw {
		switch {
		case matchKeys[key]:
			cond, err := matchCondition(key, value)
			if err != nil {
				return nil, err
			}
			conditions = append(conditions, cond)
		case rangeKeys[key]:
			cond, err := rangeCondition(key, value)
			if err != nil {
				return nil, err
			}
			conditions = append(conditions, cond)
		}
	}
	return conditions, nil
}

func matchCondition(key string, value any) (domsearch.Condition, error) {
	var values []string
	switch v := value.(type) {
	case string:
		values = []string{v}
	case []string:
		values = v
	case []any:
		values = make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return domsearch.Condition{}, fmt.Errorf(
					"%w: filter %q values must be strings", domain.ErrValidation, key)
			}
			values = append(values, s)
		}
	default:
		return domsearch.Condition{}, fmt.Errorf(
			"%w: filter %q expects a string or list of strings", domain.ErrValidation, key)
	}

	cond, err := domsearch.NewMatch(key, values...)
	if err != nil {
		return domsearch.Condition{}, fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}
	return cond, nil
}

func rangeCondition(key string, value any) (domsearch.Condition, error) {
	bounds, ok := value.(map[string]any)
	if !ok {
		return domsearch.Condition{}, fmt.Errorf(
			"%w: filter %q expects a range object with gt/gte/lt/lte", domain.ErrValidation, key)
	}

	var r domsearch.Range
	for op, raw := range bounds {
		n, ok := raw.(float64)
		if !ok {
			return domsearch.Condition{}, fmt.Errorf(
				"%w: filter %q bound %q must be numeric", domain.ErrValidation, key, op)
		}
		v := n
		switch op {
		case "gt":
			r.GT = &v
		case "gte":
			r.GTE = &v
		case "lt":
			r.LT = &v
		case "lte":
			r.LTE = &v
		default:
			return domsearch.Condition{}, fmt.Errorf(
				"%w: filter %q has unknown bound %q", domain.ErrValidation, key, op)
		}
	}

	cond, err := domsearch.NewRange(key, r)
	if err != nil {
		return domsearch.Condition{}, fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}
	return cond, nil
}
