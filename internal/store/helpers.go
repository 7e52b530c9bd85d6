package store

import (
	"encoding/json"
	"fmt"
)

// maxListLimit is a defense-in-depth cap on limit values for list queries.
const maxListLimit = 1000

const defaultListLimit = 50

// clampLimit applies the default and the upper bound to a requested page size.
func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}

	if limit > maxListLimit {
		return maxListLimit
	}

	return limit
}

// trimPage cuts a limit+1 result set down to limit and reports whether more exist.
func trimPage[T any](items []T, limit int) ([]T, bool) {
	if len(items) > limit {
		return items[:limit], true
	}

	return items, false
}

// marshalJSONB encodes a free-form map for a JSONB column. A nil map is
// stored as an empty object.
func marshalJSONB(m map[string]any) ([]byte, error) {
	if m == nil {
		return []byte("{}"), nil
	}

	b, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("marshaling jsonb: %w", err)
	}

	return b, nil
}
