package query

import (
	"encoding/json"
	"fmt"
)

// Project renders items as JSON objects restricted to the projection. The
// id field is always kept when an include list is given.
func Project[T any](items []T, p Projection) ([]map[string]any, error) {
	out := make([]map[string]any, 0, len(items))
	for i := range items {
		m, err := ProjectOne(items[i], p)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

func ProjectOne(item any, p Projection) (map[string]any, error) {
	raw, err := json.Marshal(item)
	if err != nil {
		return nil, fmt.Errorf("failed to encode item: %w", err)
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("failed to decode item: %w", err)
	}

	if len(p.Include) > 0 {
		kept := make(map[string]any, len(p.Include)+1)
		if id, ok := m["id"]; ok {
			kept["id"] = id
		}
		for _, f := range p.Include {
			if v, ok := m[f]; ok {
				kept[f] = v
			}
		}
		return kept, nil
	}

	for _, f := range p.Exclude {
		if f != "id" {
			delete(m, f)
		}
	}
	return m, nil
}
