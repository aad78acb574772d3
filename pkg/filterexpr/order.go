package filterexpr

import (
	"errors"
	"fmt"
	"strings"
)

// OrderKey is one parsed segment of an order_by clause.
type OrderKey struct {
	Key  string
	Desc bool
}

// OrderSchema whitelists the keys order_by may name.
type OrderSchema struct {
	Fields  map[string]struct{}
	MaxKeys int
}

// ParseOrderBy parses "key [asc|desc], key [asc|desc]". An empty clause
// yields no keys, leaving the caller's natural order in place.
func ParseOrderBy(raw string, schema OrderSchema) ([]OrderKey, error) { //nolint:gocognit // parsing DSL entails validation branches for readability
	maxKeys := schema.MaxKeys
	if maxKeys <= 0 {
		maxKeys = 2
	}

	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	segments := strings.Split(raw, ",")
	seen := make(map[string]struct{}, len(segments))
	keys := make([]OrderKey, 0, len(segments))
	for _, seg := range segments {
		parts := strings.Fields(seg)
		if len(parts) == 0 {
			continue
		}
		key := parts[0]
		if _, ok := schema.Fields[key]; !ok {
			return nil, fmt.Errorf("field %q cannot be used for ordering", key)
		}

		var desc bool
		switch len(parts) {
		case 1:
		case 2:
			switch strings.ToLower(parts[1]) {
			case "asc":
			case "desc":
				desc = true
			default:
				return nil, fmt.Errorf("invalid direction %q for field %q", parts[1], key)
			}
		default:
			return nil, fmt.Errorf("invalid order segment %q", strings.TrimSpace(seg))
		}

		if _, dup := seen[key]; dup {
			return nil, fmt.Errorf("duplicate order key %q", key)
		}
		seen[key] = struct{}{}

		if len(keys) == maxKeys {
			return nil, fmt.Errorf("order_by supports at most %d keys", maxKeys)
		}
		keys = append(keys, OrderKey{Key: key, Desc: desc})
	}

	if len(keys) == 0 {
		return nil, errors.New("order_by has no keys")
	}
	return keys, nil
}
