package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSON stores any JSON encodable value in a text or json column.
type JSON[T any] struct {
	V T
}

// NewJSON wraps v for storage.
func NewJSON[T any](v T) JSON[T] {
	return JSON[T]{V: v}
}

// Scan implements sql.Scanner for JSON.
func (j *JSON[T]) Scan(src any) error {
	var zero T
	if src == nil {
		j.V = zero
		return nil
	}
	switch data := src.(type) {
	case []byte:
		if len(data) == 0 {
			j.V = zero
			return nil
		}
		return json.Unmarshal(data, &j.V)
	case string:
		if data == "" {
			j.V = zero
			return nil
		}
		return json.Unmarshal([]byte(data), &j.V)
	default:
		return fmt.Errorf("JSON[%T]: unsupported src type %T", zero, src)
	}
}

// Value implements driver.Valuer for JSON. Text is returned so that both
// sqlite text columns and postgres jsonb accept it.
func (j JSON[T]) Value() (driver.Value, error) {
	b, err := json.Marshal(j.V)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}
