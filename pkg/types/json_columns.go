package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Attributes is a free-form JSON object persisted as JSONB. A nil map is stored as NULL.
type Attributes map[string]any

// Value marshals the map into JSON text.
func (a Attributes) Value() (driver.Value, error) {
	if a == nil {
		return nil, nil
	}
	buf, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	return string(buf), nil
}

// Scan decodes a JSON object column.
func (a *Attributes) Scan(value interface{}) error {
	raw, err := rawJSON("attributes", value)
	if err != nil {
		return err
	}
	if raw == nil || string(raw) == "null" {
		*a = nil
		return nil
	}
	result := make(Attributes)
	if err := json.Unmarshal(raw, &result); err != nil {
		return err
	}
	*a = result
	return nil
}

// StringList is an ordered list of strings persisted as a JSON array.
type StringList []string

// Value marshals the list into JSON text. A nil list is stored as an empty array.
func (s StringList) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	buf, err := json.Marshal([]string(s))
	if err != nil {
		return nil, err
	}
	return string(buf), nil
}

// Scan decodes a JSON array column.
func (s *StringList) Scan(value interface{}) error {
	raw, err := rawJSON("string list", value)
	if err != nil {
		return err
	}
	if raw == nil {
		*s = nil
		return nil
	}
	var result []string
	if err := json.Unmarshal(raw, &result); err != nil {
		return err
	}
	*s = result
	return nil
}

func rawJSON(kind string, value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case string:
		return []byte(v), nil
	case []byte:
		return v, nil
	default:
		return nil, fmt.Errorf("%s: unsupported scan type %T", kind, value)
	}
}
