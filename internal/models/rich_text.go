package models

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// RichText is the editor document attached to a post. The server treats it as
// an opaque JSON value and only checks that one is present.
type RichText json.RawMessage

// Present reports whether the document holds a non-null JSON value.
func (r RichText) Present() bool {
	trimmed := bytes.TrimSpace(r)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return false
	}
	return json.Valid(trimmed)
}

func (r RichText) MarshalJSON() ([]byte, error) {
	if len(r) == 0 {
		return []byte("null"), nil
	}
	return r, nil
}

func (r *RichText) UnmarshalJSON(data []byte) error {
	*r = append((*r)[:0], data...)
	return nil
}

func (r RichText) Value() (driver.Value, error) {
	if len(r) == 0 {
		return nil, nil
	}
	return string(r), nil
}

func (r *RichText) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*r = nil
	case string:
		*r = RichText(v)
	case []byte:
		*r = append(RichText(nil), v...)
	default:
		return fmt.Errorf("rich text: unsupported scan type %T", src)
	}
	return nil
}
