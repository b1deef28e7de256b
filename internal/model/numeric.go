package model

import (
	"bytes"
	"fmt"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

var jsonit = jsoniter.ConfigCompatibleWithStandardLibrary

// Numeric is the raw text of a numeric JSON field. Upstream sends some amounts as JSON
// strings and others as JSON numbers; both keep their exact digits here and are never
// routed through float64.
type Numeric string

// UnmarshalJSON accepts a JSON string, a JSON number, or null. Any other value is kept
// verbatim so that the consumer reports it as an invalid number.
func (n *Numeric) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*n = ""
	case data[0] == '"':
		var text string
		if err := jsonit.Unmarshal(data, &text); err != nil {
			return fmt.Errorf("decode numeric string: %w", err)
		}
		*n = Numeric(strings.TrimSpace(text))
	default:
		*n = Numeric(data)
	}
	return nil
}

// MarshalJSON encodes the value as a JSON string.
func (n Numeric) MarshalJSON() ([]byte, error) {
	return jsonit.Marshal(string(n))
}

// IsEmpty reports whether the field was missing or null.
func (n Numeric) IsEmpty() bool {
	return n == ""
}

func (n Numeric) String() string {
	return string(n)
}
