// Package extract pulls named fields out of parsed pages.
//
// Extraction is best effort and field independent: a selector that matches
// nothing, or text that does not coerce to the requested type, yields a
// Missing value for that field only. Missing is a distinct kind, so it never
// collides with a legitimately empty string.
package extract

import (
	"encoding/json"
	"strconv"
)

// Kind identifies which variant a Value holds
type Kind uint8

const (
	KindMissing Kind = iota
	KindText
	KindNumber
)

// String returns the kind name
func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindNumber:
		return "number"
	default:
		return "missing"
	}
}

// Value is one extracted field: Missing, Text or Number
type Value struct {
	kind Kind
	text string
	num  float64
}

// Missing returns the missing marker
func Missing() Value {
	return Value{kind: KindMissing}
}

// Text returns a text value
func Text(s string) Value {
	return Value{kind: KindText, text: s}
}

// Number returns a numeric value
func Number(f float64) Value {
	return Value{kind: KindNumber, num: f}
}

// Kind returns the variant held by v
func (v Value) Kind() Kind { return v.kind }

// IsMissing reports whether v is the missing marker
func (v Value) IsMissing() bool { return v.kind == KindMissing }

// AsText returns the text and true if v is a text value
func (v Value) AsText() (string, bool) {
	return v.text, v.kind == KindText
}

// AsNumber returns the number and true if v is a numeric value
func (v Value) AsNumber() (float64, bool) {
	return v.num, v.kind == KindNumber
}

// Format renders v for tabular output, using missing for the missing marker
func (v Value) Format(missing string) string {
	switch v.kind {
	case KindText:
		return v.text
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	default:
		return missing
	}
}

// String implements fmt.Stringer
func (v Value) String() string {
	return v.Format("<missing>")
}

// MarshalJSON encodes Missing as null, Number as a JSON number and Text as a string
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindText:
		return json.Marshal(v.text)
	case KindNumber:
		return json.Marshal(v.num)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON is the inverse of MarshalJSON
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	switch x := raw.(type) {
	case nil:
		*v = Missing()
	case string:
		*v = Text(x)
	case float64:
		*v = Number(x)
	default:
		*v = Missing()
	}
	return nil
}
