package extract

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/andybalholm/cascadia"
)

// Coercion converts extracted text into a typed value
type Coercion string

const (
	CoerceText    Coercion = "text"
	CoerceNumber  Coercion = "number"
	CoerceInteger Coercion = "integer"
)

var (
	// ErrEmptySpec is returned when a spec has no fields
	ErrEmptySpec = errors.New("field spec has no fields")
	// ErrEmptyFieldName is returned when a field has no name
	ErrEmptyFieldName = errors.New("field name cannot be empty")
	// ErrDuplicateField is returned when two fields share a name
	ErrDuplicateField = errors.New("duplicate field name")
	// ErrUnknownCoercion is returned for an unsupported coercion
	ErrUnknownCoercion = errors.New("unknown coercion")
)

var (
	numberPattern  = regexp.MustCompile(`-?\d[\d,]*(?:\.\d+)?|-?\.\d+`)
	integerPattern = regexp.MustCompile(`-?\d[\d,]*`)
)

// Field describes how to extract one named value from a page
type Field struct {
	Name     string   // Column name in the result table
	Selector string   // CSS selector; the first match is used
	Attr     string   // Attribute to read instead of text content (optional)
	Coerce   Coercion // Value coercion (default text)
}

type compiledField struct {
	Field
	matcher cascadia.Selector
}

// Spec is an immutable, compiled, ordered set of fields
type Spec struct {
	fields []compiledField
	names  []string
}

// Compile validates fields and compiles their selectors
func Compile(fields []Field) (*Spec, error) {
	if len(fields) == 0 {
		return nil, ErrEmptySpec
	}

	spec := &Spec{
		fields: make([]compiledField, 0, len(fields)),
		names:  make([]string, 0, len(fields)),
	}
	seen := make(map[string]bool, len(fields))

	for _, f := range fields {
		f.Name = strings.TrimSpace(f.Name)
		if f.Name == "" {
			return nil, ErrEmptyFieldName
		}
		if seen[f.Name] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateField, f.Name)
		}
		seen[f.Name] = true

		if f.Coerce == "" {
			f.Coerce = CoerceText
		}
		switch f.Coerce {
		case CoerceText, CoerceNumber, CoerceInteger:
		default:
			return nil, fmt.Errorf("%w %q for field %s", ErrUnknownCoercion, f.Coerce, f.Name)
		}

		matcher, err := cascadia.Compile(f.Selector)
		if err != nil {
			return nil, fmt.Errorf("invalid selector %q for field %s: %w", f.Selector, f.Name, err)
		}

		spec.fields = append(spec.fields, compiledField{Field: f, matcher: matcher})
		spec.names = append(spec.names, f.Name)
	}

	return spec, nil
}

// MustCompile is like Compile but panics on error
func MustCompile(fields []Field) *Spec {
	spec, err := Compile(fields)
	if err != nil {
		panic(err)
	}
	return spec
}

// Names returns the field names in declaration order
func (s *Spec) Names() []string {
	names := make([]string, len(s.names))
	copy(names, s.names)
	return names
}

// Len returns the number of fields
func (s *Spec) Len() int { return len(s.fields) }

// coerce applies c to text. ok is false when the text does not parse.
func coerce(c Coercion, text string) (Value, bool) {
	switch c {
	case CoerceNumber:
		m := numberPattern.FindString(text)
		if m == "" {
			return Missing(), false
		}
		f, err := strconv.ParseFloat(strings.ReplaceAll(m, ",", ""), 64)
		if err != nil {
			return Missing(), false
		}
		return Number(f), true

	case CoerceInteger:
		m := integerPattern.FindString(text)
		if m == "" {
			return Missing(), false
		}
		n, err := strconv.ParseInt(strings.ReplaceAll(m, ",", ""), 10, 64)
		if err != nil {
			return Missing(), false
		}
		return Number(float64(n)), true

	default:
		return Text(text), true
	}
}
