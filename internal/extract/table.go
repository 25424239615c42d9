package extract

import (
	"bytes"
	"encoding/json"
)

// Record is one result row. It has exactly one value per spec field,
// in spec order.
type Record struct {
	URL    string  // URL the record was attempted for
	Values []Value // One value per field
	Err    string  // Fetch error message when the page could not be retrieved

	names []string
}

func newRecord(url string, spec *Spec) Record {
	values := make([]Value, len(spec.names))
	for i := range values {
		values[i] = Missing()
	}
	return Record{URL: url, Values: values, names: spec.names}
}

// NewMissingRecord returns a record for url with every field missing.
// It is used when the page itself could not be fetched.
func NewMissingRecord(url string, spec *Spec, cause error) Record {
	rec := newRecord(url, spec)
	if cause != nil {
		rec.Err = cause.Error()
	}
	return rec
}

// Names returns the field names of the record
func (r Record) Names() []string { return r.names }

// Get returns the value of the named field
func (r Record) Get(name string) (Value, bool) {
	for i, n := range r.names {
		if n == name {
			return r.Values[i], true
		}
	}
	return Missing(), false
}

// AllMissing reports whether no field was extracted
func (r Record) AllMissing() bool {
	for _, v := range r.Values {
		if !v.IsMissing() {
			return false
		}
	}
	return true
}

// MarshalJSON encodes the field values as an object, keeping field order
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range r.names {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		val, err := r.Values[i].MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Table is the append-only result of one crawl
type Table struct {
	Fields  []string
	Records []Record
}

// NewTable creates an empty table for spec with room for capacity records
func NewTable(spec *Spec, capacity int) *Table {
	if capacity < 0 {
		capacity = 0
	}
	return &Table{
		Fields:  spec.Names(),
		Records: make([]Record, 0, capacity),
	}
}

// Append adds a record to the end of the table
func (t *Table) Append(rec Record) {
	t.Records = append(t.Records, rec)
}

// Len returns the number of records
func (t *Table) Len() int { return len(t.Records) }

// Rows renders every record as strings, one column per field
func (t *Table) Rows(missing string) [][]string {
	rows := make([][]string, 0, len(t.Records))
	for _, rec := range t.Records {
		row := make([]string, len(rec.Values))
		for i, v := range rec.Values {
			row[i] = v.Format(missing)
		}
		rows = append(rows, row)
	}
	return rows
}
