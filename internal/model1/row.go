package model1

import "maps"

// Record is one upstream row, keyed by column name.
type Record map[string]any

// Clone returns a shallow copy of the record.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	return maps.Clone(r)
}

// ID returns the record primary key, if present.
func (r Record) ID() (any, bool) {
	id, ok := r["id"]
	return id, ok
}

// Rows is a page of records.
type Rows []Record

// Clone returns a copy of the rows.
func (r Rows) Clone() Rows {
	out := make(Rows, len(r))
	for i, rec := range r {
		out[i] = rec.Clone()
	}
	return out
}

// Fields represents a display row's cells.
type Fields []string

// Clone returns a copy of the fields.
func (f Fields) Clone() Fields {
	cp := make(Fields, len(f))
	copy(cp, f)
	return cp
}

// Row is a record rendered for display.
type Row struct {
	ID     string
	Fields Fields
}

// NewRow returns a row with size empty cells.
func NewRow(size int) Row {
	return Row{Fields: make(Fields, size)}
}

// Clone returns a copy of the row.
func (r Row) Clone() Row {
	return Row{
		ID:     r.ID,
		Fields: r.Fields.Clone(),
	}
}
