package model1

import (
	"fmt"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// SortField is one entry of an upstream order_by clause.
type SortField struct {
	Field     string    `json:"field"`
	Direction Direction `json:"direction"`
}

// Sort maps column names to directions. Iteration follows insertion order,
// which is also the precedence of the resulting order_by clause.
type Sort struct {
	fields *orderedmap.OrderedMap[string, Direction]
}

// NewSort returns a sort holding the given fields in order.
func NewSort(ff ...SortField) *Sort {
	s := &Sort{fields: orderedmap.New[string, Direction]()}
	for _, f := range ff {
		s.Set(f.Field, f.Direction)
	}
	return s
}

// ParseSort parses "col[:dir],col[:dir]". An empty spec yields a nil sort.
func ParseSort(spec string) (*Sort, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return nil, nil
	}
	s := NewSort()
	for _, tok := range strings.Split(spec, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		name, dir, _ := strings.Cut(tok, ":")
		if name == "" {
			return nil, fmt.Errorf("invalid sort %q: missing column name", tok)
		}
		d, err := ParseDirection(dir)
		if err != nil {
			return nil, fmt.Errorf("invalid sort %q: %w", tok, err)
		}
		s.Set(name, d)
	}
	return s, nil
}

// Set sets the direction of a column. An existing column keeps its position.
func (s *Sort) Set(col string, d Direction) {
	if s.fields == nil {
		s.fields = orderedmap.New[string, Direction]()
	}
	s.fields.Set(col, d)
}

// Get returns the direction of a column.
func (s *Sort) Get(col string) (Direction, bool) {
	if s == nil || s.fields == nil {
		return "", false
	}
	return s.fields.Get(col)
}

// Delete removes a column from the sort.
func (s *Sort) Delete(col string) {
	if s == nil || s.fields == nil {
		return
	}
	s.fields.Delete(col)
}

// Len returns the number of sorted columns. A nil sort is empty.
func (s *Sort) Len() int {
	if s == nil || s.fields == nil {
		return 0
	}
	return s.fields.Len()
}

// Fields returns the sort as an ordered list.
func (s *Sort) Fields() []SortField {
	if s.Len() == 0 {
		return nil
	}
	ff := make([]SortField, 0, s.fields.Len())
	for p := s.fields.Oldest(); p != nil; p = p.Next() {
		ff = append(ff, SortField{Field: p.Key, Direction: p.Value})
	}
	return ff
}

// Clone returns an independent copy.
func (s *Sort) Clone() *Sort {
	if s == nil {
		return nil
	}
	return NewSort(s.Fields()...)
}

// String renders the sort in the ParseSort format.
func (s *Sort) String() string {
	ff := s.Fields()
	tt := make([]string, 0, len(ff))
	for _, f := range ff {
		tt = append(tt, f.Field+":"+string(f.Direction))
	}
	return strings.Join(tt, ",")
}
