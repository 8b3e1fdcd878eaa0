package model1

import (
	"reflect"
	"strings"
)

// Column describes one column of an upstream table.
type Column struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Columns is the ordered column list of a table.
type Columns []Column

// Clone returns a copy of the columns.
func (c Columns) Clone() Columns {
	cc := make(Columns, len(c))
	copy(cc, c)
	return cc
}

// Diff returns true if the two column lists differ.
func (c Columns) Diff(other Columns) bool {
	if len(c) != len(other) {
		return true
	}
	return !reflect.DeepEqual(c, other)
}

// IndexOf returns the position of the named column.
func (c Columns) IndexOf(name string) (int, bool) {
	for i, col := range c {
		if col.Name == name {
			return i, true
		}
	}
	return -1, false
}

// Names returns the column names in table order.
func (c Columns) Names() []string {
	if len(c) == 0 {
		return nil
	}
	nn := make([]string, 0, len(c))
	for _, col := range c {
		nn = append(nn, col.Name)
	}
	return nn
}

// SortedNames returns the column names in natural order.
func (c Columns) SortedNames() []string {
	nn := c.Names()
	SortNatural(nn)
	return nn
}

// Header represents a display header.
type Header []string

// NewHeader builds a display header from the table columns.
func NewHeader(cols Columns) Header {
	h := make(Header, 0, len(cols))
	for _, c := range cols {
		h = append(h, strings.ToUpper(c.Name))
	}
	return h
}
