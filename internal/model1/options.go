package model1

import (
	"bytes"
	"encoding/json"
	"slices"
)

const (
	// DefaultPageSize is the page size of a table opened without override.
	DefaultPageSize = 50
	// MaxPageSize is the largest page the upstream service returns.
	MaxPageSize = 500
)

// Options holds the pagination and sorting of one table.
type Options struct {
	PageSize int   // records per page, positive
	Page     int   // 1-based page number
	Sort     *Sort // nil when unsorted

	// Filter is an upstream filter expression, sent as is.
	Filter        json.RawMessage
	Grouping      *Grouping
	DuplicateOnly []string // only records duplicated on these columns
}

// DefaultOptions returns the options of a table opened without override.
func DefaultOptions() Options {
	return Options{PageSize: DefaultPageSize, Page: 1}
}

// WithDefaults fills unset fields from defaults and clamps the page size.
// Zero PageSize or Page means unset.
func (o Options) WithDefaults(defaults Options) Options {
	if o.PageSize <= 0 {
		o.PageSize = defaults.PageSize
	}
	if o.PageSize <= 0 {
		o.PageSize = DefaultPageSize
	}
	if o.PageSize > MaxPageSize {
		o.PageSize = MaxPageSize
	}
	if o.Page <= 0 {
		o.Page = defaults.Page
	}
	if o.Page <= 0 {
		o.Page = 1
	}
	if o.Sort == nil {
		o.Sort = defaults.Sort
	}
	if o.Filter == nil {
		o.Filter = defaults.Filter
	}
	if o.Grouping == nil {
		o.Grouping = defaults.Grouping
	}
	if o.DuplicateOnly == nil {
		o.DuplicateOnly = defaults.DuplicateOnly
	}
	return o.Clone()
}

// Clone returns a copy that shares no state with o.
func (o Options) Clone() Options {
	o.Sort = o.Sort.Clone()
	o.Filter = bytes.Clone(o.Filter)
	o.Grouping = o.Grouping.Clone()
	o.DuplicateOnly = slices.Clone(o.DuplicateOnly)
	return o
}

// Offset returns the index of the first record of the current page.
func (o Options) Offset() int {
	if o.Page <= 1 {
		return 0
	}
	return o.PageSize * (o.Page - 1)
}

// PageCount returns the number of pages needed for total records.
func (o Options) PageCount(total int) int {
	if o.PageSize <= 0 || total <= 0 {
		return 0
	}
	return (total + o.PageSize - 1) / o.PageSize
}
