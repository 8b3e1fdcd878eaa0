package dao

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/tabsync/tabsync/internal/model1"
)

// RecordQuery holds the query parameters of a records request.
type RecordQuery struct {
	Limit         int
	Offset        int
	OrderBy       []model1.SortField
	Filter        json.RawMessage
	Grouping      *model1.Grouping
	DuplicateOnly []string
}

// NewRecordQuery derives the records request parameters from table options.
func NewRecordQuery(o model1.Options) RecordQuery {
	return RecordQuery{
		Limit:         o.PageSize,
		Offset:        o.Offset(),
		OrderBy:       o.Sort.Fields(),
		Filter:        o.Filter,
		Grouping:      o.Grouping,
		DuplicateOnly: o.DuplicateOnly,
	}
}

// Values encodes the query. Parameters other than limit and offset are JSON
// encoded and omitted when empty.
func (q RecordQuery) Values() (url.Values, error) {
	v := url.Values{}
	v.Set("limit", strconv.Itoa(q.Limit))
	v.Set("offset", strconv.Itoa(q.Offset))

	if len(q.OrderBy) > 0 {
		if err := setJSON(v, "order_by", q.OrderBy); err != nil {
			return nil, err
		}
	}
	if len(q.Filter) > 0 {
		if !json.Valid(q.Filter) {
			return nil, fmt.Errorf("failed to encode filter: invalid JSON %q", q.Filter)
		}
		v.Set("filter", string(q.Filter))
	}
	if q.Grouping != nil && len(q.Grouping.Columns) > 0 {
		if err := setJSON(v, "grouping", q.Grouping); err != nil {
			return nil, err
		}
	}
	if len(q.DuplicateOnly) > 0 {
		if err := setJSON(v, "duplicate_only", q.DuplicateOnly); err != nil {
			return nil, err
		}
	}

	return v, nil
}

func setJSON(v url.Values, key string, val any) error {
	raw, err := json.Marshal(val)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	v.Set(key, string(raw))
	return nil
}
