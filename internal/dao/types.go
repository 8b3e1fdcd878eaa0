package dao

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/tabsync/tabsync/internal/model1"
)

// TableRef identifies one cached table: a data source and a table id within it.
type TableRef struct {
	Source string
	Table  int
}

// String returns a string representation in the form "source/table".
func (r TableRef) String() string {
	return fmt.Sprintf("%s/%d", r.Source, r.Table)
}

// ParseTableRef parses a string in the form "source/table".
func ParseTableRef(s string) (TableRef, error) {
	source, table, ok := strings.Cut(s, "/")
	if !ok || source == "" || table == "" {
		return TableRef{}, fmt.Errorf("invalid table reference: %s (expected source/table)", s)
	}
	id, err := strconv.Atoi(table)
	if err != nil || id <= 0 {
		return TableRef{}, fmt.Errorf("invalid table id %q in %s", table, s)
	}
	return TableRef{Source: source, Table: id}, nil
}

// Transport issues read requests against the upstream table service.
// Implementations must return promptly once ctx is cancelled.
type Transport interface {
	Get(ctx context.Context, path string, query url.Values, out any) error
}

// Canceler is an in-flight request that can be abandoned.
type Canceler interface {
	Cancel()
}

// TableDetail is the upstream table description.
type TableDetail struct {
	Columns model1.Columns `json:"columns"`
}

// RecordPage is one page of upstream records.
type RecordPage struct {
	Count    int            `json:"count"`
	Results  model1.Rows    `json:"results"`
	Grouping *model1.Groups `json:"grouping"`
}

// TablePath returns the table detail endpoint.
func TablePath(table int) string {
	return fmt.Sprintf("tables/%d/", table)
}

// RecordsPath returns the table records endpoint.
func RecordsPath(table int) string {
	return fmt.Sprintf("tables/%d/records/", table)
}
