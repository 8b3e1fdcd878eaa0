package render

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"

	"github.com/tabsync/tabsync/internal/model1"
)

func newTable(out io.Writer, h model1.Header) *tablewriter.Table {
	table := tablewriter.NewWriter(out)
	table.SetHeader(h)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)

	return table
}

// Records writes a page of records as a table. Columns drive the layout; when
// they are unknown the record keys are used, in natural order.
func Records(out io.Writer, cols model1.Columns, rows model1.Rows, maxWidth int) error {
	if len(cols) == 0 {
		cols = inferColumns(rows)
	}

	r := Record{Base: Base{MaxWidth: maxWidth}}
	table := newTable(out, r.Header(cols))
	for _, rec := range rows {
		var row model1.Row
		if err := r.Render(rec, cols, &row); err != nil {
			return err
		}
		table.Append(row.Fields)
	}
	table.Render()

	return nil
}

// Columns writes the column list of a table.
func Columns(out io.Writer, cols model1.Columns) error {
	var c Column
	table := newTable(out, c.Header())
	for i, col := range cols {
		var row model1.Row
		if err := c.Render(col, i, &row); err != nil {
			return err
		}
		table.Append(row.Fields)
	}
	table.Render()

	return nil
}

// Groups writes how a records page was grouped, one line per group.
func Groups(out io.Writer, gg *model1.Groups, maxWidth int) error {
	g := Group{Base: Base{MaxWidth: maxWidth}, Columns: gg.Columns}
	table := newTable(out, g.Header())
	for i, grp := range gg.Groups {
		var row model1.Row
		if err := g.Render(grp, i, &row); err != nil {
			return err
		}
		table.Append(row.Fields)
	}
	table.Render()

	return nil
}

// Summary describes the paging position of a settled records state.
func Summary(rs model1.RecordState, o model1.Options) string {
	switch rs.Status {
	case model1.Error:
		return fmt.Sprintf("error: %s", Missing(rs.Error))
	case model1.Loading:
		return fmt.Sprintf("loading page %d", o.Page)
	}

	pages := o.PageCount(rs.TotalCount)
	if pages == 0 {
		return "no records"
	}
	first := o.Offset() + 1
	last := o.Offset() + len(rs.Rows)
	if len(rs.Rows) == 0 {
		return fmt.Sprintf("page %d of %d, no records on this page (%s total)",
			o.Page, pages, AsCount(rs.TotalCount))
	}

	return fmt.Sprintf("page %d of %d, records %s-%s of %s",
		o.Page, pages, AsCount(first), AsCount(last), AsCount(rs.TotalCount))
}

func inferColumns(rows model1.Rows) model1.Columns {
	seen := make(map[string]struct{})
	var cols model1.Columns
	for _, rec := range rows {
		for k := range rec {
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			cols = append(cols, model1.Column{Name: k})
		}
	}
	names := cols.SortedNames()
	cols = cols[:0]
	for _, n := range names {
		cols = append(cols, model1.Column{Name: n})
	}

	return cols
}
