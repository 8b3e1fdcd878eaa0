package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tabsync/tabsync/internal/model1"
)

// Record renders table records.
type Record struct {
	Base
}

// Header returns the record header
func (*Record) Header(cols model1.Columns) model1.Header {
	return model1.NewHeader(cols)
}

// Render renders a record to a row. Fields the record does not carry are
// shown as NAValue.
func (r *Record) Render(o any, cols model1.Columns, row *model1.Row) error {
	rec, ok := o.(model1.Record)
	if !ok {
		return fmt.Errorf("expected Record, got %T", o)
	}

	if id, ok := rec.ID(); ok {
		row.ID = FormatValue(id)
	}
	row.Fields = make(model1.Fields, 0, len(cols))
	for _, c := range cols {
		v, ok := rec[c.Name]
		if !ok {
			row.Fields = append(row.Fields, NAValue)
			continue
		}
		row.Fields = append(row.Fields, r.Cell(v))
	}

	return nil
}

// Column renders table columns.
type Column struct {
	Base
}

// Header returns the column header
func (*Column) Header() model1.Header {
	return model1.Header{"#", "NAME", "TYPE"}
}

// Render renders a column to a row
func (c *Column) Render(o any, idx int, row *model1.Row) error {
	col, ok := o.(model1.Column)
	if !ok {
		return fmt.Errorf("expected Column, got %T", o)
	}

	row.ID = col.Name
	row.Fields = model1.Fields{
		AsCount(idx + 1),
		c.Cell(col.Name),
		NA(col.Type),
	}

	return nil
}

// Group renders one group of a grouped records page.
type Group struct {
	Base
	Columns []string
}

// Header returns the group header
func (*Group) Header() model1.Header {
	return model1.Header{"#", "COUNT", "FIRST", "LAST", "ROWS"}
}

// Render renders a group to a row
func (g *Group) Render(o any, idx int, row *model1.Row) error {
	grp, ok := o.(model1.Group)
	if !ok {
		return fmt.Errorf("expected Group, got %T", o)
	}

	row.ID = strconv.Itoa(idx)
	row.Fields = model1.Fields{
		AsCount(idx + 1),
		AsCount(grp.Count),
		g.Cell(g.values(grp.FirstValue)),
		g.Cell(g.values(grp.LastValue)),
		g.Cell(indexRange(grp.ResultIndices)),
	}

	return nil
}

// values lists the grouped columns of rec, in grouping order.
func (g *Group) values(rec model1.Record) string {
	if len(rec) == 0 {
		return MissingValue
	}
	vv := make([]string, 0, len(g.Columns))
	for _, c := range g.Columns {
		if v, ok := rec[c]; ok {
			vv = append(vv, FormatValue(v))
		}
	}
	return strings.Join(vv, ", ")
}

// indexRange shows the 1-based page rows of a group, runs collapsed.
func indexRange(ii []int) string {
	if len(ii) == 0 {
		return MissingValue
	}
	var parts []string
	for i := 0; i < len(ii); {
		j := i
		for j+1 < len(ii) && ii[j+1] == ii[j]+1 {
			j++
		}
		if i == j {
			parts = append(parts, strconv.Itoa(ii[i]+1))
		} else {
			parts = append(parts, fmt.Sprintf("%d-%d", ii[i]+1, ii[j]+1))
		}
		i = j + 1
	}
	return strings.Join(parts, ",")
}
