package model

import (
	"github.com/tabsync/tabsync/internal/dao"
	"github.com/tabsync/tabsync/internal/model1"
)

// TableEntry bundles the observable state of one cached table.
type TableEntry struct {
	Ref     dao.TableRef
	Options *Cell[model1.Options]
	Columns *Cell[model1.ColumnState]
	Records *Cell[model1.RecordState]

	// Guarded by the owning cache's lock.
	slot requestSlot
}

// requestSlot holds the outstanding request of each fetch purpose.
type requestSlot struct {
	columns dao.Canceler
	records dao.Canceler
}

func newTableEntry(ref dao.TableRef, opts model1.Options) *TableEntry {
	return &TableEntry{
		Ref:     ref,
		Options: NewCell(opts),
		Columns: NewCell(model1.NewColumnState()),
		Records: NewCell(model1.NewRecordState()),
	}
}

// SetPage moves to page p, clamped to 1.
func (e *TableEntry) SetPage(p int) {
	if p < 1 {
		p = 1
	}
	e.Options.Update(func(o model1.Options) model1.Options {
		o.Page = p
		return o
	})
}

// SetSort replaces the sort and goes back to the first page.
func (e *TableEntry) SetSort(s *model1.Sort) {
	e.Options.Update(func(o model1.Options) model1.Options {
		o.Sort = s.Clone()
		o.Page = 1
		return o
	})
}
