package model

import (
	"context"

	"github.com/tabsync/tabsync/internal/model1"
)

// TableCache defines the operations consumers use to read tables.
type TableCache interface {
	// GetTable returns the entry of a table and fetches its records.
	GetTable(source string, table int, override *model1.Options) *TableEntry

	// FetchTableRecords refreshes the records of an opened table.
	FetchTableRecords(source string, table int)

	// ClearTable forgets a table.
	ClearTable(source string, table int)
}

var _ TableCache = (*Cache)(nil)

// Settled blocks until both columns and records left the loading state, and
// returns their values.
func (e *TableEntry) Settled(ctx context.Context) (model1.ColumnState, model1.RecordState, error) {
	cols, err := waitSettled(ctx, e.Columns, model1.ColumnState.Settled)
	if err != nil {
		return cols, e.Records.Get(), err
	}
	recs, err := waitSettled(ctx, e.Records, model1.RecordState.Settled)

	return cols, recs, err
}

// RecordsSettled blocks until records left the loading state.
func (e *TableEntry) RecordsSettled(ctx context.Context) (model1.RecordState, error) {
	return waitSettled(ctx, e.Records, model1.RecordState.Settled)
}

func waitSettled[T any](ctx context.Context, c *Cell[T], settled func(T) bool) (T, error) {
	ch := make(chan T, 1)
	cancel := c.Subscribe(func(v T) {
		if !settled(v) {
			return
		}
		select {
		case ch <- v:
		default:
		}
	})
	defer cancel()

	select {
	case v := <-ch:
		return v, nil
	case <-ctx.Done():
		return c.Get(), ctx.Err()
	}
}
