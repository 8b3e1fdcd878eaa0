package model

import (
	"errors"

	"github.com/tabsync/tabsync/internal/dao"
	"github.com/tabsync/tabsync/internal/model1"
)

// startColumns publishes Loading, supersedes the previous columns request and
// issues a new one. Caller must hold the lock and call the returned func once
// it released it.
func (c *Cache) startColumns(e *TableEntry) func() {
	if c.closed {
		return func() {}
	}

	notify := e.Columns.swap(e.Columns.Get().Reload())
	if e.slot.columns != nil {
		e.slot.columns.Cancel()
	}

	op := dao.Request[dao.TableDetail](c.ctx, c.transport, dao.TablePath(e.Ref.Table), nil)
	e.slot.columns = op
	c.log.Debug("Fetching columns", "table", e.Ref)

	c.wg.Add(1)
	go c.awaitColumns(e.Ref, op)

	return notify
}

func (c *Cache) awaitColumns(ref dao.TableRef, op *dao.Operation[dao.TableDetail]) {
	defer c.wg.Done()

	detail, err := op.Wait()
	if errors.Is(err, dao.ErrCanceled) {
		c.log.Debug("Dropped superseded request", "table", ref, "path", op.Path())
		return
	}

	c.mx.Lock()
	// Resolve again: the table may have been cleared or reopened meanwhile.
	// A reopened entry has its own request in flight, so results issued for
	// the cleared one never land in it.
	e := c.lookup(ref)
	if e == nil || e.slot.columns != op {
		c.mx.Unlock()
		c.log.Debug("Dropped orphaned result", "table", ref, "path", op.Path())
		return
	}
	e.slot.columns = nil

	var next model1.ColumnState
	if err != nil {
		c.log.Warn("Failed to fetch columns", "table", ref, "err", err)
		next = model1.ColumnState{
			Status:  model1.Error,
			Error:   ErrorMessage(err),
			Columns: model1.Columns{},
		}
	} else {
		cols := detail.Columns
		if cols == nil {
			cols = model1.Columns{}
		}
		next = model1.ColumnState{Status: model1.Done, Columns: cols}
	}
	notify := e.Columns.swap(next)
	c.mx.Unlock()

	notify()
}

// startRecords publishes Loading, derives the query from the entry options,
// supersedes the previous records request and issues a new one. Caller must
// hold the lock and call the returned func once it released it.
func (c *Cache) startRecords(e *TableEntry) func() {
	if c.closed {
		return func() {}
	}

	notify := e.Records.swap(e.Records.Get().Reload())
	opts := e.Options.Get()
	q := dao.NewRecordQuery(opts)
	if e.slot.records != nil {
		e.slot.records.Cancel()
		e.slot.records = nil
	}

	values, err := q.Values()
	if err != nil {
		c.log.Warn("Failed to build records query", "table", e.Ref, "err", err)
		failed := e.Records.swap(model1.RecordState{
			Status: model1.Error,
			Error:  ErrorMessage(err),
			Rows:   model1.Rows{},
		})
		return func() {
			notify()
			failed()
		}
	}

	op := dao.Request[dao.RecordPage](c.ctx, c.transport, dao.RecordsPath(e.Ref.Table), values)
	e.slot.records = op
	c.log.Debug("Fetching records",
		"table", e.Ref,
		"limit", q.Limit,
		"offset", q.Offset,
		"order_by", opts.Sort.String(),
	)

	c.wg.Add(1)
	go c.awaitRecords(e.Ref, op)

	return notify
}

func (c *Cache) awaitRecords(ref dao.TableRef, op *dao.Operation[dao.RecordPage]) {
	defer c.wg.Done()

	page, err := op.Wait()
	if errors.Is(err, dao.ErrCanceled) {
		c.log.Debug("Dropped superseded request", "table", ref, "path", op.Path())
		return
	}

	c.mx.Lock()
	// Same rule as columns: only the entry that issued op may publish it.
	e := c.lookup(ref)
	if e == nil || e.slot.records != op {
		c.mx.Unlock()
		c.log.Debug("Dropped orphaned result", "table", ref, "path", op.Path())
		return
	}
	e.slot.records = nil

	var next model1.RecordState
	if err != nil {
		c.log.Warn("Failed to fetch records", "table", ref, "err", err)
		next = model1.RecordState{
			Status: model1.Error,
			Error:  ErrorMessage(err),
			Rows:   model1.Rows{},
		}
	} else {
		rows := page.Results
		if rows == nil {
			rows = model1.Rows{}
		}
		next = model1.RecordState{
			Status:     model1.Done,
			Rows:       rows,
			TotalCount: page.Count,
			Grouping:   page.Grouping,
		}
	}
	notify := e.Records.swap(next)
	c.mx.Unlock()

	notify()
}
