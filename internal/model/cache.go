package model

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"github.com/tabsync/tabsync/internal/dao"
	"github.com/tabsync/tabsync/internal/model1"
)

// Cache keeps the state of every opened table, keyed by data source then
// table id, and synchronizes it with the upstream service.
//
// Registry and request slot changes, and the values stored into the entry
// cells, are serialized by one lock. Subscribers are notified after the lock
// is released, so they may call back into the cache.
type Cache struct {
	transport dao.Transport
	defaults  model1.Options
	log       *slog.Logger
	tables    map[string]map[int]*TableEntry
	closed    bool
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mx        sync.Mutex
}

// CacheOption configures a Cache.
type CacheOption func(*Cache)

// WithLogger sets the logger used for request tracing.
func WithLogger(l *slog.Logger) CacheOption {
	return func(c *Cache) {
		if l != nil {
			c.log = l
		}
	}
}

// WithDefaults sets the options given to tables opened without override.
func WithDefaults(o model1.Options) CacheOption {
	return func(c *Cache) {
		c.defaults = o.WithDefaults(model1.DefaultOptions())
	}
}

// NewCache returns an empty cache fetching through t.
func NewCache(t dao.Transport, opts ...CacheOption) *Cache {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Cache{
		transport: t,
		defaults:  model1.DefaultOptions(),
		log:       slog.Default(),
		tables:    make(map[string]map[int]*TableEntry),
		ctx:       ctx,
		cancel:    cancel,
	}
	for _, o := range opts {
		o(c)
	}

	return c
}

// GetTable returns the entry of a table, creating it on first use. A new
// entry starts with override applied over the cache defaults and fetches its
// columns. Every call fetches records. Fetches complete in the background;
// their outcome is only visible through the entry cells.
func (c *Cache) GetTable(source string, table int, override *model1.Options) *TableEntry {
	ref := dao.TableRef{Source: source, Table: table}

	c.mx.Lock()
	e := c.lookup(ref)
	var notifyCols func()
	if e == nil {
		var o model1.Options
		if override != nil {
			o = *override
		}
		e = newTableEntry(ref, o.WithDefaults(c.defaults))
		c.store(e)
		c.log.Debug("Opened table", "table", ref, "pageSize", e.Options.Get().PageSize)
		notifyCols = c.startColumns(e)
	}
	notifyRecs := c.startRecords(e)
	c.mx.Unlock()

	if notifyCols != nil {
		notifyCols()
	}
	notifyRecs()

	return e
}

// FetchTableRecords refreshes the records of an opened table using its
// current options. Unknown tables are ignored.
func (c *Cache) FetchTableRecords(source string, table int) {
	c.mx.Lock()
	e := c.lookup(dao.TableRef{Source: source, Table: table})
	if e == nil {
		c.mx.Unlock()
		return
	}
	notify := c.startRecords(e)
	c.mx.Unlock()

	notify()
}

// FetchTableColumns refreshes the columns of an opened table. Unknown tables
// are ignored.
func (c *Cache) FetchTableColumns(source string, table int) {
	c.mx.Lock()
	e := c.lookup(dao.TableRef{Source: source, Table: table})
	if e == nil {
		c.mx.Unlock()
		return
	}
	notify := c.startColumns(e)
	c.mx.Unlock()

	notify()
}

// ClearTable forgets a table. Requests still in flight are not cancelled;
// their results are dropped when they arrive.
func (c *Cache) ClearTable(source string, table int) {
	c.mx.Lock()
	defer c.mx.Unlock()

	tt, ok := c.tables[source]
	if !ok {
		return
	}
	delete(tt, table)
	if len(tt) == 0 {
		delete(c.tables, source)
	}
}

// Keys returns the opened tables, sources in natural order then table ids.
func (c *Cache) Keys() []dao.TableRef {
	c.mx.Lock()
	refs := make([]dao.TableRef, 0, len(c.tables))
	for _, tt := range c.tables {
		for _, e := range tt {
			refs = append(refs, e.Ref)
		}
	}
	c.mx.Unlock()

	sort.Slice(refs, func(i, j int) bool {
		if refs[i].Source != refs[j].Source {
			return model1.NaturalLess(refs[i].Source, refs[j].Source)
		}
		return refs[i].Table < refs[j].Table
	})

	return refs
}

// Wait blocks until every issued request settled and was handled.
func (c *Cache) Wait() {
	c.wg.Wait()
}

// Close cancels every in-flight request. Their results are never published
// and no further request is issued.
func (c *Cache) Close() {
	c.mx.Lock()
	c.closed = true
	for _, tt := range c.tables {
		for _, e := range tt {
			if e.slot.columns != nil {
				e.slot.columns.Cancel()
				e.slot.columns = nil
			}
			if e.slot.records != nil {
				e.slot.records.Cancel()
				e.slot.records = nil
			}
		}
	}
	c.mx.Unlock()

	c.cancel()
}

// lookup resolves an entry. Caller must hold the lock.
func (c *Cache) lookup(ref dao.TableRef) *TableEntry {
	tt, ok := c.tables[ref.Source]
	if !ok {
		return nil
	}
	return tt[ref.Table]
}

// store registers an entry. Caller must hold the lock.
func (c *Cache) store(e *TableEntry) {
	tt, ok := c.tables[e.Ref.Source]
	if !ok {
		tt = make(map[int]*TableEntry)
		c.tables[e.Ref.Source] = tt
	}
	tt[e.Ref.Table] = e
}
