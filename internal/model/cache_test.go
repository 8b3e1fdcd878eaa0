package model

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"testing"
	"time"

	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tabsync/tabsync/internal/dao"
	"github.com/tabsync/tabsync/internal/model1"
)

const waitFor = 2 * time.Second

type reply struct {
	body string
	err  error
	pv   any
}

type call struct {
	ctx   context.Context
	path  string
	query url.Values
	reply chan reply
}

func (c *call) respond(body string) {
	c.reply <- reply{body: body}
}

func (c *call) fail(err error) {
	c.reply <- reply{err: err}
}

// fakeTransport hands every request to the test, which answers it.
type fakeTransport struct {
	calls chan *call
	// stubborn transports answer even after their context was cancelled.
	stubborn bool
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{calls: make(chan *call, 32)}
}

func (f *fakeTransport) Get(ctx context.Context, path string, query url.Values, out any) error {
	c := call{ctx: ctx, path: path, query: query, reply: make(chan reply, 1)}
	f.calls <- &c

	var r reply
	if f.stubborn {
		r = <-c.reply
	} else {
		select {
		case r = <-c.reply:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if r.pv != nil {
		panic(r.pv)
	}
	if r.err != nil {
		return r.err
	}

	return json.Unmarshal([]byte(r.body), out)
}

func (f *fakeTransport) next(t *testing.T) *call {
	t.Helper()
	select {
	case c := <-f.calls:
		return c
	case <-time.After(waitFor):
		t.Fatal("no request issued")
		return nil
	}
}

// nextTwo returns the columns and records requests of a table opening.
func (f *fakeTransport) nextTwo(t *testing.T) (cols, recs *call) {
	t.Helper()
	for range 2 {
		c := f.next(t)
		if c.query == nil {
			cols = c
		} else {
			recs = c
		}
	}
	require.NotNil(t, cols)
	require.NotNil(t, recs)

	return cols, recs
}

func (f *fakeTransport) assertIdle(t *testing.T) {
	t.Helper()
	select {
	case c := <-f.calls:
		t.Fatalf("unexpected request %s", c.path)
	case <-time.After(50 * time.Millisecond):
	}
}

func newTestCache(t *testing.T, opts ...CacheOption) (*Cache, *fakeTransport) {
	t.Helper()
	ft := newFakeTransport()
	opts = append([]CacheOption{WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))}, opts...)
	c := NewCache(ft, opts...)
	t.Cleanup(func() {
		c.Close()
		c.Wait()
	})

	return c, ft
}

func settled(t *testing.T, e *TableEntry) (model1.ColumnState, model1.RecordState) {
	t.Helper()
	ctx, cancel := context.WithTimeout(t.Context(), waitFor)
	defer cancel()
	cols, recs, err := e.Settled(ctx)
	require.NoError(t, err)

	return cols, recs
}

func TestGetTableDefaults(t *testing.T) {
	c, ft := newTestCache(t)

	e := c.GetTable("db", 7, nil)
	o := e.Options.Get()
	assert.Equal(t, 50, o.PageSize)
	assert.Equal(t, 1, o.Page)
	assert.Equal(t, 0, o.Sort.Len())

	cols, recs := ft.nextTwo(t)
	assert.Equal(t, "tables/7/", cols.path)
	assert.Equal(t, "tables/7/records/", recs.path)
	assert.Equal(t, "50", recs.query.Get("limit"))
	assert.Equal(t, "0", recs.query.Get("offset"))
	assert.False(t, recs.query.Has("order_by"))

	assert.Equal(t, model1.Loading, e.Columns.Get().Status)
	assert.Equal(t, model1.Loading, e.Records.Get().Status)
	assert.Same(t, e, c.GetTable("db", 7, nil))
}

func TestGetTableOverride(t *testing.T) {
	c, ft := newTestCache(t)

	e := c.GetTable("db", 3, &model1.Options{
		PageSize: 10,
		Page:     3,
		Sort: model1.NewSort(
			model1.SortField{Field: "title", Direction: model1.Desc},
			model1.SortField{Field: "id", Direction: model1.Asc},
		),
	})
	_, recs := ft.nextTwo(t)

	assert.Equal(t, 10, e.Options.Get().PageSize)
	assert.Equal(t, "10", recs.query.Get("limit"))
	assert.Equal(t, "20", recs.query.Get("offset"))
	assert.JSONEq(t,
		`[{"field":"title","direction":"desc"},{"field":"id","direction":"asc"}]`,
		recs.query.Get("order_by"),
	)
}

func TestCacheDefaults(t *testing.T) {
	c, ft := newTestCache(t, WithDefaults(model1.Options{PageSize: 25}))

	e := c.GetTable("db", 1, &model1.Options{Page: 2})
	_, recs := ft.nextTwo(t)

	assert.Equal(t, 25, e.Options.Get().PageSize)
	assert.Equal(t, "25", recs.query.Get("offset"))
}

func TestFetchDone(t *testing.T) {
	c, ft := newTestCache(t)

	e := c.GetTable("db", 1, nil)
	cols, recs := ft.nextTwo(t)
	cols.respond(`{"columns": [{"name": "id", "type": "integer"}, {"name": "title", "type": "text"}]}`)
	recs.respond(`{"count": 120, "results": [{"id": 1, "title": "a"}, {"id": 2, "title": "b"}]}`)

	cs, rs := settled(t, e)
	assert.Equal(t, model1.Done, cs.Status)
	assert.Equal(t, []string{"id", "title"}, cs.Columns.Names())
	assert.Equal(t, model1.Done, rs.Status)
	assert.Empty(t, rs.Error)
	assert.Len(t, rs.Rows, 2)
	assert.Equal(t, 120, rs.TotalCount)
}

func TestFetchMissingPayload(t *testing.T) {
	c, ft := newTestCache(t)

	e := c.GetTable("db", 1, nil)
	cols, recs := ft.nextTwo(t)
	cols.respond(`{}`)
	recs.respond(`{"count": 0}`)

	cs, rs := settled(t, e)
	assert.Equal(t, model1.Done, cs.Status)
	assert.NotNil(t, cs.Columns)
	assert.Empty(t, cs.Columns)
	assert.Equal(t, model1.Done, rs.Status)
	assert.NotNil(t, rs.Rows)
	assert.Empty(t, rs.Rows)
}

func TestFetchError(t *testing.T) {
	c, ft := newTestCache(t)

	e := c.GetTable("db", 1, nil)
	cols, recs := ft.nextTwo(t)
	cols.respond(`{"columns": [{"name": "id"}]}`)
	recs.respond(`{"count": 2, "results": [{"id": 1}, {"id": 2}]}`)
	settled(t, e)

	c.FetchTableRecords("db", 1)
	loading := e.Records.Get()
	assert.Equal(t, model1.Loading, loading.Status)
	assert.Len(t, loading.Rows, 2)
	assert.Equal(t, 2, loading.TotalCount)

	ft.next(t).fail(errors.New("network down"))
	_, rs := settled(t, e)
	assert.Equal(t, model1.Error, rs.Status)
	assert.Equal(t, "network down", rs.Error)
	assert.Empty(t, rs.Rows)
	assert.Equal(t, 0, rs.TotalCount)

	c.FetchTableRecords("db", 1)
	assert.Empty(t, e.Records.Get().Error)
	ft.next(t).respond(`{"count": 1, "results": [{"id": 1}]}`)
	_, rs = settled(t, e)
	assert.Equal(t, model1.Done, rs.Status)
	assert.Len(t, rs.Rows, 1)
}

func TestFetchColumnsError(t *testing.T) {
	c, ft := newTestCache(t)

	e := c.GetTable("db", 1, nil)
	cols, recs := ft.nextTwo(t)
	cols.respond(`{"columns": [{"name": "id"}, {"name": "title"}]}`)
	recs.respond(`{"count": 1, "results": [{"id": 1}]}`)
	settled(t, e)

	c.FetchTableColumns("db", 1)
	loading := e.Columns.Get()
	assert.Equal(t, model1.Loading, loading.Status)
	assert.Empty(t, loading.Error)
	assert.Equal(t, []string{"id", "title"}, loading.Columns.Names())

	ft.next(t).fail(fmt.Errorf("GET tables/1/: %w", &smithy.GenericAPIError{
		Code:    "4404",
		Message: "Not found.",
		Fault:   smithy.FaultClient,
	}))
	cs, rs := settled(t, e)
	assert.Equal(t, model1.Error, cs.Status)
	assert.Equal(t, "Not found.", cs.Error)
	assert.NotNil(t, cs.Columns)
	assert.Empty(t, cs.Columns)
	assert.Equal(t, model1.Done, rs.Status)
	assert.Len(t, rs.Rows, 1)

	c.FetchTableColumns("db", 1)
	assert.Empty(t, e.Columns.Get().Error)
	ft.next(t).respond(`{"columns": [{"name": "id"}]}`)
	cs, _ = settled(t, e)
	assert.Equal(t, model1.Done, cs.Status)
	assert.Equal(t, []string{"id"}, cs.Columns.Names())
}

func TestFetchGroupedRecords(t *testing.T) {
	c, ft := newTestCache(t)

	e := c.GetTable("db", 1, &model1.Options{
		Grouping:      &model1.Grouping{Columns: []string{"Center"}},
		DuplicateOnly: []string{"Center"},
	})
	cols, recs := ft.nextTwo(t)
	assert.JSONEq(t, `{"columns":["Center"]}`, recs.query.Get("grouping"))
	assert.JSONEq(t, `["Center"]`, recs.query.Get("duplicate_only"))
	cols.respond(`{}`)
	recs.respond(`{
		"count": 3,
		"grouping": {"columns": ["Center"], "mode": "distinct", "groups": [
			{"count": 2, "first_value": {"Center": "Ames"}, "last_value": {"Center": "Ames"}, "result_indices": [0, 1]},
			{"count": 1, "first_value": {"Center": "Kennedy"}, "last_value": {"Center": "Kennedy"}, "result_indices": [2]}
		]},
		"results": [{"Center": "Ames"}, {"Center": "Ames"}, {"Center": "Kennedy"}]
	}`)

	_, rs := settled(t, e)
	require.NotNil(t, rs.Grouping)
	require.Len(t, rs.Grouping.Groups, 2)
	assert.Equal(t, []int{2}, rs.Grouping.Groups[1].ResultIndices)

	c.FetchTableRecords("db", 1)
	assert.Same(t, rs.Grouping, e.Records.Get().Grouping)
	ft.next(t).fail(errors.New("network down"))
	_, rs = settled(t, e)
	assert.Nil(t, rs.Grouping)
}

func TestInvalidFilterFailsRecords(t *testing.T) {
	c, ft := newTestCache(t)

	var seen []model1.Status
	e := c.GetTable("db", 1, &model1.Options{Filter: json.RawMessage(`{"equal":`)})
	e.Records.Subscribe(func(rs model1.RecordState) { seen = append(seen, rs.Status) })

	cols := ft.next(t)
	require.Nil(t, cols.query)
	ft.assertIdle(t)
	cols.respond(`{}`)

	rs := e.Records.Get()
	assert.Equal(t, model1.Error, rs.Status)
	assert.Contains(t, rs.Error, "filter")
	assert.Empty(t, rs.Rows)
	assert.Equal(t, []model1.Status{model1.Error}, seen)
}

func TestFetchPanicWithoutError(t *testing.T) {
	c, ft := newTestCache(t)

	e := c.GetTable("db", 1, nil)
	cols, recs := ft.nextTwo(t)
	cols.respond(`{}`)
	recs.reply <- reply{pv: "boom"}

	_, rs := settled(t, e)
	assert.Equal(t, model1.Error, rs.Status)
	assert.Empty(t, rs.Error)
}

func TestLastRequestWins(t *testing.T) {
	c, ft := newTestCache(t)
	ft.stubborn = true

	e := c.GetTable("db", 1, nil)
	cols, first := ft.nextTwo(t)
	cols.respond(`{}`)

	e.SetPage(3)
	c.FetchTableRecords("db", 1)
	second := ft.next(t)
	assert.Equal(t, "100", second.query.Get("offset"))

	select {
	case <-first.ctx.Done():
	case <-time.After(waitFor):
		t.Fatal("superseded request was not cancelled")
	}

	second.respond(`{"count": 300, "results": [{"id": 101}]}`)
	_, rs := settled(t, e)
	assert.Equal(t, 300, rs.TotalCount)

	// The superseded request answers late and must be ignored.
	first.respond(`{"count": 1, "results": [{"id": 1}]}`)
	c.Wait()
	rs = e.Records.Get()
	assert.Equal(t, model1.Done, rs.Status)
	assert.Equal(t, 300, rs.TotalCount)
	assert.Equal(t, float64(101), rs.Rows[0]["id"])
}

func TestRapidFetches(t *testing.T) {
	c, ft := newTestCache(t)
	ft.stubborn = true

	e := c.GetTable("db", 1, nil)
	cols, first := ft.nextTwo(t)
	cols.respond(`{}`)
	c.FetchTableRecords("db", 1)
	second := ft.next(t)
	c.FetchTableRecords("db", 1)
	third := ft.next(t)

	first.respond(`{"count": 1}`)
	third.respond(`{"count": 3}`)
	second.respond(`{"count": 2}`)
	c.Wait()

	rs := e.Records.Get()
	assert.Equal(t, model1.Done, rs.Status)
	assert.Equal(t, 3, rs.TotalCount)
}

func TestSlotsIndependent(t *testing.T) {
	c, ft := newTestCache(t)

	e := c.GetTable("db", 1, nil)
	cols, recs := ft.nextTwo(t)
	cols.respond(`{}`)
	settledCols, err := waitSettled(t.Context(), e.Columns, model1.ColumnState.Settled)
	require.NoError(t, err)
	assert.Equal(t, model1.Done, settledCols.Status)

	c.FetchTableColumns("db", 1)
	refetch := ft.next(t)
	assert.Equal(t, "tables/1/", refetch.path)
	assert.NoError(t, recs.ctx.Err())

	refetch.respond(`{"columns": [{"name": "id"}]}`)
	recs.respond(`{"count": 4}`)
	cs, rs := settled(t, e)
	assert.Len(t, cs.Columns, 1)
	assert.Equal(t, 4, rs.TotalCount)
}

func TestGetTableRefetchesRecordsOnly(t *testing.T) {
	c, ft := newTestCache(t)

	e := c.GetTable("db", 1, nil)
	cols, recs := ft.nextTwo(t)
	cols.respond(`{}`)
	recs.respond(`{}`)
	settled(t, e)

	c.GetTable("db", 1, &model1.Options{PageSize: 5})
	again := ft.next(t)
	assert.Equal(t, "tables/1/records/", again.path)
	assert.Equal(t, "50", again.query.Get("limit"))
	ft.assertIdle(t)
	again.respond(`{}`)
}

func TestUnknownTable(t *testing.T) {
	c, ft := newTestCache(t)

	c.FetchTableRecords("db", 9)
	c.FetchTableColumns("db", 9)
	c.ClearTable("db", 9)
	ft.assertIdle(t)

	assert.Empty(t, c.Keys())
}

func TestClearTable(t *testing.T) {
	c, ft := newTestCache(t)
	ft.stubborn = true

	old := c.GetTable("db", 1, &model1.Options{PageSize: 10, Page: 4})
	oldCols, oldRecs := ft.nextTwo(t)

	c.ClearTable("db", 1)
	assert.Empty(t, c.Keys())
	require.NoError(t, oldRecs.ctx.Err())

	fresh := c.GetTable("db", 1, nil)
	assert.NotSame(t, old, fresh)
	assert.Equal(t, model1.DefaultOptions(), fresh.Options.Get())
	cols, recs := ft.nextTwo(t)

	oldCols.respond(`{"columns": [{"name": "stale"}]}`)
	oldRecs.respond(`{"count": 99}`)
	cols.respond(`{"columns": [{"name": "id"}]}`)
	recs.respond(`{"count": 5}`)
	c.Wait()

	assert.Equal(t, model1.Loading, old.Records.Get().Status)
	assert.Equal(t, model1.Loading, old.Columns.Get().Status)
	cs, rs := fresh.Columns.Get(), fresh.Records.Get()
	assert.Equal(t, []string{"id"}, cs.Columns.Names())
	assert.Equal(t, 5, rs.TotalCount)
}

func TestKeys(t *testing.T) {
	c, ft := newTestCache(t)

	c.GetTable("db10", 1, nil)
	c.GetTable("db2", 8, nil)
	c.GetTable("db2", 3, nil)
	for range 6 {
		ft.next(t).respond(`{}`)
	}

	assert.Equal(t, []dao.TableRef{
		{Source: "db2", Table: 3},
		{Source: "db2", Table: 8},
		{Source: "db10", Table: 1},
	}, c.Keys())
}

func TestClose(t *testing.T) {
	c, ft := newTestCache(t)

	e := c.GetTable("db", 1, nil)
	cols, recs := ft.nextTwo(t)
	c.Close()

	for _, r := range []*call{cols, recs} {
		select {
		case <-r.ctx.Done():
		case <-time.After(waitFor):
			t.Fatalf("request %s was not cancelled", r.path)
		}
	}
	c.Wait()
	assert.Equal(t, model1.Loading, e.Records.Get().Status)
	assert.Equal(t, model1.Loading, e.Columns.Get().Status)

	c.GetTable("db", 2, nil)
	c.FetchTableRecords("db", 1)
	ft.assertIdle(t)
}

func TestSubscriberRefetches(t *testing.T) {
	c, ft := newTestCache(t)

	e := c.GetTable("db", 1, nil)
	cols, recs := ft.nextTwo(t)
	cols.respond(`{}`)

	// A subscriber calling back into the cache must not deadlock.
	unsub := e.Options.Subscribe(func(model1.Options) {
		c.FetchTableRecords("db", 1)
	})
	defer unsub()
	initial := ft.next(t)
	assert.Equal(t, "0", initial.query.Get("offset"))

	e.SetSort(model1.NewSort(model1.SortField{Field: "title", Direction: model1.Desc}))
	sorted := ft.next(t)
	assert.JSONEq(t, `[{"field":"title","direction":"desc"}]`, sorted.query.Get("order_by"))

	e.SetPage(2)
	paged := ft.next(t)
	assert.Equal(t, "50", paged.query.Get("offset"))

	for _, r := range []*call{recs, initial, sorted} {
		assert.Error(t, r.ctx.Err())
	}
	paged.respond(`{"count": 51, "results": [{"id": 51}]}`)
	rs, err := e.RecordsSettled(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 51, rs.TotalCount)
}

func TestSettledTimeout(t *testing.T) {
	c, ft := newTestCache(t)

	e := c.GetTable("db", 1, nil)
	ft.nextTwo(t)

	ctx, cancel := context.WithTimeout(t.Context(), 20*time.Millisecond)
	defer cancel()
	_, err := e.RecordsSettled(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}
