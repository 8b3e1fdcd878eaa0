package dao

import (
	"encoding/json"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tabsync/tabsync/internal/model1"
)

func TestRecordQueryPagination(t *testing.T) {
	q := NewRecordQuery(model1.Options{PageSize: 25, Page: 3})
	assert.Equal(t, 25, q.Limit)
	assert.Equal(t, 50, q.Offset)

	v, err := q.Values()
	require.NoError(t, err)
	assert.Equal(t, "25", v.Get("limit"))
	assert.Equal(t, "50", v.Get("offset"))
	assert.False(t, v.Has("order_by"))
}

func TestRecordQueryOrderBy(t *testing.T) {
	o := model1.DefaultOptions()
	o.Sort = model1.NewSort(model1.SortField{Field: "age", Direction: model1.Desc})

	v, err := NewRecordQuery(o).Values()
	require.NoError(t, err)

	// The parameter must survive a round trip through the query string.
	parsed, err := url.ParseQuery(v.Encode())
	require.NoError(t, err)

	var got []map[string]string
	require.NoError(t, json.Unmarshal([]byte(parsed.Get("order_by")), &got))
	assert.Equal(t, []map[string]string{{"field": "age", "direction": "desc"}}, got)
}

func TestRecordQueryOrderByKeepsOrder(t *testing.T) {
	o := model1.DefaultOptions()
	o.Sort = model1.NewSort(
		model1.SortField{Field: "name", Direction: model1.Asc},
		model1.SortField{Field: "age", Direction: model1.Desc},
	)

	v, err := NewRecordQuery(o).Values()
	require.NoError(t, err)
	assert.Equal(t, `[{"field":"name","direction":"asc"},{"field":"age","direction":"desc"}]`, v.Get("order_by"))
}

func TestRecordQueryEmptySort(t *testing.T) {
	o := model1.DefaultOptions()
	o.Sort = model1.NewSort()

	v, err := NewRecordQuery(o).Values()
	require.NoError(t, err)
	assert.False(t, v.Has("order_by"))
}

func TestRecordQueryFilterGroupingDuplicates(t *testing.T) {
	o := model1.DefaultOptions()
	o.Filter = json.RawMessage(`{"equal":[{"column_name":["Center"]},{"literal":["Ames"]}]}`)
	o.Grouping = &model1.Grouping{Columns: []string{"Center"}, Mode: model1.GroupPercentile, NumGroups: 5}
	o.DuplicateOnly = []string{"Patent Expiration Date"}

	v, err := NewRecordQuery(o).Values()
	require.NoError(t, err)

	parsed, err := url.ParseQuery(v.Encode())
	require.NoError(t, err)
	assert.JSONEq(t, string(o.Filter), parsed.Get("filter"))
	assert.JSONEq(t, `{"columns":["Center"],"mode":"percentile","num_groups":5}`, parsed.Get("grouping"))
	assert.JSONEq(t, `["Patent Expiration Date"]`, parsed.Get("duplicate_only"))
	assert.False(t, parsed.Has("order_by"))
}

func TestRecordQueryOmitsEmptyParams(t *testing.T) {
	o := model1.DefaultOptions()
	o.Grouping = &model1.Grouping{}
	o.DuplicateOnly = []string{}

	v, err := NewRecordQuery(o).Values()
	require.NoError(t, err)
	for _, k := range []string{"filter", "grouping", "duplicate_only"} {
		assert.False(t, v.Has(k), k)
	}
}

func TestRecordQueryInvalidFilter(t *testing.T) {
	o := model1.DefaultOptions()
	o.Filter = json.RawMessage(`{"equal":`)

	_, err := NewRecordQuery(o).Values()
	assert.Error(t, err)
}

func TestParseTableRef(t *testing.T) {
	uu := map[string]struct {
		s   string
		ref TableRef
		err bool
	}{
		"ok":        {s: "nasa/12", ref: TableRef{Source: "nasa", Table: 12}},
		"no-slash":  {s: "nasa", err: true},
		"no-source": {s: "/12", err: true},
		"bad-id":    {s: "nasa/x", err: true},
		"zero-id":   {s: "nasa/0", err: true},
	}

	for k := range uu {
		u := uu[k]
		t.Run(k, func(t *testing.T) {
			ref, err := ParseTableRef(u.s)
			if u.err {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, u.ref, ref)
			assert.Equal(t, u.s, ref.String())
		})
	}
}

func TestPaths(t *testing.T) {
	assert.Equal(t, "tables/12/", TablePath(12))
	assert.Equal(t, "tables/12/records/", RecordsPath(12))
}
