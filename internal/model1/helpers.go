package model1

import (
	"sort"

	"github.com/fvbommel/sortorder"
	"github.com/wI2L/jsondiff"
)

// NaturalLess returns true if s1 sorts before s2, comparing digit runs numerically
// so that "db2" sorts before "db10".
func NaturalLess(s1, s2 string) bool {
	return sortorder.NaturalLess(s1, s2)
}

// SortNatural sorts ss in place in natural order.
func SortNatural(ss []string) {
	sort.Sort(sortorder.Natural(ss))
}

// RowsPatch returns the RFC 6902 patch turning old rows into new rows.
func RowsPatch(old, new Rows) (jsondiff.Patch, error) {
	if old == nil {
		old = Rows{}
	}
	if new == nil {
		new = Rows{}
	}
	return jsondiff.Compare(old, new)
}
