package model1

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Grouping modes understood by the upstream service.
const (
	GroupDistinct   = "distinct"
	GroupPercentile = "percentile"
)

// Grouping asks the upstream service to group a page of records.
type Grouping struct {
	Columns   []string `json:"columns"`
	Mode      string   `json:"mode,omitempty"`
	NumGroups int      `json:"num_groups,omitempty"`
}

// ParseGrouping reads "col1,col2" or "col1,col2:percentile:5". Empty yields nil.
func ParseGrouping(spec string) (*Grouping, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return nil, nil
	}

	parts := strings.Split(spec, ":")
	g := Grouping{Columns: splitList(parts[0])}
	if len(g.Columns) == 0 {
		return nil, fmt.Errorf("invalid grouping %q: missing column name", spec)
	}
	switch len(parts) {
	case 1:
	case 3:
		if parts[1] != GroupPercentile {
			return nil, fmt.Errorf("invalid grouping %q: unknown mode %q", spec, parts[1])
		}
		n, err := strconv.Atoi(parts[2])
		if err != nil || n < 1 {
			return nil, fmt.Errorf("invalid grouping %q: bad group count %q", spec, parts[2])
		}
		g.Mode, g.NumGroups = GroupPercentile, n
	default:
		return nil, fmt.Errorf("invalid grouping %q: expected cols or cols:percentile:N", spec)
	}

	return &g, nil
}

// Clone returns a deep copy of g.
func (g *Grouping) Clone() *Grouping {
	if g == nil {
		return nil
	}
	c := *g
	c.Columns = slices.Clone(g.Columns)
	return &c
}

// Group is one group of a grouped records page.
type Group struct {
	Count         int    `json:"count"`
	FirstValue    Record `json:"first_value"`
	LastValue     Record `json:"last_value"`
	ResultIndices []int  `json:"result_indices"`
}

// Groups describes how the upstream service grouped a records page.
type Groups struct {
	Columns   []string `json:"columns"`
	Mode      string   `json:"mode"`
	NumGroups int      `json:"num_groups"`
	Ranged    bool     `json:"ranged"`
	Groups    []Group  `json:"groups"`
}

// CompactFilter validates a JSON filter expression and strips its
// insignificant whitespace. Empty yields nil.
func CompactFilter(raw string) (json.RawMessage, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, []byte(raw)); err != nil {
		return nil, fmt.Errorf("invalid filter: %w", err)
	}
	return json.RawMessage(buf.Bytes()), nil
}

// SplitColumns reads a comma separated column list.
func SplitColumns(s string) []string {
	return splitList(s)
}

func splitList(s string) []string {
	var out []string
	for _, tok := range strings.Split(s, ",") {
		if tok = strings.TrimSpace(tok); tok != "" {
			out = append(out, tok)
		}
	}
	return out
}
