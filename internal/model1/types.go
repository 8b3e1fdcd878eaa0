package model1

import "fmt"

// NAValue is displayed for a field a record does not carry.
const NAValue = "n/a"

// Status tracks where a piece of table state is in its fetch cycle.
type Status int

const (
	// Loading means a fetch has been issued and has not settled yet.
	Loading Status = iota
	// Done means the last fetch succeeded.
	Done
	// Error means the last fetch failed.
	Error
)

func (s Status) String() string {
	switch s {
	case Loading:
		return "loading"
	case Done:
		return "done"
	case Error:
		return "error"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Direction is a sort direction understood by the upstream service.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// ParseDirection parses asc/desc, case sensitive. An empty string means Asc.
func ParseDirection(s string) (Direction, error) {
	switch Direction(s) {
	case "", Asc:
		return Asc, nil
	case Desc:
		return Desc, nil
	default:
		return "", fmt.Errorf("invalid sort direction %q (expected asc or desc)", s)
	}
}

// ColumnState is the observable column metadata of one table.
type ColumnState struct {
	Status  Status
	Error   string // empty when the failure carried no message
	Columns Columns
}

// RecordState is the observable page of records of one table.
type RecordState struct {
	Status     Status
	Error      string // empty when the failure carried no message
	Rows       Rows
	TotalCount int
	Grouping   *Groups // nil unless the page was grouped
}

// NewColumnState returns the state of a table whose columns were never fetched.
func NewColumnState() ColumnState {
	return ColumnState{Status: Loading, Columns: Columns{}}
}

// NewRecordState returns the state of a table whose records were never fetched.
func NewRecordState() RecordState {
	return RecordState{Status: Loading, Rows: Rows{}}
}

// Reload returns a Loading state carrying the current columns forward.
func (s ColumnState) Reload() ColumnState {
	return ColumnState{Status: Loading, Columns: s.Columns}
}

// Reload returns a Loading state carrying the current page forward.
func (s RecordState) Reload() RecordState {
	return RecordState{Status: Loading, Rows: s.Rows, TotalCount: s.TotalCount, Grouping: s.Grouping}
}

// Settled returns true once the state left Loading.
func (s ColumnState) Settled() bool {
	return s.Status != Loading
}

// Settled returns true once the state left Loading.
func (s RecordState) Settled() bool {
	return s.Status != Loading
}
