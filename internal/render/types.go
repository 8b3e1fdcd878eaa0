package render

import "github.com/tabsync/tabsync/internal/model1"

const (
	// Display values
	MissingValue = "<none>"
	NAValue      = model1.NAValue
	UnknownValue = "<unknown>"
	ZeroValue    = "0"
	Blank        = ""

	// DefaultMaxWidth bounds a rendered cell.
	DefaultMaxWidth = 60
)
