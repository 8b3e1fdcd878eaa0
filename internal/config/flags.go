package config

import (
	"github.com/tabsync/tabsync/internal/config/data"
)

// DefaultRefreshRate is the default watch interval in seconds.
const DefaultRefreshRate = 2.0

// DefaultLogLevel is the default logging level.
const DefaultLogLevel = "info"

// NewFlags creates a new Flags instance with default values set.
func NewFlags() *data.Flags {
	refreshRate := float32(DefaultRefreshRate)
	logLevel := DefaultLogLevel
	logFile := ""
	profile := ""
	url := ""
	timeout := ""
	pageSize := 0

	return &data.Flags{
		RefreshRate: &refreshRate,
		LogLevel:    &logLevel,
		LogFile:     &logFile,
		Profile:     &profile,
		URL:         &url,
		Timeout:     &timeout,
		PageSize:    &pageSize,
	}
}

// IsStringSet returns true if a string pointer is non-nil and non-empty.
func IsStringSet(s *string) bool {
	return s != nil && *s != ""
}

// IsIntSet returns true if an int pointer is non-nil and positive.
func IsIntSet(n *int) bool {
	return n != nil && *n > 0
}
