// Package data provides configuration data types for the tabsync application.
package data

// Flags represents CLI command-line flags for the tabsync application.
type Flags struct {
	RefreshRate *float32 // Watch refresh rate in seconds
	LogLevel    *string  // Log level (e.g., debug, info, warn, error)
	LogFile     *string  // Path to log file
	Profile     *string  // Connection profile to use
	URL         *string  // Service URL, overrides the profile
	Timeout     *string  // Request timeout, e.g. 10s
	PageSize    *int     // Records per page
}

// Logger represents logging configuration settings.
type Logger struct {
	Level string `yaml:"level"`
	File  string `yaml:"file,omitempty"`
}

// NewFlags creates a new Flags instance with all pointer fields initialized.
// All pointers are allocated but their values are not set.
func NewFlags() *Flags {
	return &Flags{
		RefreshRate: new(float32),
		LogLevel:    new(string),
		LogFile:     new(string),
		Profile:     new(string),
		URL:         new(string),
		Timeout:     new(string),
		PageSize:    new(int),
	}
}
