package config

import (
	"fmt"
	"sync"
	"time"

	"github.com/tabsync/tabsync/internal/config/data"
	"github.com/tabsync/tabsync/internal/model1"
	"github.com/tabsync/tabsync/internal/remote"
)

// DefaultAPITimeout bounds a request when neither flag, profile nor config sets one.
const DefaultAPITimeout = remote.DefaultTimeout

// Tabsync represents the tabsync global configuration.
type Tabsync struct {
	RefreshRate    float32     `yaml:"refreshRate"`
	APITimeout     string      `yaml:"apiTimeout"`
	DefaultProfile string      `yaml:"defaultProfile"`
	PageSize       int         `yaml:"pageSize"`
	Logger         data.Logger `yaml:"logger"`

	// Internal state (not serialized)
	activeProfile *remote.Profile
	mx            sync.RWMutex
}

// NewTabsync creates a Tabsync with default settings.
func NewTabsync() *Tabsync {
	return &Tabsync{
		RefreshRate: DefaultRefreshRate,
		APITimeout:  DefaultAPITimeout.String(),
		PageSize:    model1.DefaultPageSize,
		Logger:      data.Logger{Level: DefaultLogLevel},
	}
}

// Validate ensures Tabsync has valid settings.
func (t *Tabsync) Validate() {
	t.mx.Lock()
	defer t.mx.Unlock()

	if t.RefreshRate <= 0 {
		t.RefreshRate = DefaultRefreshRate
	}
	if t.APITimeout == "" {
		t.APITimeout = DefaultAPITimeout.String()
	}
	if t.PageSize <= 0 {
		t.PageSize = model1.DefaultPageSize
	}
	if t.PageSize > model1.MaxPageSize {
		t.PageSize = model1.MaxPageSize
	}
	if t.Logger.Level == "" {
		t.Logger.Level = DefaultLogLevel
	}
}

// ActiveProfile returns the activated connection profile, if any.
func (t *Tabsync) ActiveProfile() *remote.Profile {
	t.mx.RLock()
	defer t.mx.RUnlock()
	return t.activeProfile
}

// ActivateProfile records the profile the connection settings come from.
func (t *Tabsync) ActivateProfile(p *remote.Profile) {
	t.mx.Lock()
	defer t.mx.Unlock()

	t.activeProfile = p
}

// Override applies CLI flag overrides to the configuration. Connection flags
// are resolved by Config.Refine since profiles sit between them and the file.
func (t *Tabsync) Override(flags *data.Flags) {
	if flags == nil {
		return
	}

	t.mx.Lock()
	defer t.mx.Unlock()

	if flags.RefreshRate != nil && *flags.RefreshRate > 0 {
		t.RefreshRate = *flags.RefreshRate
	}
	if IsStringSet(flags.LogLevel) {
		t.Logger.Level = *flags.LogLevel
	}
	if IsStringSet(flags.LogFile) {
		t.Logger.File = *flags.LogFile
	}
	if IsStringSet(flags.Profile) {
		t.DefaultProfile = *flags.Profile
	}
}

// GetAPITimeout returns the parsed API timeout duration.
func (t *Tabsync) GetAPITimeout() (time.Duration, error) {
	t.mx.RLock()
	timeoutStr := t.APITimeout
	t.mx.RUnlock()

	timeout, err := time.ParseDuration(timeoutStr)
	if err != nil {
		return 0, fmt.Errorf("invalid API timeout %q: %w", timeoutStr, err)
	}

	return timeout, nil
}

// GetRefreshRate returns the watch interval.
func (t *Tabsync) GetRefreshRate() time.Duration {
	t.mx.RLock()
	defer t.mx.RUnlock()

	return time.Duration(float64(t.RefreshRate) * float64(time.Second))
}
