package config

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/tabsync/tabsync/internal/config/data"
	"github.com/tabsync/tabsync/internal/model1"
	"github.com/tabsync/tabsync/internal/remote"
)

// ErrNoURL is returned when neither the command line nor a profile names the service.
var ErrNoURL = errors.New("no service URL: pass --url or configure a profile")

// Config is the root configuration for the application.
type Config struct {
	Tabsync  *Tabsync `yaml:"tabsync"`
	conn     remote.Connection
	settings remote.ProfileSettings
	client   *remote.ClientConfig
	defaults model1.Options
	mx       sync.RWMutex
}

// NewConfig creates a new Config with the given profile settings.
func NewConfig(settings remote.ProfileSettings) *Config {
	return &Config{
		Tabsync:  NewTabsync(),
		settings: settings,
		defaults: model1.DefaultOptions(),
	}
}

// Load loads the configuration from the given path.
// If the file doesn't exist, the current config is kept unless force is set.
func (c *Config) Load(path string, force bool) error {
	c.mx.Lock()
	defer c.mx.Unlock()

	err := data.ReadYAML(path, c)
	if errors.Is(err, data.ErrNoFile) && !force {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load config from %s: %w", path, err)
	}
	if c.Tabsync == nil {
		c.Tabsync = NewTabsync()
	}
	c.Tabsync.Validate()

	return nil
}

// Save saves the configuration to the given path.
// If force is false, only saves if the file already exists.
func (c *Config) Save(path string, force bool) error {
	c.mx.RLock()
	defer c.mx.RUnlock()

	if path == "" {
		return fmt.Errorf("no config file path configured")
	}
	if _, err := os.Stat(path); err != nil && !force {
		return nil
	}

	if err := data.WriteYAML(path, c); err != nil {
		return fmt.Errorf("failed to save config to %s: %w", path, err)
	}

	return nil
}

// Refine applies CLI flags and profile settings to determine the final
// connection and table defaults. This implements the precedence:
//   - Profile: CLI --profile > config defaultProfile > TABSYNC_PROFILE > default
//   - URL: CLI --url > profile
//   - Timeout, page size: CLI > profile > config file > built-in default
func (c *Config) Refine(flags *data.Flags, settings remote.ProfileSettings) error {
	c.mx.Lock()
	defer c.mx.Unlock()

	if c.Tabsync == nil {
		return fmt.Errorf("config.Tabsync is nil")
	}
	c.settings = settings
	c.Tabsync.Override(flags)
	c.Tabsync.Validate()

	profile, err := c.resolveProfile(flags)
	if err != nil {
		return err
	}
	c.Tabsync.ActivateProfile(profile)

	client := remote.ClientConfig{}
	if profile != nil {
		client = *profile.ClientConfig()
	}
	if flags != nil && IsStringSet(flags.URL) {
		client.BaseURL = *flags.URL
	}
	if client.BaseURL == "" {
		return ErrNoURL
	}

	switch {
	case flags != nil && IsStringSet(flags.Timeout):
		d, err := time.ParseDuration(*flags.Timeout)
		if err != nil {
			return fmt.Errorf("invalid timeout %q: %w", *flags.Timeout, err)
		}
		client.Timeout = d
	case client.Timeout > 0:
	default:
		d, err := c.Tabsync.GetAPITimeout()
		if err != nil {
			return err
		}
		client.Timeout = d
	}
	c.client = &client

	var o model1.Options
	switch {
	case flags != nil && IsIntSet(flags.PageSize):
		o.PageSize = *flags.PageSize
	case profile != nil && profile.PageSize > 0:
		o.PageSize = profile.PageSize
	default:
		o.PageSize = c.Tabsync.PageSize
	}
	c.defaults = o.WithDefaults(model1.DefaultOptions())

	return nil
}

// resolveProfile returns the profile to connect with. A missing profile is an
// error only when it was asked for explicitly.
func (c *Config) resolveProfile(flags *data.Flags) (*remote.Profile, error) {
	if c.settings == nil {
		return nil, nil
	}

	name := c.Tabsync.DefaultProfile
	explicit := name != ""
	if !explicit {
		var err error
		if name, err = c.settings.CurrentProfileName(); err != nil {
			return nil, nil
		}
	}

	p, err := c.settings.GetProfile(name)
	if err != nil {
		if explicit && (flags == nil || !IsStringSet(flags.URL)) {
			return nil, fmt.Errorf("profile %q not found: %w", name, err)
		}
		return nil, nil
	}

	return p, nil
}

// ClientConfig returns the resolved connection settings.
func (c *Config) ClientConfig() *remote.ClientConfig {
	c.mx.RLock()
	defer c.mx.RUnlock()

	if c.client == nil {
		return nil
	}
	cp := *c.client
	return &cp
}

// TableDefaults returns the options tables are opened with.
func (c *Config) TableDefaults() model1.Options {
	c.mx.RLock()
	defer c.mx.RUnlock()
	return c.defaults.Clone()
}

// Connection returns the service connection.
func (c *Config) Connection() remote.Connection {
	c.mx.RLock()
	defer c.mx.RUnlock()
	return c.conn
}

// SetConnection sets the service connection.
func (c *Config) SetConnection(conn remote.Connection) {
	c.mx.Lock()
	defer c.mx.Unlock()
	c.conn = conn
}

// Settings returns the profile settings.
func (c *Config) Settings() remote.ProfileSettings {
	c.mx.RLock()
	defer c.mx.RUnlock()
	return c.settings
}
