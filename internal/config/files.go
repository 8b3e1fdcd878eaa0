package config

import (
	"os"
	"path/filepath"
)

const AppName = "tabsync"

var (
	// AppConfigDir is ~/.config/tabsync
	AppConfigDir string

	// AppStateDir is ~/.local/state/tabsync
	AppStateDir string

	// AppConfigFile is ~/.config/tabsync/tabsync.yaml
	AppConfigFile string

	// AppAliasesFile is ~/.config/tabsync/aliases.yaml
	AppAliasesFile string

	// AppProfilesFile is ~/.config/tabsync/profiles.ini
	AppProfilesFile string

	// AppLogFile is ~/.local/state/tabsync/tabsync.log
	AppLogFile string
)

// InitLocs initializes all application paths.
// It respects XDG environment variables if set.
func InitLocs() error {
	home, err := os.UserHomeDir()
	if err != nil {
		return err
	}

	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		configHome = filepath.Join(home, ".config")
	}

	stateHome := os.Getenv("XDG_STATE_HOME")
	if stateHome == "" {
		stateHome = filepath.Join(home, ".local", "state")
	}

	AppConfigDir = filepath.Join(configHome, AppName)
	AppStateDir = filepath.Join(stateHome, AppName)

	AppConfigFile = filepath.Join(AppConfigDir, AppName+".yaml")
	AppAliasesFile = filepath.Join(AppConfigDir, "aliases.yaml")
	AppProfilesFile = filepath.Join(AppConfigDir, "profiles.ini")
	AppLogFile = filepath.Join(AppStateDir, AppName+".log")

	for _, dir := range []string{AppConfigDir, AppStateDir} {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return err
		}
	}

	return nil
}

// InitLogLoc ensures the log directory exists
func InitLogLoc(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o700)
}
