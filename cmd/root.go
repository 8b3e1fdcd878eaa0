package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tabsync/tabsync/internal/config"
	"github.com/tabsync/tabsync/internal/config/data"
	"github.com/tabsync/tabsync/internal/model"
	"github.com/tabsync/tabsync/internal/remote"
)

const (
	appName    = "tabsync"
	appVersion = "0.1.0"
)

var (
	tsFlags *data.Flags
	rootCmd = &cobra.Command{
		Use:           appName,
		Short:         "Browse upstream database tables from the terminal",
		Long:          `tabsync pages and sorts the records of tables served by a remote table service, keeping a local cache in sync with it.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", appName, appVersion)
		},
	}
)

func init() {
	tsFlags = config.NewFlags()
	initTabsyncFlags()
	rootCmd.AddCommand(
		versionCmd,
		newRecordsCmd(),
		newColumnsCmd(),
		newWatchCmd(),
		newProfilesCmd(),
		newAliasesCmd(),
	)
}

func initTabsyncFlags() {
	pf := rootCmd.PersistentFlags()
	pf.Float32VarP(tsFlags.RefreshRate, "refresh", "r", config.DefaultRefreshRate, "Watch refresh rate in seconds")
	pf.StringVarP(tsFlags.LogLevel, "logLevel", "l", "", "Log level (debug, info, warn, error)")
	pf.StringVar(tsFlags.LogFile, "logFile", "", "Log file path")
	pf.StringVar(tsFlags.Profile, "profile", "", "Connection profile to use")
	pf.StringVar(tsFlags.URL, "url", "", "Table service URL, overrides the profile")
	pf.StringVar(tsFlags.Timeout, "timeout", "", "Request timeout (e.g. 10s)")
	pf.IntVar(tsFlags.PageSize, "page-size", 0, "Records per page")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}

// session is everything a table command needs.
type session struct {
	cfg     *config.Config
	aliases *config.Aliases
	cache   *model.Cache
	log     *slog.Logger
	closer  io.Closer
}

func (s *session) Close() {
	s.cache.Close()
	s.cache.Wait()
	_ = s.closer.Close()
}

// loadConfig initializes locations, then loads the config file and profiles
// and resolves them against the command line.
func loadConfig() (*config.Config, *remote.ProfileManager, error) {
	if err := config.InitLocs(); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize locations: %w", err)
	}

	settings, err := remote.NewProfileManager(config.AppProfilesFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load profiles: %w", err)
	}

	cfg := config.NewConfig(settings)
	if err := cfg.Load(config.AppConfigFile, false); err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	return cfg, settings, nil
}

// newSession loads the configuration and connects to the table service. It
// fails when the service does not answer.
func newSession(ctx context.Context) (*session, error) {
	cfg, settings, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if err := cfg.Refine(tsFlags, settings); err != nil {
		return nil, fmt.Errorf("failed to refine configuration: %w", err)
	}

	logger, closer, err := config.NewLogger(cfg.Tabsync.Logger.Level, cfg.Tabsync.Logger.File)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)

	aliases := config.NewAliases()
	if err := aliases.Load(); err != nil {
		_ = closer.Close()
		return nil, fmt.Errorf("failed to load aliases: %w", err)
	}

	client, err := remote.InitConnection(ctx, cfg.ClientConfig())
	if err != nil {
		_ = closer.Close()
		return nil, fmt.Errorf("failed to connect: %w", err)
	}
	cfg.SetConnection(client)

	if p := cfg.Tabsync.ActiveProfile(); p != nil {
		logger.Debug("Using profile", "profile", p.Name)
	}
	logger.Debug("Connecting", "url", client.Config().BaseURL, "timeout", client.Config().Timeout)

	cache := model.NewCache(client,
		model.WithLogger(logger),
		model.WithDefaults(cfg.TableDefaults()),
	)

	return &session{
		cfg:     cfg,
		aliases: aliases,
		cache:   cache,
		log:     logger,
		closer:  closer,
	}, nil
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
}
