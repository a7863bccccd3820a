package main

import (
	"log/slog"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/snipnote/deskbridge/internal/config"
	"github.com/snipnote/deskbridge/internal/desktop"
	"github.com/snipnote/deskbridge/internal/journal"
	"github.com/snipnote/deskbridge/internal/logging"
)

// flagKeys maps command-line flags onto configuration keys.
var flagKeys = map[string]string{
	"log-format":        config.KeyLogFormat,
	"log-level":         config.KeyLogLevel,
	"interval":          config.KeyInterval,
	"journal":           config.KeyJournalPath,
	"retention":         config.KeyRetention,
	"pid-file":          config.KeyPIDFile,
	"listen":            config.KeyListen,
	"cache-ttl":         config.KeyCacheTTL,
	"probe-timeout":     config.KeyProbeTimeout,
	"clipboard-timeout": config.KeyClipboardTimeout,
}

// loadConfig reads the config file and environment into v, binds whichever
// of cmd's flags have a configuration key, and returns the validated result.
func loadConfig(cmd *cobra.Command, v *viper.Viper) (*config.Config, error) {
	configFlag, _ := cmd.Flags().GetString("config")
	if err := config.Prepare(v, configFlag); err != nil {
		return nil, err
	}

	for flag, key := range flagKeys {
		f := cmd.Flags().Lookup(flag)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return nil, errors.Wrapf(err, "binding --%s", flag)
		}
	}

	return config.FromViper(v)
}

// addConfigFlag adds the --config flag to a command.
func addConfigFlag(cmd *cobra.Command) {
	cmd.Flags().String("config", "", "path to config file (overrides auto-discovery)")
}

// addLoggingFlags adds the standard logging flags to a command.
func addLoggingFlags(cmd *cobra.Command) {
	cmd.Flags().String("log-format", "auto", "log format: auto|text|json")
	cmd.Flags().String("log-level", "info", "log level: debug|info|warn|error")
}

// addProbeFlags adds the subprocess tuning flags shared by query commands.
func addProbeFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.Duration("cache-ttl", config.Default().Prober.CacheTTL, "reuse a window probe result for this long (0 disables)")
	f.Duration("probe-timeout", 0, "window probe deadline (0 uses the platform default)")
	f.Duration("clipboard-timeout", config.Default().Clipboard.Timeout, "deadline for each clipboard tool")
}

func setupLogging(cfg *config.Config) *slog.Logger {
	return logging.Setup(logging.ParseFormat(cfg.Log.Format), logging.ParseLevel(cfg.Log.Level, slog.LevelInfo))
}

func newService(cfg *config.Config, log *slog.Logger) *desktop.Service {
	return desktop.New(desktop.Options{
		CacheTTL:         cfg.Prober.CacheTTL,
		ProbeTimeout:     cfg.Prober.Timeout,
		ClipboardTimeout: cfg.Clipboard.Timeout,
		Logger:           log,
	})
}

func openJournal(cfg *config.Config) (*journal.DB, *journal.Repository, error) {
	db, err := journal.Connect(cfg.Journal.Path)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to connect to journal")
	}
	if err := db.Initialize(); err != nil {
		db.Close()
		return nil, nil, errors.Wrap(err, "failed to initialize journal")
	}
	return db, journal.NewRepository(db), nil
}
