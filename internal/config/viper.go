package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment overrides: monitor.interval is read from
// DESKBRIDGE_MONITOR_INTERVAL.
const EnvPrefix = "DESKBRIDGE"

// Keys understood in deskbridge.toml and the environment.
const (
	KeyCacheTTL         = "prober.cache_ttl"
	KeyProbeTimeout     = "prober.timeout"
	KeyClipboardTimeout = "clipboard.timeout"
	KeyInterval         = "monitor.interval"
	KeyMinInterval      = "monitor.min_interval"
	KeyMaxInterval      = "monitor.max_interval"
	KeyJournalPath      = "journal.path"
	KeyRetention        = "journal.retention"
	KeyPIDFile          = "daemon.pid_file"
	KeyListen           = "web.listen"
	KeyLogFormat        = "log.format"
	KeyLogLevel         = "log.level"
)

// SetDefaults registers every key with its default so that environment
// variables are honoured for keys absent from the config file.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault(KeyCacheTTL, d.Prober.CacheTTL)
	v.SetDefault(KeyProbeTimeout, d.Prober.Timeout)
	v.SetDefault(KeyClipboardTimeout, d.Clipboard.Timeout)
	v.SetDefault(KeyInterval, d.Monitor.Interval)
	v.SetDefault(KeyMinInterval, d.Monitor.MinInterval)
	v.SetDefault(KeyMaxInterval, d.Monitor.MaxInterval)
	v.SetDefault(KeyJournalPath, d.Journal.Path)
	v.SetDefault(KeyRetention, d.Journal.Retention)
	v.SetDefault(KeyPIDFile, d.Daemon.PIDFile)
	v.SetDefault(KeyListen, d.Web.Listen)
	v.SetDefault(KeyLogFormat, d.Log.Format)
	v.SetDefault(KeyLogLevel, d.Log.Level)
}

// Prepare configures the file search and environment lookup on v and reads the
// config file if one exists. configFile, when set, replaces the search.
//
// Precedence (lowest to highest): defaults, config file, DESKBRIDGE_* env vars, flags
func Prepare(v *viper.Viper, configFile string) error {
	SetDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("deskbridge")
		v.SetConfigType("toml")
		v.AddConfigPath("/etc/deskbridge/")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "deskbridge"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return errors.Wrap(err, "config")
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return nil
}

// FromViper builds a validated Config from v.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Prober: ProberConfig{
			CacheTTL: v.GetDuration(KeyCacheTTL),
			Timeout:  v.GetDuration(KeyProbeTimeout),
		},
		Clipboard: ClipboardConfig{
			Timeout: v.GetDuration(KeyClipboardTimeout),
		},
		Monitor: MonitorConfig{
			Interval:    v.GetDuration(KeyInterval),
			MinInterval: v.GetDuration(KeyMinInterval),
			MaxInterval: v.GetDuration(KeyMaxInterval),
		},
		Journal: JournalConfig{
			Path:      v.GetString(KeyJournalPath),
			Retention: v.GetDuration(KeyRetention),
		},
		Daemon: DaemonConfig{
			PIDFile: v.GetString(KeyPIDFile),
		},
		Web: WebConfig{
			Listen: v.GetString(KeyListen),
		},
		Log: LogConfig{
			Format: strings.ToLower(v.GetString(KeyLogFormat)),
			Level:  v.GetString(KeyLogLevel),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return cfg, nil
}

// Load reads configuration without flags, as library callers need it.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	if err := Prepare(v, configFile); err != nil {
		return nil, err
	}
	return FromViper(v)
}
