package config

import (
	"fmt"
	"time"

	"github.com/snipnote/deskbridge/internal/daemon"
)

// Config holds all application configuration
type Config struct {
	// Active window prober configuration
	Prober ProberConfig

	// Clipboard tool configuration
	Clipboard ClipboardConfig

	// Clipboard change monitor configuration
	Monitor MonitorConfig

	// Clip journal configuration
	Journal JournalConfig

	// Daemon configuration
	Daemon DaemonConfig

	// Local query API configuration
	Web WebConfig

	// Log configuration
	Log LogConfig
}

// ProberConfig holds focused window probing configuration
type ProberConfig struct {
	CacheTTL time.Duration // How long a probe result is reused
	Timeout  time.Duration // Probe deadline; zero uses the platform default
}

// ClipboardConfig holds clipboard tool configuration
type ClipboardConfig struct {
	Timeout time.Duration // Deadline for each clipboard tool
}

// MonitorConfig holds clipboard polling configuration
type MonitorConfig struct {
	Interval    time.Duration // How often to read the clipboard
	MinInterval time.Duration // Minimum allowed interval
	MaxInterval time.Duration // Maximum allowed interval
}

// JournalConfig holds clip journal configuration
type JournalConfig struct {
	Path      string        // Path to SQLite database file
	Retention time.Duration // Clips older than this are pruned; zero keeps everything
}

// DaemonConfig holds daemon process configuration
type DaemonConfig struct {
	PIDFile string // Path to PID file of the running watcher
}

// WebConfig holds the watcher's read-only HTTP API configuration
type WebConfig struct {
	Listen string // host:port; empty disables the API
}

// LogConfig holds logging configuration
type LogConfig struct {
	Format string // auto, text or json
	Level  string // debug, info, warn or error
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		Prober: ProberConfig{
			CacheTTL: 5 * time.Second,
			Timeout:  0,
		},
		Clipboard: ClipboardConfig{
			Timeout: 5 * time.Second,
		},
		Monitor: MonitorConfig{
			Interval:    time.Second,
			MinInterval: 100 * time.Millisecond,
			MaxInterval: time.Minute,
		},
		Journal: JournalConfig{
			Path:      "", // Empty means use default ~/.config/deskbridge/journal.db
			Retention: 30 * 24 * time.Hour,
		},
		Daemon: DaemonConfig{
			PIDFile: daemon.DefaultPIDFile(),
		},
		Web: WebConfig{
			Listen: "",
		},
		Log: LogConfig{
			Format: "auto",
			Level:  "info",
		},
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Prober.CacheTTL < 0 {
		return fmt.Errorf("cache TTL cannot be negative")
	}

	if c.Prober.Timeout < 0 {
		return fmt.Errorf("probe timeout cannot be negative")
	}

	if c.Clipboard.Timeout <= 0 {
		return fmt.Errorf("clipboard timeout must be positive")
	}

	// Validate monitor intervals
	if c.Monitor.MinInterval <= 0 || c.Monitor.MinInterval > c.Monitor.MaxInterval {
		return fmt.Errorf("invalid monitor interval bounds %v..%v",
			c.Monitor.MinInterval, c.Monitor.MaxInterval)
	}

	if c.Monitor.Interval < c.Monitor.MinInterval {
		return fmt.Errorf("monitor interval (%v) cannot be less than minimum (%v)",
			c.Monitor.Interval, c.Monitor.MinInterval)
	}

	if c.Monitor.Interval > c.Monitor.MaxInterval {
		return fmt.Errorf("monitor interval (%v) cannot be greater than maximum (%v)",
			c.Monitor.Interval, c.Monitor.MaxInterval)
	}

	if c.Journal.Retention < 0 {
		return fmt.Errorf("journal retention cannot be negative")
	}

	// Validate daemon config
	if c.Daemon.PIDFile == "" {
		return fmt.Errorf("PID file path cannot be empty")
	}

	switch c.Log.Format {
	case "auto", "text", "json":
	default:
		return fmt.Errorf("log format must be auto, text or json, got %q", c.Log.Format)
	}

	return nil
}

// SetMonitorInterval sets the poll interval with validation
func (c *Config) SetMonitorInterval(interval time.Duration) error {
	if interval < c.Monitor.MinInterval {
		return fmt.Errorf("monitor interval cannot be less than %v", c.Monitor.MinInterval)
	}
	if interval > c.Monitor.MaxInterval {
		return fmt.Errorf("monitor interval cannot be greater than %v", c.Monitor.MaxInterval)
	}
	c.Monitor.Interval = interval
	return nil
}

// SetCacheTTL sets the probe cache lifetime with validation
func (c *Config) SetCacheTTL(ttl time.Duration) error {
	if ttl < 0 {
		return fmt.Errorf("cache TTL cannot be negative")
	}
	c.Prober.CacheTTL = ttl
	return nil
}

// String returns a string representation of the config
func (c *Config) String() string {
	probeTimeout := "platform default"
	if c.Prober.Timeout > 0 {
		probeTimeout = c.Prober.Timeout.String()
	}
	journalPath := c.Journal.Path
	if journalPath == "" {
		journalPath = "(default)"
	}
	listen := c.Web.Listen
	if listen == "" {
		listen = "(disabled)"
	}

	return fmt.Sprintf(`Configuration:
  Prober:
    Cache TTL: %v
    Timeout: %s
  Clipboard:
    Timeout: %v
  Monitor:
    Interval: %v
    Min Interval: %v
    Max Interval: %v
  Journal:
    Path: %s
    Retention: %v
  Daemon:
    PID File: %s
  Web:
    Listen: %s
  Log:
    Format: %s
    Level: %s`,
		c.Prober.CacheTTL,
		probeTimeout,
		c.Clipboard.Timeout,
		c.Monitor.Interval,
		c.Monitor.MinInterval,
		c.Monitor.MaxInterval,
		journalPath,
		c.Journal.Retention,
		c.Daemon.PIDFile,
		listen,
		c.Log.Format,
		c.Log.Level,
	)
}
