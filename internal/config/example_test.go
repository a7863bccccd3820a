package config_test

import (
	"fmt"
	"time"

	"github.com/snipnote/deskbridge/internal/config"
)

// Example of creating a default configuration
func ExampleDefault() {
	cfg := config.Default()
	fmt.Println("Monitor Interval:", cfg.Monitor.Interval)
	fmt.Println("Cache TTL:", cfg.Prober.CacheTTL)
	// Output:
	// Monitor Interval: 1s
	// Cache TTL: 5s
}

// Example of setting the monitor interval with validation
func ExampleConfig_SetMonitorInterval() {
	cfg := config.Default()

	// Valid interval
	if err := cfg.SetMonitorInterval(500 * time.Millisecond); err != nil {
		fmt.Println("Error:", err)
	} else {
		fmt.Println("Monitor interval set to:", cfg.Monitor.Interval)
	}

	// Invalid interval (too low)
	if err := cfg.SetMonitorInterval(10 * time.Millisecond); err != nil {
		fmt.Println("Error:", err)
	}

	// Output:
	// Monitor interval set to: 500ms
	// Error: monitor interval cannot be less than 100ms
}

// Example of validating configuration
func ExampleConfig_Validate() {
	cfg := config.Default()

	if err := cfg.Validate(); err != nil {
		fmt.Println("Invalid config:", err)
	} else {
		fmt.Println("Configuration is valid")
	}

	cfg.Log.Format = "xml"
	fmt.Println(cfg.Validate())

	// Output:
	// Configuration is valid
	// log format must be auto, text or json, got "xml"
}
