// Package config provides configuration management for the SVGA export agent.
// Configuration is loaded from environment variables with sensible defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

const (
	// Default values
	DefaultPort     = 8686
	DefaultLogLevel = "info"
	DefaultDataDir  = ".svga-agent"

	// Environment variable names
	EnvPort     = "SVGA_PORT"
	EnvLogLevel = "SVGA_LOG_LEVEL"
	EnvDataDir  = "SVGA_DATA_DIR"
	EnvSettleMs = "SVGA_SETTLE_MS"
	EnvHeadless = "SVGA_HEADLESS"

	// Database filename
	DBFilename = "svga-agent.db"

	// Capture defaults. The settle delay gives the renderer time to finish
	// drawing a sought frame before its pixels are sampled.
	DefaultSettleMs = 20

	// Upload limit for animation and batch-compression requests.
	DefaultMaxUploadBytes = 256 * 1024 * 1024 // 256MB
)

// Config defines the application configuration interface
type Config interface {
	Port() int
	LogLevel() string
	DataDir() string
	DBPath() string
	ArtifactsDir() string
	SettleDelay() time.Duration
	MaxUploadBytes() int64
	Headless() bool
}

// EnvConfig reads configuration from environment variables
type EnvConfig struct {
	port     int
	logLevel string
	dataDir  string
	settleMs int
	headless bool
}

// New creates a new EnvConfig with defaults and environment variable overrides
func New() (*EnvConfig, error) {
	cfg := &EnvConfig{
		port:     DefaultPort,
		logLevel: DefaultLogLevel,
		dataDir:  defaultDataDir(),
		settleMs: DefaultSettleMs,
	}

	// Override port from environment
	if p := os.Getenv(EnvPort); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvPort, err)
		}
		if port < 1 || port > 65535 {
			return nil, fmt.Errorf("invalid %s: port must be between 1 and 65535", EnvPort)
		}
		cfg.port = port
	}

	// Override log level from environment
	if ll := os.Getenv(EnvLogLevel); ll != "" {
		cfg.logLevel = ll
	}

	// Override data directory from environment
	if dd := os.Getenv(EnvDataDir); dd != "" {
		cfg.dataDir = dd
	}

	// Override the render settle delay from environment
	if sm := os.Getenv(EnvSettleMs); sm != "" {
		ms, err := strconv.Atoi(sm)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvSettleMs, err)
		}
		if ms < 0 {
			return nil, fmt.Errorf("invalid %s: delay must not be negative", EnvSettleMs)
		}
		cfg.settleMs = ms
	}

	if h := os.Getenv(EnvHeadless); h == "1" || h == "true" {
		cfg.headless = true
	}

	return cfg, nil
}

// Port returns the HTTP server port
func (c *EnvConfig) Port() int {
	return c.port
}

// LogLevel returns the log level (debug, info, warn, error)
func (c *EnvConfig) LogLevel() string {
	return c.logLevel
}

// DataDir returns the data directory path
func (c *EnvConfig) DataDir() string {
	return c.dataDir
}

// DBPath returns the full path to the SQLite database file
func (c *EnvConfig) DBPath() string {
	return filepath.Join(c.dataDir, DBFilename)
}

// ArtifactsDir returns the directory produced artifacts are written to
func (c *EnvConfig) ArtifactsDir() string {
	return filepath.Join(c.dataDir, "artifacts")
}

// SettleDelay returns the per-frame render settle delay
func (c *EnvConfig) SettleDelay() time.Duration {
	return time.Duration(c.settleMs) * time.Millisecond
}

// MaxUploadBytes returns the request body size limit for uploads
func (c *EnvConfig) MaxUploadBytes() int64 {
	return DefaultMaxUploadBytes
}

// Headless reports whether the system tray should be disabled
func (c *EnvConfig) Headless() bool {
	return c.headless
}

// defaultDataDir returns the default data directory path
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home is not available
		return DefaultDataDir
	}
	return filepath.Join(home, DefaultDataDir)
}

// Version information (set at build time via ldflags)
var (
	Version   = "0.1.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)
