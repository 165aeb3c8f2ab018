// FILE: config.go
package dlog

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/lixenwraith/config"
)

// Config holds all engine configuration values
type Config struct {
	// File sink. Empty log_file runs with no file sink.
	LogFile string `toml:"log_file"`
	LogUID  int64  `toml:"log_uid"`
	LogGID  int64  `toml:"log_gid"`

	// Queue bounds
	MaxNew    int64 `toml:"max_new"`    // Producer backpressure bound
	MaxRecent int64 `toml:"max_recent"` // Recent ring bound

	// Per-sink (log, crash) threshold pairs. Negative disables.
	SyslogLog    int64 `toml:"syslog_log"`
	SyslogCrash  int64 `toml:"syslog_crash"`
	StderrLog    int64 `toml:"stderr_log"`
	StderrCrash  int64 `toml:"stderr_crash"`
	GraylogLog   int64 `toml:"graylog_log"`
	GraylogCrash int64 `toml:"graylog_crash"`

	// Sink details
	StderrPrefix  string `toml:"stderr_prefix"`
	EnableGraylog bool   `toml:"enable_graylog"`
	GraylogHost   string `toml:"graylog_host"`
	GraylogPort   int64  `toml:"graylog_port"`

	// Behavior
	CoarseTimestamps bool `toml:"coarse_timestamps"`
	FlushOnExit      bool `toml:"flush_on_exit"`
}

// defaultConfig is the single source for all configurable default values
var defaultConfig = Config{
	MaxNew:       DefaultMaxNew,
	MaxRecent:    DefaultMaxRecent,
	SyslogLog:    -2,
	SyslogCrash:  -2,
	StderrLog:    1,
	StderrCrash:  -1,
	GraylogLog:   -3,
	GraylogCrash: -3,
	GraylogPort:  12201,
}

// DefaultConfig returns a copy of the default configuration
func DefaultConfig() *Config {
	copiedConfig := defaultConfig
	return &copiedConfig
}

// Clone returns a copy of the configuration
func (c *Config) Clone() *Config {
	copied := *c
	return &copied
}

// Validate checks the configuration for invalid values
func (c *Config) Validate() error {
	if c.MaxNew <= 0 {
		return fmtErrorf("max_new must be positive: %d", c.MaxNew)
	}
	if c.MaxRecent <= 0 {
		return fmtErrorf("max_recent must be positive: %d", c.MaxRecent)
	}
	if c.LogUID < 0 || c.LogGID < 0 {
		return fmtErrorf("log_uid/log_gid cannot be negative: %d/%d", c.LogUID, c.LogGID)
	}
	if c.GraylogPort <= 0 || c.GraylogPort > 65535 {
		return fmtErrorf("graylog_port out of range: %d", c.GraylogPort)
	}
	if c.EnableGraylog && c.GraylogHost == "" {
		return fmtErrorf("enable_graylog requires graylog_host")
	}
	return nil
}

// NewConfigFromFile loads configuration from a TOML file and returns a
// validated Config
func NewConfigFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	// Use lixenwraith/config as a loader
	loader := config.New()

	if err := loader.RegisterStruct("log.", *cfg); err != nil {
		return nil, fmtErrorf("failed to register config struct: %w", err)
	}

	// Load from file (handles file not found gracefully)
	if err := loader.Load(path, nil); err != nil && !errors.Is(err, config.ErrConfigNotFound) {
		return nil, fmtErrorf("failed to load config from %s: %w", path, err)
	}

	if err := extractConfig(loader, "log.", cfg); err != nil {
		return nil, fmtErrorf("failed to extract config values: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// extractConfig extracts values from lixenwraith/config into our Config struct
func extractConfig(loader *config.Config, prefix string, cfg *Config) error {
	v := reflect.ValueOf(cfg).Elem()
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		fieldValue := v.Field(i)

		tomlTag := field.Tag.Get("toml")
		if tomlTag == "" {
			continue
		}

		val, found := loader.Get(prefix + tomlTag)
		if !found {
			continue // Use default value
		}

		switch fieldValue.Kind() {
		case reflect.Int64:
			switch n := val.(type) {
			case int64:
				fieldValue.SetInt(n)
			case int:
				fieldValue.SetInt(int64(n))
			case float64:
				fieldValue.SetInt(int64(n))
			default:
				return fmtErrorf("%s: expected integer, got %T", tomlTag, val)
			}
		case reflect.Bool:
			b, ok := val.(bool)
			if !ok {
				return fmtErrorf("%s: expected bool, got %T", tomlTag, val)
			}
			fieldValue.SetBool(b)
		case reflect.String:
			s, ok := val.(string)
			if !ok {
				return fmtErrorf("%s: expected string, got %T", tomlTag, val)
			}
			fieldValue.SetString(s)
		}
	}

	return nil
}

// ApplyConfig applies a validated configuration to the engine. The
// consumer may be running; every setter takes the appropriate lock.
func (eng *Engine) ApplyConfig(cfg *Config) error {
	if cfg == nil {
		return fmtErrorf("configuration cannot be nil")
	}
	if err := cfg.Validate(); err != nil {
		return fmtErrorf("invalid configuration: %w", err)
	}

	eng.SetMaxNew(int(cfg.MaxNew))
	eng.SetMaxRecent(int(cfg.MaxRecent))
	eng.SetSyslogLevel(int(cfg.SyslogLog), int(cfg.SyslogCrash))
	eng.SetStderrLevel(int(cfg.StderrLog), int(cfg.StderrCrash))
	eng.SetGraylogLevel(int(cfg.GraylogLog), int(cfg.GraylogCrash))
	eng.SetLogStderrPrefix(cfg.StderrPrefix)
	eng.SetCoarseTimestamps(cfg.CoarseTimestamps)

	eng.flushMu.Lock()
	eng.uid = int(cfg.LogUID)
	eng.gid = int(cfg.LogGID)
	eng.flushMu.Unlock()

	eng.SetLogFile(cfg.LogFile)
	eng.ReopenLogFile()

	if cfg.EnableGraylog {
		eng.SetGraylogEndpoint(cfg.GraylogHost, int(cfg.GraylogPort))
		eng.StartGraylog()
	}

	if cfg.FlushOnExit {
		eng.SetFlushOnExit()
	}

	return nil
}

// fmtErrorf wrapper
func fmtErrorf(format string, args ...any) error {
	return fmt.Errorf("dlog: "+format, args...)
}
