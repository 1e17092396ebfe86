package rbpconfig

import (
	"time"

	"github.com/ast0815/ipbus-software/internal/rbpengine"
	"github.com/ast0815/ipbus-software/internal/rbplog"
	"github.com/ast0815/ipbus-software/internal/rbpreliability"
)

// ApplyDefaults fills any zero-valued field of cfg with its default:
// zero values (0, "", false) are replaced, explicit values are
// preserved.
func ApplyDefaults(cfg *Config) {
	applyLoggingDefaults(&cfg.Logging)
	applyMetricsDefaults(&cfg.Metrics)
	applyConnectionDefaults(&cfg.Connection)
	applyClientDefaults(&cfg.Client)
}

func applyLoggingDefaults(cfg *rbplog.Config) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	if cfg.Format == "" {
		cfg.Format = "text"
	}
	if cfg.Output == "" {
		cfg.Output = "stdout"
	}
}

func applyMetricsDefaults(cfg *MetricsConfig) {
	if cfg.Port == 0 {
		cfg.Port = 9370
	}
	if cfg.Path == "" {
		cfg.Path = "/metrics"
	}
}

func applyConnectionDefaults(cfg *ConnectionConfig) {
	if cfg.DialTimeout == 0 {
		cfg.DialTimeout = time.Second
	}
}

func applyClientDefaults(cfg *ClientConfig) {
	if cfg.BufferWords == 0 {
		cfg.BufferWords = rbpengine.DefaultBufferWords
	}
	if cfg.WindowSize == 0 {
		cfg.WindowSize = rbpreliability.DefaultWindowSize
	}
}

// DefaultConfig returns a Config populated entirely from built-in
// defaults, used when no configuration file is found. Connection.URI
// and AddressTable.Path are left empty: they have no sensible default
// and callers must supply them before use.
func DefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}
