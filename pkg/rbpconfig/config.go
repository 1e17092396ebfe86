// Package rbpconfig loads client configuration from explicit overrides,
// environment variables, a YAML file, and built-in defaults, using a
// layered viper + mapstructure + validator/v10 approach.
package rbpconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ast0815/ipbus-software/internal/rbplog"
)

// Config is the complete configuration for one rbpclient.Client plus
// its process-wide ambient concerns (logging, metrics). Dynamic,
// per-call parameters (which register to read, which path to resolve)
// are never part of Config; those are request-scoped, not process-scoped.
type Config struct {
	// Logging controls the process-wide internal/rbplog handler.
	Logging rbplog.Config `mapstructure:"logging" yaml:"logging"`

	// Metrics holds the Prometheus metrics endpoint settings; nothing in
	// this module starts an HTTP server from them.
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`

	// Connection covers transport dialing and protocol-version selection.
	Connection ConnectionConfig `mapstructure:"connection" yaml:"connection"`

	// Client covers the TransactionEngine/reliability-Window tuning
	// that rbpclient.Option values would otherwise have to set in code.
	Client ClientConfig `mapstructure:"client" yaml:"client"`

	// AddressTable controls addrtree.Policy and the XML loader root.
	AddressTable AddressTableConfig `mapstructure:"address_table" yaml:"address_table"`
}

// MetricsConfig holds the Prometheus metrics HTTP server settings. It
// is loaded, defaulted and validated; no code in this module serves
// metrics from it.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Port    int    `mapstructure:"port" validate:"omitempty,min=1,max=65535" yaml:"port"`
	Path    string `mapstructure:"path" yaml:"path"`
}

// ConnectionConfig names the target endpoint; the protocol version is
// taken from the URI's scheme, and there is no separate version field.
type ConnectionConfig struct {
	// URI is passed straight to clientfactory.Registry.Dial, e.g.
	// "ipbusudp-2.0://192.168.0.1:50001".
	URI string `mapstructure:"uri" validate:"required" yaml:"uri"`

	// DialTimeout bounds both the initial dial and each dispatch round trip.
	DialTimeout time.Duration `mapstructure:"dial_timeout" validate:"required,gt=0" yaml:"dial_timeout"`
}

// ClientConfig mirrors the rbpclient.Option surface so it can be set
// from a file instead of call-site code.
type ClientConfig struct {
	BufferWords           int  `mapstructure:"buffer_words" validate:"omitempty,gt=0" yaml:"buffer_words"`
	WindowSize            int  `mapstructure:"window_size" validate:"omitempty,gt=0" yaml:"window_size"`
	StrictWriteReplyCount bool `mapstructure:"strict_write_reply_count" yaml:"strict_write_reply_count"`
}

// AddressTableConfig locates the address map and controls how the
// AddressTree builder treats overlapping address ranges.
type AddressTableConfig struct {
	// Path is the root XML address-table file passed to addrtree.Builder.
	Path string `mapstructure:"path" validate:"required" yaml:"path"`

	// ThrowOnOverlap makes AddressTree construction fail on overlap
	// instead of only logging a warning (addrtree.Policy.ThrowOnOverlap).
	ThrowOnOverlap bool `mapstructure:"throw_on_overlap" yaml:"throw_on_overlap"`
}

// Load loads configuration from file, environment, and defaults. With
// no file, environment variables and overrides are still applied on
// top of the built-in defaults, and the result is validated the same
// way.
//
// overrides, if given, are applied above all of that (e.g. rbpctl's
// --uri/--address-table flags) via viper keys such as "connection.uri"
// or "address_table.path" — the same dotted names the YAML file and
// RBPHAL_* environment variables use.
//
// Precedence (highest to lowest): overrides, environment variables
// (RBPHAL_*), configuration file, default values.
func Load(configPath string, overrides ...map[string]any) (*Config, error) {
	v := viper.New()
	setupViper(v, configPath)

	if _, err := readConfigFile(v); err != nil {
		return nil, err
	}
	for _, m := range overrides {
		for key, val := range m {
			v.Set(key, val)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(durationDecodeHook())); err != nil {
		return nil, fmt.Errorf("rbpconfig: unmarshal: %w", err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("rbpconfig: validation failed: %w", err)
	}
	return &cfg, nil
}

// SaveConfig writes cfg to path in YAML form, creating parent
// directories as needed.
func SaveConfig(cfg *Config, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("rbpconfig: create directory: %w", err)
		}
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("rbpconfig: marshal: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("rbpconfig: write: %w", err)
	}
	return nil
}

// setupViper wires environment variable support (RBPHAL_ prefix, "."
// becomes "_") and config file discovery.
func setupViper(v *viper.Viper, configPath string) {
	v.SetEnvPrefix("RBPHAL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		return
	}
	v.AddConfigPath(getConfigDir())
	v.SetConfigName("config")
	v.SetConfigType("yaml")
}

func readConfigFile(v *viper.Viper) (bool, error) {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return false, nil
		}
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("rbpconfig: read config file: %w", err)
	}
	return true, nil
}

// durationDecodeHook lets config files spell durations as "30s", "5m",
// etc. instead of raw nanosecond integers.
func durationDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(time.Duration(0)) {
			return data, nil
		}
		switch v := data.(type) {
		case string:
			return time.ParseDuration(v)
		case int:
			return time.Duration(v), nil
		case int64:
			return time.Duration(v), nil
		case float64:
			return time.Duration(v), nil
		default:
			return data, nil
		}
	}
}

// getConfigDir is an XDG-aware lookup: $XDG_CONFIG_HOME if set, else
// ~/.config, else the current directory.
func getConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "rbphal")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "rbphal")
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() string {
	return filepath.Join(getConfigDir(), "config.yaml")
}

// DefaultConfigExists reports whether a config file exists at the default location.
func DefaultConfigExists() bool {
	_, err := os.Stat(GetDefaultConfigPath())
	return err == nil
}

var validate = validator.New()

// Validate checks cfg's `validate` struct tags and a handful of
// cross-field rules the tags can't express.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return err
	}
	if cfg.Logging.Level != "" {
		switch strings.ToUpper(cfg.Logging.Level) {
		case "DEBUG", "INFO", "WARN", "ERROR":
		default:
			return fmt.Errorf("rbpconfig: logging.level %q is not one of debug|info|warn|error", cfg.Logging.Level)
		}
	}
	if cfg.Logging.Format != "" && cfg.Logging.Format != "text" && cfg.Logging.Format != "json" {
		return fmt.Errorf("rbpconfig: logging.format %q is not one of text|json", cfg.Logging.Format)
	}
	return nil
}
