package rbpconfig

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	cfg := DefaultConfig()
	cfg.Connection.URI = "ipbusudp-2.0://192.168.0.1:50001"
	cfg.AddressTable.Path = "addresstable/top.xml"
	return cfg
}

func TestValidate_ValidConfig(t *testing.T) {
	cfg := validConfig()
	require.NoError(t, Validate(cfg))
}

func TestValidate_MissingURI(t *testing.T) {
	cfg := validConfig()
	cfg.Connection.URI = ""
	require.Error(t, Validate(cfg))
}

func TestValidate_MissingAddressTablePath(t *testing.T) {
	cfg := validConfig()
	cfg.AddressTable.Path = ""
	require.Error(t, Validate(cfg))
}

func TestValidate_InvalidLogLevel(t *testing.T) {
	cfg := validConfig()
	cfg.Logging.Level = "VERBOSE"
	require.Error(t, Validate(cfg))
}

func TestValidate_InvalidLogFormat(t *testing.T) {
	cfg := validConfig()
	cfg.Logging.Format = "xml"
	require.Error(t, Validate(cfg))
}

func TestValidate_InvalidMetricsPort(t *testing.T) {
	cfg := validConfig()
	cfg.Metrics.Port = 70000
	require.Error(t, Validate(cfg))
}

func TestApplyDefaults_FillsZeroValues(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	assert.Equal(t, "INFO", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, "stdout", cfg.Logging.Output)
	assert.Equal(t, 9370, cfg.Metrics.Port)
	assert.Equal(t, time.Second, cfg.Connection.DialTimeout)
	assert.NotZero(t, cfg.Client.BufferWords)
	assert.NotZero(t, cfg.Client.WindowSize)
}

func TestApplyDefaults_PreservesExplicitValues(t *testing.T) {
	cfg := &Config{}
	cfg.Logging.Level = "DEBUG"
	cfg.Connection.DialTimeout = 5 * time.Second

	ApplyDefaults(cfg)

	assert.Equal(t, "DEBUG", cfg.Logging.Level)
	assert.Equal(t, 5*time.Second, cfg.Connection.DialTimeout)
}

func TestDefaultConfig_LeavesRequiredFieldsEmpty(t *testing.T) {
	cfg := DefaultConfig()
	assert.Empty(t, cfg.Connection.URI)
	assert.Empty(t, cfg.AddressTable.Path)
}
