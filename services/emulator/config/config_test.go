package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv pins every variable to the empty string so tests see the built-in
// defaults regardless of what the surrounding environment carries
func clearEnv(t *testing.T) {
	keys := []string{
		envServerCount, envServerIDPattern, envSeed, envProfileFile,
		envAPIListenAddress, envAPIUsername, envAPIPassword,
		envSNMPListenAddress, envSNMPReadCommunity, envSNMPWriteCommunity,
		envSNMPV3User, envSNMPV3AuthKey, envSNMPV3PrivKey,
		envExportEnabled, envExportEndpoint, envExportAPIKey, envExportNamespace,
		envExportInterval, envExportBatchSize, envExportTimeout,
	}
	for _, key := range keys {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	expected := Config{
		Fleet: FleetConfig{
			ServerCount: 10,
			IDPattern:   "DELL-SRV-%03d",
			Seed:        0,
			ProfileFile: "",
		},
		API: APIConfig{
			ListenAddress: ":5000",
			Username:      "root",
			Password:      "calvin",
		},
		SNMP: SNMPConfig{
			ListenAddress:  ":1161",
			ReadCommunity:  "public",
			WriteCommunity: "private",
		},
		Export: ExportConfig{
			Enabled:   false,
			Namespace: "Dell/iDRAC/Fleet",
			Interval:  60 * time.Second,
			BatchSize: 20,
			Timeout:   10 * time.Second,
		},
	}
	assert.Equal(t, expected, cfg)
}

func TestLoad_ReadsTheEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv(envServerCount, " 25 ") // surrounding whitespace is tolerated
	t.Setenv(envServerIDPattern, "rack-b-%02d")
	t.Setenv(envSeed, "-654987")
	t.Setenv(envProfileFile, "/etc/idrac/profile.toml")
	t.Setenv(envAPIListenAddress, "127.0.0.1:8443")
	t.Setenv(envAPIUsername, "operator")
	t.Setenv(envAPIPassword, "hunter2")
	t.Setenv(envSNMPListenAddress, "127.0.0.1:10161")
	t.Setenv(envSNMPReadCommunity, "fleet-ro")
	t.Setenv(envSNMPWriteCommunity, "fleet-rw")
	t.Setenv(envSNMPV3User, "monitor")
	t.Setenv(envSNMPV3AuthKey, "auth-key")
	t.Setenv(envSNMPV3PrivKey, "priv-key")
	t.Setenv(envExportEnabled, "true")
	t.Setenv(envExportEndpoint, "http://collector.local/ingest")
	t.Setenv(envExportAPIKey, "secret")
	t.Setenv(envExportNamespace, "Lab/Rigs")
	t.Setenv(envExportInterval, "15")
	t.Setenv(envExportBatchSize, "5")
	t.Setenv(envExportTimeout, "3")

	cfg, err := Load()
	require.NoError(t, err)

	expected := Config{
		Fleet: FleetConfig{
			ServerCount: 25,
			IDPattern:   "rack-b-%02d",
			Seed:        -654987,
			ProfileFile: "/etc/idrac/profile.toml",
		},
		API: APIConfig{
			ListenAddress: "127.0.0.1:8443",
			Username:      "operator",
			Password:      "hunter2",
		},
		SNMP: SNMPConfig{
			ListenAddress:  "127.0.0.1:10161",
			ReadCommunity:  "fleet-ro",
			WriteCommunity: "fleet-rw",
			V3User:         "monitor",
			V3AuthKey:      "auth-key",
			V3PrivKey:      "priv-key",
		},
		Export: ExportConfig{
			Enabled:   true,
			Endpoint:  "http://collector.local/ingest",
			APIKey:    "secret",
			Namespace: "Lab/Rigs",
			Interval:  15 * time.Second,
			BatchSize: 5,
			Timeout:   3 * time.Second,
		},
	}
	assert.Equal(t, expected, cfg)
}

func TestLoad_BooleanSpellings(t *testing.T) {
	for _, value := range []string{"1", "true", "YES", "on"} {
		clearEnv(t)
		t.Setenv(envExportEnabled, value)
		t.Setenv(envExportEndpoint, "http://collector.local/ingest")

		cfg, err := Load()
		require.NoError(t, err)
		assert.True(t, cfg.Export.Enabled, "spelling %s", value)
	}

	for _, value := range []string{"0", "false", "No", "OFF"} {
		clearEnv(t)
		t.Setenv(envExportEnabled, value)

		cfg, err := Load()
		require.NoError(t, err)
		assert.False(t, cfg.Export.Enabled, "spelling %s", value)
	}
}

func TestLoad_ParseErrors(t *testing.T) {
	t.Run("server count is not an integer", func(t *testing.T) {
		clearEnv(t)
		t.Setenv(envServerCount, "ten")

		_, err := Load()
		require.ErrorContains(t, err, envServerCount)
		require.ErrorContains(t, err, "'ten' is not an integer")
	})
	t.Run("seed is not an integer", func(t *testing.T) {
		clearEnv(t)
		t.Setenv(envSeed, "1.5")

		_, err := Load()
		require.ErrorContains(t, err, envSeed)
	})
	t.Run("export enabled is not a boolean", func(t *testing.T) {
		clearEnv(t)
		t.Setenv(envExportEnabled, "maybe")

		_, err := Load()
		require.ErrorContains(t, err, envExportEnabled)
		require.ErrorContains(t, err, "'maybe' is not a boolean")
	})
	t.Run("export interval is not an integer", func(t *testing.T) {
		clearEnv(t)
		t.Setenv(envExportInterval, "sixty")

		_, err := Load()
		require.ErrorContains(t, err, envExportInterval)
	})
	t.Run("export batch size is not an integer", func(t *testing.T) {
		clearEnv(t)
		t.Setenv(envExportBatchSize, "a lot")

		_, err := Load()
		require.ErrorContains(t, err, envExportBatchSize)
	})
	t.Run("export timeout is not an integer", func(t *testing.T) {
		clearEnv(t)
		t.Setenv(envExportTimeout, "10s")

		_, err := Load()
		require.ErrorContains(t, err, envExportTimeout)
	})
}

func TestLoad_ValidationErrors(t *testing.T) {
	t.Run("server count below 1", func(t *testing.T) {
		clearEnv(t)
		t.Setenv(envServerCount, "0")

		_, err := Load()
		require.ErrorContains(t, err, envServerCount)
		require.ErrorContains(t, err, "at least 1")
	})
	t.Run("negative server count", func(t *testing.T) {
		clearEnv(t)
		t.Setenv(envServerCount, "-3")

		_, err := Load()
		require.ErrorContains(t, err, envServerCount)
	})
	t.Run("zero export interval", func(t *testing.T) {
		clearEnv(t)
		t.Setenv(envExportInterval, "0")

		_, err := Load()
		require.ErrorContains(t, err, envExportInterval)
	})
	t.Run("negative export timeout", func(t *testing.T) {
		clearEnv(t)
		t.Setenv(envExportTimeout, "-5")

		_, err := Load()
		require.ErrorContains(t, err, envExportTimeout)
	})
	t.Run("export batch size below 1", func(t *testing.T) {
		clearEnv(t)
		t.Setenv(envExportBatchSize, "0")

		_, err := Load()
		require.ErrorContains(t, err, envExportBatchSize)
	})
	t.Run("export enabled without an endpoint", func(t *testing.T) {
		clearEnv(t)
		t.Setenv(envExportEnabled, "true")

		_, err := Load()
		require.ErrorContains(t, err, envExportEndpoint)
		require.ErrorContains(t, err, "required when metrics export is enabled")
	})
	t.Run("export enabled with an endpoint should work", func(t *testing.T) {
		clearEnv(t)
		t.Setenv(envExportEnabled, "true")
		t.Setenv(envExportEndpoint, "http://collector.local/ingest")

		cfg, err := Load()
		require.NoError(t, err)
		assert.True(t, cfg.Export.Enabled)
	})
}
