package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	envServerCount        = "IDRAC_SERVER_COUNT"
	envServerIDPattern    = "IDRAC_SERVER_ID_PATTERN"
	envSeed               = "IDRAC_SEED"
	envProfileFile        = "IDRAC_PROFILE_FILE"
	envAPIListenAddress   = "IDRAC_API_LISTEN_ADDRESS"
	envAPIUsername        = "IDRAC_API_USERNAME"
	envAPIPassword        = "IDRAC_API_PASSWORD"
	envSNMPListenAddress  = "IDRAC_SNMP_LISTEN_ADDRESS"
	envSNMPReadCommunity  = "IDRAC_SNMP_READ_COMMUNITY"
	envSNMPWriteCommunity = "IDRAC_SNMP_WRITE_COMMUNITY"
	envSNMPV3User         = "IDRAC_SNMP_V3_USER"
	envSNMPV3AuthKey      = "IDRAC_SNMP_V3_AUTH_KEY"
	envSNMPV3PrivKey      = "IDRAC_SNMP_V3_PRIV_KEY"
	envExportEnabled      = "IDRAC_EXPORT_ENABLED"
	envExportEndpoint     = "IDRAC_EXPORT_ENDPOINT"
	envExportAPIKey       = "IDRAC_EXPORT_API_KEY"
	envExportNamespace    = "IDRAC_EXPORT_NAMESPACE"
	envExportInterval     = "IDRAC_EXPORT_INTERVAL_SECONDS"
	envExportBatchSize    = "IDRAC_EXPORT_BATCH_SIZE"
	envExportTimeout      = "IDRAC_EXPORT_TIMEOUT_SECONDS"
)

const (
	defaultServerCount           = 10
	defaultServerIDPattern       = "DELL-SRV-%03d"
	defaultAPIListenAddress      = ":5000"
	defaultAPIUsername           = "root"
	defaultAPIPassword           = "calvin"
	defaultSNMPListenAddress     = ":1161"
	defaultSNMPReadCommunity     = "public"
	defaultSNMPWriteCommunity    = "private"
	defaultExportNamespace       = "Dell/iDRAC/Fleet"
	defaultExportIntervalSeconds = 60
	defaultExportBatchSize       = 20
	defaultExportTimeoutSeconds  = 10
)

// FleetConfig holds the emulated fleet sizing and seeding settings
type FleetConfig struct {
	ServerCount int
	IDPattern   string
	Seed        int64 // 0 defers to a wall-clock derived seed
	ProfileFile string
}

// APIConfig holds the REST facade settings
type APIConfig struct {
	ListenAddress string
	Username      string
	Password      string
}

// SNMPConfig holds the SNMP agent settings
type SNMPConfig struct {
	ListenAddress  string
	ReadCommunity  string
	WriteCommunity string
	V3User         string
	V3AuthKey      string
	V3PrivKey      string
}

// ExportConfig holds the metrics export loop settings
type ExportConfig struct {
	Enabled   bool
	Endpoint  string
	APIKey    string
	Namespace string
	Interval  time.Duration
	BatchSize int
	Timeout   time.Duration
}

// Config aggregates all emulator settings read from the environment
type Config struct {
	Fleet  FleetConfig
	API    APIConfig
	SNMP   SNMPConfig
	Export ExportConfig
}

// Load builds the configuration from IDRAC_* environment variables, falling
// back to the built-in defaults for any variable left unset, and validates
// the resulting values
func Load() (Config, error) {
	cfg := Config{
		Fleet: FleetConfig{
			IDPattern:   env(envServerIDPattern, defaultServerIDPattern),
			ProfileFile: env(envProfileFile, ""),
		},
		API: APIConfig{
			ListenAddress: env(envAPIListenAddress, defaultAPIListenAddress),
			Username:      env(envAPIUsername, defaultAPIUsername),
			Password:      env(envAPIPassword, defaultAPIPassword),
		},
		SNMP: SNMPConfig{
			ListenAddress:  env(envSNMPListenAddress, defaultSNMPListenAddress),
			ReadCommunity:  env(envSNMPReadCommunity, defaultSNMPReadCommunity),
			WriteCommunity: env(envSNMPWriteCommunity, defaultSNMPWriteCommunity),
			V3User:         env(envSNMPV3User, ""),
			V3AuthKey:      env(envSNMPV3AuthKey, ""),
			V3PrivKey:      env(envSNMPV3PrivKey, ""),
		},
		Export: ExportConfig{
			Endpoint:  env(envExportEndpoint, ""),
			APIKey:    env(envExportAPIKey, ""),
			Namespace: env(envExportNamespace, defaultExportNamespace),
		},
	}

	var err error
	cfg.Fleet.ServerCount, err = envInt(envServerCount, defaultServerCount)
	if err != nil {
		return Config{}, err
	}

	cfg.Fleet.Seed, err = envInt64(envSeed, 0)
	if err != nil {
		return Config{}, err
	}

	cfg.Export.Enabled, err = envBool(envExportEnabled, false)
	if err != nil {
		return Config{}, err
	}

	intervalSeconds, err := envInt(envExportInterval, defaultExportIntervalSeconds)
	if err != nil {
		return Config{}, err
	}
	cfg.Export.Interval = time.Duration(intervalSeconds) * time.Second

	cfg.Export.BatchSize, err = envInt(envExportBatchSize, defaultExportBatchSize)
	if err != nil {
		return Config{}, err
	}

	timeoutSeconds, err := envInt(envExportTimeout, defaultExportTimeoutSeconds)
	if err != nil {
		return Config{}, err
	}
	cfg.Export.Timeout = time.Duration(timeoutSeconds) * time.Second

	err = cfg.validate()
	if err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// validate only checks values the env getters can actually produce. Deeper
// checks (id pattern shape, profile contents) belong to the components that
// consume them and still abort the startup on failure
func (cfg Config) validate() error {
	if cfg.Fleet.ServerCount < 1 {
		return fmt.Errorf("%s must be at least 1, provided %d", envServerCount, cfg.Fleet.ServerCount)
	}
	if cfg.Export.Interval <= 0 {
		return fmt.Errorf("%s must be a positive number of seconds", envExportInterval)
	}
	if cfg.Export.Timeout <= 0 {
		return fmt.Errorf("%s must be a positive number of seconds", envExportTimeout)
	}
	if cfg.Export.BatchSize < 1 {
		return fmt.Errorf("%s must be at least 1, provided %d", envExportBatchSize, cfg.Export.BatchSize)
	}
	if cfg.Export.Enabled && len(cfg.Export.Endpoint) == 0 {
		return fmt.Errorf("%s is required when metrics export is enabled", envExportEndpoint)
	}

	return nil
}

func env(key string, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}

	return value
}

func envInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s: '%s' is not an integer", key, value)
	}

	return parsed, nil
}

func envInt64(key string, fallback int64) (int64, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: '%s' is not an integer", key, value)
	}

	return parsed, nil
}

func envBool(key string, fallback bool) (bool, error) {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if value == "" {
		return fallback, nil
	}

	switch value {
	case "1", "true", "yes", "on":
		return true, nil
	case "0", "false", "no", "off":
		return false, nil
	}

	return false, fmt.Errorf("%s: '%s' is not a boolean", key, value)
}
