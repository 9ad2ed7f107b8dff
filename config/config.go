// Copyright 2024 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/viper"
	"github.com/stratastor/logger"
	"github.com/tinkershack/veriwipe/internal/constants"
	"gopkg.in/yaml.v3"
)

var (
	instance   *Config
	once       sync.Once
	configPath string // Tracks where the config was loaded from
)

// Config is the full veriwipe configuration, one section per component.
type Config struct {
	Logger struct {
		LogLevel     string `mapstructure:"logLevel"`
		EnableSentry bool   `mapstructure:"enableSentry"`
		SentryDSN    string `mapstructure:"sentryDSN"`
	} `mapstructure:"logger"`

	RNG struct {
		ReseedIntervalBytes uint64 `mapstructure:"reseedIntervalBytes"`
		RepetitionCutoff    int    `mapstructure:"repetitionCutoff"`
	} `mapstructure:"rng"`

	Freeze struct {
		MaxStrategyAttempts int    `mapstructure:"maxStrategyAttempts"`
		StrategyTimeout     string `mapstructure:"strategyTimeout"`
	} `mapstructure:"freeze"`

	HiddenArea struct {
		DefaultPolicy string `mapstructure:"defaultPolicy"` // IGNORE | DETECT | REMOVE_TEMP | REMOVE_PERM
	} `mapstructure:"hiddenArea"`

	IOEngine struct {
		BufferSizeBytes      int     `mapstructure:"bufferSizeBytes"`
		QueueDepth           int     `mapstructure:"queueDepth"`
		ThermalCriticalC     float64 `mapstructure:"thermalCriticalC"`
		ThrottleOnThermal    bool    `mapstructure:"throttleOnThermal"`
		DurabilityBarrier    bool    `mapstructure:"durabilityBarrier"` // flush/fsync after each pass
	} `mapstructure:"ioEngine"`

	Pattern struct {
		DefaultAlgorithm string `mapstructure:"defaultAlgorithm"`
	} `mapstructure:"pattern"`

	Checkpoint struct {
		StorePath       string `mapstructure:"storePath"`
		PruneOlderThan  string `mapstructure:"pruneOlderThan"`
		PruneInterval   string `mapstructure:"pruneInterval"`
	} `mapstructure:"checkpoint"`

	Recovery struct {
		MaxRetries                int     `mapstructure:"maxRetries"`
		BackoffBaseMillis         int     `mapstructure:"backoffBaseMillis"`
		BackoffMaxMillis          int     `mapstructure:"backoffMaxMillis"`
		BadSectorTolerancePercent float64 `mapstructure:"badSectorTolerancePercent"`
		CircuitBreakerThreshold   int     `mapstructure:"circuitBreakerThreshold"`
	} `mapstructure:"recovery"`

	Verify struct {
		DefaultLevel       int     `mapstructure:"defaultLevel"` // 1-4
		MinConfidence      int     `mapstructure:"minConfidence"`
		SamplePercent      float64 `mapstructure:"samplePercent"`
		RegionLengthBytes  int     `mapstructure:"regionLengthBytes"`
		OracleBinary       string  `mapstructure:"oracleBinary"`
		OracleUseSudo      bool    `mapstructure:"oracleUseSudo"`
	} `mapstructure:"verify"`

	Certificate struct {
		SigningKeyPath      string `mapstructure:"signingKeyPath"`
		OperatorID          string `mapstructure:"operatorID"`
		OperatorOrganization string `mapstructure:"operatorOrganization"`
		OutputDir           string `mapstructure:"outputDir"`
	} `mapstructure:"certificate"`

	Tools struct {
		SmartctlPath string `mapstructure:"smartctlPath"`
		LsblkPath    string `mapstructure:"lsblkPath"`
		UdevadmPath  string `mapstructure:"udevadmPath"`
		HdparmPath   string `mapstructure:"hdparmPath"`
		NVMePath     string `mapstructure:"nvmePath"`
		SGUtilsPath  string `mapstructure:"sgUtilsPath"`
		UseSudo      bool   `mapstructure:"useSudo"`
	} `mapstructure:"tools"`

	Development struct {
		Enabled bool `mapstructure:"enabled"`
	} `mapstructure:"development"`

	Environment string `mapstructure:"environment"`
}

// LoadConfig loads the configuration with precedence rules: explicit path,
// then VERIWIPE_CONFIG env var, then the system-wide default.
func LoadConfig(configFilePath string) *Config {
	once.Do(func() {
		logConfig := logger.Config{LogLevel: "info", EnableSentry: false, SentryDSN: ""}
		l, err := logger.NewTag(logConfig, "config")
		if err != nil {
			fmt.Printf("Failed to create logger: %v\n", err)
			os.Exit(1)
		}

		viper.Reset()
		viper.SetConfigType("yaml")

		systemConfigPath := filepath.Join(GetConfigDir(), constants.ConfigFileName)

		if configFilePath != "" {
			configPath = configFilePath
		} else if envPath := os.Getenv("VERIWIPE_CONFIG"); envPath != "" {
			configPath = envPath
		} else {
			configPath = systemConfigPath
		}

		l.Info("Using config file", "path", configPath)

		if absPath, err := filepath.Abs(configPath); err == nil {
			configPath = absPath
		}
		viper.SetConfigFile(configPath)

		viper.SetDefault("environment", "dev")
		viper.SetDefault("logger.logLevel", "info")
		viper.SetDefault("logger.enableSentry", false)
		viper.SetDefault("logger.sentryDSN", "")

		viper.SetDefault("rng.reseedIntervalBytes", uint64(1<<30)) // 1 GiB
		viper.SetDefault("rng.repetitionCutoff", 34)               // NIST SP 800-90B default for 2^-40 false-positive, 8-bit symbols

		viper.SetDefault("freeze.maxStrategyAttempts", 3)
		viper.SetDefault("freeze.strategyTimeout", "10s")

		viper.SetDefault("hiddenArea.defaultPolicy", "DETECT")

		viper.SetDefault("ioEngine.bufferSizeBytes", 4<<20) // 4 MiB
		viper.SetDefault("ioEngine.queueDepth", 32)
		viper.SetDefault("ioEngine.thermalCriticalC", 85.0) // not read by the I/O engine, which applies ioengine.DefaultThresholds
		viper.SetDefault("ioEngine.throttleOnThermal", true)
		viper.SetDefault("ioEngine.durabilityBarrier", true)

		viper.SetDefault("pattern.defaultAlgorithm", "DOD_5220_22_M")

		viper.SetDefault("checkpoint.storePath", filepath.Join(GetCheckpointDir(), constants.CheckpointFileName))
		viper.SetDefault("checkpoint.pruneOlderThan", "720h") // 30 days
		viper.SetDefault("checkpoint.pruneInterval", "24h")

		viper.SetDefault("recovery.maxRetries", 5)
		viper.SetDefault("recovery.backoffBaseMillis", 200)
		viper.SetDefault("recovery.backoffMaxMillis", 30000)
		viper.SetDefault("recovery.badSectorTolerancePercent", 0.1)
		viper.SetDefault("recovery.circuitBreakerThreshold", 5)

		viper.SetDefault("verify.defaultLevel", 2)
		viper.SetDefault("verify.minConfidence", 90)
		viper.SetDefault("verify.samplePercent", 1.0)
		viper.SetDefault("verify.regionLengthBytes", 4096)
		viper.SetDefault("verify.oracleBinary", "photorec")
		viper.SetDefault("verify.oracleUseSudo", true)

		viper.SetDefault("certificate.signingKeyPath", filepath.Join(GetKeysDir(), "signing.jwk"))
		viper.SetDefault("certificate.operatorID", "")
		viper.SetDefault("certificate.operatorOrganization", "")
		viper.SetDefault("certificate.outputDir", GetCertsDir())

		viper.SetDefault("tools.smartctlPath", "")
		viper.SetDefault("tools.lsblkPath", "")
		viper.SetDefault("tools.udevadmPath", "")
		viper.SetDefault("tools.hdparmPath", "")
		viper.SetDefault("tools.nvmePath", "")
		viper.SetDefault("tools.sgUtilsPath", "")
		viper.SetDefault("tools.useSudo", true)

		viper.SetDefault("development.enabled", false)

		viper.AutomaticEnv()
		viper.SetEnvPrefix("VERIWIPE")
		viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

		err = viper.ReadInConfig()
		if err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); ok {
				l.Info("Config file not found, creating default at system path", "path", systemConfigPath)

				if err := os.MkdirAll(GetConfigDir(), 0755); err != nil {
					l.Error("Failed to create config directory", "err", err)
				}

				var cfg Config
				if err := viper.Unmarshal(&cfg); err != nil {
					l.Error("Failed to unmarshal default configuration", "err", err)
				}
				instance = &cfg
				configPath = systemConfigPath

				if err := SaveConfig(systemConfigPath); err != nil {
					l.Error("Failed to save default configuration", "err", err)
				}
			} else {
				l.Error("Error reading config file", "err", err)
				var cfg Config
				if err := viper.Unmarshal(&cfg); err != nil {
					l.Error("Failed to unmarshal default configuration", "err", err)
				}
				instance = &cfg
			}
		} else {
			l.Info("Config file loaded successfully", "path", viper.ConfigFileUsed())
			configPath = viper.ConfigFileUsed()

			var cfg Config
			if err := viper.Unmarshal(&cfg); err != nil {
				l.Error("Failed to parse configuration", "err", err)
			} else {
				instance = &cfg
			}
		}

		l.Debug("Loaded configuration", "config", fmt.Sprintf("%+v", instance))
	})

	return instance
}

// SaveConfig persists the current configuration to a specified path.
func SaveConfig(path string) error {
	if path == "" {
		if os.Geteuid() == 0 {
			if err := os.MkdirAll(GetConfigDir(), 0755); err != nil {
				return fmt.Errorf("failed to create system config directory: %w", err)
			}
			path = filepath.Join(GetConfigDir(), constants.ConfigFileName)
		} else {
			home, err := os.UserHomeDir()
			if err != nil {
				return fmt.Errorf("failed to get home directory: %w", err)
			}
			userConfigDir := filepath.Join(home, ".veriwipe")
			if err := os.MkdirAll(userConfigDir, 0755); err != nil {
				return fmt.Errorf("failed to create user config directory: %w", err)
			}
			path = filepath.Join(userConfigDir, constants.ConfigFileName)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	configYAML, err := yaml.Marshal(instance)
	if err != nil {
		return fmt.Errorf("failed to serialize configuration: %w", err)
	}

	if err := os.WriteFile(path, configYAML, 0644); err != nil {
		return fmt.Errorf("failed to write configuration to file: %w", err)
	}

	configPath = path
	return nil
}

// GetLoadedConfigPath returns the path of the currently loaded configuration file.
func GetLoadedConfigPath() string {
	return configPath
}

// GetConfig returns the current configuration instance, loading the default
// configuration on first access if it hasn't been loaded explicitly yet.
func GetConfig() *Config {
	if instance == nil {
		return LoadConfig("")
	}
	return instance
}

// NewLoggerConfig derives a logger.Config from cfg, used to build every
// component's tagged logger with the same level/Sentry settings.
func NewLoggerConfig(cfg *Config) logger.Config {
	if cfg == nil {
		return logger.Config{LogLevel: "info", EnableSentry: false, SentryDSN: ""}
	}
	return logger.Config{
		LogLevel:     cfg.Logger.LogLevel,
		EnableSentry: cfg.Logger.EnableSentry,
		SentryDSN:    cfg.Logger.SentryDSN,
	}
}
