//
//  Copyright © Fieldgate Inc. All rights reserved.
//

// Package config provides configuration management for the permission
// engine using [Viper] for flexible configuration sources.
//
// Configuration can be provided via:
//   - YAML configuration files
//   - Environment variables with the FPE_ prefix
//   - Programmatic defaults
//
// # Configuration File
//
// By default, the engine looks for fpe-config.yaml in the current
// directory. Override the location using environment variables:
//
//	FPE_CONFIG_PATH=/etc/permengine
//	FPE_CONFIG_FILENAME=production-config
//
// Example configuration file:
//
//	log:
//	  level: ".:info"
//	decisionlog:
//	  pretty: false
//	pgcache:
//	  dsn: "postgres://fpe@localhost/permissions?sslmode=disable"
//
// # Environment Variables
//
// All configuration keys can be set via environment variables with the
// FPE_ prefix. Dots in key names become underscores:
//
//	FPE_LOG_LEVEL=.:debug
//	FPE_DECISIONLOG_PRETTY=true
//	FPE_PGCACHE_DSN=postgres://...
//
// [Viper]: https://github.com/spf13/viper
package config

import (
	"errors"
	"os"
	"strings"
	"sync"

	"github.com/fieldgate/permengine/internal/logging"
	"github.com/spf13/viper"
)

// Environment variable and default path constants for configuration loading.
const (
	// EnvVarPrefix is the prefix for all permission engine environment
	// variables. For example, the key "log.level" becomes FPE_LOG_LEVEL.
	EnvVarPrefix string = "FPE"

	// ConfigPathEnv is the environment variable that specifies the directory
	// containing the configuration file.
	ConfigPathEnv string = "FPE_CONFIG_PATH"

	// ConfigFileNameEnv is the environment variable that specifies the
	// configuration file name (without extension).
	ConfigFileNameEnv string = "FPE_CONFIG_FILENAME"

	// ConfigDefaultPath is the default directory to search for config files.
	ConfigDefaultPath string = "."

	// ConfigDefaultFilename is the default configuration file name (without extension).
	ConfigDefaultFilename string = "fpe-config"
)

// Configuration key constants for use with [VConfig].
const (
	logLevel string = "log.level"

	// DecisionLogPretty controls whether the stdout decision log emits
	// indented multi-line JSON rather than compact single-line records.
	//
	// Default: false
	// Set via environment: FPE_DECISIONLOG_PRETTY=true
	DecisionLogPretty string = "decisionlog.pretty"

	// PgCacheDSN is the Postgres connection string used by the optional
	// rule-table cache. When empty, the cache is disabled and seeds are
	// the only rule source.
	//
	// Set via environment: FPE_PGCACHE_DSN=postgres://...
	PgCacheDSN string = "pgcache.dsn"

	// PgCacheTable is the name of the rule cache table.
	//
	// Default: "permission_rules"
	PgCacheTable string = "pgcache.table"
)

var (
	once     sync.Once
	loadOnce sync.Once
	loadErr  error

	// VConfig is the global Viper configuration instance for the permission
	// engine.
	//
	// VConfig provides access to all configuration values. Use the
	// configuration key constants ([DecisionLogPretty], [PgCacheDSN], etc.)
	// to access specific settings:
	//
	//	if config.VConfig.GetBool(config.DecisionLogPretty) {
	//	    // pretty-printed decision records
	//	}
	//
	// VConfig is initialized automatically when [Load] or [Init] is called.
	VConfig *viper.Viper
	logger  = logging.GetLogger("permengine.config")
)

// Init initializes the configuration system without loading config files.
//
// Init sets up Viper with:
//   - Configuration file paths and names
//   - Environment variable handling (FPE_ prefix)
//   - Default values for all configuration keys
//
// This function is safe to call multiple times; subsequent calls are no-ops.
// Most applications don't need to call Init directly; it's called
// automatically by [Load], which is called by [core.NewEngine].
//
// Call Init explicitly only if you need to set Viper defaults before [Load]
// reads the configuration file.
func Init() {
	once.Do(func() {
		doInitialize()
	})
}

func getConfigPath() string {
	configPath, ok := os.LookupEnv(ConfigPathEnv)
	if ok {
		return configPath
	}

	return ConfigDefaultPath
}

func getConfigFileName() string {
	configName, ok := os.LookupEnv(ConfigFileNameEnv)
	if ok {
		return configName
	}

	return ConfigDefaultFilename
}

func doInitialize() {
	VConfig = viper.New()

	// set up config-file loading: default is './fpe-config.yaml' but can be
	// overridden with $(FPE_CONFIG_PATH)/$(FPE_CONFIG_FILENAME).yaml
	VConfig.AddConfigPath(getConfigPath())
	VConfig.SetConfigName(getConfigFileName())
	VConfig.SetConfigType("yaml")

	// set up envvar handling: keys such as 'log.level' become 'FPE_LOG_LEVEL'
	VConfig.SetEnvPrefix(EnvVarPrefix)
	VConfig.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	VConfig.AutomaticEnv()

	// set up VConfig defaults
	VConfig.SetDefault(logLevel, ".:info")
	VConfig.SetDefault(DecisionLogPretty, false)
	VConfig.SetDefault(PgCacheTable, "permission_rules")
}

// Load initializes configuration and loads settings from files and environment.
//
// Load performs the following steps:
//  1. Calls [Init] if not already called
//  2. Reads the configuration file (if present; missing files are not an error)
//  3. Applies environment variable overrides
//  4. Updates log levels based on configuration
//
// This function is safe to call concurrently from multiple goroutines.
// Subsequent calls after the first successful load are no-ops that return nil.
//
// Load is called automatically by [core.NewEngine]. Most applications don't
// need to call it directly.
//
// Returns an error if log level configuration is invalid.
func Load() error {
	loadOnce.Do(func() {
		Init()

		// Early log level update from environment variable allows us to debug the config loading.
		earlyLoglevel := os.Getenv("FPE_LOG_LEVEL")
		if earlyLoglevel != "" {
			if err := logging.UpdateLogLevels(earlyLoglevel); err != nil {
				logger.SysErrorf("Failed updating early log level %s: %+v", earlyLoglevel, err)
				loadErr = err
				return
			}
		}

		logger.SysDebugf("Loading configuration from %s/%s.yaml", getConfigPath(), getConfigFileName())
		err := VConfig.ReadInConfig()
		if err != nil {
			// Only log if it's an actual error, not just a missing config file
			var configNotFound viper.ConfigFileNotFoundError
			if !errors.As(err, &configNotFound) {
				logger.SysWarnf("error reading config; using defaults: %+v", err)
			}
			logger.SysDebugf("No config file found at %s/%s.yaml", getConfigPath(), getConfigFileName())
		}

		// Update log levels based on final configuration
		loglevel := VConfig.GetString(logLevel)
		if err := logging.UpdateLogLevels(loglevel); err != nil {
			logger.SysErrorf("Failed updating log level %s: %+v", loglevel, err)
			loadErr = err
			return
		}

		if logger.IsDebugEnabled() {
			VConfig.DebugTo(logger.Out())
		}
	})

	return loadErr
}

// ResetConfig reinitializes the configuration from defaults and allows
// the next [Load] call to re-read files and environment variables.
// Intended for testing.
func ResetConfig() {
	loadOnce = sync.Once{}
	loadErr = nil
	doInitialize()
}
