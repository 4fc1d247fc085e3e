// Package config provides configuration loading for the GuardStack control plane.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/viper"
)

// InitViper initializes Viper with the configuration file and environment variables.
// If configFile is empty, it searches for guardstack.yaml/.yml in standard locations.
// The search requires an explicit YAML extension to avoid matching the binary itself,
// which Viper's built-in SetConfigName would match (same base name, no extension).
func InitViper(configFile string) {
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else if found := findConfigFile(); found != "" {
		viper.SetConfigFile(found)
	} else {
		viper.SetConfigName("guardstack")
		viper.SetConfigType("yaml")
	}

	// Environment variable support: GUARDSTACK_SERVER_HTTP_ADDR
	viper.SetEnvPrefix("GUARDSTACK")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	bindNestedEnvKeys()
}

// findConfigFile searches standard locations for a guardstack config file
// with an explicit YAML extension (.yaml or .yml). This prevents Viper from
// matching the binary "guardstackd" (no extension) in the current directory.
func findConfigFile() string {
	paths := []string{".", defaultConfigDir()}
	if runtime.GOOS == "windows" {
		if pd := os.Getenv("ProgramData"); pd != "" {
			paths = append(paths, filepath.Join(pd, "guardstack"))
		}
	} else {
		paths = append(paths, "/etc/guardstack")
	}
	return findConfigFileInPaths(paths)
}

// findConfigFileInPaths searches the given directories for guardstack.yaml or .yml.
// Returns the full path of the first match, or empty string if none found.
func findConfigFileInPaths(paths []string) string {
	for _, dir := range paths {
		if dir == "" {
			continue
		}
		for _, ext := range []string{".yaml", ".yml"} {
			path := filepath.Join(dir, "guardstack"+ext)
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}
	}
	return ""
}

// bindNestedEnvKeys binds config keys for environment variable support.
// Example: GUARDSTACK_SERVER_HTTP_ADDR overrides server.http_addr
func bindNestedEnvKeys() {
	_ = viper.BindEnv("server.http_addr")
	_ = viper.BindEnv("server.log_level")

	_ = viper.BindEnv("scoring.threshold_policy")
	_ = viper.BindEnv("scoring.weight_preset")
	_ = viper.BindEnv("scoring.aggregation_strategy")

	_ = viper.BindEnv("interceptor.rate_limit.enabled")
	_ = viper.BindEnv("interceptor.rate_limit.per_minute")
	_ = viper.BindEnv("interceptor.rate_limit.cleanup_interval")
	_ = viper.BindEnv("interceptor.rate_limit.max_idle")

	_ = viper.BindEnv("interceptor.sandbox.mode")
	_ = viper.BindEnv("interceptor.sandbox.network_disabled")

	_ = viper.BindEnv("audit.output")

	// Note: checkpoints, policies, and identities are arrays/structs; complex
	// to override via env. Users should use a config file for these.

	_ = viper.BindEnv("dev_mode")
}

// LoadConfig reads the configuration file, applies environment overrides,
// sets defaults, and returns the GuardStackConfig.
// Note: Caller should apply any CLI flag overrides (e.g. --dev), then call
// cfg.SetDevDefaults() and cfg.Validate() to complete initialization.
func LoadConfig() (*GuardStackConfig, error) {
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found - continue with env vars only.
	}

	var cfg GuardStackConfig
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.SetDefaults()
	cfg.SetDevDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadConfigRaw reads the configuration file and applies defaults, but does
// NOT apply dev defaults or validate.
// Use this when CLI flags may override DevMode before validation.
func LoadConfigRaw() (*GuardStackConfig, error) {
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg GuardStackConfig
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.SetDefaults()
	return &cfg, nil
}

// ConfigFileUsed returns the path to the configuration file that was loaded.
// Returns an empty string if no config file was found (env vars only mode).
func ConfigFileUsed() string {
	return viper.ConfigFileUsed()
}
