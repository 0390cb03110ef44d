package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. TRUE_ODDS_SIMULATION_ITERATIONS
const EnvPrefix = "TRUE_ODDS"

// DefaultConfigPath is used when no path is given
const DefaultConfigPath = "config/config.yaml"

// Load reads and parses the configuration from file and environment variables.
// It expands environment variable placeholders in the YAML file (${VAR_NAME}).
// Unlike LoadWithDefaults, a missing file is an error.
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = DefaultConfigPath
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found at %s: %w", configPath, err)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	v := newViper()
	if err := v.ReadConfig(bytes.NewBufferString(os.ExpandEnv(string(data)))); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return unmarshal(v)
}

// LoadWithDefaults loads configuration with default values for every tunable.
// A missing file is not an error: defaults and environment variables apply.
func LoadWithDefaults(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = DefaultConfigPath
	}

	v := newViper()

	if data, err := os.ReadFile(configPath); err == nil {
		if err := v.ReadConfig(bytes.NewBufferString(os.ExpandEnv(string(data)))); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return unmarshal(v)
}

// ReloadFromEnv replaces cfg with the file named by TRUE_ODDS_CONFIG_PATH, if set
func ReloadFromEnv(cfg *Config) error {
	envPath := os.Getenv(EnvPrefix + "_CONFIG_PATH")
	if envPath == "" {
		return nil
	}
	newCfg, err := Load(envPath)
	if err != nil {
		return err
	}
	*cfg = *newCfg
	return nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)
	return v
}

// setDefaults registers every key so environment overrides reach keys the
// file does not mention
func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "true-odds")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.log_format", "text")

	v.SetDefault("simulation.distribution", "poisson")
	v.SetDefault("simulation.iterations", 100000)
	v.SetDefault("simulation.home_advantage", 0.0)
	v.SetDefault("simulation.dispersion", 10.0)
	v.SetDefault("simulation.first_half_share", 0.45)
	v.SetDefault("simulation.seed", 0)
	v.SetDefault("simulation.workers", 0)
	v.SetDefault("simulation.batch_size", 10000)

	v.SetDefault("calibration.target_rps", 0.2012)
	v.SetDefault("calibration.min_factor", 0.75)
	v.SetDefault("calibration.max_factor", 0.95)
	v.SetDefault("calibration.min_iterations", 1000)
	v.SetDefault("calibration.odds_floor", 0.001)

	v.SetDefault("pattern.enabled", true)
	v.SetDefault("pattern.decay", 0.9)
	v.SetDefault("pattern.h2h_weight", 1.5)
	v.SetDefault("pattern.form_weight", 1.0)
	v.SetDefault("pattern.sample_target", 20)
	v.SetDefault("pattern.max_confidence", 0.95)

	v.SetDefault("consensus.min_edge", 0.03)
	v.SetDefault("consensus.medium_edge", 0.03)
	v.SetDefault("consensus.high_edge", 0.07)
	v.SetDefault("consensus.massive_edge", 0.15)
	v.SetDefault("consensus.boost_scale", 0.10)
	v.SetDefault("consensus.max_confidence", 0.95)
	v.SetDefault("consensus.conflict_threshold", 0.4)
	v.SetDefault("consensus.tie_break_edge", 0.07)

	v.SetDefault("staking.bankroll", 1000.0)
	v.SetDefault("staking.kelly_multiplier", 0.25)
	v.SetDefault("staking.max_stake_fraction", 0.05)
	v.SetDefault("staking.min_odds", 1.01)
	v.SetDefault("staking.max_odds", 1000.0)
	v.SetDefault("staking.min_confidence", 0.0)

	v.SetDefault("backtest.iterations", 20000)
	v.SetDefault("backtest.seed", 1)
	v.SetDefault("backtest.min_edge", 0.03)
	v.SetDefault("backtest.flat_stake", 1.0)

	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.ttl_seconds", 900)
	v.SetDefault("cache.cleanup_seconds", 1800)
	v.SetDefault("cache.max_entries", 256)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.textfile", "")
}

func unmarshal(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	return cfg, nil
}
