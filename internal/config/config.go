// Package config provides configuration management for the true-odds engine.
package config

// Config represents the complete application configuration
type Config struct {
	App         AppConfig         `mapstructure:"app" validate:"required"`
	Simulation  SimulationConfig  `mapstructure:"simulation" validate:"required"`
	Calibration CalibrationConfig `mapstructure:"calibration" validate:"required"`
	Pattern     PatternConfig     `mapstructure:"pattern" validate:"required"`
	Consensus   ConsensusConfig   `mapstructure:"consensus" validate:"required"`
	Staking     StakingConfig     `mapstructure:"staking" validate:"required"`
	Backtest    BacktestConfig    `mapstructure:"backtest"`
	Cache       CacheConfig       `mapstructure:"cache"`
	Metrics     MetricsConfig     `mapstructure:"metrics"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
	LogFormat   string `mapstructure:"log_format" validate:"omitempty,logformat"`
}

// SimulationConfig represents the match simulator configuration
type SimulationConfig struct {
	Distribution   string  `mapstructure:"distribution" validate:"required,distribution"`
	Iterations     int     `mapstructure:"iterations" validate:"required,gte=1,lte=1000000"`
	HomeAdvantage  float64 `mapstructure:"home_advantage" validate:"gte=-1,lte=1"`
	Dispersion     float64 `mapstructure:"dispersion" validate:"gte=0"`
	FirstHalfShare float64 `mapstructure:"first_half_share" validate:"gte=0,lte=1"`
	Seed           int64   `mapstructure:"seed"`
	Workers        int     `mapstructure:"workers" validate:"gte=0"`
	BatchSize      int     `mapstructure:"batch_size" validate:"gte=0"`
}

// CalibrationConfig represents probability calibration configuration
type CalibrationConfig struct {
	TargetRPS     float64 `mapstructure:"target_rps" validate:"required,gt=0,lt=1"`
	MinFactor     float64 `mapstructure:"min_factor" validate:"required,gt=0,lte=1"`
	MaxFactor     float64 `mapstructure:"max_factor" validate:"required,gt=0,lte=1"`
	MinIterations int     `mapstructure:"min_iterations" validate:"gte=0"`
	OddsFloor     float64 `mapstructure:"odds_floor" validate:"required,gt=0,lt=1"`
}

// PatternConfig represents historical pattern matcher configuration
type PatternConfig struct {
	Enabled          bool    `mapstructure:"enabled"`
	Decay            float64 `mapstructure:"decay" validate:"required,gt=0,lte=1"`
	HeadToHeadWeight float64 `mapstructure:"h2h_weight" validate:"gte=0"`
	FormWeight       float64 `mapstructure:"form_weight" validate:"gte=0"`
	SampleTarget     int     `mapstructure:"sample_target" validate:"required,gt=0"`
	MaxConfidence    float64 `mapstructure:"max_confidence" validate:"required,gt=0,lte=1"`
}

// ConsensusConfig represents cross-engine comparison configuration
type ConsensusConfig struct {
	MinEdge           float64 `mapstructure:"min_edge" validate:"gte=0"`
	MediumEdge        float64 `mapstructure:"medium_edge" validate:"gte=0"`
	HighEdge          float64 `mapstructure:"high_edge" validate:"gt=0"`
	MassiveEdge       float64 `mapstructure:"massive_edge" validate:"gt=0"`
	BoostScale        float64 `mapstructure:"boost_scale" validate:"gte=0,lte=1"`
	MaxConfidence     float64 `mapstructure:"max_confidence" validate:"required,gt=0,lte=1"`
	ConflictThreshold float64 `mapstructure:"conflict_threshold" validate:"gt=0,lte=1"`
	TieBreakEdge      float64 `mapstructure:"tie_break_edge" validate:"gte=0"`
}

// StakingConfig represents Kelly staking configuration
type StakingConfig struct {
	Bankroll         float64 `mapstructure:"bankroll" validate:"gte=0"`
	KellyMultiplier  float64 `mapstructure:"kelly_multiplier" validate:"required,gt=0,lte=1"`
	MaxStakeFraction float64 `mapstructure:"max_stake_fraction" validate:"required,gt=0,lte=1"`
	MinOdds          float64 `mapstructure:"min_odds" validate:"gte=0"`
	MaxOdds          float64 `mapstructure:"max_odds" validate:"gte=0"`
	MinConfidence    float64 `mapstructure:"min_confidence" validate:"gte=0,lte=1"`
}

// BacktestConfig represents forecast backtest configuration
type BacktestConfig struct {
	Iterations int     `mapstructure:"iterations" validate:"required,gte=1,lte=1000000"`
	Seed       int64   `mapstructure:"seed"`
	MinEdge    float64 `mapstructure:"min_edge" validate:"gte=0"`
	FlatStake  float64 `mapstructure:"flat_stake" validate:"gt=0"`
}

// CacheConfig represents the simulation result cache configuration
type CacheConfig struct {
	Enabled        bool `mapstructure:"enabled"`
	TTLSeconds     int  `mapstructure:"ttl_seconds" validate:"gte=0"`
	CleanupSeconds int  `mapstructure:"cleanup_seconds" validate:"gte=0"`
	MaxEntries     int  `mapstructure:"max_entries" validate:"gte=0"`
}

// MetricsConfig represents metrics export configuration
type MetricsConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Textfile string `mapstructure:"textfile"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsStaging checks if the application is running in staging mode
func (c *Config) IsStaging() bool {
	return c.App.Environment == "staging"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}
