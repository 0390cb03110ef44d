package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// CustomValidator wraps the validator with custom validation rules
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator creates a new validator with custom validation functions
func NewValidator() *CustomValidator {
	v := validator.New()

	_ = v.RegisterValidation("environment", validateEnvironment)
	_ = v.RegisterValidation("loglevel", validateLogLevel)
	_ = v.RegisterValidation("logformat", validateLogFormat)
	_ = v.RegisterValidation("distribution", validateDistribution)

	return &CustomValidator{validator: v}
}

// Validate validates the entire configuration
func Validate(cfg *Config) error {
	return NewValidator().Validate(cfg)
}

// Validate validates the configuration using registered validation rules
func (cv *CustomValidator) Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New("configuration is nil")
	}
	if err := cv.validator.Struct(cfg); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			return formatValidationErrors(validationErrors)
		}
		return fmt.Errorf("validation failed: %w", err)
	}

	return validateCrossField(cfg)
}

func validateEnvironment(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "development", "staging", "production":
		return true
	default:
		return false
	}
}

func validateLogLevel(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

func validateLogFormat(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "text", "json":
		return true
	default:
		return false
	}
}

func validateDistribution(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "poisson", "negative_binomial", "auto":
		return true
	default:
		return false
	}
}

// validateCrossField performs cross-field validations
func validateCrossField(cfg *Config) error {
	c := cfg.Consensus
	if !(c.MediumEdge <= c.HighEdge && c.HighEdge <= c.MassiveEdge) {
		return fmt.Errorf("consensus edge tiers must be ordered: medium_edge (%.3f) <= high_edge (%.3f) <= massive_edge (%.3f)",
			c.MediumEdge, c.HighEdge, c.MassiveEdge)
	}
	if c.MinEdge < c.MediumEdge {
		return fmt.Errorf("consensus min_edge (%.3f) cannot be below medium_edge (%.3f)", c.MinEdge, c.MediumEdge)
	}

	if cfg.Calibration.MinFactor > cfg.Calibration.MaxFactor {
		return fmt.Errorf("calibration min_factor cannot exceed max_factor")
	}

	if cfg.Pattern.Enabled && cfg.Pattern.HeadToHeadWeight+cfg.Pattern.FormWeight <= 0 {
		return fmt.Errorf("pattern stream weights must not all be zero")
	}

	s := cfg.Staking
	if s.MaxOdds > 0 && s.MinOdds > s.MaxOdds {
		return fmt.Errorf("staking min_odds cannot exceed max_odds")
	}

	if cfg.IsProduction() && cfg.Simulation.Seed != 0 {
		return fmt.Errorf("production environment must not pin the simulation seed")
	}

	return nil
}

// formatValidationErrors formats validation errors into a readable string
func formatValidationErrors(validationErrors validator.ValidationErrors) error {
	var b strings.Builder
	for _, fieldError := range validationErrors {
		field := fieldError.Namespace()
		tag := fieldError.Tag()
		value := fieldError.Value()

		switch tag {
		case "required":
			fmt.Fprintf(&b, "- Field '%s' is required\n", field)
		case "gt", "gte", "lt", "lte":
			fmt.Fprintf(&b, "- Field '%s' validation failed: numeric constraint %s=%s violated, got '%v'\n", field, tag, fieldError.Param(), value)
		case "environment":
			fmt.Fprintf(&b, "- Field '%s' must be one of: development, staging, production\n", field)
		case "loglevel":
			fmt.Fprintf(&b, "- Field '%s' must be one of: debug, info, warn, error\n", field)
		case "logformat":
			fmt.Fprintf(&b, "- Field '%s' must be one of: text, json\n", field)
		case "distribution":
			fmt.Fprintf(&b, "- Field '%s' must be one of: poisson, negative_binomial, auto, got '%v'\n", field, value)
		default:
			fmt.Fprintf(&b, "- Field '%s' failed validation: %s\n", field, tag)
		}
	}
	return fmt.Errorf("configuration validation failed:\n%s", b.String())
}
