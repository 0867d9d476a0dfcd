package config

import (
	"fmt"
	"slices"

	"github.com/spf13/viper"

	"vdjbench/internal/loader"
)

// ValidateConfig validates configuration values and returns an error if any are invalid.
// This function should be called after viper has loaded the configuration.
func ValidateConfig() error {
	var errors []string

	if viper.IsSet("iterations") {
		if n := viper.GetInt("iterations"); n < 0 {
			errors = append(errors, fmt.Sprintf("iterations must be zero or positive, got: %d", n))
		}
	}

	switch mode := viper.GetString("memory_mode"); mode {
	case "", "always", "untimed":
	default:
		errors = append(errors, fmt.Sprintf("memory_mode must be one of always, untimed, got: %q", mode))
	}

	if viper.GetString("dataset_root") == "" {
		errors = append(errors, "dataset_root must not be empty")
	}
	if viper.GetString("output_path") == "" {
		errors = append(errors, "output_path must not be empty")
	}

	if name := viper.GetString("loader"); !slices.Contains(loader.Names(), name) {
		errors = append(errors, fmt.Sprintf("loader must be one of %v, got: %q", loader.Names(), name))
	}

	// If there are any errors, return them
	if len(errors) > 0 {
		errorMsg := errors[0]
		for i := 1; i < len(errors); i++ {
			errorMsg += "\n  " + errors[i]
		}
		return fmt.Errorf("configuration validation failed:\n  %s", errorMsg)
	}

	return nil
}
