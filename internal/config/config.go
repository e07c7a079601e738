// Package config loads runtime configuration for magnetar from the config
// file, environment, and CLI flags via viper. The loaded Config is an
// immutable snapshot passed down into the solver; nothing reads viper after
// startup.
package config

import "github.com/spf13/viper"

// Config holds all runtime configuration for a magnetar run.
// Values are populated from .magnetar.yaml, MAGNETAR_* env vars, and CLI flags.
type Config struct {
	Damping         float64 `mapstructure:"damping"`
	Tolerance       float64 `mapstructure:"tolerance"`
	MaxIterations   int     `mapstructure:"max_iterations"`
	CorrectionScale float64 `mapstructure:"correction_scale"`
	Workers         int     `mapstructure:"workers"`
	History         bool    `mapstructure:"history"`
	Verbose         bool    `mapstructure:"verbose"`
	OutputFile      string  `mapstructure:"output_file"`
	RunLogFile      string  `mapstructure:"run_log_file"`
	StoreFile       string  `mapstructure:"store_file"`
	CatalogFile     string  `mapstructure:"catalog_file"`
}

// Load reads configuration from viper, applying built-in defaults for any
// values not set by config file, environment, or flags.
func Load() Config {
	viper.SetDefault("damping", 0.85)
	viper.SetDefault("tolerance", 1e-6)
	viper.SetDefault("max_iterations", 0)
	viper.SetDefault("correction_scale", 0.5)
	viper.SetDefault("workers", 0)
	viper.SetDefault("history", false)
	viper.SetDefault("verbose", false)
	viper.SetDefault("output_file", "pagerank_output")
	viper.SetDefault("run_log_file", "")
	viper.SetDefault("store_file", "")
	viper.SetDefault("catalog_file", ".magnetar/catalog.toml")

	var cfg Config
	_ = viper.Unmarshal(&cfg)
	return cfg
}
