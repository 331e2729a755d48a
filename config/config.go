// Package config loads pipeline settings from PETFILL_* environment
// variables, applies command-line overrides and validates the result.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/baseline-eto/petfill/format"
	"github.com/baseline-eto/petfill/internal/logging"
	"github.com/baseline-eto/petfill/pass"
	"github.com/baseline-eto/petfill/scan"
)

// Default file names and settings.
const (
	DefaultMOD16       = "MOD16A3_PET_2000_to_2013_mean.bin"
	DefaultInput       = "Baseline_ETo_Data_Reduced.bin"
	DefaultOutput      = "Baseline_ETo_Data.bin"
	DefaultMask        = "Ocean_Mask.bin"
	DefaultPasses      = 20
	DefaultWorkers     = 1
	DefaultLogLevel    = "info"
	DefaultCompression = "zstd"
)

// Config holds the pipeline configuration
type Config struct {
	Paths   PathsConfig
	Run     RunConfig
	Archive ArchiveConfig
	Logging LoggingConfig

	// Bounds skips the range scan when set.
	Bounds *scan.Bounds
}

// PathsConfig names the files the pipeline reads and writes
type PathsConfig struct {
	MOD16  string `env:"PETFILL_MOD16" default:"MOD16A3_PET_2000_to_2013_mean.bin"`
	Input  string `env:"PETFILL_INPUT" default:"Baseline_ETo_Data_Reduced.bin"`
	Output string `env:"PETFILL_OUTPUT" default:"Baseline_ETo_Data.bin"`
	Mask   string `env:"PETFILL_MASK" default:"Ocean_Mask.bin"`
}

// RunConfig controls scanning and interpolation
type RunConfig struct {
	Passes         int  `env:"PETFILL_PASSES" default:"20"`
	Workers        int  `env:"PETFILL_WORKERS" default:"1"`
	FullRowScan    bool `env:"PETFILL_FULL_ROW_SCAN" default:"false"`
	StopWhenStable bool `env:"PETFILL_STOP_WHEN_STABLE" default:"true"`
	// Clean removes the intermediate and output rasters before running.
	Clean bool
}

// ArchiveConfig controls the optional compressed copy of the output
type ArchiveConfig struct {
	Path        string `env:"PETFILL_ARCHIVE" default:""`
	Compression string `env:"PETFILL_ARCHIVE_COMPRESSION" default:"zstd"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `env:"PETFILL_LOG_LEVEL" default:"info"`
}

// LoadOptions holds command-line override options. Nil pointers and empty
// strings leave the environment value in place.
type LoadOptions struct {
	MOD16          string
	Input          string
	Output         string
	Mask           string
	Passes         *int
	Workers        *int
	FullRowScan    bool
	StopWhenStable *bool
	Clean          bool
	Min            *uint32
	Max            *uint32
	Archive        string
	Compression    string
	LogLevel       string
}

// Load loads configuration from environment variables with defaults
func Load() (*Config, error) {
	return LoadWithOverrides(LoadOptions{})
}

// LoadWithOverrides loads configuration with command-line overrides
func LoadWithOverrides(opts LoadOptions) (*Config, error) {
	config := &Config{}

	config.Paths.MOD16 = getOverrideOrEnv(opts.MOD16, "PETFILL_MOD16", DefaultMOD16)
	config.Paths.Input = getOverrideOrEnv(opts.Input, "PETFILL_INPUT", DefaultInput)
	config.Paths.Output = getOverrideOrEnv(opts.Output, "PETFILL_OUTPUT", DefaultOutput)
	config.Paths.Mask = getOverrideOrEnv(opts.Mask, "PETFILL_MASK", DefaultMask)

	config.Run.Passes = getIntOverrideOrEnv(opts.Passes, "PETFILL_PASSES", DefaultPasses)
	config.Run.Workers = getIntOverrideOrEnv(opts.Workers, "PETFILL_WORKERS", DefaultWorkers)
	config.Run.FullRowScan = getBoolWithDefault("PETFILL_FULL_ROW_SCAN", false) || opts.FullRowScan
	config.Run.StopWhenStable = getBoolWithDefault("PETFILL_STOP_WHEN_STABLE", true)
	if opts.StopWhenStable != nil {
		config.Run.StopWhenStable = *opts.StopWhenStable
	}
	config.Run.Clean = opts.Clean

	config.Archive.Path = getOverrideOrEnv(opts.Archive, "PETFILL_ARCHIVE", "")
	config.Archive.Compression = getOverrideOrEnv(opts.Compression, "PETFILL_ARCHIVE_COMPRESSION", DefaultCompression)

	config.Logging.Level = getOverrideOrEnv(opts.LogLevel, "PETFILL_LOG_LEVEL", DefaultLogLevel)

	switch {
	case opts.Min != nil && opts.Max != nil:
		config.Bounds = &scan.Bounds{Min: *opts.Min, Max: *opts.Max}
	case opts.Min != nil || opts.Max != nil:
		return nil, fmt.Errorf("invalid configuration: -min and -max must be given together")
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	paths := map[string]string{
		"MOD16 input": c.Paths.MOD16,
		"input":       c.Paths.Input,
		"output":      c.Paths.Output,
		"mask":        c.Paths.Mask,
	}
	for name, path := range paths {
		if path == "" {
			return fmt.Errorf("%s path cannot be empty", name)
		}
	}

	// Passes alternate between the two rasters; they must be distinct files.
	if filepath.Clean(c.Paths.Input) == filepath.Clean(c.Paths.Output) {
		return fmt.Errorf("input and output must be different files: %s", c.Paths.Input)
	}

	if c.Run.Passes < 0 || c.Run.Passes > pass.MaxPasses {
		return fmt.Errorf("passes must be between 0 and %d, got %d", pass.MaxPasses, c.Run.Passes)
	}

	if c.Run.Workers < 1 {
		return fmt.Errorf("workers must be positive, got %d", c.Run.Workers)
	}

	if c.Bounds != nil {
		if err := c.Bounds.Validate(); err != nil {
			return err
		}
	}

	if _, ok := format.ParseCompressionType(c.Archive.Compression); !ok {
		return fmt.Errorf("invalid archive compression: %s", c.Archive.Compression)
	}

	if _, ok := logging.ParseLevel(c.Logging.Level); !ok {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	return nil
}

// CompressionType returns the parsed archive compression.
func (c *Config) CompressionType() format.CompressionType {
	typ, _ := format.ParseCompressionType(c.Archive.Compression)
	return typ
}

// Helper functions for environment variable parsing
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntWithDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getBoolWithDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getOverrideOrEnv returns command-line override value, env value, or default
func getOverrideOrEnv(override, envKey, defaultValue string) string {
	if override != "" {
		return override
	}
	return getEnvWithDefault(envKey, defaultValue)
}

func getIntOverrideOrEnv(override *int, envKey string, defaultValue int) int {
	if override != nil {
		return *override
	}
	return getIntWithDefault(envKey, defaultValue)
}
