package config

import (
	"testing"

	"github.com/baseline-eto/petfill/errs"
	"github.com/baseline-eto/petfill/format"
	"github.com/baseline-eto/petfill/scan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"PETFILL_MOD16", "PETFILL_INPUT", "PETFILL_OUTPUT", "PETFILL_MASK",
	"PETFILL_PASSES", "PETFILL_WORKERS", "PETFILL_FULL_ROW_SCAN", "PETFILL_STOP_WHEN_STABLE",
	"PETFILL_ARCHIVE", "PETFILL_ARCHIVE_COMPRESSION", "PETFILL_LOG_LEVEL",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range envKeys {
		t.Setenv(key, "")
	}
}

func ptr[T any](v T) *T { return &v }

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		envVars map[string]string
		want    *Config
	}{
		{
			name:    "default configuration",
			envVars: map[string]string{},
			want: &Config{
				Paths: PathsConfig{
					MOD16:  "MOD16A3_PET_2000_to_2013_mean.bin",
					Input:  "Baseline_ETo_Data_Reduced.bin",
					Output: "Baseline_ETo_Data.bin",
					Mask:   "Ocean_Mask.bin",
				},
				Run:     RunConfig{Passes: 20, Workers: 1, StopWhenStable: true},
				Archive: ArchiveConfig{Compression: "zstd"},
				Logging: LoggingConfig{Level: "info"},
			},
		},
		{
			name: "custom environment variables",
			envVars: map[string]string{
				"PETFILL_MOD16":               "/data/pet.bin",
				"PETFILL_INPUT":               "/tmp/reduced.bin",
				"PETFILL_OUTPUT":              "/tmp/final.bin",
				"PETFILL_MASK":                "/data/mask.bin",
				"PETFILL_PASSES":              "5",
				"PETFILL_WORKERS":             "8",
				"PETFILL_FULL_ROW_SCAN":       "true",
				"PETFILL_STOP_WHEN_STABLE":    "false",
				"PETFILL_ARCHIVE":             "/tmp/final.bin.lz4",
				"PETFILL_ARCHIVE_COMPRESSION": "lz4",
				"PETFILL_LOG_LEVEL":           "debug",
			},
			want: &Config{
				Paths:   PathsConfig{MOD16: "/data/pet.bin", Input: "/tmp/reduced.bin", Output: "/tmp/final.bin", Mask: "/data/mask.bin"},
				Run:     RunConfig{Passes: 5, Workers: 8, FullRowScan: true},
				Archive: ArchiveConfig{Path: "/tmp/final.bin.lz4", Compression: "lz4"},
				Logging: LoggingConfig{Level: "debug"},
			},
		},
		{
			name:    "malformed numbers fall back to defaults",
			envVars: map[string]string{"PETFILL_PASSES": "many", "PETFILL_FULL_ROW_SCAN": "maybe"},
			want: &Config{
				Paths: PathsConfig{
					MOD16:  DefaultMOD16,
					Input:  DefaultInput,
					Output: DefaultOutput,
					Mask:   DefaultMask,
				},
				Run:     RunConfig{Passes: 20, Workers: 1, StopWhenStable: true},
				Archive: ArchiveConfig{Compression: "zstd"},
				Logging: LoggingConfig{Level: "info"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for key, value := range tt.envVars {
				t.Setenv(key, value)
			}

			got, err := Load()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadWithOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PETFILL_PASSES", "7")
	t.Setenv("PETFILL_LOG_LEVEL", "warn")

	got, err := LoadWithOverrides(LoadOptions{
		Output:         "out.bin",
		Passes:         ptr(0),
		StopWhenStable: ptr(false),
		Clean:          true,
		Min:            ptr(uint32(12)),
		Max:            ptr(uint32(4000)),
		Compression:    "s2",
	})
	require.NoError(t, err)

	assert.Equal(t, "out.bin", got.Paths.Output)
	assert.Equal(t, DefaultInput, got.Paths.Input)
	assert.Equal(t, 0, got.Run.Passes)
	assert.False(t, got.Run.StopWhenStable)
	assert.True(t, got.Run.Clean)
	assert.Equal(t, &scan.Bounds{Min: 12, Max: 4000}, got.Bounds)
	assert.Equal(t, format.CompressionS2, got.CompressionType())
	assert.Equal(t, "warn", got.Logging.Level)
}

func TestLoadWithOverrides_Invalid(t *testing.T) {
	tests := []struct {
		name string
		opts LoadOptions
		env  map[string]string
		msg  string
	}{
		{"min without max", LoadOptions{Min: ptr(uint32(1))}, nil, "-min and -max"},
		{"max without min", LoadOptions{Max: ptr(uint32(1))}, nil, "-min and -max"},
		{"max below min", LoadOptions{Min: ptr(uint32(9)), Max: ptr(uint32(3))}, nil, "maximum is below minimum"},
		{"same input and output", LoadOptions{Input: "a.bin", Output: "./a.bin"}, nil, "must be different"},
		{"negative passes", LoadOptions{Passes: ptr(-1)}, nil, "passes"},
		{"too many passes", LoadOptions{Passes: ptr(5000)}, nil, "passes"},
		{"no workers", LoadOptions{Workers: ptr(0)}, nil, "workers"},
		{"unknown compression", LoadOptions{Compression: "brotli"}, nil, "compression"},
		{"unknown log level", LoadOptions{}, map[string]string{"PETFILL_LOG_LEVEL": "loud"}, "log level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for key, value := range tt.env {
				t.Setenv(key, value)
			}

			_, err := LoadWithOverrides(tt.opts)
			require.Error(t, err)
			require.Contains(t, err.Error(), "invalid configuration")
			require.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestValidate_Bounds(t *testing.T) {
	clearEnv(t)

	c, err := Load()
	require.NoError(t, err)

	c.Bounds = &scan.Bounds{Min: 10, Max: 5}
	require.ErrorIs(t, c.Validate(), errs.ErrInvalidBounds)

	c.Bounds = &scan.Bounds{Min: 5, Max: 5}
	require.NoError(t, c.Validate())
}
