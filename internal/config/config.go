// Package config defines process configuration and its loading.
//
// Conventions:
// - New() returns a Config with defaults; Load layers file and env on top.
// - Validate reports problems wrapped in ErrInvalidConfig.
package config

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/okian/strain/internal/domain/difficulty"
	"github.com/okian/strain/internal/domain/object"
	"github.com/okian/strain/pkg/logger"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log encoding: text or json.
	LogFormat string `koanf:"log_format"`

	// WorkerCount sets the number of rating workers.
	WorkerCount int `koanf:"worker_count"`

	// QueueSize bounds the in-memory job queue.
	QueueSize int `koanf:"queue_size"`

	// DedupeSize bounds the fingerprint cache; 0 is unbounded.
	DedupeSize int `koanf:"dedupe_size"`

	// Mods is a modifier list applied to every chart, e.g. "HD,DT".
	Mods string `koanf:"mods"`

	// RankBy names the skill charts are ranked by.
	RankBy string `koanf:"rank_by"`

	// TopN caps the ranking printed after a run.
	TopN int `koanf:"top_n"`

	// ParallelSkills runs the skill passes of one chart concurrently.
	ParallelSkills bool `koanf:"parallel_skills"`

	// KeepPeaks keeps per-section strain peaks in results.
	KeepPeaks bool `koanf:"keep_peaks"`

	// MetricsOut is a file the metrics text dump is written to on exit.
	MetricsOut string `koanf:"metrics_out"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:    "info",
		LogFormat:   logger.FormatText,
		WorkerCount: runtime.NumCPU(),
		QueueSize:   10_000,
		DedupeSize:  50_000,
		RankBy:      difficulty.SkillAim,
		TopN:        20,
	}
}

// Validate checks values that can be wrong without failing to parse.
func (c *Config) Validate() error {
	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: log_level: %w", ErrInvalidConfig, err)
	}
	switch strings.ToLower(c.LogFormat) {
	case logger.FormatText, logger.FormatJSON:
	default:
		return fmt.Errorf("%w: log_format %q", ErrInvalidConfig, c.LogFormat)
	}
	if c.WorkerCount < 1 {
		return fmt.Errorf("%w: worker_count must be positive, got %d", ErrInvalidConfig, c.WorkerCount)
	}
	if c.QueueSize < 1 {
		return fmt.Errorf("%w: queue_size must be positive, got %d", ErrInvalidConfig, c.QueueSize)
	}
	if c.DedupeSize < 0 {
		return fmt.Errorf("%w: dedupe_size must not be negative, got %d", ErrInvalidConfig, c.DedupeSize)
	}
	if c.TopN < 1 {
		return fmt.Errorf("%w: top_n must be positive, got %d", ErrInvalidConfig, c.TopN)
	}
	if !difficulty.IsSkill(c.RankBy) {
		return fmt.Errorf("%w: rank_by %q", ErrInvalidConfig, c.RankBy)
	}
	if _, err := c.ParsedMods(); err != nil {
		return fmt.Errorf("%w: mods: %w", ErrInvalidConfig, err)
	}
	return nil
}

// ParsedMods parses the Mods list.
func (c *Config) ParsedMods() (object.Mods, error) {
	return object.ParseMods(c.Mods)
}
