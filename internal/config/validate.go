package config

import (
	"errors"
	"fmt"
	"math"
	"slices"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateEditor(); err != nil {
		return err
	}
	if err := c.validateVideo(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	if err := c.validateAI(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateEditor() error {
	speed := c.Editor.ReadingSpeed
	if speed <= 0 || math.IsNaN(speed) || math.IsInf(speed, 0) {
		return errors.New("editor.reading_speed must be a positive number")
	}
	if c.Editor.DefaultDurationMs <= 0 {
		return errors.New("editor.default_duration_ms must be positive")
	}
	if c.Editor.FollowIntervalMs < 0 {
		return errors.New("editor.follow_interval_ms must be zero or positive")
	}
	if c.Editor.SpinnerStepMs <= 0 {
		return errors.New("editor.spinner_step_ms must be positive")
	}
	if c.Editor.StripOffsetPx < 0 {
		return errors.New("editor.strip_offset_px must be zero or positive")
	}
	if c.Editor.MinBoxWidthPx < 0 {
		return errors.New("editor.min_box_width_px must be zero or positive")
	}
	return nil
}

func (c *Config) validateVideo() error {
	if len(c.Video.Formats) == 0 {
		return errors.New("video.formats must list at least one extension")
	}
	if len(c.Video.Rates) == 0 {
		return errors.New("video.rates must list at least one playback rate")
	}
	for _, r := range c.Video.Rates {
		if r <= 0 {
			return fmt.Errorf("video.rates: %v is not a positive rate", r)
		}
	}
	if c.Video.ProbeCacheTTLSecond < 0 {
		return errors.New("video.probe_cache_ttl_seconds must be zero or positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	return nil
}

var (
	transcribeProviders = []string{"gemini", "openai"}
	translateProviders  = []string{"gemini", "openai", "anthropic"}
)

func (c *Config) validateAI() error {
	if !slices.Contains(transcribeProviders, c.Transcribe.Provider) {
		return fmt.Errorf("transcribe.provider: unsupported value %q", c.Transcribe.Provider)
	}
	if c.Transcribe.ChunkMinutes <= 0 {
		return errors.New("transcribe.chunk_minutes must be positive")
	}
	if c.Transcribe.Concurrency <= 0 {
		return errors.New("transcribe.concurrency must be positive")
	}
	if !slices.Contains(translateProviders, c.Translate.Provider) {
		return fmt.Errorf("translate.provider: unsupported value %q", c.Translate.Provider)
	}
	if c.Translate.BatchSize <= 0 {
		return errors.New("translate.batch_size must be positive")
	}
	if c.Translate.Concurrency <= 0 {
		return errors.New("translate.concurrency must be positive")
	}
	return nil
}
