package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Editor contains timeline and synchronization settings.
type Editor struct {
	// ReadingSpeed is the timeline scale in pixels per millisecond.
	ReadingSpeed      float64 `toml:"reading_speed"`
	DefaultDurationMs int     `toml:"default_duration_ms"`
	FollowIntervalMs  int     `toml:"follow_interval_ms"`
	SpinnerStepMs     int     `toml:"spinner_step_ms"`
	StripOffsetPx     float64 `toml:"strip_offset_px"`
	MinBoxWidthPx     float64 `toml:"min_box_width_px"`
}

// Video contains playback and probing settings.
type Video struct {
	Formats             []string  `toml:"formats"`
	Rates               []float64 `toml:"rates"`
	ProbeCacheTTLSecond int       `toml:"probe_cache_ttl_seconds"`
}

// FFmpeg locates the ffmpeg and ffprobe binaries.
type FFmpeg struct {
	FFmpegPath    string `toml:"ffmpeg_path"`
	FFprobePath   string `toml:"ffprobe_path"`
	CacheDir      string `toml:"cache_dir"`
	AllowDownload bool   `toml:"allow_download"`
}

// Logging contains configuration for log output.
type Logging struct {
	Level      string `toml:"level"`
	Format     string `toml:"format"`
	File       string `toml:"file"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days"`
	Compress   bool   `toml:"compress"`
}

// Providers holds API keys for the AI services.
type Providers struct {
	GeminiAPIKey    string `toml:"gemini_api_key"`
	OpenAIAPIKey    string `toml:"openai_api_key"`
	AnthropicAPIKey string `toml:"anthropic_api_key"`
}

// Transcribe contains speech-to-text settings.
type Transcribe struct {
	Provider           string `toml:"provider"`
	Model              string `toml:"model"`
	Language           string `toml:"language"`
	TranscriptLanguage string `toml:"transcript_language"`
	ChunkMinutes       int    `toml:"chunk_minutes"`
	Concurrency        int    `toml:"concurrency"`
}

// Translate contains caption translation settings.
type Translate struct {
	Provider    string `toml:"provider"`
	Model       string `toml:"model"`
	BatchSize   int    `toml:"batch_size"`
	Concurrency int    `toml:"concurrency"`
}

// Config encapsulates all configuration values for freespeech.
type Config struct {
	Editor     Editor     `toml:"editor"`
	Video      Video      `toml:"video"`
	FFmpeg     FFmpeg     `toml:"ffmpeg"`
	Logging    Logging    `toml:"logging"`
	Providers  Providers  `toml:"providers"`
	Transcribe Transcribe `toml:"transcribe"`
	Translate  Translate  `toml:"translate"`
}

// DefaultConfigPath returns the absolute path of the user config file.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. A missing file
// yields the defaults. It returns the config, the resolved path and whether
// the file existed.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config %s: %w", resolvedPath, err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs(projectConfigName)
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// CreateSample writes the annotated sample configuration to path.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// Encode renders the effective configuration as TOML.
func (c *Config) Encode() (string, error) {
	data, err := toml.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("encode config: %w", err)
	}
	return string(data), nil
}

// DefaultDuration returns the duration given to new timed texts.
func (c *Config) DefaultDuration() time.Duration {
	return time.Duration(c.Editor.DefaultDurationMs) * time.Millisecond
}

// FollowInterval returns the leader polling period.
func (c *Config) FollowInterval() time.Duration {
	return time.Duration(c.Editor.FollowIntervalMs) * time.Millisecond
}

// SpinnerStep returns the time spinner increment.
func (c *Config) SpinnerStep() time.Duration {
	return time.Duration(c.Editor.SpinnerStepMs) * time.Millisecond
}

// ProbeCacheTTL returns how long ffprobe results are kept.
func (c *Config) ProbeCacheTTL() time.Duration {
	return time.Duration(c.Video.ProbeCacheTTLSecond) * time.Second
}

// APIKey returns the configured key for an AI provider.
func (c *Config) APIKey(provider string) string {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "gemini":
		return c.Providers.GeminiAPIKey
	case "openai":
		return c.Providers.OpenAIAPIKey
	case "anthropic":
		return c.Providers.AnthropicAPIKey
	default:
		return ""
	}
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath applies the config path expansion rules.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}
