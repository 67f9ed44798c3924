package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/mgpai22/freespeech/internal/config"
)

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("GEMINI_API_KEY", "env-gemini")
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}
	if want := filepath.Join(tempHome, ".config", "freespeech", "config.toml"); resolved != want {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, want)
	}
	if cfg.Editor.ReadingSpeed != 0.3 {
		t.Fatalf("unexpected reading speed: %v", cfg.Editor.ReadingSpeed)
	}
	if cfg.DefaultDuration() != 2*time.Second {
		t.Fatalf("unexpected default duration: %v", cfg.DefaultDuration())
	}
	if cfg.SpinnerStep() != 5*time.Millisecond {
		t.Fatalf("unexpected spinner step: %v", cfg.SpinnerStep())
	}
	if cfg.Providers.GeminiAPIKey != "env-gemini" {
		t.Fatalf("expected Gemini key from env, got %q", cfg.Providers.GeminiAPIKey)
	}
	if cfg.APIKey("Gemini") != "env-gemini" {
		t.Fatalf("APIKey lookup failed: %q", cfg.APIKey("Gemini"))
	}
	if want := filepath.Join(tempHome, ".cache", "freespeech", "ffmpeg"); cfg.FFmpeg.CacheDir != want {
		t.Fatalf("unexpected ffmpeg cache dir: got %q want %q", cfg.FFmpeg.CacheDir, want)
	}
}

func TestLoadExplicitFile(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "env-openai")
	path := filepath.Join(t.TempDir(), "custom.toml")
	contents := `
[editor]
reading_speed = 0.5
follow_interval_ms = 0

[video]
formats = [".MP4", "mkv", "mp4", ""]

[providers]
openai_api_key = "file-openai"

[translate]
provider = "Anthropic"
`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected explicit path to resolve, got %q exists=%v", resolved, exists)
	}
	if cfg.Editor.ReadingSpeed != 0.5 {
		t.Fatalf("unexpected reading speed: %v", cfg.Editor.ReadingSpeed)
	}
	if cfg.FollowInterval() != 0 {
		t.Fatalf("expected continuous polling, got %v", cfg.FollowInterval())
	}
	if got := strings.Join(cfg.Video.Formats, ","); got != "mp4,mkv" {
		t.Fatalf("unexpected formats: %q", got)
	}
	if cfg.Providers.OpenAIAPIKey != "file-openai" {
		t.Fatalf("file key should win over env, got %q", cfg.Providers.OpenAIAPIKey)
	}
	if cfg.Translate.Provider != "anthropic" {
		t.Fatalf("expected provider normalized, got %q", cfg.Translate.Provider)
	}
	if cfg.Editor.DefaultDurationMs != 2000 {
		t.Fatalf("unset keys should keep defaults, got %d", cfg.Editor.DefaultDurationMs)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(path, []byte("[editor]\nreading_sped = 1\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected unknown key to fail")
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"zero reading speed", func(c *config.Config) { c.Editor.ReadingSpeed = 0 }},
		{"negative duration", func(c *config.Config) { c.Editor.DefaultDurationMs = -1 }},
		{"negative follow interval", func(c *config.Config) { c.Editor.FollowIntervalMs = -5 }},
		{"no formats", func(c *config.Config) { c.Video.Formats = nil }},
		{"bad rate", func(c *config.Config) { c.Video.Rates = []float64{1, 0} }},
		{"bad level", func(c *config.Config) { c.Logging.Level = "loud" }},
		{"bad transcribe provider", func(c *config.Config) { c.Transcribe.Provider = "anthropic" }},
		{"bad batch size", func(c *config.Config) { c.Translate.BatchSize = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}

	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(contents), "your_gemini_api_key_here") {
		t.Fatalf("sample config missing placeholder key: %s", contents)
	}

	var cfg config.Config
	if err := toml.Unmarshal(contents, &cfg); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}
	if cfg.Editor.ReadingSpeed != config.Default().Editor.ReadingSpeed {
		t.Fatalf("sample reading speed drifted from defaults: %v", cfg.Editor.ReadingSpeed)
	}
}

func TestEncodeRoundTrips(t *testing.T) {
	cfg := config.Default()
	encoded, err := cfg.Encode()
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	var decoded config.Config
	if err := toml.Unmarshal([]byte(encoded), &decoded); err != nil {
		t.Fatalf("unmarshal encoded: %v", err)
	}
	if decoded.Translate.BatchSize != cfg.Translate.BatchSize {
		t.Fatalf("batch size lost in encoding: %d", decoded.Translate.BatchSize)
	}
}
