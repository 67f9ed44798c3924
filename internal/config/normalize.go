package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	c.normalizeVideo()
	if err := c.normalizeFFmpeg(); err != nil {
		return err
	}
	if err := c.normalizeLogging(); err != nil {
		return err
	}
	c.normalizeProviders()
	c.normalizeAI()
	return nil
}

func (c *Config) normalizeVideo() {
	formats := make([]string, 0, len(c.Video.Formats))
	seen := make(map[string]struct{}, len(c.Video.Formats))
	for _, f := range c.Video.Formats {
		f = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(f), "."))
		if f == "" {
			continue
		}
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		formats = append(formats, f)
	}
	c.Video.Formats = formats
}

func (c *Config) normalizeFFmpeg() error {
	if value, ok := os.LookupEnv("FREESPEECH_FFMPEG_PATH"); ok && c.FFmpeg.FFmpegPath == "" {
		c.FFmpeg.FFmpegPath = value
	}
	if value, ok := os.LookupEnv("FREESPEECH_FFPROBE_PATH"); ok && c.FFmpeg.FFprobePath == "" {
		c.FFmpeg.FFprobePath = value
	}

	var err error
	if c.FFmpeg.FFmpegPath, err = expandPath(strings.TrimSpace(c.FFmpeg.FFmpegPath)); err != nil {
		return fmt.Errorf("ffmpeg.ffmpeg_path: %w", err)
	}
	if c.FFmpeg.FFprobePath, err = expandPath(strings.TrimSpace(c.FFmpeg.FFprobePath)); err != nil {
		return fmt.Errorf("ffmpeg.ffprobe_path: %w", err)
	}
	if strings.TrimSpace(c.FFmpeg.CacheDir) == "" {
		c.FFmpeg.CacheDir = defaultFFmpegCacheDir
	}
	if c.FFmpeg.CacheDir, err = expandPath(c.FFmpeg.CacheDir); err != nil {
		return fmt.Errorf("ffmpeg.cache_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() error {
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	var err error
	if c.Logging.File, err = expandPath(strings.TrimSpace(c.Logging.File)); err != nil {
		return fmt.Errorf("logging.file: %w", err)
	}
	return nil
}

func (c *Config) normalizeProviders() {
	envKeys := []struct {
		name  string
		value *string
	}{
		{"GEMINI_API_KEY", &c.Providers.GeminiAPIKey},
		{"OPENAI_API_KEY", &c.Providers.OpenAIAPIKey},
		{"ANTHROPIC_API_KEY", &c.Providers.AnthropicAPIKey},
	}
	for _, key := range envKeys {
		*key.value = strings.TrimSpace(*key.value)
		if *key.value != "" {
			continue
		}
		if value, ok := os.LookupEnv(key.name); ok {
			*key.value = strings.TrimSpace(value)
		}
	}
}

func (c *Config) normalizeAI() {
	c.Transcribe.Provider = strings.ToLower(strings.TrimSpace(c.Transcribe.Provider))
	if c.Transcribe.Provider == "" {
		c.Transcribe.Provider = defaultProvider
	}
	c.Transcribe.TranscriptLanguage = strings.TrimSpace(c.Transcribe.TranscriptLanguage)
	if c.Transcribe.TranscriptLanguage == "" {
		c.Transcribe.TranscriptLanguage = defaultTranscriptLang
	}
	c.Translate.Provider = strings.ToLower(strings.TrimSpace(c.Translate.Provider))
	if c.Translate.Provider == "" {
		c.Translate.Provider = defaultProvider
	}
}
