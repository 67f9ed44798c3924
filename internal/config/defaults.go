package config

const (
	defaultConfigPath       = "~/.config/freespeech/config.toml"
	projectConfigName       = "freespeech.toml"
	defaultReadingSpeed     = 0.3
	defaultDurationMs       = 2000
	defaultFollowIntervalMs = 15
	defaultSpinnerStepMs    = 5
	defaultStripOffsetPx    = 200
	defaultMinBoxWidthPx    = 40
	defaultProbeCacheTTL    = 300
	defaultFFmpegCacheDir   = "~/.cache/freespeech/ffmpeg"
	defaultLogLevel         = "info"
	defaultLogFormat        = "console"
	defaultLogMaxSizeMB     = 10
	defaultLogMaxBackups    = 5
	defaultLogMaxAgeDays    = 30
	defaultTranscriptLang   = "native"
	defaultChunkMinutes     = 1
	defaultConcurrency      = 3
	defaultTranslateBatch   = 50
	defaultProvider         = "gemini"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Editor: Editor{
			ReadingSpeed:      defaultReadingSpeed,
			DefaultDurationMs: defaultDurationMs,
			FollowIntervalMs:  defaultFollowIntervalMs,
			SpinnerStepMs:     defaultSpinnerStepMs,
			StripOffsetPx:     defaultStripOffsetPx,
			MinBoxWidthPx:     defaultMinBoxWidthPx,
		},
		Video: Video{
			Formats:             []string{"mp4"},
			Rates:               []float64{0.5, 1.0, 2.0},
			ProbeCacheTTLSecond: defaultProbeCacheTTL,
		},
		FFmpeg: FFmpeg{
			CacheDir:      defaultFFmpegCacheDir,
			AllowDownload: true,
		},
		Logging: Logging{
			Level:      defaultLogLevel,
			Format:     defaultLogFormat,
			MaxSizeMB:  defaultLogMaxSizeMB,
			MaxBackups: defaultLogMaxBackups,
			MaxAgeDays: defaultLogMaxAgeDays,
		},
		Transcribe: Transcribe{
			Provider:           defaultProvider,
			TranscriptLanguage: defaultTranscriptLang,
			ChunkMinutes:       defaultChunkMinutes,
			Concurrency:        defaultConcurrency,
		},
		Translate: Translate{
			Provider:    defaultProvider,
			BatchSize:   defaultTranslateBatch,
			Concurrency: defaultConcurrency,
		},
	}
}
