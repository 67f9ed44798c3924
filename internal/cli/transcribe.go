package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mgpai22/freespeech/internal/audio"
	"github.com/mgpai22/freespeech/internal/subtitle"
	"github.com/mgpai22/freespeech/internal/transcribe"
	"github.com/mgpai22/freespeech/internal/video"
	"github.com/spf13/cobra"
)

var transcribeCmd = &cobra.Command{
	Use:   "transcribe [document]",
	Short: "Fill a track with timed texts transcribed from the video's audio",
	Long: `Transcribe the audio of the document's video (or --media) with AI and add
the result to a track as caption-sized timed texts.

The audio is compressed, split into chunks (default 1 minute) and the
chunks are transcribed in parallel with Google Gemini or OpenAI. Settings
not given as flags come from the [transcribe] section of the config.

Examples:
  freespeech transcribe talk
  freespeech transcribe talk --media talk.mp3 --provider openai
  freespeech transcribe talk --track 1 --transcript-language english --replace`,
	Args: cobra.ExactArgs(1),
	RunE: runTranscribe,
}

func init() {
	rootCmd.AddCommand(transcribeCmd)

	transcribeCmd.Flags().
		String("media", "", "Audio or video file (default the document's video)")
	transcribeCmd.Flags().
		String("provider", "", "Transcription provider (gemini, openai)")
	transcribeCmd.Flags().
		StringP("api-key", "k", "", "API key (or set GEMINI_API_KEY/OPENAI_API_KEY env var)")
	transcribeCmd.Flags().
		String("model", "", "Model to use for transcription (provider default when empty)")
	transcribeCmd.Flags().
		StringP("language", "l", "", "Language code of the audio (e.g., en, es, fr)")
	transcribeCmd.Flags().
		String("transcript-language", "", "Output language for transcript (e.g., 'english', or 'native' for original language)")
	transcribeCmd.Flags().
		IntP("chunk-duration", "d", 0, "Chunk duration in minutes for splitting audio")
	transcribeCmd.Flags().
		Int("concurrency", 0, "Number of parallel transcription workers")
	transcribeCmd.Flags().
		Int("track", 0, "Track to fill")
	transcribeCmd.Flags().
		Bool("replace", false, "Remove the existing texts of the track first")
}

// transcribeSettings merges flags over the config file.
type transcribeSettings struct {
	media         string
	provider      transcribe.Provider
	apiKey        string
	opts          transcribe.Options
	chunkDuration time.Duration
	concurrency   int
	track         int
	replace       bool
}

func readTranscribeSettings(cmd *cobra.Command) (transcribeSettings, error) {
	flags := cmd.Flags()
	c := cfg.Transcribe

	st := transcribeSettings{
		provider: transcribe.Provider(c.Provider),
		opts: transcribe.Options{
			Language:           c.Language,
			TranscriptLanguage: c.TranscriptLanguage,
			Model:              c.Model,
		},
		chunkDuration: time.Duration(c.ChunkMinutes) * time.Minute,
		concurrency:   c.Concurrency,
	}

	st.media, _ = flags.GetString("media")
	st.track, _ = flags.GetInt("track")
	st.replace, _ = flags.GetBool("replace")
	if v, _ := flags.GetString("provider"); v != "" {
		st.provider = transcribe.Provider(v)
	}
	if v, _ := flags.GetString("model"); v != "" {
		st.opts.Model = v
	}
	if v, _ := flags.GetString("language"); v != "" {
		st.opts.Language = v
	}
	if v, _ := flags.GetString("transcript-language"); v != "" {
		st.opts.TranscriptLanguage = v
	}
	if v, _ := flags.GetInt("chunk-duration"); v > 0 {
		st.chunkDuration = time.Duration(v) * time.Minute
	}
	if v, _ := flags.GetInt("concurrency"); v > 0 {
		st.concurrency = v
	}

	if st.track < 0 {
		return st, fmt.Errorf("track must not be negative")
	}
	if st.provider == transcribe.ProviderOpenAI &&
		!transcribe.ValidOpenAITranscriptLanguage(st.opts.TranscriptLanguage) {
		return st, fmt.Errorf(
			"openai provider only supports 'native' or 'english' transcript language, got %q",
			st.opts.TranscriptLanguage,
		)
	}

	flagKey, _ := flags.GetString("api-key")
	key, err := apiKey(string(st.provider), flagKey)
	if err != nil {
		return st, err
	}
	st.apiKey = key
	return st, nil
}

func runTranscribe(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	st, err := readTranscribeSettings(cmd)
	if err != nil {
		return err
	}

	s, err := newSession(ctx)
	if err != nil {
		return err
	}
	defer s.close()

	doc, err := s.open(ctx, args[0])
	if err != nil {
		return err
	}

	locator := newLocator()
	prober := newProber(locator)

	mediaPath := st.media
	if mediaPath == "" {
		src, err := video.NewResolver(prober, cfg.Video.Formats, logger).Resolve(ctx, doc)
		if errors.Is(err, video.ErrNoVideo) {
			return fmt.Errorf("no playable video in %s: pass --media", doc.Pathname())
		}
		if err != nil {
			return err
		}
		mediaPath = src.Path
	}
	if !video.IsMediaFile(mediaPath) {
		return fmt.Errorf("unsupported file type: %s (expected audio or video file)", filepath.Ext(mediaPath))
	}

	logger.Infow("Starting transcription",
		"document", doc.Pathname(),
		"media", mediaPath,
		"provider", st.provider,
		"chunk_duration", st.chunkDuration.String(),
		"concurrency", st.concurrency,
	)

	tempDir, err := os.MkdirTemp("", "freespeech-*")
	if err != nil {
		return fmt.Errorf("failed to create temp directory: %w", err)
	}
	defer os.RemoveAll(tempDir)

	processor := audio.NewProcessor(locator, prober, logger)
	audioPath := filepath.Join(tempDir, "audio.mp3")

	logger.Infow("Preparing audio for transcription")
	if err := processor.Prepare(ctx, mediaPath, audioPath, video.DefaultExtractAudioOptions()); err != nil {
		return fmt.Errorf("failed to prepare audio: %w", err)
	}

	chunks, err := processor.Chunk(ctx, audioPath, st.chunkDuration, filepath.Join(tempDir, "chunks"), st.concurrency)
	if err != nil {
		return fmt.Errorf("failed to split audio: %w", err)
	}
	logger.Infow("Created audio chunks", "count", len(chunks))

	transcriber, err := transcribe.Factory(ctx, st.provider, st.apiKey, st.opts)
	if err != nil {
		return fmt.Errorf("failed to create transcriber: %w", err)
	}

	result, err := transcribe.TranscribeChunks(ctx, transcriber, chunks, st.concurrency)
	if err != nil {
		return fmt.Errorf("transcription failed: %w", err)
	}
	logger.Infow("Transcription complete", "segments", len(result.Segments))

	var added int
	err = s.do(ctx, func() error {
		if st.replace {
			if err := clearTrack(doc, st.track); err != nil {
				return err
			}
		}
		added, err = transcribe.Apply(doc, st.track, result, subtitle.NewSegmenter())
		if err != nil {
			return err
		}
		return s.op.Save(doc)
	})
	if err != nil {
		return err
	}

	acknowledge(cmd.OutOrStdout(), "Transcribed %s into track %d of %s", mediaPath, st.track, doc.Pathname())
	fmt.Fprintf(cmd.OutOrStdout(), "  Texts: %d\n", added)
	fmt.Fprintf(cmd.OutOrStdout(), "  Duration: %s\n", result.Duration.String())
	return nil
}
