package cli

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mgpai22/freespeech/internal/video"
	"github.com/spf13/cobra"
)

var probeCmd = &cobra.Command{
	Use:   "probe [media_file | document]",
	Short: "Show stream information for a video or a document's videos",
	Long: `Run ffprobe on a media file, or on every candidate video of a .fsw
document, and print what was found. For a document the candidate that
playback would use is marked.

Examples:
  freespeech probe talk.mp4
  freespeech probe talk.fsw`,
	Args: cobra.ExactArgs(1),
	RunE: runProbe,
}

var extractCmd = &cobra.Command{
	Use:   "extract [video_file]",
	Short: "Extract audio from a video file",
	Long: `Extract the audio track from a video file and save it as a separate audio file.

Supports multiple output formats: wav, mp3, aac, flac.

Examples:
  freespeech extract video.mp4
  freespeech extract video.mp4 -o audio.mp3 -f mp3
  freespeech extract video.mp4 --format wav --sample-rate 44100 --channels 2`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(probeCmd, extractCmd)

	extractCmd.Flags().
		StringP("output", "o", "", "Output file path")
	extractCmd.Flags().
		StringP("format", "f", "wav", "Output audio format (wav, mp3, aac, flac)")
	extractCmd.Flags().
		IntP("sample-rate", "r", 16000, "Sample rate in Hz (e.g., 16000, 44100, 48000)")
	extractCmd.Flags().
		Int("channels", 1, "Number of audio channels (1=mono, 2=stereo)")
	extractCmd.Flags().
		StringP("bitrate", "b", "", "Bitrate for lossy formats (e.g., 128k, 320k)")
}

func runProbe(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	target := args[0]
	prober := newProber(newLocator())
	out := cmd.OutOrStdout()

	if !strings.EqualFold(filepath.Ext(target), ".fsw") {
		info, err := prober.Probe(ctx, target)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, infoTable(out, []*video.Info{info}, ""))
		return nil
	}

	s, err := newSession(ctx)
	if err != nil {
		return err
	}
	defer s.close()

	doc, err := s.open(ctx, target)
	if err != nil {
		return err
	}

	resolver := video.NewResolver(prober, cfg.Video.Formats, logger)
	var infos []*video.Info
	for _, path := range resolver.Candidates(doc) {
		info, err := prober.Probe(ctx, path)
		if err != nil {
			logger.Debugw("Probe failed", "path", path, "error", err)
			infos = append(infos, &video.Info{Path: path})
			continue
		}
		infos = append(infos, info)
	}

	chosen := ""
	src, err := resolver.Resolve(ctx, doc)
	switch {
	case err == nil:
		chosen = src.Path
	case errors.Is(err, video.ErrNoVideo):
		notify(cmd.ErrOrStderr(), "no playable video for %s", doc.Pathname())
	default:
		return err
	}

	fmt.Fprintln(out, infoTable(out, infos, chosen))
	return nil
}

func infoTable(out io.Writer, infos []*video.Info, chosen string) string {
	rows := make([][]string, 0, len(infos))
	for _, info := range infos {
		mark := ""
		if chosen != "" && info.Path == chosen {
			mark = "*"
		}
		if info.Duration == 0 && !info.HasVideo && !info.HasAudio {
			rows = append(rows, []string{mark, info.Path, "unavailable", "", "", ""})
			continue
		}
		size := ""
		if info.HasVideo {
			size = fmt.Sprintf("%dx%d", info.Width, info.Height)
		}
		rows = append(rows, []string{
			mark,
			info.Path,
			info.Duration.String(),
			size,
			strconv.FormatFloat(info.FrameRate, 'f', 2, 64),
			info.Codec,
		})
	}
	return renderTable(out,
		[]string{"", "Path", "Duration", "Size", "FPS", "Codec"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight, alignLeft},
	)
}

func runExtract(cmd *cobra.Command, args []string) error {
	videoPath := args[0]

	format, _ := cmd.Flags().GetString("format")
	sampleRate, _ := cmd.Flags().GetInt("sample-rate")
	channels, _ := cmd.Flags().GetInt("channels")
	bitrate, _ := cmd.Flags().GetString("bitrate")
	outputPath, _ := cmd.Flags().GetString("output")

	validFormats := map[string]bool{
		"wav":  true,
		"mp3":  true,
		"aac":  true,
		"flac": true,
	}
	if !validFormats[format] {
		return fmt.Errorf(
			"invalid format %q: supported formats are wav, mp3, aac, flac",
			format,
		)
	}
	if !video.IsVideoFile(videoPath) {
		return fmt.Errorf("unsupported file type: %s (expected a video file)", filepath.Ext(videoPath))
	}

	if outputPath == "" {
		outputPath = strings.TrimSuffix(videoPath, filepath.Ext(videoPath)) + "." + format
	}

	logger.Infow("Extracting audio",
		"video", videoPath,
		"output", outputPath,
		"format", format,
		"sample_rate", sampleRate,
		"channels", channels,
	)

	opts := video.ExtractAudioOptions{
		Format:     format,
		SampleRate: sampleRate,
		Channels:   channels,
		Bitrate:    bitrate,
	}

	if err := video.ExtractAudio(commandContext(cmd), newLocator(), videoPath, outputPath, opts); err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}

	absOutput, _ := filepath.Abs(outputPath)
	acknowledge(cmd.OutOrStdout(), "Audio extracted successfully: %s", absOutput)
	return nil
}
