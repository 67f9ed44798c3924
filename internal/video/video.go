// Package video resolves a document's video references, probes media with
// ffprobe, extracts audio with ffmpeg and models the playback clock the
// editor follows.
package video

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// FFmpegLocator yields the ffmpeg executable.
type FFmpegLocator interface {
	FFmpeg(ctx context.Context) (string, error)
}

// holds options for audio extraction
type ExtractAudioOptions struct {
	Format     string // wav, mp3, aac or flac
	SampleRate int    // Hz
	Channels   int
	Bitrate    string // lossy formats only, e.g. "64k"
}

// defaults suited to speech transcription
func DefaultExtractAudioOptions() ExtractAudioOptions {
	return ExtractAudioOptions{
		Format:     "mp3",
		SampleRate: 16000,
		Channels:   1,
		Bitrate:    "64k",
	}
}

// ExtractAudio writes the audio track of videoPath to outputPath.
func ExtractAudio(
	ctx context.Context,
	binaries FFmpegLocator,
	videoPath, outputPath string,
	opts ExtractAudioOptions,
) error {
	if _, err := os.Stat(videoPath); err != nil {
		return fmt.Errorf("video file not found: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	bin, err := binaries.FFmpeg(ctx)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	err = ffmpeg.Input(videoPath).
		Output(outputPath, AudioKwArgs(opts)).
		OverWriteOutput().
		SetFfmpegPath(bin).
		Run()
	if err != nil {
		return fmt.Errorf("ffmpeg extraction failed: %w", err)
	}
	return nil
}

// AudioKwArgs maps extraction options to ffmpeg output arguments.
func AudioKwArgs(opts ExtractAudioOptions) ffmpeg.KwArgs {
	kwargs := ffmpeg.KwArgs{
		"vn": "",
		"ar": opts.SampleRate,
		"ac": opts.Channels,
	}

	switch strings.ToLower(opts.Format) {
	case "mp3":
		kwargs["acodec"] = "libmp3lame"
	case "aac":
		kwargs["acodec"] = "aac"
	case "flac":
		kwargs["acodec"] = "flac"
	default:
		kwargs["acodec"] = "pcm_s16le"
	}
	if opts.Bitrate != "" && (kwargs["acodec"] == "libmp3lame" || kwargs["acodec"] == "aac") {
		kwargs["b:a"] = opts.Bitrate
	}
	return kwargs
}

var videoExts = map[string]bool{
	".mp4": true, ".mkv": true, ".avi": true, ".mov": true, ".wmv": true,
	".flv": true, ".webm": true, ".m4v": true, ".mpeg": true, ".mpg": true,
	".3gp": true,
}

var audioExts = map[string]bool{
	".mp3": true, ".wav": true, ".aac": true, ".flac": true, ".ogg": true,
	".m4a": true, ".wma": true, ".aiff": true,
}

// checks if the file is a video based on extension
func IsVideoFile(path string) bool {
	return videoExts[strings.ToLower(filepath.Ext(path))]
}

// checks if the file is an audio file based on extension
func IsAudioFile(path string) bool {
	return audioExts[strings.ToLower(filepath.Ext(path))]
}

func IsMediaFile(path string) bool {
	return IsAudioFile(path) || IsVideoFile(path)
}
