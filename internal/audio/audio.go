// Package audio prepares media for transcription: it compresses the audio
// track and cuts it into time-aligned chunks.
package audio

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	"github.com/mgpai22/freespeech/internal/logging"
	"github.com/mgpai22/freespeech/internal/pool"
	"github.com/mgpai22/freespeech/internal/video"
)

// audio chunk info
type ChunkInfo struct {
	Path      string
	Index     int
	StartTime time.Duration
	EndTime   time.Duration
}

// Duration of the chunk.
func (c ChunkInfo) Duration() time.Duration {
	return c.EndTime - c.StartTime
}

// Processor runs ffmpeg jobs over audio files.
type Processor struct {
	binaries video.FFmpegLocator
	prober   video.MediaProber
	logger   *logging.Logger

	// run executes one ffmpeg invocation. Replaced in tests.
	run func(bin, input, output string, kwargs ffmpeg.KwArgs) error
}

func NewProcessor(binaries video.FFmpegLocator, prober video.MediaProber, logger *logging.Logger) *Processor {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Processor{
		binaries: binaries,
		prober:   prober,
		logger:   logger,
		run:      runFFmpeg,
	}
}

func runFFmpeg(bin, input, output string, kwargs ffmpeg.KwArgs) error {
	return ffmpeg.Input(input).
		Output(output, kwargs).
		OverWriteOutput().
		SetFfmpegPath(bin).
		Run()
}

// Duration of an audio or video file.
func (p *Processor) Duration(ctx context.Context, path string) (time.Duration, error) {
	info, err := p.prober.Probe(ctx, path)
	if err != nil {
		return 0, err
	}
	return info.Duration, nil
}

// Prepare writes a compressed mono track of inputPath to outputPath. Video
// inputs lose their picture.
func (p *Processor) Prepare(
	ctx context.Context,
	inputPath, outputPath string,
	opts video.ExtractAudioOptions,
) error {
	if _, err := os.Stat(inputPath); err != nil {
		return fmt.Errorf("input file not found: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	bin, err := p.binaries.FFmpeg(ctx)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	p.logger.Debugw("Compressing audio", "input", inputPath, "output", outputPath, "format", opts.Format)
	if err := p.run(bin, inputPath, outputPath, video.AudioKwArgs(opts)); err != nil {
		return fmt.Errorf("compression failed: %w", err)
	}
	return nil
}

// PlanChunks lays out consecutive chunks of at most chunkDuration covering
// total. The last chunk is shortened to end at total.
func PlanChunks(
	audioPath string,
	total, chunkDuration time.Duration,
	outputDir string,
) ([]ChunkInfo, error) {
	if chunkDuration <= 0 {
		return nil, fmt.Errorf("chunk duration must be positive, got %v", chunkDuration)
	}

	ext := filepath.Ext(audioPath)
	baseName := strings.TrimSuffix(filepath.Base(audioPath), ext)

	var chunks []ChunkInfo
	for i := 0; time.Duration(i)*chunkDuration < total; i++ {
		start := time.Duration(i) * chunkDuration
		chunks = append(chunks, ChunkInfo{
			Path:      filepath.Join(outputDir, fmt.Sprintf("%s_chunk_%03d%s", baseName, i, ext)),
			Index:     i,
			StartTime: start,
			EndTime:   min(start+chunkDuration, total),
		})
	}
	return chunks, nil
}

// Chunk splits audioPath into chunks with at most concurrency ffmpeg
// processes at once.
func (p *Processor) Chunk(
	ctx context.Context,
	audioPath string,
	chunkDuration time.Duration,
	outputDir string,
	concurrency int,
) ([]ChunkInfo, error) {
	if _, err := os.Stat(audioPath); err != nil {
		return nil, fmt.Errorf("audio file not found: %w", err)
	}

	total, err := p.Duration(ctx, audioPath)
	if err != nil {
		return nil, fmt.Errorf("failed to get audio duration: %w", err)
	}

	chunks, err := PlanChunks(audioPath, total, chunkDuration, outputDir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	bin, err := p.binaries.FFmpeg(ctx)
	if err != nil {
		return nil, err
	}

	p.logger.Debugw("Chunking audio", "path", audioPath, "chunks", len(chunks), "duration", total)
	_, err = pool.Map(ctx, chunks, concurrency, func(_ context.Context, _ int, c ChunkInfo) (struct{}, error) {
		kwargs := ffmpeg.KwArgs{
			"ss": c.StartTime.Seconds(),
			"t":  c.Duration().Seconds(),
			"c":  "copy",
		}
		if err := p.run(bin, audioPath, c.Path, kwargs); err != nil {
			return struct{}{}, fmt.Errorf("failed to create chunk %d: %w", c.Index, err)
		}
		return struct{}{}, nil
	})
	if err != nil {
		CleanupChunks(chunks)
		return nil, err
	}
	return chunks, nil
}

// removes all chunk files
func CleanupChunks(chunks []ChunkInfo) error {
	var lastErr error
	for _, chunk := range chunks {
		if err := os.Remove(chunk.Path); err != nil && !os.IsNotExist(err) {
			lastErr = err
		}
	}
	return lastErr
}
