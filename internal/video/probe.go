package video

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/mgpai22/freespeech/internal/logging"
)

// media file information
type Info struct {
	Path      string
	Duration  time.Duration
	Width     int
	Height    int
	FrameRate float64
	Codec     string
	HasVideo  bool
	HasAudio  bool
}

// Ratio returns width over height, or 0 without a video stream.
func (i *Info) Ratio() float64 {
	if i == nil || i.Height == 0 {
		return 0
	}
	return float64(i.Width) / float64(i.Height)
}

// BinaryLocator yields the ffprobe executable.
type BinaryLocator interface {
	FFprobe(ctx context.Context) (string, error)
}

// Prober runs ffprobe and caches results per file version.
type Prober struct {
	binaries BinaryLocator
	cache    *gocache.Cache
	logger   *logging.Logger
	run      func(ctx context.Context, bin string, args ...string) ([]byte, error)
}

// NewProber returns a prober whose results live for ttl. A zero ttl keeps
// them until the process exits.
func NewProber(binaries BinaryLocator, ttl time.Duration, logger *logging.Logger) *Prober {
	if logger == nil {
		logger = logging.Nop()
	}
	expiration := ttl
	if expiration <= 0 {
		expiration = gocache.NoExpiration
	}
	return &Prober{
		binaries: binaries,
		cache:    gocache.New(expiration, 10*time.Minute),
		logger:   logger,
		run:      runCommand,
	}
}

type ffprobeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
	Streams []struct {
		CodecType    string `json:"codec_type"`
		CodecName    string `json:"codec_name"`
		Width        int    `json:"width"`
		Height       int    `json:"height"`
		AvgFrameRate string `json:"avg_frame_rate"`
	} `json:"streams"`
}

// Probe returns information about the media file at path.
func (p *Prober) Probe(ctx context.Context, path string) (*Info, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("media file not found: %w", err)
	}
	if stat.IsDir() {
		return nil, fmt.Errorf("media path %s is a directory", path)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	key := fmt.Sprintf("%s|%d|%d", abs, stat.Size(), stat.ModTime().UnixNano())
	if cached, ok := p.cache.Get(key); ok {
		return cached.(*Info), nil
	}

	bin, err := p.binaries.FFprobe(ctx)
	if err != nil {
		return nil, err
	}

	out, err := p.run(ctx, bin,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		abs,
	)
	if err != nil {
		return nil, fmt.Errorf("ffprobe failed: %w", err)
	}

	info, err := parseProbe(out)
	if err != nil {
		return nil, err
	}
	info.Path = abs

	p.cache.SetDefault(key, info)
	p.logger.Debugw("Probed media", "path", abs, "duration", info.Duration, "codec", info.Codec)
	return info, nil
}

func parseProbe(data []byte) (*Info, error) {
	var probe ffprobeOutput
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}

	seconds, err := strconv.ParseFloat(strings.TrimSpace(probe.Format.Duration), 64)
	if err != nil {
		return nil, fmt.Errorf("failed to parse duration %q: %w", probe.Format.Duration, err)
	}

	info := &Info{Duration: time.Duration(seconds * float64(time.Second))}
	for _, s := range probe.Streams {
		switch s.CodecType {
		case "video":
			if info.HasVideo {
				continue
			}
			info.HasVideo = true
			info.Codec = s.CodecName
			info.Width = s.Width
			info.Height = s.Height
			info.FrameRate = parseRate(s.AvgFrameRate)
		case "audio":
			info.HasAudio = true
		}
	}
	return info, nil
}

// parseRate reads ffprobe rationals like "30000/1001".
func parseRate(s string) float64 {
	num, den, ok := strings.Cut(s, "/")
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0
	}
	if !ok {
		return n
	}
	d, err := strconv.ParseFloat(den, 64)
	if err != nil || d == 0 {
		return 0
	}
	return n / d
}

func runCommand(ctx context.Context, bin string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, bin, args...)
	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}
