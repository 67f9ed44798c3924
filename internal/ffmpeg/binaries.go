// Package ffmpeg finds, and when allowed downloads, the ffmpeg and ffprobe
// binaries used for probing and audio extraction.
package ffmpeg

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/mgpai22/freespeech/internal/logging"
)

const (
	releaseVersion = "6.1"
	releaseBaseURL = "https://github.com/ffbinaries/ffbinaries-prebuilt/releases/download"
)

// ErrNotFound is returned when the binaries are missing and downloading is
// disabled.
var ErrNotFound = errors.New("ffmpeg binaries not found")

type BinaryPaths struct {
	FFmpeg  string
	FFprobe string
}

// Options configures a Locator. Empty explicit paths fall back to $PATH,
// then to the download cache.
type Options struct {
	FFmpegPath    string
	FFprobePath   string
	CacheDir      string
	AllowDownload bool
	BaseURL       string
	Client        *http.Client
	Logger        *logging.Logger
}

// Locator resolves binary paths once and remembers the outcome.
type Locator struct {
	opts Options

	once  sync.Once
	paths BinaryPaths
	err   error
}

func NewLocator(opts Options) *Locator {
	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}
	if opts.BaseURL == "" {
		opts.BaseURL = releaseBaseURL
	}
	if opts.Client == nil {
		opts.Client = &http.Client{Timeout: 5 * time.Minute}
	}
	if opts.CacheDir == "" {
		cacheDir, err := os.UserCacheDir()
		if err != nil || cacheDir == "" {
			cacheDir = os.TempDir()
		}
		opts.CacheDir = filepath.Join(cacheDir, "freespeech", "ffmpeg")
	}
	return &Locator{opts: opts}
}

// Paths returns both binaries, resolving them on first use.
func (l *Locator) Paths(ctx context.Context) (BinaryPaths, error) {
	l.once.Do(func() {
		l.paths, l.err = l.resolve(ctx)
		if l.err == nil {
			l.opts.Logger.Debugw("Resolved ffmpeg binaries",
				"ffmpeg", l.paths.FFmpeg,
				"ffprobe", l.paths.FFprobe,
			)
		}
	})
	return l.paths, l.err
}

func (l *Locator) FFmpeg(ctx context.Context) (string, error) {
	paths, err := l.Paths(ctx)
	if err != nil {
		return "", err
	}
	return paths.FFmpeg, nil
}

func (l *Locator) FFprobe(ctx context.Context) (string, error) {
	paths, err := l.Paths(ctx)
	if err != nil {
		return "", err
	}
	return paths.FFprobe, nil
}

func (l *Locator) resolve(ctx context.Context) (BinaryPaths, error) {
	paths := BinaryPaths{FFmpeg: l.opts.FFmpegPath, FFprobe: l.opts.FFprobePath}
	if paths.FFmpeg == "" {
		if found, err := exec.LookPath("ffmpeg"); err == nil {
			paths.FFmpeg = found
		}
	}
	if paths.FFprobe == "" {
		if found, err := exec.LookPath("ffprobe"); err == nil {
			paths.FFprobe = found
		}
	}
	if paths.FFmpeg != "" && paths.FFprobe != "" {
		return paths, nil
	}

	installDir := filepath.Join(l.opts.CacheDir, releaseVersion, runtime.GOOS, runtime.GOARCH)
	cached := BinaryPaths{
		FFmpeg:  filepath.Join(installDir, "ffmpeg"+executableSuffix()),
		FFprobe: filepath.Join(installDir, "ffprobe"+executableSuffix()),
	}
	if cached.exist() {
		return paths.fill(cached), nil
	}

	if !l.opts.AllowDownload {
		return BinaryPaths{}, fmt.Errorf("%w: set ffmpeg.ffmpeg_path and ffmpeg.ffprobe_path or enable ffmpeg.allow_download", ErrNotFound)
	}

	asset, err := assetForPlatform(runtime.GOOS, runtime.GOARCH)
	if err != nil {
		return BinaryPaths{}, err
	}
	if err := os.MkdirAll(installDir, 0o755); err != nil {
		return BinaryPaths{}, fmt.Errorf("create ffmpeg cache dir: %w", err)
	}

	l.opts.Logger.Infow("Downloading ffmpeg", "asset", asset, "dir", installDir)
	if err := l.download(ctx, asset, installDir); err != nil {
		return BinaryPaths{}, err
	}
	if !cached.exist() {
		return BinaryPaths{}, errors.New("ffmpeg binaries not found after extraction")
	}
	if runtime.GOOS != "windows" {
		for _, p := range []string{cached.FFmpeg, cached.FFprobe} {
			if err := os.Chmod(p, 0o755); err != nil {
				return BinaryPaths{}, fmt.Errorf("chmod %s: %w", filepath.Base(p), err)
			}
		}
	}
	return paths.fill(cached), nil
}

// fill keeps explicitly found entries and takes the rest from other.
func (p BinaryPaths) fill(other BinaryPaths) BinaryPaths {
	if p.FFmpeg == "" {
		p.FFmpeg = other.FFmpeg
	}
	if p.FFprobe == "" {
		p.FFprobe = other.FFprobe
	}
	return p
}

func (p BinaryPaths) exist() bool {
	return fileExists(p.FFmpeg) && fileExists(p.FFprobe)
}

func assetForPlatform(goos, goarch string) (string, error) {
	prefix := "ffmpeg-" + releaseVersion + "-"
	switch {
	case goos == "linux" && goarch == "amd64":
		return prefix + "linux-64.zip", nil
	case goos == "linux" && goarch == "arm64":
		return prefix + "linux-arm-64.zip", nil
	case goos == "darwin" && goarch == "amd64":
		return prefix + "macos-64.zip", nil
	case goos == "windows" && goarch == "amd64":
		return prefix + "win-64.zip", nil
	default:
		return "", fmt.Errorf("no ffmpeg build for %s/%s", goos, goarch)
	}
}

func (l *Locator) download(ctx context.Context, asset, installDir string) error {
	url := fmt.Sprintf("%s/v%s/%s", l.opts.BaseURL, releaseVersion, asset)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("download ffmpeg bundle: %w", err)
	}
	resp, err := l.opts.Client.Do(req)
	if err != nil {
		return fmt.Errorf("download ffmpeg bundle: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download ffmpeg bundle: unexpected status %s", resp.Status)
	}

	tmp, err := os.CreateTemp("", "freespeech-ffmpeg-*.zip")
	if err != nil {
		return fmt.Errorf("create temp archive: %w", err)
	}
	archivePath := tmp.Name()
	defer func() { _ = os.Remove(archivePath) }()

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write archive: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close archive: %w", err)
	}

	if err := extractArchive(archivePath, installDir); err != nil {
		return fmt.Errorf("extract %s: %w", asset, err)
	}
	return nil
}

// extractArchive copies the ffmpeg and ffprobe entries of a zip bundle into
// installDir, wherever they sit inside the archive.
func extractArchive(archivePath, installDir string) error {
	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("open ffmpeg archive: %w", err)
	}
	defer func() { _ = zr.Close() }()

	wanted := map[string]bool{"ffmpeg": false, "ffprobe": false}
	for _, file := range zr.File {
		name := strings.TrimSuffix(strings.ToLower(filepath.Base(file.Name)), ".exe")
		found, ok := wanted[name]
		if !ok || found {
			continue
		}
		dest := filepath.Join(installDir, name+executableSuffix())
		if err := extractZipFile(file, dest); err != nil {
			return err
		}
		wanted[name] = true
	}

	for name, found := range wanted {
		if !found {
			return fmt.Errorf("ffmpeg archive missing %s", name)
		}
	}
	return nil
}

func extractZipFile(file *zip.File, dest string) error {
	reader, err := file.Open()
	if err != nil {
		return fmt.Errorf("open ffmpeg archive entry: %w", err)
	}
	defer func() { _ = reader.Close() }()

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("create ffmpeg output dir: %w", err)
	}

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("create %s: %w", filepath.Base(dest), err)
	}
	defer func() { _ = out.Close() }()

	if _, err := io.Copy(out, reader); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(dest), err)
	}
	return nil
}

func fileExists(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir() && info.Size() > 0
}

func executableSuffix() string {
	if runtime.GOOS == "windows" {
		return ".exe"
	}
	return ""
}
