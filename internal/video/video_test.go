package video

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mgpai22/freespeech/internal/document"
)

const sampleProbe = `{
  "format": {"duration": "12.500000"},
  "streams": [
    {"codec_type": "video", "codec_name": "h264", "width": 1920, "height": 1080, "avg_frame_rate": "30000/1001"},
    {"codec_type": "audio", "codec_name": "aac"}
  ]
}`

type staticLocator struct{ path string }

func (l staticLocator) FFprobe(context.Context) (string, error) { return l.path, nil }
func (l staticLocator) FFmpeg(context.Context) (string, error)  { return l.path, nil }

func writeFile(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("media"), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func newCountingProber(t *testing.T, output string) (*Prober, *int) {
	t.Helper()
	calls := 0
	p := NewProber(staticLocator{path: "ffprobe"}, time.Minute, nil)
	p.run = func(_ context.Context, bin string, args ...string) ([]byte, error) {
		calls++
		if bin != "ffprobe" {
			t.Errorf("bin = %q", bin)
		}
		return []byte(output), nil
	}
	return p, &calls
}

func TestProbeParsesStreams(t *testing.T) {
	path := writeFile(t, t.TempDir(), "clip.mp4")
	p, _ := newCountingProber(t, sampleProbe)

	info, err := p.Probe(context.Background(), path)
	if err != nil {
		t.Fatalf("Probe: %v", err)
	}
	if info.Duration != 12500*time.Millisecond {
		t.Errorf("Duration = %v", info.Duration)
	}
	if !info.HasVideo || !info.HasAudio {
		t.Errorf("streams = video:%v audio:%v", info.HasVideo, info.HasAudio)
	}
	if info.Width != 1920 || info.Height != 1080 || info.Codec != "h264" {
		t.Errorf("video stream = %dx%d %s", info.Width, info.Height, info.Codec)
	}
	if info.FrameRate < 29.96 || info.FrameRate > 29.98 {
		t.Errorf("FrameRate = %v", info.FrameRate)
	}
}

func TestProbeCachesResult(t *testing.T) {
	path := writeFile(t, t.TempDir(), "clip.mp4")
	p, calls := newCountingProber(t, sampleProbe)

	for i := 0; i < 3; i++ {
		if _, err := p.Probe(context.Background(), path); err != nil {
			t.Fatalf("Probe #%d: %v", i, err)
		}
	}
	if *calls != 1 {
		t.Errorf("ffprobe ran %d times, want 1", *calls)
	}
}

func TestProbeErrors(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "clip.mp4")

	p, _ := newCountingProber(t, `{"format": {"duration": "N/A"}}`)
	if _, err := p.Probe(context.Background(), path); err == nil {
		t.Error("expected duration parse error")
	}
	if _, err := p.Probe(context.Background(), filepath.Join(dir, "missing.mp4")); err == nil {
		t.Error("expected missing file error")
	}
}

func TestParseRate(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"25/1", 25},
		{"24", 24},
		{"0/0", 0},
		{"", 0},
	}
	for _, tt := range tests {
		if got := parseRate(tt.in); got != tt.want {
			t.Errorf("parseRate(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestAudioKwArgs(t *testing.T) {
	kw := AudioKwArgs(DefaultExtractAudioOptions())
	if kw["acodec"] != "libmp3lame" || kw["b:a"] != "64k" || kw["ar"] != 16000 {
		t.Errorf("mp3 kwargs = %v", kw)
	}

	kw = AudioKwArgs(ExtractAudioOptions{Format: "wav", SampleRate: 16000, Channels: 1, Bitrate: "64k"})
	if kw["acodec"] != "pcm_s16le" {
		t.Errorf("wav codec = %v", kw["acodec"])
	}
	if _, ok := kw["b:a"]; ok {
		t.Error("wav should not carry a bitrate")
	}
}

func TestMediaFileExtensions(t *testing.T) {
	if !IsVideoFile("talk.MP4") || IsVideoFile("talk.mp3") {
		t.Error("IsVideoFile mismatch")
	}
	if !IsAudioFile("talk.flac") || IsAudioFile("talk.mkv") {
		t.Error("IsAudioFile mismatch")
	}
	if IsMediaFile("notes.txt") {
		t.Error("IsMediaFile(notes.txt) = true")
	}
}

type mapProber map[string]*Info

func (m mapProber) Probe(_ context.Context, path string) (*Info, error) {
	if info, ok := m[path]; ok {
		return info, nil
	}
	return nil, errors.New("cannot open")
}

func TestResolverFirstSuccessWins(t *testing.T) {
	dir := t.TempDir()
	doc := document.New("talk")
	doc.SetPathname(filepath.Join(dir, "talk.fs"))
	doc.SetVideo("broken.mp4", "notes.txt", "file://"+filepath.ToSlash(filepath.Join(dir, "good.mp4")), "later.mp4")

	good := filepath.Join(dir, "good.mp4")
	prober := mapProber{
		good:                            {Duration: time.Minute},
		filepath.Join(dir, "later.mp4"): {Duration: time.Hour},
		filepath.Join(dir, "notes.txt"): {Duration: time.Second},
	}
	r := NewResolver(prober, []string{".MP4"}, nil)

	src, err := r.Resolve(context.Background(), doc)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if src.Path != good || src.Info.Duration != time.Minute {
		t.Errorf("resolved %s (%v)", src.Path, src.Info.Duration)
	}
	if src.Ref != doc.Video()[2] {
		t.Errorf("Ref = %q", src.Ref)
	}

	want := []string{filepath.Join(dir, "broken.mp4"), filepath.Join(dir, "notes.txt"), good, filepath.Join(dir, "later.mp4")}
	got := r.Candidates(doc)
	if len(got) != len(want) {
		t.Fatalf("Candidates = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Candidates[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestResolverNoVideo(t *testing.T) {
	doc := document.New("talk")
	doc.SetVideo("missing.mp4")

	_, err := NewResolver(mapProber{}, nil, nil).Resolve(context.Background(), doc)
	if !errors.Is(err, ErrNoVideo) {
		t.Errorf("err = %v, want ErrNoVideo", err)
	}

	_, err = NewResolver(mapProber{}, nil, nil).Resolve(context.Background(), document.New("empty"))
	if !errors.Is(err, ErrNoVideo) {
		t.Errorf("empty document err = %v, want ErrNoVideo", err)
	}
}
