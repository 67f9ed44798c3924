package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mgpai22/freespeech/internal/document"
	"github.com/mgpai22/freespeech/internal/eventloop"
	"github.com/mgpai22/freespeech/internal/ffmpeg"
	"github.com/mgpai22/freespeech/internal/operator"
	"github.com/mgpai22/freespeech/internal/video"
	"github.com/mgpai22/freespeech/internal/view"
	"github.com/spf13/cobra"
)

// session runs an operator on its own event loop goroutine for the
// lifetime of one command.
type session struct {
	loop   *eventloop.Loop
	op     *operator.Operator
	cancel context.CancelFunc
	done   chan error
}

func newSession(ctx context.Context) (*session, error) {
	scale, err := operator.NewScale(cfg.Editor.ReadingSpeed)
	if err != nil {
		return nil, err
	}

	loop := eventloop.New(16)
	runCtx, cancel := context.WithCancel(ctx)
	s := &session{loop: loop, cancel: cancel, done: make(chan error, 1)}
	go func() { s.done <- loop.Run(runCtx) }()

	s.op = operator.New(loop,
		operator.WithLogger(logger),
		operator.WithFollowInterval(cfg.FollowInterval()),
		operator.WithScale(scale),
	)
	return s, nil
}

// do runs fn on the loop goroutine and waits for it.
func (s *session) do(ctx context.Context, fn func() error) error {
	var fnErr error
	if err := s.loop.Dispatch(ctx, func() { fnErr = fn() }); err != nil {
		return err
	}
	return fnErr
}

func (s *session) open(ctx context.Context, pathname string) (*document.Document, error) {
	var doc *document.Document
	err := s.do(ctx, func() error {
		if err := s.op.OpenDocument(documentPath(pathname)); err != nil {
			return err
		}
		doc = s.op.Document()
		return nil
	})
	return doc, err
}

func (s *session) save(ctx context.Context) error {
	return s.do(ctx, func() error { return s.op.Save(nil) })
}

func (s *session) close() {
	_ = s.do(context.Background(), func() error {
		s.op.CloseDocument()
		return nil
	})
	s.cancel()
	<-s.done
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// documentPath adds the document extension when it is missing.
func documentPath(arg string) string {
	if strings.EqualFold(filepath.Ext(arg), "."+document.Extension) {
		return arg
	}
	return arg + "." + document.Extension
}

// parseTime accepts the spinner format hh:mm:ss:mmm or a Go duration.
func parseTime(s string) (time.Duration, error) {
	if d, err := view.ParseTime(s); err == nil {
		return d, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: use hh:mm:ss:mmm or a duration like 1.5s", s)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid time %q: must not be negative", s)
	}
	return d, nil
}

// selectText returns the index-th text of track in stored order.
func selectText(doc *document.Document, track, index int) (*document.TimedText, error) {
	if track < 0 || track >= doc.LineCount() {
		return nil, fmt.Errorf("track %d out of range (document has %d)", track, doc.LineCount())
	}
	texts := doc.Line(track)
	if index < 0 || index >= len(texts) {
		return nil, fmt.Errorf("text %d out of range (track %d has %d)", index, track, len(texts))
	}
	return texts[index], nil
}

// clearTrack removes every text of track. Missing tracks are left alone.
func clearTrack(doc *document.Document, track int) error {
	for _, t := range doc.Line(track) {
		if err := doc.RemoveText(t); err != nil {
			return err
		}
	}
	return nil
}

// apiKey picks the flag value, then the config file, then
// <PROVIDER>_API_KEY from the environment.
func apiKey(provider, flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if key := cfg.APIKey(provider); key != "" {
		return key, nil
	}
	envVar := strings.ToUpper(provider) + "_API_KEY"
	if key := os.Getenv(envVar); key != "" {
		return key, nil
	}
	return "", fmt.Errorf(
		"%s API key is required: use --api-key, set providers.%s_api_key in the config or set %s",
		provider, strings.ToLower(provider), envVar,
	)
}

func newLocator() *ffmpeg.Locator {
	return ffmpeg.NewLocator(ffmpeg.Options{
		FFmpegPath:    cfg.FFmpeg.FFmpegPath,
		FFprobePath:   cfg.FFmpeg.FFprobePath,
		CacheDir:      cfg.FFmpeg.CacheDir,
		AllowDownload: cfg.FFmpeg.AllowDownload,
		Logger:        logger,
	})
}

func newProber(locator *ffmpeg.Locator) *video.Prober {
	return video.NewProber(locator, cfg.ProbeCacheTTL(), logger)
}
