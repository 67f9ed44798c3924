package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/mgpai22/freespeech/internal/document"
	"github.com/mgpai22/freespeech/internal/video"
	"github.com/mgpai22/freespeech/internal/view"
	"github.com/spf13/cobra"
)

var playCmd = &cobra.Command{
	Use:   "play [document]",
	Short: "Play a document against its video and print captions as they show",
	Long: `Open the document's video, start playback and follow it with the time
spinner. Every time the caption over the video changes, the spinner time
and the caption are printed.

The first candidate video that probes successfully is used. Playback stops
at the end of the video, after --for, or on interrupt.

Examples:
  freespeech play talk
  freespeech play talk --from 00:01:00:000 --rate 2 --for 30s`,
	Args: cobra.ExactArgs(1),
	RunE: runPlay,
}

func init() {
	rootCmd.AddCommand(playCmd)

	playCmd.Flags().String("from", "0s", "Start position")
	playCmd.Flags().Float64("rate", 1, "Playback rate")
	playCmd.Flags().Float64("volume", -1, "Volume between 0 and 1 (default player volume)")
	playCmd.Flags().Duration("for", 0, "Stop after this long (0 plays to the end)")
	playCmd.Flags().Duration("poll", 50*time.Millisecond, "How often the caption is checked")
}

func runPlay(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	fromStr, _ := cmd.Flags().GetString("from")
	rate, _ := cmd.Flags().GetFloat64("rate")
	volume, _ := cmd.Flags().GetFloat64("volume")
	limit, _ := cmd.Flags().GetDuration("for")
	poll, _ := cmd.Flags().GetDuration("poll")

	from, err := parseTime(fromStr)
	if err != nil {
		return err
	}
	if poll <= 0 {
		return fmt.Errorf("--poll must be positive")
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

	resolver := video.NewResolver(newProber(newLocator()), cfg.Video.Formats, logger)
	src, err := resolver.Resolve(ctx, doc)
	if errors.Is(err, video.ErrNoVideo) {
		notify(cmd.ErrOrStderr(), "no playable video among %v", resolver.Candidates(doc))
		return nil
	}
	if err != nil {
		return err
	}

	logger.Infow("Playing",
		"video", src.Path,
		"duration", src.Info.Duration.String(),
		"rate", rate,
	)

	p := newPlayback(s, doc, cmd.OutOrStdout(), video.WithRates(cfg.Video.Rates))
	if err := p.start(ctx, src, from, rate, volume); err != nil {
		return err
	}
	return p.run(ctx, poll, limit)
}

// playback wires a player, as the leader, and a spinner into a session.
type playback struct {
	s       *session
	doc     *document.Document
	out     io.Writer
	player  *video.Player
	spinner *view.Spinner

	shown   *document.TimedText
	started bool
}

func newPlayback(s *session, doc *document.Document, out io.Writer, opts ...video.PlayerOption) *playback {
	return &playback{
		s:       s,
		doc:     doc,
		out:     out,
		player:  video.NewPlayer(opts...),
		spinner: view.NewSpinner(s.op, cfg.SpinnerStep()),
	}
}

func (p *playback) start(ctx context.Context, src *video.Source, from time.Duration, rate, volume float64) error {
	return p.s.do(ctx, func() error {
		op := p.s.op
		p.player.OnPlay(func(time.Duration) { op.FollowLeader() })
		p.player.OnPause(func(time.Duration) { op.StopFollowingLeader() })

		p.player.Open(src)
		if err := p.player.SetRate(rate); err != nil {
			return err
		}
		if volume >= 0 {
			p.player.SetVolume(volume)
		}

		op.AddListener(p.player)
		op.AddListener(p.spinner)
		op.SetLeader(p.player)

		op.SetCurrentTime(from, nil)
		return p.player.Play()
	})
}

// step prints the caption when it changed and reports whether the player
// is still playing.
func (p *playback) step(ctx context.Context) (bool, error) {
	var playing bool
	err := p.s.do(ctx, func() error {
		// reading the position notices the end of the media
		p.player.CurrentTime()
		playing = p.player.Playing()

		current := video.Overlay(p.doc, p.s.op.CurrentTime())
		if p.started && current == p.shown {
			return nil
		}
		p.started = true
		p.shown = current

		caption := "-"
		if current != nil {
			caption = current.Text()
		}
		fmt.Fprintf(p.out, "%s  %s\n", p.spinner.Text(), caption)
		return nil
	})
	return playing, err
}

func (p *playback) stop(ctx context.Context) error {
	return p.s.do(ctx, func() error {
		p.player.Pause()
		p.s.op.RemoveListener(p.spinner)
		p.s.op.RemoveListener(p.player)
		p.s.op.SetLeader(nil)
		p.player.Close()
		return nil
	})
}

func (p *playback) run(ctx context.Context, poll, limit time.Duration) error {
	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	var deadline <-chan time.Time
	if limit > 0 {
		timer := time.NewTimer(limit)
		defer timer.Stop()
		deadline = timer.C
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-deadline:
			return p.stop(ctx)
		case <-ticker.C:
		}

		playing, err := p.step(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		if !playing {
			return p.stop(ctx)
		}
	}
}
