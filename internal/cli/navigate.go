package cli

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/mgpai22/freespeech/internal/document"
	"github.com/mgpai22/freespeech/internal/view"
	"github.com/spf13/cobra"
)

var nextCmd = &cobra.Command{
	Use:   "next [document]",
	Short: "Jump to the next timed text after a time",
	Long: `Walk forward from --at one timed text at a time and print where focus lands.

Examples:
  freespeech next talk --at 00:00:01:000
  freespeech next talk --at 0s --steps 3`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runNavigate(cmd, args, true)
	},
}

var prevCmd = &cobra.Command{
	Use:   "prev [document]",
	Short: "Jump to the previous timed text before a time",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runNavigate(cmd, args, false)
	},
}

var timelineCmd = &cobra.Command{
	Use:   "timeline [document]",
	Short: "Draw the timeline strip around a time",
	Long: `Draw every track of the document as a text strip with the current time
under the marker. --drag scrubs the strip by a pixel distance first, the
same way dragging the timeline does.

Examples:
  freespeech timeline talk --at 00:00:05:000
  freespeech timeline talk --at 10s --drag 120 --width 100`,
	Args: cobra.ExactArgs(1),
	RunE: runTimeline,
}

func init() {
	rootCmd.AddCommand(nextCmd, prevCmd, timelineCmd)

	for _, c := range []*cobra.Command{nextCmd, prevCmd} {
		c.Flags().String("at", "0s", "Time to start from")
		c.Flags().IntP("steps", "n", 1, "Number of texts to move")
	}

	timelineCmd.Flags().String("at", "0s", "Time under the marker")
	timelineCmd.Flags().Float64("drag", 0, "Scrub by this many pixels; positive moves back in time")
	timelineCmd.Flags().Int("width", 80, "Strip width in characters")
	timelineCmd.Flags().Float64("px-per-char", 10, "Pixels covered by one character")
}

func runNavigate(cmd *cobra.Command, args []string, forward bool) error {
	ctx := commandContext(cmd)
	atStr, _ := cmd.Flags().GetString("at")
	steps, _ := cmd.Flags().GetInt("steps")

	at, err := parseTime(atStr)
	if err != nil {
		return err
	}

	s, err := newSession(ctx)
	if err != nil {
		return err
	}
	defer s.close()

	if _, err := s.open(ctx, args[0]); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	return s.do(ctx, func() error {
		spinner := view.NewSpinner(s.op, cfg.SpinnerStep())
		s.op.AddListener(spinner)
		defer s.op.RemoveListener(spinner)

		s.op.SetCurrentTime(at, nil)

		var taken int
		if forward {
			taken = s.op.NextText(steps)
		} else {
			taken = s.op.PreviousText(steps)
		}

		fmt.Fprintf(out, "%s", spinner.Text())
		if landed := startingAt(s.op.Document(), s.op.CurrentTime()); landed != nil {
			fmt.Fprintf(out, "  %s", landed.Text())
		} else if focused := s.op.FocusedText(); focused != nil {
			fmt.Fprintf(out, "  %s", focused.Text())
		}
		fmt.Fprintln(out)
		if taken < steps {
			notify(cmd.ErrOrStderr(), "moved %d of %d steps", taken, steps)
		}
		return nil
	})
}

// startingAt returns the first text, in track order, that starts at at.
func startingAt(doc *document.Document, at time.Duration) *document.TimedText {
	for _, t := range doc.Texts() {
		if t.StartTime() == at {
			return t
		}
	}
	return nil
}

func runTimeline(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	atStr, _ := cmd.Flags().GetString("at")
	drag, _ := cmd.Flags().GetFloat64("drag")
	width, _ := cmd.Flags().GetInt("width")
	pxPerChar, _ := cmd.Flags().GetFloat64("px-per-char")

	if width <= 0 || pxPerChar <= 0 {
		return fmt.Errorf("--width and --px-per-char must be positive")
	}
	at, err := parseTime(atStr)
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

	out := cmd.OutOrStdout()
	return s.do(ctx, func() error {
		strip := view.NewStrip(s.op, s.op.Scale(), cfg.Editor.StripOffsetPx, cfg.Editor.MinBoxWidthPx)
		spinner := view.NewSpinner(s.op, cfg.SpinnerStep())
		s.op.AddListener(strip)
		s.op.AddListener(spinner)
		defer s.op.RemoveListener(strip)
		defer s.op.RemoveListener(spinner)

		strip.Attach(doc)
		defer strip.Attach(nil)

		s.op.SetCurrentTime(at, nil)
		if drag != 0 {
			strip.Drag(drag)
		}

		fmt.Fprintln(out, spinner.Text())
		drawStrip(out, strip, doc.LineCount(), width, pxPerChar)
		return nil
	})
}

// drawStrip renders one row per track plus a marker row at the strip
// offset.
func drawStrip(w io.Writer, strip *view.Strip, tracks, width int, pxPerChar float64) {
	shift := strip.Translation()
	rows := make([][]rune, tracks)
	for i := range rows {
		rows[i] = []rune(strings.Repeat(".", width))
	}

	for _, b := range strip.Boxes() {
		from := int(math.Floor((b.X + shift) / pxPerChar))
		to := int(math.Ceil((b.Right()+shift)/pxPerChar)) - 1
		paintBox(rows[b.Line], from, to, b.Text)
	}

	marker := []rune(strings.Repeat(" ", width))
	if col := int(strip.Offset() / pxPerChar); col >= 0 && col < width {
		marker[col] = '^'
	}

	for i, row := range rows {
		fmt.Fprintf(w, "%2d %s\n", i, string(row))
	}
	fmt.Fprintf(w, "   %s\n", string(marker))
}

func paintBox(row []rune, from, to int, t *document.TimedText) {
	if to < 0 || from >= len(row) || to < from {
		return
	}
	label := []rune(t.Text())
	for col := from; col <= to; col++ {
		if col < 0 || col >= len(row) {
			continue
		}
		switch {
		case col == from:
			row[col] = '['
		case col == to:
			row[col] = ']'
		case col-from-1 < len(label):
			row[col] = label[col-from-1]
		default:
			row[col] = ' '
		}
	}
}
