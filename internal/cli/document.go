package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/mgpai22/freespeech/internal/document"
	"github.com/mgpai22/freespeech/internal/view"
	"github.com/spf13/cobra"
)

var newCmd = &cobra.Command{
	Use:   "new [document]",
	Short: "Create an empty caption document",
	Long: `Create an empty .fsw document referencing one or more candidate videos.

Video references are tried in order when the document is played back, so a
relative and an absolute path to the same file can both be listed.

Examples:
  freespeech new talk --video talk.mp4
  freespeech new talk.fsw --video clips/talk.mp4 --video /media/talk.mp4`,
	Args: cobra.ExactArgs(1),
	RunE: runNew,
}

var showCmd = &cobra.Command{
	Use:   "show [document]",
	Short: "List the timed texts of a document",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

var addCmd = &cobra.Command{
	Use:   "add [document]",
	Short: "Add a timed text to a track",
	Long: `Add a timed text to a track of the document.

Times accept the spinner format hh:mm:ss:mmm or a duration such as 1.5s.

Examples:
  freespeech add talk --at 00:00:01:500 --text "hello world"
  freespeech add talk --at 12s --duration 3s --track 1 --text "bonjour"`,
	Args: cobra.ExactArgs(1),
	RunE: runAdd,
}

var editCmd = &cobra.Command{
	Use:   "edit [document]",
	Short: "Change the text, timing or word sizes of a timed text",
	Long: `Change one timed text, selected by track and position within the track.

Editing the text keeps the size of every word that stays at the same
position. --word and --size set the size factor of a single word.

Examples:
  freespeech edit talk --index 0 --text "hello there world"
  freespeech edit talk --track 1 --index 2 --start 4s --duration 1500ms
  freespeech edit talk --index 0 --word 1 --size 1.5`,
	Args: cobra.ExactArgs(1),
	RunE: runEdit,
}

var removeCmd = &cobra.Command{
	Use:   "remove [document]",
	Short: "Remove a timed text",
	Args:  cobra.ExactArgs(1),
	RunE:  runRemove,
}

var saveAsCmd = &cobra.Command{
	Use:   "save-as [document] [pathname]",
	Short: "Save a document under a new pathname",
	Long: `Save a copy of the document under a new pathname. The original file is
left as it is and video references are written unchanged.

Examples:
  freespeech save-as talk talk-fr
  freespeech save-as talk.fsw drafts/talk.fsw --force`,
	Args: cobra.ExactArgs(2),
	RunE: runSaveAs,
}

func init() {
	rootCmd.AddCommand(newCmd, showCmd, addCmd, editCmd, removeCmd, saveAsCmd)

	newCmd.Flags().StringArray("video", nil, "Candidate video reference (repeatable)")
	newCmd.Flags().Bool("force", false, "Overwrite an existing document")

	addCmd.Flags().String("at", "0s", "Start time")
	addCmd.Flags().String("duration", "", "Duration (default from config)")
	addCmd.Flags().String("text", "", "Caption text (default placeholder words)")
	addCmd.Flags().Int("track", 0, "Track to add to")

	editCmd.Flags().Int("track", 0, "Track of the timed text")
	editCmd.Flags().Int("index", 0, "Position of the timed text in its track")
	editCmd.Flags().String("text", "", "Replace the caption text")
	editCmd.Flags().String("start", "", "New start time")
	editCmd.Flags().String("duration", "", "New duration")
	editCmd.Flags().String("stop", "", "New stop time; changes the duration")
	editCmd.Flags().Int("word", -1, "Word to resize")
	editCmd.Flags().Float64("size", 0, "Size factor for --word")

	removeCmd.Flags().Int("track", 0, "Track of the timed text")
	removeCmd.Flags().Int("index", 0, "Position of the timed text in its track")

	saveAsCmd.Flags().Bool("force", false, "Overwrite an existing document")
}

func runNew(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	pathname := documentPath(args[0])
	videos, _ := cmd.Flags().GetStringArray("video")
	force, _ := cmd.Flags().GetBool("force")

	if _, err := os.Stat(pathname); err == nil && !force {
		return fmt.Errorf("document already exists: %s (use --force to overwrite)", pathname)
	}

	s, err := newSession(ctx)
	if err != nil {
		return err
	}
	defer s.close()

	err = s.do(ctx, func() error {
		doc := s.op.NewDocument(document.DefaultName)
		doc.SetPathname(pathname)
		doc.SetVideo(videos...)
		return s.op.Save(doc)
	})
	if err != nil {
		return err
	}

	acknowledge(cmd.OutOrStdout(), "Created %s", pathname)
	return nil
}

func runShow(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
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
		fmt.Fprintf(out, "Document: %s\n", doc.Pathname())
		fmt.Fprintf(out, "Video:    %s\n", strings.Join(doc.Video(), ", "))
		fmt.Fprintf(out, "Tracks:   %d\n\n", doc.LineCount())
		fmt.Fprintln(out, textTable(out, doc))
		return nil
	})
}

func textTable(out io.Writer, doc *document.Document) string {
	var rows [][]string
	for track, texts := range doc.Lines() {
		for i, t := range texts {
			rows = append(rows, []string{
				strconv.Itoa(track),
				strconv.Itoa(i),
				view.FormatTime(t.StartTime()),
				view.FormatTime(t.StopTime()),
				decoratedText(t),
			})
		}
	}
	return renderTable(out,
		[]string{"Track", "#", "Start", "Stop", "Text"},
		rows,
		[]columnAlignment{alignRight, alignRight, alignLeft, alignLeft, alignLeft},
	)
}

// decoratedText marks resized words as word(x1.5).
func decoratedText(t *document.TimedText) string {
	words := t.Words()
	parts := make([]string, len(words))
	for i, w := range words {
		if w.SizeFactor() == 1 {
			parts[i] = w.Text()
			continue
		}
		parts[i] = fmt.Sprintf("%s(x%s)", w.Text(), strconv.FormatFloat(w.SizeFactor(), 'f', -1, 64))
	}
	return strings.Join(parts, " ")
}

func runAdd(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	atStr, _ := cmd.Flags().GetString("at")
	durStr, _ := cmd.Flags().GetString("duration")
	text, _ := cmd.Flags().GetString("text")
	track, _ := cmd.Flags().GetInt("track")

	if track < 0 {
		return fmt.Errorf("track must not be negative")
	}
	start, err := parseTime(atStr)
	if err != nil {
		return err
	}
	duration := cfg.DefaultDuration()
	if durStr != "" {
		if duration, err = parseTime(durStr); err != nil {
			return err
		}
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

	var added *document.TimedText
	err = s.do(ctx, func() error {
		t, err := document.NewTimedText(start)
		if err != nil {
			return err
		}
		if err := t.SetDuration(duration); err != nil {
			return err
		}
		if text != "" {
			t.SetText(text)
		}
		if err := doc.AddText(track, t); err != nil {
			return err
		}
		added = t
		return s.op.Save(doc)
	})
	if err != nil {
		return err
	}

	acknowledge(cmd.OutOrStdout(), "Added %q at %s to track %d",
		added.Text(), view.FormatTime(added.StartTime()), track)
	return nil
}

// textEdit carries the optional changes of an edit command.
type textEdit struct {
	text     *string
	start    *string
	duration *string
	stop     *string
	word     int
	size     float64
}

func (e textEdit) apply(t *document.TimedText) error {
	if e.text != nil {
		t.SetText(*e.text)
	}
	if e.start != nil {
		v, err := parseTime(*e.start)
		if err != nil {
			return err
		}
		if err := t.SetStartTime(v); err != nil {
			return fmt.Errorf("set start: %w", err)
		}
	}
	if e.duration != nil {
		v, err := parseTime(*e.duration)
		if err != nil {
			return err
		}
		if err := t.SetDuration(v); err != nil {
			return fmt.Errorf("set duration: %w", err)
		}
	}
	if e.stop != nil {
		v, err := parseTime(*e.stop)
		if err != nil {
			return err
		}
		if err := t.SetStopTime(v); err != nil {
			return fmt.Errorf("set stop: %w", err)
		}
	}
	if e.word >= 0 {
		w, err := t.Word(e.word)
		if err != nil {
			return err
		}
		if err := w.SetSizeFactor(e.size); err != nil {
			return fmt.Errorf("resize word %d: %w", e.word, err)
		}
	}
	return nil
}

func stringFlag(cmd *cobra.Command, name string) *string {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetString(name)
	return &v
}

func runEdit(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	track, _ := cmd.Flags().GetInt("track")
	index, _ := cmd.Flags().GetInt("index")
	word, _ := cmd.Flags().GetInt("word")
	size, _ := cmd.Flags().GetFloat64("size")

	edit := textEdit{
		text:     stringFlag(cmd, "text"),
		start:    stringFlag(cmd, "start"),
		duration: stringFlag(cmd, "duration"),
		stop:     stringFlag(cmd, "stop"),
		word:     word,
		size:     size,
	}
	if edit.word >= 0 && !cmd.Flags().Changed("size") {
		return fmt.Errorf("--word needs --size")
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

	var edited string
	err = s.do(ctx, func() error {
		t, err := selectText(doc, track, index)
		if err != nil {
			return err
		}
		if err := edit.apply(t); err != nil {
			return err
		}
		edited = document.FormatTimedText(t)
		return s.op.Save(doc)
	})
	if err != nil {
		return err
	}

	acknowledge(cmd.OutOrStdout(), "Updated track %d text %d: %s", track, index, edited)
	return nil
}

func runRemove(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	track, _ := cmd.Flags().GetInt("track")
	index, _ := cmd.Flags().GetInt("index")

	s, err := newSession(ctx)
	if err != nil {
		return err
	}
	defer s.close()

	doc, err := s.open(ctx, args[0])
	if err != nil {
		return err
	}

	var removed string
	err = s.do(ctx, func() error {
		t, err := selectText(doc, track, index)
		if err != nil {
			return err
		}
		if err := doc.RemoveText(t); err != nil {
			return err
		}
		removed = t.Text()
		return s.op.Save(doc)
	})
	if err != nil {
		return err
	}

	acknowledge(cmd.OutOrStdout(), "Removed %q from track %d", removed, track)
	return nil
}

func runSaveAs(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	target := documentPath(args[1])
	force, _ := cmd.Flags().GetBool("force")

	if _, err := os.Stat(target); err == nil && !force {
		return fmt.Errorf("document already exists: %s (use --force to overwrite)", target)
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

	err = s.do(ctx, func() error {
		source := doc.Pathname()
		doc.SetPathname(target)
		if doc.Pathname() == source {
			return fmt.Errorf("cannot save %s over itself or to %q", source, target)
		}
		return s.op.Save(doc)
	})
	if err != nil {
		return err
	}

	acknowledge(cmd.OutOrStdout(), "Saved %s", doc.Pathname())
	return nil
}
