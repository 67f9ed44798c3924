package subtitle

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// ASSStyle sets the default style of generated ASS scripts.
type ASSStyle struct {
	Title    string
	FontName string
	FontSize int
}

var DefaultASSStyle = ASSStyle{
	Title:    "freespeech",
	FontName: "Arial",
	FontSize: 20,
}

// WriteFile encodes sub to path in the format its extension names.
func WriteFile(sub *Subtitle, path string) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create subtitle file: %w", err)
	}
	if err := Encode(f, sub, format); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// Encode writes sub to w.
func Encode(w io.Writer, sub *Subtitle, format Format) error {
	bw := bufio.NewWriter(w)
	switch format {
	case FormatSRT:
		encodeCues(bw, sub, formatSRTTime)
	case FormatVTT:
		bw.WriteString("WEBVTT\n\n")
		encodeCues(bw, sub, formatVTTTime)
	case FormatASS:
		encodeASS(bw, sub, DefaultASSStyle)
	default:
		return fmt.Errorf("unsupported subtitle format: %s", format)
	}
	return bw.Flush()
}

func encodeCues(w *bufio.Writer, sub *Subtitle, stamp func(time.Duration) string) {
	for i, entry := range sub.Entries {
		fmt.Fprintf(w, "%d\n", i+1)
		fmt.Fprintf(w, "%s --> %s\n", stamp(entry.StartTime), stamp(entry.EndTime))
		w.WriteString(entry.Text)
		w.WriteString("\n\n")
	}
}

func encodeASS(w *bufio.Writer, sub *Subtitle, style ASSStyle) {
	w.WriteString("[Script Info]\n")
	fmt.Fprintf(w, "Title: %s\n", style.Title)
	w.WriteString("ScriptType: v4.00+\n")
	w.WriteString("Collisions: Normal\n")
	w.WriteString("PlayDepth: 0\n\n")

	w.WriteString("[V4+ Styles]\n")
	w.WriteString("Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding\n")
	fmt.Fprintf(w, "Style: Default,%s,%d,&H00FFFFFF,&H000000FF,&H00000000,&H00000000,0,0,0,0,100,100,0,0,1,2,2,2,10,10,10,1\n\n",
		style.FontName, style.FontSize)

	w.WriteString("[Events]\n")
	w.WriteString("Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text\n")
	for _, entry := range sub.Entries {
		fmt.Fprintf(w, "Dialogue: 0,%s,%s,Default,,0,0,0,,%s\n",
			formatASSTime(entry.StartTime),
			formatASSTime(entry.EndTime),
			assDialogueText(entry))
	}
}

// assDialogueText emits a scale override wherever the word size changes.
func assDialogueText(entry Entry) string {
	if entry.Sizes == nil {
		return strings.ReplaceAll(entry.Text, "\n", `\N`)
	}

	var sb strings.Builder
	current := 1.0
	for i, word := range entry.Words() {
		if i > 0 {
			sb.WriteByte(' ')
		}
		if size := entry.SizeAt(i); size != current {
			pct := strconv.FormatFloat(math.Round(size*10000)/100, 'f', -1, 64)
			fmt.Fprintf(&sb, `{\fscx%s\fscy%s}`, pct, pct)
			current = size
		}
		sb.WriteString(word)
	}
	return sb.String()
}

func clock(d time.Duration) (h, m, s, ms int64) {
	if d < 0 {
		d = 0
	}
	total := d.Milliseconds()
	return total / 3_600_000, total / 60_000 % 60, total / 1000 % 60, total % 1000
}

func formatSRTTime(d time.Duration) string {
	h, m, s, ms := clock(d)
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms)
}

func formatVTTTime(d time.Duration) string {
	h, m, s, ms := clock(d)
	return fmt.Sprintf("%02d:%02d:%02d.%03d", h, m, s, ms)
}

func formatASSTime(d time.Duration) string {
	h, m, s, ms := clock(d)
	return fmt.Sprintf("%d:%02d:%02d.%02d", h, m, s, ms/10)
}
