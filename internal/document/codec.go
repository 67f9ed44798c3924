package document

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	// separates video references on the first line and the track index
	// from the timed text on the others
	FieldSeparator = "~~"
	// separates words, duration and start time inside a timed text
	TimingSeparator = ">>"
	// separates a word from its size factor
	SizeSeparator = "::"
)

var indexedLinePattern = regexp.MustCompile(`^([0-9]+)` + FieldSeparator + `(.+)$`)

// Content serializes the video references and every track.
//
//	clip.mp4
//	0~~hello world>>1000.0>>0.0
func (d *Document) Content() string {
	var sb strings.Builder
	sb.WriteString(strings.Join(d.video, FieldSeparator))
	for index, line := range d.lines {
		for _, t := range line {
			sb.WriteByte('\n')
			sb.WriteString(strconv.Itoa(index))
			sb.WriteString(FieldSeparator)
			sb.WriteString(FormatTimedText(t))
		}
	}
	return sb.String()
}

// SetContent parses content and replaces the video references and tracks.
func (d *Document) SetContent(content string) error {
	return d.SetLines(strings.Split(content, "\n"))
}

// SetLines rebuilds the document from stored lines. The first line holds the
// video references. Every other line is either "N~~<timed text>" targeting
// track N or a bare timed text targeting track 0. Missing tracks are filled
// with empty ones. Blank lines are skipped. On error the document is left
// unchanged.
func (d *Document) SetLines(rawLines []string) error {
	var video []string
	var lines [][]*TimedText

	for i, raw := range rawLines {
		raw = strings.TrimSuffix(raw, "\r")
		if i == 0 {
			video = splitVideo(raw)
			continue
		}
		if strings.TrimSpace(raw) == "" {
			continue
		}

		index, body := splitIndexedLine(raw)
		t, err := ParseTimedText(body)
		if err != nil {
			return &ParseError{Line: i + 1, Text: raw, Err: err}
		}
		for len(lines) <= index {
			lines = append(lines, nil)
		}
		lines[index] = append(lines[index], t)
	}

	d.SetVideo(video...)
	d.replaceLines(lines)
	return nil
}

func splitVideo(line string) []string {
	if line == "" {
		return nil
	}
	return strings.Split(line, FieldSeparator)
}

// malformed prefixes fall back to a plain track 0 line
func splitIndexedLine(line string) (int, string) {
	m := indexedLinePattern.FindStringSubmatch(line)
	if m == nil {
		return 0, line
	}
	index, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, line
	}
	return index, m[2]
}

// FormatTimedText renders "w1 w2 ... wN>>durationMs>>startMs".
func FormatTimedText(t *TimedText) string {
	var sb strings.Builder
	for i, w := range t.words {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(formatWord(w.word))
	}
	sb.WriteString(TimingSeparator)
	sb.WriteString(formatMillis(t.duration))
	sb.WriteString(TimingSeparator)
	sb.WriteString(formatMillis(t.start))
	return sb.String()
}

// ParseTimedText is the inverse of FormatTimedText. The timing fields are
// taken from the end so words may contain the separator.
func ParseTimedText(s string) (*TimedText, error) {
	startSep := strings.LastIndex(s, TimingSeparator)
	if startSep < 0 {
		return nil, errors.New("missing timing fields")
	}
	durationSep := strings.LastIndex(s[:startSep], TimingSeparator)
	if durationSep < 0 {
		return nil, errors.New("missing duration field")
	}

	duration, err := parseMillis(s[durationSep+len(TimingSeparator) : startSep])
	if err != nil {
		return nil, fmt.Errorf("invalid duration: %w", err)
	}
	start, err := parseMillis(s[startSep+len(TimingSeparator):])
	if err != nil {
		return nil, fmt.Errorf("invalid start time: %w", err)
	}

	tokens := strings.Fields(s[:durationSep])
	words := make([]*DecoratedWord, len(tokens))
	for i, token := range tokens {
		words[i] = parseWord(token)
	}

	return NewTimedTextWithWords(start, duration, words)
}

func formatWord(w *DecoratedWord) string {
	// a text that itself contains "::" always carries its factor so the
	// last separator stays unambiguous
	if w.sizeFactor == DefaultSizeFactor && !strings.Contains(w.text, SizeSeparator) {
		return w.text
	}
	return w.text + SizeSeparator + formatNumber(w.sizeFactor)
}

// a suffix that is not a valid size factor is kept as part of the text
func parseWord(token string) *DecoratedWord {
	sep := strings.LastIndex(token, SizeSeparator)
	if sep <= 0 {
		return newWord(token)
	}
	factor, err := strconv.ParseFloat(token[sep+len(SizeSeparator):], 64)
	if err != nil || !validSizeFactor(factor) {
		return newWord(token)
	}
	return &DecoratedWord{text: token[:sep], sizeFactor: factor}
}

func formatMillis(d time.Duration) string {
	return formatNumber(float64(d) / float64(time.Millisecond))
}

func parseMillis(s string) (time.Duration, error) {
	ms, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(ms) || math.IsInf(ms, 0) {
		return 0, fmt.Errorf("%q is not finite", s)
	}
	ns := math.Round(ms * float64(time.Millisecond))
	if ns >= math.MaxInt64 || ns < math.MinInt64 {
		return 0, fmt.Errorf("%q: %w", s, ErrTimeOutOfRange)
	}
	return time.Duration(ns), nil
}

// always keeps a fractional part: 1000 -> "1000.0", 1.5 -> "1.5"
func formatNumber(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
