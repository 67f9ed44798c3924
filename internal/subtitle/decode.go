package subtitle

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	srtTimestamp = regexp.MustCompile(
		`(\d{1,2}):(\d{2}):(\d{2}),(\d{3})\s*-->\s*(\d{1,2}):(\d{2}):(\d{2}),(\d{3})`,
	)
	vttTimestamp = regexp.MustCompile(
		`(?:(\d{1,2}):)?(\d{2}):(\d{2})\.(\d{3})\s*-->\s*(?:(\d{1,2}):)?(\d{2}):(\d{2})\.(\d{3})`,
	)
	assScale = regexp.MustCompile(`\\fscx(\d+(?:\.\d+)?)`)
)

// ReadFile decodes the subtitle file at path using its extension.
func ReadFile(path string) (*Subtitle, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open subtitle file: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()
	return Decode(f, format)
}

// Decode reads a subtitle stream of the given format.
func Decode(r io.Reader, format Format) (*Subtitle, error) {
	var (
		entries []Entry
		err     error
	)
	switch format {
	case FormatSRT:
		entries, err = decodeCues(r, srtTimestamp)
	case FormatVTT:
		entries, err = decodeCues(r, vttTimestamp)
	case FormatASS:
		entries, err = decodeASS(r)
	default:
		return nil, fmt.Errorf("unsupported subtitle format: %s", format)
	}
	if err != nil {
		return nil, fmt.Errorf("error reading %s: %w", format, err)
	}
	return &Subtitle{Entries: entries, Format: format}, nil
}

// decodeCues handles the cue layout shared by SRT and WebVTT: an optional
// identifier line, a timing line, then text lines up to a blank line.
func decodeCues(r io.Reader, timing *regexp.Regexp) ([]Entry, error) {
	scanner := bufio.NewScanner(r)

	var (
		entries []Entry
		current *Entry
		text    []string
		lineNum int
	)
	flush := func() {
		if current != nil && len(text) > 0 {
			current.Text = strings.Join(text, "\n")
			entries = append(entries, *current)
		}
		current = nil
		text = nil
	}

	for scanner.Scan() {
		line := scanner.Text()
		lineNum++
		if lineNum == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
		}
		trimmed := strings.TrimSpace(line)

		if current == nil && isVTTBlock(trimmed) {
			for scanner.Scan() {
				lineNum++
				if strings.TrimSpace(scanner.Text()) == "" {
					break
				}
			}
			continue
		}

		if trimmed == "" {
			flush()
			continue
		}

		if m := timing.FindStringSubmatch(line); m != nil {
			flush()
			start, err := timestamp(m[1], m[2], m[3], m[4])
			if err != nil {
				return nil, fmt.Errorf("invalid start timestamp at line %d: %w", lineNum, err)
			}
			end, err := timestamp(m[5], m[6], m[7], m[8])
			if err != nil {
				return nil, fmt.Errorf("invalid end timestamp at line %d: %w", lineNum, err)
			}
			current = &Entry{Index: len(entries) + 1, StartTime: start, EndTime: end}
			continue
		}

		if current != nil {
			text = append(text, line)
		}
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

func isVTTBlock(line string) bool {
	return strings.HasPrefix(line, "WEBVTT") ||
		strings.HasPrefix(line, "NOTE") ||
		strings.HasPrefix(line, "STYLE") ||
		strings.HasPrefix(line, "REGION")
}

func timestamp(hours, minutes, seconds, millis string) (time.Duration, error) {
	units := []time.Duration{time.Hour, time.Minute, time.Second, time.Millisecond}
	var total time.Duration
	for i, field := range []string{hours, minutes, seconds, millis} {
		if field == "" {
			continue
		}
		n, err := strconv.Atoi(field)
		if err != nil {
			return 0, err
		}
		total += time.Duration(n) * units[i]
	}
	return total, nil
}

// decodeASS reads the Dialogue lines of the [Events] section.
func decodeASS(r io.Reader) ([]Entry, error) {
	scanner := bufio.NewScanner(r)

	var (
		entries  []Entry
		columns  []string
		inEvents bool
		lineNum  int
	)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		lineNum++
		if lineNum == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
		}

		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			inEvents = strings.EqualFold(line, "[Events]")
			continue
		}
		if !inEvents {
			continue
		}

		if rest, ok := strings.CutPrefix(line, "Format:"); ok {
			columns = strings.Split(rest, ",")
			for i := range columns {
				columns[i] = strings.ToLower(strings.TrimSpace(columns[i]))
			}
			continue
		}

		rest, ok := strings.CutPrefix(line, "Dialogue:")
		if !ok {
			continue
		}
		if len(columns) == 0 {
			return nil, fmt.Errorf("dialogue before Format line at line %d", lineNum)
		}

		fields := strings.SplitN(strings.TrimSpace(rest), ",", len(columns))
		if len(fields) < len(columns) {
			return nil, fmt.Errorf("expected %d fields at line %d, got %d", len(columns), lineNum, len(fields))
		}

		entry := Entry{Index: len(entries) + 1}
		for i, col := range columns {
			var err error
			switch col {
			case "start":
				entry.StartTime, err = assTimestamp(fields[i])
			case "end":
				entry.EndTime, err = assTimestamp(fields[i])
			case "text":
				entry.Text, entry.Sizes = assText(fields[i])
			}
			if err != nil {
				return nil, fmt.Errorf("invalid timestamp at line %d: %w", lineNum, err)
			}
		}
		entries = append(entries, entry)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// assTimestamp parses h:mm:ss.cc.
func assTimestamp(ts string) (time.Duration, error) {
	parts := strings.Split(strings.TrimSpace(ts), ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("malformed timestamp %q", ts)
	}
	secs, centis, _ := strings.Cut(parts[2], ".")
	for len(centis) < 2 {
		centis += "0"
	}
	d, err := timestamp(parts[0], parts[1], secs, "")
	if err != nil {
		return 0, err
	}
	cs, err := strconv.Atoi(centis[:2])
	if err != nil {
		return 0, err
	}
	return d + time.Duration(cs)*10*time.Millisecond, nil
}

// assText strips override blocks and returns the plain text with the
// \fscx scale in effect for each word.
func assText(raw string) (string, []float64) {
	raw = strings.NewReplacer(`\N`, " ", `\n`, " ", `\h`, " ").Replace(raw)

	var (
		words     []string
		sizes     []float64
		word      strings.Builder
		scale     = 1.0
		wordScale = 1.0
		scaled    bool
	)
	flush := func() {
		if word.Len() == 0 {
			return
		}
		words = append(words, word.String())
		sizes = append(sizes, wordScale)
		word.Reset()
	}

	for i := 0; i < len(raw); i++ {
		c := raw[i]
		switch {
		case c == '{':
			end := strings.IndexByte(raw[i:], '}')
			if end < 0 {
				if word.Len() == 0 {
					wordScale = scale
				}
				word.WriteString(raw[i:])
				i = len(raw)
				continue
			}
			block := raw[i : i+end]
			if m := assScale.FindAllStringSubmatch(block, -1); m != nil {
				if v, err := strconv.ParseFloat(m[len(m)-1][1], 64); err == nil && v > 0 {
					scale = v / 100
				}
			}
			if strings.Contains(block, `\r`) {
				scale = 1
			}
			i += end
		case c == ' ' || c == '\t':
			flush()
		default:
			if word.Len() == 0 {
				wordScale = scale
			}
			word.WriteByte(c)
		}
	}
	flush()

	for _, s := range sizes {
		if s != 1 {
			scaled = true
			break
		}
	}
	if !scaled {
		sizes = nil
	}
	return strings.Join(words, " "), sizes
}
