package subtitle

import (
	"strings"
	"time"
	"unicode/utf8"
)

// Segmenter cuts transcribed segments into caption-sized entries.
type Segmenter struct {
	MaxChars    int
	MaxDuration time.Duration
}

func NewSegmenter() *Segmenter {
	return &Segmenter{
		MaxChars:    84, // two lines of 42
		MaxDuration: 7 * time.Second,
	}
}

// Entries converts segments into entries, splitting any that run too long
// in text or time. Blank segments are dropped.
func (g *Segmenter) Entries(segments []Segment) []Entry {
	var entries []Entry
	for _, seg := range segments {
		text := strings.Join(strings.Fields(seg.Text), " ")
		if text == "" || seg.EndTime <= seg.StartTime {
			continue
		}
		seg.Text = text
		for _, e := range g.split(seg) {
			e.Index = len(entries) + 1
			entries = append(entries, e)
		}
	}
	return entries
}

func (g *Segmenter) split(seg Segment) []Entry {
	total := seg.EndTime - seg.StartTime
	words := strings.Fields(seg.Text)

	parts := 1
	if g.MaxChars > 0 {
		parts = max(parts, (utf8.RuneCountInString(seg.Text)+g.MaxChars-1)/g.MaxChars)
	}
	if g.MaxDuration > 0 && total > g.MaxDuration {
		parts = max(parts, int((total+g.MaxDuration-1)/g.MaxDuration))
	}
	parts = min(parts, len(words))

	// words are spread evenly, time is split in proportion to characters
	perPart := (len(words) + parts - 1) / parts
	totalChars := utf8.RuneCountInString(seg.Text)

	var entries []Entry
	start := seg.StartTime
	consumed := 0
	for len(words) > 0 {
		n := min(perPart, len(words))
		text := strings.Join(words[:n], " ")
		words = words[n:]

		consumed += utf8.RuneCountInString(text)
		if len(words) > 0 {
			consumed++
		}
		end := seg.StartTime + time.Duration(int64(total)*int64(consumed)/int64(totalChars))
		if len(words) == 0 {
			end = seg.EndTime
		}

		entries = append(entries, Entry{StartTime: start, EndTime: end, Text: text})
		start = end
	}
	return entries
}
