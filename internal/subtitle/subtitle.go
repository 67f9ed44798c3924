// Package subtitle converts document tracks to and from SRT, WebVTT and
// ASS subtitle files.
package subtitle

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// represents single subtitle entry
type Entry struct {
	Index     int
	StartTime time.Duration
	EndTime   time.Duration
	Text      string
	// Sizes holds one relative size per word of Text. Nil means every word
	// is at size 1.
	Sizes []float64
}

// Words splits the entry text on whitespace.
func (e Entry) Words() []string {
	return strings.Fields(e.Text)
}

// SizeAt returns the size factor of word i.
func (e Entry) SizeAt(i int) float64 {
	if i < 0 || i >= len(e.Sizes) || e.Sizes[i] <= 0 {
		return 1
	}
	return e.Sizes[i]
}

// represents complete subtitle track
type Subtitle struct {
	Entries  []Entry
	Language string
	Format   Format
}

// represents supported subtitle formats
type Format string

const (
	FormatSRT Format = "srt"
	FormatVTT Format = "vtt"
	FormatASS Format = "ass"
)

// ParseFormat accepts a format name or a file extension.
func ParseFormat(s string) (Format, error) {
	switch strings.TrimPrefix(strings.ToLower(s), ".") {
	case "srt":
		return FormatSRT, nil
	case "vtt":
		return FormatVTT, nil
	case "ass", "ssa":
		return FormatASS, nil
	default:
		return "", fmt.Errorf("unsupported subtitle format: %s", s)
	}
}

// subtitle format based on file extension
func FormatFromPath(path string) (Format, error) {
	return ParseFormat(filepath.Ext(path))
}

// file extension for a format
func (f Format) Extension() string {
	switch f {
	case FormatVTT:
		return ".vtt"
	case FormatASS:
		return ".ass"
	default:
		return ".srt"
	}
}

// represents transcribed audio segment
type Segment struct {
	StartTime time.Duration
	EndTime   time.Duration
	Text      string
}
