package document

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidSizeFactor = errors.New("size factor must be a positive finite number")
	ErrInvalidWord       = errors.New("word must be non-empty and contain no whitespace")
	ErrInvalidDuration   = errors.New("duration must be positive")
	ErrNegativeStart     = errors.New("start time must not be negative")
	ErrTimeOutOfRange    = errors.New("time out of range")
	ErrIndexOutOfRange   = errors.New("index out of range")
	ErrNotInDocument     = errors.New("timed text does not belong to the document")
)

// ParseError reports a stored line that could not be turned back into a
// timed text. Line is 1-based and counts the video reference line.
type ParseError struct {
	Line int
	Text string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse line %d %q: %v", e.Line, truncate(e.Text, 60), e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
