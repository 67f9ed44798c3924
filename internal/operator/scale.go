package operator

import (
	"errors"
	"math"
	"sync"
	"time"
)

// DefaultReadingSpeed is the default timeline scale in pixels per
// millisecond.
const DefaultReadingSpeed = 0.3

// ErrInvalidScale is returned for a zero, negative or non-finite scale.
var ErrInvalidScale = errors.New("scale must be a positive finite number")

// Scale converts between timeline pixels and time. The inverse is
// recomputed lazily after each change.
type Scale struct {
	mu          sync.Mutex
	pixelsPerMs float64
	msPerPixel  float64
	stale       bool
}

// NewScale returns a scale of pixelsPerMs.
func NewScale(pixelsPerMs float64) (*Scale, error) {
	s := &Scale{}
	if err := s.SetPixelsPerMillisecond(pixelsPerMs); err != nil {
		return nil, err
	}
	return s, nil
}

// DefaultScale returns a scale at DefaultReadingSpeed.
func DefaultScale() *Scale {
	return &Scale{pixelsPerMs: DefaultReadingSpeed, stale: true}
}

func (s *Scale) PixelsPerMillisecond() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pixelsPerMs
}

func (s *Scale) SetPixelsPerMillisecond(v float64) error {
	if !validScale(v) {
		return ErrInvalidScale
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pixelsPerMs = v
	s.stale = true
	return nil
}

func (s *Scale) MillisecondsPerPixel() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inverse()
}

func (s *Scale) SetMillisecondsPerPixel(v float64) error {
	if !validScale(v) {
		return ErrInvalidScale
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pixelsPerMs = 1 / v
	s.msPerPixel = v
	s.stale = false
	return nil
}

// DurationToPixels returns the width of d on the timeline.
func (s *Scale) DurationToPixels(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond) * s.PixelsPerMillisecond()
}

// PixelsToDuration returns the time covered by px pixels.
func (s *Scale) PixelsToDuration(px float64) time.Duration {
	s.mu.Lock()
	ms := px * s.inverse()
	s.mu.Unlock()
	return time.Duration(math.Round(ms * float64(time.Millisecond)))
}

func (s *Scale) inverse() float64 {
	if s.stale {
		s.msPerPixel = 1 / s.pixelsPerMs
		s.stale = false
	}
	return s.msPerPixel
}

func validScale(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
