// Package view holds the headless time views that sit next to the video
// player: the time spinner and the timeline strip. Both take part in
// time synchronization the same way a windowed view would.
package view

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/mgpai22/freespeech/internal/observe"
	"github.com/mgpai22/freespeech/internal/operator"
)

// DefaultStep is how far one spinner increment moves the time.
const DefaultStep = 5 * time.Millisecond

var ErrInvalidTime = errors.New("invalid time")

// TimeSetter is the controller side a view reports its edits to.
type TimeSetter interface {
	SetCurrentTime(value time.Duration, origin operator.Synchronized)
}

// Spinner shows the current time as hh:mm:ss:mmm and edits it by text or
// by fixed steps.
type Spinner struct {
	mu      sync.Mutex
	ctl     TimeSetter
	step    time.Duration
	value   time.Duration
	changed observe.Event[time.Duration]
}

func NewSpinner(ctl TimeSetter, step time.Duration) *Spinner {
	if step <= 0 {
		step = DefaultStep
	}
	return &Spinner{ctl: ctl, step: step}
}

func (s *Spinner) CurrentTime() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value
}

// SetCurrentTime updates the display without reporting back.
func (s *Spinner) SetCurrentTime(value time.Duration) {
	s.mu.Lock()
	s.value = value
	s.mu.Unlock()
	s.changed.Emit(value)
}

// OnChanged fires whenever the displayed value changes.
func (s *Spinner) OnChanged(fn func(time.Duration)) func() {
	return s.changed.Subscribe(fn)
}

func (s *Spinner) Text() string {
	return FormatTime(s.CurrentTime())
}

// SetText parses a typed value and reports it to the controller.
func (s *Spinner) SetText(text string) error {
	v, err := ParseTime(text)
	if err != nil {
		return err
	}
	s.commit(v)
	return nil
}

// Increment moves the time forward by n steps.
func (s *Spinner) Increment(n int) {
	s.mu.Lock()
	v := s.value + time.Duration(n)*s.step
	s.mu.Unlock()
	s.commit(max(v, 0))
}

// Decrement moves the time back by n steps, stopping at zero.
func (s *Spinner) Decrement(n int) {
	s.Increment(-n)
}

func (s *Spinner) commit(v time.Duration) {
	s.SetCurrentTime(v)
	if s.ctl != nil {
		s.ctl.SetCurrentTime(v, s)
	}
}

// FormatTime renders d as hh:mm:ss:mmm.
func FormatTime(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	ms := d.Milliseconds()
	return fmt.Sprintf("%02d:%02d:%02d:%03d",
		ms/3_600_000,
		ms/60_000%60,
		ms/1000%60,
		ms%1000,
	)
}

// ParseTime reads hh:mm:ss:mmm. Fields are not range checked beyond being
// non-negative, so 00:90:00:000 is ninety minutes.
func ParseTime(text string) (time.Duration, error) {
	parts := strings.Split(strings.TrimSpace(text), ":")
	if len(parts) != 4 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTime, text)
	}
	units := []time.Duration{time.Hour, time.Minute, time.Second, time.Millisecond}

	var total time.Duration
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("%w: %q", ErrInvalidTime, text)
		}
		total += time.Duration(n) * units[i]
	}
	return total, nil
}
