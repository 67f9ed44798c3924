package video

import (
	"errors"
	"testing"
	"time"

	"github.com/mgpai22/freespeech/internal/document"
)

type manualClock struct{ t time.Time }

func (c *manualClock) now() time.Time          { return c.t }
func (c *manualClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func openPlayer(t *testing.T, length time.Duration) (*Player, *manualClock) {
	t.Helper()
	clock := &manualClock{t: time.Unix(1700000000, 0)}
	p := NewPlayer(WithClock(clock.now))
	p.Open(&Source{Path: "clip.mp4", Info: &Info{Duration: length}})
	return p, clock
}

func TestPlayerAdvancesWithRate(t *testing.T) {
	p, clock := openPlayer(t, time.Minute)

	if err := p.Play(); err != nil {
		t.Fatalf("Play: %v", err)
	}
	clock.advance(2 * time.Second)
	if got := p.CurrentTime(); got != 2*time.Second {
		t.Errorf("CurrentTime = %v, want 2s", got)
	}

	if err := p.SetRate(2.0); err != nil {
		t.Fatalf("SetRate: %v", err)
	}
	clock.advance(time.Second)
	if got := p.CurrentTime(); got != 4*time.Second {
		t.Errorf("CurrentTime at 2x = %v, want 4s", got)
	}

	p.Pause()
	clock.advance(time.Hour)
	if got := p.CurrentTime(); got != 4*time.Second {
		t.Errorf("paused CurrentTime = %v, want 4s", got)
	}
}

func TestPlayerSeekClamps(t *testing.T) {
	p, _ := openPlayer(t, 10*time.Second)

	p.SetCurrentTime(3 * time.Second)
	if got := p.CurrentTime(); got != 3*time.Second {
		t.Errorf("CurrentTime = %v", got)
	}
	p.SetCurrentTime(-time.Second)
	if got := p.CurrentTime(); got != 0 {
		t.Errorf("negative seek = %v", got)
	}
	p.SetCurrentTime(time.Minute)
	if got := p.CurrentTime(); got != 10*time.Second {
		t.Errorf("seek past end = %v", got)
	}
}

func TestPlayerEndOfMediaRewinds(t *testing.T) {
	p, clock := openPlayer(t, 5*time.Second)

	var paused []time.Duration
	p.OnPause(func(at time.Duration) { paused = append(paused, at) })

	if err := p.Play(); err != nil {
		t.Fatalf("Play: %v", err)
	}
	clock.advance(6 * time.Second)

	if got := p.CurrentTime(); got != 0 {
		t.Errorf("CurrentTime after end = %v, want 0", got)
	}
	if p.Playing() {
		t.Error("player still playing after end of media")
	}
	if len(paused) != 1 || paused[0] != 0 {
		t.Errorf("pause events = %v", paused)
	}
}

func TestPlayerRatesAndVolume(t *testing.T) {
	p := NewPlayer()
	if p.Rate() != DefaultRate || p.Volume() != DefaultVolume {
		t.Errorf("defaults = rate %v volume %v", p.Rate(), p.Volume())
	}
	if err := p.SetRate(3); !errors.Is(err, ErrInvalidRate) {
		t.Errorf("SetRate(3) err = %v", err)
	}
	p.SetVolume(1.5)
	if p.Volume() != 1 {
		t.Errorf("Volume = %v, want 1", p.Volume())
	}

	custom := NewPlayer(WithRates([]float64{0.25, 0.75}))
	if custom.Rate() != 0.25 {
		t.Errorf("Rate without default in set = %v", custom.Rate())
	}
}

func TestPlayerHooks(t *testing.T) {
	p := NewPlayer()
	var events []string
	p.OnOpen(func(s *Source) { events = append(events, "open:"+s.Path) })
	p.OnClose(func(s *Source) { events = append(events, "close:"+s.Path) })
	p.OnPlay(func(time.Duration) { events = append(events, "play") })

	if err := p.Play(); !errors.Is(err, ErrNotOpen) {
		t.Errorf("Play without source err = %v", err)
	}

	p.Open(&Source{Path: "a.mp4", Info: &Info{Duration: time.Second}})
	if err := p.Toggle(); err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	p.Open(&Source{Path: "b.mp4", Info: &Info{Duration: time.Second}})
	p.Close()
	p.Close()

	want := []string{"open:a.mp4", "play", "close:a.mp4", "open:b.mp4", "close:b.mp4"}
	if len(events) != len(want) {
		t.Fatalf("events = %v, want %v", events, want)
	}
	for i := range want {
		if events[i] != want[i] {
			t.Errorf("events[%d] = %s, want %s", i, events[i], want[i])
		}
	}
}

func TestOverlayUsesFirstTrack(t *testing.T) {
	doc := document.New("talk")
	first, err := document.NewTimedText(time.Second)
	if err != nil {
		t.Fatal(err)
	}
	other, err := document.NewTimedText(0)
	if err != nil {
		t.Fatal(err)
	}
	if err := doc.AddText(0, first); err != nil {
		t.Fatal(err)
	}
	if err := doc.AddText(1, other); err != nil {
		t.Fatal(err)
	}

	if got := Overlay(doc, 1500*time.Millisecond); got != first {
		t.Errorf("Overlay(1.5s) = %v", got)
	}
	if got := Overlay(doc, 500*time.Millisecond); got != nil {
		t.Errorf("Overlay(0.5s) = %v, want nil because track 1 is not shown", got)
	}
	if Overlay(nil, 0) != nil {
		t.Error("Overlay(nil) should be nil")
	}
}
