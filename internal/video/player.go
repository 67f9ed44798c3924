package video

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/mgpai22/freespeech/internal/document"
	"github.com/mgpai22/freespeech/internal/observe"
)

var (
	ErrNotOpen     = errors.New("no video open")
	ErrInvalidRate = errors.New("unsupported playback rate")
)

const (
	DefaultRate   = 1.0
	DefaultVolume = 0.67
)

// DefaultRates are the selectable playback rates.
var DefaultRates = []float64{0.5, 1.0, 2.0}

// PlayerOption configures a Player.
type PlayerOption func(*Player)

// WithClock replaces the wall clock used to advance playback.
func WithClock(now func() time.Time) PlayerOption {
	return func(p *Player) {
		if now != nil {
			p.now = now
		}
	}
}

// WithRates sets the selectable playback rates.
func WithRates(rates []float64) PlayerOption {
	return func(p *Player) {
		if len(rates) > 0 {
			p.rates = slices.Clone(rates)
		}
	}
}

// Player is the playback clock of an opened video. The media timeline runs
// from zero to the probed duration.
type Player struct {
	mu       sync.Mutex
	now      func() time.Time
	rates    []float64
	source   *Source
	playing  bool
	position time.Duration
	anchor   time.Time
	rate     float64
	volume   float64

	onOpen  observe.Event[*Source]
	onClose observe.Event[*Source]
	onPlay  observe.Event[time.Duration]
	onPause observe.Event[time.Duration]
}

func NewPlayer(opts ...PlayerOption) *Player {
	p := &Player{
		now:    time.Now,
		rates:  slices.Clone(DefaultRates),
		rate:   DefaultRate,
		volume: DefaultVolume,
	}
	for _, opt := range opts {
		opt(p)
	}
	if !slices.Contains(p.rates, p.rate) {
		p.rate = p.rates[0]
	}
	return p
}

func (p *Player) OnOpen(fn func(*Source)) func()        { return p.onOpen.Subscribe(fn) }
func (p *Player) OnClose(fn func(*Source)) func()       { return p.onClose.Subscribe(fn) }
func (p *Player) OnPlay(fn func(time.Duration)) func()  { return p.onPlay.Subscribe(fn) }
func (p *Player) OnPause(fn func(time.Duration)) func() { return p.onPause.Subscribe(fn) }

// Open replaces the current video with src, paused at the start.
func (p *Player) Open(src *Source) {
	p.Close()

	p.mu.Lock()
	p.source = src
	p.position = 0
	p.playing = false
	p.mu.Unlock()

	p.onOpen.Emit(src)
}

// Close stops playback and drops the current video.
func (p *Player) Close() {
	p.mu.Lock()
	src := p.source
	p.source = nil
	p.playing = false
	p.position = 0
	p.mu.Unlock()

	if src != nil {
		p.onClose.Emit(src)
	}
}

func (p *Player) Source() *Source {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.source
}

// Duration returns the length of the open video, zero when none is open.
func (p *Player) Duration() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.durationLocked()
}

func (p *Player) durationLocked() time.Duration {
	if p.source == nil || p.source.Info == nil {
		return 0
	}
	return p.source.Info.Duration
}

func (p *Player) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing
}

func (p *Player) Play() error {
	p.mu.Lock()
	if p.source == nil {
		p.mu.Unlock()
		return ErrNotOpen
	}
	if p.playing {
		p.mu.Unlock()
		return nil
	}
	p.playing = true
	p.anchor = p.now()
	at := p.position
	p.mu.Unlock()

	p.onPlay.Emit(at)
	return nil
}

func (p *Player) Pause() {
	p.mu.Lock()
	if !p.playing {
		p.mu.Unlock()
		return
	}
	p.position = p.positionLocked()
	p.playing = false
	at := p.position
	p.mu.Unlock()

	p.onPause.Emit(at)
}

// Toggle switches between playing and paused.
func (p *Player) Toggle() error {
	if p.Playing() {
		p.Pause()
		return nil
	}
	return p.Play()
}

// CurrentTime returns the playback position. Reaching the end of the media
// rewinds to the start and pauses.
func (p *Player) CurrentTime() time.Duration {
	p.mu.Lock()
	pos := p.positionLocked()
	end := p.durationLocked()
	if !p.playing || pos < end {
		p.mu.Unlock()
		return pos
	}
	p.playing = false
	p.position = 0
	p.mu.Unlock()

	p.onPause.Emit(0)
	return 0
}

// SetCurrentTime seeks, clamped to the media timeline.
func (p *Player) SetCurrentTime(value time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.source == nil {
		return
	}
	p.position = min(max(value, 0), p.durationLocked())
	p.anchor = p.now()
}

func (p *Player) positionLocked() time.Duration {
	if !p.playing {
		return p.position
	}
	elapsed := p.now().Sub(p.anchor)
	return p.position + time.Duration(float64(elapsed)*p.rate)
}

func (p *Player) Rates() []float64 {
	return slices.Clone(p.rates)
}

func (p *Player) Rate() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rate
}

// SetRate changes the playback rate without moving the position.
func (p *Player) SetRate(rate float64) error {
	if !slices.Contains(p.rates, rate) {
		return fmt.Errorf("%w: %v", ErrInvalidRate, rate)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.position = p.positionLocked()
	p.anchor = p.now()
	p.rate = rate
	return nil
}

func (p *Player) Volume() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.volume
}

// SetVolume clamps v to [0, 1].
func (p *Player) SetVolume(v float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.volume = min(max(v, 0), 1)
}

// Overlay returns the track-0 text shown over the video at the given time.
func Overlay(doc *document.Document, at time.Duration) *document.TimedText {
	if doc == nil || doc.LineCount() == 0 {
		return nil
	}
	for _, t := range doc.Line(0) {
		if t.Contains(at) {
			return t
		}
	}
	return nil
}
