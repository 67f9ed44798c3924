package view

import (
	"errors"
	"sync"
	"time"

	"github.com/mgpai22/freespeech/internal/document"
	"github.com/mgpai22/freespeech/internal/observe"
	"github.com/mgpai22/freespeech/internal/operator"
)

const (
	// DefaultOffset is where the current time sits from the strip's left edge.
	DefaultOffset = 50.0
	// FrameBorder is the width of the resize handle at a box's right edge.
	FrameBorder = 24.0
	// DefaultMinBoxWidth keeps a box grabbable.
	DefaultMinBoxWidth = 20.0
)

var ErrNoDocument = errors.New("strip has no document")

// Box is the layout of one timed text on the strip, in content pixels.
type Box struct {
	Text  *document.TimedText
	Line  int
	X     float64
	Width float64
}

// Right edge of the box.
func (b Box) Right() float64 { return b.X + b.Width }

// Strip is the horizontal timeline. Content x is proportional to time and
// the whole content is translated so the current time sits at the offset.
type Strip struct {
	mu          sync.Mutex
	ctl         TimeSetter
	scale       *operator.Scale
	offset      float64
	minBoxWidth float64
	current     time.Duration
	doc         *document.Document
	detach      func()

	layout observe.Event[[]Box]
}

func NewStrip(ctl TimeSetter, scale *operator.Scale, offset, minBoxWidth float64) *Strip {
	if scale == nil {
		scale = operator.DefaultScale()
	}
	if minBoxWidth <= 0 {
		minBoxWidth = DefaultMinBoxWidth
	}
	return &Strip{ctl: ctl, scale: scale, offset: offset, minBoxWidth: minBoxWidth}
}

func (s *Strip) CurrentTime() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// SetCurrentTime moves the content under the offset marker.
func (s *Strip) SetCurrentTime(value time.Duration) {
	s.mu.Lock()
	s.current = value
	s.mu.Unlock()
}

// Offset is the screen x of the current time marker.
func (s *Strip) Offset() float64 { return s.offset }

// Translation is the x shift applied to content coordinates.
func (s *Strip) Translation() float64 {
	return s.offset - s.scale.DurationToPixels(s.CurrentTime())
}

// TimeAt maps a screen x to a timeline position.
func (s *Strip) TimeAt(x float64) time.Duration {
	return s.scale.PixelsToDuration(x - s.Translation())
}

// Drag scrubs the timeline. Dragging right moves back in time.
func (s *Strip) Drag(dx float64) {
	v := max(s.CurrentTime()-s.scale.PixelsToDuration(dx), 0)
	s.SetCurrentTime(v)
	if s.ctl != nil {
		s.ctl.SetCurrentTime(v, s)
	}
}

// Attach shows doc on the strip and relayouts whenever a word is resized.
// A nil doc detaches.
func (s *Strip) Attach(doc *document.Document) {
	s.mu.Lock()
	if s.detach != nil {
		s.detach()
		s.detach = nil
	}
	s.doc = doc
	if doc != nil {
		s.detach = doc.OnAnySizeFactorChanged(func(document.WordSizeChange) {
			s.relayout()
		})
	}
	s.mu.Unlock()
	s.relayout()
}

// OnLayout fires with the fresh layout after any change to the boxes.
func (s *Strip) OnLayout(fn func([]Box)) func() {
	return s.layout.Subscribe(fn)
}

func (s *Strip) relayout() {
	s.layout.Emit(s.Boxes())
}

// Boxes lays out every timed text of the attached document.
func (s *Strip) Boxes() []Box {
	s.mu.Lock()
	doc := s.doc
	s.mu.Unlock()
	if doc == nil {
		return nil
	}

	var boxes []Box
	for line, texts := range doc.Lines() {
		for _, t := range texts {
			boxes = append(boxes, s.box(line, t))
		}
	}
	return boxes
}

func (s *Strip) box(line int, t *document.TimedText) Box {
	return Box{
		Text:  t,
		Line:  line,
		X:     s.scale.DurationToPixels(t.StartTime()),
		Width: max(s.scale.DurationToPixels(t.Duration()), s.minBoxWidth),
	}
}

// BoxAt returns the box of track line under screen x.
func (s *Strip) BoxAt(line int, x float64) (Box, bool) {
	cx := x - s.Translation()
	for _, b := range s.Boxes() {
		if b.Line == line && b.X <= cx && cx <= b.Right() {
			return b, true
		}
	}
	return Box{}, false
}

// OnResizeHandle reports whether screen x grabs the right edge of b.
func (s *Strip) OnResizeHandle(b Box, x float64) bool {
	cx := x - s.Translation()
	return cx >= b.Right()-FrameBorder && cx <= b.Right()
}

// CreateAt adds a new timed text to track line at screen x.
func (s *Strip) CreateAt(line int, x float64) (*document.TimedText, error) {
	s.mu.Lock()
	doc := s.doc
	s.mu.Unlock()
	if doc == nil {
		return nil, ErrNoDocument
	}

	t, err := document.NewTimedText(max(s.TimeAt(x), 0))
	if err != nil {
		return nil, err
	}
	if err := doc.AddText(line, t); err != nil {
		return nil, err
	}
	s.relayout()
	return t, nil
}

// MoveBox shifts t by dx pixels, never before zero.
func (s *Strip) MoveBox(t *document.TimedText, dx float64) error {
	start := max(t.StartTime()+s.scale.PixelsToDuration(dx), 0)
	if err := t.SetStartTime(start); err != nil {
		return err
	}
	s.relayout()
	return nil
}

// ResizeBox grows or shrinks t by dx pixels down to the minimum box width.
func (s *Strip) ResizeBox(t *document.TimedText, dx float64) error {
	width := max(s.scale.DurationToPixels(t.Duration())+dx, s.minBoxWidth)
	d := s.scale.PixelsToDuration(width)
	if d <= 0 {
		d = time.Millisecond
	}
	if err := t.SetDuration(d); err != nil {
		return err
	}
	s.relayout()
	return nil
}
