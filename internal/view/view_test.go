package view

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mgpai22/freespeech/internal/document"
	"github.com/mgpai22/freespeech/internal/operator"
)

type report struct {
	value  time.Duration
	origin operator.Synchronized
}

type recorder struct{ reports []report }

func (r *recorder) SetCurrentTime(v time.Duration, origin operator.Synchronized) {
	r.reports = append(r.reports, report{v, origin})
}

func TestFormatTime(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "00:00:00:000"},
		{1500 * time.Millisecond, "00:00:01:500"},
		{time.Hour + 2*time.Minute + 3*time.Second + 4*time.Millisecond, "01:02:03:004"},
		{-time.Second, "00:00:00:000"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatTime(tt.in))
	}
}

func TestParseTime(t *testing.T) {
	got, err := ParseTime("01:02:03:004")
	require.NoError(t, err)
	assert.Equal(t, time.Hour+2*time.Minute+3*time.Second+4*time.Millisecond, got)

	got, err = ParseTime("00:90:00:000")
	require.NoError(t, err)
	assert.Equal(t, 90*time.Minute, got)

	for _, bad := range []string{"", "00:00:01", "aa:00:00:000", "00:-1:00:000"} {
		_, err := ParseTime(bad)
		assert.ErrorIs(t, err, ErrInvalidTime, bad)
	}
}

func TestSpinnerReportsEditsWithItself(t *testing.T) {
	rec := &recorder{}
	s := NewSpinner(rec, 0)

	require.NoError(t, s.SetText("00:00:02:000"))
	s.Increment(2)
	s.Decrement(1000)

	require.Len(t, rec.reports, 3)
	assert.Equal(t, 2*time.Second, rec.reports[0].value)
	assert.Equal(t, 2*time.Second+10*time.Millisecond, rec.reports[1].value)
	assert.Equal(t, time.Duration(0), rec.reports[2].value)
	for _, r := range rec.reports {
		assert.Same(t, s, r.origin)
	}
	assert.Error(t, s.SetText("later"))
	assert.Len(t, rec.reports, 3)
}

func TestSpinnerListenerSideIsSilent(t *testing.T) {
	rec := &recorder{}
	s := NewSpinner(rec, time.Second)

	var shown []string
	s.OnChanged(func(time.Duration) { shown = append(shown, s.Text()) })

	s.SetCurrentTime(61 * time.Second)
	assert.Empty(t, rec.reports)
	assert.Equal(t, []string{"00:01:01:000"}, shown)
}

func newStrip(t *testing.T) (*Strip, *recorder, *document.Document) {
	t.Helper()
	scale, err := operator.NewScale(1)
	require.NoError(t, err)
	rec := &recorder{}
	s := NewStrip(rec, scale, 50, 20)
	doc := document.New("talk")
	s.Attach(doc)
	return s, rec, doc
}

func TestStripTranslationFollowsTime(t *testing.T) {
	s, rec, _ := newStrip(t)
	assert.Equal(t, 50.0, s.Translation())

	s.SetCurrentTime(200 * time.Millisecond)
	assert.Equal(t, -150.0, s.Translation())
	assert.Equal(t, 200*time.Millisecond, s.TimeAt(50))
	assert.Empty(t, rec.reports)
}

func TestStripDragScrubs(t *testing.T) {
	s, rec, _ := newStrip(t)
	s.SetCurrentTime(time.Second)

	s.Drag(300)
	s.Drag(-100)
	s.Drag(5000)

	require.Len(t, rec.reports, 3)
	assert.Equal(t, 700*time.Millisecond, rec.reports[0].value)
	assert.Equal(t, 800*time.Millisecond, rec.reports[1].value)
	assert.Equal(t, time.Duration(0), rec.reports[2].value)
	assert.Same(t, s, rec.reports[0].origin)
}

func TestStripCreateAndLayout(t *testing.T) {
	s, _, doc := newStrip(t)

	var layouts int
	s.OnLayout(func([]Box) { layouts++ })

	created, err := s.CreateAt(1, 550)
	require.NoError(t, err)
	assert.Equal(t, 500*time.Millisecond, created.StartTime())
	assert.True(t, doc.Contains(created))
	assert.Equal(t, 1, layouts)

	boxes := s.Boxes()
	require.Len(t, boxes, 1)
	assert.Equal(t, Box{Text: created, Line: 1, X: 500, Width: 2000}, boxes[0])

	b, ok := s.BoxAt(1, 600)
	require.True(t, ok)
	assert.Same(t, created, b.Text)
	_, ok = s.BoxAt(0, 600)
	assert.False(t, ok)

	assert.True(t, s.OnResizeHandle(b, 50+2490))
	assert.False(t, s.OnResizeHandle(b, 50+1000))

	w, err := created.Word(0)
	require.NoError(t, err)
	require.NoError(t, w.SetSizeFactor(2))
	assert.Equal(t, 2, layouts)
}

func TestStripMoveAndResize(t *testing.T) {
	s, _, doc := newStrip(t)
	text, err := document.NewTimedText(time.Second)
	require.NoError(t, err)
	require.NoError(t, doc.AddText(0, text))

	require.NoError(t, s.MoveBox(text, -250))
	assert.Equal(t, 750*time.Millisecond, text.StartTime())
	require.NoError(t, s.MoveBox(text, -5000))
	assert.Equal(t, time.Duration(0), text.StartTime())

	require.NoError(t, s.ResizeBox(text, 500))
	assert.Equal(t, 2500*time.Millisecond, text.Duration())
	require.NoError(t, s.ResizeBox(text, -10000))
	assert.Equal(t, 20*time.Millisecond, text.Duration())
}

func TestStripWithoutDocument(t *testing.T) {
	s := NewStrip(nil, nil, DefaultOffset, 0)
	_, err := s.CreateAt(0, 10)
	assert.ErrorIs(t, err, ErrNoDocument)
	assert.Nil(t, s.Boxes())
}
