package document

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPathname(t *testing.T) {
	tests := []struct {
		input    string
		wantPath string
		wantName string
	}{
		{"/home/me/talk.fsw", "/home/me/", "talk"},
		{"/home/me/talk", "/home/me/", "talk"},
		{"talk.fsw", "", "talk"},
		{`C:\docs\talk.fsw`, `C:\docs\`, "talk"},
		{"notes/file.txt", "notes/", "file.txt"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			doc := New("")
			doc.SetPathname(tt.input)
			assert.Equal(t, tt.wantPath, doc.Path)
			assert.Equal(t, tt.wantName, doc.Name)
		})
	}

	doc := New("talk")
	doc.Path = "/tmp/"
	assert.Equal(t, "/tmp/talk.fsw", doc.Pathname())
}

func TestNewDefaultName(t *testing.T) {
	assert.Equal(t, DefaultName, New("").Name)
	assert.Equal(t, "new_file.fsw", New("").Pathname())
}

func TestVideoSetKeepsOrderWithoutDuplicates(t *testing.T) {
	doc := New("")
	doc.SetVideo("b.mp4", "a.mp4", "b.mp4", "")
	doc.AddVideo("a.mp4")
	doc.AddVideo("c.mp4")

	assert.Equal(t, []string{"b.mp4", "a.mp4", "c.mp4"}, doc.Video())
}

func TestTextsFlattenLineMajor(t *testing.T) {
	doc := New("")
	first := mustText(t, 5*time.Second, time.Second, "first")
	second := mustText(t, 0, time.Second, "second")
	third := mustText(t, time.Second, time.Second, "third")

	require.NoError(t, doc.AddText(1, first))
	require.NoError(t, doc.AddText(0, second))
	require.NoError(t, doc.InsertText(0, 0, third))

	assert.Equal(t, []*TimedText{third, second, first}, doc.Texts())
	assert.True(t, doc.Contains(first))

	line, index, ok := doc.Locate(second)
	require.True(t, ok)
	assert.Equal(t, 0, line)
	assert.Equal(t, 1, index)
}

func TestRemoveText(t *testing.T) {
	doc := New("")
	tt := mustText(t, 0, time.Second, "x")
	require.NoError(t, doc.AddText(0, tt))

	require.NoError(t, doc.RemoveText(tt))
	assert.False(t, doc.Contains(tt))
	assert.ErrorIs(t, doc.RemoveText(tt), ErrNotInDocument)
	assert.Equal(t, 1, doc.LineCount())
}

func TestInsertTextBounds(t *testing.T) {
	doc := New("")
	tt := mustText(t, 0, time.Second, "x")
	assert.ErrorIs(t, doc.InsertText(0, 1, tt), ErrIndexOutOfRange)
	assert.ErrorIs(t, doc.AddText(-1, tt), ErrIndexOutOfRange)
}

func TestSizeFactorBusIsScopedToDocument(t *testing.T) {
	doc := New("")
	other := New("")
	tt := mustText(t, 0, time.Second, "a b")
	kept := mustText(t, 2*time.Second, time.Second, "c")
	require.NoError(t, doc.AddText(0, tt))
	require.NoError(t, doc.AddText(0, kept))

	var docEvents, otherEvents int
	doc.OnAnySizeFactorChanged(func(WordSizeChange) { docEvents++ })
	other.OnAnySizeFactorChanged(func(WordSizeChange) { otherEvents++ })

	w, _ := tt.Word(1)
	require.NoError(t, w.SetSizeFactor(2))
	assert.Equal(t, 1, docEvents)
	assert.Equal(t, 0, otherEvents)

	require.NoError(t, doc.RemoveText(tt))
	require.NoError(t, w.SetSizeFactor(3))
	assert.Equal(t, 1, docEvents)

	kw, _ := kept.Word(0)
	doc.Close()
	require.NoError(t, kw.SetSizeFactor(2))
	assert.Equal(t, 1, docEvents)
	assert.Equal(t, []*TimedText{kept}, doc.Texts())
}

func TestSetContentReattachesBus(t *testing.T) {
	doc := sampleDocument(t)
	old := doc.Texts()[0]

	events := 0
	doc.OnAnySizeFactorChanged(func(WordSizeChange) { events++ })

	require.NoError(t, doc.SetContent("clip.mp4\n0~~fresh words>>1000.0>>0.0"))

	w, _ := old.Word(0)
	require.NoError(t, w.SetSizeFactor(2))
	assert.Equal(t, 0, events)

	fresh, _ := doc.Texts()[0].Word(1)
	require.NoError(t, fresh.SetSizeFactor(2))
	assert.Equal(t, 1, events)
}
