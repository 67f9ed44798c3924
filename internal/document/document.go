// Package document holds the caption model: words with relative sizes,
// timed texts and documents made of parallel tracks, together with the
// plain-text .fsw storage format.
package document

import (
	"regexp"
	"slices"

	"github.com/mgpai22/freespeech/internal/observe"
)

const (
	DefaultName = "new_file"
	Extension   = "fsw"
)

var pathnamePattern = regexp.MustCompile(`^(.*[/\\])?([^/\\]+?)(\.` + Extension + `)?$`)

// Document is a set of parallel caption tracks ("lines") plus the candidate
// video references they were timed against. The zero value is not usable,
// call New.
type Document struct {
	Name string
	// directory including its trailing separator, empty when unknown
	Path string

	video []string
	lines [][]*TimedText

	attached    map[*TimedText]func()
	sizeChanged observe.Event[WordSizeChange]
}

func New(name string) *Document {
	if name == "" {
		name = DefaultName
	}
	return &Document{
		Name:     name,
		attached: make(map[*TimedText]func()),
	}
}

// Pathname is Path + Name + ".fsw".
func (d *Document) Pathname() string {
	return d.Path + d.Name + "." + Extension
}

// SetPathname splits pathname into directory and base name. The .fsw
// extension is optional on input. Unparseable values are ignored.
func (d *Document) SetPathname(pathname string) {
	m := pathnamePattern.FindStringSubmatch(pathname)
	if m == nil {
		return
	}
	d.Path = m[1]
	d.Name = m[2]
}

// Video returns the candidate video references in the order they should be
// tried.
func (d *Document) Video() []string {
	return slices.Clone(d.video)
}

// SetVideo replaces the candidate list, dropping duplicates and empty
// entries while keeping the first occurrence order.
func (d *Document) SetVideo(refs ...string) {
	d.video = d.video[:0]
	for _, ref := range refs {
		d.AddVideo(ref)
	}
}

func (d *Document) AddVideo(ref string) {
	if ref == "" || slices.Contains(d.video, ref) {
		return
	}
	d.video = append(d.video, ref)
}

func (d *Document) LineCount() int {
	return len(d.lines)
}

// Lines returns a copy of the track table. The inner slices are copies too.
func (d *Document) Lines() [][]*TimedText {
	lines := make([][]*TimedText, len(d.lines))
	for i, line := range d.lines {
		lines[i] = slices.Clone(line)
	}
	return lines
}

// Line returns a copy of track index, or nil when it does not exist.
func (d *Document) Line(index int) []*TimedText {
	if index < 0 || index >= len(d.lines) {
		return nil
	}
	return slices.Clone(d.lines[index])
}

// Texts flattens every track in line-major order.
func (d *Document) Texts() []*TimedText {
	var texts []*TimedText
	for _, line := range d.lines {
		texts = append(texts, line...)
	}
	return texts
}

func (d *Document) Contains(t *TimedText) bool {
	_, ok := d.attached[t]
	return ok
}

// Locate returns the track and position of t.
func (d *Document) Locate(t *TimedText) (line, index int, ok bool) {
	for i, l := range d.lines {
		if j := slices.Index(l, t); j >= 0 {
			return i, j, true
		}
	}
	return 0, 0, false
}

// AddText appends t to track line, creating empty tracks up to line as
// needed.
func (d *Document) AddText(line int, t *TimedText) error {
	if line < 0 {
		return ErrIndexOutOfRange
	}
	d.grow(line)
	d.lines[line] = append(d.lines[line], t)
	d.attach(t)
	return nil
}

// InsertText inserts t before position index of track line.
func (d *Document) InsertText(line, index int, t *TimedText) error {
	if line < 0 {
		return ErrIndexOutOfRange
	}
	d.grow(line)
	if index < 0 || index > len(d.lines[line]) {
		return ErrIndexOutOfRange
	}
	d.lines[line] = slices.Insert(d.lines[line], index, t)
	d.attach(t)
	return nil
}

// RemoveText detaches t from whichever track holds it.
func (d *Document) RemoveText(t *TimedText) error {
	line, index, ok := d.Locate(t)
	if !ok {
		return ErrNotInDocument
	}
	d.lines[line] = slices.Delete(d.lines[line], index, index+1)
	d.detach(t)
	return nil
}

// OnAnySizeFactorChanged subscribes to size changes of every word attached
// to the document, so display surfaces can relayout without per-word
// subscriptions.
func (d *Document) OnAnySizeFactorChanged(fn func(WordSizeChange)) func() {
	return d.sizeChanged.Subscribe(fn)
}

// Close drops every subscriber of the document bus. The content stays
// readable.
func (d *Document) Close() {
	d.sizeChanged.Clear()
}

func (d *Document) grow(line int) {
	for len(d.lines) <= line {
		d.lines = append(d.lines, nil)
	}
}

func (d *Document) replaceLines(lines [][]*TimedText) {
	for t, unsubscribe := range d.attached {
		unsubscribe()
		delete(d.attached, t)
	}
	d.lines = lines
	for _, line := range lines {
		for _, t := range line {
			d.attach(t)
		}
	}
}

func (d *Document) attach(t *TimedText) {
	if _, ok := d.attached[t]; ok {
		return
	}
	d.attached[t] = t.OnWordSizeFactorChanged(d.sizeChanged.Emit)
}

func (d *Document) detach(t *TimedText) {
	// a text may legitimately sit twice in the table; keep the bus while
	// any copy is left
	if _, _, ok := d.Locate(t); ok {
		return
	}
	if unsubscribe, ok := d.attached[t]; ok {
		unsubscribe()
		delete(d.attached, t)
	}
}
