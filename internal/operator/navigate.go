package operator

import (
	"cmp"
	"slices"

	"github.com/mgpai22/freespeech/internal/document"
)

// FocusedText returns the timed text under the current time. Lower tracks
// win over higher ones; within a track the earliest start wins. It returns
// nil without a document or a match.
func (o *Operator) FocusedText() *document.TimedText {
	doc := o.Document()
	if doc == nil {
		return nil
	}
	now := o.CurrentTime()

	for _, line := range doc.Lines() {
		var best *document.TimedText
		for _, t := range line {
			if !t.Contains(now) {
				continue
			}
			if best == nil || t.StartTime() < best.StartTime() {
				best = t
			}
		}
		if best != nil {
			return best
		}
	}
	return nil
}

// SetFocusedText moves the current time to the start of t. It returns false
// when t is nil or not part of the open document.
func (o *Operator) SetFocusedText(t *document.TimedText) bool {
	doc := o.Document()
	if t == nil || doc == nil || !doc.Contains(t) {
		return false
	}
	o.SetCurrentTime(t.StartTime(), nil)
	return true
}

// NextText focuses the first text starting after the current time, steps
// times. It stops early once nothing is ahead and returns the number of
// steps taken.
func (o *Operator) NextText(steps int) int {
	return o.walk(steps, func(a, b *document.TimedText) int {
		return cmp.Compare(a.StartTime(), b.StartTime())
	}, func(t *document.TimedText) bool {
		return t.StartTime() > o.CurrentTime()
	})
}

// PreviousText focuses the first text starting before the current time,
// steps times, walking backwards.
func (o *Operator) PreviousText(steps int) int {
	return o.walk(steps, func(a, b *document.TimedText) int {
		return cmp.Compare(b.StartTime(), a.StartTime())
	}, func(t *document.TimedText) bool {
		return t.StartTime() < o.CurrentTime()
	})
}

func (o *Operator) walk(steps int, order func(a, b *document.TimedText) int, ahead func(*document.TimedText) bool) int {
	doc := o.Document()
	if doc == nil || steps <= 0 {
		return 0
	}

	texts := doc.Texts()
	slices.SortStableFunc(texts, order)

	taken := 0
	for ; taken < steps; taken++ {
		i := slices.IndexFunc(texts, ahead)
		if i < 0 {
			break
		}
		o.SetFocusedText(texts[i])
	}
	return taken
}
