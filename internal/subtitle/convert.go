package subtitle

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/mgpai22/freespeech/internal/document"
)

// FromTrack builds a subtitle from one document track, ordered by start
// time. Texts without words are left out.
func FromTrack(doc *document.Document, track int) (*Subtitle, error) {
	if track < 0 || track >= doc.LineCount() {
		return nil, fmt.Errorf("track %d out of range (0-%d)", track, doc.LineCount()-1)
	}

	texts := slices.Clone(doc.Line(track))
	slices.SortStableFunc(texts, func(a, b *document.TimedText) int {
		return cmp.Compare(a.StartTime(), b.StartTime())
	})

	sub := &Subtitle{Entries: make([]Entry, 0, len(texts))}
	for _, t := range texts {
		words := t.Words()
		if len(words) == 0 {
			continue
		}

		var sizes []float64
		for i, w := range words {
			if w.SizeFactor() == 1 {
				continue
			}
			if sizes == nil {
				sizes = make([]float64, len(words))
				for j := range sizes {
					sizes[j] = 1
				}
			}
			sizes[i] = w.SizeFactor()
		}

		sub.Entries = append(sub.Entries, Entry{
			Index:     len(sub.Entries) + 1,
			StartTime: t.StartTime(),
			EndTime:   t.StopTime(),
			Text:      t.Text(),
			Sizes:     sizes,
		})
	}
	return sub, nil
}

// ToTrack appends every entry of sub to document track as a timed text and
// returns how many were added. Entries that do not end after they start
// are skipped.
func ToTrack(doc *document.Document, track int, sub *Subtitle) (int, error) {
	if track < 0 {
		return 0, fmt.Errorf("track %d out of range", track)
	}

	added := 0
	for _, entry := range sub.Entries {
		t, err := timedText(entry)
		if err != nil {
			continue
		}
		if err := doc.AddText(track, t); err != nil {
			return added, err
		}
		added++
	}
	return added, nil
}

func timedText(entry Entry) (*document.TimedText, error) {
	tokens := entry.Words()
	words := make([]*document.DecoratedWord, len(tokens))
	for i, tok := range tokens {
		w, err := document.NewSizedWord(tok, entry.SizeAt(i))
		if err != nil {
			return nil, err
		}
		words[i] = w
	}
	return document.NewTimedTextWithWords(entry.StartTime, entry.EndTime-entry.StartTime, words)
}
