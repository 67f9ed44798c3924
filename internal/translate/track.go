package translate

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/mgpai22/freespeech/internal/document"
)

// Job binds a track's texts to their item indices.
type Job struct {
	Items []Item
	texts []*document.TimedText
}

// NewJob collects the non-empty texts of track in start order.
func NewJob(doc *document.Document, track int) (*Job, error) {
	if track < 0 || track >= doc.LineCount() {
		return nil, fmt.Errorf("track %d out of range (0-%d)", track, doc.LineCount()-1)
	}

	texts := slices.Clone(doc.Line(track))
	slices.SortStableFunc(texts, func(a, b *document.TimedText) int {
		return cmp.Compare(a.StartTime(), b.StartTime())
	})

	job := &Job{}
	for _, t := range texts {
		text := t.Text()
		if strings.TrimSpace(text) == "" {
			continue
		}
		job.Items = append(job.Items, Item{Index: len(job.texts), Text: text})
		job.texts = append(job.texts, t)
	}
	return job, nil
}

// Replace writes each translation over its source text. Word sizes carry
// over position by position.
func (j *Job) Replace(results []Result) (int, error) {
	applied := 0
	for _, r := range results {
		t, err := j.text(r.Index)
		if err != nil {
			return applied, err
		}
		t.SetText(r.Text)
		applied++
	}
	return applied, nil
}

// Overlay adds each translation to track of doc with the timing of its
// source text, leaving the source untouched.
func (j *Job) Overlay(doc *document.Document, track int, results []Result) (int, error) {
	applied := 0
	for _, r := range results {
		src, err := j.text(r.Index)
		if err != nil {
			return applied, err
		}
		t, err := document.NewTimedTextWithWords(src.StartTime(), src.Duration(), nil)
		if err != nil {
			return applied, err
		}
		t.SetText(r.Text)
		if err := doc.AddText(track, t); err != nil {
			return applied, err
		}
		applied++
	}
	return applied, nil
}

func (j *Job) text(index int) (*document.TimedText, error) {
	if index < 0 || index >= len(j.texts) {
		return nil, fmt.Errorf("result index %d out of range (0-%d)", index, len(j.texts)-1)
	}
	return j.texts[index], nil
}
