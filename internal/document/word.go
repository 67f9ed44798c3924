package document

import (
	"math"
	"strings"
	"unicode"

	"github.com/mgpai22/freespeech/internal/observe"
)

// default relative size of a word
const DefaultSizeFactor = 1.0

// single word of a caption with its relative emphasis
type DecoratedWord struct {
	text       string
	sizeFactor float64

	textChanged observe.Event[observe.Change[string]]
	sizeChanged observe.Event[observe.Change[float64]]
}

// emitted on the document bus when any attached word is resized
type WordSizeChange struct {
	Word *DecoratedWord
	Old  float64
	New  float64
}

// NewWord rejects an empty text and a text containing whitespace.
func NewWord(text string) (*DecoratedWord, error) {
	return NewSizedWord(text, DefaultSizeFactor)
}

// NewSizedWord builds a word with an explicit size factor.
func NewSizedWord(text string, sizeFactor float64) (*DecoratedWord, error) {
	if !validWordText(text) {
		return nil, ErrInvalidWord
	}
	if !validSizeFactor(sizeFactor) {
		return nil, ErrInvalidSizeFactor
	}
	return &DecoratedWord{text: text, sizeFactor: sizeFactor}, nil
}

func (w *DecoratedWord) Text() string {
	return w.text
}

// SetText leaves the word untouched when text is empty or holds whitespace.
func (w *DecoratedWord) SetText(text string) error {
	if !validWordText(text) {
		return ErrInvalidWord
	}
	w.setText(text)
	return nil
}

// callers guarantee a single token
func newWord(text string) *DecoratedWord {
	return &DecoratedWord{text: text, sizeFactor: DefaultSizeFactor}
}

func (w *DecoratedWord) setText(text string) {
	if w.text == text {
		return
	}
	old := w.text
	w.text = text
	w.textChanged.Emit(observe.Change[string]{Old: old, New: text})
}

func (w *DecoratedWord) SizeFactor() float64 {
	return w.sizeFactor
}

// SetSizeFactor rejects zero, negative and non-finite values and leaves
// the word untouched in that case.
func (w *DecoratedWord) SetSizeFactor(sizeFactor float64) error {
	if !validSizeFactor(sizeFactor) {
		return ErrInvalidSizeFactor
	}
	if w.sizeFactor == sizeFactor {
		return nil
	}
	old := w.sizeFactor
	w.sizeFactor = sizeFactor
	w.sizeChanged.Emit(observe.Change[float64]{Old: old, New: sizeFactor})
	return nil
}

func (w *DecoratedWord) OnTextChanged(fn func(observe.Change[string])) func() {
	return w.textChanged.Subscribe(fn)
}

func (w *DecoratedWord) OnSizeFactorChanged(fn func(observe.Change[float64])) func() {
	return w.sizeChanged.Subscribe(fn)
}

func (w *DecoratedWord) String() string {
	return formatWord(w)
}

func validSizeFactor(f float64) bool {
	return f > 0 && !math.IsInf(f, 0) && !math.IsNaN(f)
}

func validWordText(text string) bool {
	return text != "" && !strings.ContainsFunc(text, unicode.IsSpace)
}
