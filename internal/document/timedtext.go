package document

import (
	"math"
	"strings"
	"time"

	"github.com/mgpai22/freespeech/internal/observe"
)

// duration given to a freshly created timed text
const DefaultDuration = 2 * time.Second

var placeholderWords = []string{"new", "text", "here"}

type attachedWord struct {
	word        *DecoratedWord
	unsubscribe func()
}

// TimedText is one caption segment: an ordered list of words shown from
// StartTime for Duration.
type TimedText struct {
	words    []attachedWord
	start    time.Duration
	duration time.Duration

	durationChanged observe.Event[observe.Change[time.Duration]]
	startChanged    observe.Event[observe.Change[time.Duration]]
	stopChanged     observe.Event[observe.Change[time.Duration]]
	textChanged     observe.Event[observe.Change[string]]
	wordSizeChanged observe.Event[WordSizeChange]
}

// NewTimedText creates a caption at start with the default duration and the
// placeholder words "new text here".
func NewTimedText(start time.Duration) (*TimedText, error) {
	words := make([]*DecoratedWord, len(placeholderWords))
	for i, w := range placeholderWords {
		words[i] = newWord(w)
	}
	return NewTimedTextWithWords(start, DefaultDuration, words)
}

func NewTimedTextWithWords(
	start, duration time.Duration,
	words []*DecoratedWord,
) (*TimedText, error) {
	if start < 0 {
		return nil, ErrNegativeStart
	}
	if duration <= 0 {
		return nil, ErrInvalidDuration
	}
	if !fitsStop(start, duration) {
		return nil, ErrTimeOutOfRange
	}
	for _, w := range words {
		if err := checkWord(w); err != nil {
			return nil, err
		}
	}
	t := &TimedText{start: start, duration: duration}
	t.words = make([]attachedWord, 0, len(words))
	for _, w := range words {
		t.words = append(t.words, t.attach(w))
	}
	return t, nil
}

func (t *TimedText) StartTime() time.Duration {
	return t.start
}

func (t *TimedText) SetStartTime(start time.Duration) error {
	if start < 0 {
		return ErrNegativeStart
	}
	if start == t.start {
		return nil
	}
	if !fitsStop(start, t.duration) {
		return ErrTimeOutOfRange
	}
	old := t.start
	t.start = start
	t.startChanged.Emit(observe.Change[time.Duration]{Old: old, New: start})
	return nil
}

func (t *TimedText) Duration() time.Duration {
	return t.duration
}

func (t *TimedText) SetDuration(duration time.Duration) error {
	if duration <= 0 {
		return ErrInvalidDuration
	}
	if duration == t.duration {
		return nil
	}
	if !fitsStop(t.start, duration) {
		return ErrTimeOutOfRange
	}
	old := t.duration
	t.duration = duration
	t.durationChanged.Emit(observe.Change[time.Duration]{Old: old, New: duration})
	return nil
}

func (t *TimedText) StopTime() time.Duration {
	return t.start + t.duration
}

// SetStopTime stores stop-start as the new duration. The duration listeners
// fire first, then the stop time listeners.
func (t *TimedText) SetStopTime(stop time.Duration) error {
	old := t.StopTime()
	if err := t.SetDuration(stop - t.start); err != nil {
		return err
	}
	if old != stop {
		t.stopChanged.Emit(observe.Change[time.Duration]{Old: old, New: stop})
	}
	return nil
}

// Contains reports whether at falls inside [StartTime, StopTime].
func (t *TimedText) Contains(at time.Duration) bool {
	return t.start <= at && at <= t.StopTime()
}

// Text joins the word texts with single spaces.
func (t *TimedText) Text() string {
	var sb strings.Builder
	for i, w := range t.words {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(w.word.Text())
	}
	return sb.String()
}

// SetText re-tokenizes text and reconciles it against the current words:
// surplus words are dropped, words at existing positions are updated in
// place (keeping their size factor) and extra tokens become new words.
// The text listeners fire exactly once per call.
func (t *TimedText) SetText(text string) {
	old := t.Text()
	current := make([]string, len(t.words))
	for i, w := range t.words {
		current[i] = w.word.Text()
	}

	for _, edit := range Reconcile(current, Tokenize(text)) {
		switch edit.Kind {
		case EditTruncate:
			for _, w := range t.words[edit.Index:] {
				w.unsubscribe()
			}
			t.words = t.words[:edit.Index]
		case EditUpdate:
			t.words[edit.Index].word.setText(edit.Text)
		case EditAppend:
			t.words = append(t.words, t.attach(newWord(edit.Text)))
		}
	}

	t.textChanged.Emit(observe.Change[string]{Old: old, New: text})
}

func (t *TimedText) Len() int {
	return len(t.words)
}

func (t *TimedText) Word(index int) (*DecoratedWord, error) {
	if index < 0 || index >= len(t.words) {
		return nil, ErrIndexOutOfRange
	}
	return t.words[index].word, nil
}

// Words returns a copy of the word list.
func (t *TimedText) Words() []*DecoratedWord {
	words := make([]*DecoratedWord, len(t.words))
	for i, w := range t.words {
		words[i] = w.word
	}
	return words
}

// SetWord replaces the word at index and returns the previous one.
func (t *TimedText) SetWord(index int, word *DecoratedWord) (*DecoratedWord, error) {
	if index < 0 || index >= len(t.words) {
		return nil, ErrIndexOutOfRange
	}
	if err := checkWord(word); err != nil {
		return nil, err
	}
	prev := t.words[index]
	prev.unsubscribe()
	t.words[index] = t.attach(word)
	return prev.word, nil
}

// InsertWord inserts word before index; index == Len() appends.
func (t *TimedText) InsertWord(index int, word *DecoratedWord) error {
	if index < 0 || index > len(t.words) {
		return ErrIndexOutOfRange
	}
	if err := checkWord(word); err != nil {
		return err
	}
	t.words = append(t.words, attachedWord{})
	copy(t.words[index+1:], t.words[index:])
	t.words[index] = t.attach(word)
	return nil
}

func (t *TimedText) RemoveWord(index int) (*DecoratedWord, error) {
	if index < 0 || index >= len(t.words) {
		return nil, ErrIndexOutOfRange
	}
	removed := t.words[index]
	removed.unsubscribe()
	t.words = append(t.words[:index], t.words[index+1:]...)
	return removed.word, nil
}

func (t *TimedText) OnDurationChanged(fn func(observe.Change[time.Duration])) func() {
	return t.durationChanged.Subscribe(fn)
}

func (t *TimedText) OnStartTimeChanged(fn func(observe.Change[time.Duration])) func() {
	return t.startChanged.Subscribe(fn)
}

func (t *TimedText) OnStopTimeChanged(fn func(observe.Change[time.Duration])) func() {
	return t.stopChanged.Subscribe(fn)
}

func (t *TimedText) OnTextChanged(fn func(observe.Change[string])) func() {
	return t.textChanged.Subscribe(fn)
}

// OnWordSizeFactorChanged fires whenever one of the words currently held by
// t is resized.
func (t *TimedText) OnWordSizeFactorChanged(fn func(WordSizeChange)) func() {
	return t.wordSizeChanged.Subscribe(fn)
}

func (t *TimedText) String() string {
	return FormatTimedText(t)
}

func (t *TimedText) attach(w *DecoratedWord) attachedWord {
	unsubscribe := w.OnSizeFactorChanged(func(c observe.Change[float64]) {
		t.wordSizeChanged.Emit(WordSizeChange{Word: w, Old: c.Old, New: c.New})
	})
	return attachedWord{word: w, unsubscribe: unsubscribe}
}

func checkWord(w *DecoratedWord) error {
	if w == nil || !validWordText(w.text) {
		return ErrInvalidWord
	}
	return nil
}

// start+duration must not wrap past the largest time.Duration
func fitsStop(start, duration time.Duration) bool {
	return duration <= math.MaxInt64-start
}
