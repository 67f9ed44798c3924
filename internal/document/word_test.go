package document

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mgpai22/freespeech/internal/observe"
)

func mustWord(t *testing.T, text string) *DecoratedWord {
	t.Helper()
	w, err := NewWord(text)
	require.NoError(t, err)
	return w
}

func TestWordSizeFactorValidation(t *testing.T) {
	w := mustWord(t, "hello")

	for _, bad := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		assert.ErrorIs(t, w.SetSizeFactor(bad), ErrInvalidSizeFactor)
	}
	assert.Equal(t, DefaultSizeFactor, w.SizeFactor())

	_, err := NewSizedWord("x", 0)
	assert.ErrorIs(t, err, ErrInvalidSizeFactor)
}

func TestWordTextValidation(t *testing.T) {
	for _, bad := range []string{"", " ", "a b", "a\tb", "line\n"} {
		_, err := NewWord(bad)
		assert.ErrorIs(t, err, ErrInvalidWord, "%q", bad)
		_, err = NewSizedWord(bad, 2)
		assert.ErrorIs(t, err, ErrInvalidWord, "%q", bad)
	}

	w := mustWord(t, "hello")
	calls := 0
	w.OnTextChanged(func(observe.Change[string]) { calls++ })
	assert.ErrorIs(t, w.SetText(""), ErrInvalidWord)
	assert.ErrorIs(t, w.SetText("two words"), ErrInvalidWord)
	assert.Equal(t, "hello", w.Text())
	assert.Zero(t, calls)
}

func TestWordNotifiesOnlyOnChange(t *testing.T) {
	w := mustWord(t, "hello")
	var texts []observe.Change[string]
	var sizes []observe.Change[float64]
	w.OnTextChanged(func(c observe.Change[string]) { texts = append(texts, c) })
	w.OnSizeFactorChanged(func(c observe.Change[float64]) { sizes = append(sizes, c) })

	require.NoError(t, w.SetText("hello"))
	require.NoError(t, w.SetText("bye"))
	require.NoError(t, w.SetSizeFactor(1))
	require.NoError(t, w.SetSizeFactor(1.25))

	assert.Equal(t, []observe.Change[string]{{Old: "hello", New: "bye"}}, texts)
	assert.Equal(t, []observe.Change[float64]{{Old: 1, New: 1.25}}, sizes)
}

func TestWordString(t *testing.T) {
	w := mustWord(t, "big")
	assert.Equal(t, "big", w.String())

	require.NoError(t, w.SetSizeFactor(2))
	assert.Equal(t, "big::2.0", w.String())

	require.NoError(t, w.SetSizeFactor(0.75))
	assert.Equal(t, "big::0.75", w.String())
}
