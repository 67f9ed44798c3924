package operator

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultScale(t *testing.T) {
	s := DefaultScale()
	assert.Equal(t, DefaultReadingSpeed, s.PixelsPerMillisecond())
	assert.InDelta(t, 1/DefaultReadingSpeed, s.MillisecondsPerPixel(), 1e-12)
	assert.InDelta(t, 300, s.DurationToPixels(time.Second), 1e-9)
	assert.Equal(t, time.Second, s.PixelsToDuration(300))
}

func TestScaleInverseTracksChanges(t *testing.T) {
	s, err := NewScale(1)
	require.NoError(t, err)
	assert.Equal(t, 1.0, s.MillisecondsPerPixel())

	require.NoError(t, s.SetPixelsPerMillisecond(4))
	assert.Equal(t, 0.25, s.MillisecondsPerPixel())

	require.NoError(t, s.SetMillisecondsPerPixel(2))
	assert.Equal(t, 0.5, s.PixelsPerMillisecond())
	assert.Equal(t, 200*time.Millisecond, s.PixelsToDuration(100))
}

func TestScaleRejectsInvalid(t *testing.T) {
	for _, v := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		_, err := NewScale(v)
		assert.ErrorIs(t, err, ErrInvalidScale)
	}

	s := DefaultScale()
	assert.ErrorIs(t, s.SetMillisecondsPerPixel(0), ErrInvalidScale)
	assert.Equal(t, DefaultReadingSpeed, s.PixelsPerMillisecond())
}
