package app

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAmplitudeHistogram(t *testing.T) {
	t.Run("too few samples", func(t *testing.T) {
		h := NewAmplitudeHistogram(0.1)
		for i := 0; i < minimumSampleCount-1; i++ {
			h.Update(float64(i))
		}
		assert.Equal(t, defaultAmplitudeBounds(), h.Bounds())
	})

	t.Run("uniform", func(t *testing.T) {
		h := NewAmplitudeHistogram(0.1)
		for i := 0; i < 100; i++ {
			h.Update(float64(i) * 0.1)
		}

		b := h.Bounds()
		assert.Equal(t, uint64(100), h.Count())
		assert.Zero(t, b.Min)
		assert.InDelta(t, 10.5, b.Max, 0.2)
		assert.InDelta(t, 5, b.Mean, 0.1)
	})

	t.Run("narrow range is widened", func(t *testing.T) {
		h := NewAmplitudeHistogram(0.1)
		for i := 0; i < 50; i++ {
			h.Update(5.05)
		}

		b := h.Bounds()
		assert.InDelta(t, 3.85, b.Min, 1e-6)
		assert.InDelta(t, 6.25, b.Max, 1e-6)
		assert.InDelta(t, 5.05, b.Mean, 1e-6)
	})

	t.Run("ignores invalid values", func(t *testing.T) {
		h := NewAmplitudeHistogram(0.1)
		h.Update(math.NaN())
		h.Update(math.Inf(1))
		assert.Zero(t, h.Count())
	})

	t.Run("clear", func(t *testing.T) {
		h := NewAmplitudeHistogram(0)
		for i := 0; i < 50; i++ {
			h.Update(float64(i))
		}
		h.Clear()
		assert.Zero(t, h.Count())
		assert.Equal(t, defaultAmplitudeBounds(), h.Bounds())
	})
}
