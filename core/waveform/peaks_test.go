package waveform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPeaks(t *testing.T) {
	t.Run("folds samples into min max buckets", func(t *testing.T) {
		samples := []float32{0.1, -0.5, 0.9, 0.2, -0.8, 0.3, 0.0, 0.4}

		peaks := Peaks(samples, 2)

		require.Len(t, peaks, 2)
		assert.Equal(t, Peak{Min: -0.5, Max: 0.9}, peaks[0])
		assert.Equal(t, Peak{Min: -0.8, Max: 0.4}, peaks[1])
	})

	t.Run("last bucket absorbs the remainder", func(t *testing.T) {
		samples := []float32{0, 0, 0, 0, 0, 0, 1}

		peaks := Peaks(samples, 3)

		require.Len(t, peaks, 3)
		assert.Equal(t, float32(1), peaks[2].Max)
	})

	t.Run("more buckets than samples collapses to sample count", func(t *testing.T) {
		peaks := Peaks([]float32{0.5, -0.5}, 10)
		assert.Len(t, peaks, 2)
	})

	t.Run("empty input renders nothing", func(t *testing.T) {
		assert.Nil(t, Peaks(nil, 100))
		assert.Nil(t, Peaks([]float32{0.1}, 0))
	})
}

func TestMarkerPercent(t *testing.T) {
	assert.Equal(t, 50.0, MarkerPercent(30, 60))
	assert.Equal(t, 0.0, MarkerPercent(0, 60))
	assert.Equal(t, 0.0, MarkerPercent(30, 0), "zero duration pins to the left edge")
	assert.Equal(t, 100.0, MarkerPercent(90, 60), "clamped past the end")
	assert.Equal(t, 0.0, MarkerPercent(-5, 60))
}
