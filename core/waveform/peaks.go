// Package waveform reduces decoded audio samples to the per-bucket peak
// values the admin timeline renders behind clip markers.
package waveform

// Peak holds the minimum and maximum amplitude seen in one horizontal
// bucket of the rendered waveform.
type Peak struct {
	Min float32 `json:"min"`
	Max float32 `json:"max"`
}

// Peaks folds a decoded sample buffer into at most buckets min/max pairs.
// Returns nil when there is nothing to render.
func Peaks(samples []float32, buckets int) []Peak {
	if len(samples) == 0 || buckets <= 0 {
		return nil
	}
	if buckets > len(samples) {
		buckets = len(samples)
	}

	out := make([]Peak, buckets)
	per := len(samples) / buckets
	for b := 0; b < buckets; b++ {
		lo := b * per
		hi := lo + per
		if b == buckets-1 {
			hi = len(samples) // last bucket absorbs the remainder
		}
		p := Peak{Min: samples[lo], Max: samples[lo]}
		for _, s := range samples[lo:hi] {
			if s < p.Min {
				p.Min = s
			}
			if s > p.Max {
				p.Max = s
			}
		}
		out[b] = p
	}
	return out
}

// MarkerPercent maps a clip start time onto the timeline as a percentage of
// its width, clamped to [0, 100]. A zero duration pins markers to the left
// edge rather than dividing by zero.
func MarkerPercent(startTime, duration float64) float64 {
	if duration <= 0 || startTime <= 0 {
		return 0
	}
	pct := startTime / duration * 100
	if pct > 100 {
		return 100
	}
	return pct
}
