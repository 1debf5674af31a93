package clips

import (
	"encoding/json"
	"sort"
	"strconv"

	"voxfolio/logger"
)

// ClipEndInfinite marks a clip that plays to the natural end of the audio.
// The playback controller swaps it for the sink's real duration once known.
const ClipEndInfinite = 999999.0

// fallbackClipWidth is used when a derived end would not be strictly after
// its start, so no zero-width clip is ever produced.
const fallbackClipWidth = 10.0

// DefaultClipName is used when a stored segment has no usable label.
const DefaultClipName = "Untitled Clip"

// Segment is the stored form of a clip marker: a label plus a start offset
// in seconds. End times are never stored; they are derived on normalization.
type Segment struct {
	Label     string  `json:"label"`
	StartTime float64 `json:"startTime"`
}

// Clip is the runtime form: an ordered, playable range over a single track.
type Clip struct {
	Name  string  `json:"name"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// segmentJSON tolerates the legacy field names ("name"/"start") alongside
// the current ones, and start times stored as strings.
type segmentJSON struct {
	Label       string          `json:"label"`
	LegacyName  string          `json:"name"`
	StartTime   json.RawMessage `json:"startTime"`
	LegacyStart json.RawMessage `json:"start"`
}

func (s segmentJSON) toSegment() Segment {
	label := s.Label
	if label == "" {
		label = s.LegacyName
	}
	start := coerceNumber(s.StartTime)
	if s.StartTime == nil {
		start = coerceNumber(s.LegacyStart)
	}
	return Segment{Label: label, StartTime: start}
}

// coerceNumber reads a JSON value as float64, accepting numbers and numeric
// strings. Anything else yields 0.
func coerceNumber(raw json.RawMessage) float64 {
	if raw == nil {
		return 0
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	}
	return 0
}

// ParseSegments converts arbitrary stored segment data into a segment list.
// Accepted shapes: nil, []Segment, a JSON-encoded array (string or []byte),
// or anything JSON-round-trippable into one. Malformed input degrades to an
// empty list and is logged; it never fails the caller.
func ParseSegments(raw interface{}) []Segment {
	switch v := raw.(type) {
	case nil:
		return []Segment{}
	case []Segment:
		out := make([]Segment, len(v))
		copy(out, v)
		return out
	case string:
		if v == "" {
			return []Segment{}
		}
		return parseJSONSegments([]byte(v))
	case []byte:
		if len(v) == 0 {
			return []Segment{}
		}
		return parseJSONSegments(v)
	case json.RawMessage:
		if len(v) == 0 {
			return []Segment{}
		}
		return parseJSONSegments(v)
	default:
		// Legacy rows occasionally hold decoded []map[string]any values.
		// Round-trip through JSON rather than reflecting over every shape.
		data, err := json.Marshal(v)
		if err != nil {
			logger.Warn("segments: unsupported stored shape", logger.Any("value", raw))
			return []Segment{}
		}
		return parseJSONSegments(data)
	}
}

func parseJSONSegments(data []byte) []Segment {
	var rows []segmentJSON
	if err := json.Unmarshal(data, &rows); err != nil {
		logger.Warn("segments: stored value is not a segment array", logger.ErrorField(err))
		return []Segment{}
	}
	out := make([]Segment, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toSegment())
	}
	return out
}

// SortSegments orders segments ascending by start time, stably, in place.
func SortSegments(segments []Segment) {
	sort.SliceStable(segments, func(i, j int) bool {
		return segments[i].StartTime < segments[j].StartTime
	})
}

// NormalizeClips converts stored segment data into ordered, non-overlapping
// clips with derived end times. Input is sorted defensively before ends are
// derived, so an unsorted store never yields negative-width ranges. An empty
// or unusable input returns an empty list; substitute WholeTrackClip when a
// playable region is still wanted.
func NormalizeClips(raw interface{}) []Clip {
	segments := ParseSegments(raw)
	if len(segments) == 0 {
		return []Clip{}
	}
	SortSegments(segments)

	out := make([]Clip, 0, len(segments))
	for i, seg := range segments {
		name := seg.Label
		if name == "" {
			name = DefaultClipName
		}
		start := seg.StartTime
		if start < 0 {
			start = 0
		}

		end := ClipEndInfinite
		if i+1 < len(segments) {
			end = segments[i+1].StartTime
			if end <= start {
				end = start + fallbackClipWidth
			}
		}
		out = append(out, Clip{Name: name, Start: start, End: end})
	}
	return out
}

// WholeTrackClip is the synthetic clip covering an entire track, used when a
// track has no stored segments so the player always has a playable region.
func WholeTrackClip(trackName string) Clip {
	name := trackName
	if name == "" {
		name = DefaultClipName
	}
	return Clip{Name: name, Start: 0, End: ClipEndInfinite}
}
