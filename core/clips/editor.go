package clips

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
)

// SegmentStore persists an edited segment list for a demo. Only the
// label/startTime pairs are written; derived end times never are.
type SegmentStore interface {
	SaveSegments(ctx context.Context, demoID int64, segments []Segment) error
}

// draftEntry pairs a segment with a stable identity so an open inline editor
// keeps pointing at the same entry across re-sorts.
type draftEntry struct {
	id  int
	seg Segment
}

// Editor maintains the admin-side draft segment list for one demo. Unlike
// runtime normalization, the editor keeps its draft sorted at all times
// (except mid-drag) because the draft is the source of truth that gets
// persisted.
type Editor struct {
	demoID int64
	sink   AudioSink
	store  SegmentStore

	draft     []draftEntry
	nextID    int
	dragIndex int // -1 when no drag is active
}

// NewEditor creates an editor over the given reference sink and store,
// seeded with the demo's current segments (sorted on entry).
func NewEditor(demoID int64, sink AudioSink, store SegmentStore, initial []Segment) *Editor {
	e := &Editor{
		demoID:    demoID,
		sink:      sink,
		store:     store,
		dragIndex: -1,
	}
	for _, seg := range initial {
		e.draft = append(e.draft, draftEntry{id: e.nextID, seg: seg})
		e.nextID++
	}
	e.sortDraft()
	return e
}

// Segments returns the draft in its current order.
func (e *Editor) Segments() []Segment {
	out := make([]Segment, len(e.draft))
	for i, entry := range e.draft {
		out[i] = entry.seg
	}
	return out
}

// Len reports the number of draft entries.
func (e *Editor) Len() int {
	return len(e.draft)
}

// AddClipAtPlayhead appends a marker at the sink's current position, rounded
// to hundredths of a second, then re-sorts. The default label numbers the
// clip by the pre-sort count. Returns the new entry's sorted index.
func (e *Editor) AddClipAtPlayhead() int {
	pos := math.Round(e.sink.CurrentTime()*100) / 100
	label := fmt.Sprintf("Clip %d", len(e.draft)+1)
	id := e.nextID
	e.nextID++
	e.draft = append(e.draft, draftEntry{id: id, seg: Segment{Label: label, StartTime: pos}})
	e.sortDraft()
	return e.indexOf(id)
}

// BeginDrag starts dragging the marker at index i. Returns false when i is
// out of range or a drag is already active.
func (e *Editor) BeginDrag(i int) bool {
	if e.dragIndex >= 0 || i < 0 || i >= len(e.draft) {
		return false
	}
	e.dragIndex = i
	return true
}

// DragTo maps a pointer position against the timeline's pixel width and the
// track duration and moves the active marker there, clamped to the track.
// The draft is deliberately not re-sorted mid-drag to avoid index churn.
func (e *Editor) DragTo(pointerX, timelineWidth float64) {
	if e.dragIndex < 0 || timelineWidth <= 0 {
		return
	}
	duration := e.sink.Duration()
	t := pointerX / timelineWidth * duration
	if t < 0 {
		t = 0
	}
	if duration > 0 && t > duration {
		t = duration
	}
	e.draft[e.dragIndex].seg.StartTime = math.Round(t*100) / 100
}

// EndDrag re-sorts the draft, clears drag state, and returns the dragged
// entry's index after the sort (-1 when no drag was active).
func (e *Editor) EndDrag() int {
	if e.dragIndex < 0 {
		return -1
	}
	id := e.draft[e.dragIndex].id
	e.dragIndex = -1
	e.sortDraft()
	return e.indexOf(id)
}

// EditLabel replaces the label of entry i.
func (e *Editor) EditLabel(i int, label string) {
	if i < 0 || i >= len(e.draft) {
		return
	}
	e.draft[i].seg.Label = label
}

// EditStartTime sets a new start for entry i, re-sorts, and returns the
// entry's index afterwards so an open inline editor can follow it. Editing
// the wrong clip after a silent reorder is exactly the failure this guards.
func (e *Editor) EditStartTime(i int, start float64) int {
	if i < 0 || i >= len(e.draft) {
		return -1
	}
	if start < 0 {
		start = 0
	}
	id := e.draft[i].id
	e.draft[i].seg.StartTime = start
	e.sortDraft()
	return e.indexOf(id)
}

// RemoveClip deletes entry i. Order is unchanged, so no re-sort is needed.
// An active drag follows the dragged entry: removing it cancels the drag,
// removing an earlier entry shifts the drag index down.
func (e *Editor) RemoveClip(i int) {
	if i < 0 || i >= len(e.draft) {
		return
	}
	e.draft = append(e.draft[:i], e.draft[i+1:]...)
	switch {
	case e.dragIndex < 0:
	case i == e.dragIndex:
		e.dragIndex = -1
	case i < e.dragIndex:
		e.dragIndex--
	}
}

// ApplyLabels applies a newline-delimited block of labels to the draft in
// sorted order: line k renames entry k, and extra lines create zero-start
// entries. When the paste is shorter than the draft, trailing entries keep
// their existing labels (preserve policy; see DESIGN.md).
func (e *Editor) ApplyLabels(text string) {
	var labels []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			labels = append(labels, line)
		}
	}
	for k, label := range labels {
		if k < len(e.draft) {
			e.draft[k].seg.Label = label
			continue
		}
		e.draft = append(e.draft, draftEntry{id: e.nextID, seg: Segment{Label: label, StartTime: 0}})
		e.nextID++
	}
	e.sortDraft()
}

// Save persists the current draft. On failure the draft is left untouched so
// the operator can retry without losing work.
func (e *Editor) Save(ctx context.Context) error {
	if e.store == nil {
		return fmt.Errorf("editor has no segment store")
	}
	return e.store.SaveSegments(ctx, e.demoID, e.Segments())
}

func (e *Editor) sortDraft() {
	sort.SliceStable(e.draft, func(i, j int) bool {
		return e.draft[i].seg.StartTime < e.draft[j].seg.StartTime
	})
}

func (e *Editor) indexOf(id int) int {
	for i, entry := range e.draft {
		if entry.id == id {
			return i
		}
	}
	return -1
}
