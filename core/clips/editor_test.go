package clips

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	saved  []Segment
	demoID int64
	err    error
	calls  int
}

func (s *fakeStore) SaveSegments(_ context.Context, demoID int64, segments []Segment) error {
	s.calls++
	if s.err != nil {
		return s.err
	}
	s.demoID = demoID
	s.saved = segments
	return nil
}

func newTestEditor(initial []Segment) (*Editor, *fakeSink, *fakeStore) {
	sink := &fakeSink{duration: 60}
	store := &fakeStore{}
	return NewEditor(7, sink, store, initial), sink, store
}

func TestEditorAddClipAtPlayhead(t *testing.T) {
	t.Run("inserts at playhead in sorted position with counted label", func(t *testing.T) {
		ed, sink, _ := newTestEditor([]Segment{
			{Label: "A", StartTime: 0},
			{Label: "B", StartTime: 30},
		})
		sink.time = 12.34

		idx := ed.AddClipAtPlayhead()

		assert.Equal(t, 1, idx)
		assert.Equal(t, []Segment{
			{Label: "A", StartTime: 0},
			{Label: "Clip 3", StartTime: 12.34},
			{Label: "B", StartTime: 30},
		}, ed.Segments())
	})

	t.Run("rounds the playhead to hundredths", func(t *testing.T) {
		ed, sink, _ := newTestEditor(nil)
		sink.time = 5.6789

		ed.AddClipAtPlayhead()

		assert.Equal(t, 5.68, ed.Segments()[0].StartTime)
	})
}

func TestEditorDrag(t *testing.T) {
	t.Run("drag maps pointer position onto track time", func(t *testing.T) {
		ed, _, _ := newTestEditor([]Segment{{Label: "A", StartTime: 10}})

		require.True(t, ed.BeginDrag(0))
		ed.DragTo(500, 1000) // halfway across a 60s track

		assert.Equal(t, 30.0, ed.Segments()[0].StartTime)
	})

	t.Run("drag is clamped to the track range", func(t *testing.T) {
		ed, _, _ := newTestEditor([]Segment{{Label: "A", StartTime: 10}})

		require.True(t, ed.BeginDrag(0))
		ed.DragTo(-50, 1000)
		assert.Equal(t, 0.0, ed.Segments()[0].StartTime)

		ed.DragTo(2000, 1000)
		assert.Equal(t, 60.0, ed.Segments()[0].StartTime)
	})

	t.Run("no re-sort mid-drag, re-sort and identity on release", func(t *testing.T) {
		// Intentionally unsorted initial order exercises the identity
		// tracking: NewEditor sorts, so Y lands at index 0.
		ed, _, _ := newTestEditor([]Segment{
			{Label: "X", StartTime: 10},
			{Label: "Y", StartTime: 5},
		})
		require.Equal(t, "Y", ed.Segments()[0].Label)

		require.True(t, ed.BeginDrag(0))
		ed.DragTo(250, 1000) // 15s on a 60s track
		assert.Equal(t, "Y", ed.Segments()[0].Label, "draft order untouched while dragging")

		newIdx := ed.EndDrag()

		assert.Equal(t, 1, newIdx, "released marker must be re-located after the sort")
		assert.Equal(t, []Segment{
			{Label: "X", StartTime: 10},
			{Label: "Y", StartTime: 15},
		}, ed.Segments())
	})

	t.Run("only one drag at a time", func(t *testing.T) {
		ed, _, _ := newTestEditor([]Segment{
			{Label: "A", StartTime: 0},
			{Label: "B", StartTime: 10},
		})
		require.True(t, ed.BeginDrag(0))
		assert.False(t, ed.BeginDrag(1))
	})

	t.Run("removing the dragged entry cancels the drag", func(t *testing.T) {
		ed, _, _ := newTestEditor([]Segment{
			{Label: "A", StartTime: 0},
			{Label: "B", StartTime: 10},
		})
		require.True(t, ed.BeginDrag(1))

		ed.RemoveClip(1)

		ed.DragTo(500, 1000) // must be inert, not an out-of-range write
		assert.Equal(t, []Segment{{Label: "A", StartTime: 0}}, ed.Segments())
		assert.Equal(t, -1, ed.EndDrag())
		assert.True(t, ed.BeginDrag(0), "a new drag must be possible afterwards")
	})

	t.Run("removing an earlier entry keeps the drag on the same marker", func(t *testing.T) {
		ed, _, _ := newTestEditor([]Segment{
			{Label: "A", StartTime: 0},
			{Label: "B", StartTime: 10},
			{Label: "C", StartTime: 20},
		})
		require.True(t, ed.BeginDrag(2))

		ed.RemoveClip(0)
		ed.DragTo(500, 1000) // 30s on a 60s track

		assert.Equal(t, []Segment{
			{Label: "B", StartTime: 10},
			{Label: "C", StartTime: 30},
		}, ed.Segments())
		assert.Equal(t, 1, ed.EndDrag())
	})
}

func TestEditorFieldEdits(t *testing.T) {
	t.Run("editing start time re-sorts and reports the new index", func(t *testing.T) {
		ed, _, _ := newTestEditor([]Segment{
			{Label: "First", StartTime: 0},
			{Label: "Second", StartTime: 10},
			{Label: "Third", StartTime: 20},
		})

		newIdx := ed.EditStartTime(0, 15)

		assert.Equal(t, 1, newIdx, "an open inline editor must keep following the entry")
		assert.Equal(t, "First", ed.Segments()[1].Label)
	})

	t.Run("editing a label in place", func(t *testing.T) {
		ed, _, _ := newTestEditor([]Segment{{Label: "Old", StartTime: 3}})
		ed.EditLabel(0, "New")
		assert.Equal(t, "New", ed.Segments()[0].Label)
	})

	t.Run("remove deletes without reordering", func(t *testing.T) {
		ed, _, _ := newTestEditor([]Segment{
			{Label: "A", StartTime: 0},
			{Label: "B", StartTime: 10},
			{Label: "C", StartTime: 20},
		})
		ed.RemoveClip(1)
		assert.Equal(t, []Segment{
			{Label: "A", StartTime: 0},
			{Label: "C", StartTime: 20},
		}, ed.Segments())
	})
}

func TestEditorApplyLabels(t *testing.T) {
	t.Run("shorter paste preserves trailing entries", func(t *testing.T) {
		ed, _, _ := newTestEditor([]Segment{
			{Label: "One", StartTime: 0},
			{Label: "Two", StartTime: 10},
			{Label: "Three", StartTime: 20},
			{Label: "Four", StartTime: 30},
		})

		ed.ApplyLabels("Opening Spot\nMid Roll")

		segs := ed.Segments()
		require.Len(t, segs, 4)
		assert.Equal(t, "Opening Spot", segs[0].Label)
		assert.Equal(t, "Mid Roll", segs[1].Label)
		assert.Equal(t, "Three", segs[2].Label)
		assert.Equal(t, "Four", segs[3].Label)
	})

	t.Run("longer paste appends zero-start entries", func(t *testing.T) {
		ed, _, _ := newTestEditor([]Segment{{Label: "One", StartTime: 10}})

		ed.ApplyLabels("Renamed\nExtra A\nExtra B")

		segs := ed.Segments()
		require.Len(t, segs, 3)
		// The appended zero-start entries sort ahead of the existing one.
		assert.Equal(t, Segment{Label: "Extra A", StartTime: 0}, segs[0])
		assert.Equal(t, Segment{Label: "Extra B", StartTime: 0}, segs[1])
		assert.Equal(t, Segment{Label: "Renamed", StartTime: 10}, segs[2])
	})

	t.Run("blank lines are skipped", func(t *testing.T) {
		ed, _, _ := newTestEditor([]Segment{
			{Label: "One", StartTime: 0},
			{Label: "Two", StartTime: 10},
		})
		ed.ApplyLabels("Only\n\n  \n")
		assert.Equal(t, "Only", ed.Segments()[0].Label)
		assert.Equal(t, "Two", ed.Segments()[1].Label)
	})
}

func TestEditorSave(t *testing.T) {
	t.Run("persists label and start pairs", func(t *testing.T) {
		ed, _, store := newTestEditor([]Segment{
			{Label: "B", StartTime: 10},
			{Label: "A", StartTime: 0},
		})

		err := ed.Save(context.Background())

		require.NoError(t, err)
		assert.Equal(t, int64(7), store.demoID)
		assert.Equal(t, []Segment{
			{Label: "A", StartTime: 0},
			{Label: "B", StartTime: 10},
		}, store.saved)
	})

	t.Run("failed save leaves the draft intact", func(t *testing.T) {
		ed, _, store := newTestEditor([]Segment{{Label: "Keep", StartTime: 4}})
		store.err = errors.New("storage unavailable")

		err := ed.Save(context.Background())

		require.Error(t, err)
		assert.Equal(t, []Segment{{Label: "Keep", StartTime: 4}}, ed.Segments())
	})
}
