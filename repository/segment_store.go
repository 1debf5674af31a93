package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"voxfolio/core/clips"
)

// demoSegmentStore adapts a DemoRepository to the editor's SegmentStore,
// scoped to the authenticated artist so ownership is enforced on save.
type demoSegmentStore struct {
	repo     DemoRepository
	artistID int64
}

// NewDemoSegmentStore creates a clips.SegmentStore that writes through the
// given repository on behalf of one artist.
func NewDemoSegmentStore(repo DemoRepository, artistID int64) clips.SegmentStore {
	return &demoSegmentStore{repo: repo, artistID: artistID}
}

func (s *demoSegmentStore) SaveSegments(ctx context.Context, demoID int64, segments []clips.Segment) error {
	data, err := json.Marshal(segments)
	if err != nil {
		return fmt.Errorf("failed to marshal segments: %w", err)
	}
	return s.repo.UpdateSegments(demoID, s.artistID, string(data))
}
