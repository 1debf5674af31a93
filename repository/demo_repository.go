package repository

import (
	"database/sql"
	"fmt"
	"time"

	"voxfolio/db"
	"voxfolio/logger"
	"voxfolio/model"
)

// DemoRepository defines the interface for demo data operations.
type DemoRepository interface {
	CreateDemo(demo *model.Demo) (int64, error)
	GetDemoByID(id int64) (*model.Demo, error)
	GetDemosByArtistID(artistID int64) ([]*model.Demo, error)
	GetPublishedDemosByArtistID(artistID int64) ([]*model.Demo, error)
	UpdateSegments(demoID, artistID int64, segmentsJSON string) error
	UpdateAudio(demoID int64, audioPath, audioURL string, duration float64) error
	UpdateWaveformPath(demoID int64, waveformPath string) error
	UpdatePositions(artistID int64, orderedIDs []int64) error
	DeleteDemo(demoID, artistID int64) error
}

// mysqlDemoRepository implements DemoRepository for MySQL.
type mysqlDemoRepository struct {
	DB *sql.DB
}

// NewMySQLDemoRepository creates a new instance of mysqlDemoRepository.
func NewMySQLDemoRepository() DemoRepository {
	return &mysqlDemoRepository{DB: db.DB}
}

const demoColumns = `id, artist_id, title, audio_path, audio_url, waveform_path, duration, segments, position, published, created_at, updated_at`

func scanDemo(scanner interface{ Scan(...interface{}) error }) (*model.Demo, error) {
	demo := &model.Demo{}
	var segments sql.NullString
	err := scanner.Scan(&demo.ID, &demo.ArtistID, &demo.Title, &demo.AudioPath, &demo.AudioURL,
		&demo.WaveformPath, &demo.Duration, &segments, &demo.Position, &demo.Published,
		&demo.CreatedAt, &demo.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if segments.Valid {
		demo.Segments = segments.String
	}
	return demo, nil
}

// CreateDemo adds a new demo to the database.
func (r *mysqlDemoRepository) CreateDemo(demo *model.Demo) (int64, error) {
	query := `INSERT INTO demos (artist_id, title, audio_path, audio_url, waveform_path, duration, segments, position, published, created_at, updated_at)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	stmt, err := r.DB.Prepare(query)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare statement for CreateDemo: %w", err)
	}
	defer stmt.Close()

	var segments interface{}
	if demo.Segments != "" {
		segments = demo.Segments
	}

	now := time.Now()
	res, err := stmt.Exec(demo.ArtistID, demo.Title, demo.AudioPath, demo.AudioURL, demo.WaveformPath,
		demo.Duration, segments, demo.Position, demo.Published, now, now)
	if err != nil {
		return 0, fmt.Errorf("failed to execute CreateDemo: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for CreateDemo: %w", err)
	}
	logger.Info("demo created", logger.Int64("demoId", id), logger.String("title", demo.Title))
	return id, nil
}

// GetDemoByID retrieves a demo by its ID. Returns (nil, nil) when the demo
// does not exist.
func (r *mysqlDemoRepository) GetDemoByID(id int64) (*model.Demo, error) {
	query := `SELECT ` + demoColumns + ` FROM demos WHERE id = ?`
	demo, err := scanDemo(r.DB.QueryRow(query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan demo by ID %d: %w", id, err)
	}
	return demo, nil
}

// GetDemosByArtistID retrieves all demos owned by an artist, in display
// order.
func (r *mysqlDemoRepository) GetDemosByArtistID(artistID int64) ([]*model.Demo, error) {
	query := `SELECT ` + demoColumns + ` FROM demos WHERE artist_id = ? ORDER BY position ASC, created_at ASC`
	return r.queryDemos(query, artistID)
}

// GetPublishedDemosByArtistID retrieves only the demos visible on the
// public site.
func (r *mysqlDemoRepository) GetPublishedDemosByArtistID(artistID int64) ([]*model.Demo, error) {
	query := `SELECT ` + demoColumns + ` FROM demos WHERE artist_id = ? AND published = TRUE ORDER BY position ASC, created_at ASC`
	return r.queryDemos(query, artistID)
}

func (r *mysqlDemoRepository) queryDemos(query string, args ...interface{}) ([]*model.Demo, error) {
	rows, err := r.DB.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query demos: %w", err)
	}
	defer rows.Close()

	demos := make([]*model.Demo, 0)
	for rows.Next() {
		demo, err := scanDemo(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan demo row: %w", err)
		}
		demos = append(demos, demo)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during demo rows iteration: %w", err)
	}
	return demos, nil
}

// UpdateSegments replaces the stored segment list for a demo. The artist ID
// is part of the predicate so one artist can never write another's demo.
func (r *mysqlDemoRepository) UpdateSegments(demoID, artistID int64, segmentsJSON string) error {
	query := `UPDATE demos SET segments = ?, updated_at = ? WHERE id = ? AND artist_id = ?`
	res, err := r.DB.Exec(query, segmentsJSON, time.Now(), demoID, artistID)
	if err != nil {
		return fmt.Errorf("failed to update segments for demo %d: %w", demoID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected for demo %d: %w", demoID, err)
	}
	if affected == 0 {
		return fmt.Errorf("demo %d not found for artist %d", demoID, artistID)
	}
	logger.Debug("segments updated", logger.Int64("demoId", demoID))
	return nil
}

// UpdateAudio sets the stored audio object key, playable URL and duration.
func (r *mysqlDemoRepository) UpdateAudio(demoID int64, audioPath, audioURL string, duration float64) error {
	query := `UPDATE demos SET audio_path = ?, audio_url = ?, duration = ?, updated_at = ? WHERE id = ?`
	if _, err := r.DB.Exec(query, audioPath, audioURL, duration, time.Now(), demoID); err != nil {
		return fmt.Errorf("failed to update audio for demo %d: %w", demoID, err)
	}
	return nil
}

// UpdateWaveformPath records where the cached waveform peaks live.
func (r *mysqlDemoRepository) UpdateWaveformPath(demoID int64, waveformPath string) error {
	query := `UPDATE demos SET waveform_path = ?, updated_at = ? WHERE id = ?`
	if _, err := r.DB.Exec(query, waveformPath, time.Now(), demoID); err != nil {
		return fmt.Errorf("failed to update waveform path for demo %d: %w", demoID, err)
	}
	return nil
}

// UpdatePositions rewrites the display order of an artist's demos in one
// transaction; orderedIDs is the full new order.
func (r *mysqlDemoRepository) UpdatePositions(artistID int64, orderedIDs []int64) error {
	tx, err := r.DB.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	stmt, err := tx.Prepare(`UPDATE demos SET position = ?, updated_at = ? WHERE id = ? AND artist_id = ?`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to prepare position update: %w", err)
	}
	defer stmt.Close()

	now := time.Now()
	for pos, id := range orderedIDs {
		if _, err := stmt.Exec(pos, now, id, artistID); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to update position of demo %d: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit position updates: %w", err)
	}
	return nil
}

// DeleteDemo removes a demo owned by the artist.
func (r *mysqlDemoRepository) DeleteDemo(demoID, artistID int64) error {
	res, err := r.DB.Exec(`DELETE FROM demos WHERE id = ? AND artist_id = ?`, demoID, artistID)
	if err != nil {
		return fmt.Errorf("failed to delete demo %d: %w", demoID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected deleting demo %d: %w", demoID, err)
	}
	if affected == 0 {
		return fmt.Errorf("demo %d not found for artist %d", demoID, artistID)
	}
	return nil
}
