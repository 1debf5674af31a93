package repository

import (
	"database/sql"
	"fmt"
	"time"

	"voxfolio/db"
	"voxfolio/model"
)

// ArtistRepository defines the interface for artist account operations.
type ArtistRepository interface {
	CreateArtist(artist *model.Artist) (int64, error)
	GetArtistByID(id int64) (*model.Artist, error)
	GetArtistByUsername(username string) (*model.Artist, error)
	GetArtistByEmail(email string) (*model.Artist, error)
	UpdateProfile(artistID int64, displayName, bio string) error
}

// mysqlArtistRepository implements ArtistRepository for MySQL.
type mysqlArtistRepository struct {
	DB *sql.DB
}

// NewMySQLArtistRepository creates a new instance of mysqlArtistRepository.
func NewMySQLArtistRepository() ArtistRepository {
	return &mysqlArtistRepository{DB: db.DB}
}

const artistColumns = `id, username, email, password_hash, display_name, COALESCE(bio, ''), created_at, updated_at`

func scanArtist(row *sql.Row) (*model.Artist, error) {
	artist := &model.Artist{}
	err := row.Scan(&artist.ID, &artist.Username, &artist.Email, &artist.PasswordHash,
		&artist.DisplayName, &artist.Bio, &artist.CreatedAt, &artist.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan artist: %w", err)
	}
	return artist, nil
}

// CreateArtist adds a new artist account.
func (r *mysqlArtistRepository) CreateArtist(artist *model.Artist) (int64, error) {
	query := `INSERT INTO artists (username, email, password_hash, display_name, bio, created_at, updated_at)
	           VALUES (?, ?, ?, ?, ?, ?, ?)`
	stmt, err := r.DB.Prepare(query)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare statement for CreateArtist: %w", err)
	}
	defer stmt.Close()

	now := time.Now()
	res, err := stmt.Exec(artist.Username, artist.Email, artist.PasswordHash, artist.DisplayName, artist.Bio, now, now)
	if err != nil {
		return 0, fmt.Errorf("failed to execute CreateArtist: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for CreateArtist: %w", err)
	}
	return id, nil
}

// GetArtistByID retrieves an artist by ID. Returns (nil, nil) when missing.
func (r *mysqlArtistRepository) GetArtistByID(id int64) (*model.Artist, error) {
	query := `SELECT ` + artistColumns + ` FROM artists WHERE id = ?`
	return scanArtist(r.DB.QueryRow(query, id))
}

// GetArtistByUsername retrieves an artist by username (the public slug).
func (r *mysqlArtistRepository) GetArtistByUsername(username string) (*model.Artist, error) {
	query := `SELECT ` + artistColumns + ` FROM artists WHERE username = ?`
	return scanArtist(r.DB.QueryRow(query, username))
}

// GetArtistByEmail retrieves an artist by email.
func (r *mysqlArtistRepository) GetArtistByEmail(email string) (*model.Artist, error) {
	query := `SELECT ` + artistColumns + ` FROM artists WHERE email = ?`
	return scanArtist(r.DB.QueryRow(query, email))
}

// UpdateProfile updates the public-facing profile fields.
func (r *mysqlArtistRepository) UpdateProfile(artistID int64, displayName, bio string) error {
	query := `UPDATE artists SET display_name = ?, bio = ?, updated_at = ? WHERE id = ?`
	if _, err := r.DB.Exec(query, displayName, bio, time.Now(), artistID); err != nil {
		return fmt.Errorf("failed to update profile for artist %d: %w", artistID, err)
	}
	return nil
}
