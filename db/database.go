package db

import (
	"database/sql"
	"fmt"
	"log"

	"voxfolio/config"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
)

var DB *sql.DB

// ConnectDB establishes a connection to the database.
func ConnectDB(cfg *config.Config) error {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true",
		cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)

	var err error
	DB, err = sql.Open("mysql", dsn)
	if err != nil {
		return fmt.Errorf("failed to open database connection: %w", err)
	}

	if err = DB.Ping(); err != nil {
		DB.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("Successfully connected to the database.")
	return nil
}

// InitDB initializes the database schema, creating tables if they don't
// exist. The GORM-managed portfolio tables are migrated separately.
func InitDB() error {
	if err := createArtistsTable(); err != nil {
		return err
	}
	if err := createDemosTable(); err != nil {
		return err
	}
	log.Println("Database initialization completed.")
	return nil
}

func createArtistsTable() error {
	query := `
	CREATE TABLE IF NOT EXISTS artists (
		id INT AUTO_INCREMENT PRIMARY KEY,
		username VARCHAR(100) NOT NULL UNIQUE,
		email VARCHAR(255) NOT NULL UNIQUE,
		password_hash VARCHAR(255) NOT NULL,
		display_name VARCHAR(255) NOT NULL DEFAULT '',
		bio TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
	);
	`
	_, err := DB.Exec(query)
	if err != nil {
		return fmt.Errorf("failed to create artists table: %w", err)
	}
	return nil
}

func createDemosTable() error {
	query := `
	CREATE TABLE IF NOT EXISTS demos (
		id INT AUTO_INCREMENT PRIMARY KEY,
		artist_id INT NOT NULL,
		title VARCHAR(255) NOT NULL,
		audio_path VARCHAR(512) NOT NULL DEFAULT '',
		audio_url VARCHAR(1024) NOT NULL DEFAULT '',
		waveform_path VARCHAR(512) NOT NULL DEFAULT '',
		duration DOUBLE NOT NULL DEFAULT 0,
		segments JSON NULL,
		position INT NOT NULL DEFAULT 0,
		published BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		INDEX idx_demos_artist (artist_id)
	);
	`
	_, err := DB.Exec(query)
	if err != nil {
		return fmt.Errorf("failed to create demos table: %w", err)
	}
	return nil
}
