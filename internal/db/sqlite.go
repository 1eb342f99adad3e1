// Package db is the sqlite cache of the picture API: date ranges,
// pictures and a few viewer settings.
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	json "github.com/goccy/go-json"
	"github.com/kouign-amann/picview/internal/gallery"
	"github.com/kouign-amann/picview/internal/models"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a picture or setting is not cached
var ErrNotFound = errors.New("not found in cache")

// Setting keys
const (
	SettingLastDateRange = "last_date_range"
	SettingLastSync      = "last_sync"
	SettingServerURL     = "server_url"
)

// DB wraps the SQLite database connection
type DB struct {
	conn *sql.DB
	path string
}

// New opens (or creates) the cache database and initializes the schema
func New(dbPath string) (*DB, error) {
	// Ensure the directory exists
	dir := filepath.Dir(dbPath)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// sqlite serializes writers; a single connection avoids SQLITE_BUSY
	conn.SetMaxOpenConns(1)

	for name, schema := range map[string]string{
		"date ranges": createDateRangesTable,
		"pictures":    createPicturesTable,
		"settings":    createSettingsTable,
	} {
		if _, err := conn.Exec(schema); err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to create %s schema: %w", name, err)
		}
	}

	return &DB{conn: conn, path: dbPath}, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// Path returns the database file path
func (db *DB) Path() string {
	return db.path
}

// ReplaceDateRanges swaps the cached date ranges for ranges
func (db *DB) ReplaceDateRanges(ctx context.Context, ranges []models.DateRange) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, deleteDateRanges); err != nil {
		return fmt.Errorf("failed to clear date ranges: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, insertDateRange)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, r := range ranges {
		_, err := stmt.ExecContext(ctx,
			r.ID,
			models.FormatServerTime(r.Start),
			models.FormatServerTime(r.End),
			r.PictureCount,
		)
		if err != nil {
			return fmt.Errorf("failed to insert date range %d: %w", r.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetDateRanges returns the cached date ranges ordered by ID
func (db *DB) GetDateRanges(ctx context.Context) ([]models.DateRange, error) {
	rows, err := db.conn.QueryContext(ctx, selectDateRanges)
	if err != nil {
		return nil, fmt.Errorf("failed to query date ranges: %w", err)
	}
	defer rows.Close()

	ranges := []models.DateRange{}
	for rows.Next() {
		var r models.DateRange
		var start, end string
		if err := rows.Scan(&r.ID, &start, &end, &r.PictureCount); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		if r.Start, err = models.ParseTimestamp(start); err != nil {
			return nil, fmt.Errorf("date range %d: %w", r.ID, err)
		}
		if r.End, err = models.ParseTimestamp(end); err != nil {
			return nil, fmt.Errorf("date range %d: %w", r.ID, err)
		}
		ranges = append(ranges, r)
	}

	return ranges, rows.Err()
}

// UpsertPictures inserts or updates pictures in a single transaction
func (db *DB) UpsertPictures(ctx context.Context, pictures []models.Picture) error {
	if len(pictures) == 0 {
		return nil
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, upsertPicture)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, p := range pictures {
		files, err := json.Marshal(nonNilFiles(p.FileList))
		if err != nil {
			return fmt.Errorf("failed to encode files of %s: %w", p.Hash, err)
		}
		backups, err := json.Marshal(nonNilBackups(p.BackupList))
		if err != nil {
			return fmt.Errorf("failed to encode backups of %s: %w", p.Hash, err)
		}

		info := gallery.ConvertInfo(p.Info)
		var creationDate sql.NullString
		if info.HasCreationDate() {
			creationDate = sql.NullString{String: models.FormatServerTime(info.CreationTimeDate), Valid: true}
		}

		_, err = stmt.ExecContext(ctx,
			p.Hash,
			p.Info.CreationTime,
			creationDate,
			p.Info.Thumbnail,
			p.Info.Orientation,
			p.BackupRequired,
			string(files),
			string(backups),
		)
		if err != nil {
			return fmt.Errorf("failed to upsert picture %s: %w", p.Hash, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetPicture returns a cached picture or ErrNotFound
func (db *DB) GetPicture(ctx context.Context, hash string) (models.Picture, error) {
	p, err := scanPicture(db.conn.QueryRowContext(ctx, selectPicture, hash))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Picture{}, ErrNotFound
	}
	if err != nil {
		return models.Picture{}, fmt.Errorf("failed to get picture %s: %w", hash, err)
	}
	return p, nil
}

// ListPictures returns the cached pictures taken between start and end,
// both inclusive, oldest first
func (db *DB) ListPictures(ctx context.Context, start, end time.Time) ([]models.Picture, error) {
	return db.queryPictures(ctx, selectPicturesBetween,
		models.FormatServerTime(start), models.FormatServerTime(end))
}

// AllPictures returns every cached picture, dated ones first
func (db *DB) AllPictures(ctx context.Context) ([]models.Picture, error) {
	return db.queryPictures(ctx, selectAllPictures)
}

// CountPictures returns the number of cached pictures
func (db *DB) CountPictures(ctx context.Context) (int, error) {
	var total int
	if err := db.conn.QueryRowContext(ctx, selectPictureCount).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count pictures: %w", err)
	}
	return total, nil
}

// DeletePicture removes a picture from the cache
func (db *DB) DeletePicture(ctx context.Context, hash string) error {
	if _, err := db.conn.ExecContext(ctx, deletePicture, hash); err != nil {
		return fmt.Errorf("failed to delete picture %s: %w", hash, err)
	}
	return nil
}

func (db *DB) queryPictures(ctx context.Context, query string, args ...any) ([]models.Picture, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query pictures: %w", err)
	}
	defer rows.Close()

	pictures := []models.Picture{}
	for rows.Next() {
		p, err := scanPicture(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		pictures = append(pictures, p)
	}

	return pictures, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanPicture reads a row selected with pictureColumns. The returned
// picture is converted like a freshly fetched one.
func scanPicture(row rowScanner) (models.Picture, error) {
	var p models.Picture
	var files, backups string
	err := row.Scan(
		&p.Hash,
		&p.Info.CreationTime,
		&p.Info.Thumbnail,
		&p.Info.Orientation,
		&p.BackupRequired,
		&files,
		&backups,
	)
	if err != nil {
		return models.Picture{}, err
	}

	if err := json.Unmarshal([]byte(files), &p.FileList); err != nil {
		return models.Picture{}, fmt.Errorf("invalid file list of %s: %w", p.Hash, err)
	}
	if err := json.Unmarshal([]byte(backups), &p.BackupList); err != nil {
		return models.Picture{}, fmt.Errorf("invalid backup list of %s: %w", p.Hash, err)
	}

	return gallery.ConvertPicture(p), nil
}

func nonNilFiles(files []models.File) []models.File {
	if files == nil {
		return []models.File{}
	}
	return files
}

func nonNilBackups(backups []models.Backup) []models.Backup {
	if backups == nil {
		return []models.Backup{}
	}
	return backups
}
