package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// SetSetting stores a viewer setting
func (db *DB) SetSetting(ctx context.Context, key, value string) error {
	if _, err := db.conn.ExecContext(ctx, upsertSetting, key, value); err != nil {
		return fmt.Errorf("failed to save setting %s: %w", key, err)
	}
	return nil
}

// GetSetting returns a setting or ErrNotFound
func (db *DB) GetSetting(ctx context.Context, key string) (string, error) {
	var value string
	err := db.conn.QueryRowContext(ctx, selectSetting, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to read setting %s: %w", key, err)
	}
	return value, nil
}

// DeleteSetting removes a setting; missing keys are ignored
func (db *DB) DeleteSetting(ctx context.Context, key string) error {
	if _, err := db.conn.ExecContext(ctx, deleteSetting, key); err != nil {
		return fmt.Errorf("failed to delete setting %s: %w", key, err)
	}
	return nil
}

// MarkSynced records t as the last successful cache refresh
func (db *DB) MarkSynced(ctx context.Context, t time.Time) error {
	return db.SetSetting(ctx, SettingLastSync, t.UTC().Format(time.RFC3339))
}

// LastSync returns the time of the last successful refresh, zero if none
func (db *DB) LastSync(ctx context.Context) (time.Time, error) {
	value, err := db.GetSetting(ctx, SettingLastSync)
	if errors.Is(err, ErrNotFound) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, err
	}

	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid last sync time %q: %w", value, err)
	}
	return t, nil
}
