package db

const createDateRangesTable = `
CREATE TABLE IF NOT EXISTS date_ranges (
    id INTEGER PRIMARY KEY,
    start_date TEXT NOT NULL,
    end_date TEXT NOT NULL,
    picture_count INTEGER NOT NULL DEFAULT 0,
    fetched_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
`

const insertDateRange = `
INSERT INTO date_ranges (id, start_date, end_date, picture_count)
VALUES (?, ?, ?, ?)
`

const deleteDateRanges = `
DELETE FROM date_ranges
`

const selectDateRanges = `
SELECT id, start_date, end_date, picture_count FROM date_ranges
ORDER BY id ASC
`

// creation_date holds the parsed capture time in a fixed width UTC format
// so that range queries can compare strings. It is NULL when the picture
// has no valid capture time.
const createPicturesTable = `
CREATE TABLE IF NOT EXISTS pictures (
    hash TEXT PRIMARY KEY,
    creation_time TEXT NOT NULL DEFAULT '',
    creation_date TEXT,
    thumbnail TEXT NOT NULL DEFAULT '',
    orientation TEXT NOT NULL DEFAULT '',
    backup_required INTEGER NOT NULL DEFAULT 0,
    file_list TEXT NOT NULL DEFAULT '[]',
    backup_list TEXT NOT NULL DEFAULT '[]',
    updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_pictures_creation ON pictures(creation_date);
`

const upsertPicture = `
INSERT INTO pictures (
    hash, creation_time, creation_date, thumbnail, orientation,
    backup_required, file_list, backup_list, updated_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(hash) DO UPDATE SET
    creation_time = excluded.creation_time,
    creation_date = excluded.creation_date,
    thumbnail = excluded.thumbnail,
    orientation = excluded.orientation,
    backup_required = excluded.backup_required,
    file_list = excluded.file_list,
    backup_list = excluded.backup_list,
    updated_at = CURRENT_TIMESTAMP
`

const pictureColumns = `
hash, creation_time, thumbnail, orientation, backup_required, file_list, backup_list
`

const selectPicture = `SELECT ` + pictureColumns + ` FROM pictures WHERE hash = ?`

const selectPicturesBetween = `SELECT ` + pictureColumns + ` FROM pictures
WHERE creation_date >= ? AND creation_date <= ?
ORDER BY creation_date ASC, hash ASC`

const selectAllPictures = `SELECT ` + pictureColumns + ` FROM pictures
ORDER BY creation_date IS NULL, creation_date ASC, hash ASC`

const selectPictureCount = `
SELECT COUNT(*) FROM pictures
`

const deletePicture = `
DELETE FROM pictures WHERE hash = ?
`

// Key/value settings of the viewer (last viewed month, last sync...)
const createSettingsTable = `
CREATE TABLE IF NOT EXISTS settings (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
`

const upsertSetting = `
INSERT OR REPLACE INTO settings (key, value, updated_at)
VALUES (?, ?, CURRENT_TIMESTAMP)
`

const selectSetting = `
SELECT value FROM settings WHERE key = ?
`

const deleteSetting = `
DELETE FROM settings WHERE key = ?
`
