package models

import (
	"strconv"
	"time"
)

// BackupStatus is the state of one planned backup of a picture
type BackupStatus string

const (
	BackupPending BackupStatus = "PENDING"
	BackupOnGoing BackupStatus = "ON_GOING"
	BackupDone    BackupStatus = "DONE"
	BackupError   BackupStatus = "ERROR"
)

// PictureInfo holds the capture metadata of a picture
type PictureInfo struct {
	CreationTime string `json:"creation_time"`
	Thumbnail    string `json:"thumbnail"` // base64 encoded JPEG
	Orientation  string `json:"orientation,omitempty"`

	// CreationTimeDate is derived from CreationTime. The zero value means
	// the timestamp could not be parsed and must be shown as unknown.
	CreationTimeDate time.Time `json:"-"`
}

// HasCreationDate reports whether CreationTimeDate holds a parsed date
func (i PictureInfo) HasCreationDate() bool {
	return !i.CreationTimeDate.IsZero()
}

// File is one copy of a picture seen by a crawler
type File struct {
	CrawlerID   string `json:"crawler_id"`
	Resolution  [2]int `json:"resolution"` // width, height
	PicturePath string `json:"picture_path"`
	LastSeen    string `json:"last_seen"`
}

// Pixels returns width*height of the file
func (f File) Pixels() int {
	return f.Resolution[0] * f.Resolution[1]
}

// Backup is a backup of a picture on a storage
type Backup struct {
	CrawlerID    string       `json:"crawler_id"`
	StorageID    string       `json:"storage_id"`
	FilePath     string       `json:"file_path"`
	Status       BackupStatus `json:"status"`
	CreationTime string       `json:"creation_time"`
}

// Picture represents a picture record returned by the picture API.
// Hash is the identity of a picture across refreshes.
type Picture struct {
	Hash           string      `json:"hash"`
	Info           PictureInfo `json:"info"`
	BackupRequired bool        `json:"backup_required"`
	FileList       []File      `json:"file_list"`
	BackupList     []Backup    `json:"backup_list"`

	// Rank is a view-local refresh counter, 0 when unset. It is bumped
	// every time a background refresh brings new data for the picture.
	Rank int `json:"-"`
}

// RowKey identifies a rendered row; it changes whenever the rank does
func (p Picture) RowKey() string {
	return p.Hash + "-" + strconv.Itoa(p.Rank)
}

// DateRange is one browsable time window, usually a month
type DateRange struct {
	ID           int
	Start        time.Time
	End          time.Time
	PictureCount int
}

// YearDateRange groups the date ranges starting in the same year
type YearDateRange struct {
	Year          int
	PictureCount  int
	DateRangeList []DateRange
}

// PictureCount is the payload of the /picture/count endpoint
type PictureCount struct {
	Date      string `json:"date"`
	Count     int    `json:"count"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}
