package gallery

import "github.com/kouign-amann/picview/internal/models"

// BackupIndicator summarizes the backup state of a picture for display
type BackupIndicator int

const (
	BackupNotRequired BackupIndicator = iota // backup not requested
	BackupNotPlanned                         // requested, nothing planned yet
	BackupOnGoing
	BackupDone
	BackupFailed
)

func (b BackupIndicator) String() string {
	switch b {
	case BackupNotPlanned:
		return "not planned"
	case BackupOnGoing:
		return "on going"
	case BackupDone:
		return "done"
	case BackupFailed:
		return "error"
	default:
		return "-"
	}
}

// BackupIndicatorFor computes the indicator of a picture. Done wins only
// when every backup is done; any error otherwise marks the picture failed.
func BackupIndicatorFor(picture models.Picture) BackupIndicator {
	if !picture.BackupRequired {
		return BackupNotRequired
	}

	total := len(picture.BackupList)
	if total == 0 {
		return BackupNotPlanned
	}

	done, failed := 0, 0
	for _, backup := range picture.BackupList {
		switch backup.Status {
		case models.BackupDone:
			done++
		case models.BackupError:
			failed++
		}
	}

	switch {
	case done == total:
		return BackupDone
	case failed > 0:
		return BackupFailed
	default:
		return BackupOnGoing
	}
}

// BestFile returns the file with the most pixels, the most recently seen
// one on ties. ok is false for pictures without files.
func BestFile(picture models.Picture) (best models.File, ok bool) {
	for i, file := range picture.FileList {
		if i == 0 || file.Pixels() > best.Pixels() ||
			(file.Pixels() == best.Pixels() && file.LastSeen > best.LastSeen) {
			best = file
			ok = true
		}
	}
	return best, ok
}
