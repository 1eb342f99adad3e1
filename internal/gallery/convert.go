package gallery

import (
	"time"

	"github.com/kouign-amann/picview/internal/models"
)

// ConvertInfo fills CreationTimeDate from CreationTime. An unparseable
// timestamp leaves the zero time, which callers display as unknown.
func ConvertInfo(info models.PictureInfo) models.PictureInfo {
	parsed, err := models.ParseTimestamp(info.CreationTime)
	if err != nil {
		info.CreationTimeDate = time.Time{}
		return info
	}
	info.CreationTimeDate = parsed
	return info
}

// ConvertPicture normalizes a picture freshly received from the network:
// its info is converted and its rank reset to 1.
func ConvertPicture(picture models.Picture) models.Picture {
	picture.Info = ConvertInfo(picture.Info)
	picture.Rank = 1
	return picture
}

// ConvertPictures applies ConvertPicture to every element of a list
func ConvertPictures(pictures []models.Picture) []models.Picture {
	output := make([]models.Picture, len(pictures))
	for i, picture := range pictures {
		output[i] = ConvertPicture(picture)
	}
	return output
}
