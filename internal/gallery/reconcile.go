package gallery

import "github.com/kouign-amann/picview/internal/models"

// IndexByHash maps each picture to its hash. When a hash appears twice the
// later picture wins.
func IndexByHash(pictures []models.Picture) map[string]models.Picture {
	index := make(map[string]models.Picture, len(pictures))
	for _, picture := range pictures {
		index[picture.Hash] = picture
	}
	return index
}

// Refresh merges recently updated pictures into the displayed list.
//
// The result has the same length and order as current. A slot whose hash
// is found in updated receives a copy of the updated picture with its rank
// set to the previous rank plus one (an unset rank counts as 1). Other
// slots are returned untouched, and pictures only present in updated are
// ignored. Neither input slice is modified.
func Refresh(current, updated []models.Picture) []models.Picture {
	index := IndexByHash(updated)

	output := make([]models.Picture, len(current))
	for i, picture := range current {
		fresh, ok := index[picture.Hash]
		if !ok {
			output[i] = picture
			continue
		}

		rank := picture.Rank
		if rank == 0 {
			rank = 1
		}
		fresh.Rank = rank + 1
		output[i] = fresh
	}

	return output
}

// ChangedHashes returns the hashes of current that Refresh would replace
func ChangedHashes(current, updated []models.Picture) []string {
	index := IndexByHash(updated)

	var hashes []string
	for _, picture := range current {
		if _, ok := index[picture.Hash]; ok {
			hashes = append(hashes, picture.Hash)
		}
	}
	return hashes
}
