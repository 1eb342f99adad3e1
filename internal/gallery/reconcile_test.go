package gallery

import (
	"fmt"
	"testing"

	"github.com/kouign-amann/picview/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func basePicture(hash string) models.Picture {
	return models.Picture{
		Hash: hash,
		Info: models.PictureInfo{
			CreationTime: "1980-11-30",
			Thumbnail:    "xxx",
		},
		FileList:   []models.File{},
		BackupList: []models.Backup{},
		Rank:       1,
	}
}

func hashes(pictures []models.Picture) []string {
	out := make([]string, len(pictures))
	for i, p := range pictures {
		out[i] = p.Hash
	}
	return out
}

func TestRefresh(t *testing.T) {
	picture := basePicture("aaaa")
	current := []models.Picture{picture, basePicture("bbbb")}

	fresh := picture
	fresh.BackupRequired = true
	fresh.Rank = 0
	updated := []models.Picture{fresh}

	got := Refresh(current, updated)

	require.Len(t, got, 2)
	assert.True(t, got[0].BackupRequired)
	assert.Equal(t, 2, got[0].Rank)
	assert.False(t, got[1].BackupRequired)
	assert.Equal(t, 1, got[1].Rank)
}

func TestRefresh_NoUpdatesIsIdentity(t *testing.T) {
	current := []models.Picture{basePicture("a"), basePicture("b"), basePicture("c")}
	current[1].Rank = 5

	assert.Equal(t, current, Refresh(current, nil))
	assert.Equal(t, current, Refresh(current, []models.Picture{}))
}

func TestRefresh_MissingRankDefaultsToOne(t *testing.T) {
	current := []models.Picture{basePicture("a")}
	current[0].Rank = 0

	got := Refresh(current, []models.Picture{basePicture("a")})

	assert.Equal(t, 2, got[0].Rank)
}

func TestRefresh_RankIncrementsFromPrevious(t *testing.T) {
	current := []models.Picture{basePicture("a")}
	for want := 2; want <= 5; want++ {
		current = Refresh(current, []models.Picture{basePicture("a")})
		assert.Equal(t, want, current[0].Rank)
	}
}

func TestRefresh_IgnoresUnknownHashes(t *testing.T) {
	current := []models.Picture{basePicture("a"), basePicture("b")}

	got := Refresh(current, []models.Picture{basePicture("zzz"), basePicture("b")})

	assert.Equal(t, []string{"a", "b"}, hashes(got))
	assert.Equal(t, 1, got[0].Rank)
	assert.Equal(t, 2, got[1].Rank)
}

func TestRefresh_KeepsLengthAndOrder(t *testing.T) {
	var current, updated []models.Picture
	for i := 0; i < 20; i++ {
		current = append(current, basePicture(fmt.Sprintf("h%02d", i)))
	}
	for i := 19; i >= 0; i -= 3 {
		updated = append(updated, basePicture(fmt.Sprintf("h%02d", i)))
	}

	got := Refresh(current, updated)

	assert.Equal(t, hashes(current), hashes(got))
}

// Refresh must not write the new rank into the caller's updated slice.
func TestRefresh_DoesNotMutateInputs(t *testing.T) {
	current := []models.Picture{basePicture("a")}
	current[0].Rank = 3
	updated := []models.Picture{basePicture("a")}
	updated[0].Rank = 1

	got := Refresh(current, updated)

	assert.Equal(t, 4, got[0].Rank)
	assert.Equal(t, 1, updated[0].Rank)
	assert.Equal(t, 3, current[0].Rank)
}

func TestRefresh_DuplicateUpdatesLastWins(t *testing.T) {
	current := []models.Picture{basePicture("a")}

	first := basePicture("a")
	first.BackupRequired = true
	second := basePicture("a")
	second.BackupRequired = false
	second.Info.Orientation = "landscape"

	got := Refresh(current, []models.Picture{first, second})

	assert.False(t, got[0].BackupRequired)
	assert.Equal(t, "landscape", got[0].Info.Orientation)
	assert.Equal(t, 2, got[0].Rank)
}

func TestIndexByHash(t *testing.T) {
	a1 := basePicture("a")
	a2 := basePicture("a")
	a2.BackupRequired = true

	index := IndexByHash([]models.Picture{a1, basePicture("b"), a2})

	assert.Len(t, index, 2)
	assert.True(t, index["a"].BackupRequired)
}

func TestChangedHashes(t *testing.T) {
	current := []models.Picture{basePicture("a"), basePicture("b"), basePicture("c")}

	got := ChangedHashes(current, []models.Picture{basePicture("c"), basePicture("x"), basePicture("a")})

	assert.Equal(t, []string{"a", "c"}, got)
	assert.Empty(t, ChangedHashes(current, nil))
}
