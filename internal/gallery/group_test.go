package gallery

import (
	"testing"
	"time"

	"github.com/kouign-amann/picview/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

func TestGroupByYear(t *testing.T) {
	r1980 := models.DateRange{ID: 1, Start: day(1980, 11, 10), End: day(1980, 11, 10), PictureCount: 1}
	r1980b := models.DateRange{ID: 1, Start: day(1980, 12, 10), End: day(1980, 12, 11), PictureCount: 2}
	r1981 := models.DateRange{ID: 1, Start: day(1981, 11, 10), End: day(1981, 11, 10), PictureCount: 1}

	got := GroupByYear([]models.DateRange{r1980, r1980b, r1981})

	assert.Equal(t, []models.YearDateRange{
		{Year: 1980, PictureCount: 3, DateRangeList: []models.DateRange{r1980, r1980b}},
		{Year: 1981, PictureCount: 1, DateRangeList: []models.DateRange{r1981}},
	}, got)
}

func TestGroupByYear_Empty(t *testing.T) {
	got := GroupByYear(nil)
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestGroupByYear_FirstAppearanceOrder(t *testing.T) {
	ranges := []models.DateRange{
		{ID: 0, Start: day(2021, 1, 1), PictureCount: 4},
		{ID: 1, Start: day(2019, 5, 1), PictureCount: 2},
		{ID: 2, Start: day(2021, 3, 1), PictureCount: 1},
		{ID: 3, Start: day(2019, 2, 1), PictureCount: 0},
	}

	got := GroupByYear(ranges)

	require.Len(t, got, 2)
	assert.Equal(t, 2021, got[0].Year)
	assert.Equal(t, 5, got[0].PictureCount)
	assert.Equal(t, []int{0, 2}, ids(got[0].DateRangeList))
	assert.Equal(t, 2019, got[1].Year)
	assert.Equal(t, 2, got[1].PictureCount)
	assert.Equal(t, []int{1, 3}, ids(got[1].DateRangeList))
}

func TestGroupByYear_PreservesTotalsAndMembership(t *testing.T) {
	var ranges []models.DateRange
	total := 0
	for i := 0; i < 40; i++ {
		count := (i * 7) % 11
		total += count
		ranges = append(ranges, models.DateRange{
			ID:           i,
			Start:        day(2000+(i*3)%5, time.Month(i%12+1), 1),
			PictureCount: count,
		})
	}

	groups := GroupByYear(ranges)

	sum := 0
	seen := make(map[int]int)
	for _, g := range groups {
		sum += g.PictureCount
		for _, r := range g.DateRangeList {
			assert.Equal(t, g.Year, r.Start.Year())
			seen[r.ID]++
		}
	}
	assert.Equal(t, total, sum)
	assert.Len(t, seen, len(ranges))
	for id, n := range seen {
		assert.Equal(t, 1, n, "range %d seen %d times", id, n)
	}
}

func ids(ranges []models.DateRange) []int {
	out := make([]int, len(ranges))
	for i, r := range ranges {
		out[i] = r.ID
	}
	return out
}
