// Package gallery holds the pure transformations the viewer applies to
// picture API data: grouping date ranges by year, normalizing picture
// records, reconciling refreshed pictures into a displayed list and a few
// display helpers.
package gallery

import "github.com/kouign-amann/picview/internal/models"

// GroupByYear buckets date ranges by the calendar year of their start.
// Years appear in the order they are first met; ranges keep their input
// order inside a year.
func GroupByYear(ranges []models.DateRange) []models.YearDateRange {
	output := make([]models.YearDateRange, 0)
	index := make(map[int]int) // year -> position in output

	for _, dateRange := range ranges {
		year := dateRange.Start.Year()

		pos, ok := index[year]
		if !ok {
			pos = len(output)
			index[year] = pos
			output = append(output, models.YearDateRange{Year: year})
		}

		output[pos].PictureCount += dateRange.PictureCount
		output[pos].DateRangeList = append(output[pos].DateRangeList, dateRange)
	}

	return output
}
