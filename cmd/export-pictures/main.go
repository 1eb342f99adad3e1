package main

import (
	"context"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/kouign-amann/picview/internal/config"
	"github.com/kouign-amann/picview/internal/db"
	"github.com/kouign-amann/picview/internal/gallery"
	"github.com/kouign-amann/picview/internal/models"
	"github.com/kouign-amann/picview/internal/ui"
)

var csvHeader = []string{
	"hash", "creation_time", "backup_required", "backup_status",
	"files", "best_file", "resolution", "backups",
}

func main() {
	configFlag := flag.String("config", "", "Path to a picview.yaml config file")
	cacheFlag := flag.String("cache", "", "Path to the SQLite cache (overrides config)")
	monthFlag := flag.String("month", "", "Only export the month YYYY-MM")
	selectFlag := flag.Bool("select", false, "Pick the month to export interactively")
	outputPath := flag.String("output", "", "Output CSV file (prompted when empty)")
	backupFlag := flag.Bool("backup", false, "Copy the cache database instead of exporting CSV")
	flag.Parse()

	overrides := map[string]any{}
	if *cacheFlag != "" {
		overrides["cache.path"] = *cacheFlag
	}

	// only the cache is needed here, a missing API URL is fine
	conf, err := config.Load(config.Options{ConfigFile: *configFlag, Overrides: overrides})
	if err != nil && !errors.Is(err, config.ErrMissingURL) {
		ui.PrintError(err.Error())
		os.Exit(1)
	}

	if _, err := os.Stat(conf.Cache.Path); err != nil {
		ui.PrintError(fmt.Sprintf("No cache at %s, run picsync first", conf.Cache.Path))
		os.Exit(1)
	}

	if *backupFlag {
		filename, err := ui.ExportDatabaseBackup(conf.Cache.Path)
		if err != nil {
			ui.PrintError(fmt.Sprintf("Backup failed: %v", err))
			os.Exit(1)
		}
		ui.PrintSuccess(fmt.Sprintf("Database backed up to %s", filename))
		return
	}

	database, err := db.New(conf.Cache.Path)
	if err != nil {
		ui.PrintError(fmt.Sprintf("Failed to open database: %v", err))
		os.Exit(1)
	}
	defer database.Close()

	ctx := context.Background()
	pictures, label, err := loadPictures(ctx, database, *monthFlag, *selectFlag, conf.UI.Language)
	if err != nil {
		ui.PrintError(err.Error())
		database.Close()
		os.Exit(1)
	}
	if pictures == nil {
		return
	}

	output := *outputPath
	if output == "" {
		output, err = ui.PromptForFilename("pictures-"+label, ".csv")
		if err != nil {
			ui.PrintError(err.Error())
			database.Close()
			os.Exit(1)
		}
	}

	f, err := os.Create(output)
	if err != nil {
		ui.PrintError(fmt.Sprintf("Failed to create output file: %v", err))
		database.Close()
		os.Exit(1)
	}
	defer f.Close()

	count, err := writeCSV(f, pictures)
	if err != nil {
		ui.PrintError(fmt.Sprintf("Failed to write CSV: %v", err))
		f.Close()
		database.Close()
		os.Exit(1)
	}

	ui.PrintSuccess(fmt.Sprintf("Exported %d pictures to %s", count, output))
}

// loadPictures reads the pictures to export. A nil slice with no error
// means the user cancelled the month selection.
func loadPictures(ctx context.Context, database *db.DB, month string, interactive bool, lang string) ([]models.Picture, string, error) {
	if month == "" && !interactive {
		pictures, err := database.AllPictures(ctx)
		if err != nil {
			return nil, "", fmt.Errorf("failed to read pictures: %w", err)
		}
		return nonNil(pictures), "all", nil
	}

	ranges, err := database.GetDateRanges(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read months: %w", err)
	}

	var r models.DateRange
	if month != "" {
		r, err = findMonth(ranges, month)
		if err != nil {
			return nil, "", err
		}
	} else {
		selected, all, ok, err := ui.RunMonthSelector(ui.SelectorConfig{
			Title:    "Month to export",
			Subtitle: fmt.Sprintf("%d months cached", len(ranges)),
			Language: lang,
			Groups:   gallery.GroupByYear(ranges),
			AllowAll: true,
		})
		if err != nil {
			return nil, "", err
		}
		if !ok {
			return nil, "", nil
		}
		if all {
			return loadPictures(ctx, database, "", false, lang)
		}
		r = selected
	}

	pictures, err := database.ListPictures(ctx, r.Start, r.End)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read pictures: %w", err)
	}
	return nonNil(pictures), r.Start.Format("2006-01"), nil
}

func nonNil(pictures []models.Picture) []models.Picture {
	if pictures == nil {
		return []models.Picture{}
	}
	return pictures
}

func findMonth(ranges []models.DateRange, month string) (models.DateRange, error) {
	want, err := time.Parse("2006-01", month)
	if err != nil {
		return models.DateRange{}, fmt.Errorf("invalid month %q, expected YYYY-MM", month)
	}
	for _, r := range ranges {
		if r.Start.Year() == want.Year() && r.Start.Month() == want.Month() {
			return r, nil
		}
	}
	return models.DateRange{}, fmt.Errorf("month %s is not cached", month)
}

// writeCSV writes one line per picture and returns the number of lines
func writeCSV(out io.Writer, pictures []models.Picture) (int, error) {
	w := csv.NewWriter(out)

	if err := w.Write(csvHeader); err != nil {
		return 0, fmt.Errorf("failed to write header: %w", err)
	}

	count := 0
	for _, p := range pictures {
		created := ""
		if p.Info.HasCreationDate() {
			created = models.FormatServerTime(p.Info.CreationTimeDate)
		}

		bestPath, resolution := "", ""
		if best, ok := gallery.BestFile(p); ok {
			bestPath = best.PicturePath
			resolution = ui.FormatResolution(best)
		}

		record := []string{
			p.Hash,
			created,
			strconv.FormatBool(p.BackupRequired),
			gallery.BackupIndicatorFor(p).String(),
			strconv.Itoa(len(p.FileList)),
			bestPath,
			resolution,
			strconv.Itoa(len(p.BackupList)),
		}
		if err := w.Write(record); err != nil {
			return count, fmt.Errorf("failed to write row: %w", err)
		}
		count++
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return count, fmt.Errorf("failed to flush CSV: %w", err)
	}
	return count, nil
}
