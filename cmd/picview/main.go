package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh/spinner"
	"github.com/charmbracelet/log"
	"github.com/kouign-amann/picview/internal/config"
	"github.com/kouign-amann/picview/internal/db"
	"github.com/kouign-amann/picview/internal/gallery"
	"github.com/kouign-amann/picview/internal/models"
	"github.com/kouign-amann/picview/internal/source"
	"github.com/kouign-amann/picview/internal/ui"
)

func main() {
	configFlag := flag.String("config", "", "Path to a picview.yaml config file")
	urlFlag := flag.String("url", "", "Picture API URL (overrides config)")
	cacheFlag := flag.String("cache", "", "Path to the SQLite cache (overrides config)")
	noCacheFlag := flag.Bool("no-cache", false, "Disable the local cache")
	langFlag := flag.String("lang", "", "Month names language: fr or en")
	levelFlag := flag.String("log-level", "", "Log level: debug, info, warn, error")
	monthsFlag := flag.Bool("months", false, "Print the months with pictures and exit")
	watchFlag := flag.String("watch", "", "Print updates of a month (YYYY-MM) until interrupted")
	syncFlag := flag.Bool("sync", false, "Refresh the whole cache and exit")
	exportDir := flag.String("export-dir", ".", "Directory for markdown and thumbnail exports")
	noSplash := flag.Bool("no-splash", false, "Skip the connection screen")
	flag.Parse()

	overrides := map[string]any{}
	if *urlFlag != "" {
		overrides["api.url"] = *urlFlag
	}
	if *cacheFlag != "" {
		overrides["cache.path"] = *cacheFlag
	}
	if *noCacheFlag {
		overrides["cache.enabled"] = false
	}
	if *langFlag != "" {
		overrides["ui.language"] = *langFlag
	}
	if *levelFlag != "" {
		overrides["log.level"] = *levelFlag
	}

	interactive := !*monthsFlag && *watchFlag == "" && !*syncFlag

	conf, err := config.Load(config.Options{ConfigFile: *configFlag, Overrides: overrides})
	if errors.Is(err, config.ErrMissingURL) {
		err = resolveServerURL(conf, interactive)
	}
	if err != nil {
		ui.PrintError(err.Error())
		os.Exit(1)
	}

	var logger *log.Logger
	if interactive {
		fileLogger, closer, err := config.OpenLogFile(conf.Log, "picview")
		if err != nil {
			ui.PrintError(err.Error())
			os.Exit(1)
		}
		defer closer.Close()
		logger = fileLogger
	} else {
		logger = config.NewLogger(os.Stderr, conf.Log.Level, "picview")
	}

	svc, database, err := source.Open(conf, logger)
	if err != nil {
		ui.PrintError(err.Error())
		os.Exit(1)
	}
	if database != nil {
		defer database.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch {
	case *monthsFlag:
		err = printMonths(ctx, svc, conf.UI.Language)
	case *watchFlag != "":
		err = watchMonth(ctx, svc, conf, *watchFlag, logger)
	case *syncFlag:
		err = syncCache(ctx, svc)
	default:
		err = runViewer(ctx, svc, conf, *exportDir, logger, *noSplash)
	}

	if err != nil {
		ui.PrintError(err.Error())
		stop()
		if database != nil {
			database.Close()
		}
		os.Exit(1)
	}
}

// resolveServerURL fills conf.API.URL from the cache settings or, in
// interactive mode, by asking the user
func resolveServerURL(conf *config.Config, interactive bool) error {
	var database *db.DB
	if conf.Cache.Enabled {
		if d, err := db.New(conf.Cache.Path); err == nil {
			database = d
			defer database.Close()
		}
	}

	ctx := context.Background()
	if database != nil {
		if saved, err := database.GetSetting(ctx, db.SettingServerURL); err == nil && saved != "" {
			conf.API.URL = saved
			return conf.Validate()
		}
	}

	if !interactive {
		return config.ErrMissingURL
	}

	serverURL, err := ui.PromptForServerURL("http://localhost:5000", config.ValidateURL)
	if err != nil {
		return err
	}
	conf.API.URL = serverURL

	if database != nil && ui.ConfirmSaveServerURL(serverURL) {
		if err := database.SetSetting(ctx, db.SettingServerURL, serverURL); err != nil {
			ui.PrintError(fmt.Sprintf("Failed to save server URL: %v", err))
		}
	}

	return conf.Validate()
}

func runViewer(ctx context.Context, svc *source.Service, conf *config.Config, exportDir string, logger *log.Logger, noSplash bool) error {
	if !noSplash {
		err := ui.ShowSplash(conf.API.URL, svc.Ping, conf.API.Timeout)
		if errors.Is(err, ui.ErrSpinnerCancelled) {
			return nil
		}
		if err != nil {
			// the viewer can still show cached months
			logger.Warn("Picture API unreachable", "url", conf.API.URL, "error", err)
		}
	}

	app := ui.NewApp(ctx, svc, ui.Options{
		Language:       conf.UI.Language,
		PathWidth:      conf.UI.PathWidth,
		PollInterval:   conf.Poll.Interval,
		PollWindow:     conf.Poll.Window,
		PollTimeout:    conf.Poll.Timeout,
		RequestTimeout: conf.API.Timeout,
		ExportDir:      exportDir,
		ServerURL:      conf.API.URL,
		Logger:         logger,
	})

	logger.Info("Viewer started", "url", conf.API.URL, "cache", conf.Cache.Enabled)

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
	final, err := p.Run()
	if final, ok := final.(ui.App); ok {
		final.Close()
	}
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("viewer error: %w", err)
	}
	return nil
}

func printMonths(ctx context.Context, svc *source.Service, lang string) error {
	var ranges []models.DateRange
	var fetchErr error

	err := spinner.New().
		Title("Fetching months...").
		Action(func() {
			ranges, fetchErr = svc.ListDateRanges(ctx)
		}).
		Run()
	if err != nil {
		return fmt.Errorf("spinner error: %w", err)
	}
	if fetchErr != nil {
		return fmt.Errorf("failed to list months: %w", fetchErr)
	}

	if svc.Offline() {
		note := "API unreachable, showing cached months"
		if last := svc.LastSync(ctx); !last.IsZero() {
			note += " (synced " + last.Local().Format("2006-01-02 15:04") + ")"
		}
		fmt.Fprintln(os.Stderr, ui.RenderDim(note))
	}
	ui.PrintMonths(os.Stdout, gallery.GroupByYear(ranges), lang)
	return nil
}

func syncCache(ctx context.Context, svc *source.Service) error {
	var count int
	var syncErr error

	err := ui.RunWithSpinner("Syncing cache...", func() {
		count, syncErr = svc.Sync(ctx)
	})
	if err != nil {
		return err
	}
	if syncErr != nil {
		return fmt.Errorf("sync failed after %d pictures: %w", count, syncErr)
	}

	ui.PrintSuccess(fmt.Sprintf("Cached %d pictures", count))
	return nil
}
