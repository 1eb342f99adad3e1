package ui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/kouign-amann/picview/internal/models"
	"github.com/kouign-amann/picview/internal/poll"
)

type view int

const (
	viewMonths view = iota
	viewPictures
	viewDetail
)

const statusDuration = 4 * time.Second

// App is the root model of the viewer: month selector, picture list of a
// month and picture detail.
type App struct {
	PageState

	svc    PictureService
	opts   Options
	ctx    context.Context
	logger *log.Logger

	view    view
	spinner spinner.Model
	loading string // non-empty while a blocking request runs

	// month selector
	ranges     []models.DateRange
	groups     []models.YearDateRange
	collapsed  map[int]bool
	monthRows  []monthRow
	monthTable table.Model
	restored   bool

	// picture list
	month        models.DateRange
	pictures     []models.Picture
	visible      []int // indexes into pictures matching the filter
	rowsKey      string
	pictureTable table.Model
	filter       textinput.Model
	filtering    bool
	gen          uint64
	poller       *poll.Poller[[]models.Picture]
	busy         map[string]bool
	lastPoll     time.Time

	// detail
	detailHash string
}

// NewApp creates the viewer. ctx bounds every request and poll the viewer
// makes.
func NewApp(ctx context.Context, svc PictureService, opts Options) App {
	if ctx == nil {
		ctx = context.Background()
	}
	opts = opts.withDefaults()
	layout := DefaultLayout()

	filter := textinput.New()
	filter.Placeholder = "hash, file path or date"
	filter.Prompt = "/ "
	filter.CharLimit = 64

	return App{
		PageState:    NewPageState(layout),
		svc:          svc,
		opts:         opts,
		ctx:          ctx,
		logger:       opts.Logger,
		spinner:      NewAppSpinner(),
		loading:      "Loading months...",
		collapsed:    make(map[int]bool),
		monthTable:   InitTable(CalculateColumns(MonthColumns(), layout.TableWidth), nil, layout),
		pictureTable: InitTable(CalculateColumns(PictureColumns(), layout.TableWidth), nil, layout),
		filter:       filter,
		busy:         make(map[string]bool),
	}
}

func (m App) Init() tea.Cmd {
	return tea.Batch(StandardInit(), m.spinner.Tick, m.loadDateRanges(), statusTick())
}

func (m App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		if m.UpdateLayout(msg.Width, msg.Height) {
			m.resizeTables()
		}
		return m, nil

	case spinner.TickMsg:
		if m.loading == "" {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case statusTickMsg:
		m.ClearExpiredStatus(time.Time(msg))
		return m, statusTick()

	case dateRangesMsg:
		return m.handleDateRanges(msg)

	case picturesMsg:
		return m.handlePictures(msg)

	case pollMsg:
		return m.handlePoll(msg)

	case pollClosedMsg:
		return m, nil

	case backupDoneMsg:
		return m.handleBackupDone(msg)

	case pictureMsg:
		return m.handlePictureReloaded(msg)

	case exportDoneMsg:
		if msg.err != nil {
			m.SetError(fmt.Sprintf("Export failed: %v", msg.err))
		} else {
			m.SetStatus(fmt.Sprintf("Exported to %s", msg.path), statusDuration)
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m.quit()
		}
		switch m.view {
		case viewMonths:
			return m.handleMonthKeys(msg)
		case viewPictures:
			return m.handlePictureKeys(msg)
		case viewDetail:
			return m.handleDetailKeys(msg)
		}
	}

	return m, nil
}

func (m App) View() string {
	if m.Quitting {
		return ""
	}
	switch m.view {
	case viewPictures:
		return m.viewPictures()
	case viewDetail:
		return m.viewDetail()
	default:
		return m.viewMonths()
	}
}

// Close stops background polling. Call it once the program has exited.
func (m App) Close() {
	if m.poller != nil {
		m.poller.Stop()
	}
}

func (m App) quit() (tea.Model, tea.Cmd) {
	m.stopPolling()
	m.Quitting = true
	return m, tea.Quit
}

func (m *App) resizeTables() {
	m.monthTable.SetColumns(CalculateColumns(MonthColumns(), m.Layout.TableWidth))
	m.monthTable.SetHeight(m.Layout.TableHeight)
	m.monthTable.SetWidth(m.Layout.TableWidth)

	height := m.Layout.TableHeight
	if m.filtering || m.filter.Value() != "" {
		height--
	}
	m.pictureTable.SetColumns(CalculateColumns(PictureColumns(), m.Layout.TableWidth))
	m.pictureTable.SetHeight(height)
	m.pictureTable.SetWidth(m.Layout.TableWidth)
	m.filter.Width = m.Layout.InnerWidth - 4
}

func (m App) offline() bool {
	if o, ok := m.svc.(OfflineReporter); ok {
		return o.Offline()
	}
	return false
}

func (m App) cachedSince() string {
	c, ok := m.svc.(CacheReporter)
	if !ok {
		return ""
	}
	at := c.CachedAt()
	if at.IsZero() {
		return ""
	}
	return " synced " + at.Local().Format("2006-01-02 15:04")
}

func (m App) header(title string) string {
	subtitle := m.opts.ServerURL
	if m.offline() {
		subtitle += "  [offline, showing cached data" + m.cachedSince() + "]"
	}
	return ViewHeaderWithSubtitle(title, subtitle, m.Layout.InnerWidth)
}

func (m App) loadingView(title string) string {
	content := m.header(title) + m.spinner.View() + " " + m.loading
	return BuildTwoBoxView(content, "q: quit", m.Layout)
}
