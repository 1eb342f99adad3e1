package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// ConnectFunc checks that the picture server answers
type ConnectFunc func(ctx context.Context) error

// SplashModel is the startup screen shown while the server is pinged
type SplashModel struct {
	width     int
	height    int
	serverURL string
	connect   ConnectFunc
	timeout   time.Duration
	spinner   spinner.Model
	err       error
	done      bool
	cancelled bool
}

type connectResultMsg struct {
	err error
}

// NewSplashModel creates the splash screen for serverURL
func NewSplashModel(serverURL string, connect ConnectFunc, timeout time.Duration) SplashModel {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return SplashModel{
		width:     DefaultWidth,
		height:    DefaultHeight,
		serverURL: serverURL,
		connect:   connect,
		timeout:   timeout,
		spinner:   NewAppSpinner(),
	}
}

func (m SplashModel) ping() tea.Cmd {
	connect, timeout := m.connect, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return connectResultMsg{err: connect(ctx)}
	}
}

func (m SplashModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.ping())
}

func (m SplashModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case connectResultMsg:
		m.done = true
		m.err = msg.err
		return m, tea.Quit

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			m.done = true
			m.cancelled = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m SplashModel) View() string {
	if m.done {
		return ""
	}

	layout := NewLayout(m.width, m.height)
	height := layout.ViewportHeight - 4
	if height < 5 {
		height = 5
	}

	lines := []string{
		RenderTitle("picview"),
		"",
		m.spinner.View() + " " + RenderNormal("Connecting to "+m.serverURL),
	}

	var b strings.Builder
	top := (height - len(lines)) / 2
	b.WriteString(strings.Repeat("\n", top))
	for _, line := range lines {
		b.WriteString(CenterText(line, layout.InnerWidth))
		b.WriteString("\n")
	}

	return BorderStyle.
		Width(layout.InnerWidth).
		Height(height).
		Render(b.String())
}

// Err returns the ping error, or ErrSpinnerCancelled when the user left
func (m SplashModel) Err() error {
	if m.cancelled {
		return ErrSpinnerCancelled
	}
	return m.err
}

// ShowSplash pings the server behind a splash screen and returns the
// result of the ping
func ShowSplash(serverURL string, connect ConnectFunc, timeout time.Duration) error {
	p := tea.NewProgram(NewSplashModel(serverURL, connect, timeout), tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("splash error: %w", err)
	}
	return final.(SplashModel).Err()
}
