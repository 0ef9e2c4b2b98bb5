package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"cip/internal/processor"
)

type Model struct {
	updates     <-chan processor.ProgressUpdate
	started     time.Time
	width       int
	total       int
	processed   int
	skipped     int
	bytesBefore int64
	bytesAfter  int64
	current     string
	quitting    bool
	cancel      func()
}

type doneMsg struct{}

type updateMsg processor.ProgressUpdate

// NewModel renders the updates read from the channel. cancel is called
// when the user interrupts the program with ctrl+c.
func NewModel(updates <-chan processor.ProgressUpdate, cancel func()) Model {
	return Model{updates: updates, started: time.Now(), cancel: cancel}
}

func (m Model) Init() tea.Cmd {
	return listenForUpdates(m.updates)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case updateMsg:
		m.total += msg.TotalDelta
		m.processed += msg.ProcessedDelta
		m.skipped += msg.SkippedDelta
		m.bytesBefore += msg.BytesBeforeDelta
		m.bytesAfter += msg.BytesAfterDelta
		if msg.Current != "" {
			m.current = msg.Current
		}
		if msg.Line != "" {
			return m, tea.Sequence(tea.Println(msg.Line), listenForUpdates(m.updates))
		}
		return m, listenForUpdates(m.updates)
	case doneMsg:
		m.quitting = true
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.String() != "ctrl+c" {
			return m, nil
		}
		if m.cancel != nil {
			m.cancel()
		}
		m.quitting = true
		return m, tea.Quit
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	default:
		return m, nil
	}
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	barWidth := 40
	if m.width > 0 {
		barWidth = int(math.Min(60, float64(m.width-10)))
		if barWidth < 20 {
			barWidth = 20
		}
	}

	done := m.processed + m.skipped
	ratio := 0.0
	if m.total > 0 {
		ratio = float64(done) / float64(m.total)
		if ratio > 1 {
			ratio = 1
		}
	}

	bar := renderBar(barWidth, ratio)
	elapsed := time.Since(m.started).Round(time.Millisecond)

	lines := []string{
		titleStyle.Render("cip"),
		labelStyle.Render(fmt.Sprintf("Files: %d/%d", done, m.total)) + dimStyle.Render(fmt.Sprintf("  skipped:%d", m.skipped)),
		labelStyle.Render(fmt.Sprintf("Bytes: %s -> %s", HumanBytes(m.bytesBefore), HumanBytes(m.bytesAfter))),
		dimStyle.Render(fmt.Sprintf("Current: %s", m.current)),
		dimStyle.Render(fmt.Sprintf("Elapsed: %s", elapsed)),
		barStyle.Render(bar),
	}

	return strings.Join(lines, "\n")
}

func listenForUpdates(updates <-chan processor.ProgressUpdate) tea.Cmd {
	return func() tea.Msg {
		update, ok := <-updates
		if !ok {
			return doneMsg{}
		}
		return updateMsg(update)
	}
}

func renderBar(width int, ratio float64) string {
	filled := int(math.Round(ratio * float64(width)))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return "[" + strings.Repeat("=", filled) + strings.Repeat(" ", width-filled) + "]"
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorAccent)
	labelStyle = lipgloss.NewStyle().Foreground(ColorInk)
	barStyle   = lipgloss.NewStyle().Foreground(ColorSuccess)
	dimStyle   = lipgloss.NewStyle().Foreground(ColorDim)
)
