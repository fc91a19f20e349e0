// Package tui provides the Bubble Tea playback surface that drives a watch
// session from the keyboard.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fakeyudi/reelwatch/internal/tracker"
)

// ── Styles ────────────

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 2)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("33")).
			Bold(true)

	activeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Bold(true)
	pausedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	doneStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Bold(true)

	timeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("178"))
)

// ── Keys ─────────────────

type keyMap struct {
	Toggle key.Binding
	Stop   key.Binding
}

func (k keyMap) ShortHelp() []key.Binding  { return []key.Binding{k.Toggle, k.Stop} }
func (k keyMap) FullHelp() [][]key.Binding { return [][]key.Binding{k.ShortHelp()} }

var keys = keyMap{
	Toggle: key.NewBinding(key.WithKeys(" ", "space", "p"), key.WithHelp("space", "pause/resume")),
	Stop:   key.NewBinding(key.WithKeys("q", "ctrl+c", "esc"), key.WithHelp("q", "stop")),
}

// ── Model ────────────────────

// Session is the part of a tracker the player drives.
type Session interface {
	Pause()
	Resume()
	Stop()
	IsTracking() bool
	TotalWatchTime() time.Duration
	Snapshot() tracker.Snapshot
}

type frameMsg time.Time

const frameInterval = 250 * time.Millisecond

// Model is the root Bubble Tea model for the player.
type Model struct {
	session  Session
	title    string
	duration time.Duration
	bar      progress.Model
	help     help.Model
	width    int
	finished bool
}

// New creates a player for an already started session. duration may be zero
// when the content length is unknown.
func New(s Session, title string, duration time.Duration) Model {
	return Model{
		session:  s,
		title:    title,
		duration: duration,
		bar:      progress.New(progress.WithDefaultGradient()),
		help:     help.New(),
	}
}

// ── Bubble Tea interface ───────────────

func (m Model) Init() tea.Cmd { return frame() }

func frame() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg { return frameMsg(t) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Stop):
			return m.finish()
		case key.Matches(msg, keys.Toggle):
			if m.session.IsTracking() {
				m.session.Pause()
			} else {
				m.session.Resume()
			}
		}
		return m, nil

	case frameMsg:
		// Playback ends on its own once the whole item has been watched.
		if m.duration > 0 && m.session.TotalWatchTime() >= m.duration {
			return m.finish()
		}
		return m, frame()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.bar.Width = max(10, msg.Width-8)
		m.help.Width = msg.Width
		return m, nil
	}
	return m, nil
}

func (m Model) finish() (tea.Model, tea.Cmd) {
	m.session.Stop()
	m.finished = true
	return m, tea.Quit
}

func (m Model) View() string {
	snap := m.session.Snapshot()
	watched := m.session.TotalWatchTime()

	var sb strings.Builder
	sb.WriteString(titleStyle.Render(fmt.Sprintf("  reelwatch  %s  (%s)", m.title, snap.Kind)))
	sb.WriteString("\n\n")

	state := pausedStyle.Render("❚❚ paused")
	switch snap.State {
	case tracker.StateActive:
		state = activeStyle.Render("▶ playing")
	case tracker.StateStopped:
		state = doneStyle.Render("■ stopped")
	}
	sb.WriteString("  " + state + "\n\n")

	row := func(label, value string) {
		sb.WriteString(labelStyle.Render(fmt.Sprintf("  %-12s", label)) + "  " + value + "\n")
	}
	row("Watched", timeStyle.Render(watched.Round(time.Second).String()))
	if m.duration > 0 {
		row("Duration", m.duration.Round(time.Second).String())
		row("Completion", fmt.Sprintf("%.2f%%", tracker.CompletionRate(watched, m.duration)))
	}
	row("Reported", timeStyle.Render(snap.LastFlushed.Round(time.Second).String()))
	row("Reports", fmt.Sprintf("%d", snap.Reports))

	if m.duration > 0 {
		sb.WriteString("\n  " + m.bar.ViewAs(tracker.CompletionRate(watched, m.duration)/100) + "\n")
	}
	sb.WriteString("\n  " + m.help.View(keys) + "\n")
	return sb.String()
}

// Run shows the player until the user stops playback or the content ends.
// The session is always stopped when Run returns.
func Run(s Session, title string, duration time.Duration) error {
	defer s.Stop()
	_, err := tea.NewProgram(New(s, title, duration)).Run()
	return err
}
