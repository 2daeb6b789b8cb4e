package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"

	"github.com/foampro/foamsync/internal/logtail"
)

// logState holds the client log view state.
type logState struct {
	follow  bool
	level   logtail.Level
	entries []logtail.Entry
	err     error
}

func newLogState() logState {
	return logState{follow: true, level: logrus.InfoLevel}
}

// levelCycle is the order the level filter steps through.
var levelCycle = []logtail.Level{logrus.InfoLevel, logrus.DebugLevel, logrus.WarnLevel, logrus.ErrorLevel}

func nextLevel(current logtail.Level) logtail.Level {
	for i, l := range levelCycle {
		if l == current {
			return levelCycle[(i+1)%len(levelCycle)]
		}
	}
	return levelCycle[0]
}

type logsMsg struct {
	entries []logtail.Entry
	err     error
}

// refreshLogs reads the tail of the client log file.
func (m Model) refreshLogs() tea.Cmd {
	if m.logPath == "" {
		return nil
	}
	path, level := m.logPath, m.logState.level
	return func() tea.Msg {
		entries, err := logtail.Tail(path, LogFetchLimit, level)
		return logsMsg{entries: entries, err: err}
	}
}

func (m *Model) handleLogs(msg logsMsg) {
	m.logState.err = msg.err
	if msg.err != nil {
		return
	}
	m.logState.entries = msg.entries
	m.updateLogViewport()
}

func (m *Model) resizeLogViewport() {
	m.logViewport.Width = max(m.width-2, 1)
	m.logViewport.Height = max(m.contentHeight()-2, 1)
	m.updateLogViewport()
}

func (m *Model) updateLogViewport() {
	lines := make([]string, 0, len(m.logState.entries))
	for _, e := range m.logState.entries {
		lines = append(lines, m.formatLogEntry(e))
	}
	m.logViewport.SetContent(strings.Join(lines, "\n"))
	if m.logState.follow {
		m.logViewport.GotoBottom()
	}
}

// formatLogEntry renders "15:04:05 LEVEL [component] message key=value".
func (m Model) formatLogEntry(e logtail.Entry) string {
	styles := m.theme.Styles()

	ts := "--:--:--"
	if !e.Time.IsZero() {
		ts = e.Time.Local().Format("15:04:05")
	}
	levelColor := m.theme.Muted
	switch {
	case e.Level <= logrus.ErrorLevel:
		levelColor = m.theme.Danger
	case e.Level == logrus.WarnLevel:
		levelColor = m.theme.Warning
	case e.Level == logrus.InfoLevel:
		levelColor = m.theme.Info
	}
	levelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(levelColor)).Width(6)

	var b strings.Builder
	b.WriteString(styles.FaintText.Render(ts))
	b.WriteString(" ")
	b.WriteString(levelStyle.Render(strings.ToUpper(e.Level.String())))
	if e.Component != "" {
		b.WriteString(styles.AccentText.Render("[" + e.Component + "] "))
	}
	b.WriteString(styles.Text.Render(e.Message))
	for _, k := range e.FieldKeys() {
		b.WriteString(" ")
		b.WriteString(styles.MutedText.Render(k + "=" + e.Field(k)))
	}
	return b.String()
}

// handleLogsKey processes keyboard input for the log view.
func (m Model) handleLogsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.ToggleFollow):
		m.logState.follow = !m.logState.follow
		if m.logState.follow {
			m.logViewport.GotoBottom()
		}
		return m, nil
	case key.Matches(msg, m.keys.CycleLevel):
		m.logState.level = nextLevel(m.logState.level)
		return m, m.refreshLogs()
	case key.Matches(msg, m.keys.Top):
		m.logState.follow = false
		m.logViewport.GotoTop()
		return m, nil
	case key.Matches(msg, m.keys.Bottom):
		m.logViewport.GotoBottom()
		return m, nil
	}

	var cmd tea.Cmd
	m.logViewport, cmd = m.logViewport.Update(msg)
	if !m.logViewport.AtBottom() {
		m.logState.follow = false
	}
	return m, cmd
}

// renderLogs renders the log viewport in a titled box.
func (m Model) renderLogs() string {
	title := "Client Log (" + strings.ToUpper(m.logState.level.String()) + "+)"
	if !m.logState.follow {
		title += " paused"
	}

	content := m.logViewport.View()
	styles := m.theme.Styles()
	switch {
	case m.logPath == "":
		content = styles.MutedText.Render("Logging to stderr; no log file to show")
	case m.logState.err != nil:
		content = styles.DangerText.Render("Read log: " + m.logState.err.Error())
	case len(m.logState.entries) == 0:
		content = styles.MutedText.Render("No log entries yet")
	}
	return m.renderTitledBox(title, content, m.width, m.contentHeight(), true)
}
