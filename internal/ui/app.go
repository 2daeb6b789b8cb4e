package ui

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/foampro/foamsync/internal/model"
	"github.com/foampro/foamsync/internal/prefs"
	"github.com/foampro/foamsync/internal/state"
)

// View represents the current active view.
type View int

const (
	ViewJobs View = iota
	ViewLogs
)

// Syncer moves company state between the client and the remote store.
type Syncer interface {
	Push(ctx context.Context) error
	Pull(ctx context.Context) error
}

// Lifecycle performs job status transitions.
type Lifecycle interface {
	LoadForEditing(id string) error
	ConfirmWorkOrder(results model.CalculationResults) (model.EstimateRecord, error)
	Invoice(results model.CalculationResults) (model.EstimateRecord, error)
	ApplyActuals(id string) error
	MarkPaid(ctx context.Context, id string, confirmed bool) (model.EstimateRecord, error)
	Archive(id string) error
	Delete(id string, confirmed bool) error
	StartJob(id string) error
}

// Options configures the UI.
type Options struct {
	Context   context.Context
	Store     *state.Store
	Sync      Syncer
	Jobs      Lifecycle
	LogPath   string
	ThemeName string
	PrefsPath string
	Tick      time.Duration
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx       context.Context
	store     *state.Store
	sync      Syncer
	jobs      Lifecycle
	logPath   string
	prefsPath string
	tick      time.Duration
	keys      keyMap

	// editing serializes commands that bind the shared estimate form.
	editing *sync.Mutex

	// UI state
	theme       Theme
	currentView View
	width       int
	height      int
	ready       bool

	// Data state
	snapshot    state.State
	lastUpdated time.Time

	// Jobs state
	selectedRow int
	filter      JobFilter

	// Log state
	logViewport viewport.Model
	logState    logState

	// Overlays
	showHelp bool
	modal    Modal

	// Result of the last key-driven action
	lastAction string
	lastErr    error
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	tick := opts.Tick
	if tick <= 0 {
		tick = DefaultUIInterval
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	m := Model{
		ctx:         ctx,
		store:       opts.Store,
		sync:        opts.Sync,
		jobs:        opts.Jobs,
		logPath:     opts.LogPath,
		prefsPath:   prefsPath,
		tick:        tick,
		keys:        defaultKeyMap(),
		editing:     &sync.Mutex{},
		theme:       GetTheme(opts.ThemeName),
		currentView: ViewJobs,
		logState:    newLogState(),
	}
	if m.store != nil {
		m.snapshot = m.store.Snapshot()
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tickCmd(m.tick)}
	if m.store != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.store))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.logViewport = viewport.New(msg.Width, m.contentHeight())
		}
		m.ready = true
		m.resizeLogViewport()
		return m, nil

	case tickMsg:
		return m.handleTick()

	case snapshotMsg:
		m.snapshot = state.State(msg)
		m.lastUpdated = time.Now()
		m.clampSelection()
		return m, nil

	case logsMsg:
		m.handleLogs(msg)
		return m, nil

	case actionDoneMsg:
		m.lastAction = msg.label
		m.lastErr = msg.err
		if m.store != nil {
			return m, fetchSnapshotCmd(m.store)
		}
		return m, nil
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	if m.modal != nil {
		return m.modal.View(m.theme, m.width, m.height)
	}
	return m.renderMain()
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}

	if m.modal != nil {
		next, cmd, done := m.modal.Update(msg, m.keys)
		if done {
			m.modal = nil
		} else {
			m.modal = next
		}
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil
	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		if m.prefsPath != "" {
			name := m.theme.Name
			_ = prefs.Update(m.prefsPath, func(p *prefs.Prefs) { p.Theme = name })
		}
		return m, nil
	case key.Matches(msg, m.keys.Escape), key.Matches(msg, m.keys.ViewJobs):
		m.currentView = ViewJobs
		return m, nil
	case key.Matches(msg, m.keys.ViewLogs):
		m.currentView = ViewLogs
		return m, m.refreshLogs()
	case key.Matches(msg, m.keys.Push):
		return m, m.pushCmd()
	case key.Matches(msg, m.keys.Pull):
		return m, m.pullCmd()
	}

	switch m.currentView {
	case ViewLogs:
		return m.handleLogsKey(msg)
	default:
		return m.handleJobsKey(msg)
	}
}

// handleTick processes the polling tick.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	if m.store != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.store))
	}
	if m.currentView == ViewLogs && m.logState.follow {
		if cmd := m.refreshLogs(); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	cmds = append(cmds, tickCmd(m.tick))
	return m, tea.Batch(cmds...)
}

// renderMain renders header, command bar, content and status line.
func (m Model) renderMain() string {
	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderCommandBar())
	b.WriteString("\n")
	b.WriteString(m.renderContent())
	b.WriteString("\n")
	b.WriteString(m.renderStatusLine())
	return b.String()
}

func (m Model) renderContent() string {
	switch m.currentView {
	case ViewLogs:
		return m.renderLogs()
	default:
		return m.renderJobs()
	}
}

// contentHeight is the space left after header, command bar and status line.
func (m Model) contentHeight() int {
	return max(m.height-3, 3)
}

// Messages

type tickMsg time.Time

type snapshotMsg state.State

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchSnapshotCmd(store *state.Store) tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg(store.Snapshot())
	}
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(m.ctx))
	_, err := p.Run()
	return err
}
