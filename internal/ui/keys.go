package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all keyboard bindings for the application.
type keyMap struct {
	// Global
	Quit       key.Binding
	Help       key.Binding
	CycleTheme key.Binding
	Escape     key.Binding

	// View switching
	ViewJobs key.Binding
	ViewLogs key.Binding

	// Sync
	Push key.Binding
	Pull key.Binding

	// Job actions
	CycleFilter key.Binding
	WorkOrder   key.Binding
	Invoice     key.Binding
	Actuals     key.Binding
	MarkPaid    key.Binding
	Delete      key.Binding
	Archive     key.Binding
	StartJob    key.Binding

	// Navigation
	Up     key.Binding
	Down   key.Binding
	Top    key.Binding
	Bottom key.Binding

	// Logs actions
	ToggleFollow key.Binding
	CycleLevel   key.Binding

	// Modal
	Confirm key.Binding
	Cancel  key.Binding
}

// defaultKeyMap returns the default key bindings.
func defaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "Quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?", "h"),
			key.WithHelp("?", "Toggle help"),
		),
		CycleTheme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "Cycle theme"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "Back to jobs"),
		),

		ViewJobs: key.NewBinding(
			key.WithKeys("J"),
			key.WithHelp("J", "Jobs view"),
		),
		ViewLogs: key.NewBinding(
			key.WithKeys("l"),
			key.WithHelp("l", "Client log"),
		),

		Push: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "Push now"),
		),
		Pull: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "Pull from server"),
		),

		CycleFilter: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "Cycle status filter"),
		),
		WorkOrder: key.NewBinding(
			key.WithKeys("w"),
			key.WithHelp("w", "Confirm work order"),
		),
		Invoice: key.NewBinding(
			key.WithKeys("i"),
			key.WithHelp("i", "Invoice"),
		),
		Actuals: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "Apply field actuals"),
		),
		MarkPaid: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "Mark paid"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "Delete job"),
		),
		Archive: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "Archive job"),
		),
		StartJob: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "Start job"),
		),

		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/up", "Move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/down", "Move down"),
		),
		Top: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "Go to top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "Go to bottom"),
		),

		ToggleFollow: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("Space", "Toggle follow mode"),
		),
		CycleLevel: key.NewBinding(
			key.WithKeys("v"),
			key.WithHelp("v", "Cycle log level"),
		),

		Confirm: key.NewBinding(
			key.WithKeys("y", "enter"),
			key.WithHelp("y", "Confirm"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("n", "esc"),
			key.WithHelp("n", "Cancel"),
		),
	}
}

// ShortHelp returns key bindings for the short help view.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.ViewJobs, k.ViewLogs, k.Escape},
		{k.Up, k.Down, k.Top, k.Bottom},
		{k.CycleFilter, k.WorkOrder, k.Invoice, k.Actuals, k.MarkPaid, k.Delete, k.Archive, k.StartJob},
		{k.Push, k.Pull},
		{k.ToggleFollow, k.CycleLevel},
		{k.CycleTheme, k.Help, k.Quit},
	}
}
