// Package ui provides the terminal dashboard for foamsync.
//
// The dashboard is a Bubble Tea program that renders the shared state store.
// It never mutates state directly: every key that changes a job goes through
// the Lifecycle interface (the jobs engine) and every sync key through the
// Syncer interface, so the UI sees the same optimistic updates and
// notifications as any other caller.
//
// # Views
//
//   - Jobs: saved estimates filtered by status, with a detail pane on wide
//     terminals. Keys act on the highlighted job.
//   - Client log: the tail of the client's own log file, parsed by logtail,
//     with follow mode and a minimum level.
//
// # Refresh
//
// A tick re-reads the store snapshot once per interval. Key actions run as
// commands off the update loop and report back with actionDoneMsg, which
// triggers an immediate snapshot fetch. Destructive actions (mark paid,
// delete) first open a confirmation modal.
//
// # Themes
//
// Three palettes are built in (Nightfox, Kanagawa, Slate). T cycles them and
// persists the choice through the prefs package.
package ui
