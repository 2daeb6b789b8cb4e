// Package app is the composition root of the client.
//
// New loads the configuration, opens the log file under the data directory
// and wires the components:
//
//	config.Load ──> logrus (file) ──> cache.Open (badger)
//	                               ──> gateway.NewClient
//	                               ──> state.NewStore ──> notify.New
//	                               ──> syncer.New ──> jobs.New
//
// Start recovers a cached session and runs cloud-first initialization. A
// failed cloud load is logged and the client continues on the local backup
// or defaults. For crew sessions with crew_refresh set, Start also launches
// the crew refresher: crew devices never push, so they pull on a timer
// instead, doubling the wait after each failure up to five minutes.
//
// Run does all of that and then hands the terminal to the dashboard. The
// command-line subcommands use New and Start directly.
package app
