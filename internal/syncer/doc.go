// Package syncer keeps the remote store in step with the local state store.
//
// # Startup
//
// Start restores the session cached on the device. Without one the client
// waits for a login and makes no network call. With one it runs
// cloud-first initialization: the remote document is merged over the
// default state and becomes both the current state and the last-synced
// snapshot. When the pull fails the device backup is loaded instead, and
// when there is no backup the defaults are. Either fallback is recorded as
// the baseline, so it is only pushed once the user actually edits it. An
// empty default state must never overwrite the company's remote data.
//
// # Auto-sync
//
// The engine subscribes to the store and compares fingerprints of the
// application data. Every new fingerprint is written to the device backup.
// For admin sessions a fingerprint that differs from the last-synced one
// sets status pending and (re)arms a debounce timer. Only the trailing
// edit of a burst reaches the network, and the payload is always the full
// current state. Crew sessions stop after the backup: crew devices never
// push on their own.
//
// Status moves through
//
//	idle -> pending -> syncing -> success -> idle
//	                          \-> error
//
// A failed push is not retried until the data changes again. Edits made
// while a push is in flight are picked up by a new cycle once it returns.
//
// # Manual operations
//
// Push and Pull bypass the debounce and report through notifications.
// Reconcile is the silent push used by the job lifecycle after an
// optimistic commit. All remote traffic goes through one mutex, so at most
// one request is in flight.
//
// The remote write is unconditional. Two devices editing at once overwrite
// each other; there is no version check.
package syncer
