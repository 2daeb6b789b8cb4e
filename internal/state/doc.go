// Package state holds the single in-memory source of truth for the client:
// the active session, the company's application data, and UI/sync status.
//
// # Actions
//
// Nothing outside this package mutates State. Callers describe a transition
// with one of the named Action types and hand it to Store.Dispatch:
//
//	store.Dispatch(state.Batch{
//		state.UpsertEstimate{Record: rec},
//		state.SetEditingEstimate{ID: rec.ID},
//	})
//
// Action has an unexported method, so the set of transitions is closed and
// every one is total: an id that does not match anything is a no-op, never
// an error. Batch groups several actions into a single dispatch so a
// multi-part change (stock deduction plus record upsert plus equipment
// update) is never visible half-applied.
//
// # Concurrency Model
//
// Dispatch takes the write lock, applies the action to a deep copy of the
// current state and swaps the copy in. Snapshot takes the read lock and
// returns another deep copy, so a caller can keep or modify what it reads
// without affecting the store.
//
// Subscribers receive a Change after every dispatch on a buffered channel
// of size one. Delivery never blocks the dispatcher; when a subscriber
// falls behind, older announcements are replaced by the newest one. A
// subscriber therefore must read Snapshot rather than rely on seeing every
// intermediate state.
//
// # Zero Value
//
// A zero Store behaves like NewStore(): the first access installs
// Initial().
package state
