// Package jobs implements the job lifecycle: Draft, Work Order, Invoiced and
// Paid, with Archived as a side exit.
//
// Every transition except mark-paid commits locally first, as one store
// dispatch, and then propagates to the remote store in a background task.
// A background failure never reverts the local commit; it flips the sync
// status to error and raises a notification. Mark-paid waits for the remote
// store, which computes the job's financials, and changes nothing locally
// when that call fails.
//
// Confirming a work order deducts the job's materials from the warehouse
// without a floor and points each assigned tool's lastSeen at the job.
// Receiving a purchase order adds stock back.
package jobs
