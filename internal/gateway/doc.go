// Package gateway is the client for the remote store, the company's system
// of record.
//
// Every operation is a POST of a JSON action envelope to one endpoint:
//
//	{"action": "SYNC_UP", "payload": {"state": {...}, "spreadsheetId": "..."}}
//
// and every response is normalized to
//
//	{"status": "success" | "error", "data": ..., "message": "..."}
//
// Transport failures, HTTP errors and undecodable bodies are retried up to
// Options.Retries additional times with a fixed Options.RetryDelay between
// attempts. A well-formed "error" envelope is the remote store's answer and
// is returned at once as *RemoteError.
//
// Typed helpers (PullCompanyState, MarkPaid, CreateFieldLog, ...) wrap the
// envelope so callers deal in model types. They satisfy the narrow Remote
// interfaces declared by the syncer and jobs packages.
package gateway
