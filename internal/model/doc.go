// Package model defines the company data set shared by the office and field
// crews: estimates, warehouse stock, equipment, customers, and the session
// that scopes them.
//
// The JSON field names match the documents held by the remote store, so a
// value can round-trip between this client and existing company data.
// AppData embeds EstimateForm, which flattens the in-progress form into the
// top-level document.
//
// Values in this package are plain data. Copies that must not alias each
// other go through the Clone methods; state equality goes through
// Fingerprint.
package model
