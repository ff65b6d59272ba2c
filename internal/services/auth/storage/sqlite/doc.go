// Package sqlite provides SQLite-backed token and account persistence.
//
// It is the default on-disk record store used by the auth server. The
// find-or-create operations lean on SQLite's single-writer model: each is a
// single INSERT statement guarded by a unique index or an existence
// subquery, so concurrent callers converge on one record without
// read-then-write races.
package sqlite
