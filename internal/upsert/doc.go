// Package upsert posts new inventory records to the remote store.
//
// A record is new when no remote row carries its BarCode. Hint directives are
// resolved only here, against the reference cache, and the whole batch is
// sent in one Add request or not at all. A file lock keeps two invocations on
// the same host from posting the same batch concurrently.
package upsert
