// Package workflow runs one tapegen invocation end to end.
//
// A Runner reads the spreadsheet, parses the hint row, normalizes rows into
// records with synthesized barcodes, renders the tape image when an output
// path is given, and posts new records to the remote store when asked. Every
// phase is tagged on the context so log lines and errors carry it. The
// reference cache is built once per run and shared by the normalizer and the
// sync engine.
package workflow
