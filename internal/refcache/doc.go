// Package refcache memoizes remote AppSheet tables for a single run.
//
// The normalizer reads component codes through it and the sync engine uses it
// for BarCode deduplication and reference resolution. Tables are fetched on
// first use and never evicted; a failed fetch degrades to an empty table for
// that call only.
package refcache
