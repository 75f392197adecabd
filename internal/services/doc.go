// Package services defines shared error markers and context helpers consumed by
// the normalizer, renderer, and sync engine.
//
// Key responsibilities:
//   - Structured error markers plus the Wrap helper so the CLI can classify a
//     fatal abort (invalid input, missing reference, configuration, remote
//     store) without string matching.
//   - Context helpers that stamp the workflow phase and remote table name for
//     logging.
package services
