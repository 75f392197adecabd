// Package logging assembles structured slog loggers used across tapegen.
//
// It owns the console and JSON handlers, maps level names, and stamps every
// record with the run identifier of the current invocation. Component loggers
// carry a "component" attribute that the console handler renders as a prefix,
// and the WarnWithContext/ErrorWithContext helpers keep warning lines shaped
// as cause, impact, and next step.
//
// Logs go to stderr by default so stdout stays free for previews and summaries.
package logging
