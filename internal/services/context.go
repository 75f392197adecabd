package services

import "context"

type contextKey string

const (
	phaseKey contextKey = "phase"
	tableKey contextKey = "table"
)

// WithPhase annotates context with the workflow phase name (read, render, sync).
func WithPhase(ctx context.Context, phase string) context.Context {
	if phase == "" {
		return ctx
	}
	return context.WithValue(ctx, phaseKey, phase)
}

// PhaseFromContext returns the phase name if present.
func PhaseFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(phaseKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithTable annotates context with the remote table being accessed.
func WithTable(ctx context.Context, table string) context.Context {
	if table == "" {
		return ctx
	}
	return context.WithValue(ctx, tableKey, table)
}

// TableFromContext returns the remote table name if present.
func TableFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(tableKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
