package upsert

import (
	"context"
	"fmt"
	"log/slog"

	"tapegen/internal/appsheet"
	"tapegen/internal/logging"
	"tapegen/internal/records"
	"tapegen/internal/services"
)

// Store is the remote side of a sync; the reference cache satisfies it.
type Store interface {
	LoadTable(ctx context.Context, table string) ([]appsheet.Row, error)
	AddEntries(ctx context.Context, table string, rows []appsheet.Row) bool
}

// Preparer applies hint directives to a record before insert.
type Preparer interface {
	ApplyHints(ctx context.Context, rec records.Record, hints records.HintRow) (records.Record, error)
}

// Result summarizes a sync.
type Result struct {
	Skipped  int
	Inserted int
	// Rows holds the payload that was posted.
	Rows []appsheet.Row
}

// Engine posts records whose BarCode is not yet present remotely.
type Engine struct {
	store    Store
	preparer Preparer
	lock     *SyncLock
	logger   *slog.Logger
}

// NewEngine constructs a sync engine. lock may be nil.
func NewEngine(store Store, preparer Preparer, lock *SyncLock, logger *slog.Logger) *Engine {
	if lock == nil {
		lock = NewSyncLock("")
	}
	return &Engine{
		store:    store,
		preparer: preparer,
		lock:     lock,
		logger:   logging.NewComponentLogger(logger, "upsert"),
	}
}

// UpsertNew inserts the records of batch missing from table in one request.
// Records already present, by BarCode, are skipped, as are repeats within the
// batch. If any record fails hint resolution, or table cannot be read, nothing
// is inserted.
func (e *Engine) UpsertNew(ctx context.Context, batch []records.Record, hints records.HintRow, table string) (Result, error) {
	ctx = services.WithTable(ctx, table)
	logger := logging.WithContext(ctx, e.logger)

	if err := e.lock.Acquire(); err != nil {
		return Result{}, err
	}
	defer func() {
		if err := e.lock.Release(); err != nil {
			logging.WarnWithContext(logger, "sync lock release failed", "sync_lock_release_failed",
				logging.Error(err),
				logging.String("lock", e.lock.Path()),
			)
		}
	}()

	var result Result
	if len(batch) == 0 {
		logger.Info("empty batch, nothing to post")
		return result, nil
	}
	existing, err := e.existingBarcodes(ctx, table)
	if err != nil {
		return Result{}, err
	}

	seen := make(map[string]struct{}, len(batch))
	pending := make([]appsheet.Row, 0, len(batch))
	for _, rec := range batch {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		barcode := rec.BarCode()
		if barcode == "" {
			return Result{}, services.Wrap(services.ErrValidation, "upsert", "prepare",
				fmt.Sprintf("line %d: record has no %s", rec.Line, records.ColumnBarCode), nil)
		}
		if _, dup := seen[barcode]; dup {
			result.Skipped++
			logger.Info("duplicate barcode in input skipped", logging.String(logging.FieldBarCode, barcode), logging.Int("line", rec.Line))
			continue
		}
		seen[barcode] = struct{}{}

		if _, exists := existing[barcode]; exists {
			result.Skipped++
			logger.Debug("barcode already present", logging.String(logging.FieldBarCode, barcode))
			continue
		}

		prepared, err := e.preparer.ApplyHints(ctx, rec, hints)
		if err != nil {
			return Result{}, err
		}
		pending = append(pending, prepared.AppSheetRow())
	}

	if len(pending) == 0 {
		logger.Info("nothing new to post", logging.Int("skipped", result.Skipped))
		return result, nil
	}
	if !e.store.AddEntries(ctx, table, pending) {
		return Result{}, services.Wrap(services.ErrExternal, "upsert", "add rows",
			fmt.Sprintf("%d rows rejected by %s", len(pending), table), nil)
	}
	result.Inserted = len(pending)
	result.Rows = pending
	logger.Info("posted new rows",
		logging.Int("inserted", result.Inserted),
		logging.Int("skipped", result.Skipped),
	)
	return result, nil
}

func (e *Engine) existingBarcodes(ctx context.Context, table string) (map[string]struct{}, error) {
	rows, err := e.store.LoadTable(ctx, table)
	if err != nil {
		return nil, services.Wrap(services.ErrExternal, "upsert", "read table",
			fmt.Sprintf("cannot check %s for existing barcodes", table), err)
	}
	existing := make(map[string]struct{}, len(rows))
	for _, row := range rows {
		if barcode, ok := row.Value(records.ColumnBarCode); ok {
			existing[barcode] = struct{}{}
		}
	}
	return existing, nil
}
