package refcache

import (
	"context"
	"log/slog"
	"strings"

	"tapegen/internal/appsheet"
	"tapegen/internal/logging"
	"tapegen/internal/services"
)

const (
	// ComponentCodesTable lists short codes keyed by configuration row.
	ComponentCodesTable = "ComponentCodes"
	// ComponentConfigurationTable names each component category.
	ComponentConfigurationTable = "ComponentConfiguration"
)

// Store is the remote table API the cache reads through.
type Store interface {
	Find(ctx context.Context, table string) ([]appsheet.Row, error)
	Add(ctx context.Context, table string, rows []appsheet.Row) error
}

// Cache memoizes remote tables for the lifetime of one run. It is not safe
// for concurrent use.
type Cache struct {
	store   Store
	logger  *slog.Logger
	tables  map[string][]appsheet.Row
	codes   map[string]string
	fetches int
}

// New constructs an empty cache over store.
func New(store Store, logger *slog.Logger) *Cache {
	return &Cache{
		store:  store,
		logger: logging.NewComponentLogger(logger, "refcache"),
		tables: make(map[string][]appsheet.Row),
	}
}

// Table returns every row of name, fetching it on first use. A failed fetch is
// logged and yields an empty collection; it is not cached, so the next call
// retries.
func (c *Cache) Table(ctx context.Context, name string) []appsheet.Row {
	rows, err := c.LoadTable(ctx, name)
	if err != nil {
		logger := logging.WithContext(services.WithTable(ctx, name), c.logger)
		logging.WarnWithContext(logger, "remote table unavailable", "refcache_fetch_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check the table name and the AppSheet credentials"),
			logging.String(logging.FieldImpact, "lookups against this table find nothing"),
		)
		return []appsheet.Row{}
	}
	return rows
}

// LoadTable is Table for callers that must tell an empty table from one that
// could not be read. Failures are returned, not cached.
func (c *Cache) LoadTable(ctx context.Context, name string) ([]appsheet.Row, error) {
	if rows, ok := c.tables[name]; ok {
		return rows, nil
	}
	ctx = services.WithTable(ctx, name)

	c.fetches++
	rows, err := c.store.Find(ctx, name)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []appsheet.Row{}
	}
	c.tables[name] = rows
	logging.WithContext(ctx, c.logger).Debug("fetched table", logging.Int("rows", len(rows)))
	return rows, nil
}

// Item returns the first row of table satisfying match.
func (c *Cache) Item(ctx context.Context, table string, match func(appsheet.Row) bool) (appsheet.Row, bool) {
	for _, row := range c.Table(ctx, table) {
		if match(row) {
			return row, true
		}
	}
	return nil, false
}

// ComponentCodes returns the category name to component code mapping. It is
// computed once per cache, even when empty.
func (c *Cache) ComponentCodes(ctx context.Context) map[string]string {
	if c.codes != nil {
		return c.codes
	}
	codes := c.Table(ctx, ComponentCodesTable)
	configs := c.Table(ctx, ComponentConfigurationTable)

	names := make(map[string]string, len(configs))
	for _, cfg := range configs {
		id := cfg.RowID()
		if id == "" {
			continue
		}
		if _, seen := names[id]; seen {
			continue
		}
		if name, ok := cfg.Value("Name"); ok {
			names[id] = name
		}
	}

	mapping := make(map[string]string, len(codes))
	for _, entry := range codes {
		ref, ok := entry.Value("Configuration")
		if !ok {
			continue
		}
		name, ok := names[strings.TrimSpace(ref)]
		if !ok {
			continue
		}
		code, ok := entry.Value("Code")
		if !ok {
			continue
		}
		mapping[name] = code
	}
	c.codes = mapping
	c.logger.Debug("component codes ready", logging.Int("categories", len(mapping)))
	return mapping
}

// AddEntries inserts rows into table in one batch. Failures are logged and
// reported as false.
func (c *Cache) AddEntries(ctx context.Context, table string, rows []appsheet.Row) bool {
	ctx = services.WithTable(ctx, table)
	logger := logging.WithContext(ctx, c.logger)
	if err := c.store.Add(ctx, table, rows); err != nil {
		logging.ErrorWithContext(logger, "insert rejected", "refcache_add_failed",
			logging.Error(err),
			logging.Int("rows", len(rows)),
			logging.String(logging.FieldErrorHint, "inspect the response body for the rejected column"),
		)
		return false
	}
	logger.Info("rows inserted", logging.Int("rows", len(rows)))
	return true
}

// Fetches reports how many remote Find calls the cache issued.
func (c *Cache) Fetches() int {
	return c.fetches
}
