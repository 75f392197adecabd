package workflow

import (
	"context"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"tapegen/internal/appsheet"
	"tapegen/internal/config"
	"tapegen/internal/logging"
	"tapegen/internal/records"
	"tapegen/internal/refcache"
	"tapegen/internal/services"
	"tapegen/internal/sheet"
	"tapegen/internal/upsert"
)

const (
	PhaseRead      = "read"
	PhaseNormalize = "normalize"
	PhaseRender    = "render"
	PhaseSync      = "sync"
)

// Request selects what a run produces.
type Request struct {
	InputPath string
	// OutputPath receives the tape image. Empty skips rendering.
	OutputPath string
	// Post inserts new records into the configured table.
	Post bool
}

// Summary reports what a run did.
type Summary struct {
	RunID      string
	InputPath  string
	Header     []string
	Hints      records.HintRow
	Records    []records.Record
	OutputPath string
	Width      int
	Height     int
	Font       string
	Sync       *upsert.Result
	// Fetches counts remote table reads issued by the reference cache.
	Fetches  int
	Duration time.Duration
}

// Option customizes a Runner.
type Option func(*Runner)

// WithStore replaces the AppSheet client built from the configuration.
func WithStore(store refcache.Store) Option {
	return func(r *Runner) {
		r.store = store
	}
}

// WithRunID sets the identifier reported in the summary.
func WithRunID(id string) Option {
	return func(r *Runner) {
		r.runID = id
	}
}

// Runner executes tapegen runs against a configuration.
type Runner struct {
	cfg    *config.Config
	logger *slog.Logger
	store  refcache.Store
	runID  string
}

// NewRunID returns a fresh run identifier.
func NewRunID() string {
	return uuid.NewString()
}

// NewRunner constructs a Runner.
func NewRunner(cfg *config.Config, logger *slog.Logger, opts ...Option) *Runner {
	if logger == nil {
		logger = logging.NewNop()
	}
	r := &Runner{
		cfg:    cfg,
		logger: logging.NewComponentLogger(logger, "workflow"),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.runID == "" {
		r.runID = NewRunID()
	}
	return r
}

// Run executes the request. On failure the summary holds whatever the
// completed phases produced.
func (r *Runner) Run(ctx context.Context, req Request) (*Summary, error) {
	started := time.Now()
	summary := &Summary{RunID: r.runID, InputPath: req.InputPath}
	defer func() {
		summary.Duration = time.Since(started)
	}()

	if strings.TrimSpace(req.InputPath) == "" {
		return summary, services.Wrap(services.ErrConfiguration, "workflow", "run", "an input spreadsheet is required", nil)
	}

	store, err := r.remoteStore()
	if err != nil {
		return summary, err
	}
	cache := refcache.New(store, r.logger)
	defer func() {
		summary.Fetches = cache.Fetches()
	}()

	readCtx := services.WithPhase(ctx, PhaseRead)
	data, hints, err := r.read(readCtx, req.InputPath)
	if err != nil {
		return summary, err
	}
	summary.Header = data.Header
	summary.Hints = hints

	normCtx := services.WithPhase(ctx, PhaseNormalize)
	normalizer := records.NewNormalizer(cache, cache, r.logger)
	recs, err := normalizer.Normalize(normCtx, data.Rows)
	if err != nil {
		return summary, err
	}
	summary.Records = recs
	logging.WithContext(normCtx, r.logger).Info("records normalized",
		logging.Int("records", len(recs)),
		logging.Int("hinted_columns", len(hints)),
	)

	if req.OutputPath != "" {
		renderCtx := services.WithPhase(ctx, PhaseRender)
		result, err := r.render(renderCtx, recs, req.OutputPath)
		if err != nil {
			return summary, err
		}
		summary.OutputPath = req.OutputPath
		summary.Width = result.width
		summary.Height = result.height
		summary.Font = result.font
	}

	if req.Post {
		syncCtx := services.WithPhase(ctx, PhaseSync)
		engine := upsert.NewEngine(cache, normalizer, upsert.NewSyncLock(r.cfg.Store.LockPath), r.logger)
		result, err := engine.UpsertNew(syncCtx, recs, hints, r.cfg.Store.Table)
		if err != nil {
			return summary, err
		}
		summary.Sync = &result
	}
	return summary, nil
}

func (r *Runner) remoteStore() (refcache.Store, error) {
	if r.store != nil {
		return r.store, nil
	}
	creds, err := appsheet.LoadCredentials(r.cfg.Store.CredentialsPath)
	if err != nil {
		return nil, err
	}
	return appsheet.NewClient(appsheet.Config{
		BaseURL:        r.cfg.Store.BaseURL,
		TimeoutSeconds: r.cfg.Store.TimeoutSeconds,
		Credentials:    creds,
	}), nil
}

func (r *Runner) read(ctx context.Context, path string) (*sheet.Sheet, records.HintRow, error) {
	logger := logging.WithContext(ctx, r.logger)
	delimiter, _ := utf8.DecodeRuneInString(r.cfg.Input.Delimiter)
	data, err := sheet.Read(path, sheet.Options{
		Delimiter: delimiter,
		Encoding:  r.cfg.Input.Encoding,
		SheetName: r.cfg.Input.Sheet,
	})
	if err != nil {
		return nil, nil, err
	}
	var hints records.HintRow
	if data.HasHints {
		hints, err = records.ParseHintRow(data.Hints, logger)
		if err != nil {
			return nil, nil, err
		}
	}
	logger.Info("spreadsheet loaded",
		logging.String("input", path),
		logging.Int("columns", len(data.Header)),
		logging.Int("rows", len(data.Rows)),
	)
	return data, hints, nil
}
