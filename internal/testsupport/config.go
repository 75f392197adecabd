package testsupport

import (
	"path/filepath"
	"testing"

	"tapegen/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config rooted in a per-test temp directory. Font
// directories are cleared so captions use the built-in face, and the sync lock
// lives under the temp directory.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Label.FontDirs = nil
	cfgVal.Store.LockPath = filepath.Join(base, "sync.lock")
	cfgVal.Store.TimeoutSeconds = 5

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithStore points the config at a fake AppSheet server and writes a
// credentials file for it.
func WithStore(store *FakeStore) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Store.BaseURL = store.URL()
		b.cfg.Store.CredentialsPath = WriteCredentials(b.t, b.baseDir, FakeAppID, FakeAppKey)
	}
}

// WithTapeHeight overrides the tape height.
func WithTapeHeight(height int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Tape.Height = height
	}
}

// WithLabelFormat overrides the caption template.
func WithLabelFormat(format string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Label.Format = format
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Store.LockPath)
}
