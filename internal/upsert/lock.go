package upsert

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"tapegen/internal/services"
)

// SyncLock is a host-wide advisory lock held while rows are posted.
type SyncLock struct {
	path string
	lock *flock.Flock
}

// NewSyncLock prepares a lock at path. An empty path disables locking.
func NewSyncLock(path string) *SyncLock {
	if path == "" {
		return &SyncLock{}
	}
	return &SyncLock{path: path, lock: flock.New(path)}
}

// Path returns the lock file location.
func (l *SyncLock) Path() string {
	return l.path
}

// Acquire takes the lock without waiting. A lock held by another process is a
// configuration error.
func (l *SyncLock) Acquire() error {
	if l.lock == nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return services.Wrap(services.ErrConfiguration, "upsert", "acquire lock", "create lock directory", err)
	}
	ok, err := l.lock.TryLock()
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "upsert", "acquire lock", l.path, err)
	}
	if !ok {
		return services.Wrap(services.ErrConfiguration, "upsert", "acquire lock",
			fmt.Sprintf("another tapegen sync holds %s", l.path), nil)
	}
	return nil
}

// Release drops the lock.
func (l *SyncLock) Release() error {
	if l.lock == nil {
		return nil
	}
	return l.lock.Unlock()
}
