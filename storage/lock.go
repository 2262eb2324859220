package storage

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/gofrs/flock"
)

// ErrInstanceLocked means another server process owns the data directory.
var ErrInstanceLocked = errors.New("another spurchat server is already running")

// InstanceLock is an advisory file lock on <data_dir>/spurchat.lock that
// keeps a second server from opening the same database.
type InstanceLock struct {
	path string
	lock *flock.Flock
}

// NewInstanceLock prepares (but does not take) the lock for dataDir.
func NewInstanceLock(dataDir string) *InstanceLock {
	path := filepath.Join(dataDir, "spurchat.lock")
	return &InstanceLock{path: path, lock: flock.New(path)}
}

// TryLock acquires the lock without blocking.
func (l *InstanceLock) TryLock() error {
	ok, err := l.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock %s: %w", l.path, err)
	}
	if !ok {
		return fmt.Errorf("%w (lock: %s)", ErrInstanceLocked, l.path)
	}
	return nil
}

// Unlock releases the lock. Safe to call when not held.
func (l *InstanceLock) Unlock() error {
	return l.lock.Unlock()
}

// Path returns the lock file location.
func (l *InstanceLock) Path() string { return l.path }
