package platform

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LockFilename is created next to the profile database.
const LockFilename = "kaga.lock"

// ErrProfileStoreLocked means another kaga process owns the data directory.
var ErrProfileStoreLocked = errors.New("profile store is used by another kaga process")

// ErrLockUnsupported indicates the current platform has no lock backend.
var ErrLockUnsupported = errors.New("data dir lock unsupported")

// DirLock is an acquired exclusive lock on a data directory.
type DirLock interface {
	Path() string
	Release() error
}

// AcquireDirLock takes a non-blocking exclusive lock on dir/kaga.lock.
func AcquireDirLock(dir string) (DirLock, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, errors.New("lock dir is empty")
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create lock dir: %w", err)
	}

	return acquireDirLock(filepath.Join(dir, LockFilename))
}
