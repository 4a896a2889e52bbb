//go:build unix

package platform

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

func TestAcquireDirLockContentionAndRelease(t *testing.T) {
	dir := t.TempDir()

	lock1, err := AcquireDirLock(dir)
	if err != nil {
		t.Fatalf("acquire first lock: %v", err)
	}
	if got, want := lock1.Path(), filepath.Join(dir, LockFilename); got != want {
		t.Fatalf("unexpected lock path: got %q want %q", got, want)
	}

	lock2, err := AcquireDirLock(dir)
	if !errors.Is(err, ErrProfileStoreLocked) {
		t.Fatalf("expected %v, got %v", ErrProfileStoreLocked, err)
	}
	if lock2 != nil {
		t.Fatalf("expected second lock to be nil, got %#v", lock2)
	}

	if err := lock1.Release(); err != nil {
		t.Fatalf("release first lock: %v", err)
	}
	if err := lock1.Release(); err != nil {
		t.Fatalf("second release should be a no-op: %v", err)
	}

	lock3, err := AcquireDirLock(dir)
	if err != nil {
		t.Fatalf("acquire lock after release: %v", err)
	}
	if err := lock3.Release(); err != nil {
		t.Fatalf("release third lock: %v", err)
	}
}

func TestAcquireDirLockWritesPid(t *testing.T) {
	dir := t.TempDir()

	lock, err := AcquireDirLock(dir)
	if err != nil {
		t.Fatalf("acquire lock: %v", err)
	}
	defer func() { _ = lock.Release() }()

	raw, err := os.ReadFile(lock.Path())
	if err != nil {
		t.Fatalf("read lock file: %v", err)
	}
	if got := strings.TrimSpace(string(raw)); got != strconv.Itoa(os.Getpid()) {
		t.Fatalf("unexpected pid in lock file: %q", got)
	}
}
