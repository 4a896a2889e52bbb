//go:build unix

package platform

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"syscall"
)

type unixDirLock struct {
	path string
	file *os.File
}

func acquireDirLock(path string) (DirLock, error) {
	// #nosec G304 -- path is built from the resolved app data directory.
	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open lock file: %w", err)
	}

	if err := syscall.Flock(int(file.Fd()), syscall.LOCK_EX|syscall.LOCK_NB); err != nil {
		_ = file.Close()
		if errors.Is(err, syscall.EWOULDBLOCK) || errors.Is(err, syscall.EAGAIN) {
			return nil, ErrProfileStoreLocked
		}

		return nil, fmt.Errorf("acquire file lock: %w", err)
	}

	// The pid is informational only.
	if err := file.Truncate(0); err == nil {
		_, _ = file.WriteAt([]byte(strconv.Itoa(os.Getpid())+"\n"), 0)
	}

	return &unixDirLock{path: path, file: file}, nil
}

func (l *unixDirLock) Path() string {
	return l.path
}

func (l *unixDirLock) Release() error {
	if l == nil || l.file == nil {
		return nil
	}

	unlockErr := syscall.Flock(int(l.file.Fd()), syscall.LOCK_UN)
	closeErr := l.file.Close()
	l.file = nil

	if unlockErr != nil && !errors.Is(unlockErr, syscall.EBADF) {
		return fmt.Errorf("unlock file lock: %w", unlockErr)
	}
	if closeErr != nil {
		return fmt.Errorf("close lock file: %w", closeErr)
	}

	return nil
}
