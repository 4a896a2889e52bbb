// Package logging owns kaga's process-wide slog logger. Records always go to
// stdout; with log_to_file set they are also appended to kaga.log in the data
// directory, which is rotated to kaga.log.1 once it outgrows maxLogFileBytes.
package logging

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/kagahq/kaga/internal/config"
)

const maxLogFileBytes = 1 << 20

// Manager swaps the default slog handler when the logging config changes.
// The level is shared through a LevelVar so loggers handed out earlier pick
// up level changes.
type Manager struct {
	mu     sync.RWMutex
	level  slog.LevelVar
	logger *slog.Logger
	file   *os.File
	stdout io.Writer
}

func NewManager() *Manager {
	m := &Manager{stdout: os.Stdout}
	m.level.Set(slog.LevelInfo)
	m.logger = m.newLogger(m.stdout)

	return m
}

// Configure applies cfg and installs the result as slog's default logger.
// An invalid level leaves the current setup untouched.
func (m *Manager) Configure(cfg config.LoggingConfig, filePath string) error {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var file *os.File
	if cfg.LogToFile {
		file, err = openLogFile(filePath)
		if err != nil {
			return err
		}
	}
	if m.file != nil {
		_ = m.file.Close()
	}
	m.file = file

	out := m.stdout
	if file != nil {
		out = &teeWriter{dsts: []io.Writer{m.stdout, file}}
	}
	m.level.Set(level)
	m.logger = m.newLogger(out)
	slog.SetDefault(m.logger)

	return nil
}

// Logger returns a logger tagged with component.
func (m *Manager) Logger(component string) *slog.Logger {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.logger.With("component", component)
}

func (m *Manager) Level() slog.Level {
	return m.level.Level()
}

func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.file == nil {
		return nil
	}
	err := m.file.Close()
	m.file = nil

	return err
}

func (m *Manager) newLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: &m.level}))
}

// openLogFile opens path for appending, first moving an oversized log aside.
func openLogFile(path string) (*os.File, error) {
	cleanPath := filepath.Clean(path)
	if info, err := os.Stat(cleanPath); err == nil && info.Size() > maxLogFileBytes {
		if err := os.Rename(cleanPath, cleanPath+".1"); err != nil {
			return nil, fmt.Errorf("rotate log file: %w", err)
		}
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("stat log file: %w", err)
	}

	// #nosec G304 -- path is resolved by the app runtime inside the data dir.
	file, err := os.OpenFile(cleanPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	return file, nil
}

func parseLevel(raw string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unsupported log level: %q", raw)
	}
}

// teeWriter copies records to stdout and the log file. stdout may be
// missing on Windows GUI builds, so a write only fails when no destination
// took the whole record.
type teeWriter struct {
	dsts []io.Writer
}

func (w *teeWriter) Write(p []byte) (int, error) {
	var errs []error
	for i, dst := range w.dsts {
		n, err := dst.Write(p)
		if err == nil && n < len(p) {
			err = io.ErrShortWrite
		}
		if err != nil {
			errs = append(errs, err)
			continue
		}
		for _, rest := range w.dsts[i+1:] {
			_, _ = rest.Write(p)
		}

		return len(p), nil
	}

	return 0, errors.Join(errs...)
}
