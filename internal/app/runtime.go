package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/kagahq/kaga/internal/bus"
	"github.com/kagahq/kaga/internal/config"
	"github.com/kagahq/kaga/internal/domain"
	"github.com/kagahq/kaga/internal/kcauto"
	"github.com/kagahq/kaga/internal/logging"
	"github.com/kagahq/kaga/internal/persistence"
	"github.com/kagahq/kaga/internal/platform"
)

const closeFlushTimeout = 3 * time.Second

// Runtime owns the long-lived application state shared by all views.
type Runtime struct {
	mu sync.RWMutex

	Ctx    context.Context
	cancel context.CancelFunc

	Paths  Paths
	Config config.AppConfig

	LogManager  *logging.Manager
	Bus         *bus.PubSubBus
	DB          *sql.DB
	ProfileRepo *persistence.ProfileRepo
	WriterQueue *persistence.WriterQueue

	Profile *domain.Profile

	dirLock        platform.DirLock
	stopWatch      func()
	stopProjection func()
	closeOnce      sync.Once
}

// Options adjust runtime startup without touching the saved config.
type Options struct {
	ConfigDir string
	Profile   string
}

func Initialize(parent context.Context, opts Options) (*Runtime, error) {
	var (
		paths Paths
		err   error
	)
	if strings.TrimSpace(opts.ConfigDir) != "" {
		paths, err = PathsIn(opts.ConfigDir)
	} else {
		paths, err = ResolvePaths()
	}
	if err != nil {
		return nil, err
	}

	return InitializeWithPaths(parent, paths, opts)
}

func InitializeWithPaths(parent context.Context, paths Paths, opts Options) (*Runtime, error) {
	dirLock, err := platform.AcquireDirLock(paths.RootDir)
	switch {
	case errors.Is(err, platform.ErrLockUnsupported):
		dirLock = nil
	case err != nil:
		return nil, err
	}

	cfg, err := config.Load(paths.ConfigFile)
	if err != nil {
		releaseDirLock(dirLock)
		return nil, err
	}
	if profile := strings.TrimSpace(opts.Profile); profile != "" {
		cfg.Profile.Active = profile
	}

	ctx, cancel := context.WithCancel(parent)
	rt := &Runtime{
		Ctx:     ctx,
		cancel:  cancel,
		Paths:   paths,
		Config:  cfg,
		dirLock: dirLock,
	}

	logMgr := logging.NewManager()
	if err := logMgr.Configure(cfg.Logging, paths.LogFile); err != nil {
		_ = logMgr.Close()
		cancel()
		releaseDirLock(dirLock)
		return nil, fmt.Errorf("configure logging: %w", err)
	}
	rt.LogManager = logMgr
	slog.Info("starting kaga runtime", "version", Version, "profile", cfg.Profile.Active)

	db, err := persistence.Open(ctx, paths.DBFile)
	if err != nil {
		_ = rt.Close()
		return nil, err
	}
	rt.DB = db
	rt.ProfileRepo = persistence.NewProfileRepo(db)

	profile, err := domain.LoadProfile(ctx, rt.ProfileRepo, cfg.Profile.Active)
	if err != nil {
		_ = rt.Close()
		return nil, err
	}
	rt.Profile = profile

	rt.Bus = bus.New(logMgr.Logger("bus"))

	writerQueue := persistence.NewWriterQueue(logMgr.Logger("persistence"), 64)
	writerQueue.Start(ctx)
	rt.WriterQueue = writerQueue
	rt.stopProjection = domain.StartPersistenceProjection(ctx, rt.Bus, writerQueue, rt.ProfileRepo, exportOnChange{rt: rt})

	rt.stopWatch = domain.WatchProfile(profile, rt.Bus)

	return rt, nil
}

// CurrentConfig returns a copy of the applied configuration.
func (r *Runtime) CurrentConfig() config.AppConfig {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.Config
}

func (r *Runtime) SaveAndApplyConfig(cfg config.AppConfig) error {
	cfg.FillMissingDefaults()
	if err := cfg.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	if err := config.Save(r.Paths.ConfigFile, cfg); err != nil {
		r.mu.Unlock()
		return err
	}
	r.Config = cfg
	r.mu.Unlock()

	return r.LogManager.Configure(cfg.Logging, r.Paths.LogFile)
}

// ExportProfile writes the active profile to the configured kancolle-auto
// directory right away.
func (r *Runtime) ExportProfile() error {
	cfg := r.CurrentConfig()
	exporter := kcauto.Exporter{Dir: cfg.Profile.KancolleAutoDir}
	if err := exporter.Export(r.Profile.Snapshot()); err != nil {
		return fmt.Errorf("export profile: %w", err)
	}
	slog.Info("exported profile", "profile", r.Profile.Name(), "path", exporter.Path())

	return nil
}

// DeleteProfile removes a stored profile other than the active one.
func (r *Runtime) DeleteProfile(ctx context.Context, name string) error {
	if name == r.Profile.Name() {
		return errors.New("cannot delete the active profile")
	}

	return r.ProfileRepo.Delete(ctx, name)
}

// Flush blocks until queued profile writes have been attempted or timeout
// elapses. Changes still travelling over the bus are not covered; Close is.
func (r *Runtime) Flush(timeout time.Duration) bool {
	if r.WriterQueue == nil {
		return true
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-r.WriterQueue.Idle():
		return true
	case <-timer.C:
		return false
	}
}

func (r *Runtime) Close() error {
	var closeErr error
	r.closeOnce.Do(func() {
		// Stop publishing, then drain the bus into the writer queue before
		// waiting on it.
		if r.stopWatch != nil {
			r.stopWatch()
		}
		if r.stopProjection != nil {
			r.stopProjection()
		}
		if r.WriterQueue != nil {
			r.WriterQueue.Close()
		}
		if !r.Flush(closeFlushTimeout) {
			slog.Warn("pending profile writes were not flushed before shutdown")
		}
		if r.cancel != nil {
			r.cancel()
		}
		if r.Bus != nil {
			r.Bus.Close()
		}
		if r.DB != nil {
			if err := r.DB.Close(); err != nil {
				closeErr = errors.Join(closeErr, fmt.Errorf("close db: %w", err))
			}
		}
		if r.dirLock != nil {
			if err := r.dirLock.Release(); err != nil {
				closeErr = errors.Join(closeErr, fmt.Errorf("release data dir lock: %w", err))
			}
		}
		if r.LogManager != nil {
			if err := r.LogManager.Close(); err != nil {
				closeErr = errors.Join(closeErr, fmt.Errorf("close log: %w", err))
			}
		}
	})

	return closeErr
}

func releaseDirLock(lock platform.DirLock) {
	if lock == nil {
		return
	}
	if err := lock.Release(); err != nil {
		slog.Warn("release data dir lock", "error", err)
	}
}

// exportOnChange exports profile snapshots only while the current config asks for it.
type exportOnChange struct {
	rt *Runtime
}

func (e exportOnChange) Export(p domain.ProfileSnapshot) error {
	cfg := e.rt.CurrentConfig()
	if !cfg.Profile.ExportOnChange {
		return nil
	}

	return kcauto.Exporter{Dir: cfg.Profile.KancolleAutoDir}.Export(p)
}
