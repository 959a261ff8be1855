package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"vidlift/internal/api"
	"vidlift/internal/config"
	"vidlift/internal/encoder"
	"vidlift/internal/ipc"
	"vidlift/internal/logging"
	"vidlift/internal/notify"
	"vidlift/internal/pipeline"
	"vidlift/internal/platform"
	"vidlift/internal/services"
	"vidlift/internal/store"
)

// Daemon owns the long-running upload service: the store, the progress hub,
// the job facade, and the IPC server. A file lock enforces a single instance
// per machine.
type Daemon struct {
	cfg    *config.Config
	logger *slog.Logger
	store  *store.Store
	hub    *notify.Hub
	svc    *api.Service

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	cancel  context.CancelFunc
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil {
		return nil, errors.New("daemon requires config")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	st, err := store.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	hub := notify.NewHub(256)

	merger := encoder.Merger(encoder.NewCLI(encoder.WithBinary(cfg.Encoder.FFmpegBinary)))
	if cfg.Encoder.MergeTimeout > 0 {
		merger = &timeoutMerger{
			inner:   merger,
			timeout: time.Duration(cfg.Encoder.MergeTimeout) * time.Second,
		}
	}

	client := platform.NewHTTP(cfg.Platform.APIBaseURL,
		platform.WithTimeout(time.Duration(cfg.Platform.UploadTimeout)*time.Second),
		platform.WithProgressChunkKiB(cfg.Platform.ProgressChunkKiB))

	coordinator := pipeline.NewCoordinator(st, hub, merger, client, cfg.Paths.StagingDir, logger)
	svc := api.NewService(cfg, st, hub, coordinator, logger)

	lockPath := filepath.Join(cfg.Paths.LogDir, "vidliftd.lock")
	return &Daemon{
		cfg:      cfg,
		logger:   logger,
		store:    st,
		hub:      hub,
		svc:      svc,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}, nil
}

// Service exposes the job facade for in-process callers.
func (d *Daemon) Service() *api.Service {
	return d.svc
}

// Run acquires the instance lock, serves IPC, and blocks until the context
// ends or Stop is called. The store and socket are released on the way out.
func (d *Daemon) Run(ctx context.Context) error {
	if !d.running.CompareAndSwap(false, true) {
		return errors.New("daemon already running")
	}
	defer d.running.Store(false)

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another vidlift daemon instance is already running")
	}
	defer func() { _ = d.lock.Unlock() }()

	runCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	defer cancel()

	server, err := ipc.NewServer(runCtx, d.cfg.Paths.SocketPath, d.svc, d.store.Path(), d.Stop, d.logger)
	if err != nil {
		return fmt.Errorf("start ipc server: %w", err)
	}
	server.Serve()

	d.logger.Info("daemon started",
		logging.String("socket", d.cfg.Paths.SocketPath),
		logging.String("db", d.store.Path()),
		logging.String("lock", d.lockPath))

	<-runCtx.Done()

	d.logger.Info("daemon stopping")
	server.Close()
	if err := d.store.Close(); err != nil {
		d.logger.Warn("store close failed", logging.Error(err))
	}
	return nil
}

// Stop initiates shutdown. Safe to call from IPC handlers and signal hooks.
func (d *Daemon) Stop() {
	if d.cancel != nil {
		d.cancel()
	}
}

// Running reports whether Run is active.
func (d *Daemon) Running() bool {
	return d.running.Load()
}

// timeoutMerger bounds each merge with the configured timeout. A timeout
// hit while the job's own context is still live is an encoder failure, not
// a cancellation.
type timeoutMerger struct {
	inner   encoder.Merger
	timeout time.Duration
}

func (m *timeoutMerger) Merge(ctx context.Context, videoPath, audioPath, outputPath string) error {
	mergeCtx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	err := m.inner.Merge(mergeCtx, videoPath, audioPath, outputPath)
	if err != nil && ctx.Err() == nil && errors.Is(err, context.DeadlineExceeded) {
		return services.Wrap(services.ErrEncoding, "merging", "ffmpeg",
			fmt.Sprintf("merge exceeded the %s limit", m.timeout), err)
	}
	return err
}
