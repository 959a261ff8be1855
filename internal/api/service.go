package api

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"vidlift/internal/config"
	"vidlift/internal/fileutil"
	"vidlift/internal/jobs"
	"vidlift/internal/logging"
	"vidlift/internal/notify"
	"vidlift/internal/services"
	"vidlift/internal/store"
)

// HistoryStore is the subset of persistence the facade reads.
type HistoryStore interface {
	HistoryForUser(ctx context.Context, userID int64, query store.HistoryQuery) ([]store.HistoryRecord, error)
}

// Runner executes one job to a terminal state.
type Runner interface {
	Run(ctx context.Context, job *jobs.Job) error
}

// Service is the operation facade shared by the IPC handlers and any direct
// in-process callers. Upload is synchronous: it stages the request's files,
// runs the job, and returns the terminal result. Concurrency across callers
// is bounded by the configured job limit.
type Service struct {
	cfg     *config.Config
	history HistoryStore
	hub     *notify.Hub
	runner  Runner
	logger  *slog.Logger
	sem     chan struct{}
	active  atomic.Int64
}

// NewService wires the facade from its collaborators.
func NewService(cfg *config.Config, history HistoryStore, hub *notify.Hub, runner Runner, logger *slog.Logger) *Service {
	if logger == nil {
		logger = logging.NewNop()
	}
	limit := cfg.Workflow.MaxActiveJobs
	if limit < 1 {
		limit = 1
	}
	return &Service{
		cfg:     cfg,
		history: history,
		hub:     hub,
		runner:  runner,
		logger:  logger,
		sem:     make(chan struct{}, limit),
	}
}

// Upload validates and runs one upload job. The request's files are copied
// into the staging directory first so cleanup owns the copies and the
// caller's originals survive.
func (s *Service) Upload(ctx context.Context, req jobs.Request) (*JobResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	job := jobs.NewJob(&req, s.cfg.Platform.DefaultCategoryID, s.cfg.Platform.DefaultPrivacy)

	if err := s.stage(job, &req); err != nil {
		fileutil.RemoveAllFiles(job.TempFiles())
		return nil, err
	}

	select {
	case s.sem <- struct{}{}:
	case <-ctx.Done():
		fileutil.RemoveAllFiles(job.TempFiles())
		return nil, ctx.Err()
	}
	s.active.Add(1)
	defer func() {
		s.active.Add(-1)
		<-s.sem
	}()

	runErr := s.runner.Run(ctx, job)

	result := &JobResult{
		JobID:   job.ID,
		Status:  string(job.Status),
		VideoID: job.VideoID,
		Warning: job.Warning,
	}
	if runErr != nil {
		result.Error = services.Details(runErr)
		return result, runErr
	}
	return result, nil
}

// stage copies the request's files into the staging dir and points the job
// at the copies.
func (s *Service) stage(job *jobs.Job, req *jobs.Request) error {
	stagingDir := s.cfg.Paths.StagingDir

	staged, err := fileutil.StageFile(req.VideoPath, stagingDir, job.ID, "video")
	if err != nil {
		return services.Wrap(services.ErrValidation, string(jobs.StatusQueued), "stage", "stage video file", err)
	}
	job.VideoPath = staged

	if req.AudioPath != "" {
		staged, err = fileutil.StageFile(req.AudioPath, stagingDir, job.ID, "audio")
		if err != nil {
			return services.Wrap(services.ErrValidation, string(jobs.StatusQueued), "stage", "stage audio file", err)
		}
		job.AudioPath = staged
	}

	if req.ThumbnailPath != "" {
		staged, err = fileutil.StageFile(req.ThumbnailPath, stagingDir, job.ID, "thumbnail")
		if err != nil {
			return services.Wrap(services.ErrValidation, string(jobs.StatusQueued), "stage", "stage thumbnail file", err)
		}
		job.ThumbnailPath = staged
	}

	return nil
}

// History returns the user's upload history with filter and sort applied.
func (s *Service) History(ctx context.Context, userID int64, search, sortBy string, descending bool) ([]HistoryEntry, error) {
	records, err := s.history.HistoryForUser(ctx, userID, store.HistoryQuery{
		Search:     search,
		SortBy:     store.ParseSortField(sortBy),
		Descending: descending,
	})
	if err != nil {
		return nil, err
	}

	entries := make([]HistoryEntry, len(records))
	for i, record := range records {
		entries[i] = HistoryEntry{
			ID:           record.ID,
			VideoID:      record.VideoID,
			Title:        record.Title,
			AccountLabel: record.AccountLabel,
			Status:       record.Status,
			UploadedAt:   record.UploadedAt,
		}
	}
	return entries, nil
}

// Subscribe opens a progress subscription for the user and returns its id.
func (s *Service) Subscribe(userID int64) string {
	return s.hub.Subscribe(userID)
}

// Unsubscribe tears a subscription down. It reports whether it existed.
func (s *Service) Unsubscribe(subID string) bool {
	return s.hub.Unsubscribe(subID)
}

// FetchEvents long-polls a subscription. It returns an empty batch when the
// configured wait elapses with nothing queued.
func (s *Service) FetchEvents(ctx context.Context, subID string, limit int) ([]ProgressEvent, error) {
	wait := time.Duration(s.cfg.Workflow.WatchWaitMillis) * time.Millisecond
	pollCtx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()

	events, err := s.hub.Fetch(pollCtx, subID, limit, true)
	if err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return nil, err
	}

	out := make([]ProgressEvent, len(events))
	for i, evt := range events {
		out[i] = ProgressEvent{
			Sequence:  evt.Sequence,
			Timestamp: evt.Timestamp,
			JobID:     evt.JobID,
			Kind:      string(evt.Kind),
			Status:    evt.Status,
			Percent:   evt.Percent,
			VideoID:   evt.VideoID,
			Message:   evt.Message,
		}
	}
	return out, nil
}

// Status reports facade health for the status operation.
func (s *Service) Status(dbPath string) StatusReport {
	return StatusReport{
		Running:    true,
		ActiveJobs: int(s.active.Load()),
		MaxJobs:    cap(s.sem),
		SocketPath: s.cfg.Paths.SocketPath,
		DBPath:     dbPath,
	}
}
