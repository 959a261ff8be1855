package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"vidlift/internal/encoder"
	"vidlift/internal/fileutil"
	"vidlift/internal/jobs"
	"vidlift/internal/logging"
	"vidlift/internal/notify"
	"vidlift/internal/platform"
	"vidlift/internal/services"
	"vidlift/internal/store"
)

// Store is the subset of persistence the coordinator needs.
type Store interface {
	GetCredential(ctx context.Context, userID int64, accountID string) (*store.Credential, error)
	DeleteCredential(ctx context.Context, userID int64, accountID string) (bool, error)
	AppendHistory(ctx context.Context, record *store.HistoryRecord) error
}

// Coordinator drives one upload job through its stages: optional audio
// merge, credential resolution, streaming upload, optional thumbnail
// attach, and the final history record. Staged temp files are removed
// exactly once regardless of outcome.
type Coordinator struct {
	store      Store
	hub        *notify.Hub
	merger     encoder.Merger
	client     platform.Client
	logger     *slog.Logger
	stagingDir string
}

// NewCoordinator wires a coordinator from its collaborators.
func NewCoordinator(st Store, hub *notify.Hub, merger encoder.Merger, client platform.Client, stagingDir string, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Coordinator{
		store:      st,
		hub:        hub,
		merger:     merger,
		client:     client,
		logger:     logger,
		stagingDir: stagingDir,
	}
}

// Run executes the job to a terminal state. It returns nil when the job
// completed (possibly with a thumbnail warning) and the terminal error
// otherwise. Cleanup of staged files always runs.
func (c *Coordinator) Run(ctx context.Context, job *jobs.Job) error {
	ctx = services.WithJobID(ctx, job.ID)
	ctx = services.WithUserID(ctx, job.UserID)
	logger := logging.WithContext(ctx, c.logger)

	defer func() {
		if failed := fileutil.RemoveAllFiles(job.TempFiles()); len(failed) > 0 {
			logger.Warn("staged files left behind", logging.Any("paths", failed))
		}
	}()

	logger.Info("job started",
		logging.String("title", job.Title),
		logging.String("account_id", job.AccountID))

	if job.AudioPath != "" {
		if err := c.runMerge(ctx, job, logger); err != nil {
			return c.fail(ctx, job, logger, err)
		}
	}

	cred, err := c.resolveCredential(ctx, job, logger)
	if err != nil {
		return c.fail(ctx, job, logger, err)
	}

	if err := c.runUpload(ctx, job, cred, logger); err != nil {
		return c.fail(ctx, job, logger, err)
	}

	if job.ThumbnailPath != "" {
		c.attachThumbnail(ctx, job, cred, logger)
	}

	c.setStatus(job, jobs.StatusCompleted, logger)

	record := &store.HistoryRecord{
		UserID:       job.UserID,
		VideoID:      job.VideoID,
		Title:        job.Title,
		AccountLabel: cred.AccountLabel,
		Status:       string(jobs.StatusCompleted),
	}
	if err := c.store.AppendHistory(ctx, record); err != nil {
		logger.Error("history append failed", logging.Error(err))
	}

	c.hub.Publish(job.UserID, notify.SuccessEvent(job.ID, job.VideoID))
	if job.Warning != "" {
		logger.Info("job completed with warning", logging.String("warning", job.Warning))
	} else {
		logger.Info("job completed", logging.String("video_id", job.VideoID))
	}
	return nil
}

func (c *Coordinator) runMerge(ctx context.Context, job *jobs.Job, logger *slog.Logger) error {
	c.setStatus(job, jobs.StatusMerging, logger)

	// Recorded before the merge runs: ffmpeg creates the output before it
	// can fail, and cleanup must cover the partial file.
	output := filepath.Join(c.stagingDir, job.ID+"-merged"+filepath.Ext(job.VideoPath))
	job.MergedPath = output

	if err := c.merger.Merge(ctx, job.VideoPath, job.AudioPath, output); err != nil {
		return err
	}
	logger.Info("audio merged", logging.String("output", output))
	return nil
}

func (c *Coordinator) resolveCredential(ctx context.Context, job *jobs.Job, logger *slog.Logger) (*store.Credential, error) {
	c.setStatus(job, jobs.StatusResolvingCredential, logger)

	cred, err := c.store.GetCredential(ctx, job.UserID, job.AccountID)
	if errors.Is(err, store.ErrCredentialNotFound) {
		return nil, services.Wrap(services.ErrCredential, string(jobs.StatusResolvingCredential), "lookup",
			fmt.Sprintf("no credential for account %q", job.AccountID), err)
	}
	if err != nil {
		return nil, services.Wrap(services.ErrStorage, string(jobs.StatusResolvingCredential), "lookup",
			"credential lookup failed", err)
	}
	return cred, nil
}

func (c *Coordinator) runUpload(ctx context.Context, job *jobs.Job, cred *store.Credential, logger *slog.Logger) error {
	c.setStatus(job, jobs.StatusUploading, logger)

	videoID, err := c.client.Insert(ctx, platform.InsertRequest{
		FilePath:      job.UploadPath(),
		AccessToken:   cred.AccessToken,
		Title:         job.Title,
		Description:   job.Description,
		Tags:          job.Tags,
		CategoryID:    job.CategoryID,
		PrivacyStatus: job.PrivacyStatus,
		OnProgress: func(pct int) {
			c.hub.Publish(job.UserID, notify.ProgressEvent(job.ID, pct))
		},
	})
	if err != nil {
		if errors.Is(err, services.ErrAuthorization) {
			// The grant is dead; keeping the credential would fail every
			// subsequent upload the same way.
			if removed, delErr := c.store.DeleteCredential(ctx, job.UserID, job.AccountID); delErr != nil {
				logger.Error("stale credential delete failed", logging.Error(delErr))
			} else if removed {
				logger.Info("stale credential removed", logging.String("account_id", job.AccountID))
			}
		}
		return err
	}

	job.VideoID = videoID
	logger.Info("upload accepted", logging.String("video_id", videoID))
	return nil
}

// attachThumbnail is best-effort: a failure downgrades to a warning and the
// job still completes.
func (c *Coordinator) attachThumbnail(ctx context.Context, job *jobs.Job, cred *store.Credential, logger *slog.Logger) {
	c.setStatus(job, jobs.StatusAttachingThumbnail, logger)

	if err := c.client.SetThumbnail(ctx, cred.AccessToken, job.VideoID, job.ThumbnailPath); err != nil {
		job.Warning = fmt.Sprintf("thumbnail attach failed: %s", services.Details(err))
		logger.Warn("thumbnail attach failed", logging.Error(err))
		c.hub.Publish(job.UserID, notify.WarningEvent(job.ID, job.Warning))
	}
}

func (c *Coordinator) setStatus(job *jobs.Job, status jobs.Status, logger *slog.Logger) {
	if !job.Transition(status) {
		logger.Warn("illegal status transition skipped",
			logging.String("from", string(job.Status)),
			logging.String("to", string(status)))
		return
	}
	logger.Info("stage entered", logging.String("status", string(status)))
	c.hub.Publish(job.UserID, notify.StatusEvent(job.ID, string(status)))
}

// fail moves the job to its terminal state. Only the job's own context
// decides cancellation; deadline errors from stage-internal timeouts fail
// the job like any other error.
func (c *Coordinator) fail(ctx context.Context, job *jobs.Job, logger *slog.Logger, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		job.Transition(jobs.StatusCancelled)
		logger.Info("job cancelled")
		c.hub.Publish(job.UserID, notify.StatusEvent(job.ID, string(jobs.StatusCancelled)))
		return ctxErr
	}

	job.SetFailed(services.Details(err))
	logger.Error("job failed", logging.Error(err))
	c.hub.Publish(job.UserID, notify.StatusEvent(job.ID, string(jobs.StatusFailed)))
	c.hub.Publish(job.UserID, notify.ErrorEvent(job.ID, job.ErrorMsg))
	return err
}
