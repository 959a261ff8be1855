package jobs

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"vidlift/internal/services"
)

// Request describes an incoming upload request before staging. File paths
// reference the caller's files; the daemon stages copies before the pipeline
// takes ownership.
type Request struct {
	JobID         string
	UserID        int64
	AccountID     string
	VideoPath     string
	AudioPath     string
	ThumbnailPath string
	Title         string
	Description   string
	Tags          string
	CategoryID    string
	PrivacyStatus string
}

// Validate rejects requests that must fail before any side effect: a missing
// video file, a missing account id, or a blank title.
func (r *Request) Validate() error {
	if strings.TrimSpace(r.VideoPath) == "" {
		return services.Wrap(services.ErrValidation, "", "accept", "no video file supplied", nil)
	}
	if strings.TrimSpace(r.AccountID) == "" {
		return services.Wrap(services.ErrValidation, "", "accept", "account id is required", nil)
	}
	if strings.TrimSpace(r.Title) == "" {
		return services.Wrap(services.ErrValidation, "", "accept", "title must not be blank", nil)
	}
	return nil
}

// NewJob builds a queued job from a validated request, applying defaults for
// category and privacy. The caller-supplied job id is kept as a correlation
// id; when absent a fresh UUID is assigned.
func NewJob(r *Request, defaultCategoryID, defaultPrivacy string) *Job {
	id := strings.TrimSpace(r.JobID)
	if id == "" {
		id = uuid.NewString()
	}
	category := strings.TrimSpace(r.CategoryID)
	if category == "" {
		category = defaultCategoryID
	}
	privacy := strings.ToLower(strings.TrimSpace(r.PrivacyStatus))
	if privacy == "" {
		privacy = defaultPrivacy
	}
	return &Job{
		ID:            id,
		UserID:        r.UserID,
		AccountID:     strings.TrimSpace(r.AccountID),
		Title:         strings.TrimSpace(r.Title),
		Description:   r.Description,
		Tags:          r.Tags,
		CategoryID:    category,
		PrivacyStatus: privacy,
		Status:        StatusQueued,
		CreatedAt:     time.Now().UTC(),
	}
}
