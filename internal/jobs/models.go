package jobs

import (
	"strings"
	"time"
)

// Status represents the lifecycle of an upload job.
type Status string

const (
	StatusQueued              Status = "queued"
	StatusMerging             Status = "merging"
	StatusResolvingCredential Status = "resolving_credential"
	StatusUploading           Status = "uploading"
	StatusAttachingThumbnail  Status = "attaching_thumbnail"
	StatusCompleted           Status = "completed"
	StatusFailed              Status = "failed"
	StatusCancelled           Status = "cancelled"
)

var allStatuses = []Status{
	StatusQueued,
	StatusMerging,
	StatusResolvingCredential,
	StatusUploading,
	StatusAttachingThumbnail,
	StatusCompleted,
	StatusFailed,
	StatusCancelled,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

var terminalStatuses = map[Status]struct{}{
	StatusCompleted: {},
	StatusFailed:    {},
	StatusCancelled: {},
}

// forwardTransitions encodes the monotonic state machine. Failed is reachable
// from merging, resolving_credential, and uploading; a thumbnail failure goes
// straight to completed. Cancelled is reachable from any non-terminal state.
var forwardTransitions = map[Status][]Status{
	StatusQueued:              {StatusMerging, StatusResolvingCredential},
	StatusMerging:             {StatusResolvingCredential, StatusFailed},
	StatusResolvingCredential: {StatusUploading, StatusFailed},
	StatusUploading:           {StatusAttachingThumbnail, StatusCompleted, StatusFailed},
	StatusAttachingThumbnail:  {StatusCompleted},
}

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// IsTerminal reports whether a status permits no further transitions.
func (s Status) IsTerminal() bool {
	_, ok := terminalStatuses[s]
	return ok
}

// CanTransition reports whether moving from one status to another respects the
// monotonic state machine. Cancellation is permitted from any non-terminal
// state; no transition leaves a terminal state.
func CanTransition(from, to Status) bool {
	if from.IsTerminal() {
		return false
	}
	if to == StatusCancelled {
		return true
	}
	for _, next := range forwardTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Label returns the human-readable stage name used in progress messages.
func (s Status) Label() string {
	parts := strings.Fields(strings.ReplaceAll(string(s), "_", " "))
	for i, part := range parts {
		parts[i] = strings.ToUpper(part[:1]) + part[1:]
	}
	return strings.Join(parts, " ")
}

// Job represents one upload request's full lifecycle. Jobs are owned by the
// coordinator and mutated only as it advances through stages.
type Job struct {
	ID        string
	UserID    int64
	AccountID string

	// Staged temp files owned by the job. VideoPath is required; the rest
	// are optional. UploadPath points at the file actually streamed to the
	// platform (the merged output when an audio track was supplied).
	VideoPath     string
	AudioPath     string
	ThumbnailPath string
	MergedPath    string

	Title         string
	Description   string
	Tags          string
	CategoryID    string
	PrivacyStatus string

	Status    Status
	VideoID   string
	ErrorMsg  string
	Warning   string
	CreatedAt time.Time
}

// UploadPath returns the file the upload stage must stream: the merged output
// when the merge stage ran, otherwise the original video.
func (j *Job) UploadPath() string {
	if j.MergedPath != "" {
		return j.MergedPath
	}
	return j.VideoPath
}

// TempFiles lists every staged file the cleanup step must remove.
func (j *Job) TempFiles() []string {
	paths := make([]string, 0, 4)
	for _, path := range []string{j.VideoPath, j.AudioPath, j.ThumbnailPath, j.MergedPath} {
		if path != "" {
			paths = append(paths, path)
		}
	}
	return paths
}

// Transition advances the job state, enforcing the state machine.
func (j *Job) Transition(to Status) bool {
	if !CanTransition(j.Status, to) {
		return false
	}
	j.Status = to
	return true
}

// SetFailed marks the job failed with the given reason.
func (j *Job) SetFailed(message string) {
	j.Status = StatusFailed
	j.ErrorMsg = message
}
