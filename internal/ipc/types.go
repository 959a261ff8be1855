package ipc

import "vidlift/internal/api"

// JobResult mirrors the facade DTO for IPC callers.
type JobResult = api.JobResult

// HistoryEntry mirrors the facade DTO for IPC callers.
type HistoryEntry = api.HistoryEntry

// ProgressEvent mirrors the facade DTO for IPC callers.
type ProgressEvent = api.ProgressEvent

// UploadRequest submits one upload job. File paths must be readable by the
// daemon; it stages its own copies before processing.
type UploadRequest struct {
	UserID        int64  `json:"user_id"`
	AccountID     string `json:"account_id"`
	VideoPath     string `json:"video_path"`
	AudioPath     string `json:"audio_path,omitempty"`
	ThumbnailPath string `json:"thumbnail_path,omitempty"`
	Title         string `json:"title"`
	Description   string `json:"description,omitempty"`
	Tags          string `json:"tags,omitempty"`
	CategoryID    string `json:"category_id,omitempty"`
	PrivacyStatus string `json:"privacy_status,omitempty"`
}

// UploadResponse reports the terminal outcome of the job.
type UploadResponse struct {
	Result JobResult `json:"result"`
}

// HistoryRequest fetches a user's upload history.
type HistoryRequest struct {
	UserID     int64  `json:"user_id"`
	Search     string `json:"search,omitempty"`
	SortBy     string `json:"sort_by,omitempty"`
	Descending bool   `json:"descending,omitempty"`
}

// HistoryResponse contains history entries.
type HistoryResponse struct {
	Entries []HistoryEntry `json:"entries"`
}

// WatchSubscribeRequest opens a progress subscription for a user.
type WatchSubscribeRequest struct {
	UserID int64 `json:"user_id"`
}

// WatchSubscribeResponse carries the new subscription id.
type WatchSubscribeResponse struct {
	SubscriptionID string `json:"subscription_id"`
}

// WatchFetchRequest long-polls a subscription for queued events.
type WatchFetchRequest struct {
	SubscriptionID string `json:"subscription_id"`
	Limit          int    `json:"limit,omitempty"`
}

// WatchFetchResponse returns the drained events, possibly empty.
type WatchFetchResponse struct {
	Events []ProgressEvent `json:"events"`
}

// WatchCancelRequest tears a subscription down.
type WatchCancelRequest struct {
	SubscriptionID string `json:"subscription_id"`
}

// WatchCancelResponse reports whether the subscription existed.
type WatchCancelResponse struct {
	Cancelled bool `json:"cancelled"`
}

// StatusRequest fetches daemon status.
type StatusRequest struct{}

// StatusResponse represents daemon status information.
type StatusResponse struct {
	Running    bool   `json:"running"`
	ActiveJobs int    `json:"active_jobs"`
	MaxJobs    int    `json:"max_jobs"`
	SocketPath string `json:"socket_path"`
	DBPath     string `json:"db_path"`
	PID        int    `json:"pid"`
}

// StopRequest shuts the daemon down.
type StopRequest struct{}

// StopResponse indicates stop result.
type StopResponse struct {
	Stopped bool `json:"stopped"`
}
