package api

import "time"

// JobResult reports the terminal outcome of one upload job.
type JobResult struct {
	JobID   string `json:"job_id"`
	Status  string `json:"status"`
	VideoID string `json:"video_id,omitempty"`
	Warning string `json:"warning,omitempty"`
	Error   string `json:"error,omitempty"`
}

// HistoryEntry is one row of a user's upload history.
type HistoryEntry struct {
	ID           int64     `json:"id"`
	VideoID      string    `json:"video_id"`
	Title        string    `json:"title"`
	AccountLabel string    `json:"account_label,omitempty"`
	Status       string    `json:"status"`
	UploadedAt   time.Time `json:"uploaded_at"`
}

// ProgressEvent mirrors notify.Event for transport to clients.
type ProgressEvent struct {
	Sequence  uint64    `json:"seq"`
	Timestamp time.Time `json:"ts"`
	JobID     string    `json:"job_id"`
	Kind      string    `json:"kind"`
	Status    string    `json:"status,omitempty"`
	Percent   int       `json:"percent,omitempty"`
	VideoID   string    `json:"video_id,omitempty"`
	Message   string    `json:"message,omitempty"`
}

// StatusReport summarizes daemon health for the status command.
type StatusReport struct {
	Running    bool   `json:"running"`
	ActiveJobs int    `json:"active_jobs"`
	MaxJobs    int    `json:"max_jobs"`
	SocketPath string `json:"socket_path"`
	DBPath     string `json:"db_path"`
}
