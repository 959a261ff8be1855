package notify

// StatusEvent builds a stage transition event for a job.
func StatusEvent(jobID, status string) Event {
	return Event{JobID: jobID, Kind: KindStatus, Status: status}
}

// ProgressEvent builds an upload percentage event for a job.
func ProgressEvent(jobID string, percent int) Event {
	return Event{JobID: jobID, Kind: KindProgress, Percent: percent}
}

// SuccessEvent builds a completion event carrying the platform video id.
func SuccessEvent(jobID, videoID string) Event {
	return Event{JobID: jobID, Kind: KindSuccess, VideoID: videoID}
}

// WarningEvent builds a non-fatal warning event for a job.
func WarningEvent(jobID, message string) Event {
	return Event{JobID: jobID, Kind: KindWarning, Message: message}
}

// ErrorEvent builds a failure event for a job.
func ErrorEvent(jobID, message string) Event {
	return Event{JobID: jobID, Kind: KindError, Message: message}
}
