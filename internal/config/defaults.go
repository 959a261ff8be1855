package config

const (
	defaultStagingDir        = "~/.local/share/vidlift/staging"
	defaultDataDir           = "~/.local/share/vidlift"
	defaultLogDir            = "~/.local/share/vidlift/logs"
	defaultSocketPath        = "~/.local/share/vidlift/vidliftd.sock"
	defaultAPIBaseURL        = "https://www.googleapis.com/upload/youtube/v3"
	defaultUploadTimeout     = 3600
	defaultProgressChunkKiB  = 256
	defaultCategoryID        = "22"
	defaultPrivacy           = "public"
	defaultFFmpegBinary      = "ffmpeg"
	defaultMergeTimeout      = 1800
	defaultMaxActiveJobs     = 4
	defaultWatchWaitMillis   = 1000
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StagingDir: defaultStagingDir,
			DataDir:    defaultDataDir,
			LogDir:     defaultLogDir,
			SocketPath: defaultSocketPath,
		},
		Platform: Platform{
			APIBaseURL:        defaultAPIBaseURL,
			UploadTimeout:     defaultUploadTimeout,
			ProgressChunkKiB:  defaultProgressChunkKiB,
			DefaultCategoryID: defaultCategoryID,
			DefaultPrivacy:    defaultPrivacy,
		},
		Encoder: Encoder{
			FFmpegBinary: defaultFFmpegBinary,
			MergeTimeout: defaultMergeTimeout,
		},
		Workflow: Workflow{
			MaxActiveJobs:   defaultMaxActiveJobs,
			WatchWaitMillis: defaultWatchWaitMillis,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
