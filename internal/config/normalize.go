package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizePlatform()
	c.normalizeEncoder()
	c.normalizeWorkflow()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.StagingDir, err = expandPath(c.Paths.StagingDir); err != nil {
		return fmt.Errorf("paths.staging_dir: %w", err)
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if value, ok := os.LookupEnv("VIDLIFT_SOCKET"); ok && strings.TrimSpace(value) != "" {
		c.Paths.SocketPath = strings.TrimSpace(value)
	}
	if strings.TrimSpace(c.Paths.SocketPath) == "" {
		c.Paths.SocketPath = defaultSocketPath
	}
	if c.Paths.SocketPath, err = expandPath(c.Paths.SocketPath); err != nil {
		return fmt.Errorf("paths.socket_path: %w", err)
	}
	return nil
}

func (c *Config) normalizePlatform() {
	if value, ok := os.LookupEnv("VIDLIFT_API_BASE_URL"); ok && strings.TrimSpace(value) != "" {
		c.Platform.APIBaseURL = value
	}
	c.Platform.APIBaseURL = strings.TrimRight(strings.TrimSpace(c.Platform.APIBaseURL), "/")
	if c.Platform.APIBaseURL == "" {
		c.Platform.APIBaseURL = defaultAPIBaseURL
	}
	if c.Platform.UploadTimeout <= 0 {
		c.Platform.UploadTimeout = defaultUploadTimeout
	}
	if c.Platform.ProgressChunkKiB <= 0 {
		c.Platform.ProgressChunkKiB = defaultProgressChunkKiB
	}
	c.Platform.DefaultCategoryID = strings.TrimSpace(c.Platform.DefaultCategoryID)
	if c.Platform.DefaultCategoryID == "" {
		c.Platform.DefaultCategoryID = defaultCategoryID
	}
	c.Platform.DefaultPrivacy = strings.ToLower(strings.TrimSpace(c.Platform.DefaultPrivacy))
	if c.Platform.DefaultPrivacy == "" {
		c.Platform.DefaultPrivacy = defaultPrivacy
	}
}

func (c *Config) normalizeEncoder() {
	c.Encoder.FFmpegBinary = strings.TrimSpace(c.Encoder.FFmpegBinary)
	if c.Encoder.FFmpegBinary == "" {
		c.Encoder.FFmpegBinary = defaultFFmpegBinary
	}
	if c.Encoder.MergeTimeout <= 0 {
		c.Encoder.MergeTimeout = defaultMergeTimeout
	}
}

func (c *Config) normalizeWorkflow() {
	if c.Workflow.MaxActiveJobs <= 0 {
		c.Workflow.MaxActiveJobs = defaultMaxActiveJobs
	}
	if c.Workflow.WatchWaitMillis <= 0 {
		c.Workflow.WatchWaitMillis = defaultWatchWaitMillis
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
