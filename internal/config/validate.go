package config

import (
	"errors"
	"fmt"
	"strings"
)

var knownPrivacyStatuses = map[string]struct{}{
	"public":   {},
	"unlisted": {},
	"private":  {},
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validatePlatform(); err != nil {
		return err
	}
	if err := c.validateEncoder(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.StagingDir) == "" {
		return errors.New("paths.staging_dir must be set")
	}
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		return errors.New("paths.data_dir must be set")
	}
	if strings.TrimSpace(c.Paths.SocketPath) == "" {
		return errors.New("paths.socket_path must be set")
	}
	return nil
}

func (c *Config) validatePlatform() error {
	if strings.TrimSpace(c.Platform.APIBaseURL) == "" {
		return errors.New("platform.api_base_url must be set")
	}
	if c.Platform.UploadTimeout <= 0 {
		return errors.New("platform.upload_timeout must be positive (seconds)")
	}
	if c.Platform.ProgressChunkKiB <= 0 {
		return errors.New("platform.progress_chunk_kib must be positive")
	}
	if _, ok := knownPrivacyStatuses[c.Platform.DefaultPrivacy]; !ok {
		return fmt.Errorf("platform.default_privacy must be one of public, unlisted, private (got %q)", c.Platform.DefaultPrivacy)
	}
	return nil
}

func (c *Config) validateEncoder() error {
	if strings.TrimSpace(c.Encoder.FFmpegBinary) == "" {
		return errors.New("encoder.ffmpeg_binary must be set")
	}
	if c.Encoder.MergeTimeout <= 0 {
		return errors.New("encoder.merge_timeout must be positive (seconds)")
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	if c.Workflow.MaxActiveJobs < 1 {
		return errors.New("workflow.max_active_jobs must be >= 1")
	}
	if c.Workflow.WatchWaitMillis <= 0 {
		return errors.New("workflow.watch_wait_millis must be positive")
	}
	return nil
}
