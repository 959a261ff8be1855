package platform

import (
	"context"
	"net/http"
	"strings"
	"time"
)

// InsertRequest carries everything needed to publish one video.
type InsertRequest struct {
	FilePath      string
	AccessToken   string
	Title         string
	Description   string
	Tags          string
	CategoryID    string
	PrivacyStatus string
	OnProgress    func(percent int)
}

// Client defines remote video platform behaviour.
type Client interface {
	Insert(ctx context.Context, req InsertRequest) (string, error)
	SetThumbnail(ctx context.Context, accessToken, videoID, imagePath string) error
}

// Option configures the HTTP client.
type Option func(*HTTP)

// WithHTTPClient overrides the underlying http.Client.
func WithHTTPClient(client *http.Client) Option {
	return func(h *HTTP) {
		if client != nil {
			h.client = client
		}
	}
}

// WithTimeout sets the overall request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(h *HTTP) {
		if timeout > 0 {
			h.client.Timeout = timeout
		}
	}
}

// WithProgressChunkKiB sets the copy buffer size used while streaming the
// media part. Smaller chunks yield finer-grained progress callbacks.
func WithProgressChunkKiB(kib int) Option {
	return func(h *HTTP) {
		if kib > 0 {
			h.chunkSize = kib * 1024
		}
	}
}

// HTTP talks to the platform's upload API.
type HTTP struct {
	baseURL   string
	client    *http.Client
	chunkSize int
}

// NewHTTP constructs an HTTP client for the given API base URL.
func NewHTTP(baseURL string, opts ...Option) *HTTP {
	h := &HTTP{
		baseURL:   strings.TrimRight(baseURL, "/"),
		client:    &http.Client{Timeout: time.Hour},
		chunkSize: 256 * 1024,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

var _ Client = (*HTTP)(nil)

// SplitTags splits a comma-separated tag string, trimming whitespace and
// dropping blanks.
func SplitTags(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	tags := make([]string, 0, len(parts))
	for _, part := range parts {
		tag := strings.TrimSpace(part)
		if tag != "" {
			tags = append(tags, tag)
		}
	}
	if len(tags) == 0 {
		return nil
	}
	return tags
}
