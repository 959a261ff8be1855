package platform_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"vidlift/internal/platform"
	"vidlift/internal/services"
	"vidlift/internal/testsupport"
)

func TestInsertStreamsMultipartAndReturnsVideoID(t *testing.T) {
	var (
		gotAuth     string
		gotMetadata map[string]any
		gotMedia    []byte
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/videos" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("uploadType"); got != "multipart" {
			t.Errorf("unexpected uploadType %q", got)
		}
		gotAuth = r.Header.Get("Authorization")

		mediaType, params, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
		if err != nil || mediaType != "multipart/related" {
			t.Errorf("unexpected content type %q (%v)", r.Header.Get("Content-Type"), err)
		}
		reader := multipart.NewReader(r.Body, params["boundary"])

		part, err := reader.NextPart()
		if err != nil {
			t.Errorf("metadata part: %v", err)
			return
		}
		if err := json.NewDecoder(part).Decode(&gotMetadata); err != nil {
			t.Errorf("decode metadata: %v", err)
		}

		part, err = reader.NextPart()
		if err != nil {
			t.Errorf("media part: %v", err)
			return
		}
		gotMedia, _ = io.ReadAll(part)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"vid-42"}`))
	}))
	defer server.Close()

	videoPath := filepath.Join(t.TempDir(), "video.mp4")
	testsupport.WriteFile(t, videoPath, 2048)

	var percents []int
	client := platform.NewHTTP(server.URL)
	videoID, err := client.Insert(context.Background(), platform.InsertRequest{
		FilePath:      videoPath,
		AccessToken:   "tok-1",
		Title:         "My Upload",
		Description:   "A description",
		Tags:          "go, testing, , video",
		CategoryID:    "22",
		PrivacyStatus: "public",
		OnProgress:    func(pct int) { percents = append(percents, pct) },
	})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if videoID != "vid-42" {
		t.Fatalf("unexpected video id %q", videoID)
	}
	if gotAuth != "Bearer tok-1" {
		t.Fatalf("unexpected auth header %q", gotAuth)
	}
	if len(gotMedia) != 2048 {
		t.Fatalf("expected full media payload, got %d bytes", len(gotMedia))
	}

	snippet, ok := gotMetadata["snippet"].(map[string]any)
	if !ok {
		t.Fatalf("missing snippet in metadata: %v", gotMetadata)
	}
	if snippet["title"] != "My Upload" || snippet["categoryId"] != "22" {
		t.Fatalf("unexpected snippet: %v", snippet)
	}
	tags, _ := snippet["tags"].([]any)
	if !reflect.DeepEqual(tags, []any{"go", "testing", "video"}) {
		t.Fatalf("unexpected tags: %v", tags)
	}
	status, _ := gotMetadata["status"].(map[string]any)
	if status["privacyStatus"] != "public" {
		t.Fatalf("unexpected status: %v", status)
	}

	if len(percents) == 0 {
		t.Fatal("expected progress callbacks")
	}
	last := -1
	for _, pct := range percents {
		if pct <= last {
			t.Fatalf("progress not strictly increasing: %v", percents)
		}
		last = pct
	}
	if last != 100 {
		t.Fatalf("expected final progress of 100, got %d", last)
	}
}

func TestInsertRejectsBlankTitle(t *testing.T) {
	client := platform.NewHTTP("http://unused.invalid")
	_, err := client.Insert(context.Background(), platform.InsertRequest{
		FilePath:    "/tmp/video.mp4",
		AccessToken: "tok",
		Title:       "   ",
	})
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestInsertInvalidGrantMapsToAuthorization(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
	}))
	defer server.Close()

	videoPath := filepath.Join(t.TempDir(), "video.mp4")
	testsupport.WriteFile(t, videoPath, 64)

	client := platform.NewHTTP(server.URL)
	_, err := client.Insert(context.Background(), platform.InsertRequest{
		FilePath:    videoPath,
		AccessToken: "stale",
		Title:       "Title",
	})
	if !errors.Is(err, services.ErrAuthorization) {
		t.Fatalf("expected authorization error, got %v", err)
	}
}

func TestInsertServerErrorMapsToTransfer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"backend exploded"}}`))
	}))
	defer server.Close()

	videoPath := filepath.Join(t.TempDir(), "video.mp4")
	testsupport.WriteFile(t, videoPath, 64)

	client := platform.NewHTTP(server.URL)
	_, err := client.Insert(context.Background(), platform.InsertRequest{
		FilePath:    videoPath,
		AccessToken: "tok",
		Title:       "Title",
	})
	if !errors.Is(err, services.ErrTransfer) {
		t.Fatalf("expected transfer error, got %v", err)
	}
	if msg := err.Error(); !strings.Contains(msg, "backend exploded") {
		t.Fatalf("expected server message in error, got %q", msg)
	}
}

func TestSetThumbnail(t *testing.T) {
	var gotVideoID, gotContentType string
	var gotBytes int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/thumbnails/set" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		gotVideoID = r.URL.Query().Get("videoId")
		gotContentType = r.Header.Get("Content-Type")
		payload, _ := io.ReadAll(r.Body)
		gotBytes = len(payload)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	imagePath := filepath.Join(t.TempDir(), "thumb.png")
	testsupport.WriteFile(t, imagePath, 512)

	client := platform.NewHTTP(server.URL)
	if err := client.SetThumbnail(context.Background(), "tok", "vid-42", imagePath); err != nil {
		t.Fatalf("SetThumbnail: %v", err)
	}
	if gotVideoID != "vid-42" {
		t.Fatalf("unexpected video id %q", gotVideoID)
	}
	if gotContentType != "image/png" {
		t.Fatalf("unexpected content type %q", gotContentType)
	}
	if gotBytes != 512 {
		t.Fatalf("expected full image payload, got %d bytes", gotBytes)
	}
}

func TestSetThumbnailFailureCarriesThumbnailMarker(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"message":"thumbnails not allowed"}}`))
	}))
	defer server.Close()

	imagePath := filepath.Join(t.TempDir(), "thumb.jpg")
	testsupport.WriteFile(t, imagePath, 64)

	client := platform.NewHTTP(server.URL)
	err := client.SetThumbnail(context.Background(), "tok", "vid-42", imagePath)
	if !errors.Is(err, services.ErrThumbnail) {
		t.Fatalf("expected thumbnail marker, got %v", err)
	}
	if services.IsTerminal(err) {
		t.Fatal("thumbnail failures must not be terminal")
	}
}

func TestSplitTags(t *testing.T) {
	cases := []struct {
		raw  string
		want []string
	}{
		{"a,b,c", []string{"a", "b", "c"}},
		{" a , , b ", []string{"a", "b"}},
		{"", nil},
		{" , ,", nil},
		{"solo", []string{"solo"}},
	}
	for _, tc := range cases {
		if got := platform.SplitTags(tc.raw); !reflect.DeepEqual(got, tc.want) {
			t.Errorf("SplitTags(%q) = %v, want %v", tc.raw, got, tc.want)
		}
	}
}
