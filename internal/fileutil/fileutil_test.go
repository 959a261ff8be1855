package fileutil_test

import (
	"os"
	"path/filepath"
	"testing"

	"vidlift/internal/fileutil"
	"vidlift/internal/testsupport"
)

func TestStageFileCopiesIntoStagingDir(t *testing.T) {
	src := filepath.Join(t.TempDir(), "clip.mp4")
	testsupport.WriteFile(t, src, 1024)
	staging := filepath.Join(t.TempDir(), "staging")

	staged, err := fileutil.StageFile(src, staging, "job-1", "video")
	if err != nil {
		t.Fatalf("StageFile: %v", err)
	}
	if filepath.Dir(staged) != staging {
		t.Fatalf("staged file outside staging dir: %q", staged)
	}
	if filepath.Ext(staged) != ".mp4" {
		t.Fatalf("expected extension preserved, got %q", staged)
	}

	info, err := os.Stat(staged)
	if err != nil {
		t.Fatalf("stat staged: %v", err)
	}
	if info.Size() != 1024 {
		t.Fatalf("expected full copy, got %d bytes", info.Size())
	}
	if _, err := os.Stat(src); err != nil {
		t.Fatalf("original should remain: %v", err)
	}
}

func TestStageFileMissingSource(t *testing.T) {
	if _, err := fileutil.StageFile("", t.TempDir(), "job-1", "video"); err == nil {
		t.Fatal("expected error for empty source")
	}
	if _, err := fileutil.StageFile("/nonexistent/clip.mp4", t.TempDir(), "job-1", "video"); err == nil {
		t.Fatal("expected error for missing source")
	}
}

func TestRemoveAllFilesIgnoresMissing(t *testing.T) {
	dir := t.TempDir()
	present := filepath.Join(dir, "present.mp4")
	testsupport.WriteFile(t, present, 16)

	failed := fileutil.RemoveAllFiles([]string{present, filepath.Join(dir, "gone.mp4"), ""})
	if len(failed) != 0 {
		t.Fatalf("expected no failures, got %v", failed)
	}
	if _, err := os.Stat(present); !os.IsNotExist(err) {
		t.Fatalf("expected file removed, got %v", err)
	}
}
