package fileutil

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// CopyFile streams src to dst using io.Copy with default permissions (0o644).
func CopyFile(src, dst string) error {
	return CopyFileMode(src, dst, 0o644)
}

// CopyFileMode streams src to dst, setting the given file mode on dst.
func CopyFileMode(src, dst string, mode os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}

// StageFile copies src into stagingDir under a job-scoped name and returns
// the staged path. The caller owns the staged copy; the original is left
// untouched.
func StageFile(src, stagingDir, jobID, label string) (string, error) {
	if src == "" {
		return "", errors.New("source path required")
	}
	if err := os.MkdirAll(stagingDir, 0o755); err != nil {
		return "", fmt.Errorf("create staging dir: %w", err)
	}

	staged := filepath.Join(stagingDir, jobID+"-"+label+filepath.Ext(src))
	if err := CopyFile(src, staged); err != nil {
		return "", fmt.Errorf("stage %s: %w", label, err)
	}
	return staged, nil
}

// RemoveAllFiles deletes every named file, ignoring paths that are already
// gone. It returns the paths that could not be removed.
func RemoveAllFiles(paths []string) []string {
	var failed []string
	for _, path := range paths {
		if path == "" {
			continue
		}
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			failed = append(failed, path)
		}
	}
	return failed
}
