package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrValidation marks requests rejected before any side effect.
	ErrValidation = errors.New("validation error")
	// ErrEncoding marks external encoder failures (non-zero exit or spawn failure).
	ErrEncoding = errors.New("encoding error")
	// ErrCredential marks a missing stored credential for a (user, account) pair.
	ErrCredential = errors.New("credential error")
	// ErrStorage marks local persistence failures (database I/O, schema).
	ErrStorage = errors.New("storage error")
	// ErrAuthorization marks a credential the remote platform rejected as invalid.
	ErrAuthorization = errors.New("authorization error")
	// ErrTransfer marks any other remote platform or network failure during upload.
	ErrTransfer = errors.New("transfer error")
	// ErrThumbnail marks a non-fatal thumbnail attach failure.
	ErrThumbnail = errors.New("thumbnail error")
)

// Wrap builds an error message that includes stage context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrTransfer
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsTerminal reports whether an error fails the job outright. Thumbnail
// failures are downgraded to warnings by the coordinator.
func IsTerminal(err error) bool {
	if err == nil {
		return false
	}
	return !errors.Is(err, ErrThumbnail)
}

// Details extracts the human-readable portion of a wrapped error, stripping
// the sentinel prefix so progress events carry a clean reason.
func Details(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	for _, marker := range []error{ErrValidation, ErrEncoding, ErrCredential, ErrStorage, ErrAuthorization, ErrTransfer, ErrThumbnail} {
		prefix := marker.Error() + ": "
		if strings.HasPrefix(msg, prefix) {
			return strings.TrimSpace(strings.TrimPrefix(msg, prefix))
		}
	}
	return strings.TrimSpace(msg)
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
