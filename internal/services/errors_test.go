package services_test

import (
	"errors"
	"strings"
	"testing"

	"vidlift/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrEncoding, "merging", "ffmpeg", "merge failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrEncoding) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"merging", "ffmpeg", "merge failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsToTransfer(t *testing.T) {
	err := services.Wrap(nil, "uploading", "insert", "connection reset", nil)
	if !errors.Is(err, services.ErrTransfer) {
		t.Fatalf("expected transfer marker for nil marker, got %v", err)
	}
}

func TestIsTerminal(t *testing.T) {
	thumbErr := services.Wrap(services.ErrThumbnail, "attaching_thumbnail", "set", "rejected", nil)
	if services.IsTerminal(thumbErr) {
		t.Fatal("thumbnail errors must not be terminal")
	}
	if !services.IsTerminal(services.Wrap(services.ErrTransfer, "uploading", "insert", "timeout", nil)) {
		t.Fatal("transfer errors must be terminal")
	}
	if services.IsTerminal(nil) {
		t.Fatal("nil error must not be terminal")
	}
}

func TestDetailsStripsMarkerPrefix(t *testing.T) {
	err := services.Wrap(services.ErrCredential, "resolving_credential", "lookup", "no stored credential", nil)
	details := services.Details(err)
	if strings.Contains(details, "credential error:") {
		t.Fatalf("expected marker prefix removed, got %q", details)
	}
	if !strings.Contains(details, "no stored credential") {
		t.Fatalf("expected message retained, got %q", details)
	}
	if services.Details(nil) != "" {
		t.Fatal("expected empty details for nil error")
	}
}
