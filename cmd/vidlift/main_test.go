package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"vidlift/internal/ipc"
)

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := newRootCommand()
	want := []string{"upload", "history", "watch", "status", "stop", "config", "daemon"}
	for _, name := range want {
		found := false
		for _, cmd := range root.Commands() {
			if cmd.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("missing subcommand %q", name)
		}
	}
}

func TestConfigInitWritesSample(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")

	root := newRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"config", "init", "--path", target})

	if err := root.Execute(); err != nil {
		t.Fatalf("config init: %v", err)
	}

	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "[platform]") {
		t.Fatalf("sample config missing platform section:\n%s", data)
	}
	if !strings.Contains(out.String(), target) {
		t.Fatalf("expected confirmation output, got %q", out.String())
	}
}

func TestConfigInitRefusesOverwrite(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(target, []byte("# existing"), 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	root := newRootCommand()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"config", "init", "--path", target})

	if err := root.Execute(); err == nil {
		t.Fatal("expected refusal without --overwrite")
	}
}

func TestPrintResult(t *testing.T) {
	var out bytes.Buffer
	err := printResult(&out, ipc.JobResult{JobID: "j1", Status: "completed", VideoID: "v1"})
	if err != nil {
		t.Fatalf("completed result: %v", err)
	}
	if !strings.Contains(out.String(), "v1") {
		t.Fatalf("expected video id in output, got %q", out.String())
	}

	if err := printResult(&out, ipc.JobResult{JobID: "j2", Status: "failed", Error: "boom"}); err == nil {
		t.Fatal("expected error for failed result")
	}
	if err := printResult(&out, ipc.JobResult{JobID: "j3", Status: "cancelled"}); err == nil {
		t.Fatal("expected error for cancelled result")
	}
}

func TestPrintEventFormats(t *testing.T) {
	var out bytes.Buffer
	printEvent(&out, ipc.ProgressEvent{Kind: "status", Status: "resolving_credential"})
	printEvent(&out, ipc.ProgressEvent{Kind: "progress", Percent: 42})
	printEvent(&out, ipc.ProgressEvent{Kind: "success", VideoID: "vid-1"})

	text := out.String()
	for _, want := range []string{"resolving credential", "42%", "vid-1"} {
		if !strings.Contains(text, want) {
			t.Errorf("output missing %q:\n%s", want, text)
		}
	}
}
