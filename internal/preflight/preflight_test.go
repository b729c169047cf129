package preflight

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"datefixer/internal/config"
)

type stubVersioner struct {
	version string
	err     error
}

func (s stubVersioner) Version(context.Context) (string, error) { return s.version, s.err }

func installFakeExiftool(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	name := "exiftool"
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatalf("write exiftool stub: %v", err)
	}
	t.Setenv("PATH", dir)
	return path
}

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_CreatedOnDemand(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "state", "logs"))
	if !result.Passed {
		t.Fatalf("expected pass for creatable dir, got: %s", result.Detail)
	}
	if !strings.Contains(result.Detail, "will be created") {
		t.Fatalf("unexpected detail %q", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckRoot(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "IMG_20200101_120000.jpg")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	if r := CheckRoot(dir); !r.Passed {
		t.Fatalf("expected directory root to pass: %s", r.Detail)
	}
	if r := CheckRoot(file); !r.Passed {
		t.Fatalf("expected file root to pass: %s", r.Detail)
	}
	if r := CheckRoot(filepath.Join(dir, "missing")); r.Passed || r.Detail != "does not exist" {
		t.Fatalf("expected missing root to fail, got %#v", r)
	}
}

func TestCheckExiftool(t *testing.T) {
	path := installFakeExiftool(t)

	r := CheckExiftool(context.Background(), "exiftool", stubVersioner{version: "13.10\n"})
	if !r.Passed {
		t.Fatalf("expected pass, got: %s", r.Detail)
	}
	if r.Detail != path+" (version 13.10)" {
		t.Fatalf("unexpected detail %q", r.Detail)
	}

	r = CheckExiftool(context.Background(), "exiftool", stubVersioner{err: errors.New("broken pipe")})
	if r.Passed {
		t.Fatal("expected failure when version query fails")
	}

	r = CheckExiftool(context.Background(), "not-exiftool", nil)
	if r.Passed {
		t.Fatal("expected failure for missing binary")
	}
}

func TestRunAll_NilConfig(t *testing.T) {
	if results := RunAll(context.Background(), nil, nil, nil); results != nil {
		t.Fatal("expected nil results for nil config")
	}
}

func TestRunAll(t *testing.T) {
	installFakeExiftool(t)
	state := t.TempDir()

	cfg := config.Default()
	cfg.Exiftool.Binary = "exiftool"
	cfg.Paths.LogDir = filepath.Join(state, "logs")
	cfg.Paths.JournalPath = filepath.Join(state, "journal.db")
	cfg.Journal.Enabled = true

	results := RunAll(context.Background(), &cfg, []string{t.TempDir(), filepath.Join(state, "missing")}, nil)
	if len(results) != 5 {
		t.Fatalf("expected 5 results, got %d: %#v", len(results), results)
	}
	failed := Failed(results)
	if len(failed) != 1 || !strings.HasSuffix(failed[0].Name, "missing") {
		t.Fatalf("expected only the missing root to fail, got %#v", failed)
	}
}
