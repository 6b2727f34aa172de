package home

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNew(t *testing.T) {
	t.Run("with explicit path", func(t *testing.T) {
		dir, err := New("/tmp/test-surveytab")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if dir.Path() != "/tmp/test-surveytab" {
			t.Errorf("expected path /tmp/test-surveytab, got %s", dir.Path())
		}
	})

	t.Run("with empty path uses default", func(t *testing.T) {
		dir, err := New("")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		home, _ := os.UserHomeDir()
		expected := filepath.Join(home, DefaultDirName)
		if dir.Path() != expected {
			t.Errorf("expected path %s, got %s", expected, dir.Path())
		}
	})
}

func TestDir_Paths(t *testing.T) {
	dir, _ := New("/tmp/test-surveytab")

	tests := []struct {
		name     string
		got      string
		expected string
	}{
		{"ConfigPath", dir.ConfigPath(), "/tmp/test-surveytab/config.yaml"},
		{"DotEnvPath", dir.DotEnvPath(), "/tmp/test-surveytab/.env"},
		{"RunsDir", dir.RunsDir(), "/tmp/test-surveytab/runs"},
		{"PagesDir", dir.PagesDir("r1"), "/tmp/test-surveytab/runs/r1/pages"},
		{"CallsPath", dir.CallsPath("r1"), "/tmp/test-surveytab/runs/r1/calls.jsonl"},
		{"LogPath", dir.LogPath("r1"), "/tmp/test-surveytab/runs/r1/surveytab.log"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, tt.got)
			}
		})
	}
}

func TestDir_EnsureExists(t *testing.T) {
	dir, err := New(filepath.Join(t.TempDir(), "surveytab-test"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if dir.Exists() {
		t.Error("expected directory to not exist initially")
	}
	if err := dir.EnsureExists(); err != nil {
		t.Fatalf("EnsureExists failed: %v", err)
	}
	if !dir.Exists() {
		t.Error("expected directory to exist after EnsureExists")
	}
	if _, err := os.Stat(dir.RunsDir()); err != nil {
		t.Errorf("runs directory missing: %v", err)
	}
	if dir.ConfigExists() {
		t.Error("config should not exist yet")
	}
}

func TestNewRunID(t *testing.T) {
	now := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	id := NewRunID(now)
	if !strings.HasPrefix(id, "20260304-050607-") {
		t.Errorf("NewRunID() = %q, want timestamp prefix", id)
	}
	if len(id) != len("20260304-050607-")+8 {
		t.Errorf("NewRunID() = %q, want 8-char suffix", id)
	}
	if NewRunID(now) == id {
		t.Error("run IDs should be unique")
	}
}

func TestDir_Runs(t *testing.T) {
	dir, _ := New(t.TempDir())

	t.Run("no runs yet", func(t *testing.T) {
		runs, err := dir.ListRuns()
		if err != nil {
			t.Fatalf("ListRuns() error = %v", err)
		}
		if len(runs) != 0 {
			t.Errorf("ListRuns() = %v, want empty", runs)
		}
		if _, err := dir.LatestRun(); err == nil {
			t.Error("LatestRun() should fail with no runs")
		}
	})

	t.Run("lists oldest first", func(t *testing.T) {
		for _, id := range []string{"20260102-000000-bbbbbbbb", "20260101-000000-aaaaaaaa"} {
			if err := dir.EnsureRunDir(id); err != nil {
				t.Fatalf("EnsureRunDir() error = %v", err)
			}
		}
		runs, err := dir.ListRuns()
		if err != nil {
			t.Fatalf("ListRuns() error = %v", err)
		}
		if len(runs) != 2 || runs[0] != "20260101-000000-aaaaaaaa" {
			t.Errorf("ListRuns() = %v", runs)
		}
		latest, err := dir.LatestRun()
		if err != nil || latest != "20260102-000000-bbbbbbbb" {
			t.Errorf("LatestRun() = %q, %v", latest, err)
		}
		if _, err := os.Stat(dir.PagesDir(latest)); err != nil {
			t.Errorf("pages directory missing: %v", err)
		}
	})
}
