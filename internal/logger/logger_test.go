package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestHelpersAreSafeBeforeInit(t *testing.T) {
	old := Logger
	defer func() { Logger = old }()
	Logger = nil

	Debug("debug", "k", 1)
	Info("info")
	Warn("warn")
	Error("error")
	if With("k", "v") != nil {
		t.Error("expected nil child logger before init")
	}
}

func TestInitCreatesLogFile(t *testing.T) {
	old := Logger
	defer func() { Logger = old }()

	dir := t.TempDir()
	if err := Init(Config{StateDir: dir}); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	Info("recompute finished", "scheduled", 3)

	path := filepath.Join(dir, "logs", "versecue.log")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("expected log file at %s: %v", path, err)
	}
	if !strings.Contains(string(data), "recompute finished") {
		t.Errorf("log file missing message, got %q", string(data))
	}
}

func TestInitWriterLevels(t *testing.T) {
	old := Logger
	defer func() { Logger = old }()

	var buf bytes.Buffer
	InitWriter(&buf, false)
	Debug("hidden")
	Warn("shown", "id", "dailyReminder-2024-05-01")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("debug message should be filtered, got %q", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "dailyReminder-2024-05-01") {
		t.Errorf("expected warn message with keyvals, got %q", out)
	}
}
