package debug_test

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nyejames/midi-lx/debug"
)

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]slog.Level{
		"debug": slog.LevelDebug,
		"INFO":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	} {
		got, err := debug.ParseLevel(in)
		if err != nil || got != want {
			t.Fatalf("%s: Expected %v. Got: %v (%v)", in, want, got, err)
		}
	}
	if _, err := debug.ParseLevel("loud"); err == nil {
		t.Fatal("Expected error")
	}
}

func TestLogCategories(t *testing.T) {
	var buf bytes.Buffer
	debug.Setup(&buf, slog.LevelDebug)
	t.Cleanup(func() { debug.Setup(os.Stderr, slog.LevelInfo) })

	debug.Log("desk", "sent %s", "1A")
	for i := 0; i < 4; i++ {
		debug.LogEvery(2, "wheel", "level %d", i)
	}

	out := buf.String()
	if !strings.Contains(out, "sent 1A") || !strings.Contains(out, "category=desk") {
		t.Fatalf("missing categorised line in %q", out)
	}
	if n := strings.Count(out, "category=wheel"); n != 2 {
		t.Fatalf("Expected 2 wheel lines. Got: %d", n)
	}
}

func TestLevelFilters(t *testing.T) {
	var buf bytes.Buffer
	debug.Setup(&buf, slog.LevelInfo)
	t.Cleanup(func() { debug.Setup(os.Stderr, slog.LevelInfo) })

	debug.Log("desk", "hidden")
	if buf.Len() != 0 {
		t.Fatalf("Expected nothing at info level. Got: %q", buf.String())
	}
}

func TestEnable(t *testing.T) {
	dir := t.TempDir()
	l, err := debug.Enable(dir, slog.LevelInfo)
	if err != nil {
		t.Fatalf("Expected nil. Got: %v", err)
	}
	l.Info("hello file")
	debug.Disable()
	t.Cleanup(func() { debug.Setup(os.Stderr, slog.LevelInfo) })

	data, err := os.ReadFile(filepath.Join(dir, "debug.log"))
	if err != nil {
		t.Fatalf("Expected nil. Got: %v", err)
	}
	if !strings.Contains(string(data), "hello file") {
		t.Fatalf("log file missing message: %q", data)
	}
}
