package debug

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

var (
	file   *os.File
	mu     sync.Mutex
	level  = new(slog.LevelVar)
	logger = slog.Default()
)

// ParseLevel accepts debug, info, warn and error, case-insensitively.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return l, fmt.Errorf("log level %q: %w", s, err)
	}
	return l, nil
}

// Setup installs a text logger writing to w as the process default.
func Setup(w io.Writer, lvl slog.Level) *slog.Logger {
	mu.Lock()
	defer mu.Unlock()
	return setup(w, lvl)
}

func setup(w io.Writer, lvl slog.Level) *slog.Logger {
	level.Set(lvl)
	logger = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level:     level,
		AddSource: lvl <= slog.LevelDebug,
	}))
	slog.SetDefault(logger)
	return logger
}

// Enable sends all logging to dir/debug.log, truncating it. Used while the
// TUI owns the terminal.
func Enable(dir string, lvl slog.Level) (*slog.Logger, error) {
	mu.Lock()
	defer mu.Unlock()

	if file != nil {
		level.Set(lvl)
		return logger, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(filepath.Join(dir, "debug.log"), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return nil, err
	}
	file = f

	l := setup(f, lvl)
	l.Info("=== Debug logging started ===")
	return l, nil
}

// Disable closes the log file and falls back to stderr
func Disable() {
	mu.Lock()
	defer mu.Unlock()

	if file != nil {
		file.Close()
		file = nil
		setup(os.Stderr, level.Level())
	}
}

// Logger returns the current process logger.
func Logger() *slog.Logger {
	mu.Lock()
	defer mu.Unlock()
	return logger
}

// Log writes a formatted debug message tagged with a category.
func Log(category, format string, args ...any) {
	Logger().Debug(fmt.Sprintf(format, args...), "category", category)
}

// LogEvery logs only every N calls (use for high-frequency events)
var counters = make(map[string]int)

func LogEvery(n int, category, format string, args ...any) {
	mu.Lock()
	key := category + format
	counters[key]++
	count := counters[key]
	mu.Unlock()

	if count%n == 0 {
		Log(category, format+" (every %d, count=%d)", append(args, n, count)...)
	}
}
