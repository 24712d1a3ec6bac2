package bridge

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// dailyRollingLogWriter appends to <base>-YYYY-MM-DD<ext>, rotating at
// midnight and pruning files older than keepDays.
type dailyRollingLogWriter struct {
	mu          sync.Mutex
	dir         string
	baseName    string
	ext         string
	keepDays    int
	currentDay  string
	current     *os.File
	currentPath string
}

func newDailyRollingLogWriter(basePath string, keepDays int) (*dailyRollingLogWriter, string, error) {
	if keepDays <= 0 {
		keepDays = 7
	}
	w := &dailyRollingLogWriter{
		dir:      filepath.Dir(basePath),
		baseName: strings.TrimSuffix(filepath.Base(basePath), filepath.Ext(basePath)),
		ext:      filepath.Ext(basePath),
		keepDays: keepDays,
	}
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return nil, "", err
	}
	if err := w.rotateLocked(time.Now()); err != nil {
		return nil, "", err
	}
	return w, w.currentPath, nil
}

func (w *dailyRollingLogWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.rotateLocked(time.Now()); err != nil {
		return 0, err
	}
	if w.current == nil {
		return 0, fmt.Errorf("log file is closed")
	}
	return w.current.Write(p)
}

func (w *dailyRollingLogWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.current == nil {
		return nil
	}
	err := w.current.Close()
	w.current = nil
	return err
}

func (w *dailyRollingLogWriter) rotateLocked(now time.Time) error {
	day := now.Format("2006-01-02")
	if day == w.currentDay && w.current != nil {
		return nil
	}
	if w.current != nil {
		_ = w.current.Close()
		w.current = nil
	}
	path := filepath.Join(w.dir, fmt.Sprintf("%s-%s%s", w.baseName, day, w.ext))
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	w.current = f
	w.currentDay = day
	w.currentPath = path
	w.cleanupLocked(now)
	return nil
}

func (w *dailyRollingLogWriter) cleanupLocked(now time.Time) {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return
	}
	cutoff := now.AddDate(0, 0, -(w.keepDays - 1))
	prefix := w.baseName + "-"
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, w.ext) {
			continue
		}
		dayPart := strings.TrimSuffix(strings.TrimPrefix(name, prefix), w.ext)
		fileDay, err := time.Parse("2006-01-02", dayPart)
		if err != nil {
			continue
		}
		if fileDay.Before(cutoff) {
			_ = os.Remove(filepath.Join(w.dir, name))
		}
	}
}

// openBridgeLogFile opens the debug log, honoring ZCLAWBRIDGE_LOG for the
// base path and defaulting to ~/.zclawbridge/logs/bridge.log.
func openBridgeLogFile() (io.WriteCloser, string, error) {
	logPath := strings.TrimSpace(os.Getenv("ZCLAWBRIDGE_LOG"))
	if logPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, "", err
		}
		logPath = filepath.Join(home, ".zclawbridge", "logs", "bridge.log")
	}
	w, rollingPath, err := newDailyRollingLogWriter(logPath, 7)
	if err != nil {
		return nil, "", err
	}
	_, _ = fmt.Fprintf(w, "%s [bridge] logger initialized\n", time.Now().Format(time.RFC3339))
	return w, rollingPath, nil
}

func logfTo(w io.Writer) func(format string, args ...any) {
	var mu sync.Mutex
	return func(format string, args ...any) {
		mu.Lock()
		defer mu.Unlock()
		_, _ = fmt.Fprintf(w, "%s [bridge] "+format+"\n", append([]any{time.Now().Format(time.RFC3339)}, args...)...)
	}
}
