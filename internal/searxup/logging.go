package searxup

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// RunLog is the timestamped log file for one installer run. Every
// message is written to the file; warnings and errors are also echoed
// to stderr. The path is printed at startup so the operator can tail
// it while the run is in flight.
type RunLog struct {
	file *os.File
	path string
}

// OpenRunLog creates logs/searxup-<timestamp>.log under dir.
func OpenRunLog(dir string) (*RunLog, error) {
	logDir := filepath.Join(dir, "logs")
	if err := ensureDir(logDir, 0o750); err != nil {
		return nil, err
	}
	path := filepath.Join(logDir, "searxup-"+time.Now().Format("20060102-150405")+".log")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o640)
	if err != nil {
		return nil, fmt.Errorf("open run log: %w", err)
	}
	return &RunLog{file: f, path: path}, nil
}

func (l *RunLog) Path() string { return l.path }

func (l *RunLog) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	return l.file.Close()
}

// Writer exposes the raw file for mirroring external tool output.
func (l *RunLog) Writer() io.Writer {
	if l == nil || l.file == nil {
		return io.Discard
	}
	return l.file
}

func (l *RunLog) Infof(format string, args ...any)  { l.write("INFO", false, format, args...) }
func (l *RunLog) Warnf(format string, args ...any)  { l.write("WARN", true, format, args...) }
func (l *RunLog) Errorf(format string, args ...any) { l.write("ERROR", true, format, args...) }

func (l *RunLog) write(level string, echo bool, format string, args ...any) {
	line := fmt.Sprintf("%s [%s] %s\n",
		time.Now().Format("2006-01-02 15:04:05"), level, fmt.Sprintf(format, args...))
	if l != nil && l.file != nil {
		_, _ = l.file.WriteString(line)
	}
	if echo {
		fmt.Fprintf(os.Stderr, "[%s] %s\n", level, fmt.Sprintf(format, args...))
	}
}
