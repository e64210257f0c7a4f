// Package logfile appends received log messages to the tenant's append-only
// remote log file.
package logfile

import (
	"fmt"
	"os"
	"time"
)

// timeLayout is the fixed, locale-independent timestamp format of a log line.
const timeLayout = "2006-01-02 15:04:05"

// Appender writes timestamped lines to a single append-only file. The file is
// opened and closed per write so no handle is shared across concurrent
// requests; the underlying O_APPEND write keeps single lines intact.
type Appender struct {
	path string
	now  func() time.Time
}

// New creates an Appender for the given file path.
func New(path string) *Appender {
	return &Appender{path: path, now: time.Now}
}

// Path returns the log file path.
func (a *Appender) Path() string {
	return a.path
}

// Append writes one line formatted as
//
//	<YYYY-MM-DD HH:MM:SS> | REMOTE_LOG | <message>
//
// and flushes it to disk. The file handle is released on every exit path.
// Errors are returned to the caller, which treats the append as best-effort.
func (a *Appender) Append(message string) error {
	f, err := os.OpenFile(a.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}

	line := a.now().Format(timeLayout) + " | REMOTE_LOG | " + message + "\n"
	if _, err := f.WriteString(line); err != nil {
		_ = f.Close()
		return fmt.Errorf("write log line: %w", err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return fmt.Errorf("sync log file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close log file: %w", err)
	}
	return nil
}
