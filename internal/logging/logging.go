// Package logging builds the structured loggers used across the harness.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/arenaharness/harness/internal/util"
)

// LogFilePath names the log file of one run, e.g. harness.20260212_213836.log.
func LogFilePath(logsDir, programName string, sessionStart time.Time) string {
	return filepath.Join(logsDir, fmt.Sprintf("%s.%s.log", programName, util.FileTimestamp(sessionStart)))
}

// OpenLogFile creates path and its directory. A file already at path is
// kept as path.old.
func OpenLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create logs directory: %w", err)
	}
	if _, err := os.Stat(path); err == nil {
		if err := os.Rename(path, path+".old"); err != nil {
			return nil, fmt.Errorf("failed to rotate %s: %w", path, err)
		}
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return f, nil
}
