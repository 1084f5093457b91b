// Package logging wires slog handlers for the chart tools and adapts zerolog
// to the dispatcher's logger interface.
package logging

import (
	"fmt"
	"path/filepath"
	"time"
)

// LogFilePath builds a log file path using OS-appropriate path separators.
func LogFilePath(logsDir, appName string, sessionStart time.Time) string {
	return filepath.Join(
		logsDir,
		fmt.Sprintf("%s.%s.log", appName, sessionStart.Format("20060102_150405")),
	)
}

// InteractionBackupPath is where interaction telemetry is kept when InfluxDB
// cannot be reached. One file is shared across sessions and appended to.
func InteractionBackupPath(logsDir, appName string) string {
	return filepath.Join(logsDir, appName+".interactions.gz")
}
