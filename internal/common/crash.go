package common

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

// CrashLogDir is where crash reports are written
var CrashLogDir = "./logs"

// InstallCrashHandler sets the crash report directory, creating it if needed
func InstallCrashHandler(logDir string) {
	if logDir != "" {
		CrashLogDir = logDir
	}
	if err := os.MkdirAll(CrashLogDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "CRASH: failed to create log directory: %v\n", err)
	}
}

// CrashReport formats a panic with every goroutine's stack
func CrashReport(panicVal interface{}, at time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "=== GAPPER CRASH REPORT ===\n")
	fmt.Fprintf(&b, "Time: %s\n", at.Format(time.RFC3339))
	fmt.Fprintf(&b, "Version: %s\n", GetFullVersion())
	fmt.Fprintf(&b, "Go: %s %s/%s, %d goroutines\n\n", runtime.Version(), runtime.GOOS, runtime.GOARCH, runtime.NumGoroutine())
	fmt.Fprintf(&b, "=== PANIC ===\n%v\n\n", panicVal)
	fmt.Fprintf(&b, "=== GOROUTINES ===\n%s\n", allStacks())
	return b.String()
}

// WriteCrashFile writes a crash report and returns its path, or "" when the
// report could only be written to stderr.
func WriteCrashFile(panicVal interface{}) string {
	now := time.Now()
	report := CrashReport(panicVal, now)
	path := filepath.Join(CrashLogDir, fmt.Sprintf("crash-%s.log", now.Format("2006-01-02T15-04-05")))

	if err := os.WriteFile(path, []byte(report), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "CRASH: failed to write crash file: %v\n%s", err, report)
		return ""
	}

	fmt.Fprintf(os.Stderr, "\n!!! FATAL CRASH - report saved to %s !!!\nPanic: %v\n", path, panicVal)
	return path
}

// RecoverWithCrashFile writes a crash report and exits. It must be deferred
// directly in main.
func RecoverWithCrashFile() {
	if r := recover(); r != nil {
		WriteCrashFile(r)
		os.Exit(1)
	}
}

func allStacks() string {
	buf := make([]byte, 64*1024)
	for {
		n := runtime.Stack(buf, true)
		if n < len(buf) || len(buf) >= 16*1024*1024 {
			return string(buf[:n])
		}
		buf = make([]byte, len(buf)*2)
	}
}
