package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
)

func CheckDebug() bool {
	debug := os.Getenv("MDXPAD_DEBUG")
	return debug == "true" || debug == "1"
}

// InitDebugLog opens <dataDir>/debug.log when MDXPAD_DEBUG is set.
func InitDebugLog(dataDir string) {
	if !CheckDebug() {
		return
	}

	Debug = true
	if err := EnsureDir(dataDir); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not create data dir %s: %v\n", dataDir, err)
		return
	}
	logPath := filepath.Join(dataDir, "debug.log")

	// 0600: prompts end up in here
	f, err := os.OpenFile(logPath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o600)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not open debug log at %s: %v\n", logPath, err)
		return
	}

	DebugLog = log.New(f, "", log.Ldate|log.Ltime|log.Lmicroseconds|log.Lshortfile)
	DebugLog.Printf("=== Debug logging started (MDXPAD_DEBUG=%s) ===", os.Getenv("MDXPAD_DEBUG"))
}

// Debugf writes to the debug log when it is enabled.
func Debugf(format string, args ...any) {
	if Debug && DebugLog != nil {
		DebugLog.Output(2, fmt.Sprintf(format, args...))
	}
}
