// Package testbin writes small shell scripts that stand in for the external
// tools (yt-dlp, ffmpeg, ffprobe) in tests.
package testbin

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// Write creates an executable /bin/sh script named name in dir and returns its
// path. Tests using it are skipped on Windows.
func Write(t testing.TB, dir, name, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake tools are shell scripts")
	}

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}
