package download

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/ytget/ytfetch/internal/model"
)

func TestFormatSelector(t *testing.T) {
	tests := []struct {
		quality  string
		expected string
	}{
		{"2160", "bestvideo[height<=2160]+bestaudio/best[height<=2160]"},
		{"1080", "bestvideo[height<=1080]+bestaudio/best[height<=1080]"},
		{"480", "bestvideo[height<=480]+bestaudio/best[height<=480]"},
	}

	for _, test := range tests {
		result := FormatSelector(test.quality)
		if result != test.expected {
			t.Errorf("FormatSelector(%s) = %s, expected %s", test.quality, result, test.expected)
		}
	}
}

func TestFormatSelector_BothBranchesCapped(t *testing.T) {
	selector := FormatSelector("1080")

	branches := strings.Split(selector, "/")
	if len(branches) != 2 {
		t.Fatalf("Expected separate-stream and combined-stream branches, got %v", branches)
	}
	for _, branch := range branches {
		if !strings.Contains(branch, "[height<=1080]") {
			t.Errorf("Branch %q is not capped at 1080", branch)
		}
	}
	if !strings.HasPrefix(branches[0], "bestvideo") || !strings.Contains(branches[0], "+bestaudio") {
		t.Errorf("Expected first branch to merge best video and audio, got %q", branches[0])
	}
	if !strings.HasPrefix(branches[1], "best[") {
		t.Errorf("Expected fallback to best combined stream, got %q", branches[1])
	}
}

func TestNewConfiguration(t *testing.T) {
	req := model.DownloadRequest{ID: "req-1", URL: "https://example.com/watch?v=abc123", OutputDir: "downloads", Quality: "1080"}
	cfg := NewConfiguration(req, nil)

	if cfg.Format != FormatSelector("1080") {
		t.Errorf("Unexpected format: %s", cfg.Format)
	}
	if cfg.NativeFormat != "height<=1080" {
		t.Errorf("Unexpected native format: %s", cfg.NativeFormat)
	}
	if cfg.OutputTemplate != filepath.Join("downloads", "%(title)s.%(ext)s") {
		t.Errorf("Unexpected output template: %s", cfg.OutputTemplate)
	}
	if cfg.Container != "mp4" {
		t.Errorf("Expected mp4 container, got %s", cfg.Container)
	}

	// notify without a hook must not panic
	cfg.notify(model.ProgressEvent{Status: model.ProgressFinished})
}
