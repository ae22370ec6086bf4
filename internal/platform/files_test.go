package platform

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCreateDirectoryIfNotExists(t *testing.T) {
	tempDir := t.TempDir()
	testDir := filepath.Join(tempDir, "nested", "downloads")

	// Directory should not exist initially
	if _, err := os.Stat(testDir); !os.IsNotExist(err) {
		t.Fatalf("Test directory already exists: %s", testDir)
	}

	if err := CreateDirectoryIfNotExists(testDir); err != nil {
		t.Fatalf("Failed to create directory: %v", err)
	}

	if !IsDir(testDir) {
		t.Fatalf("Directory was not created: %s", testDir)
	}

	// Existing content must survive a second call
	marker := filepath.Join(testDir, "keep.txt")
	if err := os.WriteFile(marker, []byte("x"), 0o644); err != nil {
		t.Fatalf("write marker: %v", err)
	}

	if err := CreateDirectoryIfNotExists(testDir); err != nil {
		t.Fatalf("Failed to handle existing directory: %v", err)
	}

	if _, err := os.Stat(marker); err != nil {
		t.Errorf("Existing directory content was lost: %v", err)
	}
}

func TestCreateDirectoryIfNotExists_FileInTheWay(t *testing.T) {
	tempDir := t.TempDir()
	blocker := filepath.Join(tempDir, "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatalf("write blocker: %v", err)
	}

	if err := CreateDirectoryIfNotExists(filepath.Join(blocker, "downloads")); err == nil {
		t.Error("Expected error when a file blocks the directory path")
	}

	if err := CreateDirectoryIfNotExists(blocker); err == nil {
		t.Error("Expected error when the path is a regular file")
	}
}

func TestSafeFilename(t *testing.T) {
	tests := []struct {
		name     string
		title    string
		ext      string
		expected string
	}{
		{
			name:     "plain title",
			title:    "My Video",
			ext:      "mp4",
			expected: "My Video.mp4",
		},
		{
			name:     "unsafe characters replaced",
			title:    `AC/DC: "Live" <1991>?`,
			ext:      ".MP4",
			expected: "AC_DC_ _Live_ _1991_.mp4",
		},
		{
			name:     "empty title falls back",
			title:    "   ",
			ext:      "mp4",
			expected: DefaultFilename + ".mp4",
		},
		{
			name:     "no extension",
			title:    "clip",
			ext:      "",
			expected: "clip",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SafeFilename(tt.title, tt.ext); got != tt.expected {
				t.Errorf("SafeFilename(%q, %q) = %q, expected %q", tt.title, tt.ext, got, tt.expected)
			}
		})
	}
}

func TestSafeFilename_Truncates(t *testing.T) {
	name := SafeFilename(strings.Repeat("a", MaxFilenameLength+50), "mp4")
	if len(name) != MaxFilenameLength+len(".mp4") {
		t.Errorf("Expected truncated name length %d, got %d", MaxFilenameLength+len(".mp4"), len(name))
	}
}

func TestRevealCommand(t *testing.T) {
	tests := []struct {
		goos         string
		expectedName string
		expectedArgs []string
		wantErr      bool
	}{
		{OSDarwin, OpenCommand, []string{MacOSSelectFlag, "/data/v.mp4"}, false},
		{OSWindows, ExplorerCommand, []string{WindowsSelectParam + "/data/v.mp4"}, false},
		{OSLinux, XDGOpenCommand, []string{"/data"}, false},
		{"plan9", "", nil, true},
	}

	for _, test := range tests {
		name, args, err := revealCommand(test.goos, "/data/v.mp4")
		if (err != nil) != test.wantErr {
			t.Errorf("revealCommand(%s) error = %v, wantErr %v", test.goos, err, test.wantErr)
			continue
		}
		if name != test.expectedName {
			t.Errorf("revealCommand(%s) name = %s, expected %s", test.goos, name, test.expectedName)
		}
		if strings.Join(args, " ") != strings.Join(test.expectedArgs, " ") {
			t.Errorf("revealCommand(%s) args = %v, expected %v", test.goos, args, test.expectedArgs)
		}
	}
}

func TestRevealInFileManager_NonExistentFile(t *testing.T) {
	err := RevealInFileManager(filepath.Join(t.TempDir(), "nonexistent.mp4"))
	if err == nil {
		t.Fatal("Expected error for non-existent file")
	}
	if !strings.Contains(err.Error(), "does not exist") {
		t.Errorf("Expected 'does not exist' error, got: %v", err)
	}
}
