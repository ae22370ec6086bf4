package platform

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
)

// Operating system constants
const (
	OSDarwin  = "darwin"
	OSWindows = "windows"
	OSLinux   = "linux"
)

// File permissions
const (
	DefaultDirPermissions = 0755
)

// Command constants
const (
	OpenCommand     = "open"
	ExplorerCommand = "explorer"
	XDGOpenCommand  = "xdg-open"
)

// Command parameters
const (
	MacOSSelectFlag    = "-R"
	WindowsSelectParam = "/select,"
)

// Safe filename limits
const (
	MaxFilenameLength = 120
	DefaultFilename   = "video"
)

var unsafeFilenameChars = regexp.MustCompile(`[\\/:*?"<>|\x00-\x1f]+`)

// CreateDirectoryIfNotExists creates directory (and parents) if it doesn't exist.
// An existing directory is left untouched.
func CreateDirectoryIfNotExists(dirPath string) error {
	if IsDir(dirPath) {
		return nil
	}
	if _, err := os.Stat(dirPath); err == nil {
		return fmt.Errorf("%s exists and is not a directory", dirPath)
	}
	return os.MkdirAll(dirPath, DefaultDirPermissions)
}

// SafeFilename builds a cross-platform file name from a title and an extension
// given without the leading dot
func SafeFilename(title, ext string) string {
	name := unsafeFilenameChars.ReplaceAllString(strings.TrimSpace(title), "_")
	name = strings.Trim(name, " .")
	if name == "" {
		name = DefaultFilename
	}
	if len(name) > MaxFilenameLength {
		name = strings.ToValidUTF8(name[:MaxFilenameLength], "")
	}

	ext = strings.TrimPrefix(strings.ToLower(ext), ".")
	if ext == "" {
		return name
	}
	return name + "." + ext
}

// IsDir reports whether path exists and is a directory
func IsDir(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// RevealInFileManager opens the system file manager with the file selected
// where the platform supports it, or its parent directory otherwise
func RevealInFileManager(filePath string) error {
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return fmt.Errorf("failed to get absolute path: %w", err)
	}
	if _, err := os.Stat(absPath); err != nil {
		return fmt.Errorf("file does not exist: %w", err)
	}

	name, args, err := revealCommand(runtime.GOOS, absPath)
	if err != nil {
		return err
	}
	return exec.Command(name, args...).Run()
}

// revealCommand returns the command used to reveal absPath on goos
func revealCommand(goos, absPath string) (string, []string, error) {
	switch goos {
	case OSDarwin:
		return OpenCommand, []string{MacOSSelectFlag, absPath}, nil
	case OSWindows:
		return ExplorerCommand, []string{WindowsSelectParam + absPath}, nil
	case OSLinux:
		// selection is not standardized on Linux
		return XDGOpenCommand, []string{filepath.Dir(absPath)}, nil
	default:
		return "", nil, fmt.Errorf("unsupported operating system: %s", goos)
	}
}
