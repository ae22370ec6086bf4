package config

import (
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Backend selects the extraction library used for a download
type Backend string

const (
	// BackendYTDLP drives the yt-dlp executable
	BackendYTDLP Backend = "ytdlp"

	// BackendNative uses the pure Go YouTube client and ffmpeg for conversion
	BackendNative Backend = "native"
)

// Environment keys
const (
	KeyOutputDir  = "YTFETCH_OUTPUT"
	KeyQuality    = "YTFETCH_QUALITY"
	KeyBackend    = "YTFETCH_BACKEND"
	KeyYTDLPPath  = "YTFETCH_YTDLP_PATH"
	KeyFFmpegPath = "YTFETCH_FFMPEG_PATH"
	KeyLimitRate  = "YTFETCH_LIMIT_RATE"
)

// Default values
const (
	DefaultOutputDir = "downloads"
	DefaultQuality   = "2160"
	DefaultBackend   = BackendYTDLP
	DefaultEnvFile   = ".env"
)

// Settings holds defaults for command line flags
type Settings struct {
	OutputDir  string
	Quality    string
	Backend    Backend
	YTDLPPath  string
	FFmpegPath string
	LimitRate  string
}

// Load reads settings from the environment after loading envFiles. Missing
// env files are ignored; variables already set in the environment win.
func Load(envFiles ...string) (Settings, error) {
	if len(envFiles) == 0 {
		envFiles = []string{DefaultEnvFile}
	}
	for _, file := range envFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Settings{}, err
		}
	}

	return Settings{
		OutputDir:  getEnv(KeyOutputDir, DefaultOutputDir),
		Quality:    getEnv(KeyQuality, DefaultQuality),
		Backend:    Backend(strings.ToLower(getEnv(KeyBackend, string(DefaultBackend)))),
		YTDLPPath:  getEnv(KeyYTDLPPath, ""),
		FFmpegPath: getEnv(KeyFFmpegPath, ""),
		LimitRate:  getEnv(KeyLimitRate, ""),
	}, nil
}

// GetBackendOptions returns available backends
func GetBackendOptions() []Backend {
	return []Backend{BackendYTDLP, BackendNative}
}

// IsValid reports whether b is a known backend
func (b Backend) IsValid() bool {
	for _, option := range GetBackendOptions() {
		if b == option {
			return true
		}
	}
	return false
}

// String returns the string representation of Backend
func (b Backend) String() string {
	return string(b)
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return defaultValue
}
