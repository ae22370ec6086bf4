package download

import (
	"fmt"
	"path/filepath"

	"github.com/ytget/ytfetch/internal/model"
)

// Format selection templates, %s is the maximum height
const (
	// FormatTemplate prefers separate best video and audio streams, falling back
	// to the best combined stream, both capped at the requested height
	FormatTemplate = "bestvideo[height<=%[1]s]+bestaudio/best[height<=%[1]s]"

	// NativeFormatTemplate caps the single combined stream picked by the
	// native backend
	NativeFormatTemplate = "height<=%s"

	// OutputTemplate names files after the video title
	OutputTemplate = "%(title)s.%(ext)s"

	// OutputContainer is the container every download ends up in
	OutputContainer = "mp4"
)

// Configuration is everything an extractor needs for one invocation. It is
// rebuilt for every request.
type Configuration struct {
	RequestID      string
	URL            string
	OutputDir      string
	Format         string
	NativeFormat   string
	OutputTemplate string
	Container      string
	RateLimit      int64 // bytes per second, 0 means unlimited
	OnProgress     func(model.ProgressEvent)
}

// NewConfiguration derives the configuration for req
func NewConfiguration(req model.DownloadRequest, onProgress func(model.ProgressEvent)) *Configuration {
	return &Configuration{
		RequestID:      req.ID,
		URL:            req.URL,
		OutputDir:      req.OutputDir,
		Format:         FormatSelector(req.Quality),
		NativeFormat:   NativeFormatSelector(req.Quality),
		OutputTemplate: filepath.Join(req.OutputDir, OutputTemplate),
		Container:      OutputContainer,
		OnProgress:     onProgress,
	}
}

// FormatSelector returns the yt-dlp format expression for a height ceiling
func FormatSelector(quality string) string {
	return fmt.Sprintf(FormatTemplate, quality)
}

// NativeFormatSelector returns the native backend selector for a height ceiling
func NativeFormatSelector(quality string) string {
	return fmt.Sprintf(NativeFormatTemplate, quality)
}

// notify forwards event to the progress hook if one is set
func (c *Configuration) notify(event model.ProgressEvent) {
	if c.OnProgress != nil {
		c.OnProgress(event)
	}
}
