package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RequestIDPrefix prefixes every generated request ID
const RequestIDPrefix = "req-"

// DownloadRequest describes a single download invocation. It is built once from
// the command line and never modified.
type DownloadRequest struct {
	ID        string
	URL       string
	OutputDir string
	Quality   string // maximum video height, e.g. "2160" or "1080"
}

// NewDownloadRequest creates a request with a freshly generated ID
func NewDownloadRequest(url, outputDir, quality string) DownloadRequest {
	return DownloadRequest{
		ID:        generateRequestID(),
		URL:       url,
		OutputDir: outputDir,
		Quality:   quality,
	}
}

// generateRequestID generates a time ordered request ID based on UUID v7
func generateRequestID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Sprintf(RequestIDPrefix+"%d", time.Now().UnixNano())
	}
	return RequestIDPrefix + id.String()
}
