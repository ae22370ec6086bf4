package model

import (
	"path/filepath"
	"strconv"
	"strings"
)

// Metadata is the subset of video information reported back by an extractor
type Metadata struct {
	ID       string
	Title    string
	Duration float64 // seconds, -1 if unknown
	Filename string  // path of the produced file, empty before download
}

// DurationSeconds returns the duration as a plain number of seconds, or
// NotAvailable if it is unknown
func (m *Metadata) DurationSeconds() string {
	if m.Duration < 0 {
		return NotAvailable
	}
	return strconv.FormatFloat(m.Duration, 'f', -1, 64)
}

// DisplayTitle returns title, file name, or ID in order of preference
func (m *Metadata) DisplayTitle() string {
	if strings.TrimSpace(m.Title) != "" {
		return m.Title
	}

	if m.Filename != "" {
		name := filepath.Base(m.Filename)
		if idx := strings.LastIndex(name, "."); idx > 0 {
			name = name[:idx]
		}
		return name
	}

	return m.ID
}
