package platform

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// CheckStatus is the outcome of a single diagnostic check
type CheckStatus string

const (
	CheckPass CheckStatus = "ok"
	CheckFail CheckStatus = "fail"
)

// CheckItem is one line of a diagnostics report
type CheckItem struct {
	Name    string
	Status  CheckStatus
	Message string
	Hint    string
}

// Report aggregates diagnostic checks
type Report struct {
	Items       []CheckItem
	HasFailures bool
}

// Checker validates external tools and the output directory. It never creates
// or modifies anything besides a short-lived write probe file.
type Checker struct {
	lookPath   func(string) (string, error)
	stat       func(string) (os.FileInfo, error)
	createTemp func(string, string) (*os.File, error)
	remove     func(string) error
}

// NewChecker builds a checker using real OS dependencies
func NewChecker() *Checker {
	return &Checker{
		lookPath:   exec.LookPath,
		stat:       os.Stat,
		createTemp: os.CreateTemp,
		remove:     os.Remove,
	}
}

// NewCheckerForTests creates checker with injectable dependencies
func NewCheckerForTests(
	lookPath func(string) (string, error),
	stat func(string) (os.FileInfo, error),
	createTemp func(string, string) (*os.File, error),
	remove func(string) error,
) *Checker {
	return &Checker{
		lookPath:   lookPath,
		stat:       stat,
		createTemp: createTemp,
		remove:     remove,
	}
}

// Run checks every tool in tools and the output directory
func (c *Checker) Run(tools []string, outputDir string) Report {
	var report Report
	for _, tool := range tools {
		report.Items = append(report.Items, c.checkTool(tool))
	}
	report.Items = append(report.Items, c.checkOutputDir(outputDir))

	for _, item := range report.Items {
		if item.Status == CheckFail {
			report.HasFailures = true
			break
		}
	}
	return report
}

// checkTool verifies an executable can be resolved
func (c *Checker) checkTool(name string) CheckItem {
	path, err := c.lookPath(name)
	if err != nil {
		return CheckItem{
			Name:    name,
			Status:  CheckFail,
			Message: fmt.Sprintf("Tool not found: %s", name),
			Hint:    "Install it, run `ytfetch install`, or pass its path explicitly.",
		}
	}
	return CheckItem{
		Name:    name,
		Status:  CheckPass,
		Message: fmt.Sprintf("Found at %s", path),
	}
}

// checkOutputDir validates that the output directory exists and is writable,
// or that it can be created inside its nearest existing ancestor
func (c *Checker) checkOutputDir(outputDir string) CheckItem {
	item := CheckItem{Name: "output directory"}

	if strings.TrimSpace(outputDir) == "" {
		item.Status = CheckFail
		item.Message = "Output directory is empty."
		return item
	}

	probeDir, exists, err := c.nearestExistingDir(outputDir)
	if err != nil {
		item.Status = CheckFail
		item.Message = fmt.Sprintf("Cannot use output directory %s: %v", outputDir, err)
		item.Hint = "Choose a different location with --output."
		return item
	}

	tmpFile, err := c.createTemp(probeDir, ".write-check-*")
	if err != nil {
		item.Status = CheckFail
		item.Message = fmt.Sprintf("Directory is not writable: %s", probeDir)
		item.Hint = "Choose a writable location or adjust filesystem permissions."
		return item
	}
	tmpPath := tmpFile.Name()
	_ = tmpFile.Close()
	_ = c.remove(tmpPath)

	item.Status = CheckPass
	if exists {
		item.Message = fmt.Sprintf("Writable directory: %s", outputDir)
	} else {
		item.Message = fmt.Sprintf("%s will be created inside writable %s", outputDir, probeDir)
	}
	return item
}

// nearestExistingDir returns outputDir if it exists, otherwise its closest
// existing ancestor. exists reports whether outputDir itself was found.
func (c *Checker) nearestExistingDir(outputDir string) (dir string, exists bool, err error) {
	dir = filepath.Clean(outputDir)
	for {
		info, statErr := c.stat(dir)
		switch {
		case statErr == nil && info.IsDir():
			return dir, dir == filepath.Clean(outputDir), nil
		case statErr == nil:
			return "", false, fmt.Errorf("%s is not a directory", dir)
		case !errors.Is(statErr, fs.ErrNotExist):
			return "", false, statErr
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false, fmt.Errorf("no existing parent directory")
		}
		dir = parent
	}
}
