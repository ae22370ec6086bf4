package convert

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/alessio/shellescape"
)

// FFmpeg constants for transcode fallback settings
const (
	VideoCodec  = "libx264"
	VideoPreset = "medium"
	VideoCRF    = "23"

	AudioCodec   = "aac"
	AudioBitrate = "192k"

	FastStartFlag = "+faststart"
	CopyCodec     = "copy"
)

// Executable and I/O constants
const (
	FFmpegCommand       = "ffmpeg"
	FFprobeCommand      = "ffprobe"
	FFprobeLogLevel     = "error"
	FFprobeShowEntries  = "format=duration"
	FFprobeOutputFormat = "csv=p=0"
	ProgressPipeTarget  = "pipe:2"
	ProgressTimePrefix  = "out_time_us="
	ProgressStep        = 10 // percent between progress log lines
	stderrTailLines     = 5
)

// ErrFFmpegNotFound is returned when the ffmpeg binary cannot be executed
var ErrFFmpegNotFound = errors.New("ffmpeg not found; install it or pass --ffmpeg-path")

// Service converts media files with ffmpeg
type Service struct {
	ffmpegPath  string
	ffprobePath string
	logger      *log.Logger
	lookPath    func(string) (string, error)
}

// NewService creates a conversion service. An empty ffmpegPath means ffmpeg
// is looked up on PATH; ffprobe is expected next to it.
func NewService(ffmpegPath string, logger *log.Logger) *Service {
	if ffmpegPath == "" {
		ffmpegPath = FFmpegCommand
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{
		ffmpegPath:  ffmpegPath,
		ffprobePath: SiblingTool(ffmpegPath, FFprobeCommand),
		logger:      logger,
		lookPath:    exec.LookPath,
	}
}

// Available checks if ffmpeg is executable
func (s *Service) Available() bool {
	_, err := s.lookPath(s.ffmpegPath)
	return err == nil
}

// Convert remuxes inputPath into outputPath, falling back to a transcode when
// stream copy fails. A partial output file is removed on failure.
func (s *Service) Convert(ctx context.Context, inputPath, outputPath string) error {
	if !s.Available() {
		return ErrFFmpegNotFound
	}
	if _, err := os.Stat(inputPath); err != nil {
		return fmt.Errorf("input file does not exist: %w", err)
	}

	duration, err := s.probeDuration(ctx, inputPath)
	if err != nil {
		// progress is cosmetic; conversion can proceed without it
		s.logger.Printf("ffprobe failed for %s: %v", inputPath, err)
	}

	err = s.run(ctx, s.BuildRemuxArgs(inputPath, outputPath), duration)
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		os.Remove(outputPath)
		return ctx.Err()
	}

	s.logger.Printf("Remux failed for %s, transcoding: %v", inputPath, err)
	if err := s.run(ctx, s.BuildTranscodeArgs(inputPath, outputPath), duration); err != nil {
		os.Remove(outputPath)
		return fmt.Errorf("ffmpeg conversion failed: %w", err)
	}
	return nil
}

// BuildRemuxArgs builds ffmpeg arguments for a stream copy into outputPath
func (s *Service) BuildRemuxArgs(inputPath, outputPath string) []string {
	return []string{
		"-y",
		"-i", inputPath,
		"-c", CopyCodec,
		"-movflags", FastStartFlag,
		"-progress", ProgressPipeTarget,
		"-nostats",
		outputPath,
	}
}

// BuildTranscodeArgs builds ffmpeg arguments for a full re-encode into outputPath
func (s *Service) BuildTranscodeArgs(inputPath, outputPath string) []string {
	return []string{
		"-y",
		"-i", inputPath,
		"-c:v", VideoCodec,
		"-preset", VideoPreset,
		"-crf", VideoCRF,
		"-c:a", AudioCodec,
		"-b:a", AudioBitrate,
		"-movflags", FastStartFlag,
		"-progress", ProgressPipeTarget,
		"-nostats",
		outputPath,
	}
}

// run executes ffmpeg and reports progress while it runs
func (s *Service) run(ctx context.Context, args []string, duration float64) error {
	cmd := exec.CommandContext(ctx, s.ffmpegPath, args...)
	s.logger.Printf("Running %s", shellescape.QuoteCommand(cmd.Args))

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("failed to create stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start ffmpeg: %w", err)
	}

	// the pipe must be drained before Wait closes it
	tail := s.monitorProgress(stderr, duration)

	if err := cmd.Wait(); err != nil {
		if len(tail) > 0 {
			return fmt.Errorf("%w: %s", err, strings.Join(tail, "; "))
		}
		return err
	}
	return nil
}

// probeDuration gets the duration of a media file using ffprobe
func (s *Service) probeDuration(ctx context.Context, filePath string) (float64, error) {
	cmd := exec.CommandContext(ctx, s.ffprobePath, "-v", FFprobeLogLevel, "-show_entries", FFprobeShowEntries, "-of", FFprobeOutputFormat, filePath)
	output, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("failed to run ffprobe: %w", err)
	}
	return parseDuration(string(output))
}

// monitorProgress consumes ffmpeg's progress stream, logging every
// ProgressStep percent, and returns the last non-progress lines for error
// reporting.
func (s *Service) monitorProgress(stderr io.Reader, totalDuration float64) []string {
	scanner := bufio.NewScanner(stderr)
	lastStep := -1
	var tail []string

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if !strings.HasPrefix(line, ProgressTimePrefix) {
			if line != "" && !strings.Contains(line, "=") {
				tail = append(tail, line)
				if len(tail) > stderrTailLines {
					tail = tail[1:]
				}
			}
			continue
		}

		percent, ok := progressPercent(strings.TrimPrefix(line, ProgressTimePrefix), totalDuration)
		if !ok {
			continue
		}
		if step := percent / ProgressStep; step > lastStep {
			lastStep = step
			s.logger.Printf("Converting... %d%%", percent)
		}
	}
	return tail
}

// parseDuration parses ffprobe's duration output in seconds
func parseDuration(output string) (float64, error) {
	duration, err := strconv.ParseFloat(strings.TrimSpace(output), 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse duration: %w", err)
	}
	return duration, nil
}

// progressPercent converts an out_time_us value into a 0-100 percentage
func progressPercent(value string, totalDuration float64) (int, bool) {
	if totalDuration <= 0 {
		return 0, false
	}
	timeMicroseconds, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, false
	}

	progress := float64(timeMicroseconds) / 1000000.0 / totalDuration
	if progress > 1.0 {
		progress = 1.0
	}
	if progress < 0 {
		progress = 0
	}
	return int(progress * 100), true
}

// SiblingTool returns the path of tool in the same directory as binary, or the
// bare tool name when binary is resolved through PATH
func SiblingTool(binary, tool string) string {
	if !strings.ContainsAny(binary, `/\`) {
		return tool
	}
	return filepath.Join(filepath.Dir(binary), tool+filepath.Ext(binary))
}
