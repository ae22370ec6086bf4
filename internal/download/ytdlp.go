package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	goytdlp "github.com/lrstanley/go-ytdlp"

	"github.com/ytget/ytfetch/internal/model"
)

// DefaultProgressInterval is how often yt-dlp progress is forwarded
const DefaultProgressInterval = 250 * time.Millisecond

// Prefixes of yt-dlp ERROR messages used to attribute failures
const (
	downloadErrorPrefix    = "[download]"
	postprocessErrorPrefix = "Postprocessing:"
)

var (
	// ErrNoInfo is returned when yt-dlp exits cleanly without printing metadata
	ErrNoInfo = errors.New("yt-dlp returned no video information")

	// ErrYTDLPFailed is matched by every RunError
	ErrYTDLPFailed = errors.New("yt-dlp failed")
)

// RunError is a failed yt-dlp run reduced to one line. The go-ytdlp error,
// which embeds the full stderr, stays reachable through errors.As.
type RunError struct {
	Message  string
	ExitCode int
	Err      error
}

func (e *RunError) Error() string {
	return fmt.Sprintf("%s (exit code %d)", e.Message, e.ExitCode)
}

func (e *RunError) Unwrap() []error {
	return []error{ErrYTDLPFailed, e.Err}
}

// YTDLPExtractor drives the yt-dlp executable through go-ytdlp
type YTDLPExtractor struct {
	executable       string
	ffmpegPath       string
	progressInterval time.Duration
	logger           *log.Logger
}

// NewYTDLPExtractor creates an extractor. Empty paths fall back to the
// executables found on PATH or in the go-ytdlp install cache.
func NewYTDLPExtractor(executable, ffmpegPath string, logger *log.Logger) *YTDLPExtractor {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &YTDLPExtractor{
		executable:       executable,
		ffmpegPath:       ffmpegPath,
		progressInterval: DefaultProgressInterval,
		logger:           logger,
	}
}

// FetchInfo runs yt-dlp in simulate mode and parses the printed metadata
func (e *YTDLPExtractor) FetchInfo(ctx context.Context, cfg *Configuration) (*model.Metadata, error) {
	dl := e.command(cfg).SkipDownload().PrintJSON()

	result, err := dl.Run(ctx, cfg.URL)
	if err != nil {
		return nil, describeRunError(result, err)
	}
	return firstMetadata(result)
}

// Download runs yt-dlp with merging and recoding into cfg.Container. yt-dlp
// reports "finished" once per stream, so a failure is attributed to
// post-processing only when it happens outside the [download] step after the
// last stream finished.
func (e *YTDLPExtractor) Download(ctx context.Context, cfg *Configuration) (*model.Metadata, error) {
	dl := e.command(cfg).PrintJSON()

	var (
		mu             sync.Mutex
		lastStatus     model.ProgressStatus
		postprocessing bool
		meter          speedMeter
	)
	dl.ProgressFunc(e.progressInterval, func(update goytdlp.ProgressUpdate) {
		event := eventFromUpdate(update, &meter, time.Now())
		mu.Lock()
		if update.Status == goytdlp.ProgressStatusPostProcessing {
			postprocessing = true
		}
		if event.Status != "" {
			lastStatus = event.Status
		}
		mu.Unlock()
		cfg.notify(event)
	})

	result, err := dl.Run(ctx, cfg.URL)
	if err != nil {
		err = describeRunError(result, err)
		mu.Lock()
		stage := failureStage(lastStatus, postprocessing, runErrorMessage(err))
		mu.Unlock()
		if stage == model.StagePostprocess {
			return nil, &StageError{Stage: stage, Err: err}
		}
		return nil, err
	}

	meta, err := firstMetadata(result)
	if err != nil {
		return nil, err
	}
	if meta.Filename != "" {
		meta.Filename = withContainer(meta.Filename, cfg.Container)
	}
	return meta, nil
}

// command builds the yt-dlp invocation shared by the metadata fetch and the
// download
func (e *YTDLPExtractor) command(cfg *Configuration) *goytdlp.Command {
	dl := goytdlp.New().
		NoPlaylist().
		Format(cfg.Format).
		Output(cfg.OutputTemplate).
		MergeOutputFormat(cfg.Container).
		RecodeVideo(cfg.Container)

	if e.executable != "" {
		dl.SetExecutable(e.executable)
	}
	if e.ffmpegPath != "" {
		dl.FFmpegLocation(e.ffmpegPath)
	}
	if cfg.RateLimit > 0 {
		dl.LimitRate(strconv.FormatInt(cfg.RateLimit, 10))
	}
	return dl
}

// eventFromUpdate maps a go-ytdlp progress update to a progress event. Updates
// other than downloading and finished produce an event with an empty status.
func eventFromUpdate(update goytdlp.ProgressUpdate, meter *speedMeter, now time.Time) model.ProgressEvent {
	switch update.Status {
	case goytdlp.ProgressStatusDownloading:
		downloaded := int64(update.DownloadedBytes)
		return model.ProgressEvent{
			Status:  model.ProgressDownloading,
			Percent: percentString(downloaded, int64(update.TotalBytes)),
			Speed:   meter.Speed(update.Filename, downloaded, update.Started, now),
		}
	case goytdlp.ProgressStatusFinished:
		return model.ProgressEvent{Status: model.ProgressFinished}
	default:
		return model.ProgressEvent{}
	}
}

// failureStage decides which pipeline stage a failed download run belongs to
func failureStage(lastStatus model.ProgressStatus, postprocessing bool, message string) model.Stage {
	switch {
	case postprocessing, strings.HasPrefix(message, postprocessErrorPrefix):
		return model.StagePostprocess
	case lastStatus == model.ProgressFinished && !strings.HasPrefix(message, downloadErrorPrefix):
		return model.StagePostprocess
	default:
		return model.StageDownload
	}
}

// firstMetadata extracts metadata of the first video printed by yt-dlp
func firstMetadata(result *goytdlp.Result) (*model.Metadata, error) {
	if result == nil {
		return nil, ErrNoInfo
	}
	infos, err := result.GetExtractedInfo()
	if err != nil {
		return nil, fmt.Errorf("failed to parse yt-dlp output: %w", err)
	}
	if len(infos) == 0 || infos[0] == nil {
		return nil, ErrNoInfo
	}

	info := infos[0]
	meta := &model.Metadata{ID: info.ID, Duration: -1}
	if info.Title != nil {
		meta.Title = *info.Title
	}
	if info.Duration != nil {
		meta.Duration = *info.Duration
	}
	if info.Filename != nil {
		meta.Filename = *info.Filename
	}
	return meta, nil
}

// describeRunError reduces a failed run to a single line: yt-dlp's last ERROR
// message, or the last line it wrote to stderr
func describeRunError(result *goytdlp.Result, err error) error {
	if result == nil {
		return err
	}
	msg := lastErrorLine(result.Stderr)
	if msg == "" {
		msg = lastLine(result.Stderr)
	}
	if msg == "" {
		msg = "yt-dlp exited without an error message"
	}
	return &RunError{Message: msg, ExitCode: result.ExitCode, Err: err}
}

// runErrorMessage returns the yt-dlp message carried by err
func runErrorMessage(err error) string {
	var runErr *RunError
	if errors.As(err, &runErr) {
		return runErr.Message
	}
	return err.Error()
}

// lastErrorLine returns the last "ERROR:" line in yt-dlp's stderr without the
// prefix
func lastErrorLine(stderr string) string {
	lines := strings.Split(stderr, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if strings.HasPrefix(line, "ERROR:") {
			return strings.TrimSpace(strings.TrimPrefix(line, "ERROR:"))
		}
	}
	return ""
}

// lastLine returns the last non-empty line of output
func lastLine(output string) string {
	lines := strings.Split(output, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return ""
}

// withContainer replaces the extension of path with container
func withContainer(path, container string) string {
	ext := filepath.Ext(path)
	if strings.EqualFold(strings.TrimPrefix(ext, "."), container) {
		return path
	}
	return strings.TrimSuffix(path, ext) + "." + container
}
