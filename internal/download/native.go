package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/ytget/ytdlp/errs"
	ytv2 "github.com/ytget/ytdlp/v2"

	"github.com/ytget/ytfetch/internal/convert"
	"github.com/ytget/ytfetch/internal/model"
	"github.com/ytget/ytfetch/internal/platform"
)

// IntermediateSuffix marks the raw stream written before conversion
const IntermediateSuffix = ".download"

// NativeExtractor downloads YouTube videos with the pure Go client from
// github.com/ytget/ytdlp/v2 and converts them with ffmpeg. It fetches a single
// combined stream, so no merging happens.
type NativeExtractor struct {
	converter convert.Converter
	logger    *log.Logger

	resolve func(ctx context.Context, cfg *Configuration) (*ytv2.VideoInfo, error)
	fetch   func(ctx context.Context, cfg *Configuration, output string, onProgress func(ytv2.Progress)) (*ytv2.VideoInfo, error)
}

// NewNativeExtractor creates a native extractor using converter for the
// post-processing step
func NewNativeExtractor(converter convert.Converter, logger *log.Logger) *NativeExtractor {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &NativeExtractor{
		converter: converter,
		logger:    logger,
		resolve:   resolveWithLibrary,
		fetch:     fetchWithLibrary,
	}
}

// FetchInfo resolves the video without downloading it
func (e *NativeExtractor) FetchInfo(ctx context.Context, cfg *Configuration) (*model.Metadata, error) {
	info, err := e.resolve(ctx, cfg)
	if err != nil {
		return nil, describeNativeError(err)
	}
	return metadataFromInfo(info), nil
}

// Download fetches the stream into an intermediate file, then converts it into
// <OutputDir>/<title>.<Container>. The intermediate file is kept if the
// transfer fails.
func (e *NativeExtractor) Download(ctx context.Context, cfg *Configuration) (*model.Metadata, error) {
	if !e.converter.Available() {
		return nil, &StageError{Stage: model.StagePostprocess, Err: convert.ErrFFmpegNotFound}
	}

	intermediate := intermediatePath(cfg)
	started := time.Now()
	var (
		once  sync.Once
		meter speedMeter
	)

	info, err := e.fetch(ctx, cfg, intermediate, func(p ytv2.Progress) {
		if p.TotalSize > 0 && p.DownloadedSize >= p.TotalSize {
			once.Do(func() { cfg.notify(model.ProgressEvent{Status: model.ProgressFinished}) })
			return
		}
		cfg.notify(nativeEvent(p, &meter, started, time.Now()))
	})
	if err != nil {
		return nil, describeNativeError(err)
	}
	once.Do(func() { cfg.notify(model.ProgressEvent{Status: model.ProgressFinished}) })

	meta := metadataFromInfo(info)
	output := filepath.Join(cfg.OutputDir, platform.SafeFilename(meta.Title, cfg.Container))
	e.logger.Printf("Converting %s to %s", intermediate, output)

	if err := e.converter.Convert(ctx, intermediate, output); err != nil {
		return nil, &StageError{Stage: model.StagePostprocess, Err: err}
	}
	if err := os.Remove(intermediate); err != nil {
		e.logger.Printf("Failed to remove %s: %v", intermediate, err)
	}

	meta.Filename = output
	return meta, nil
}

// newLibraryDownloader builds a library downloader for cfg
func newLibraryDownloader(cfg *Configuration) *ytv2.Downloader {
	return ytv2.New().
		WithHTTPClient(NewHTTPClient(cfg.RateLimit)).
		WithFormat(cfg.NativeFormat, cfg.Container)
}

func resolveWithLibrary(ctx context.Context, cfg *Configuration) (*ytv2.VideoInfo, error) {
	_, info, err := newLibraryDownloader(cfg).ResolveURL(ctx, cfg.URL)
	return info, err
}

func fetchWithLibrary(ctx context.Context, cfg *Configuration, output string, onProgress func(ytv2.Progress)) (*ytv2.VideoInfo, error) {
	return newLibraryDownloader(cfg).
		WithOutputPath(output).
		WithProgress(onProgress).
		Download(ctx, cfg.URL)
}

// intermediatePath returns the hidden per-request file the raw stream is
// written to
func intermediatePath(cfg *Configuration) string {
	return filepath.Join(cfg.OutputDir, "."+cfg.RequestID+IntermediateSuffix)
}

// nativeEvent maps library progress to a downloading event
func nativeEvent(p ytv2.Progress, meter *speedMeter, started, now time.Time) model.ProgressEvent {
	event := model.ProgressEvent{
		Status: model.ProgressDownloading,
		Speed:  meter.Speed("", p.DownloadedSize, started, now),
	}
	if p.TotalSize > 0 {
		event.Percent = fmt.Sprintf("%.1f%%", p.Percent)
	}
	return event
}

// metadataFromInfo converts library video info; a zero duration means the
// library did not report it
func metadataFromInfo(info *ytv2.VideoInfo) *model.Metadata {
	if info == nil {
		return &model.Metadata{Duration: -1}
	}
	meta := &model.Metadata{
		ID:       info.ID,
		Title:    info.Title,
		Duration: float64(info.Duration),
	}
	if info.Duration <= 0 {
		meta.Duration = -1
	}
	return meta
}

// nativeHints adds a suggestion to library sentinel errors
var nativeHints = []struct {
	err  error
	hint string
}{
	{errs.ErrCipherFailed, "signature deciphering failed; try --backend ytdlp"},
	{errs.ErrRateLimited, "rate limited by the remote service; try again later or use --backend ytdlp"},
	{errs.ErrGeoBlocked, "not available in your region"},
	{errs.ErrAgeRestricted, "age restricted videos need --backend ytdlp"},
	{errs.ErrPrivate, "the video is private"},
	{errs.ErrVideoUnavailable, "the video was removed or never existed"},
}

// describeNativeError attaches a hint to known library errors
func describeNativeError(err error) error {
	for _, h := range nativeHints {
		if errors.Is(err, h.err) {
			return fmt.Errorf("%w (%s)", err, h.hint)
		}
	}
	return err
}
