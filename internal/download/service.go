package download

import (
	"context"
	"io"
	"log"

	"github.com/ytget/ytfetch/internal/model"
)

// Outcome is the result of one download. Err is a *StageError on failure.
type Outcome struct {
	Metadata *model.Metadata
	Path     string
	Err      error
}

// OK reports whether the download succeeded
func (o Outcome) OK() bool {
	return o.Err == nil
}

// Service runs the download pipeline for a single request
type Service struct {
	extractor Extractor
	reporter  Reporter
	logger    *log.Logger
	rateLimit int64
}

// NewService creates a new download service
func NewService(extractor Extractor, reporter Reporter, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{
		extractor: extractor,
		reporter:  reporter,
		logger:    logger,
	}
}

// SetRateLimit caps the download rate in bytes per second, 0 disables it
func (s *Service) SetRateLimit(bytesPerSecond int64) {
	if bytesPerSecond < 0 {
		bytesPerSecond = 0
	}
	s.rateLimit = bytesPerSecond
}

// Configure builds the configuration used for req
func (s *Service) Configure(req model.DownloadRequest) *Configuration {
	cfg := NewConfiguration(req, s.reporter.Progress)
	cfg.RateLimit = s.rateLimit
	return cfg
}

// Run fetches metadata, downloads and converts req.URL. Failures are reported
// once and returned in the outcome; nothing is retried.
func (s *Service) Run(ctx context.Context, req model.DownloadRequest) Outcome {
	cfg := s.Configure(req)
	s.logger.Printf("Request %s: url=%s format=%q output=%s", req.ID, req.URL, cfg.Format, cfg.OutputTemplate)

	s.reporter.Fetching()
	meta, err := s.extractor.FetchInfo(ctx, cfg)
	if err != nil {
		return s.fail(req, model.StageMetadata, err)
	}
	if meta == nil {
		meta = &model.Metadata{Duration: -1}
	}
	s.reporter.Metadata(meta)

	s.reporter.Starting()
	result, err := s.extractor.Download(ctx, cfg)
	if err != nil {
		return s.fail(req, model.StageDownload, err)
	}

	final := mergeMetadata(meta, result)
	s.logger.Printf("Request %s: saved %s", req.ID, final.Filename)
	s.reporter.Completed(final.Filename)

	return Outcome{Metadata: final, Path: final.Filename}
}

// fail reports err and converts it into a failed outcome
func (s *Service) fail(req model.DownloadRequest, stage model.Stage, err error) Outcome {
	stageErr := newStageError(stage, err)
	s.logger.Printf("Request %s: %s stage failed: %v", req.ID, stageErr.Stage, stageErr.Err)
	s.reporter.Failed(stageErr)
	return Outcome{Err: stageErr}
}

// mergeMetadata fills gaps in the download result from the earlier fetch
func mergeMetadata(fetched, downloaded *model.Metadata) *model.Metadata {
	if downloaded == nil {
		copied := *fetched
		return &copied
	}

	merged := *downloaded
	if merged.ID == "" {
		merged.ID = fetched.ID
	}
	if merged.Title == "" {
		merged.Title = fetched.Title
	}
	if merged.Duration < 0 {
		merged.Duration = fetched.Duration
	}
	return &merged
}
