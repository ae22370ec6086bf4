package download

import (
	"context"

	"github.com/ytget/ytfetch/internal/model"
)

// Extractor resolves and downloads a single video.
type Extractor interface {
	// FetchInfo returns metadata without downloading media.
	FetchInfo(ctx context.Context, cfg *Configuration) (*model.Metadata, error)

	// Download transfers the media, converts it to cfg.Container and returns
	// metadata with Filename set to the produced file.
	Download(ctx context.Context, cfg *Configuration) (*model.Metadata, error)
}

// Reporter renders pipeline status for the user.
type Reporter interface {
	Fetching()
	Metadata(meta *model.Metadata)
	Starting()
	Progress(event model.ProgressEvent)
	Completed(path string)
	Failed(err error)
}
