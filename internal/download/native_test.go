package download

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ytget/ytdlp/errs"
	ytv2 "github.com/ytget/ytdlp/v2"

	"github.com/ytget/ytfetch/internal/convert"
	"github.com/ytget/ytfetch/internal/model"
)

type fakeConverter struct {
	available bool
	err       error
	calls     int
	src, dst  string
}

func (f *fakeConverter) Available() bool { return f.available }

// Convert records its arguments and writes dst unless err is set
func (f *fakeConverter) Convert(_ context.Context, src, dst string) error {
	f.calls++
	f.src, f.dst = src, dst
	if f.err != nil {
		return f.err
	}
	return os.WriteFile(dst, []byte("converted"), 0o644)
}

// fakeFetch writes the intermediate file in two chunks and reports progress
// the way the library does, with the last update covering the whole stream
func fakeFetch(info *ytv2.VideoInfo) func(context.Context, *Configuration, string, func(ytv2.Progress)) (*ytv2.VideoInfo, error) {
	return func(_ context.Context, _ *Configuration, output string, onProgress func(ytv2.Progress)) (*ytv2.VideoInfo, error) {
		onProgress(ytv2.Progress{TotalSize: 8, DownloadedSize: 4, Percent: 50})
		onProgress(ytv2.Progress{TotalSize: 8, DownloadedSize: 8, Percent: 100})
		return info, os.WriteFile(output, []byte("rawmedia"), 0o644)
	}
}

func newNativeTestExtractor(converter *fakeConverter) *NativeExtractor {
	e := NewNativeExtractor(converter, nil)
	e.fetch = fakeFetch(&ytv2.VideoInfo{ID: "abc123", Title: "Clip", Duration: 95})
	return e
}

func TestNativeDownload_Success(t *testing.T) {
	converter := &fakeConverter{available: true}
	e := newNativeTestExtractor(converter)
	recorder := &eventRecorder{}

	dir := t.TempDir()
	cfg := NewConfiguration(model.NewDownloadRequest("https://www.youtube.com/watch?v=abc123", dir, "1080"), recorder.record)

	meta, err := e.Download(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Download failed: %v", err)
	}

	expected := filepath.Join(dir, "Clip.mp4")
	if meta.Filename != expected {
		t.Errorf("Expected %s, got %s", expected, meta.Filename)
	}
	if meta.ID != "abc123" || meta.Duration != 95 {
		t.Errorf("Unexpected metadata: %+v", meta)
	}
	if converter.src != intermediatePath(cfg) || converter.dst != expected {
		t.Errorf("Unexpected conversion %s -> %s", converter.src, converter.dst)
	}
	if _, err := os.Stat(expected); err != nil {
		t.Errorf("Expected converted file: %v", err)
	}
	if _, err := os.Stat(intermediatePath(cfg)); !os.IsNotExist(err) {
		t.Errorf("Expected intermediate file to be removed, stat error: %v", err)
	}

	finished := 0
	for _, event := range recorder.events {
		if event.Status == model.ProgressFinished {
			finished++
		}
	}
	if finished != 1 {
		t.Errorf("Expected exactly one finished event, got %d in %+v", finished, recorder.events)
	}
	if len(recorder.events) == 0 || recorder.events[0].Percent != "50.0%" {
		t.Errorf("Expected first event at 50.0%%, got %+v", recorder.events)
	}
}

func TestNativeDownload_ConversionFails(t *testing.T) {
	convErr := errors.New("ffmpeg exited with status 1")
	converter := &fakeConverter{available: true, err: convErr}
	e := newNativeTestExtractor(converter)

	cfg := NewConfiguration(model.NewDownloadRequest("https://www.youtube.com/watch?v=abc123", t.TempDir(), "1080"), nil)
	_, err := e.Download(context.Background(), cfg)

	stage, ok := StageOf(err)
	if !ok || stage != model.StagePostprocess {
		t.Fatalf("Expected post-processing stage error, got %v", err)
	}
	if !errors.Is(err, convErr) {
		t.Errorf("Expected conversion error, got %v", err)
	}
	if _, err := os.Stat(intermediatePath(cfg)); err != nil {
		t.Errorf("Expected intermediate file to be kept: %v", err)
	}
}

func TestNativeDownload_TransferFails(t *testing.T) {
	converter := &fakeConverter{available: true}
	e := NewNativeExtractor(converter, nil)
	e.fetch = func(context.Context, *Configuration, string, func(ytv2.Progress)) (*ytv2.VideoInfo, error) {
		return nil, errs.ErrRateLimited
	}

	cfg := NewConfiguration(model.NewDownloadRequest("https://www.youtube.com/watch?v=abc123", t.TempDir(), "1080"), nil)
	_, err := e.Download(context.Background(), cfg)

	if _, ok := StageOf(err); ok {
		t.Errorf("Expected no stage on transfer failure, got %v", err)
	}
	if !errors.Is(err, errs.ErrRateLimited) || !strings.Contains(err.Error(), "try again later") {
		t.Errorf("Expected rate limit hint, got %v", err)
	}
	if converter.calls != 0 {
		t.Errorf("Expected no conversion attempt, got %d", converter.calls)
	}
}

func TestNativeFetchInfo(t *testing.T) {
	e := NewNativeExtractor(&fakeConverter{available: true}, nil)
	e.resolve = func(context.Context, *Configuration) (*ytv2.VideoInfo, error) {
		return &ytv2.VideoInfo{ID: "abc123", Title: "Clip"}, nil
	}

	meta, err := e.FetchInfo(context.Background(), testConfiguration(nil))
	if err != nil {
		t.Fatalf("FetchInfo failed: %v", err)
	}
	if meta.Title != "Clip" || meta.Duration != -1 {
		t.Errorf("Unexpected metadata: %+v", meta)
	}

	e.resolve = func(context.Context, *Configuration) (*ytv2.VideoInfo, error) {
		return nil, errs.ErrPrivate
	}
	if _, err := e.FetchInfo(context.Background(), testConfiguration(nil)); !errors.Is(err, errs.ErrPrivate) {
		t.Errorf("Expected ErrPrivate, got %v", err)
	}
}

func TestNativeDownload_ConverterUnavailable(t *testing.T) {
	converter := &fakeConverter{available: false}
	e := NewNativeExtractor(converter, nil)

	cfg := NewConfiguration(model.NewDownloadRequest("https://www.youtube.com/watch?v=abc123", t.TempDir(), "1080"), nil)
	_, err := e.Download(context.Background(), cfg)

	stage, ok := StageOf(err)
	if !ok || stage != model.StagePostprocess {
		t.Fatalf("Expected post-processing stage error, got %v", err)
	}
	if !errors.Is(err, convert.ErrFFmpegNotFound) {
		t.Errorf("Expected ErrFFmpegNotFound, got %v", err)
	}
	if converter.calls != 0 {
		t.Errorf("Expected no conversion attempt, got %d", converter.calls)
	}
}

func TestIntermediatePath(t *testing.T) {
	cfg := &Configuration{RequestID: "req-42", OutputDir: "downloads"}

	got := intermediatePath(cfg)
	expected := filepath.Join("downloads", ".req-42"+IntermediateSuffix)
	if got != expected {
		t.Errorf("intermediatePath() = %s, expected %s", got, expected)
	}
}

func TestNativeEvent(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name     string
		progress ytv2.Progress
		elapsed  time.Duration
		expected model.ProgressEvent
	}{
		{
			name:     "known size",
			progress: ytv2.Progress{TotalSize: 2048, DownloadedSize: 1024, Percent: 50},
			elapsed:  time.Second,
			expected: model.ProgressEvent{Status: model.ProgressDownloading, Percent: "50.0%", Speed: "1.0 KiB/s"},
		},
		{
			name:     "unknown size",
			progress: ytv2.Progress{DownloadedSize: 0},
			elapsed:  time.Second,
			expected: model.ProgressEvent{Status: model.ProgressDownloading},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := nativeEvent(tt.progress, &speedMeter{}, now.Add(-tt.elapsed), now)
			if got != tt.expected {
				t.Errorf("nativeEvent() = %+v, expected %+v", got, tt.expected)
			}
		})
	}
}

func TestMetadataFromInfo(t *testing.T) {
	meta := metadataFromInfo(&ytv2.VideoInfo{ID: "abc123", Title: "Clip", Duration: 95})
	if meta.ID != "abc123" || meta.Title != "Clip" || meta.Duration != 95 {
		t.Errorf("Unexpected metadata: %+v", meta)
	}

	meta = metadataFromInfo(&ytv2.VideoInfo{ID: "abc123"})
	if meta.Duration != -1 {
		t.Errorf("Expected unknown duration for zero value, got %v", meta.Duration)
	}

	meta = metadataFromInfo(nil)
	if meta == nil || meta.Duration != -1 {
		t.Errorf("Expected empty metadata for nil info, got %+v", meta)
	}
}

func TestDescribeNativeError(t *testing.T) {
	tests := []struct {
		err          error
		expectedHint string
	}{
		{errs.ErrCipherFailed, "--backend ytdlp"},
		{errs.ErrPrivate, "private"},
		{errs.ErrGeoBlocked, "region"},
	}

	for _, test := range tests {
		got := describeNativeError(test.err)
		if !errors.Is(got, test.err) {
			t.Errorf("Expected %v to be preserved", test.err)
		}
		if !strings.Contains(got.Error(), test.expectedHint) {
			t.Errorf("Expected hint %q in %q", test.expectedHint, got.Error())
		}
	}

	plain := errors.New("extract video id failed")
	if got := describeNativeError(plain); got != plain {
		t.Errorf("Expected unknown error unchanged, got %v", got)
	}
}
