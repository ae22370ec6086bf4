package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/mattn/go-colorable"
	"github.com/spf13/cobra"

	"github.com/ytget/ytfetch/internal/config"
	"github.com/ytget/ytfetch/internal/convert"
	"github.com/ytget/ytfetch/internal/download"
	"github.com/ytget/ytfetch/internal/model"
	"github.com/ytget/ytfetch/internal/platform"
	"github.com/ytget/ytfetch/internal/report"
)

const (
	AppName   = "ytfetch"
	LogPrefix = AppName + ": "

	ExitOK      = 0
	ExitFailure = 1
)

// ErrDownloadFailed marks a failure already reported on the terminal
var ErrDownloadFailed = errors.New("download failed")

// BackendOptions carries executable locations for extractor construction
type BackendOptions struct {
	YTDLPPath  string
	FFmpegPath string
}

// ExtractorFactory builds the extractor for a backend
type ExtractorFactory func(backend config.Backend, opts BackendOptions, logger *log.Logger) (download.Extractor, error)

type rootOptions struct {
	outputDir  string
	quality    string
	backend    string
	limitRate  string
	ytdlpPath  string
	ffmpegPath string
	reveal     bool
	verbose    bool
}

// Execute runs the command line and returns the process exit status
func Execute(version string) int {
	settings, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to load configuration: %v\n", err)
		return ExitFailure
	}

	cmd := NewRootCommand(version, settings, NewExtractor)
	cmd.SetOut(colorable.NewColorableStdout())
	cmd.SetErr(colorable.NewColorableStderr())

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		// download failures were already printed by the reporter
		if !errors.Is(err, ErrDownloadFailed) {
			fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		}
		return ExitFailure
	}
	return ExitOK
}

// NewRootCommand builds the command tree. settings supplies flag defaults.
func NewRootCommand(version string, settings config.Settings, factory ExtractorFactory) *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           AppName + " URL [--output DIR] [--quality HEIGHT]",
		Short:         "Download a single video as mp4",
		Long:          "Download one video, choosing the best streams up to the requested height, and store it as <output>/<title>.mp4.",
		Version:       version,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDownload(cmd, args[0], opts, factory)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.outputDir, "output", "o", settings.OutputDir, "Output directory")
	flags.StringVarP(&opts.quality, "quality", "q", settings.Quality, "Maximum video height (e.g. 2160, 1080, 720)")
	flags.StringVar(&opts.backend, "backend", settings.Backend.String(), fmt.Sprintf("Extraction backend (%s)", backendNames()))
	flags.StringVar(&opts.limitRate, "limit-rate", settings.LimitRate, "Maximum download rate (e.g. 2MiB/s)")
	flags.StringVar(&opts.ytdlpPath, "yt-dlp-path", settings.YTDLPPath, "Path to the yt-dlp executable")
	flags.StringVar(&opts.ffmpegPath, "ffmpeg-path", settings.FFmpegPath, "Path to the ffmpeg executable")
	flags.BoolVar(&opts.reveal, "reveal", false, "Show the downloaded file in the file manager")
	flags.BoolVar(&opts.verbose, "verbose", false, "Print diagnostic log lines to stderr")

	cmd.AddCommand(newDoctorCommand(settings, platform.NewChecker()))
	cmd.AddCommand(newInstallCommand())
	return cmd
}

// NewExtractor is the production ExtractorFactory
func NewExtractor(backend config.Backend, opts BackendOptions, logger *log.Logger) (download.Extractor, error) {
	switch backend {
	case config.BackendYTDLP:
		return download.NewYTDLPExtractor(opts.YTDLPPath, opts.FFmpegPath, logger), nil
	case config.BackendNative:
		return download.NewNativeExtractor(convert.NewService(opts.FFmpegPath, logger), logger), nil
	default:
		return nil, fmt.Errorf("unknown backend %q (expected %s)", backend, backendNames())
	}
}

func runDownload(cmd *cobra.Command, url string, opts *rootOptions, factory ExtractorFactory) error {
	logger := newLogger(cmd.ErrOrStderr(), opts.verbose)
	restoreLibraryLogs := routeLibraryLogs(logger)
	defer restoreLibraryLogs()

	backend := config.Backend(strings.ToLower(strings.TrimSpace(opts.backend)))
	if !backend.IsValid() {
		return fmt.Errorf("unknown backend %q (expected %s)", opts.backend, backendNames())
	}
	rate, err := download.ParseRate(opts.limitRate)
	if err != nil {
		return err
	}

	if err := platform.CreateDirectoryIfNotExists(opts.outputDir); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", opts.outputDir, err)
	}

	extractor, err := factory(backend, BackendOptions{YTDLPPath: opts.ytdlpPath, FFmpegPath: opts.ffmpegPath}, logger)
	if err != nil {
		return err
	}

	service := download.NewService(extractor, report.New(cmd.OutOrStdout()), logger)
	service.SetRateLimit(rate)

	req := model.NewDownloadRequest(url, opts.outputDir, opts.quality)
	logger.Printf("Request %s: backend=%s quality=%s", req.ID, backend, req.Quality)

	outcome := service.Run(cmd.Context(), req)
	if !outcome.OK() {
		return fmt.Errorf("%w: %w", ErrDownloadFailed, outcome.Err)
	}

	if opts.reveal && outcome.Path != "" {
		if err := platform.RevealInFileManager(outcome.Path); err != nil {
			logger.Printf("Failed to reveal %s: %v", outcome.Path, err)
		}
	}
	return nil
}

// newLogger returns a logger writing to w when verbose, discarding otherwise
func newLogger(w io.Writer, verbose bool) *log.Logger {
	if !verbose {
		return log.New(io.Discard, "", 0)
	}
	return log.New(w, LogPrefix, log.LstdFlags)
}

// routeLibraryLogs points the standard logger, which github.com/ytget/ytdlp
// writes to, at logger and returns a func restoring the previous settings
func routeLibraryLogs(logger *log.Logger) func() {
	out, prefix, flags := log.Writer(), log.Prefix(), log.Flags()
	log.SetOutput(logger.Writer())
	log.SetPrefix(logger.Prefix())
	log.SetFlags(logger.Flags())
	return func() {
		log.SetOutput(out)
		log.SetPrefix(prefix)
		log.SetFlags(flags)
	}
}

func backendNames() string {
	options := config.GetBackendOptions()
	names := make([]string, len(options))
	for i, option := range options {
		names[i] = option.String()
	}
	return strings.Join(names, ", ")
}
