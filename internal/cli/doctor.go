package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ytget/ytfetch/internal/config"
	"github.com/ytget/ytfetch/internal/convert"
	"github.com/ytget/ytfetch/internal/platform"
)

// ErrChecksFailed is returned by doctor when any check fails
var ErrChecksFailed = errors.New("one or more checks failed")

func newDoctorCommand(settings config.Settings, checker *platform.Checker) *cobra.Command {
	var outputDir string

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check that yt-dlp, ffmpeg and the output directory are usable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result := checker.Run(doctorTools(settings), outputDir)
			printReport(cmd.OutOrStdout(), result)
			if result.HasFailures {
				return ErrChecksFailed
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output", "o", settings.OutputDir, "Output directory to check")
	return cmd
}

// doctorTools lists the executables to look up, honouring configured paths
func doctorTools(settings config.Settings) []string {
	ytdlp := "yt-dlp"
	if settings.YTDLPPath != "" {
		ytdlp = settings.YTDLPPath
	}
	ffmpeg := convert.FFmpegCommand
	ffprobe := convert.FFprobeCommand
	if settings.FFmpegPath != "" {
		ffmpeg = settings.FFmpegPath
		ffprobe = convert.SiblingTool(settings.FFmpegPath, convert.FFprobeCommand)
	}
	return []string{ytdlp, ffmpeg, ffprobe}
}

func printReport(w io.Writer, result platform.Report) {
	for _, item := range result.Items {
		fmt.Fprintf(w, "[%s] %s: %s\n", item.Status, item.Name, item.Message)
		if item.Hint != "" {
			fmt.Fprintf(w, "      %s\n", item.Hint)
		}
	}
}
