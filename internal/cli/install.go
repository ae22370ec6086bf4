package cli

import (
	"context"
	"fmt"

	goytdlp "github.com/lrstanley/go-ytdlp"
	"github.com/spf13/cobra"
)

// installStep downloads one tool into the go-ytdlp cache
type installStep struct {
	name    string
	install func(ctx context.Context) (*goytdlp.ResolvedInstall, error)
}

var installSteps = []installStep{
	{"yt-dlp", func(ctx context.Context) (*goytdlp.ResolvedInstall, error) { return goytdlp.Install(ctx, nil) }},
	{"ffmpeg", func(ctx context.Context) (*goytdlp.ResolvedInstall, error) { return goytdlp.InstallFFmpeg(ctx, nil) }},
	{"ffprobe", func(ctx context.Context) (*goytdlp.ResolvedInstall, error) { return goytdlp.InstallFFprobe(ctx, nil) }},
}

func newInstallCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "install",
		Short: "Download yt-dlp, ffmpeg and ffprobe if they are not available",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, step := range installSteps {
				fmt.Fprintf(out, "Installing %s...\n", step.name)
				resolved, err := step.install(cmd.Context())
				if err != nil {
					return fmt.Errorf("failed to install %s: %w", step.name, err)
				}
				fmt.Fprintf(out, "%s: %s\n", step.name, resolved.Executable)
			}
			return nil
		},
	}
}
