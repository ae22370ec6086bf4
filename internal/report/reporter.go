package report

import (
	"fmt"
	"io"
	"sync"

	"github.com/ytget/ytfetch/internal/model"
)

// Terminal control sequences
const (
	CarriageReturn = "\r"
	ClearLine      = "\x1b[K"
)

// Messages printed on the terminal
const (
	MsgFetching       = "Fetching video information..."
	MsgStarting       = "Starting download..."
	MsgPostProcessing = "Download finished. Now post-processing..."
	MsgCompleted      = "Download completed successfully!"
	MsgErrorPrefix    = "An error occurred: "
)

// Reporter writes user facing status lines. It is safe to use from the
// extractor's progress goroutine.
type Reporter struct {
	out     io.Writer
	mu      sync.Mutex
	midLine bool // last write was a progress line without a trailing newline
}

// New creates a reporter writing to out
func New(out io.Writer) *Reporter {
	return &Reporter{out: out}
}

// Progress renders a progress event. Statuses other than downloading and
// finished are ignored.
func (r *Reporter) Progress(event model.ProgressEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch event.Status {
	case model.ProgressDownloading:
		fmt.Fprintf(r.out, "%s%sDownloading... %s at %s",
			CarriageReturn, ClearLine, event.PercentOrDefault(), event.SpeedOrDefault())
		r.midLine = true
	case model.ProgressFinished:
		fmt.Fprintf(r.out, "\n%s\n", MsgPostProcessing)
		r.midLine = false
	}
}

// Fetching announces the metadata fetch
func (r *Reporter) Fetching() {
	r.println("\n" + MsgFetching)
}

// Metadata prints title and duration of the video about to be downloaded
func (r *Reporter) Metadata(meta *model.Metadata) {
	r.println(fmt.Sprintf("\nTitle: %s", meta.DisplayTitle()))
	r.println(fmt.Sprintf("Duration: %s seconds", meta.DurationSeconds()))
}

// Starting announces the download
func (r *Reporter) Starting() {
	r.println("\n" + MsgStarting)
}

// Completed announces success and where the file was written
func (r *Reporter) Completed(path string) {
	r.println("\n" + MsgCompleted)
	if path != "" {
		r.println(fmt.Sprintf("Saved: %s", path))
	}
}

// Failed prints the single error line
func (r *Reporter) Failed(err error) {
	r.println(MsgErrorPrefix + err.Error())
}

func (r *Reporter) println(line string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.midLine {
		fmt.Fprintln(r.out)
		r.midLine = false
	}
	fmt.Fprintln(r.out, line)
}
