package convert

import "context"

// Converter defines the interface for the container conversion step.
type Converter interface {
	// Available reports whether the conversion tool can be executed.
	Available() bool

	// Convert writes inputPath to outputPath in the container implied by the
	// output extension.
	Convert(ctx context.Context, inputPath, outputPath string) error
}
