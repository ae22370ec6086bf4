package model

// Stage identifies the step of the download pipeline that produced a result
type Stage string

const (
	// StageMetadata is the metadata-only fetch performed before downloading
	StageMetadata Stage = "metadata"

	// StageDownload is the transfer of media data to disk
	StageDownload Stage = "download"

	// StagePostprocess is the container conversion after the transfer
	StagePostprocess Stage = "postprocess"
)

// String returns the string representation of Stage
func (s Stage) String() string {
	return string(s)
}

// Description returns a short human readable label for the stage
func (s Stage) Description() string {
	switch s {
	case StageMetadata:
		return "fetching video information"
	case StageDownload:
		return "downloading"
	case StagePostprocess:
		return "post-processing"
	default:
		return string(s)
	}
}
