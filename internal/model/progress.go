package model

// ProgressStatus is the status tag of a progress notification
type ProgressStatus string

const (
	ProgressDownloading ProgressStatus = "downloading"
	ProgressFinished    ProgressStatus = "finished"
)

// NotAvailable is rendered in place of an absent percentage or speed
const NotAvailable = "N/A"

// ProgressEvent is a single notification emitted by an extractor while it
// transfers data. Percent and Speed are empty when the extractor could not
// compute them.
type ProgressEvent struct {
	Status  ProgressStatus
	Percent string // e.g. "45.0%"
	Speed   string // e.g. "1.2 MiB/s"
}

// PercentOrDefault returns Percent, or NotAvailable if it is empty
func (e ProgressEvent) PercentOrDefault() string {
	if e.Percent == "" {
		return NotAvailable
	}
	return e.Percent
}

// SpeedOrDefault returns Speed, or NotAvailable if it is empty
func (e ProgressEvent) SpeedOrDefault() string {
	if e.Speed == "" {
		return NotAvailable
	}
	return e.Speed
}
