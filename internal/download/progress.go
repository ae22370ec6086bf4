package download

import (
	"fmt"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
)

// percentString formats downloaded/total as a percentage, or returns "" when
// the total is unknown
func percentString(downloaded, total int64) string {
	if total <= 0 {
		return ""
	}
	percent := float64(downloaded) / float64(total) * 100
	if percent > 100 {
		percent = 100
	}
	return fmt.Sprintf("%.1f%%", percent)
}

// speedString formats bytes transferred over elapsed as a rate, or returns ""
// when it cannot be computed
func speedString(bytes int64, elapsed time.Duration) string {
	if bytes < 0 || elapsed <= 0 {
		return ""
	}
	bytesPerSecond := float64(bytes) / elapsed.Seconds()
	return humanize.IBytes(uint64(bytesPerSecond)) + "/s"
}

// speedMeter reports the current transfer rate from the difference between
// consecutive progress samples of the same stream
type speedMeter struct {
	mu     sync.Mutex
	stream string
	bytes  int64
	at     time.Time
}

// Speed records a sample for stream and returns the rate since the previous
// one. The first sample of a stream falls back to the average since started.
func (m *speedMeter) Speed(stream string, downloaded int64, started, now time.Time) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	prevBytes, prevAt := m.bytes, m.at
	sameStream := stream == m.stream && !prevAt.IsZero()
	m.stream, m.bytes, m.at = stream, downloaded, now

	if !sameStream || downloaded < prevBytes || !now.After(prevAt) {
		if started.IsZero() || downloaded <= 0 {
			return ""
		}
		return speedString(downloaded, now.Sub(started))
	}
	return speedString(downloaded-prevBytes, now.Sub(prevAt))
}
