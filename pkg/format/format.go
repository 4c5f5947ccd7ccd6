package format

import (
	"fmt"
	"math"
	"time"

	"github.com/dustin/go-humanize"
)

// Bytes formats a byte count with SI units. Negative counts format as zero.
func Bytes(n int64) string {
	if n < 0 {
		n = 0
	}

	return humanize.Bytes(uint64(n))
}

func Rate(bytesPerSecond int64) string {
	return Bytes(bytesPerSecond) + "/s"
}

// Duration formats d in its largest whole unit out of seconds, minutes, hours and days.
func Duration(d time.Duration) string {
	secs := int64(d / time.Second)
	if secs < 0 {
		secs = 0
	}

	switch {
	case secs < 60:
		return fmt.Sprintf("%ds", secs)
	case secs < 3600:
		return fmt.Sprintf("%.0fm", math.Round(float64(secs)/60))
	case secs < 86400:
		return fmt.Sprintf("%.0fh", math.Round(float64(secs)/3600))
	default:
		return fmt.Sprintf("%.0fd", math.Round(float64(secs)/86400))
	}
}

func Percent(progress float64) string {
	return fmt.Sprintf("%.1f%%", progress*100)
}

func Count(n int) string {
	return humanize.Comma(int64(n))
}
