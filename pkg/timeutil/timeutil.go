package timeutil

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FormatTime formats seconds as H:MM:SS (e.g. 0:01:30, 1:11:22).
func FormatTime(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	totalSeconds := int(seconds)
	hours := totalSeconds / 3600
	mins := (totalSeconds % 3600) / 60
	secs := totalSeconds % 60
	return fmt.Sprintf("%d:%02d:%02d", hours, mins, secs)
}

// FormatTimePrecise formats seconds as H:MM:SS.mmm.
func FormatTimePrecise(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	millis := int64(math.Round(seconds * 1000))
	hours := millis / 3_600_000
	mins := (millis % 3_600_000) / 60_000
	secs := (millis % 60_000) / 1000
	return fmt.Sprintf("%d:%02d:%02d.%03d", hours, mins, secs, millis%1000)
}

// ParseTimeToSeconds parses a time string in H:MM:SS, MM:SS, or raw seconds format.
// The last component may carry a fraction (e.g. 1:02.5). Minutes and seconds
// after the first component must be below 60.
func ParseTimeToSeconds(timeStr string) (float64, error) {
	fail := fmt.Errorf("expected HH:MM:SS, MM:SS, or seconds, got '%s'", timeStr)

	parts := strings.Split(strings.TrimSpace(timeStr), ":")
	if len(parts) > 3 {
		return 0, fail
	}

	var total float64
	for i, part := range parts {
		last := i == len(parts)-1
		var v float64
		if last {
			f, err := strconv.ParseFloat(part, 64)
			if err != nil {
				return 0, fail
			}
			v = f
		} else {
			n, err := strconv.Atoi(part)
			if err != nil {
				return 0, fail
			}
			v = float64(n)
		}
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, fail
		}
		if i > 0 && v >= 60 {
			return 0, fail
		}
		total = total*60 + v
	}
	return total, nil
}
