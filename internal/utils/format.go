package utils

import (
	"strconv"
	"time"
)

const (
	sizeUnitStep        = 1024
	fractionalThreshold = 10
	timestampLayout     = "2006-01-02 15:04"
)

var sizeUnits = [...]string{"b", "kb", "mb", "gb", "tb", "pb"}

// FormatFileSize renders a byte count with a lower-case binary unit suffix:
// whole bytes below 1kb, one decimal below ten units and whole units above.
// Examples: 512b, 1.5kb, 1kb, 12mb.
func FormatFileSize(byteCount uint64) string {
	if byteCount < sizeUnitStep {
		return strconv.FormatUint(byteCount, 10) + sizeUnits[0]
	}
	scaled := float64(byteCount)
	unitIndex := 0
	for scaled >= sizeUnitStep && unitIndex < len(sizeUnits)-1 {
		scaled /= sizeUnitStep
		unitIndex++
	}
	precision := 0
	if scaled < fractionalThreshold {
		precision = 1
	}
	formatted := strconv.FormatFloat(scaled, 'f', precision, 64)
	if precision == 1 && formatted[len(formatted)-2:] == ".0" {
		formatted = formatted[:len(formatted)-2]
	}
	return formatted + sizeUnits[unitIndex]
}

// FormatTimestamp renders value in local time to the minute. The zero time
// renders as an empty string.
func FormatTimestamp(value time.Time) string {
	if value.IsZero() {
		return ""
	}
	return value.Local().Format(timestampLayout)
}
