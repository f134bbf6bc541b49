package flip

import (
	"fmt"
	"time"
)

// weekdayNames are the single-character Japanese weekday names, Sunday first.
//
//nolint:gochecknoglobals // Lookup table.
var weekdayNames = [...]string{"日", "月", "火", "水", "木", "金", "土"}

// Readout returns the date line shown under the cards, e.g. "2026年10月16日 (金)".
func Readout(t time.Time) string {
	return fmt.Sprintf("%d年%d月%d日 (%s)", t.Year(), int(t.Month()), t.Day(), weekdayNames[t.Weekday()])
}
