package lookup

import (
	"fmt"
	"time"
)

// FormatClock renders epoch seconds as H:MM in the process's local time zone.
func FormatClock(epoch int64) string {
	return FormatClockIn(epoch, time.Local)
}

// FormatClockIn renders epoch seconds as H:MM in loc. Hours are not padded.
func FormatClockIn(epoch int64, loc *time.Location) string {
	t := time.Unix(epoch, 0).In(loc)
	return fmt.Sprintf("%d:%02d", t.Hour(), t.Minute())
}
