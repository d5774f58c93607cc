package utils

import (
    "fmt"
    "math"
    "time"
)

var sinceUnits = []struct {
    seconds float64
    label   string
}{
    {31536000, "year"},
    {2592000, "month"},
    {86400, "day"},
    {3600, "h"},
    {60, "m"},
    {1, "s"},
}

// TimeSince renders the distance from then to now as "<n> <unit>" using the
// largest unit with a count of at least one, e.g. "3 day" or "5 m".
// Anything under a second, or in the future, is "Just now".
func TimeSince(then, now time.Time) string {
    secs := math.Round(now.Sub(then).Seconds())
    for _, u := range sinceUnits {
        if n := math.Floor(secs / u.seconds); n >= 1 {
            return fmt.Sprintf("%d %s", int64(n), u.label)
        }
    }
    return "Just now"
}
