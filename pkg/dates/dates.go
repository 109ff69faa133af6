package dates

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ISOLayout is the date-only storage format used everywhere in the system.
// Dates are kept as plain "YYYY-MM-DD" strings so that date-only semantics
// never depend on the timezone a timestamp happened to be stored in.
const ISOLayout = "2006-01-02"

// ToISO converts a timestamp to its date-only key.
func ToISO(t time.Time) string {
	return t.Format(ISOLayout)
}

// Parse parses a "YYYY-MM-DD" string into a local-midnight time.
func Parse(iso string) (time.Time, error) {
	t, err := time.ParseInLocation(ISOLayout, iso, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", iso)
	}
	return t, nil
}

// IsISO reports whether s is a well-formed date-only string.
func IsISO(s string) bool {
	_, err := Parse(s)
	return err == nil
}

// AddDays shifts an ISO date by n calendar days.
func AddDays(iso string, n int) string {
	t, err := Parse(iso)
	if err != nil {
		return iso
	}
	return ToISO(t.AddDate(0, 0, n))
}

// Weekday returns the day of week for an ISO date (0=Sunday..6=Saturday).
func Weekday(iso string) (int, error) {
	t, err := Parse(iso)
	if err != nil {
		return 0, err
	}
	return int(t.Weekday()), nil
}

// DaysBetween returns the number of calendar days from a to b.
// Negative when b is before a. Both sides are compared as UTC midnights,
// so a DST transition in the local zone never shortens a day to 23h.
func DaysBetween(a, b string) (int, error) {
	ta, err := Parse(a)
	if err != nil {
		return 0, err
	}
	tb, err := Parse(b)
	if err != nil {
		return 0, err
	}
	ua := time.Date(ta.Year(), ta.Month(), ta.Day(), 0, 0, 0, 0, time.UTC)
	ub := time.Date(tb.Year(), tb.Month(), tb.Day(), 0, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua).Hours() / 24), nil
}

// ValidClock reports whether s is a well-formed "HH:MM" local time.
func ValidClock(s string) bool {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return false
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil || hours < 0 || hours > 23 {
		return false
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil || minutes < 0 || minutes > 59 {
		return false
	}
	return true
}
