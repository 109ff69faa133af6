package service

import (
	"studio-schedule-bot/pkg/dates"
)

// ExpandOccurrences lists the concrete dates on which a weekly slot occurs
// inside the inclusive range [startDate, endDate]. A date is included iff
// its weekday matches, it is not in the excluded set, and it is not before
// the cutoff (empty cutoff means none). Output is strictly ascending ISO
// dates.
//
// The function is pure: reversed or malformed ranges yield an empty slice,
// never an error.
func ExpandOccurrences(weekday int, startDate, endDate string, cutoff string, excluded map[string]bool) []string {
	occurrences := []string{}

	if weekday < 0 || weekday > 6 {
		return occurrences
	}

	start, err := dates.Parse(startDate)
	if err != nil {
		return occurrences
	}
	end, err := dates.Parse(endDate)
	if err != nil {
		return occurrences
	}
	if end.Before(start) {
		return occurrences
	}

	// Jump to the first matching weekday, then stride a week at a time.
	offset := (weekday - int(start.Weekday()) + 7) % 7
	for date := start.AddDate(0, 0, offset); !date.After(end); date = date.AddDate(0, 0, 7) {
		iso := dates.ToISO(date)
		if cutoff != "" && iso < cutoff {
			continue
		}
		if excluded[iso] {
			continue
		}
		occurrences = append(occurrences, iso)
	}

	return occurrences
}
