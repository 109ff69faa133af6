package service

import (
	"reflect"
	"testing"
)

func TestExpandOccurrencesWeekly(t *testing.T) {
	tests := []struct {
		name     string
		weekday  int
		start    string
		end      string
		cutoff   string
		excluded map[string]bool
		want     []string
	}{
		{
			name:    "wednesdays of march",
			weekday: 3,
			start:   "2026-03-01",
			end:     "2026-03-31",
			want:    []string{"2026-03-04", "2026-03-11", "2026-03-18", "2026-03-25"},
		},
		{
			name:    "start on the matching weekday",
			weekday: 3,
			start:   "2026-03-04",
			end:     "2026-03-11",
			want:    []string{"2026-03-04", "2026-03-11"},
		},
		{
			name:    "single day range",
			weekday: 0,
			start:   "2026-03-15",
			end:     "2026-03-15",
			want:    []string{"2026-03-15"},
		},
		{
			name:    "no matching weekday in range",
			weekday: 1,
			start:   "2026-03-17",
			end:     "2026-03-20",
			want:    []string{},
		},
		{
			name:     "holiday excluded",
			weekday:  3,
			start:    "2026-03-01",
			end:      "2026-03-31",
			excluded: map[string]bool{"2026-03-11": true},
			want:     []string{"2026-03-04", "2026-03-18", "2026-03-25"},
		},
		{
			name:    "cutoff drops earlier dates",
			weekday: 3,
			start:   "2026-03-01",
			end:     "2026-03-31",
			cutoff:  "2026-03-10",
			want:    []string{"2026-03-11", "2026-03-18", "2026-03-25"},
		},
		{
			name:    "reversed range",
			weekday: 3,
			start:   "2026-03-31",
			end:     "2026-03-01",
			want:    []string{},
		},
		{
			name:    "invalid weekday",
			weekday: 7,
			start:   "2026-03-01",
			end:     "2026-03-31",
			want:    []string{},
		},
		{
			name:    "invalid date",
			weekday: 3,
			start:   "2026-03-xx",
			end:     "2026-03-31",
			want:    []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExpandOccurrences(tt.weekday, tt.start, tt.end, tt.cutoff, tt.excluded)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ExpandOccurrences() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExpandOccurrencesAscendingWithoutDuplicates(t *testing.T) {
	got := ExpandOccurrences(5, "2026-01-01", "2026-06-30", "", nil)
	if len(got) == 0 {
		t.Fatal("expected occurrences over a six month range")
	}
	for i := 1; i < len(got); i++ {
		if got[i] <= got[i-1] {
			t.Fatalf("dates out of order at %d: %s then %s", i, got[i-1], got[i])
		}
	}
}
