package service

import (
	"errors"
	"testing"

	"studio-schedule-bot/internal/models"
)

func TestSeedNationalHolidaysIsIdempotent(t *testing.T) {
	env := newTestEnv(t)

	if err := env.holidays.SeedNationalHolidays(2026); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := env.holidays.SeedNationalHolidays(2026); err != nil {
		t.Fatalf("re-seed: %v", err)
	}

	all, err := env.holidays.ListAll()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	seen := map[string]int{}
	for _, h := range all {
		seen[h.Date]++
	}
	for date, count := range seen {
		if count > 1 {
			t.Errorf("date %s seeded %d times", date, count)
		}
	}
	if seen["2026-12-25"] != 1 {
		t.Error("expected Natal in the seeded set")
	}
}

func TestCustomDatesAndExclusion(t *testing.T) {
	env := newTestEnv(t)

	if err := env.holidays.AddCustomDate("2026-03-11", "Reforma do estúdio"); err != nil {
		t.Fatalf("add: %v", err)
	}

	var validation *ValidationError
	if err := env.holidays.AddCustomDate("2026-03-11", "De novo"); !errors.As(err, &validation) {
		t.Errorf("duplicate date: got %v, want ValidationError", err)
	}

	excluded, err := env.holidays.ExcludedDates("2026-03-01", "2026-03-31")
	if err != nil {
		t.Fatalf("excluded: %v", err)
	}
	if !excluded["2026-03-11"] {
		t.Error("custom date missing from the excluded set")
	}

	// Mutations must invalidate the cached range.
	if err := env.holidays.RemoveDate("2026-03-11"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	excluded, err = env.holidays.ExcludedDates("2026-03-01", "2026-03-31")
	if err != nil {
		t.Fatalf("excluded after removal: %v", err)
	}
	if excluded["2026-03-11"] {
		t.Error("removed date still excluded, cache not flushed")
	}
}

func TestSeededHolidaySource(t *testing.T) {
	env := newTestEnv(t)
	if err := env.holidays.SeedNationalHolidays(2026); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := env.holidays.AddCustomDate("2026-03-11", "Reforma"); err != nil {
		t.Fatalf("add: %v", err)
	}

	all, _ := env.holidays.ListAll()
	sources := map[string]string{}
	for _, h := range all {
		sources[h.Date] = h.Source
	}
	if sources["2026-12-25"] != models.HolidaySourceNational {
		t.Errorf("Natal source = %q", sources["2026-12-25"])
	}
	if sources["2026-03-11"] != models.HolidaySourceCustom {
		t.Errorf("custom source = %q", sources["2026-03-11"])
	}
}
