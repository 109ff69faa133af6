package service

import (
	"testing"

	"studio-schedule-bot/internal/models"
)

func pendingDates(pending []PendingOccurrence) map[string]bool {
	set := make(map[string]bool, len(pending))
	for _, p := range pending {
		set[p.Date] = true
	}
	return set
}

func TestPendingOccurrencesExhaustive(t *testing.T) {
	env := newTestEnv(t)
	modality := env.createModality(t, "Pilates")
	slot := env.createSlot(t, 3, "10:00", modality.ID)

	// 2026-03-11 gets a submission, 2026-03-04 is a holiday. The pinned
	// clock is Wednesday 2026-03-18, so that date is in the future portion.
	if err := env.holidays.AddCustomDate("2026-03-04", "Emenda de feriado"); err != nil {
		t.Fatalf("add holiday: %v", err)
	}
	if _, err := env.attendance.Submit(SubmitInput{
		SlotID: slot.ID, Date: "2026-03-11", SubmittedBy: 42,
	}); err != nil {
		t.Fatalf("submit: %v", err)
	}

	pending, err := env.reconciliation.PendingOccurrences("2026-02-25", "2026-03-31", PendingFilter{})
	if err != nil {
		t.Fatalf("pending: %v", err)
	}

	got := pendingDates(pending)
	if !got["2026-02-25"] {
		t.Error("2026-02-25 has no record and should be pending")
	}
	if got["2026-03-04"] {
		t.Error("holiday must never be pending")
	}
	if got["2026-03-11"] {
		t.Error("submitted occurrence must not be pending")
	}
	if got["2026-03-18"] || got["2026-03-25"] {
		t.Error("today and future dates must not be pending by default")
	}
	if len(pending) != 1 {
		t.Errorf("pending count = %d, want 1", len(pending))
	}
}

func TestPendingIncludeToday(t *testing.T) {
	env := newTestEnv(t)
	modality := env.createModality(t, "Pilates")
	env.createSlot(t, 3, "10:00", modality.ID)

	pending, err := env.reconciliation.PendingOccurrences("2026-03-18", "2026-03-18", PendingFilter{IncludeToday: true})
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if len(pending) != 1 || pending[0].Date != "2026-03-18" {
		t.Errorf("IncludeToday should surface today's unsubmitted class, got %v", pending)
	}
}

func TestPendingHonorsPlatformStart(t *testing.T) {
	env := newTestEnv(t)
	modality := env.createModality(t, "Pilates")
	env.createSlot(t, 3, "10:00", modality.ID)

	env.reconciliation.PlatformStartDate = "2026-03-10"

	pending, err := env.reconciliation.PendingOccurrences("2026-02-01", "2026-03-17", PendingFilter{})
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	for _, p := range pending {
		if p.Date < "2026-03-10" {
			t.Errorf("occurrence %s predates the platform start", p.Date)
		}
	}
	if !pendingDates(pending)["2026-03-11"] {
		t.Error("2026-03-11 is after the platform start and should be pending")
	}
}

func TestPendingFilters(t *testing.T) {
	env := newTestEnv(t)
	pilates := env.createModality(t, "Pilates")
	yoga := env.createModality(t, "Yoga")
	env.createSlot(t, 3, "10:00", pilates.ID)
	env.createSlot(t, 3, "11:00", yoga.ID)

	all, err := env.reconciliation.PendingOccurrences("2026-03-11", "2026-03-11", PendingFilter{})
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("unfiltered count = %d, want 2", len(all))
	}

	filtered, err := env.reconciliation.PendingOccurrences("2026-03-11", "2026-03-11", PendingFilter{ModalityID: &yoga.ID})
	if err != nil {
		t.Fatalf("pending filtered: %v", err)
	}
	if len(filtered) != 1 || filtered[0].ModalityName != "Yoga" {
		t.Errorf("modality filter failed: %v", filtered)
	}
}

func TestPendingInDefaultWindow(t *testing.T) {
	env := newTestEnv(t)
	modality := env.createModality(t, "Pilates")
	env.createSlot(t, 3, "10:00", modality.ID)

	pending, err := env.reconciliation.PendingInDefaultWindow(14, PendingFilter{})
	if err != nil {
		t.Fatalf("pending: %v", err)
	}

	// Window [2026-03-04, 2026-03-17] relative to the pinned Wednesday.
	got := pendingDates(pending)
	if !got["2026-03-04"] || !got["2026-03-11"] {
		t.Errorf("expected both trailing Wednesdays pending, got %v", got)
	}
	if got["2026-03-18"] {
		t.Error("today must be excluded from the default window")
	}

	if _, err := env.reconciliation.PendingInDefaultWindow(0, PendingFilter{}); err == nil {
		t.Error("zero window must be rejected")
	}
}

func TestPendingSkipsInactiveSlots(t *testing.T) {
	env := newTestEnv(t)
	modality := env.createModality(t, "Pilates")
	slot := env.createSlot(t, 3, "10:00", modality.ID)

	if err := env.slotRepo.Deactivate(slot.ID); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	pending, err := env.reconciliation.PendingOccurrences("2026-03-01", "2026-03-17", PendingFilter{})
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("deactivated slot generated %d pending occurrences", len(pending))
	}
}

func TestSortPendingForDisplay(t *testing.T) {
	pending := []PendingOccurrence{
		{Date: "2026-03-04", SlotID: 2},
		{Date: "2026-03-11", SlotID: 9},
		{Date: "2026-03-11", SlotID: 1},
	}
	SortPendingForDisplay(pending)

	want := []struct {
		date string
		slot uint
	}{
		{"2026-03-11", 1},
		{"2026-03-11", 9},
		{"2026-03-04", 2},
	}
	for i, w := range want {
		if pending[i].Date != w.date || pending[i].SlotID != w.slot {
			t.Fatalf("position %d = %s/%d, want %s/%d", i, pending[i].Date, pending[i].SlotID, w.date, w.slot)
		}
	}
}

func TestSubmittedPlaceholderDoesNotCount(t *testing.T) {
	env := newTestEnv(t)
	modality := env.createModality(t, "Pilates")
	slot := env.createSlot(t, 3, "10:00", modality.ID)

	// A pending placeholder row is not a submission.
	placeholder := &models.AttendanceRecord{
		SlotID:       slot.ID,
		Date:         "2026-03-11",
		Weekday:      3,
		ModalityName: modality.Name,
		StartTime:    slot.StartTime,
		EndTime:      slot.EndTime,
		Status:       models.AttendancePending,
		SubmittedAt:  testNow,
	}
	if err := env.attendanceRepo.Create(placeholder); err != nil {
		t.Fatalf("create placeholder: %v", err)
	}

	pending, err := env.reconciliation.PendingOccurrences("2026-03-11", "2026-03-11", PendingFilter{})
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if !pendingDates(pending)["2026-03-11"] {
		t.Error("a pending placeholder must still leave the occurrence pending")
	}
}
