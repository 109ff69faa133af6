package service

import (
	"testing"

	"studio-schedule-bot/internal/models"
)

func TestSubmitComputesAggregates(t *testing.T) {
	env := newTestEnv(t)
	modality := env.createModality(t, "Pilates")
	slot := env.createSlot(t, 3, "10:00", modality.ID)

	ana := env.createStudent(t, "Ana")
	bia := env.createStudent(t, "Bia")
	caio := env.createStudent(t, "Caio")
	env.enroll(t, ana.ID, slot.ID)
	env.enroll(t, bia.ID, slot.ID)
	frozen := env.enroll(t, caio.ID, slot.ID)

	if _, err := env.enrollments.SetPauseState(frozen.ID, models.PauseFrozen); err != nil {
		t.Fatalf("pause: %v", err)
	}

	record, err := env.attendance.Submit(SubmitInput{
		SlotID:      slot.ID,
		Date:        "2026-03-11",
		Marks:       []RosterMark{markPresent(ana.ID), markAbsent(bia.ID, false)},
		SubmittedBy: 42,
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	if record.TotalActive != 2 {
		t.Errorf("TotalActive = %d, want 2 (paused student excluded)", record.TotalActive)
	}
	if record.Presences != 1 || record.Absences != 1 {
		t.Errorf("Presences/Absences = %d/%d, want 1/1", record.Presences, record.Absences)
	}
	if len(record.Entries) != 3 {
		t.Fatalf("roster size = %d, want 3 (paused student still listed)", len(record.Entries))
	}
	if record.Status != models.AttendanceSubmitted {
		t.Errorf("status = %q, want submitted", record.Status)
	}
	if record.ModalityName != "Pilates" || record.Weekday != 3 {
		t.Errorf("denormalized slot data wrong: %q weekday %d", record.ModalityName, record.Weekday)
	}

	var pausedEntry *models.RosterEntry
	for i := range record.Entries {
		if record.Entries[i].StudentID == caio.ID {
			pausedEntry = &record.Entries[i]
		}
	}
	if pausedEntry == nil || pausedEntry.StatusSnapshot != models.PauseFrozen {
		t.Error("paused student should carry its pause state snapshot")
	}
}

func TestSubmitEmptyRosterStillCountsAsDone(t *testing.T) {
	env := newTestEnv(t)
	modality := env.createModality(t, "Yoga")
	slot := env.createSlot(t, 3, "08:00", modality.ID)

	record, err := env.attendance.Submit(SubmitInput{
		SlotID:      slot.ID,
		Date:        "2026-03-11",
		SubmittedBy: 42,
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if record.TotalActive != 0 || record.Presences != 0 || record.Absences != 0 {
		t.Errorf("empty roster should have zero aggregates, got %d/%d/%d",
			record.TotalActive, record.Presences, record.Absences)
	}
	if !record.IsSubmitted() {
		t.Error("empty submission must still count as done")
	}
}

func TestResubmitReplacesRecord(t *testing.T) {
	env := newTestEnv(t)
	modality := env.createModality(t, "Pilates")
	slot := env.createSlot(t, 3, "10:00", modality.ID)
	ana := env.createStudent(t, "Ana")
	env.enroll(t, ana.ID, slot.ID)

	first, err := env.attendance.Submit(SubmitInput{
		SlotID: slot.ID, Date: "2026-03-11",
		Marks:       []RosterMark{markAbsent(ana.ID, false)},
		SubmittedBy: 42,
	})
	if err != nil {
		t.Fatalf("first submit: %v", err)
	}

	second, err := env.attendance.Submit(SubmitInput{
		SlotID: slot.ID, Date: "2026-03-11",
		Marks:       []RosterMark{markPresent(ana.ID)},
		SubmittedBy: 42,
	})
	if err != nil {
		t.Fatalf("second submit: %v", err)
	}

	if second.ID == first.ID {
		t.Error("resubmission should create a fresh record")
	}

	var count int64
	env.db.Model(&models.AttendanceRecord{}).
		Where("slot_id = ? AND date = ?", slot.ID, "2026-03-11").Count(&count)
	if count != 1 {
		t.Fatalf("records for the key = %d, want exactly 1", count)
	}

	live, err := env.attendance.Status(slot.ID, "2026-03-11")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if live.Presences != 1 || live.Absences != 0 {
		t.Errorf("live record should reflect the resubmission, got %d/%d", live.Presences, live.Absences)
	}
}

func TestSubmitConfirmsAbsenceNotice(t *testing.T) {
	env := newTestEnv(t)
	modality := env.createModality(t, "Pilates")
	slot := env.createSlot(t, 3, "10:00", modality.ID)
	ana := env.createStudent(t, "Ana")
	env.enroll(t, ana.ID, slot.ID)

	notice, err := env.absence.Notify(NotifyInput{StudentID: ana.ID, SlotID: slot.ID, Date: "2026-03-11"})
	if err != nil {
		t.Fatalf("notify: %v", err)
	}
	if notice.Status != models.NoticePending {
		t.Fatalf("fresh notice status = %q, want pending", notice.Status)
	}

	_, err = env.attendance.Submit(SubmitInput{
		SlotID: slot.ID, Date: "2026-03-11",
		Marks:       []RosterMark{markAbsent(ana.ID, true)},
		SubmittedBy: 42,
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	confirmed, err := env.noticeRepo.GetByID(notice.ID)
	if err != nil {
		t.Fatalf("reload notice: %v", err)
	}
	if confirmed.Status != models.NoticeConfirmed || confirmed.ConfirmedAt == nil {
		t.Errorf("notice after submission = %q, want confirmed with timestamp", confirmed.Status)
	}
}

func TestSubmitDoesNotConfirmNoticeWhenPresent(t *testing.T) {
	env := newTestEnv(t)
	modality := env.createModality(t, "Pilates")
	slot := env.createSlot(t, 3, "10:00", modality.ID)
	ana := env.createStudent(t, "Ana")
	env.enroll(t, ana.ID, slot.ID)

	notice, err := env.absence.Notify(NotifyInput{StudentID: ana.ID, SlotID: slot.ID, Date: "2026-03-11"})
	if err != nil {
		t.Fatalf("notify: %v", err)
	}

	// The student showed up after all.
	_, err = env.attendance.Submit(SubmitInput{
		SlotID: slot.ID, Date: "2026-03-11",
		Marks:       []RosterMark{markPresent(ana.ID)},
		SubmittedBy: 42,
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	reloaded, err := env.noticeRepo.GetByID(notice.ID)
	if err != nil {
		t.Fatalf("reload notice: %v", err)
	}
	if reloaded.Status != models.NoticePending {
		t.Errorf("notice = %q, want still pending: confirmation requires a real absence", reloaded.Status)
	}
}

func TestSubmitMergesGuestsAndResolvesOutcomes(t *testing.T) {
	env := newTestEnv(t)
	modality := env.createModality(t, "Pilates")
	origin := env.createSlot(t, 1, "10:00", modality.ID)
	target := env.createSlot(t, 3, "10:00", modality.ID)

	ana := env.createStudent(t, "Ana")
	guest := env.createStudent(t, "Duda")
	env.enroll(t, ana.ID, target.ID)
	guestEnrollment := env.enroll(t, guest.ID, origin.ID)

	request, err := env.reschedules.CreateTemporary(CreateRescheduleInput{
		StudentID:      guest.ID,
		EnrollmentID:   guestEnrollment.ID,
		OriginalSlotID: origin.ID,
		OriginalDate:   "2026-03-09",
		NewSlotID:      target.ID,
		NewDate:        "2026-03-11",
		RequestedBy:    42,
	})
	if err != nil {
		t.Fatalf("create reschedule: %v", err)
	}
	if _, err := env.reschedules.Approve(request.ID, 42); err != nil {
		t.Fatalf("approve: %v", err)
	}

	record, err := env.attendance.Submit(SubmitInput{
		SlotID: target.ID, Date: "2026-03-11",
		Marks:       []RosterMark{markPresent(ana.ID), markPresent(guest.ID)},
		SubmittedBy: 42,
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	if record.GuestCount != 1 {
		t.Errorf("GuestCount = %d, want 1", record.GuestCount)
	}
	var guestEntry *models.RosterEntry
	for i := range record.Entries {
		if record.Entries[i].IsRescheduleGuest {
			guestEntry = &record.Entries[i]
		}
	}
	if guestEntry == nil {
		t.Fatal("guest missing from roster")
	}
	if guestEntry.RescheduleRequestID == nil || *guestEntry.RescheduleRequestID != request.ID {
		t.Error("guest entry should carry the originating request id")
	}

	outcome, err := env.reschedules.OutcomeFor(request.ID)
	if err != nil {
		t.Fatalf("outcome: %v", err)
	}
	if outcome.Status != models.OutcomeRealizado || outcome.ResolvedAt == nil {
		t.Errorf("outcome = %q, want realizado with timestamp", outcome.Status)
	}
}

func TestSubmitMarksGuestAbsence(t *testing.T) {
	env := newTestEnv(t)
	modality := env.createModality(t, "Pilates")
	origin := env.createSlot(t, 1, "10:00", modality.ID)
	target := env.createSlot(t, 3, "10:00", modality.ID)

	guest := env.createStudent(t, "Duda")
	guestEnrollment := env.enroll(t, guest.ID, origin.ID)

	request, err := env.reschedules.CreateTemporary(CreateRescheduleInput{
		StudentID:      guest.ID,
		EnrollmentID:   guestEnrollment.ID,
		OriginalSlotID: origin.ID,
		OriginalDate:   "2026-03-09",
		NewSlotID:      target.ID,
		NewDate:        "2026-03-11",
		RequestedBy:    42,
	})
	if err != nil {
		t.Fatalf("create reschedule: %v", err)
	}
	if _, err := env.reschedules.Approve(request.ID, 42); err != nil {
		t.Fatalf("approve: %v", err)
	}

	if _, err := env.attendance.Submit(SubmitInput{
		SlotID: target.ID, Date: "2026-03-11",
		Marks:       []RosterMark{markAbsent(guest.ID, false)},
		SubmittedBy: 42,
	}); err != nil {
		t.Fatalf("submit: %v", err)
	}

	outcome, err := env.reschedules.OutcomeFor(request.ID)
	if err != nil {
		t.Fatalf("outcome: %v", err)
	}
	if outcome.Status != models.OutcomeFaltaRegistrada {
		t.Errorf("outcome = %q, want falta_registrada", outcome.Status)
	}
}

func TestAmendRecomputesAggregates(t *testing.T) {
	env := newTestEnv(t)
	modality := env.createModality(t, "Pilates")
	slot := env.createSlot(t, 3, "10:00", modality.ID)
	ana := env.createStudent(t, "Ana")
	bia := env.createStudent(t, "Bia")
	env.enroll(t, ana.ID, slot.ID)
	env.enroll(t, bia.ID, slot.ID)

	record, err := env.attendance.Submit(SubmitInput{
		SlotID: slot.ID, Date: "2026-03-11",
		Marks:       []RosterMark{markAbsent(ana.ID, false), markPresent(bia.ID)},
		SubmittedBy: 42,
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	amended, err := env.attendance.Amend(record.ID, []RosterMark{markPresent(ana.ID)})
	if err != nil {
		t.Fatalf("amend: %v", err)
	}

	if amended.Status != models.AttendanceCorrected {
		t.Errorf("status = %q, want corrected", amended.Status)
	}
	if amended.Presences != 2 || amended.Absences != 0 {
		t.Errorf("aggregates after amend = %d/%d, want 2/0", amended.Presences, amended.Absences)
	}
	if amended.SubmittedBy != 42 {
		t.Error("amend must preserve the original submitter")
	}
}

func TestSubmitRejectsBadInput(t *testing.T) {
	env := newTestEnv(t)

	if _, err := env.attendance.Submit(SubmitInput{SlotID: 1, Date: "11/03/2026"}); err == nil {
		t.Error("expected validation error for non ISO date")
	}
	if _, err := env.attendance.Submit(SubmitInput{SlotID: 999, Date: "2026-03-11"}); err != ErrNotFound {
		t.Errorf("unknown slot: got %v, want ErrNotFound", err)
	}
}
