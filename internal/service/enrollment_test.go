package service

import (
	"errors"
	"testing"

	"studio-schedule-bot/internal/models"
)

func TestSetPauseState(t *testing.T) {
	env := newTestEnv(t)
	modality := env.createModality(t, "Pilates")
	slot := env.createSlot(t, 3, "10:00", modality.ID)
	ana := env.createStudent(t, "Ana")
	enrollment := env.enroll(t, ana.ID, slot.ID)

	var validation *ValidationError
	if _, err := env.enrollments.SetPauseState(enrollment.ID, "ferias"); !errors.As(err, &validation) {
		t.Errorf("unknown state: got %v, want ValidationError", err)
	}
	if _, err := env.enrollments.SetPauseState(enrollment.ID, models.PauseNone); !errors.As(err, &validation) {
		t.Errorf("clearing via SetPauseState: got %v, want ValidationError", err)
	}

	paused, err := env.enrollments.SetPauseState(enrollment.ID, models.PauseAbsent)
	if err != nil {
		t.Fatalf("pause: %v", err)
	}
	if !paused.IsPaused() {
		t.Error("enrollment should report paused")
	}

	// The states are one field: switching replaces, never stacks.
	switched, err := env.enrollments.SetPauseState(enrollment.ID, models.PauseWaitlisted)
	if err != nil {
		t.Fatalf("switch: %v", err)
	}
	if switched.PauseState != models.PauseWaitlisted {
		t.Errorf("state = %q, want waitlisted", switched.PauseState)
	}
}

func TestSubstituteRequiresPausedSeat(t *testing.T) {
	env := newTestEnv(t)
	modality := env.createModality(t, "Pilates")
	slot := env.createSlot(t, 3, "10:00", modality.ID)
	ana := env.createStudent(t, "Ana")
	bia := env.createStudent(t, "Bia")
	caio := env.createStudent(t, "Caio")
	enrollment := env.enroll(t, ana.ID, slot.ID)

	var conflict *StateConflictError
	if _, err := env.enrollments.EnrollSubstitute(enrollment.ID, bia.ID); !errors.As(err, &conflict) {
		t.Fatalf("substituting an active seat: got %v, want StateConflictError", err)
	}

	if _, err := env.enrollments.SetPauseState(enrollment.ID, models.PauseFrozen); err != nil {
		t.Fatalf("pause: %v", err)
	}
	substitute, err := env.enrollments.EnrollSubstitute(enrollment.ID, bia.ID)
	if err != nil {
		t.Fatalf("substitute: %v", err)
	}
	if !substitute.IsSubstitute() || *substitute.ReplacesEnrollmentID != enrollment.ID {
		t.Error("substitute should reference the paused enrollment")
	}

	// One seat, one substitute.
	if _, err := env.enrollments.EnrollSubstitute(enrollment.ID, caio.ID); !errors.As(err, &conflict) {
		t.Fatalf("second substitute: got %v, want StateConflictError", err)
	}
	if len(conflict.Substitutes) != 1 || conflict.Substitutes[0].ID != substitute.ID {
		t.Error("conflict should name the occupying substitute")
	}
}

func TestResumeWithoutConflict(t *testing.T) {
	env := newTestEnv(t)
	modality := env.createModality(t, "Pilates")
	slot := env.createSlot(t, 3, "10:00", modality.ID)
	ana := env.createStudent(t, "Ana")
	enrollment := env.enroll(t, ana.ID, slot.ID)

	if _, err := env.enrollments.SetPauseState(enrollment.ID, models.PauseFrozen); err != nil {
		t.Fatalf("pause: %v", err)
	}

	result, err := env.enrollments.Resume(enrollment.ID)
	if err != nil {
		t.Fatalf("resume: %v", err)
	}
	if !result.OK || result.Enrollment.PauseState != models.PauseNone {
		t.Error("unoccupied seat should resume cleanly")
	}

	// Resuming an already active enrollment is a no-op, not an error.
	again, err := env.enrollments.Resume(enrollment.ID)
	if err != nil || !again.OK {
		t.Errorf("resume active: %v, OK=%v", err, again.OK)
	}
}

func TestResumeConflictAndReclaim(t *testing.T) {
	env := newTestEnv(t)
	modality := env.createModality(t, "Pilates")
	slot := env.createSlot(t, 3, "10:00", modality.ID)
	ana := env.createStudent(t, "Ana")
	bia := env.createStudent(t, "Bia")
	enrollment := env.enroll(t, ana.ID, slot.ID)

	if _, err := env.enrollments.SetPauseState(enrollment.ID, models.PauseFrozen); err != nil {
		t.Fatalf("pause: %v", err)
	}
	substitute, err := env.enrollments.EnrollSubstitute(enrollment.ID, bia.ID)
	if err != nil {
		t.Fatalf("substitute: %v", err)
	}

	result, err := env.enrollments.Resume(enrollment.ID)
	if err != nil {
		t.Fatalf("resume: %v", err)
	}
	if result.OK {
		t.Fatal("resume over an occupied seat must surface the conflict")
	}
	if len(result.Substitutes) != 1 || result.Substitutes[0].ID != substitute.ID {
		t.Fatal("conflict should list the occupying substitute")
	}

	if err := env.enrollments.ReclaimSeat(enrollment.ID, substitute.ID); err != nil {
		t.Fatalf("reclaim: %v", err)
	}

	original, _ := env.enrollmentRepo.GetByID(enrollment.ID)
	if original.PauseState != models.PauseNone {
		t.Error("original should be resumed after reclaim")
	}
	reloaded, _ := env.enrollmentRepo.GetByID(substitute.ID)
	if reloaded.Active {
		t.Error("substitute should be deactivated after reclaim")
	}
}

func TestReclaimSeatValidatesPair(t *testing.T) {
	env := newTestEnv(t)
	modality := env.createModality(t, "Pilates")
	slot := env.createSlot(t, 3, "10:00", modality.ID)
	ana := env.createStudent(t, "Ana")
	bia := env.createStudent(t, "Bia")
	first := env.enroll(t, ana.ID, slot.ID)
	second := env.enroll(t, bia.ID, slot.ID)

	var conflict *StateConflictError
	if err := env.enrollments.ReclaimSeat(first.ID, second.ID); !errors.As(err, &conflict) {
		t.Errorf("reclaiming an unrelated enrollment: got %v, want StateConflictError", err)
	}
	if err := env.enrollments.ReclaimSeat(first.ID, 999); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown substitute: got %v, want ErrNotFound", err)
	}
}

func TestForceResumeKeepsBothSeats(t *testing.T) {
	env := newTestEnv(t)
	modality := env.createModality(t, "Pilates")
	slot := env.createSlot(t, 3, "10:00", modality.ID)
	ana := env.createStudent(t, "Ana")
	bia := env.createStudent(t, "Bia")
	enrollment := env.enroll(t, ana.ID, slot.ID)

	if _, err := env.enrollments.SetPauseState(enrollment.ID, models.PauseFrozen); err != nil {
		t.Fatalf("pause: %v", err)
	}
	substitute, err := env.enrollments.EnrollSubstitute(enrollment.ID, bia.ID)
	if err != nil {
		t.Fatalf("substitute: %v", err)
	}

	resumed, err := env.enrollments.ForceResume(enrollment.ID)
	if err != nil {
		t.Fatalf("force resume: %v", err)
	}
	if resumed.PauseState != models.PauseNone {
		t.Error("force resume should clear the pause state")
	}

	reloaded, _ := env.enrollmentRepo.GetByID(substitute.ID)
	if !reloaded.Active {
		t.Error("force resume must leave the substitute active")
	}
}

func TestEnrollValidatesReferences(t *testing.T) {
	env := newTestEnv(t)
	modality := env.createModality(t, "Pilates")
	slot := env.createSlot(t, 3, "10:00", modality.ID)
	ana := env.createStudent(t, "Ana")

	if _, err := env.enrollments.Enroll(999, slot.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown student: got %v, want ErrNotFound", err)
	}
	if _, err := env.enrollments.Enroll(ana.ID, 999); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown slot: got %v, want ErrNotFound", err)
	}

	if err := env.slotRepo.Deactivate(slot.ID); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if _, err := env.enrollments.Enroll(ana.ID, slot.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("inactive slot: got %v, want ErrNotFound", err)
	}
}
