package service

import (
	"errors"
	"testing"
)

func TestCreateSlotValidation(t *testing.T) {
	env := newTestEnv(t)
	yoga := env.createModality(t, "Yoga")

	slot, err := env.schedule.CreateSlot(CreateSlotInput{
		Weekday:    3,
		StartTime:  "10:00",
		EndTime:    "11:00",
		ModalityID: yoga.ID,
	})
	if err != nil {
		t.Fatalf("create slot: %v", err)
	}
	if slot.ID == 0 || !slot.Active {
		t.Fatalf("expected active persisted slot, got %+v", slot)
	}

	var validation *ValidationError
	_, err = env.schedule.CreateSlot(CreateSlotInput{
		Weekday:    3,
		StartTime:  "25:00",
		EndTime:    "11:00",
		ModalityID: yoga.ID,
	})
	if !errors.As(err, &validation) {
		t.Fatalf("expected validation error for bad clock, got %v", err)
	}

	_, err = env.schedule.CreateSlot(CreateSlotInput{
		Weekday:    3,
		StartTime:  "10:00",
		EndTime:    "11:00",
		ModalityID: 999,
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown modality, got %v", err)
	}
}

func TestUpdateSlotTimes(t *testing.T) {
	env := newTestEnv(t)
	yoga := env.createModality(t, "Yoga")
	slot := env.createSlot(t, 3, "10:00", yoga.ID)

	updated, err := env.schedule.UpdateSlotTimes(slot.ID, "18:00", "19:30")
	if err != nil {
		t.Fatalf("update slot times: %v", err)
	}
	if updated.StartTime != "18:00" || updated.EndTime != "19:30" {
		t.Fatalf("unexpected times %s-%s", updated.StartTime, updated.EndTime)
	}

	stored, err := env.slotRepo.GetByID(slot.ID)
	if err != nil {
		t.Fatalf("reload slot: %v", err)
	}
	if stored.StartTime != "18:00" {
		t.Fatalf("update not persisted, start is %s", stored.StartTime)
	}

	var validation *ValidationError
	if _, err := env.schedule.UpdateSlotTimes(slot.ID, "9h", "10h"); !errors.As(err, &validation) {
		t.Fatalf("expected validation error for bad clock, got %v", err)
	}
	if _, err := env.schedule.UpdateSlotTimes(999, "10:00", "11:00"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeactivateSlotRemovesFromGrid(t *testing.T) {
	env := newTestEnv(t)
	yoga := env.createModality(t, "Yoga")
	slot := env.createSlot(t, 3, "10:00", yoga.ID)
	env.createSlot(t, 5, "18:00", yoga.ID)

	if err := env.schedule.DeactivateSlot(slot.ID); err != nil {
		t.Fatalf("deactivate slot: %v", err)
	}

	slots, err := env.schedule.ActiveSlots()
	if err != nil {
		t.Fatalf("active slots: %v", err)
	}
	if len(slots) != 1 {
		t.Fatalf("expected 1 active slot after deactivation, got %d", len(slots))
	}
	if slots[0].ID == slot.ID {
		t.Fatalf("deactivated slot %d still listed", slot.ID)
	}

	if err := env.schedule.DeactivateSlot(999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown slot, got %v", err)
	}
}

func TestTeacherByChatID(t *testing.T) {
	env := newTestEnv(t)

	chat := int64(555)
	created, err := env.schedule.CreateTeacher("Marina", &chat)
	if err != nil {
		t.Fatalf("create teacher: %v", err)
	}
	if _, err := env.schedule.CreateTeacher("Sem Chat", nil); err != nil {
		t.Fatalf("create teacher without chat: %v", err)
	}

	teacher, err := env.schedule.TeacherByChatID(chat)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if teacher == nil || teacher.ID != created.ID {
		t.Fatalf("expected teacher %d for chat %d, got %+v", created.ID, chat, teacher)
	}

	teacher, err = env.schedule.TeacherByChatID(111)
	if err != nil {
		t.Fatalf("lookup unknown chat: %v", err)
	}
	if teacher != nil {
		t.Fatalf("expected nil for unregistered chat, got %+v", teacher)
	}
}

func TestCreateCatalogRejectsEmptyNames(t *testing.T) {
	env := newTestEnv(t)

	var validation *ValidationError
	if _, err := env.schedule.CreateModality(""); !errors.As(err, &validation) {
		t.Fatalf("expected validation error for empty modality name, got %v", err)
	}
	if _, err := env.schedule.CreateTeacher("", nil); !errors.As(err, &validation) {
		t.Fatalf("expected validation error for empty teacher name, got %v", err)
	}
}
