package service

import (
	"testing"
	"time"

	"studio-schedule-bot/internal/models"
	"studio-schedule-bot/internal/repository"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// testNow is the pinned clock for every service under test:
// Wednesday, 2026-03-18.
var testNow = time.Date(2026, 3, 18, 10, 0, 0, 0, time.Local)

type testEnv struct {
	db *gorm.DB

	slotRepo       repository.SlotRepository
	studentRepo    repository.StudentRepository
	enrollmentRepo repository.EnrollmentRepository
	attendanceRepo repository.AttendanceRepository
	noticeRepo     repository.AbsenceNoticeRepository
	creditRepo     repository.CreditRepository
	rescheduleRepo repository.RescheduleRepository
	holidayRepo    repository.HolidayRepository

	attendance     *AttendanceService
	reconciliation *ReconciliationService
	absence        *AbsenceService
	credits        *CreditService
	reschedules    *RescheduleService
	enrollments    *EnrollmentService
	schedule       *ScheduleService
	holidays       *HolidayService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	// A second connection would see a different empty :memory: database.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	env := &testEnv{db: db}

	if env.slotRepo, err = repository.NewGormSlotRepository(db); err != nil {
		t.Fatalf("slot repo: %v", err)
	}
	if env.studentRepo, err = repository.NewGormStudentRepository(db); err != nil {
		t.Fatalf("student repo: %v", err)
	}
	if env.enrollmentRepo, err = repository.NewGormEnrollmentRepository(db); err != nil {
		t.Fatalf("enrollment repo: %v", err)
	}
	if env.attendanceRepo, err = repository.NewGormAttendanceRepository(db); err != nil {
		t.Fatalf("attendance repo: %v", err)
	}
	if env.noticeRepo, err = repository.NewGormAbsenceNoticeRepository(db); err != nil {
		t.Fatalf("notice repo: %v", err)
	}
	if env.creditRepo, err = repository.NewGormCreditRepository(db); err != nil {
		t.Fatalf("credit repo: %v", err)
	}
	if env.rescheduleRepo, err = repository.NewGormRescheduleRepository(db); err != nil {
		t.Fatalf("reschedule repo: %v", err)
	}
	if env.holidayRepo, err = repository.NewGormHolidayRepository(db); err != nil {
		t.Fatalf("holiday repo: %v", err)
	}

	env.holidays = NewHolidayService(env.holidayRepo)

	env.attendance = NewAttendanceService(db, env.attendanceRepo, env.enrollmentRepo, env.noticeRepo, env.rescheduleRepo, env.slotRepo)
	env.attendance.Now = func() time.Time { return testNow }

	env.reconciliation = NewReconciliationService(env.slotRepo, env.attendanceRepo, env.holidays, "")
	env.reconciliation.Now = func() time.Time { return testNow }

	env.absence = NewAbsenceService(env.noticeRepo, env.rescheduleRepo)
	env.absence.Now = func() time.Time { return testNow }

	env.credits = NewCreditService(db, env.creditRepo, env.rescheduleRepo)
	env.credits.Now = func() time.Time { return testNow }

	env.reschedules = NewRescheduleService(db, env.rescheduleRepo, env.enrollmentRepo, env.slotRepo, env.credits)
	env.reschedules.Now = func() time.Time { return testNow }

	env.enrollments = NewEnrollmentService(db, env.enrollmentRepo, env.studentRepo, env.slotRepo)
	env.enrollments.Now = func() time.Time { return testNow }

	env.schedule = NewScheduleService(db, env.slotRepo)

	return env
}

func (env *testEnv) createModality(t *testing.T, name string) *models.Modality {
	t.Helper()
	modality := &models.Modality{Name: name, Active: true}
	if err := env.db.Create(modality).Error; err != nil {
		t.Fatalf("create modality: %v", err)
	}
	return modality
}

func (env *testEnv) createSlot(t *testing.T, weekday int, start string, modalityID uint) *models.RecurringSlot {
	t.Helper()
	slot := &models.RecurringSlot{
		Weekday:    weekday,
		StartTime:  start,
		EndTime:    "11:00",
		ModalityID: modalityID,
		Active:     true,
	}
	if err := env.slotRepo.Create(slot); err != nil {
		t.Fatalf("create slot: %v", err)
	}
	return slot
}

func (env *testEnv) createStudent(t *testing.T, name string) *models.Student {
	t.Helper()
	student := &models.Student{Name: name, Active: true}
	if err := env.studentRepo.Create(student); err != nil {
		t.Fatalf("create student: %v", err)
	}
	return student
}

func (env *testEnv) enroll(t *testing.T, studentID, slotID uint) *models.Enrollment {
	t.Helper()
	enrollment, err := env.enrollments.Enroll(studentID, slotID)
	if err != nil {
		t.Fatalf("enroll student %d on slot %d: %v", studentID, slotID, err)
	}
	return enrollment
}

func markPresent(studentID uint) RosterMark {
	present := true
	return RosterMark{StudentID: studentID, Present: &present}
}

func markAbsent(studentID uint, notified bool) RosterMark {
	present := false
	return RosterMark{StudentID: studentID, Present: &present, NotifiedAbsence: notified}
}
