package service

import (
	"sort"
	"time"

	"studio-schedule-bot/internal/repository"
	"studio-schedule-bot/pkg/dates"

	"github.com/sirupsen/logrus"
)

// PendingOccurrence is a class occurrence that should have happened but has
// no submitted record yet.
type PendingOccurrence struct {
	Date         string
	SlotID       uint
	Weekday      int
	StartTime    string
	EndTime      string
	ModalityName string
	TeacherName  string // empty when the slot has no teacher assigned
}

// PendingFilter narrows the slots considered.
type PendingFilter struct {
	TeacherID    *uint
	ModalityID   *uint
	IncludeToday bool
}

type ReconciliationService struct {
	slotRepo       repository.SlotRepository
	attendanceRepo repository.AttendanceRepository
	holidayService *HolidayService
	logger         *logrus.Logger

	// PlatformStartDate: occurrences before this ISO date are never
	// pending. Empty disables the cutoff.
	PlatformStartDate string

	Now func() time.Time
}

func NewReconciliationService(
	slotRepo repository.SlotRepository,
	attendanceRepo repository.AttendanceRepository,
	holidayService *HolidayService,
	platformStartDate string,
) *ReconciliationService {
	return &ReconciliationService{
		slotRepo:          slotRepo,
		attendanceRepo:    attendanceRepo,
		holidayService:    holidayService,
		logger:            logrus.New(),
		PlatformStartDate: platformStartDate,
		Now:               time.Now,
	}
}

// PendingOccurrences classifies every occurrence of the active slots inside
// [startDate, endDate] and returns the ones without a submitted or
// corrected record. Holidays, dates before the platform start and dates
// from today onward (today included only when the filter asks for it) are
// never pending.
//
// The result carries no ordering guarantee; callers pick one, typically
// SortPendingForDisplay.
func (s *ReconciliationService) PendingOccurrences(startDate, endDate string, filter PendingFilter) ([]PendingOccurrence, error) {
	if !dates.IsISO(startDate) || !dates.IsISO(endDate) {
		return nil, validationErrorf("invalid date range [%s, %s]", startDate, endDate)
	}

	slots, err := s.slotRepo.GetActive(repository.SlotFilter{
		TeacherID:  filter.TeacherID,
		ModalityID: filter.ModalityID,
	})
	if err != nil {
		return nil, err
	}

	excluded, err := s.holidayService.ExcludedDates(startDate, endDate)
	if err != nil {
		return nil, err
	}

	// Only past occurrences can be pending.
	today := dates.ToISO(s.Now())
	horizon := today // exclusive upper bound
	if filter.IncludeToday {
		horizon = dates.AddDays(today, 1)
	}

	pending := []PendingOccurrence{}
	for _, slot := range slots {
		occurrences := ExpandOccurrences(slot.Weekday, startDate, endDate, s.PlatformStartDate, excluded)
		if len(occurrences) == 0 {
			continue
		}

		submitted, err := s.attendanceRepo.GetSubmittedDates(slot.ID, startDate, endDate)
		if err != nil {
			return nil, err
		}
		done := make(map[string]bool, len(submitted))
		for _, d := range submitted {
			done[d] = true
		}

		teacherName := ""
		if slot.Teacher != nil {
			teacherName = slot.Teacher.Name
		}

		for _, date := range occurrences {
			if date >= horizon || done[date] {
				continue
			}
			pending = append(pending, PendingOccurrence{
				Date:         date,
				SlotID:       slot.ID,
				Weekday:      slot.Weekday,
				StartTime:    slot.StartTime,
				EndTime:      slot.EndTime,
				ModalityName: slot.Modality.Name,
				TeacherName:  teacherName,
			})
		}
	}

	s.logger.WithFields(logrus.Fields{
		"start": startDate,
		"end":   endDate,
		"count": len(pending),
	}).Debug("Computed pending occurrences")
	return pending, nil
}

// PendingInDefaultWindow runs PendingOccurrences over the trailing window
// of windowDays days ending yesterday.
func (s *ReconciliationService) PendingInDefaultWindow(windowDays int, filter PendingFilter) ([]PendingOccurrence, error) {
	if windowDays <= 0 {
		return nil, validationErrorf("window must be positive, got %d", windowDays)
	}
	today := dates.ToISO(s.Now())
	start := dates.AddDays(today, -windowDays)
	end := dates.AddDays(today, -1)
	if filter.IncludeToday {
		end = today
	}
	return s.PendingOccurrences(start, end, filter)
}

// SortPendingForDisplay orders newest first; slots sharing a date are kept
// stable by slot id.
func SortPendingForDisplay(pending []PendingOccurrence) {
	sort.SliceStable(pending, func(i, j int) bool {
		if pending[i].Date != pending[j].Date {
			return pending[i].Date > pending[j].Date
		}
		return pending[i].SlotID < pending[j].SlotID
	})
}
