package service

import (
	"fmt"
	"time"

	"studio-schedule-bot/internal/models"
	"studio-schedule-bot/internal/repository"

	gocache "github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
)

// Fixed-date national holidays, seeded for each year the studio operates
// in. Movable feasts (carnaval, corpus christi) are entered per year as
// custom dates by staff.
var nationalHolidays = []struct {
	Month int
	Day   int
	Name  string
}{
	{1, 1, "Confraternização Universal"},
	{4, 21, "Tiradentes"},
	{5, 1, "Dia do Trabalho"},
	{9, 7, "Independência do Brasil"},
	{10, 12, "Nossa Senhora Aparecida"},
	{11, 2, "Finados"},
	{11, 15, "Proclamação da República"},
	{12, 25, "Natal"},
}

type HolidayService struct {
	repo   repository.HolidayRepository
	cache  *gocache.Cache
	logger *logrus.Logger
}

func NewHolidayService(repo repository.HolidayRepository) *HolidayService {
	return &HolidayService{
		repo:   repo,
		cache:  gocache.New(5*time.Minute, 10*time.Minute),
		logger: logrus.New(),
	}
}

// SeedNationalHolidays inserts the fixed national table for the given
// years. Already-present dates are left alone.
func (s *HolidayService) SeedNationalHolidays(years ...int) error {
	var rows []models.Holiday
	for _, year := range years {
		for _, h := range nationalHolidays {
			rows = append(rows, models.Holiday{
				Date:   fmt.Sprintf("%04d-%02d-%02d", year, h.Month, h.Day),
				Name:   h.Name,
				Source: models.HolidaySourceNational,
			})
		}
	}

	if err := s.repo.BulkCreate(rows); err != nil {
		s.logger.WithError(err).Error("Failed to seed national holidays")
		return err
	}

	s.cache.Flush()
	s.logger.WithField("count", len(rows)).Info("National holidays seeded")
	return nil
}

// AddCustomDate registers a studio-specific closed date.
func (s *HolidayService) AddCustomDate(date, name string) error {
	existing, err := s.repo.GetByDate(date)
	if err != nil {
		return err
	}
	if existing != nil {
		return validationErrorf("date %s is already a holiday (%s)", date, existing.Name)
	}

	if err := s.repo.Create(&models.Holiday{
		Date:   date,
		Name:   name,
		Source: models.HolidaySourceCustom,
	}); err != nil {
		return err
	}

	s.cache.Flush()
	return nil
}

func (s *HolidayService) RemoveDate(date string) error {
	if err := s.repo.DeleteByDate(date); err != nil {
		return err
	}
	s.cache.Flush()
	return nil
}

// ExcludedDates returns the set of closed dates inside [startDate,
// endDate]. Range results are cached briefly since reconciliation asks for
// the same trailing window on every listing.
func (s *HolidayService) ExcludedDates(startDate, endDate string) (map[string]bool, error) {
	key := startDate + ".." + endDate
	if cached, found := s.cache.Get(key); found {
		return cached.(map[string]bool), nil
	}

	holidays, err := s.repo.GetBetween(startDate, endDate)
	if err != nil {
		s.logger.WithError(err).Error("Failed to load excluded dates")
		return nil, err
	}

	excluded := make(map[string]bool, len(holidays))
	for _, h := range holidays {
		excluded[h.Date] = true
	}

	s.cache.Set(key, excluded, gocache.DefaultExpiration)
	return excluded, nil
}

func (s *HolidayService) ListAll() ([]models.Holiday, error) {
	return s.repo.GetAll()
}
