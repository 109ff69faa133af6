package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"studio-schedule-bot/internal/config"
	"studio-schedule-bot/internal/handler"
	"studio-schedule-bot/internal/repository"
	"studio-schedule-bot/internal/service"
	"studio-schedule-bot/pkg/telegram"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func main() {
	logrus.Info("Initializing config...")
	cfg := config.GetStudioConfig()
	logrus.Info("Config initialized...")

	db, err := gorm.Open(sqlite.Open(cfg.DatabaseURL), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true, // SQLite limitation
	})
	if err != nil {
		logrus.Fatal("Failed to connect to database:", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		logrus.Fatal("Failed to get database instance:", err)
	}

	// Foreign key enforcement is off by default in SQLite.
	_, err = sqlDB.Exec("PRAGMA foreign_keys = ON")
	if err != nil {
		logrus.Infof("Warning: Failed to enable foreign keys: %v", err)
	}

	slotRepo, err := repository.NewGormSlotRepository(db)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to create slot repository")
	}

	studentRepo, err := repository.NewGormStudentRepository(db)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to create student repository")
	}

	enrollmentRepo, err := repository.NewGormEnrollmentRepository(db)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to create enrollment repository")
	}

	attendanceRepo, err := repository.NewGormAttendanceRepository(db)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to create attendance repository")
	}

	noticeRepo, err := repository.NewGormAbsenceNoticeRepository(db)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to create absence notice repository")
	}

	creditRepo, err := repository.NewGormCreditRepository(db)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to create credit repository")
	}

	rescheduleRepo, err := repository.NewGormRescheduleRepository(db)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to create reschedule repository")
	}

	holidayRepo, err := repository.NewGormHolidayRepository(db)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to create holiday repository")
	}

	holidayService := service.NewHolidayService(holidayRepo)

	// Keep the national calendar seeded for the current and next year.
	year := time.Now().Year()
	if err := holidayService.SeedNationalHolidays(year, year+1); err != nil {
		logrus.Infof("Warning: Failed to seed national holidays: %v", err)
	}

	attendanceService := service.NewAttendanceService(db, attendanceRepo, enrollmentRepo, noticeRepo, rescheduleRepo, slotRepo)

	reconciliationService := service.NewReconciliationService(slotRepo, attendanceRepo, holidayService, cfg.PlatformStartDate)

	absenceService := service.NewAbsenceService(noticeRepo, rescheduleRepo)

	creditService := service.NewCreditService(db, creditRepo, rescheduleRepo)

	rescheduleService := service.NewRescheduleService(db, rescheduleRepo, enrollmentRepo, slotRepo, creditService)
	rescheduleService.AutoApproveReschedule = cfg.AutoApproveReschedule
	rescheduleService.AutoApproveChange = cfg.AutoApproveSlotChange

	enrollmentService := service.NewEnrollmentService(db, enrollmentRepo, studentRepo, slotRepo)

	scheduleService := service.NewScheduleService(db, slotRepo)

	client, err := telegram.NewClient(cfg.TelegramToken)
	if err != nil {
		logrus.Fatal("Failed to create Telegram client:", err)
	}

	logrus.Infof("Authorized on account %s", client.Bot.Self.UserName)

	botHandler := handler.NewHandler(
		client,
		attendanceService,
		reconciliationService,
		absenceService,
		creditService,
		rescheduleService,
		enrollmentService,
		scheduleService,
		holidayService,
		cfg,
	)

	updates := client.Bot.GetUpdatesChan(client.UpdateConfig)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go botHandler.HandleUpdates(updates)

	logrus.Info("Bot started. Press Ctrl+C to stop.")
	<-stop

	if err := sqlDB.Close(); err != nil {
		logrus.Infof("Error closing database: %v", err)
	}

	logrus.Info("Bot stopped gracefully")
}
