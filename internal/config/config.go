package config

import (
	"os"
	"strconv"
	"sync"

	"studio-schedule-bot/pkg/dates"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type StudioConfig struct {
	TelegramToken   string
	BaseAdminChatID int64
	DatabaseURL     string

	// PlatformStartDate: occurrences before this ISO date are never
	// considered pending. Empty disables the cutoff.
	PlatformStartDate string

	// PendingWindowDays is the trailing window the default pending
	// listing covers.
	PendingWindowDays int

	AutoApproveReschedule bool
	AutoApproveSlotChange bool
}

var instance *StudioConfig
var once sync.Once

func GetStudioConfig() *StudioConfig {
	once.Do(func() {
		instance = &StudioConfig{}

		if err := godotenv.Load(); err != nil {
			logrus.Info("No .env file found, using environment variables")
		}

		instance.TelegramToken = getEnv("TELEGRAM_BOT_TOKEN", "")
		if instance.TelegramToken == "" {
			logrus.Fatal("could not get bot token")
		}

		instance.BaseAdminChatID = getEnvAsInt("BASE_ADMIN_CHAT_ID", -2)
		if instance.BaseAdminChatID == -2 {
			logrus.Fatal("could not get admin chat id")
		}

		instance.DatabaseURL = getEnv("DATABASE_URL", "")
		if instance.DatabaseURL == "" {
			logrus.Fatal("could not get db url")
		}

		instance.PlatformStartDate = getEnv("PLATFORM_START_DATE", "")
		if instance.PlatformStartDate != "" && !dates.IsISO(instance.PlatformStartDate) {
			logrus.Fatalf("PLATFORM_START_DATE %q is not a valid YYYY-MM-DD date", instance.PlatformStartDate)
		}

		instance.PendingWindowDays = int(getEnvAsInt("PENDING_WINDOW_DAYS", 30))
		if instance.PendingWindowDays <= 0 {
			logrus.Fatalf("PENDING_WINDOW_DAYS must be positive, got %d", instance.PendingWindowDays)
		}

		instance.AutoApproveReschedule = getEnvAsBool("AUTO_APPROVE_RESCHEDULE", false)
		instance.AutoApproveSlotChange = getEnvAsBool("AUTO_APPROVE_SLOT_CHANGE", false)
	})

	return instance
}

func getEnv(key string, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}

	return defaultVal
}

func getEnvAsBool(name string, defaultVal bool) bool {
	valStr := getEnv(name, "")
	if val, err := strconv.ParseBool(valStr); err == nil {
		return val
	}

	return defaultVal
}

func getEnvAsInt(name string, defaultVal int64) int64 {
	valStr := getEnv(name, "")
	if val, err := strconv.Atoi(valStr); err == nil {
		return int64(val)
	}

	return defaultVal
}
