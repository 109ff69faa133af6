package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

// updateTimeout is the long-poll timeout in seconds.
const updateTimeout = 60

// Client wraps the bot API together with the long-poll configuration the
// studio bot consumes updates with.
type Client struct {
	Bot          *tgbotapi.BotAPI
	UpdateConfig tgbotapi.UpdateConfig
}

func NewClient(token string) (*Client, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		logrus.WithError(err).Error("Failed to connect to Telegram")
		return nil, err
	}

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = updateTimeout

	logrus.WithField("account", bot.Self.UserName).Debug("Telegram client connected")

	return &Client{
		Bot:          bot,
		UpdateConfig: updateConfig,
	}, nil
}
