package notifications

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/ledwatch/agent/src/models"
)

// Telegram delivers events through the bot API, sending one message per
// configured chat. A delivery succeeds when at least one chat accepts it.
type Telegram struct {
	botToken string
	chatIds  []string
	client   *http.Client
}

func NewTelegram(config models.TelegramConfig) *Telegram {
	timeout := time.Duration(config.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Telegram{
		botToken: config.BotToken,
		chatIds:  config.ChatIds,
		client:   &http.Client{Timeout: timeout},
	}
}

func (telegram *Telegram) Name() string {
	return "telegram"
}

func (telegram *Telegram) Send(event models.NotificationEvent) error {
	if telegram.botToken == "" || len(telegram.chatIds) == 0 {
		return fmt.Errorf("telegram channel is not configured")
	}

	endpoint := "https://api.telegram.org/bot" + telegram.botToken + "/sendMessage"

	var lastErr error
	delivered := false
	for _, chatId := range telegram.chatIds {
		payload, err := json.Marshal(map[string]string{
			"chat_id": chatId,
			"text":    event.Title + "\n" + event.Message,
		})
		if err != nil {
			return err
		}
		if err := telegram.post(endpoint, payload); err != nil {
			lastErr = err
			continue
		}
		delivered = true
	}
	if !delivered {
		return lastErr
	}
	return nil
}

func (telegram *Telegram) post(endpoint string, payload []byte) error {
	response, err := telegram.client.Post(endpoint, "application/json", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	defer response.Body.Close()

	if response.StatusCode >= 300 {
		return fmt.Errorf("telegram api returned status %d", response.StatusCode)
	}
	return nil
}
