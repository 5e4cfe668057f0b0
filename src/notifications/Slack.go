package notifications

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/ledwatch/agent/src/models"
)

// Slack delivers events through an incoming webhook.
type Slack struct {
	webhookURL string
	client     *http.Client
}

func NewSlack(config models.SlackConfig) *Slack {
	timeout := time.Duration(config.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Slack{
		webhookURL: config.WebhookURL,
		client:     &http.Client{Timeout: timeout},
	}
}

func (slack *Slack) Name() string {
	return "slack"
}

func (slack *Slack) Send(event models.NotificationEvent) error {
	if slack.webhookURL == "" {
		return fmt.Errorf("slack channel has no webhook url configured")
	}

	payload, err := json.Marshal(map[string]string{
		"text": "*" + event.Title + "*\n" + event.Message,
	})
	if err != nil {
		return err
	}

	response, err := slack.client.Post(slack.webhookURL, "application/json", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	defer response.Body.Close()

	if response.StatusCode >= 300 {
		return fmt.Errorf("slack webhook returned status %d", response.StatusCode)
	}
	return nil
}
