package notifications

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/ledwatch/agent/src/models"
)

// Webhook posts the full event as JSON to one or more urls. A delivery
// succeeds when at least one url accepts the payload.
type Webhook struct {
	urls    []string
	headers map[string]string
	client  *http.Client
}

func NewWebhook(config models.WebhookConfig) *Webhook {
	timeout := time.Duration(config.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Webhook{
		urls:    config.URLs,
		headers: config.Headers,
		client:  &http.Client{Timeout: timeout},
	}
}

func (webhook *Webhook) Name() string {
	return "webhook"
}

func (webhook *Webhook) Send(event models.NotificationEvent) error {
	if len(webhook.urls) == 0 {
		return fmt.Errorf("webhook channel has no urls configured")
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	var lastErr error
	delivered := false
	for _, url := range webhook.urls {
		if err := webhook.post(url, payload); err != nil {
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

func (webhook *Webhook) post(url string, payload []byte) error {
	request, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	request.Header.Set("Content-Type", "application/json")
	for key, value := range webhook.headers {
		request.Header.Set(key, value)
	}

	response, err := webhook.client.Do(request)
	if err != nil {
		return err
	}
	defer response.Body.Close()

	if response.StatusCode >= 300 {
		return fmt.Errorf("webhook %s returned status %d", url, response.StatusCode)
	}
	return nil
}
