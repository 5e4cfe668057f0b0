// Fan-out of status change events to the configured notification channels.
// Channels fail independently: one broken transport never blocks the others.
package notifications

import (
	"sync"

	"github.com/ledwatch/agent/src/log"
	"github.com/ledwatch/agent/src/models"
	"github.com/ledwatch/agent/src/utils"
)

// Channel is a single notification transport.
type Channel interface {
	Name() string
	Send(event models.NotificationEvent) error
}

type registeredChannel struct {
	channel        Channel
	priorityFilter []string
}

// Manager dispatches events to every registered channel.
type Manager struct {
	mu       sync.RWMutex
	channels []registeredChannel
}

func NewManager() *Manager {
	return &Manager{}
}

// Register adds a channel. An empty priority filter accepts every event.
func (manager *Manager) Register(channel Channel, priorityFilter []string) {
	manager.mu.Lock()
	defer manager.mu.Unlock()
	manager.channels = append(manager.channels, registeredChannel{
		channel:        channel,
		priorityFilter: priorityFilter,
	})
	log.Log.Info("notifications.main.Register(): registered channel " + channel.Name())
}

// FromConfig builds a manager with every enabled channel from the
// configuration. Channels that fail to set up are skipped with an error log.
func FromConfig(config models.NotificationConfig) *Manager {
	manager := NewManager()

	if config.Email.Enabled {
		manager.Register(NewEmail(config.Email), config.Email.PriorityFilter)
	}
	if config.Webhook.Enabled {
		manager.Register(NewWebhook(config.Webhook), config.Webhook.PriorityFilter)
	}
	if config.Slack.Enabled {
		manager.Register(NewSlack(config.Slack), config.Slack.PriorityFilter)
	}
	if config.Telegram.Enabled {
		manager.Register(NewTelegram(config.Telegram), config.Telegram.PriorityFilter)
	}
	if config.MQTT.Enabled {
		mqttChannel, err := NewMQTT(config.MQTT)
		if err != nil {
			log.Log.Error("notifications.main.FromConfig(): mqtt channel unavailable: " + err.Error())
		} else {
			manager.Register(mqttChannel, config.MQTT.PriorityFilter)
		}
	}

	return manager
}

// Notify sends an event to every channel whose priority filter accepts it.
// It returns true when at least one channel handled the event; a filtered
// channel counts as handled.
func (manager *Manager) Notify(event models.NotificationEvent) bool {
	manager.mu.RLock()
	channels := manager.channels
	manager.mu.RUnlock()

	if len(channels) == 0 {
		log.Log.Error("notifications.main.Notify(): no channels registered, dropping event " + event.Id)
		return false
	}

	handled := false
	for _, registered := range channels {
		if len(registered.priorityFilter) > 0 && !utils.ContainsString(registered.priorityFilter, event.Priority) {
			log.Log.Debug("notifications.main.Notify(): " + registered.channel.Name() + " filtered out " + event.Priority + " event " + event.Id)
			handled = true
			continue
		}
		if err := registered.channel.Send(event); err != nil {
			log.Log.Error("notifications.main.Notify(): " + registered.channel.Name() + " failed: " + err.Error())
			continue
		}
		log.Log.Info("notifications.main.Notify(): " + registered.channel.Name() + " delivered event " + event.Id)
		handled = true
	}

	if !handled {
		log.Log.Error("notifications.main.Notify(): every channel failed for event " + event.Id)
	}
	return handled
}

// Count returns the number of registered channels.
func (manager *Manager) Count() int {
	manager.mu.RLock()
	defer manager.mu.RUnlock()
	return len(manager.channels)
}
