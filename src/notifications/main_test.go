package notifications

import (
	"fmt"
	"testing"

	"github.com/ledwatch/agent/src/models"
)

type fakeChannel struct {
	name string
	fail bool
	sent []models.NotificationEvent
}

func (fake *fakeChannel) Name() string {
	return fake.name
}

func (fake *fakeChannel) Send(event models.NotificationEvent) error {
	if fake.fail {
		return fmt.Errorf("%s is down", fake.name)
	}
	fake.sent = append(fake.sent, event)
	return nil
}

func testEvent(priority string) models.NotificationEvent {
	return models.NotificationEvent{
		Id:       "b7f6c1ce-0001-0002-0003-abcdefabcdef",
		Title:    "press-7 status-led: green -> red",
		Message:  "Machine press-7 changed from green to red",
		Priority: priority,
	}
}

func TestNotifySucceedsWhenOneChannelDelivers(t *testing.T) {
	manager := NewManager()
	broken1 := &fakeChannel{name: "broken-1", fail: true}
	broken2 := &fakeChannel{name: "broken-2", fail: true}
	working := &fakeChannel{name: "working"}
	manager.Register(broken1, nil)
	manager.Register(working, nil)
	manager.Register(broken2, nil)

	if !manager.Notify(testEvent(models.PriorityHigh)) {
		t.Fatal("expected success with one working channel")
	}
	if len(working.sent) != 1 {
		t.Fatalf("expected 1 delivery on the working channel, got %d", len(working.sent))
	}
}

func TestNotifyFailsWithoutChannels(t *testing.T) {
	manager := NewManager()
	if manager.Notify(testEvent(models.PriorityHigh)) {
		t.Fatal("expected failure with no channels registered")
	}
}

func TestNotifyFailsWhenEveryChannelFails(t *testing.T) {
	manager := NewManager()
	manager.Register(&fakeChannel{name: "broken-1", fail: true}, nil)
	manager.Register(&fakeChannel{name: "broken-2", fail: true}, nil)

	if manager.Notify(testEvent(models.PriorityMedium)) {
		t.Fatal("expected failure when every channel fails")
	}
}

func TestPriorityFilterSkipsChannel(t *testing.T) {
	manager := NewManager()
	highOnly := &fakeChannel{name: "high-only"}
	everything := &fakeChannel{name: "everything"}
	manager.Register(highOnly, []string{models.PriorityHigh})
	manager.Register(everything, nil)

	if !manager.Notify(testEvent(models.PriorityLow)) {
		t.Fatal("expected success, the unfiltered channel should deliver")
	}
	if len(highOnly.sent) != 0 {
		t.Fatalf("filtered channel should not have delivered, got %d", len(highOnly.sent))
	}
	if len(everything.sent) != 1 {
		t.Fatalf("unfiltered channel should have delivered once, got %d", len(everything.sent))
	}
}

func TestFromConfigRegistersEnabledChannels(t *testing.T) {
	manager := FromConfig(models.NotificationConfig{
		Webhook: models.WebhookConfig{Enabled: true, URLs: []string{"http://localhost:9999/hook"}},
		Slack:   models.SlackConfig{Enabled: true, WebhookURL: "http://localhost:9999/slack"},
	})
	if manager.Count() != 2 {
		t.Fatalf("expected 2 channels, got %d", manager.Count())
	}
}
