package notifications

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"strconv"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/ledwatch/agent/src/log"
	"github.com/ledwatch/agent/src/models"
)

const defaultTopicPrefix = "ledwatch"

// MQTT publishes events to a broker, so home automation systems can react
// to machine status changes.
type MQTT struct {
	client      mqtt.Client
	topicPrefix string
}

func NewMQTT(config models.MQTTConfig) (*MQTT, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(config.URI)
	log.Log.Info("notifications.MQTT.NewMQTT(): set broker uri " + config.URI)

	if config.Username != "" || config.Password != "" {
		opts.SetUsername(config.Username)
		opts.SetPassword(config.Password)
		log.Log.Info("notifications.MQTT.NewMQTT(): set username " + config.Username)
	}

	opts.SetCleanSession(true)
	opts.SetConnectRetry(true)
	opts.SetConnectTimeout(30 * time.Second)

	// A random suffix avoids client id conflicts when multiple agents
	// share the same broker.
	clientId := "ledwatch-agent-" + strconv.Itoa(rand.Intn(100000))
	opts.SetClientID(clientId)

	opts.OnConnect = func(c mqtt.Client) {
		log.Log.Info("notifications.MQTT.NewMQTT(): " + clientId + " connected to " + config.URI)
	}
	opts.OnConnectionLost = func(c mqtt.Client, err error) {
		log.Log.Error("notifications.MQTT.NewMQTT(): connection lost: " + err.Error())
	}

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(30 * time.Second) {
		return nil, fmt.Errorf("timed out connecting to broker %s", config.URI)
	}
	if token.Error() != nil {
		return nil, token.Error()
	}

	topicPrefix := config.TopicPrefix
	if topicPrefix == "" {
		topicPrefix = defaultTopicPrefix
	}

	return &MQTT{
		client:      client,
		topicPrefix: topicPrefix,
	}, nil
}

func (m *MQTT) Name() string {
	return "mqtt"
}

func (m *MQTT) Send(event models.NotificationEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	topic := m.topicPrefix + "/events"
	if machineId, exists := event.Metadata["machine_id"]; exists && machineId != "" {
		topic = m.topicPrefix + "/machine/" + machineId
	}

	token := m.client.Publish(topic, 1, false, payload)
	if !token.WaitTimeout(10 * time.Second) {
		return fmt.Errorf("timed out publishing to %s", topic)
	}
	return token.Error()
}

// Close disconnects from the broker.
func (m *MQTT) Close() {
	m.client.Disconnect(250)
}
