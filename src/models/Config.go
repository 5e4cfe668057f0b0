package models

// Config is the highlevel struct which contains all the configuration of
// your LEDwatch Agent instance.
type Config struct {
	Name          string             `json:"name"`
	Timezone      string             `json:"timezone,omitempty"`
	Port          string             `json:"port,omitempty"`
	Cameras       []Camera           `json:"cameras"`
	Detection     DetectionConfig    `json:"detection"`
	Monitor       MonitorConfig      `json:"monitor"`
	Notifications NotificationConfig `json:"notifications"`
	Storage       StorageConfig      `json:"storage"`
}

// Camera holds the connection parameters of a single IP camera, and the
// list of LED regions that camera is watching.
type Camera struct {
	Id             string   `json:"id"`
	Name           string   `json:"name,omitempty"`
	RTSP           string   `json:"rtsp"`
	Username       string   `json:"username,omitempty"`
	Password       string   `json:"password,omitempty"`
	FPS            int      `json:"fps,omitempty"`
	BufferSize     int      `json:"buffer_size,omitempty"`
	ConnectTimeout int      `json:"connect_timeout,omitempty"`
	Regions        []Region `json:"regions"`
}

// Region is a fixed rectangle inside one camera's frame, corresponding to one
// physical LED indicator of a machine. Defined at configuration time and
// immutable afterwards.
type Region struct {
	Name      string `json:"name"`
	X         int    `json:"x"`
	Y         int    `json:"y"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	MachineId string `json:"machine_id"`
}

// DetectionConfig contains the tuning parameters of the LED classifier.
type DetectionConfig struct {
	BrightnessThreshold float64 `json:"brightness_threshold,omitempty"`
	MinConfidence       float64 `json:"min_confidence,omitempty"`
	HistoryLength       int     `json:"history_length,omitempty"`
	FlashingThreshold   int     `json:"flashing_threshold,omitempty"`
}

// MonitorConfig controls the cadence of the per camera monitoring loops and
// the size of the in-memory transition log.
type MonitorConfig struct {
	FPS               float64 `json:"monitoring_fps,omitempty"`
	TransitionHistory int     `json:"transition_history,omitempty"`
}

// NotificationConfig bundles the configuration of all notification channels.
// A channel is only registered when enabled.
type NotificationConfig struct {
	Email    EmailConfig    `json:"email,omitempty"`
	Webhook  WebhookConfig  `json:"webhook,omitempty"`
	Slack    SlackConfig    `json:"slack,omitempty"`
	Telegram TelegramConfig `json:"telegram,omitempty"`
	MQTT     MQTTConfig     `json:"mqtt,omitempty"`
}

// EmailConfig configures the SMTP notification channel.
type EmailConfig struct {
	Enabled        bool     `json:"enabled"`
	PriorityFilter []string `json:"priority_filter,omitempty"`
	SMTPServer     string   `json:"smtp_server,omitempty"`
	SMTPPort       int      `json:"smtp_port,omitempty"`
	Username       string   `json:"username,omitempty"`
	Password       string   `json:"password,omitempty"`
	Recipients     []string `json:"recipients,omitempty"`
}

// WebhookConfig configures the generic webhook channel, posting a JSON
// payload to each configured url.
type WebhookConfig struct {
	Enabled        bool              `json:"enabled"`
	PriorityFilter []string          `json:"priority_filter,omitempty"`
	URLs           []string          `json:"urls,omitempty"`
	Headers        map[string]string `json:"headers,omitempty"`
	Timeout        int               `json:"timeout,omitempty"`
}

// SlackConfig configures the Slack incoming-webhook channel.
type SlackConfig struct {
	Enabled        bool     `json:"enabled"`
	PriorityFilter []string `json:"priority_filter,omitempty"`
	WebhookURL     string   `json:"webhook_url,omitempty"`
	Timeout        int      `json:"timeout,omitempty"`
}

// TelegramConfig configures the Telegram bot channel.
type TelegramConfig struct {
	Enabled        bool     `json:"enabled"`
	PriorityFilter []string `json:"priority_filter,omitempty"`
	BotToken       string   `json:"bot_token,omitempty"`
	ChatIds        []string `json:"chat_ids,omitempty"`
	Timeout        int      `json:"timeout,omitempty"`
}

// MQTTConfig configures the MQTT channel, publishing events to a broker
// (e.g. for a Frigate or Home Assistant integration).
type MQTTConfig struct {
	Enabled        bool     `json:"enabled"`
	PriorityFilter []string `json:"priority_filter,omitempty"`
	URI            string   `json:"uri,omitempty"`
	Username       string   `json:"username,omitempty"`
	Password       string   `json:"password,omitempty"`
	TopicPrefix    string   `json:"topic_prefix,omitempty"`
}

// StorageConfig points to the transition history sinks: an append-only JSONL
// file and an optional SQLite database. Both are consumed by external tools,
// the agent only writes them.
type StorageConfig struct {
	HistoryFile  string `json:"history_file,omitempty"`
	DatabasePath string `json:"database_path,omitempty"`
}
