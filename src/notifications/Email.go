package notifications

import (
	"fmt"
	"net/smtp"
	"strconv"
	"strings"

	"github.com/ledwatch/agent/src/models"
)

// Email delivers events over plain SMTP.
type Email struct {
	server     string
	port       int
	username   string
	password   string
	recipients []string
}

func NewEmail(config models.EmailConfig) *Email {
	port := config.SMTPPort
	if port == 0 {
		port = 587
	}
	return &Email{
		server:     config.SMTPServer,
		port:       port,
		username:   config.Username,
		password:   config.Password,
		recipients: config.Recipients,
	}
}

func (email *Email) Name() string {
	return "email"
}

func (email *Email) Send(event models.NotificationEvent) error {
	if email.server == "" || len(email.recipients) == 0 {
		return fmt.Errorf("email channel is not configured")
	}

	from := email.username
	if from == "" {
		from = "ledwatch-agent@localhost"
	}

	var body strings.Builder
	body.WriteString("From: " + from + "\r\n")
	body.WriteString("To: " + strings.Join(email.recipients, ", ") + "\r\n")
	body.WriteString("Subject: " + event.Title + "\r\n")
	body.WriteString("\r\n")
	body.WriteString(event.Message + "\r\n")
	for key, value := range event.Metadata {
		body.WriteString(key + ": " + value + "\r\n")
	}

	var auth smtp.Auth
	if email.username != "" {
		auth = smtp.PlainAuth("", email.username, email.password, email.server)
	}

	address := email.server + ":" + strconv.Itoa(email.port)
	return smtp.SendMail(address, auth, from, email.recipients, []byte(body.String()))
}
