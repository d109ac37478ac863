// Package alert delivers operator notifications for source outages. The
// fusion engine fires one when a per-source circuit breaker opens and when a
// query loses every source at once.
package alert

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/docsonar/docsonar/pkg/config"
)

// Alerter delivers one notification. Implementations must be safe for
// concurrent use; alerts are fired from query goroutines.
type Alerter interface {
	Alert(subject, body string) error
}

// EmailAlerter delivers notifications over SMTP. No connection is held open;
// each alert dials the configured server.
type EmailAlerter struct {
	cfg config.AlertConfig
}

// NewEmailAlerter wraps the alert section of the configuration.
func NewEmailAlerter(cfg config.AlertConfig) *EmailAlerter {
	return &EmailAlerter{cfg: cfg}
}

// Alert mails subject and body to every configured recipient. A disabled or
// recipient-less configuration drops the alert without error.
func (a *EmailAlerter) Alert(subject, body string) error {
	if !a.cfg.Enabled || len(a.cfg.To) == 0 {
		return nil
	}

	auth := smtp.PlainAuth("", a.cfg.Username, a.cfg.Password, a.cfg.SMTPHost)
	msg := buildMessage(a.cfg.To, subject, body)
	if err := smtp.SendMail(a.addr(), auth, a.cfg.From, a.cfg.To, msg); err != nil {
		return fmt.Errorf("failed to send alert email: %w", err)
	}
	return nil
}

func (a *EmailAlerter) addr() string {
	return fmt.Sprintf("%s:%d", a.cfg.SMTPHost, a.cfg.SMTPPort)
}

// buildMessage assembles a minimal RFC 5322 message with CRLF line endings.
func buildMessage(to []string, subject, body string) []byte {
	var b strings.Builder
	b.WriteString("To: ")
	b.WriteString(strings.Join(to, ", "))
	b.WriteString("\r\nSubject: ")
	b.WriteString(subject)
	b.WriteString("\r\n\r\n")
	b.WriteString(body)
	b.WriteString("\r\n")
	return []byte(b.String())
}

// NoOpAlerter discards every alert. It stands in wherever alerting is not
// configured so callers never branch on nil.
type NoOpAlerter struct{}

// Alert implements Alerter.
func (NoOpAlerter) Alert(string, string) error { return nil }
