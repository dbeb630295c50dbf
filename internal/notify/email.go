package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"marketwatch/internal/config"
	"marketwatch/internal/models"
)

// EmailNotifier sends the run's alerts as a single email using SMTP.
type EmailNotifier struct {
	smtpHost string
	smtpPort int
	username string
	password string
	from     string
	to       string
	enabled  bool
}

// NewEmailNotifier creates a new EmailNotifier.
func NewEmailNotifier(cfg config.EmailConfig) *EmailNotifier {
	return &EmailNotifier{
		smtpHost: cfg.SMTPHost,
		smtpPort: cfg.SMTPPort,
		username: cfg.Username,
		password: cfg.Password,
		from:     cfg.From,
		to:       cfg.To,
		enabled:  cfg.Enabled && cfg.SMTPHost != "" && cfg.From != "" && cfg.To != "",
	}
}

// Name returns the name of the notifier.
func (e *EmailNotifier) Name() string {
	return "email"
}

// SendAlerts sends one email covering the whole batch.
func (e *EmailNotifier) SendAlerts(ctx context.Context, alerts []models.Alert) error {
	if !e.enabled || len(alerts) == 0 {
		return nil
	}

	subject := fmt.Sprintf("Market Alert: %d price threshold(s) crossed", len(alerts))
	body := renderEmailBody(alerts)

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nContent-Type: text/plain; charset=UTF-8\r\n\r\n%s",
		e.from, e.to, subject, body)

	addr := fmt.Sprintf("%s:%d", e.smtpHost, e.smtpPort)

	var auth smtp.Auth
	if e.username != "" && e.password != "" {
		auth = smtp.PlainAuth("", e.username, e.password, e.smtpHost)
	}

	if err := smtp.SendMail(addr, auth, e.from, []string{e.to}, []byte(msg)); err != nil {
		return fmt.Errorf("sending alert email: %w", err)
	}
	return nil
}

func renderEmailBody(alerts []models.Alert) string {
	var sb strings.Builder
	sb.WriteString("MARKET PRICE ALERTS\n")
	sb.WriteString(strings.Repeat("=", 50) + "\n\n")

	for _, a := range alerts {
		sb.WriteString(fmt.Sprintf("Symbol: %s\n", a.Symbol))
		sb.WriteString(fmt.Sprintf("Current Price: %.2f\n", a.CurrentPrice))
		sb.WriteString(fmt.Sprintf("Alert Type: %s\n", a.ThresholdType))
		sb.WriteString(fmt.Sprintf("Threshold: %.2f\n", a.ThresholdValue))
		sb.WriteString(fmt.Sprintf("Severity: %s\n", a.Severity))
		sb.WriteString(fmt.Sprintf("Time: %s\n", a.Timestamp))
		sb.WriteString(strings.Repeat("-", 50) + "\n\n")
	}

	sb.WriteString(fmt.Sprintf("Total Alerts: %d\n", len(alerts)))
	sb.WriteString(fmt.Sprintf("Generated: %s\n", time.Now().UTC().Format(time.RFC3339)))
	return sb.String()
}
