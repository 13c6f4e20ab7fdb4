package infra

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/ValeenMar/tovaltech-sub001/internal/config"

	"github.com/jordan-wright/email"
)

// Mailer sends plain-text notices through the configured SMTP relay.
type Mailer struct {
	host     string
	user     string
	password string
	addr     string
	to       []string
}

// NewMailer returns nil when SMTP or REPORT_EMAIL is not configured.
func NewMailer(cfg *config.Config) *Mailer {
	if cfg.SMTPHost == "" || cfg.ReportEmail == "" {
		return nil
	}
	var to []string
	for _, addr := range strings.Split(cfg.ReportEmail, ",") {
		if addr = strings.TrimSpace(addr); addr != "" {
			to = append(to, addr)
		}
	}
	return &Mailer{
		host:     cfg.SMTPHost,
		user:     cfg.SMTPUser,
		password: cfg.SMTPPassword,
		addr:     fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort),
		to:       to,
	}
}

// Send mails subject/body to the report recipients.
func (m *Mailer) Send(subject, body string) error {
	e := email.NewEmail()
	e.From = m.user
	e.To = m.to
	e.Subject = subject
	e.Text = []byte(body)

	var auth smtp.Auth
	if m.user != "" {
		auth = smtp.PlainAuth("", m.user, m.password, m.host)
	}
	if err := e.Send(m.addr, auth); err != nil {
		return fmt.Errorf("mailer: send: %w", err)
	}
	return nil
}
