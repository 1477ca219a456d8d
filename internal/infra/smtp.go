package infra

import (
	"fmt"
	"html"
	"net/smtp"
	"strings"

	"airportpos/internal/config"

	"github.com/jordan-wright/email"
)

// Mailer wraps SMTP configuration for transactional emails.
type Mailer struct {
	host     string
	user     string
	password string
	from     string
	addr     string
}

func NewMailer(cfg *config.Config) *Mailer {
	from := cfg.SMTPUser
	if cfg.EmailFrom != "" && cfg.SMTPUser != "" {
		from = fmt.Sprintf("%q <%s>", cfg.EmailFrom, cfg.SMTPUser)
	}
	return &Mailer{
		host:     cfg.SMTPHost,
		user:     cfg.SMTPUser,
		password: cfg.SMTPPassword,
		from:     from,
		addr:     fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort),
	}
}

// Send delivers a plain-text message with an HTML alternative.
func (m *Mailer) Send(to, subject, body string) error {
	e := email.NewEmail()
	e.From = m.from
	e.To = []string{to}
	e.Subject = subject
	e.Text = []byte(body)
	e.HTML = []byte("<p>" + strings.ReplaceAll(html.EscapeString(body), "\n", "<br>") + "</p>")

	var auth smtp.Auth
	if m.user != "" {
		auth = smtp.PlainAuth("", m.user, m.password, m.host)
	}
	if err := e.Send(m.addr, auth); err != nil {
		return fmt.Errorf("mailer: send to %s: %w", to, err)
	}
	return nil
}
