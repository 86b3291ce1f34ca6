package infra

import (
	"fmt"
	"net/smtp"

	"github.com/Ayush3323/crm-backend/internal/config"

	"github.com/jordan-wright/email"
)

// Mailer sends plain-text notification mail through SMTP. Every send passes
// through a circuit breaker so a dead server fails fast.
type Mailer struct {
	host     string
	user     string
	password string
	from     string
	addr     string
	breaker  *CircuitBreaker
}

func NewMailer(cfg *config.Config) *Mailer {
	from := cfg.SMTPFrom
	if from == "" {
		from = cfg.SMTPUser
	}
	return &Mailer{
		host:     cfg.SMTPHost,
		user:     cfg.SMTPUser,
		password: cfg.SMTPPassword,
		from:     from,
		addr:     fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort),
		breaker:  NewCircuitBreaker(DefaultCBConfig()),
	}
}

// Send delivers one message to a single recipient.
func (m *Mailer) Send(to, subject, body string) error {
	return m.breaker.Execute(func() error {
		e := email.NewEmail()
		e.From = m.from
		e.To = []string{to}
		e.Subject = subject
		e.Text = []byte(body)

		var auth smtp.Auth
		if m.user != "" {
			auth = smtp.PlainAuth("", m.user, m.password, m.host)
		}
		if err := e.Send(m.addr, auth); err != nil {
			return fmt.Errorf("mailer: send to %s: %w", to, err)
		}
		return nil
	})
}

// State reports the breaker state for the health endpoint.
func (m *Mailer) State() string { return m.breaker.State().String() }
