package email

import (
	"fmt"
	"net/smtp"
)

// Mailer sends one templated message. A single attempt, no retry: delivery
// failure surfaces to the caller.
type Mailer interface {
	Send(to, subject, body string) error
}

type SMTPMailer struct {
	Host     string
	Port     string
	User     string
	Password string
	From     string
}

func (m *SMTPMailer) Send(to, subject, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s",
		m.From, to, subject, body)

	addr := m.Host + ":" + m.Port
	auth := smtp.PlainAuth("", m.User, m.Password, m.Host)

	return smtp.SendMail(addr, auth, m.From, []string{to}, []byte(msg))
}
