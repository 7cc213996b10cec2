package notify

import (
	"strings"

	gomail "gopkg.in/gomail.v2"
)

type Mailer interface {
	Send(to, subject, body string) error
}

// SMTPMailer delivers plain-text mail through a single SMTP account.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPMailer(host string, port int, user, password, from string) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(host, port, user, password),
		from:   from,
	}
}

func (m *SMTPMailer) Send(to, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)
	return m.dialer.DialAndSend(msg)
}

// ClassifySendError labels a delivery failure for the log line: credential
// problems need operator action, connection problems usually resolve on
// retry.
func ClassifySendError(err error) string {
	if err == nil {
		return ""
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "535") || strings.Contains(msg, "auth") || strings.Contains(msg, "credentials"):
		return "auth"
	case strings.Contains(msg, "connection") || strings.Contains(msg, "dial") || strings.Contains(msg, "timeout"):
		return "connection"
	default:
		return "other"
	}
}
