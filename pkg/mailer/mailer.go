package mailer

import (
	"context"
	"fmt"
	"time"

	"github.com/anonto42/iblue/backend/pkg/circuitbreaker"
	"github.com/google/uuid"
	"gopkg.in/gomail.v2"
)

// Message is a single transactional email.
type Message struct {
	To       string
	Subject  string
	HTMLBody string
	TextBody string
}

// SMTPMailer delivers transactional mail through an SMTP relay.
type SMTPMailer struct {
	dialer  *gomail.Dialer
	from    string
	domain  string
	breaker *circuitbreaker.CircuitBreaker
}

// NewSMTPMailer initializes an SMTPMailer.
func NewSMTPMailer(dialer *gomail.Dialer, from, domain string, breaker *circuitbreaker.CircuitBreaker) *SMTPMailer {
	return &SMTPMailer{dialer: dialer, from: from, domain: domain, breaker: breaker}
}

// Send delivers msg. The gomail dialer has no context support, so ctx is
// only checked before dialing.
func (m *SMTPMailer) Send(ctx context.Context, msg Message) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	messageID := generateMessageID(m.domain)
	gm := gomail.NewMessage()
	gm.SetHeader("Message-ID", messageID)
	gm.SetHeader("Date", time.Now().Format(time.RFC1123Z))
	gm.SetHeader("From", m.from)
	gm.SetHeader("To", msg.To)
	gm.SetHeader("Subject", msg.Subject)
	if msg.TextBody != "" {
		gm.SetBody("text/plain", msg.TextBody)
		if msg.HTMLBody != "" {
			gm.AddAlternative("text/html", msg.HTMLBody)
		}
	} else {
		gm.SetBody("text/html", msg.HTMLBody)
	}

	err := m.breaker.Execute(func() error {
		return m.dialer.DialAndSend(gm)
	})
	if err != nil {
		return "", fmt.Errorf("smtp send to %s: %w", msg.To, err)
	}
	return messageID, nil
}

func generateMessageID(domain string) string {
	return fmt.Sprintf("<%s@%s>", uuid.New().String(), domain)
}
