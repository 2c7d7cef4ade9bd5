package notify

import (
	"context"
	"fmt"
	"log"
	"net/smtp"
)

// Notifier delivers a message to a single recipient. Implementations are
// fire-and-forget collaborators: callers log failures and move on, a failed
// notification never aborts the operation that triggered it.
type Notifier interface {
	Notify(ctx context.Context, recipient, subject, body string) error
}

// SMTPNotifier sends plain-text mail through a single SMTP relay.
type SMTPNotifier struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

func NewSMTPNotifier(host, port, username, password, from string) *SMTPNotifier {
	return &SMTPNotifier{
		Host:     host,
		Port:     port,
		Username: username,
		Password: password,
		From:     from,
	}
}

func (n *SMTPNotifier) Notify(ctx context.Context, recipient, subject, body string) error {
	msg := []byte(fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n",
		n.From, recipient, subject, body,
	))

	addr := n.Host + ":" + n.Port
	var auth smtp.Auth
	if n.Username != "" {
		auth = smtp.PlainAuth("", n.Username, n.Password, n.Host)
	}

	done := make(chan error, 1)
	go func() {
		done <- smtp.SendMail(addr, auth, n.From, []string{recipient}, msg)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// LogNotifier is used when no SMTP relay is configured.
type LogNotifier struct{}

func (LogNotifier) Notify(_ context.Context, recipient, subject, _ string) error {
	log.Printf("[NOTIFY] [INFO] mail disabled, dropping %q for %s", subject, recipient)
	return nil
}
