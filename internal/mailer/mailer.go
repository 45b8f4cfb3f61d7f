// Package mailer sends transactional email such as password reset links.
package mailer

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/smtp"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/dom/fitgate/internal/config"
)

// Mailer delivers a plain-text message to one recipient.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// New returns an SMTP mailer when SMTP_HOST is configured, otherwise a
// mailer that only logs.
func New(cfg *config.Config) Mailer {
	if cfg.SMTPHost == "" {
		return &LogMailer{}
	}
	return &SMTPMailer{
		addr: net.JoinHostPort(cfg.SMTPHost, strconv.Itoa(cfg.SMTPPort)),
		host: cfg.SMTPHost,
		from: cfg.SMTPFrom,
		user: cfg.SMTPUsername,
		pass: cfg.SMTPPassword,
		send: smtp.SendMail,
	}
}

type SMTPMailer struct {
	addr string
	host string
	from string
	user string
	pass string
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func (m *SMTPMailer) Send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var auth smtp.Auth
	if m.user != "" {
		auth = smtp.PlainAuth("", m.user, m.pass, m.host)
	}

	msg := buildMessage(m.from, to, subject, body, time.Now())
	if err := m.send(m.addr, auth, m.from, []string{to}, msg); err != nil {
		return fmt.Errorf("smtp send to %s: %w", to, err)
	}
	return nil
}

// LogMailer is used in development; messages only reach the process log.
// Token-like hex runs in the body are redacted.
type LogMailer struct{}

var secretPattern = regexp.MustCompile(`[0-9a-fA-F]{32,}`)

func (m *LogMailer) Send(_ context.Context, to, subject, body string) error {
	log.Printf("INFO [mailer.LogMailer] to=%s subject=%q\n%s", to, subject, redact(body))
	return nil
}

func redact(body string) string {
	return secretPattern.ReplaceAllString(body, "[redacted]")
}

func buildMessage(from, to, subject, body string, now time.Time) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", sanitizeHeader(subject))
	fmt.Fprintf(&b, "Date: %s\r\n", now.Format(time.RFC1123Z))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(body, "\n", "\r\n"))
	return []byte(b.String())
}

func sanitizeHeader(v string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(v)
}
