package mailer

import (
	"bytes"
	"context"
	"errors"
	"log"
	"net/smtp"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/dom/fitgate/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	assert.IsType(t, &LogMailer{}, New(&config.Config{}))
	assert.IsType(t, &SMTPMailer{}, New(&config.Config{SMTPHost: "smtp.example.com", SMTPPort: 587}))
}

func TestSMTPMailer_Send(t *testing.T) {
	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg []byte

	m := New(&config.Config{
		SMTPHost:     "smtp.example.com",
		SMTPPort:     2525,
		SMTPFrom:     "no-reply@fitgate.local",
		SMTPUsername: "user",
		SMTPPassword: "pass",
	}).(*SMTPMailer)
	m.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, msg
		assert.NotNil(t, a)
		return nil
	}

	err := m.Send(context.Background(), "alice@example.com", "Password Reset Request", "line one\nline two")
	require.NoError(t, err)

	assert.Equal(t, "smtp.example.com:2525", gotAddr)
	assert.Equal(t, "no-reply@fitgate.local", gotFrom)
	assert.Equal(t, []string{"alice@example.com"}, gotTo)
	assert.Contains(t, string(gotMsg), "Subject: Password Reset Request\r\n")
	assert.True(t, strings.HasSuffix(string(gotMsg), "line one\r\nline two"))
}

func TestSMTPMailer_SendError(t *testing.T) {
	m := New(&config.Config{SMTPHost: "smtp.example.com", SMTPPort: 25}).(*SMTPMailer)
	m.send = func(string, smtp.Auth, string, []string, []byte) error {
		return errors.New("connection refused")
	}

	err := m.Send(context.Background(), "alice@example.com", "subject", "body")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestBuildMessage_StripsHeaderInjection(t *testing.T) {
	msg := buildMessage("a@x", "b@x", "hi\r\nBcc: evil@x", "body", time.Unix(0, 0))
	assert.NotContains(t, string(msg), "\r\nBcc:")
}

func TestLogMailer_RedactsResetToken(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })

	token := strings.Repeat("ab12", 16)
	body := "Open the link below.\n\nhttp://frontend.test/reset-password/" + token + "\n"
	require.NoError(t, (&LogMailer{}).Send(context.Background(), "bob@example.com", "Password Reset Request", body))

	out := buf.String()
	assert.NotContains(t, out, token)
	assert.Contains(t, out, "http://frontend.test/reset-password/[redacted]")
	assert.Contains(t, out, "bob@example.com")
}
