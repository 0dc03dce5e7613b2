package mail

import (
	"context"
	"errors"
	"net/smtp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedMail struct {
	addr string
	from string
	to   []string
	body string
}

func newCapturingSender(cfg SMTPConfig, sendErr error) (*SMTPSender, *[]capturedMail) {
	var sent []capturedMail
	s := NewSMTPSender(cfg)
	s.sendMail = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		if sendErr != nil {
			return sendErr
		}
		sent = append(sent, capturedMail{addr: addr, from: from, to: to, body: string(msg)})
		return nil
	}
	return s, &sent
}

func TestSMTPSender_Send(t *testing.T) {
	sender, sent := newCapturingSender(SMTPConfig{
		Host:     "smtp.example.com",
		Port:     "587",
		Username: "noreply@example.com",
		Password: "pw",
	}, nil)

	err := sender.Send(context.Background(), Message{
		To:       []string{"user@example.com"},
		ReplyTo:  "asker@example.com",
		Subject:  "Hello",
		HTMLBody: "<p>hi</p>",
	})
	require.NoError(t, err)
	require.Len(t, *sent, 1)

	got := (*sent)[0]
	assert.Equal(t, "smtp.example.com:587", got.addr)
	assert.Equal(t, "noreply@example.com", got.from)
	assert.Equal(t, []string{"user@example.com"}, got.to)
	assert.Contains(t, got.body, "Subject: Hello\r\n")
	assert.Contains(t, got.body, "Reply-To: asker@example.com\r\n")
	assert.Contains(t, got.body, "From: noreply@example.com\r\n")
	assert.Contains(t, got.body, "<p>hi</p>")
}

func TestBuildMIME_StripsHeaderBreaks(t *testing.T) {
	raw := string(buildMIME("noreply@example.com", Message{
		To:       []string{"support@example.com"},
		Subject:  "Hi\r\nBcc: victim@example.com",
		HTMLBody: "body",
	}))

	assert.Contains(t, raw, "Subject: Hi Bcc: victim@example.com\r\n")
	assert.NotContains(t, raw, "\r\nBcc:")
}

func TestSMTPSender_SendFailure(t *testing.T) {
	sender, _ := newCapturingSender(SMTPConfig{
		Host:     "smtp.example.com",
		Port:     "587",
		Username: "noreply@example.com",
		Password: "pw",
	}, errors.New("connection refused"))

	err := sender.Send(context.Background(), Message{To: []string{"user@example.com"}, Subject: "x"})
	assert.Error(t, err)
}

func TestSMTPSender_DevMode(t *testing.T) {
	sender, sent := newCapturingSender(SMTPConfig{Host: "smtp.example.com", Port: "587"}, nil)
	assert.True(t, sender.DevMode())

	err := sender.Send(context.Background(), Message{To: []string{"user@example.com"}, Subject: "x"})
	require.NoError(t, err)
	assert.Empty(t, *sent)
}

func TestSMTPSender_NoRecipients(t *testing.T) {
	sender, _ := newCapturingSender(SMTPConfig{}, nil)
	assert.ErrorIs(t, sender.Send(context.Background(), Message{Subject: "x"}), ErrNoRecipients)
}

func TestPasswordResetBody(t *testing.T) {
	body, err := PasswordResetBody("Alice <admin>", "https://app.example.com/resetpassword/abc", 30*time.Minute)
	require.NoError(t, err)

	assert.Contains(t, body, "Hello Alice &lt;admin&gt;")
	assert.Contains(t, body, `href="https://app.example.com/resetpassword/abc"`)
	assert.Contains(t, body, "valid only for 30 minutes")
}
