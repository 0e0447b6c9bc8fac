package mail

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSendDisabled(t *testing.T) {
	mailer, err := NewSMTPMailer(SMTPSettings{Enabled: false})
	require.NoError(t, err)

	err = mailer.Send(context.Background(), Message{To: []string{"a@example.com"}})
	require.ErrorIs(t, err, ErrSMTPDisabled)
}

func TestNewSMTPMailerValidation(t *testing.T) {
	_, err := NewSMTPMailer(SMTPSettings{Enabled: true})
	require.Error(t, err)

	_, err = NewSMTPMailer(SMTPSettings{Enabled: true, Host: "smtp.example.com"})
	require.Error(t, err)

	_, err = NewSMTPMailer(SMTPSettings{Enabled: true, Host: "smtp.example.com", Port: 587})
	require.NoError(t, err)
}

func TestFormatMessage(t *testing.T) {
	msg := formatMessage("noreply@example.com", []string{"to@example.com"}, "Line\r\nInjected", "hello")

	require.True(t, strings.HasPrefix(msg, "From: noreply@example.com\r\n"))
	require.Contains(t, msg, "Subject: Line Injected")
	require.Contains(t, msg, "Content-Type: text/plain; charset=UTF-8")
	require.True(t, strings.HasSuffix(msg, "\r\nhello"))
}

func TestUniqueAddresses(t *testing.T) {
	out := uniqueAddresses([]string{" a@x.com ", "a@x.com", "", "b@x.com"})
	require.Equal(t, []string{"a@x.com", "b@x.com"}, out)
}
