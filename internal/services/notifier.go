package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/medvault/medvault/pkg/logger"
	"github.com/medvault/medvault/pkg/mail"
)

// Notifier dispatches account lifecycle emails. All sends are best-effort:
// they run after the surrounding transaction commits and their failures are
// logged, never propagated.
type Notifier interface {
	OTPIssued(email, name, code string)
	AccountApproved(email, name string)
	AdminInvited(email, name, tempPassword string)
}

const notifyTimeout = 15 * time.Second

type mailNotifier struct {
	mailer mail.Mailer
	log    *zap.Logger
}

// NewMailNotifier wraps a Mailer in fire-and-forget delivery.
func NewMailNotifier(mailer mail.Mailer) Notifier {
	return &mailNotifier{
		mailer: mailer,
		log:    logger.WithModule("notifier"),
	}
}

func (n *mailNotifier) OTPIssued(email, name, code string) {
	body := fmt.Sprintf(
		"Hello %s,\r\n\r\n"+
			"Your MedVault verification code is %s.\r\n"+
			"It expires in 10 minutes.\r\n\r\n"+
			"If you did not request this code, you can ignore this email.\r\n",
		name, code,
	)
	n.dispatch(email, "Your MedVault verification code", body)
}

func (n *mailNotifier) AccountApproved(email, name string) {
	body := fmt.Sprintf(
		"Hello %s,\r\n\r\n"+
			"Your MedVault account has been approved. You can now log in.\r\n",
		name,
	)
	n.dispatch(email, "Your MedVault account is approved", body)
}

func (n *mailNotifier) AdminInvited(email, name, tempPassword string) {
	body := fmt.Sprintf(
		"Hello %s,\r\n\r\n"+
			"You have been invited as a MedVault administrator.\r\n"+
			"Temporary password: %s\r\n\r\n"+
			"Please log in and complete your admin profile. Your account\r\n"+
			"stays pending until an existing administrator approves it.\r\n",
		name, tempPassword,
	)
	n.dispatch(email, "MedVault administrator invitation", body)
}

func (n *mailNotifier) dispatch(to, subject, body string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()

		err := n.mailer.Send(ctx, mail.Message{
			To:      []string{to},
			Subject: subject,
			Body:    body,
		})
		switch {
		case err == nil:
		case errors.Is(err, mail.ErrSMTPDisabled):
			n.log.Debug("email delivery disabled, skipping notification",
				zap.String("subject", subject))
		default:
			n.log.Error("failed to send notification email",
				zap.String("subject", subject),
				zap.Error(err))
		}
	}()
}

// NopNotifier discards all notifications. Used in tests.
type NopNotifier struct{}

func (NopNotifier) OTPIssued(string, string, string)    {}
func (NopNotifier) AccountApproved(string, string)      {}
func (NopNotifier) AdminInvited(string, string, string) {}
