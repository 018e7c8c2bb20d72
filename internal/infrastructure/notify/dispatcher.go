// Package notify delivers OTP codes to users, either directly through the
// SMS and email providers or by queueing an event for the notifier process.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-blog-auth/internal/domain"
)

const emailSubject = "Your verification code"

// Provider names reported in domain.DispatchError.
const (
	ProviderSMS   = "sns"
	ProviderEmail = "smtp"
	ProviderQueue = "kafka"
)

// Dispatcher sends code to recipient over the channel method names.
type Dispatcher interface {
	Send(ctx context.Context, method domain.AuthMethod, recipient, code string) error
}

type smsSender interface {
	SendSMS(ctx context.Context, to, message string) error
}

type mailer interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}

type publisher interface {
	Publish(ctx context.Context, key, value []byte) error
}

func message(code string) string {
	return fmt.Sprintf("Your verification code is %s", code)
}

// Direct calls the providers in-process.
type Direct struct {
	sms  smsSender
	mail mailer
}

func NewDirect(sms smsSender, mail mailer) *Direct {
	return &Direct{sms: sms, mail: mail}
}

func (d *Direct) Send(ctx context.Context, method domain.AuthMethod, recipient, code string) error {
	switch method {
	case domain.MethodPhone:
		if err := d.sms.SendSMS(ctx, recipient, message(code)); err != nil {
			return &domain.DispatchError{Provider: ProviderSMS, Err: err}
		}
	case domain.MethodEmail:
		if err := d.mail.SendEmail(ctx, recipient, emailSubject, message(code)); err != nil {
			return &domain.DispatchError{Provider: ProviderEmail, Err: err}
		}
	default:
		return fmt.Errorf("no delivery channel for method %q: %w", method, domain.ErrInternal)
	}
	return nil
}

// HandleMessage delivers a queued OtpEvent.
func (d *Direct) HandleMessage(ctx context.Context, value []byte) error {
	var ev domain.OtpEvent
	if err := json.Unmarshal(value, &ev); err != nil {
		return fmt.Errorf("decode otp event: %w", err)
	}
	return d.Send(ctx, ev.Channel, ev.Recipient, ev.Code)
}

// Queued publishes an OtpEvent per code; delivery happens in the notifier.
type Queued struct {
	pub publisher
	now func() time.Time
}

func NewQueued(pub publisher) *Queued {
	return &Queued{pub: pub, now: time.Now}
}

func (q *Queued) Send(ctx context.Context, method domain.AuthMethod, recipient, code string) error {
	value, err := json.Marshal(domain.OtpEvent{
		Channel:   method,
		Recipient: recipient,
		Code:      code,
		IssuedAt:  q.now().UTC(),
	})
	if err != nil {
		return err
	}
	if err := q.pub.Publish(ctx, []byte(recipient), value); err != nil {
		return &domain.DispatchError{Provider: ProviderQueue, Err: err}
	}
	return nil
}
