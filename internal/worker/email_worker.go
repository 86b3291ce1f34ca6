package worker

// email_worker.go
// Processes email jobs from QueueEmail. Password-reset notices are the only
// producer today.

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"
)

// EmailJobPayload is the job envelope sent to QueueEmail.
type EmailJobPayload struct {
	ToEmail string `json:"to_email"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Sender delivers one plain-text message.
type Sender interface {
	Send(to, subject, body string) error
}

// EmailWorker processes email jobs from QueueEmail.
type EmailWorker struct {
	sender Sender
}

func NewEmailWorker(sender Sender) *EmailWorker {
	return &EmailWorker{sender: sender}
}

func (w *EmailWorker) Process(_ context.Context, raw json.RawMessage) error {
	var payload EmailJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("%w: invalid payload: %v", ErrPermanent, err)
	}
	if payload.ToEmail == "" {
		return fmt.Errorf("%w: empty to_email", ErrPermanent)
	}

	if err := w.sender.Send(payload.ToEmail, payload.Subject, payload.Body); err != nil {
		return err
	}
	log.Info().Str("to", payload.ToEmail).Msg("email_worker: message sent")
	return nil
}

// Redact drops the message body, which for password resets holds the new
// password. Recipient and subject stay for triage.
func (w *EmailWorker) Redact(raw json.RawMessage) json.RawMessage {
	var payload EmailJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil
	}
	out, err := json.Marshal(struct {
		ToEmail string `json:"to_email"`
		Subject string `json:"subject"`
	}{payload.ToEmail, payload.Subject})
	if err != nil {
		return nil
	}
	return out
}
