package worker

// email_worker.go
// Processes email jobs from QueueEmail: low-stock alerts to vendors.
// Each job is attempted once. A failed send goes to the dead letter queue.

import (
	"context"
	"encoding/json"
	"errors"

	"airportpos/internal/infra"

	"github.com/rs/zerolog/log"
)

// EmailJobPayload is the job envelope sent to QueueEmail.
type EmailJobPayload struct {
	ToEmail string `json:"to_email"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// MailSender delivers one message. *infra.Mailer implements it.
type MailSender interface {
	Send(to, subject, body string) error
}

type EmailWorker struct {
	mailer  MailSender
	breaker *infra.Breaker
	dlq     DeadLetterSink
}

// NewEmailWorker guards mailer with breaker so a dead SMTP relay fails fast.
func NewEmailWorker(mailer MailSender, breaker *infra.Breaker, dlq DeadLetterSink) *EmailWorker {
	if breaker == nil {
		breaker = infra.NewBreaker(infra.DefaultBreakerConfig("smtp"))
	}
	return &EmailWorker{mailer: mailer, breaker: breaker, dlq: dlq}
}

func (w *EmailWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload EmailJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("email_worker: invalid payload")
		sendToDLQ(ctx, w.dlq, QueueEmail, JobEmail, raw, "invalid payload: "+err.Error(), 0)
		return err
	}
	if payload.ToEmail == "" {
		log.Warn().Str("subject", payload.Subject).Msg("email_worker: empty to_email, skipping")
		return nil
	}

	err := w.breaker.Do(func() error {
		return w.mailer.Send(payload.ToEmail, payload.Subject, payload.Body)
	})
	if err != nil {
		ev := log.Error()
		if errors.Is(err, infra.ErrBreakerOpen) {
			ev = log.Warn()
		}
		ev.Err(err).Str("to", payload.ToEmail).Str("subject", payload.Subject).Msg("email_worker: send failed")
		sendToDLQ(ctx, w.dlq, QueueEmail, JobEmail, raw, err.Error(), 1)
		return err
	}
	log.Info().Str("to", payload.ToEmail).Str("subject", payload.Subject).Msg("email_worker: email sent")
	return nil
}
