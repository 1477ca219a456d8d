package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"airportpos/internal/infra"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func emailJob(t *testing.T, p EmailJobPayload) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(p)
	require.NoError(t, err)
	return data
}

func TestEmailWorker_Sends(t *testing.T) {
	mailer, dlq := &stubMailer{}, &memDLQ{}
	w := NewEmailWorker(mailer, nil, dlq)

	err := w.Process(context.Background(), emailJob(t, EmailJobPayload{
		ToEmail: "vendor@airport.local", Subject: "Low Stock Alert: Water Bottle", Body: "Current Stock: 4",
	}))
	require.NoError(t, err)
	assert.Equal(t, 1, mailer.calls)
	assert.Equal(t, "Low Stock Alert: Water Bottle", mailer.last.Subject)
	assert.Empty(t, dlq.entries)
}

func TestEmailWorker_SkipsEmptyRecipient(t *testing.T) {
	mailer := &stubMailer{}
	w := NewEmailWorker(mailer, nil, &memDLQ{})

	assert.NoError(t, w.Process(context.Background(), emailJob(t, EmailJobPayload{Subject: "x"})))
	assert.Zero(t, mailer.calls)
}

func TestEmailWorker_FailureGoesToDLQ(t *testing.T) {
	mailer, dlq := &stubMailer{err: errors.New("535 auth failed")}, &memDLQ{}
	w := NewEmailWorker(mailer, nil, dlq)

	payload := emailJob(t, EmailJobPayload{ToEmail: "vendor@airport.local", Subject: "s"})
	err := w.Process(context.Background(), payload)
	require.Error(t, err)

	require.Len(t, dlq.entries, 1)
	e := dlq.entries[0]
	assert.Equal(t, QueueEmail, e.OriginalQueue)
	assert.Equal(t, JobEmail, e.JobType)
	assert.Equal(t, 1, e.Attempts)
	assert.Contains(t, e.Reason, "535")
	assert.JSONEq(t, string(payload), string(e.Payload))
}

func TestEmailWorker_InvalidPayload(t *testing.T) {
	dlq := &memDLQ{}
	w := NewEmailWorker(&stubMailer{}, nil, dlq)

	assert.Error(t, w.Process(context.Background(), json.RawMessage(`[1,2]`)))
	require.Len(t, dlq.entries, 1)
	assert.Zero(t, dlq.entries[0].Attempts)
}

func TestEmailWorker_OpenBreakerFailsFast(t *testing.T) {
	mailer, dlq := &stubMailer{err: errors.New("dial tcp: timeout")}, &memDLQ{}
	breaker := infra.NewBreaker(infra.BreakerConfig{Name: "smtp", MaxFailures: 2, CoolDown: time.Hour})
	w := NewEmailWorker(mailer, breaker, dlq)
	job := emailJob(t, EmailJobPayload{ToEmail: "vendor@airport.local", Subject: "s"})

	_ = w.Process(context.Background(), job)
	_ = w.Process(context.Background(), job)
	err := w.Process(context.Background(), job)

	assert.ErrorIs(t, err, infra.ErrBreakerOpen)
	assert.Equal(t, 2, mailer.calls)
	assert.Len(t, dlq.entries, 3)
}

func TestEmailWorker_PayloadCarriesOnlyTextFields(t *testing.T) {
	var keys map[string]any
	require.NoError(t, json.Unmarshal(emailJob(t, EmailJobPayload{ToEmail: "v@airport.local", Subject: "s", Body: "b"}), &keys))
	assert.Len(t, keys, 3)
	assert.Contains(t, keys, "to_email")
	assert.Contains(t, keys, "subject")
	assert.Contains(t, keys, "body")

	// Jobs queued with unknown fields are still delivered as plain text.
	mailer := &stubMailer{}
	w := NewEmailWorker(mailer, nil, &memDLQ{})
	raw := json.RawMessage(`{"to_email":"v@airport.local","subject":"s","body":"b","attachment":"/etc/passwd"}`)
	require.NoError(t, w.Process(context.Background(), raw))
	assert.Equal(t, EmailJobPayload{ToEmail: "v@airport.local", Subject: "s", Body: "b"}, mailer.last)
}
