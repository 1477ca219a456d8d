package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"sort"
	"sync"
	"time"

	"airportpos/internal/model"
	"airportpos/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ── Stubs ─────────────────────────────────────────────────────────────────────

type memDLQ struct {
	mu      sync.Mutex
	entries []DLQEntry
}

func (d *memDLQ) Push(_ context.Context, e DLQEntry) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.entries = append(d.entries, e)
	return nil
}

var _ DeadLetterSink = (*memDLQ)(nil)

type stubMailer struct {
	calls int
	err   error
	last  EmailJobPayload
}

func (m *stubMailer) Send(to, subject, body string) error {
	m.calls++
	m.last = EmailJobPayload{ToEmail: to, Subject: subject, Body: body}
	return m.err
}

type stubBillRepo struct {
	bills map[uuid.UUID]*model.Bill
	err   error
}

func (r *stubBillRepo) CreateTx(context.Context, *gorm.DB, *model.Bill) error { return nil }

func (r *stubBillRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Bill, error) {
	b, ok := r.bills[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return b, nil
}

func (r *stubBillRepo) List(context.Context, repository.BillQuery) ([]model.Bill, error) {
	return nil, nil
}

func (r *stubBillRepo) ListCreatedBetween(_ context.Context, since, until time.Time, after *repository.BillCursor, limit int) ([]model.Bill, error) {
	if r.err != nil {
		return nil, r.err
	}
	var out []model.Bill
	for _, b := range r.bills {
		if b.CreatedAt.Before(since) || !b.CreatedAt.Before(until) {
			continue
		}
		if after != nil && !billBefore(b, after) {
			continue
		}
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool {
		return billBefore(&out[j], &repository.BillCursor{CreatedAt: out[i].CreatedAt, ID: out[i].ID})
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// billBefore reports whether b sorts after the cursor in a newest-first walk.
func billBefore(b *model.Bill, c *repository.BillCursor) bool {
	if !b.CreatedAt.Equal(c.CreatedAt) {
		return b.CreatedAt.Before(c.CreatedAt)
	}
	return bytes.Compare(b.ID[:], c.ID[:]) < 0
}

var _ repository.BillRepository = (*stubBillRepo)(nil)

// flakyRenderer fails the first failures calls.
type flakyRenderer struct {
	failures int
	calls    int
}

func (r *flakyRenderer) Render(b *model.Bill) (string, error) {
	r.calls++
	if r.calls <= r.failures {
		return "", errors.New("disk full")
	}
	return "/tmp/" + b.ID.String() + ".pdf", nil
}

type recordingHandler struct {
	payloads []json.RawMessage
	err      error
}

func (h *recordingHandler) Process(_ context.Context, p json.RawMessage) error {
	h.payloads = append(h.payloads, p)
	return h.err
}

type setStore map[uuid.UUID]bool

func (s setStore) Exists(b *model.Bill) bool { return s[b.ID] }

type recordingEnqueuer struct {
	ids []uuid.UUID
	err error
}

func (q *recordingEnqueuer) EnqueueInvoice(_ context.Context, id uuid.UUID) error {
	if q.err != nil {
		return q.err
	}
	q.ids = append(q.ids, id)
	return nil
}
