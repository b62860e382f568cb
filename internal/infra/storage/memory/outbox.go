package memory

import (
	"context"
	"sync"
	"time"

	appoutbox "lendly/internal/app/outbox"
	infraoutbox "lendly/internal/infra/outbox"
)

// OutboxStore keeps outbox records in memory. It backs both the application
// outbox port and the relay worker, so the full commit-then-publish flow runs
// without Mongo.
type OutboxStore struct {
	mu      sync.Mutex
	records []*infraoutbox.EventDocument
}

func NewOutboxStore() *OutboxStore {
	return &OutboxStore{}
}

func (o *OutboxStore) Add(ctx context.Context, record appoutbox.EventRecord) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.records = append(o.records, &infraoutbox.EventDocument{
		ID:          record.ID,
		Name:        record.Name,
		Payload:     record.Payload,
		OccurredAt:  record.OccurredAt,
		Aggregate:   record.Aggregate,
		Headers:     record.Headers,
		State:       "NEW",
		NextAttempt: time.Now().UTC(),
	})
	return nil
}

func (o *OutboxStore) Flush(ctx context.Context) error {
	return nil
}

func (o *OutboxStore) Claim(ctx context.Context, workerID string) (*infraoutbox.EventDocument, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	now := time.Now().UTC()
	for _, doc := range o.records {
		if doc.State != "NEW" && doc.State != "FAILED" {
			continue
		}
		if doc.NextAttempt.After(now) {
			continue
		}
		doc.State = "CLAIMED"
		doc.ClaimedBy = workerID
		doc.ClaimedAt = now
		snapshot := *doc
		return &snapshot, nil
	}
	return nil, nil
}

func (o *OutboxStore) MarkSent(ctx context.Context, id string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if doc := o.find(id); doc != nil {
		doc.State = "SENT"
		doc.SentAt = time.Now().UTC()
	}
	return nil
}

func (o *OutboxStore) MarkFailed(ctx context.Context, id string, next time.Time, errMsg string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if doc := o.find(id); doc != nil {
		doc.State = "FAILED"
		doc.NextAttempt = next
		doc.LastError = errMsg
		doc.Attempts++
	}
	return nil
}

// Pending reports how many records still await publication. Used by tests
// and the readiness probe.
func (o *OutboxStore) Pending() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	count := 0
	for _, doc := range o.records {
		if doc.State == "NEW" || doc.State == "FAILED" || doc.State == "CLAIMED" {
			count++
		}
	}
	return count
}

func (o *OutboxStore) find(id string) *infraoutbox.EventDocument {
	for _, doc := range o.records {
		if doc.ID == id {
			return doc
		}
	}
	return nil
}

var (
	_ appoutbox.Outbox  = (*OutboxStore)(nil)
	_ infraoutbox.Store = (*OutboxStore)(nil)
)
