package events

import (
	"context"
	"sync"
	"time"
)

// Record is an immutable, append-only trace of one received provider event.
//
// Invariants:
// - Records are never updated or deleted.
// - Recording is best-effort; webhook processing never fails on a log error.

type Record struct {
	ID             string    `json:"id"`
	Type           string    `json:"type"`
	ProviderCallID string    `json:"provider_call_id,omitempty"`
	Routable       bool      `json:"routable"`
	Raw            string    `json:"raw,omitempty"`
	ReceivedAt     time.Time `json:"received_at"`
}

// LogRepository is the persistence contract for the event trace.
// It MUST be append-only; no Update/Delete methods are provided by design.
type LogRepository interface {
	Append(ctx context.Context, r Record) error
}

// MemoryLog keeps the event trace in process memory.
type MemoryLog struct {
	mu      sync.Mutex
	records []Record
}

func NewMemoryLog() *MemoryLog { return &MemoryLog{} }

func (l *MemoryLog) Append(ctx context.Context, r Record) error {
	_ = ctx
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = append(l.records, r)
	return nil
}

// Records returns a copy of the trace, oldest first.
func (l *MemoryLog) Records() []Record {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Record, len(l.records))
	copy(out, l.records)
	return out
}
