package contacts

import (
	"context"
	"sync"
)

// MemoryRepo is the in-memory contact store used in dev/test deployments.
type MemoryRepo struct {
	mu       sync.RWMutex
	contacts map[string]Contact
	order    []string
}

func NewMemoryRepo(seed ...Contact) *MemoryRepo {
	r := &MemoryRepo{contacts: make(map[string]Contact)}
	for _, c := range seed {
		r.Put(c)
	}
	return r
}

// Put inserts or replaces a contact. Intended for seeding and tests.
func (r *MemoryRepo) Put(c Contact) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.contacts[c.ID]; !ok {
		r.order = append(r.order, c.ID)
	}
	r.contacts[c.ID] = c
}

func (r *MemoryRepo) FindByIDs(ctx context.Context, ids []string) ([]Contact, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Contact, 0, len(ids))
	for _, id := range ids {
		if c, ok := r.contacts[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *MemoryRepo) ListActive(ctx context.Context, limit int) ([]Contact, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Contact, 0, limit)
	for _, id := range r.order {
		if len(out) >= limit {
			break
		}
		if c := r.contacts[id]; c.Active {
			out = append(out, c)
		}
	}
	return out, nil
}
