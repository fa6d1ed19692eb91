package campaigns

import (
	"context"
	"errors"
	"sync"
)

// MemoryRepo is the in-memory campaign store used in dev/test deployments.
type MemoryRepo struct {
	mu        sync.RWMutex
	campaigns map[string]Campaign
}

func NewMemoryRepo(seed ...Campaign) *MemoryRepo {
	r := &MemoryRepo{campaigns: make(map[string]Campaign)}
	for _, c := range seed {
		r.campaigns[c.ID] = c
	}
	return r
}

func (r *MemoryRepo) Put(c Campaign) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.campaigns[c.ID] = c
}

func (r *MemoryRepo) FindByID(ctx context.Context, id string) (Campaign, bool, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.campaigns[id]
	return c, ok, nil
}

func (r *MemoryRepo) Update(ctx context.Context, c Campaign) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.campaigns[c.ID]; !ok {
		return errors.New("campaigns: not found")
	}
	r.campaigns[c.ID] = c
	return nil
}
