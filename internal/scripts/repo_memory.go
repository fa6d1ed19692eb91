package scripts

import (
	"context"
	"sync"
)

// MemoryRepo is the in-memory script store used in dev/test deployments.
type MemoryRepo struct {
	mu      sync.RWMutex
	scripts map[string]Script
}

func NewMemoryRepo(seed ...Script) *MemoryRepo {
	r := &MemoryRepo{scripts: make(map[string]Script)}
	for _, s := range seed {
		r.scripts[s.ID] = s
	}
	return r
}

func (r *MemoryRepo) Put(s Script) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scripts[s.ID] = s
}

func (r *MemoryRepo) FindByID(ctx context.Context, id string) (Script, bool, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.scripts[id]
	return s, ok, nil
}
