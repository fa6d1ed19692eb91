package calls

import (
	"context"
	"errors"
	"sync"
)

// MemoryRepo is the in-memory call store used in dev/test deployments and as
// a test fixture. Selected at startup by configuration; never a module-level
// singleton.
type MemoryRepo struct {
	mu    sync.RWMutex
	calls map[string]Call // keyed by provider call id
	order []string
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{calls: make(map[string]Call)}
}

var errDuplicateProviderID = errors.New("calls: provider call id already exists")

func (r *MemoryRepo) Create(ctx context.Context, c Call) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.calls[c.ProviderCallID]; ok {
		return errDuplicateProviderID
	}
	r.calls[c.ProviderCallID] = c
	r.order = append(r.order, c.ProviderCallID)
	return nil
}

func (r *MemoryRepo) FindByProviderID(ctx context.Context, providerCallID string) (Call, bool, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.calls[providerCallID]
	return c, ok, nil
}

func (r *MemoryRepo) UpdateByProviderID(ctx context.Context, c Call) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.calls[c.ProviderCallID]
	if !ok {
		return errors.New("calls: not found")
	}
	// ProviderCallID is immutable; CreatedAt is preserved.
	c.CreatedAt = existing.CreatedAt
	r.calls[c.ProviderCallID] = c
	return nil
}

func (r *MemoryRepo) ListByCampaign(ctx context.Context, campaignID string) ([]Call, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Call
	for _, id := range r.order {
		if c := r.calls[id]; c.CampaignID == campaignID {
			out = append(out, c)
		}
	}
	return out, nil
}
