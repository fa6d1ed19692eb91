package calls

import "context"

// Repository is the persistence contract for calls.
//
// UpdateByProviderID is keyed on the provider call id because asynchronous
// provider events only carry that identifier. Read-modify-write through this
// interface is not transactionally protected; the merger keeps concurrent
// webhook deliveries commutative enough (append-only transcript, terminal
// status protection).
type Repository interface {
	Create(ctx context.Context, c Call) error
	FindByProviderID(ctx context.Context, providerCallID string) (Call, bool, error)
	UpdateByProviderID(ctx context.Context, c Call) error
	ListByCampaign(ctx context.Context, campaignID string) ([]Call, error)
}
