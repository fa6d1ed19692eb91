package contacts

import (
	"context"
	"time"
)

// Contact is the minimal external shape the call engine consumes.
// Contact CRUD lives outside this core; only reads happen here.
type Contact struct {
	ID          string    `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	PhoneNumber string    `json:"phone_number" db:"phone_number"`
	Active      bool      `json:"active" db:"active"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// Repository abstracts contact reads.
type Repository interface {
	// FindByIDs returns the contacts that exist, in input order.
	// Missing ids are silently dropped; callers decide whether that is fatal.
	FindByIDs(ctx context.Context, ids []string) ([]Contact, error)

	// ListActive returns up to limit active contacts.
	ListActive(ctx context.Context, limit int) ([]Contact, error)
}
