package campaigns

import (
	"context"
	"time"
)

// Campaign is a named batch of outbound attempts against a contact set.
// Campaign CRUD is owned by the outer layer; the runner reads the contact
// references and writes back status, start time, and aggregate counts.
type Campaign struct {
	ID   string `json:"id" db:"id"`
	Name string `json:"name" db:"name"`

	Status CampaignStatus `json:"status" db:"status"`

	// ScriptID points at the shared instruction script for the batch.
	ScriptID string `json:"script_id,omitempty" db:"script_id"`

	// LegacyScriptText is the free-text instruction field kept from before
	// scripts were first-class; used only when ScriptID is empty.
	LegacyScriptText string `json:"legacy_script_text,omitempty" db:"legacy_script_text"`

	ContactIDs []string `json:"contact_ids,omitempty" db:"contact_ids"`

	TotalContacts int        `json:"total_contacts" db:"total_contacts"`
	StartedAt     *time.Time `json:"started_at,omitempty" db:"started_at"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

type CampaignStatus string

const (
	CampaignStatusDraft     CampaignStatus = "draft"
	CampaignStatusRunning   CampaignStatus = "running"
	CampaignStatusCompleted CampaignStatus = "completed"
)

// Repository is the persistence contract for campaigns.
type Repository interface {
	FindByID(ctx context.Context, id string) (Campaign, bool, error)
	Update(ctx context.Context, c Campaign) error
}
