package calls

import "time"

// Call represents one attempted or completed outbound voice interaction.
//
// Invariants:
// - ProviderCallID is set exactly once, at dispatch, and never changes.
// - Transcript, once non-empty, only grows (append-only; see merger.go).
// - Terminal statuses are never regressed to a non-terminal one by a stale
//   event.
//
// RawProviderResponse stores the last-seen provider payload for diagnostics
// only; nothing reads it back into typed fields.

type Call struct {
	CallID         string `json:"call_id" db:"call_id"`
	ProviderCallID string `json:"provider_call_id" db:"provider_call_id"`

	ContactID  string `json:"contact_id,omitempty" db:"contact_id"`
	CampaignID string `json:"campaign_id,omitempty" db:"campaign_id"`
	ScriptID   string `json:"script_id,omitempty" db:"script_id"`

	// To is the normalized dialable address; ToName is the display name.
	To     string `json:"to" db:"to"`
	ToName string `json:"to_name,omitempty" db:"to_name"`

	Status CallStatus `json:"status" db:"status"`

	Transcript      string  `json:"transcript,omitempty" db:"transcript"`
	DurationSeconds int     `json:"duration" db:"duration"`
	Cost            float64 `json:"cost,omitempty" db:"cost"`
	RecordingURL    string  `json:"recording_url,omitempty" db:"recording_url"`
	EndReason       string  `json:"end_reason,omitempty" db:"end_reason"`

	StartedAt *time.Time `json:"started_at,omitempty" db:"started_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty" db:"ended_at"`

	RawProviderResponse string `json:"raw_provider_response,omitempty" db:"raw_provider_response"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

type CallStatus string

const (
	CallStatusInitiated  CallStatus = "initiated"
	CallStatusQueued     CallStatus = "queued"
	CallStatusRinging    CallStatus = "ringing"
	CallStatusInProgress CallStatus = "in_progress"
	CallStatusCompleted  CallStatus = "completed"
	CallStatusFailed     CallStatus = "failed"
	CallStatusNoAnswer   CallStatus = "no_answer"
	CallStatusBusy       CallStatus = "busy"
	CallStatusCanceled   CallStatus = "canceled"
)

// IsTerminal reports whether a status ends the call lifecycle.
func (s CallStatus) IsTerminal() bool {
	switch s {
	case CallStatusCompleted, CallStatusFailed, CallStatusNoAnswer, CallStatusBusy, CallStatusCanceled:
		return true
	default:
		return false
	}
}

// KnownStatus reports whether s is part of the fixed status vocabulary.
func KnownStatus(s CallStatus) bool {
	switch s {
	case CallStatusInitiated, CallStatusQueued, CallStatusRinging, CallStatusInProgress,
		CallStatusCompleted, CallStatusFailed, CallStatusNoAnswer, CallStatusBusy, CallStatusCanceled:
		return true
	default:
		return false
	}
}
