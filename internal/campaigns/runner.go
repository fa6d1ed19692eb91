package campaigns

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"voiceagent-platform/internal/calls"
	"voiceagent-platform/internal/contacts"
	"voiceagent-platform/internal/phone"
	"voiceagent-platform/internal/provider"
	"voiceagent-platform/internal/scripts"
)

// DefaultActiveSampleLimit bounds the fallback contact sample when neither an
// explicit id list nor campaign contact references yield anything.
const DefaultActiveSampleLimit = 50

// Per-contact outcomes.
const (
	OutcomeQueued  = "queued"
	OutcomeSkipped = "skipped"
	OutcomeFailed  = "failed"

	ReasonAlreadyCalled = "already_called"
	ReasonInvalidNumber = "invalid_number"
)

var ErrCampaignNotFound = errors.New("campaigns: not found")

// RunRequest describes one batch run.
type RunRequest struct {
	CampaignID string

	// ContactIDs, when non-empty, is the explicit contact set and wins over
	// the campaign's stored references.
	ContactIDs []string

	Overrides provider.AgentOverrides
	ScriptID  string

	// RetryAll disables the duplicate-call check.
	RetryAll bool
}

// ContactResult is one contact's outcome within a batch.
type ContactResult struct {
	ContactID      string `json:"contact_id"`
	Name           string `json:"name,omitempty"`
	PhoneNumber    string `json:"phone_number,omitempty"`
	Outcome        string `json:"outcome"`
	Reason         string `json:"reason,omitempty"`
	ProviderCallID string `json:"provider_call_id,omitempty"`
}

// RunSummary aggregates a batch run.
type RunSummary struct {
	CampaignID string          `json:"campaign_id,omitempty"`
	Results    []ContactResult `json:"results"`
	Queued     int             `json:"queued"`
	Skipped    int             `json:"skipped"`
	Failed     int             `json:"failed"`
}

// RunnerDeps wires the runner's collaborators.
type RunnerDeps struct {
	Campaigns  Repository
	Contacts   contacts.Repository
	Scripts    scripts.Repository
	Calls      calls.Repository
	Dispatcher *calls.Dispatcher

	DefaultCountryCode string
	ActiveSampleLimit  int

	Log   *slog.Logger
	Clock func() time.Time
}

// Runner iterates a contact set and dispatches one call per contact.
//
// Contacts are dispatched strictly sequentially. This is a deliberate
// ordering tradeoff: the dedup snapshot is taken once before the loop, and
// parallel dispatch would change both the duplicate-prevention behavior and
// the provider rate-limit exposure.
type Runner struct {
	deps RunnerDeps
}

func NewRunner(deps RunnerDeps) *Runner {
	if deps.ActiveSampleLimit <= 0 {
		deps.ActiveSampleLimit = DefaultActiveSampleLimit
	}
	if deps.Log == nil {
		deps.Log = slog.Default()
	}
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	return &Runner{deps: deps}
}

// Run executes one batch. A failing contact never aborts the batch; its
// error is recorded and the loop continues.
func (r *Runner) Run(ctx context.Context, req RunRequest) (RunSummary, error) {
	var campaign Campaign
	haveCampaign := false
	if req.CampaignID != "" {
		c, ok, err := r.deps.Campaigns.FindByID(ctx, req.CampaignID)
		if err != nil {
			return RunSummary{}, err
		}
		if !ok {
			return RunSummary{}, ErrCampaignNotFound
		}
		campaign = c
		haveCampaign = true
	}

	batch, err := r.resolveContacts(ctx, req, campaign)
	if err != nil {
		return RunSummary{}, err
	}

	called, err := r.dedupSnapshot(ctx, req)
	if err != nil {
		return RunSummary{}, err
	}

	scriptText, scriptID := r.resolveScript(ctx, req, campaign)

	summary := RunSummary{CampaignID: req.CampaignID}
	for _, contact := range batch {
		res := ContactResult{
			ContactID:   contact.ID,
			Name:        contact.Name,
			PhoneNumber: contact.PhoneNumber,
		}

		if _, dialed := called[contact.ID]; dialed {
			res.Outcome = OutcomeSkipped
			res.Reason = ReasonAlreadyCalled
			summary.Skipped++
			summary.Results = append(summary.Results, res)
			continue
		}

		if _, ok := phone.Normalize(contact.PhoneNumber, r.deps.DefaultCountryCode); !ok {
			res.Outcome = OutcomeSkipped
			res.Reason = ReasonInvalidNumber
			summary.Skipped++
			summary.Results = append(summary.Results, res)
			continue
		}

		call, err := r.deps.Dispatcher.Dispatch(ctx, calls.DispatchRequest{
			Target: calls.DispatchTarget{
				ContactID:   contact.ID,
				PhoneNumber: contact.PhoneNumber,
				Name:        contact.Name,
			},
			Overrides:  req.Overrides,
			ScriptID:   scriptID,
			ScriptText: scriptText,
			CampaignID: req.CampaignID,
		})
		if err != nil {
			r.deps.Log.Warn("campaign dispatch failed", "campaign_id", req.CampaignID, "contact_id", contact.ID, "err", err)
			res.Outcome = OutcomeFailed
			res.Reason = err.Error()
			summary.Failed++
			summary.Results = append(summary.Results, res)
			continue
		}

		res.Outcome = OutcomeQueued
		res.ProviderCallID = call.ProviderCallID
		summary.Queued++
		summary.Results = append(summary.Results, res)
	}

	if haveCampaign {
		now := r.deps.Clock().UTC()
		campaign.Status = CampaignStatusRunning
		if campaign.StartedAt == nil {
			campaign.StartedAt = &now
		}
		campaign.TotalContacts = len(batch)
		campaign.UpdatedAt = now
		if err := r.deps.Campaigns.Update(ctx, campaign); err != nil {
			r.deps.Log.Error("campaign write-back failed", "campaign_id", campaign.ID, "err", err)
		}
	}

	return summary, nil
}

// resolveContacts picks the contact set: explicit id list, else the
// campaign's stored references (re-fetched), else a bounded active sample.
func (r *Runner) resolveContacts(ctx context.Context, req RunRequest, campaign Campaign) ([]contacts.Contact, error) {
	if len(req.ContactIDs) > 0 {
		return r.deps.Contacts.FindByIDs(ctx, req.ContactIDs)
	}
	if len(campaign.ContactIDs) > 0 {
		batch, err := r.deps.Contacts.FindByIDs(ctx, campaign.ContactIDs)
		if err != nil {
			return nil, err
		}
		if len(batch) > 0 {
			return batch, nil
		}
	}
	return r.deps.Contacts.ListActive(ctx, r.deps.ActiveSampleLimit)
}

// dedupSnapshot collects the contact ids already dialed under this campaign.
func (r *Runner) dedupSnapshot(ctx context.Context, req RunRequest) (map[string]struct{}, error) {
	called := make(map[string]struct{})
	if req.RetryAll || req.CampaignID == "" {
		return called, nil
	}
	prior, err := r.deps.Calls.ListByCampaign(ctx, req.CampaignID)
	if err != nil {
		return nil, err
	}
	for _, c := range prior {
		if c.ContactID != "" {
			called[c.ContactID] = struct{}{}
		}
	}
	return called, nil
}

// resolveScript picks the single shared instruction source for the batch.
func (r *Runner) resolveScript(ctx context.Context, req RunRequest, campaign Campaign) (text, id string) {
	scriptID := req.ScriptID
	if scriptID == "" {
		scriptID = campaign.ScriptID
	}
	if scriptID != "" {
		s, ok, err := r.deps.Scripts.FindByID(ctx, scriptID)
		if err != nil {
			r.deps.Log.Warn("script lookup failed", "script_id", scriptID, "err", err)
		} else if ok {
			return s.InstructionText(), s.ID
		}
	}
	if campaign.LegacyScriptText != "" {
		return campaign.LegacyScriptText, ""
	}
	return "", ""
}
