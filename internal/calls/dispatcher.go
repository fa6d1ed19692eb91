package calls

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"voiceagent-platform/internal/contacts"
	"voiceagent-platform/internal/phone"
	"voiceagent-platform/internal/provider"
	"voiceagent-platform/internal/schedule"
	"voiceagent-platform/internal/scripts"

	"github.com/google/uuid"
)

var (
	ErrContactNotFound    = errors.New("calls: contact not found")
	ErrInvalidPhoneNumber = errors.New("calls: invalid phone number")
	ErrInvalidDispatch    = errors.New("calls: phone number or contact id required")
)

// DefaultRecheckDelay is how long after dispatch the best-effort status
// re-check runs.
const DefaultRecheckDelay = 8 * time.Second

// DispatchTarget identifies who to call: an explicit phone+name pair, or a
// contact id to resolve.
type DispatchTarget struct {
	ContactID   string
	PhoneNumber string
	Name        string
}

// DispatchRequest is one outbound call order.
type DispatchRequest struct {
	Target    DispatchTarget
	Overrides provider.AgentOverrides

	// ScriptID is resolved through the script repository unless ScriptText
	// is already set (the campaign runner resolves the shared script once).
	ScriptID   string
	ScriptText string

	CampaignID string
}

// DispatcherDeps wires the dispatcher's collaborators.
type DispatcherDeps struct {
	Repo     Repository
	Contacts contacts.Repository
	Scripts  scripts.Repository
	Provider *provider.Client
	Defaults provider.AgentDefaults

	DefaultCountryCode string

	// Clock drives the post-dispatch re-check; tests inject a manual clock.
	Clock        schedule.Clock
	RecheckDelay time.Duration

	// Throttle is optional; nil disables the recent-dial guard.
	Throttle *DialThrottle

	Log *slog.Logger
}

// Dispatcher places single outbound calls and persists the resulting Call.
// No retries happen here; provider failures surface to the caller.
type Dispatcher struct {
	deps DispatcherDeps
}

func NewDispatcher(deps DispatcherDeps) *Dispatcher {
	if deps.Clock == nil {
		deps.Clock = schedule.NewReal()
	}
	if deps.RecheckDelay <= 0 {
		deps.RecheckDelay = DefaultRecheckDelay
	}
	if deps.Log == nil {
		deps.Log = slog.Default()
	}
	return &Dispatcher{deps: deps}
}

// Dispatch places one call.
//
// When the provider is fully configured (credential + default agent id +
// default number id) the call goes out for real; otherwise a deterministic
// mock provider id is synthesized so dev/test environments exercise the full
// persistence path without network calls.
func (d *Dispatcher) Dispatch(ctx context.Context, req DispatchRequest) (Call, error) {
	rawPhone, name, contactID, err := d.resolveTarget(ctx, req.Target)
	if err != nil {
		return Call{}, err
	}

	number, ok := phone.Normalize(rawPhone, d.deps.DefaultCountryCode)
	if !ok {
		return Call{}, fmt.Errorf("%w: %q", ErrInvalidPhoneNumber, rawPhone)
	}

	if err := d.deps.Throttle.Acquire(ctx, number); err != nil {
		return Call{}, err
	}

	scriptText, scriptID := d.resolveScript(ctx, req)

	now := d.deps.Clock.Now().UTC()
	c := Call{
		CallID:     uuid.NewString(),
		ContactID:  contactID,
		CampaignID: req.CampaignID,
		ScriptID:   scriptID,
		To:         number,
		ToName:     name,
		Status:     CallStatusInitiated,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if d.providerConfigured() {
		pr := provider.ResolveOutboundRequest(provider.ResolveInput{
			Defaults:       d.deps.Defaults,
			Overrides:      req.Overrides,
			ScriptText:     scriptText,
			CustomerNumber: number,
			CustomerName:   name,
		})
		pc, err := d.deps.Provider.CreateOutboundCall(ctx, pr)
		if err != nil {
			if rerr := d.deps.Throttle.Release(ctx, number); rerr != nil {
				d.deps.Log.Warn("dial throttle release failed", "number", number, "err", rerr)
			}
			return Call{}, fmt.Errorf("calls: dispatch failed: %w", err)
		}
		c.ProviderCallID = pc.ID
		if raw, merr := json.Marshal(pc); merr == nil {
			c.RawProviderResponse = string(raw)
		}
	} else {
		c.ProviderCallID = "mock_" + uuid.NewString()
	}

	if err := d.deps.Repo.Create(ctx, c); err != nil {
		return Call{}, fmt.Errorf("calls: persist failed: %w", err)
	}

	if d.providerConfigured() {
		providerID := c.ProviderCallID
		d.deps.Clock.AfterFunc(d.deps.RecheckDelay, func() {
			d.recheck(providerID)
		})
	}

	return c, nil
}

// Refresh re-fetches the provider's call record and merges it through the
// same path webhook events use.
func (d *Dispatcher) Refresh(ctx context.Context, providerCallID string) (Call, error) {
	stored, ok, err := d.deps.Repo.FindByProviderID(ctx, providerCallID)
	if err != nil {
		return Call{}, err
	}
	if !ok {
		return Call{}, errors.New("calls: not found")
	}

	pc, err := d.deps.Provider.GetCall(ctx, providerCallID)
	if err != nil {
		return Call{}, fmt.Errorf("calls: refresh failed: %w", err)
	}

	delta := DeltaFromProviderCall(pc)
	if stored.Transcript == "" {
		// A polled full transcript only fills an empty transcript; the
		// append-only merge would duplicate it otherwise.
		delta.TranscriptChunk = pc.Transcript
	}

	merged, changed := Merge(stored, delta, d.deps.Clock.Now())
	if !changed {
		return stored, nil
	}
	if err := d.deps.Repo.UpdateByProviderID(ctx, merged); err != nil {
		return Call{}, err
	}
	if merged.Status.IsTerminal() && !stored.Status.IsTerminal() {
		if err := d.deps.Throttle.Release(ctx, merged.To); err != nil {
			d.deps.Log.Warn("dial throttle release failed", "number", merged.To, "err", err)
		}
	}
	return merged, nil
}

// recheck is the fire-and-forget post-dispatch confirmation. Failures are
// logged and swallowed; webhooks remain the primary update path.
func (d *Dispatcher) recheck(providerCallID string) {
	ctx, cancel := context.WithTimeout(context.Background(), provider.DefaultRequestTimeout)
	defer cancel()

	if _, err := d.Refresh(ctx, providerCallID); err != nil {
		d.deps.Log.Warn("post-dispatch status check failed", "provider_call_id", providerCallID, "err", err)
	}
}

func (d *Dispatcher) resolveTarget(ctx context.Context, t DispatchTarget) (rawPhone, name, contactID string, err error) {
	if t.PhoneNumber != "" {
		return t.PhoneNumber, t.Name, t.ContactID, nil
	}
	if t.ContactID == "" {
		return "", "", "", ErrInvalidDispatch
	}
	found, err := d.deps.Contacts.FindByIDs(ctx, []string{t.ContactID})
	if err != nil {
		return "", "", "", err
	}
	if len(found) == 0 {
		return "", "", "", fmt.Errorf("%w: %s", ErrContactNotFound, t.ContactID)
	}
	c := found[0]
	return c.PhoneNumber, c.Name, c.ID, nil
}

func (d *Dispatcher) resolveScript(ctx context.Context, req DispatchRequest) (text, id string) {
	if req.ScriptText != "" {
		return req.ScriptText, req.ScriptID
	}
	if req.ScriptID == "" {
		return "", ""
	}
	s, ok, err := d.deps.Scripts.FindByID(ctx, req.ScriptID)
	if err != nil || !ok {
		d.deps.Log.Warn("script lookup failed, dispatching without script", "script_id", req.ScriptID, "err", err)
		return "", ""
	}
	return s.InstructionText(), s.ID
}

func (d *Dispatcher) providerConfigured() bool {
	return d.deps.Provider.Configured() &&
		d.deps.Defaults.AgentID != "" &&
		d.deps.Defaults.PhoneNumberID != ""
}
