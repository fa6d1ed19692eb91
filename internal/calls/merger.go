package calls

import (
	"encoding/json"
	"time"

	"voiceagent-platform/internal/provider"
)

// Delta is a normalized state change derived from a provider event or a
// provider poll. Zero-valued fields mean "no update".
type Delta struct {
	Status          CallStatus
	TranscriptChunk string

	EndReason       string
	DurationSeconds int
	Cost            float64
	RecordingURL    string
	StartedAt       *time.Time
	EndedAt         *time.Time

	// Raw is the opaque source payload, stored for diagnostics when the
	// delta changes anything.
	Raw string
}

// Merge applies a delta to a stored call and returns the updated record plus
// whether anything changed. It is a pure computation; persisting the result is
// the caller's job.
//
// Semantics:
// - Status is last-write-wins, except a terminal status is never replaced by
//   a non-terminal one (stale out-of-order delivery).
// - Transcript is append-only with a newline separator and never
//   deduplicated; redelivery can produce duplicate fragments, which the
//   idempotence tests rely on.
func Merge(existing Call, d Delta, now time.Time) (Call, bool) {
	out := existing
	changed := false

	if d.Status != "" && d.Status != existing.Status {
		if !(existing.Status.IsTerminal() && !d.Status.IsTerminal()) {
			out.Status = d.Status
			changed = true
		}
	}

	if d.TranscriptChunk != "" {
		if out.Transcript == "" {
			out.Transcript = d.TranscriptChunk
		} else {
			out.Transcript = out.Transcript + "\n" + d.TranscriptChunk
		}
		changed = true
	}

	if d.EndReason != "" && d.EndReason != out.EndReason {
		out.EndReason = d.EndReason
		changed = true
	}
	if d.DurationSeconds > 0 && d.DurationSeconds != out.DurationSeconds {
		out.DurationSeconds = d.DurationSeconds
		changed = true
	}
	if d.Cost > 0 && d.Cost != out.Cost {
		out.Cost = d.Cost
		changed = true
	}
	if d.RecordingURL != "" && d.RecordingURL != out.RecordingURL {
		out.RecordingURL = d.RecordingURL
		changed = true
	}
	if d.StartedAt != nil && out.StartedAt == nil {
		out.StartedAt = d.StartedAt
		changed = true
	}
	if d.EndedAt != nil && out.EndedAt == nil {
		out.EndedAt = d.EndedAt
		changed = true
	}

	if changed {
		if d.Raw != "" {
			out.RawProviderResponse = d.Raw
		}
		out.UpdatedAt = now.UTC()
	}
	return out, changed
}

// providerStatus maps the provider's status vocabulary onto ours.
var providerStatus = map[string]CallStatus{
	"initiated":   CallStatusInitiated,
	"queued":      CallStatusQueued,
	"ringing":     CallStatusRinging,
	"in-progress": CallStatusInProgress,
	"in_progress": CallStatusInProgress,
	"forwarding":  CallStatusInProgress,
	"ended":       CallStatusCompleted,
	"completed":   CallStatusCompleted,
	"failed":      CallStatusFailed,
	"no-answer":   CallStatusNoAnswer,
	"no_answer":   CallStatusNoAnswer,
	"busy":        CallStatusBusy,
	"canceled":    CallStatusCanceled,
}

// StatusFromProvider converts a provider status string. Unknown values map to
// "" (no status update) rather than an error; the vocabulary is open.
func StatusFromProvider(s string) CallStatus {
	return providerStatus[s]
}

// DeltaFromProviderCall converts a polled provider call record into a delta
// for the same merge path webhooks use.
func DeltaFromProviderCall(pc provider.Call) Delta {
	raw, _ := json.Marshal(pc)
	d := Delta{
		Status:          StatusFromProvider(pc.Status),
		TranscriptChunk: "",
		EndReason:       pc.EndedReason,
		Cost:            pc.Cost,
		RecordingURL:    pc.RecordingURL,
		StartedAt:       pc.StartedAt,
		EndedAt:         pc.EndedAt,
		Raw:             string(raw),
	}
	if pc.StartedAt != nil && pc.EndedAt != nil {
		d.DurationSeconds = int(pc.EndedAt.Sub(*pc.StartedAt) / time.Second)
	}
	return d
}
