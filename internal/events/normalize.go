package events

import (
	"strings"

	"voiceagent-platform/internal/calls"
)

// Canonical event types. The vocabulary is open: unrecognized provider types
// pass through unchanged after casing/hyphenation, they are not an error.
const (
	TypeCallStarted  = "call-started"
	TypeRinging      = "ringing"
	TypeCallEnded    = "call-ended"
	TypeInProgress   = "in-progress"
	TypeQueued       = "queued"
	TypeTranscript   = "transcript"
	TypeMessage      = "message"
	TypeFunctionCall = "function-call"
	TypeHang         = "hang"
	TypeSpeechUpdate = "speech-update"
)

// typeAliases folds the provider's drifting event-type spellings into the
// canonical vocabulary.
var typeAliases = map[string]string{
	"call-start":         TypeCallStarted,
	"started":            TypeCallStarted,
	"call-begin":         TypeCallStarted,
	"call-end":           TypeCallEnded,
	"ended":              TypeCallEnded,
	"call-completed":     TypeCallEnded,
	"end-of-call-report": TypeCallEnded,
	"transcript-update":  TypeTranscript,
	"transcription":      TypeTranscript,
	"tool-calls":         TypeFunctionCall,
	"function-calls":     TypeFunctionCall,
	"hangup":             TypeHang,
}

// derivedStatus maps canonical event types to call status updates.
var derivedStatus = map[string]calls.CallStatus{
	TypeCallStarted: calls.CallStatusInProgress,
	TypeCallEnded:   calls.CallStatusCompleted,
	TypeRinging:     calls.CallStatusRinging,
	TypeQueued:      calls.CallStatusQueued,
	TypeInProgress:  calls.CallStatusInProgress,
}

// Event is a provider webhook payload normalized into a closed, tagged form.
// Downstream code switches on Type and reads the derived fields; nothing
// outside this file probes the raw payload.
type Event struct {
	Type           string
	ProviderCallID string

	// Status is the derived status update; "" means none.
	Status calls.CallStatus

	// TranscriptChunk is the derived transcript delta; "" means none.
	TranscriptChunk string

	EndReason string
}

// Normalize converts a decoded webhook body into an Event.
//
// Returns ok=false when no provider call id could be extracted; such events
// cannot be routed and must be dropped (logged, never fatal).
func Normalize(raw map[string]any) (Event, bool) {
	e := Event{
		Type:           CanonicalType(stringField(raw, "type")),
		ProviderCallID: extractCallID(raw),
		EndReason:      firstString(raw, "endedReason", "ended_reason", "endReason"),
	}

	if s, ok := derivedStatus[e.Type]; ok {
		e.Status = s
	}
	// An explicit top-level status always overrides the derived value.
	if s := calls.StatusFromProvider(stringField(raw, "status")); s != "" {
		e.Status = s
	}

	e.TranscriptChunk = extractTranscript(raw, e.Type)

	if e.ProviderCallID == "" {
		return e, false
	}
	return e, true
}

// CanonicalType lower-cases and hyphenates a raw event type, then folds known
// aliases into the fixed vocabulary.
func CanonicalType(t string) string {
	t = strings.ToLower(strings.TrimSpace(t))
	t = strings.NewReplacer("_", "-", ".", "-", " ", "-").Replace(t)
	if mapped, ok := typeAliases[t]; ok {
		return mapped
	}
	return t
}

// extractCallID tries, in order: nested call id, flat id-like fields, nested
// data id. First present wins.
func extractCallID(raw map[string]any) string {
	if call, ok := raw["call"].(map[string]any); ok {
		if id := stringField(call, "id"); id != "" {
			return id
		}
	}
	if id := firstString(raw, "callId", "call_id", "id", "providerCallId", "provider_call_id"); id != "" {
		return id
	}
	if data, ok := raw["data"].(map[string]any); ok {
		if id := stringField(data, "id"); id != "" {
			return id
		}
	}
	return ""
}

// extractTranscript derives the transcript delta for this event.
func extractTranscript(raw map[string]any, canonicalType string) string {
	switch canonicalType {
	case TypeTranscript:
		if s := stringField(raw, "transcript"); s != "" {
			return s
		}
	case TypeMessage:
		if s := messageText(raw["message"]); s != "" {
			return s
		}
	}
	// Known alternate field names, first non-empty string wins.
	if s := firstString(raw, "delta", "final", "utterance"); s != "" {
		return s
	}
	if words, ok := raw["words"].([]any); ok {
		return joinStrings(words, " ")
	}
	return ""
}

// messageText handles both a bare string message and a structured message
// with content text or a content fragment list.
func messageText(v any) string {
	switch m := v.(type) {
	case string:
		return m
	case map[string]any:
		if s := firstString(m, "text", "content"); s != "" {
			return s
		}
		if parts, ok := m["content"].([]any); ok {
			return joinStrings(parts, "\n")
		}
	}
	return ""
}

func joinStrings(parts []any, sep string) string {
	var out []string
	for _, p := range parts {
		switch t := p.(type) {
		case string:
			if t != "" {
				out = append(out, t)
			}
		case map[string]any:
			if s := firstString(t, "text", "word"); s != "" {
				out = append(out, s)
			}
		}
	}
	return strings.Join(out, sep)
}

func stringField(m map[string]any, key string) string {
	if m == nil {
		return ""
	}
	s, _ := m[key].(string)
	return s
}

func firstString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s := stringField(m, k); s != "" {
			return s
		}
	}
	return ""
}
