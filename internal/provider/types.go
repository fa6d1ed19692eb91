package provider

import "time"

// Request/response shapes for the voice-AI provider API.
//
// Rules:
// - No provider HTTP calls outside this package.
// - Keep raw provider payloads available to callers for diagnostics; business
//   models store them as opaque JSON, never as parsed fields.

// VoiceSettings selects and tunes the synthesized voice.
type VoiceSettings struct {
	Provider        string  `json:"provider,omitempty"`
	VoiceID         string  `json:"voiceId,omitempty"`
	Stability       float64 `json:"stability,omitempty"`
	SimilarityBoost float64 `json:"similarityBoost,omitempty"`
	Style           float64 `json:"style,omitempty"`
	UseSpeakerBoost bool    `json:"useSpeakerBoost,omitempty"`
}

// ModelMessage is one instruction message for a transient agent's model.
type ModelMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ModelSettings configures the conversation model of a transient agent.
type ModelSettings struct {
	Provider    string         `json:"provider"`
	Model       string         `json:"model"`
	Temperature float64        `json:"temperature,omitempty"`
	Messages    []ModelMessage `json:"messages,omitempty"`
}

// TransientAgent is an inline agent definition supplied with the call request
// instead of referencing a pre-registered agent.
type TransientAgent struct {
	Model        ModelSettings  `json:"model"`
	Voice        *VoiceSettings `json:"voice,omitempty"`
	FirstMessage string         `json:"firstMessage,omitempty"`
}

// AgentOverrides carries the per-call configuration a caller may layer on top
// of the environment defaults.
//
// SystemMessage/Instructions are only meaningful for transient agents; the
// provider rejects them on stored-agent requests, so they are stripped before
// being attached there (see sanitize in overrides.go).
type AgentOverrides struct {
	FirstMessage  string         `json:"firstMessage,omitempty"`
	Voice         *VoiceSettings `json:"voice,omitempty"`
	SystemMessage string         `json:"systemMessage,omitempty"`
	Instructions  string         `json:"instructions,omitempty"`
}

// Customer identifies the dialed party.
type Customer struct {
	Number string `json:"number"`
	Name   string `json:"name,omitempty"`
}

// OutboundRequest is the create-call request body.
//
// Exactly one of Agent or AgentID is set: a transient agent when the call
// carries script text, a stored agent reference otherwise.
type OutboundRequest struct {
	Type          string          `json:"type"`
	PhoneNumberID string          `json:"phoneNumberId"`
	Customer      Customer        `json:"customer"`
	AgentID       string          `json:"agentId,omitempty"`
	Agent         *TransientAgent `json:"agent,omitempty"`
	Overrides     *AgentOverrides `json:"agentOverrides,omitempty"`
}

// RequestTypeOutbound tags an outbound phone call request.
const RequestTypeOutbound = "outboundPhoneCall"

// Call is the provider's view of a call.
type Call struct {
	ID           string     `json:"id"`
	Status       string     `json:"status"`
	EndedReason  string     `json:"endedReason,omitempty"`
	Transcript   string     `json:"transcript,omitempty"`
	RecordingURL string     `json:"recordingUrl,omitempty"`
	Cost         float64    `json:"cost,omitempty"`
	StartedAt    *time.Time `json:"startedAt,omitempty"`
	EndedAt      *time.Time `json:"endedAt,omitempty"`
}

// Agent is the provider's stored agent configuration.
type Agent struct {
	ID           string         `json:"id"`
	Name         string         `json:"name,omitempty"`
	FirstMessage string         `json:"firstMessage,omitempty"`
	Voice        *VoiceSettings `json:"voice,omitempty"`
}

// PhoneNumber is a provider-registered outbound number.
type PhoneNumber struct {
	ID     string `json:"id"`
	Number string `json:"number,omitempty"`
	Name   string `json:"name,omitempty"`
}
