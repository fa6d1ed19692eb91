package provider

// AgentDefaults is the environment-level outbound configuration.
// Values come from config; see internal/config.
type AgentDefaults struct {
	AgentID       string
	PhoneNumberID string

	FirstMessage string
	Voice        VoiceSettings

	ModelProvider    string
	ModelName        string
	ModelTemperature float64
}

// fallbackGreeting is used when neither the environment nor the request
// supplies a first message.
const fallbackGreeting = "Hello! This is an automated call. How are you today?"

// ResolveInput bundles everything needed to build one outbound call request.
type ResolveInput struct {
	Defaults  AgentDefaults
	Overrides AgentOverrides

	// ScriptText, when non-empty, becomes the transient agent's system
	// instructions. It is never spoken aloud.
	ScriptText string

	CustomerNumber string
	CustomerName   string
}

// ResolveOutboundRequest merges environment defaults with per-call overrides
// into a provider call request.
//
// Merge order: defaults first, request overrides shallow-override on top. The
// voice object is replaced wholesale when the overrides carry one, never
// deep-merged. A script forces the transient-agent shape; otherwise the stored
// agent is referenced with a sanitized overrides object.
func ResolveOutboundRequest(in ResolveInput) OutboundRequest {
	merged := mergeOverrides(in.Defaults, in.Overrides)

	req := OutboundRequest{
		Type:          RequestTypeOutbound,
		PhoneNumberID: in.Defaults.PhoneNumberID,
		Customer: Customer{
			Number: in.CustomerNumber,
			Name:   in.CustomerName,
		},
	}

	if in.ScriptText != "" {
		req.Agent = &TransientAgent{
			Model: ModelSettings{
				Provider:    in.Defaults.ModelProvider,
				Model:       in.Defaults.ModelName,
				Temperature: in.Defaults.ModelTemperature,
				Messages: []ModelMessage{
					{Role: "system", Content: in.ScriptText},
				},
			},
			Voice:        merged.Voice,
			FirstMessage: merged.FirstMessage,
		}
		return req
	}

	req.AgentID = in.Defaults.AgentID
	if s := sanitizeOverrides(merged); s != nil {
		req.Overrides = s
	}
	return req
}

func mergeOverrides(def AgentDefaults, ov AgentOverrides) AgentOverrides {
	out := AgentOverrides{
		FirstMessage:  def.FirstMessage,
		SystemMessage: ov.SystemMessage,
		Instructions:  ov.Instructions,
	}
	if def.Voice != (VoiceSettings{}) {
		v := def.Voice
		out.Voice = &v
	}
	if ov.FirstMessage != "" {
		out.FirstMessage = ov.FirstMessage
	}
	if ov.Voice != nil {
		v := *ov.Voice
		out.Voice = &v
	}
	if out.FirstMessage == "" {
		out.FirstMessage = fallbackGreeting
	}
	return out
}

// sanitizeOverrides strips the instruction keys the provider rejects on
// stored-agent requests. Returns nil when nothing survives, so the request
// omits the overrides object entirely.
func sanitizeOverrides(ov AgentOverrides) *AgentOverrides {
	out := AgentOverrides{
		FirstMessage: ov.FirstMessage,
		Voice:        ov.Voice,
	}
	if out.FirstMessage == "" && out.Voice == nil {
		return nil
	}
	return &out
}
