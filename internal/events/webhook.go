package events

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"voiceagent-platform/internal/calls"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// WebhookHandler ingests asynchronous provider events and merges them into
// call state.
//
// The endpoint always answers 200, regardless of processing outcome: a
// non-2xx response would trigger upstream retry storms. Errors are logged,
// never surfaced to the provider.
type WebhookHandler struct {
	Calls calls.Repository
	Trace LogRepository

	// Throttle is optional; when set, the dial slot is released as soon as
	// a call reaches a terminal status.
	Throttle *calls.DialThrottle

	Log *slog.Logger

	// clock is injectable for deterministic tests.
	Clock func() time.Time
}

func (h *WebhookHandler) log() *slog.Logger {
	if h.Log != nil {
		return h.Log
	}
	return slog.Default()
}

func (h *WebhookHandler) now() time.Time {
	if h.Clock != nil {
		return h.Clock()
	}
	return time.Now()
}

// Handle is the inbound webhook endpoint.
func (h *WebhookHandler) Handle(c *gin.Context) {
	// Acknowledge no matter what happens below.
	defer c.JSON(http.StatusOK, gin.H{"received": true})

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.log().Warn("webhook body read failed", "err", err)
		return
	}

	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		h.log().Warn("webhook payload not json", "err", err)
		return
	}

	ev, routable := Normalize(raw)
	h.trace(c, ev, routable, body)

	if !routable {
		h.log().Warn("webhook event unroutable, dropped", "type", ev.Type)
		return
	}

	if ev.Status == "" && ev.TranscriptChunk == "" && ev.EndReason == "" {
		// Nothing to merge (function-call, hang, speech-update and such).
		return
	}

	ctx := c.Request.Context()
	stored, ok, err := h.Calls.FindByProviderID(ctx, ev.ProviderCallID)
	if err != nil {
		h.log().Error("webhook call lookup failed", "provider_call_id", ev.ProviderCallID, "err", err)
		return
	}
	if !ok {
		h.log().Warn("webhook event for unknown call, dropped", "provider_call_id", ev.ProviderCallID, "type", ev.Type)
		return
	}

	merged, changed := calls.Merge(stored, calls.Delta{
		Status:          ev.Status,
		TranscriptChunk: ev.TranscriptChunk,
		EndReason:       ev.EndReason,
		Raw:             string(body),
	}, h.now())
	if !changed {
		return
	}

	if err := h.Calls.UpdateByProviderID(ctx, merged); err != nil {
		h.log().Error("webhook call update failed", "provider_call_id", ev.ProviderCallID, "err", err)
		return
	}

	if merged.Status.IsTerminal() && !stored.Status.IsTerminal() {
		if err := h.Throttle.Release(ctx, merged.To); err != nil {
			h.log().Warn("dial throttle release failed", "number", merged.To, "err", err)
		}
	}
}

// trace records the received event, best-effort.
func (h *WebhookHandler) trace(c *gin.Context, ev Event, routable bool, body []byte) {
	if h.Trace == nil {
		return
	}
	err := h.Trace.Append(c.Request.Context(), Record{
		ID:             uuid.NewString(),
		Type:           ev.Type,
		ProviderCallID: ev.ProviderCallID,
		Routable:       routable,
		Raw:            string(body),
		ReceivedAt:     h.now().UTC(),
	})
	if err != nil {
		h.log().Warn("event trace append failed", "err", err)
	}
}
