package httpapi

import (
	"errors"
	"net/http"

	"voiceagent-platform/internal/calls"
	"voiceagent-platform/internal/campaigns"
	"voiceagent-platform/internal/provider"
	"voiceagent-platform/internal/reporting"

	"github.com/gin-gonic/gin"
)

// Handlers groups HTTP handlers for dependency injection.
// Keep these thin: parse/validate input, call internal services, return JSON.

type Handlers struct {
	Dispatcher *calls.Dispatcher
	Calls      calls.Repository
	Runner     *campaigns.Runner
	Reports    *reporting.Service
}

// --- Calls ---

type dispatchCallRequest struct {
	PhoneNumber string `json:"phone_number"`
	Name        string `json:"name,omitempty"`
	ContactID   string `json:"contact_id,omitempty"`

	ScriptID string `json:"script_id,omitempty"`

	FirstMessage  string                  `json:"first_message,omitempty"`
	SystemMessage string                  `json:"system_message,omitempty"`
	Instructions  string                  `json:"instructions,omitempty"`
	Voice         *provider.VoiceSettings `json:"voice,omitempty"`
}

// DispatchCall places a single outbound call.
func (h Handlers) DispatchCall(c *gin.Context) {
	if h.Dispatcher == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "dispatcher not configured"})
		return
	}
	var req dispatchCallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if req.PhoneNumber == "" && req.ContactID == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "phone_number or contact_id required"})
		return
	}

	call, err := h.Dispatcher.Dispatch(c.Request.Context(), calls.DispatchRequest{
		Target: calls.DispatchTarget{
			ContactID:   req.ContactID,
			PhoneNumber: req.PhoneNumber,
			Name:        req.Name,
		},
		Overrides: provider.AgentOverrides{
			FirstMessage:  req.FirstMessage,
			SystemMessage: req.SystemMessage,
			Instructions:  req.Instructions,
			Voice:         req.Voice,
		},
		ScriptID: req.ScriptID,
	})
	if err != nil {
		status := dispatchErrorStatus(err)
		c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, call)
}

func (h Handlers) GetCall(c *gin.Context) {
	if h.Calls == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "call store not configured"})
		return
	}
	id := c.Param("provider_call_id")
	if id == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "provider_call_id required"})
		return
	}
	call, ok, err := h.Calls.FindByProviderID(c.Request.Context(), id)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "call lookup failed"})
		return
	}
	if !ok {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "call not found"})
		return
	}
	c.JSON(http.StatusOK, call)
}

// RefreshCall re-fetches provider state for a call and merges it in.
func (h Handlers) RefreshCall(c *gin.Context) {
	if h.Dispatcher == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "dispatcher not configured"})
		return
	}
	id := c.Param("provider_call_id")
	if id == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "provider_call_id required"})
		return
	}
	call, err := h.Dispatcher.Refresh(c.Request.Context(), id)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, call)
}

// --- Campaigns ---

type runCampaignRequest struct {
	ContactIDs []string `json:"contact_ids,omitempty"`
	ScriptID   string   `json:"script_id,omitempty"`
	RetryAll   bool     `json:"retry_all,omitempty"`

	FirstMessage  string                  `json:"first_message,omitempty"`
	SystemMessage string                  `json:"system_message,omitempty"`
	Voice         *provider.VoiceSettings `json:"voice,omitempty"`
}

// RunCampaign dispatches one call per contact in a campaign batch.
func (h Handlers) RunCampaign(c *gin.Context) {
	if h.Runner == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "runner not configured"})
		return
	}
	campaignID := c.Param("campaign_id")
	if campaignID == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "campaign_id required"})
		return
	}
	var req runCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	summary, err := h.Runner.Run(c.Request.Context(), campaigns.RunRequest{
		CampaignID: campaignID,
		ContactIDs: req.ContactIDs,
		ScriptID:   req.ScriptID,
		RetryAll:   req.RetryAll,
		Overrides: provider.AgentOverrides{
			FirstMessage:  req.FirstMessage,
			SystemMessage: req.SystemMessage,
			Voice:         req.Voice,
		},
	})
	if err != nil {
		if errors.Is(err, campaigns.ErrCampaignNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "campaign not found"})
			return
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h Handlers) ListCampaignCalls(c *gin.Context) {
	if h.Calls == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "call store not configured"})
		return
	}
	campaignID := c.Param("campaign_id")
	if campaignID == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "campaign_id required"})
		return
	}
	list, err := h.Calls.ListByCampaign(c.Request.Context(), campaignID)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "call listing failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"campaign_id": campaignID, "calls": list, "count": len(list)})
}

func (h Handlers) CampaignSummary(c *gin.Context) {
	if h.Reports == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "reporting not configured"})
		return
	}
	campaignID := c.Param("campaign_id")
	if campaignID == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "campaign_id required"})
		return
	}
	summary, err := h.Reports.CampaignSummary(c.Request.Context(), campaignID)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "summary failed"})
		return
	}
	c.JSON(http.StatusOK, summary)
}

// dispatchErrorStatus maps dispatch failures onto HTTP statuses. Provider
// rejections come back as 502 so callers can tell them apart from bad input.
func dispatchErrorStatus(err error) int {
	switch {
	case errors.Is(err, calls.ErrInvalidDispatch), errors.Is(err, calls.ErrInvalidPhoneNumber):
		return http.StatusBadRequest
	case errors.Is(err, calls.ErrContactNotFound):
		return http.StatusNotFound
	case errors.Is(err, calls.ErrDialThrottled):
		return http.StatusTooManyRequests
	default:
		var apiErr *provider.APIError
		if errors.As(err, &apiErr) {
			return http.StatusBadGateway
		}
		return http.StatusInternalServerError
	}
}
