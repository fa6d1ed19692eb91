package main

import (
	"voiceagent-platform/internal/calls"
	"voiceagent-platform/internal/campaigns"
	"voiceagent-platform/internal/events"
	"voiceagent-platform/internal/httpapi"
	"voiceagent-platform/internal/reporting"

	"github.com/gin-gonic/gin"
)

type routeDeps struct {
	Webhook    *events.WebhookHandler
	Dispatcher *calls.Dispatcher
	Calls      calls.Repository
	Runner     *campaigns.Runner
	Reports    *reporting.Service
}

// registerRoutes wires HTTP routes to handlers.
// Keep this file free of business logic. Handlers should delegate to internal modules.
func registerRoutes(r *gin.Engine, deps routeDeps) {
	// public
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Provider webhooks (public). The handler always answers 200; see
	// events.WebhookHandler for the rationale.
	r.POST("/webhooks/voice/events", deps.Webhook.Handle)

	v1 := r.Group("/v1")
	{
		h := httpapi.Handlers{
			Dispatcher: deps.Dispatcher,
			Calls:      deps.Calls,
			Runner:     deps.Runner,
			Reports:    deps.Reports,
		}

		// CALLS routes
		v1.POST("/calls", h.DispatchCall)
		v1.GET("/calls/:provider_call_id", h.GetCall)
		v1.POST("/calls/:provider_call_id/refresh", h.RefreshCall)

		// CAMPAIGNS routes
		v1.POST("/campaigns/:campaign_id/run", h.RunCampaign)
		v1.GET("/campaigns/:campaign_id/calls", h.ListCampaignCalls)
		v1.GET("/campaigns/:campaign_id/summary", h.CampaignSummary)
	}
}
