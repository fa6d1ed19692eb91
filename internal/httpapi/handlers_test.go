package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"voiceagent-platform/internal/calls"
	"voiceagent-platform/internal/campaigns"
	"voiceagent-platform/internal/contacts"
	"voiceagent-platform/internal/provider"
	"voiceagent-platform/internal/reporting"
	"voiceagent-platform/internal/scripts"

	"github.com/gin-gonic/gin"
)

func newTestRouter(t *testing.T) (*gin.Engine, *calls.MemoryRepo, *campaigns.MemoryRepo) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	callRepo := calls.NewMemoryRepo()
	contactRepo := contacts.NewMemoryRepo(
		contacts.Contact{ID: "c1", Name: "Jane", PhoneNumber: "3001234567", Active: true},
	)
	scriptRepo := scripts.NewMemoryRepo()
	campaignRepo := campaigns.NewMemoryRepo(
		campaigns.Campaign{ID: "camp1", Name: "Pilot", Status: campaigns.CampaignStatusDraft, ContactIDs: []string{"c1"}},
	)

	// Unconfigured provider keeps dispatch on the mock path.
	dispatcher := calls.NewDispatcher(calls.DispatcherDeps{
		Repo:               callRepo,
		Contacts:           contactRepo,
		Scripts:            scriptRepo,
		Provider:           provider.NewClient("http://unused.invalid", ""),
		DefaultCountryCode: "92",
	})
	runner := campaigns.NewRunner(campaigns.RunnerDeps{
		Campaigns:          campaignRepo,
		Contacts:           contactRepo,
		Scripts:            scriptRepo,
		Calls:              callRepo,
		Dispatcher:         dispatcher,
		DefaultCountryCode: "92",
	})

	h := Handlers{
		Dispatcher: dispatcher,
		Calls:      callRepo,
		Runner:     runner,
		Reports:    reporting.NewService(callRepo),
	}

	r := gin.New()
	v1 := r.Group("/v1")
	v1.POST("/calls", h.DispatchCall)
	v1.GET("/calls/:provider_call_id", h.GetCall)
	v1.POST("/campaigns/:campaign_id/run", h.RunCampaign)
	v1.GET("/campaigns/:campaign_id/calls", h.ListCampaignCalls)
	v1.GET("/campaigns/:campaign_id/summary", h.CampaignSummary)
	return r, callRepo, campaignRepo
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestDispatchCallAndFetch(t *testing.T) {
	r, _, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/v1/calls", `{"phone_number":"03001234567","name":"Ali"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("dispatch status %d, body %s", w.Code, w.Body.String())
	}
	var created calls.Call
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.To != "+923001234567" {
		t.Fatalf("unexpected normalized number %q", created.To)
	}
	if !strings.HasPrefix(created.ProviderCallID, "mock_") {
		t.Fatalf("expected mock provider id, got %q", created.ProviderCallID)
	}

	w = doJSON(t, r, http.MethodGet, "/v1/calls/"+created.ProviderCallID, "")
	if w.Code != http.StatusOK {
		t.Fatalf("get status %d", w.Code)
	}
}

func TestDispatchCallBadInput(t *testing.T) {
	r, _, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/v1/calls", `{}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty target, got %d", w.Code)
	}

	w = doJSON(t, r, http.MethodPost, "/v1/calls", `{"phone_number":"abc"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid number, got %d", w.Code)
	}

	w = doJSON(t, r, http.MethodPost, "/v1/calls", `{"contact_id":"missing"}`)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown contact, got %d", w.Code)
	}
}

func TestGetCallNotFound(t *testing.T) {
	r, _, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodGet, "/v1/calls/nope", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestRunCampaignAndSummary(t *testing.T) {
	r, callRepo, campaignRepo := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/v1/campaigns/camp1/run", `{}`)
	if w.Code != http.StatusOK {
		t.Fatalf("run status %d, body %s", w.Code, w.Body.String())
	}
	var summary campaigns.RunSummary
	if err := json.Unmarshal(w.Body.Bytes(), &summary); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if summary.Queued != 1 {
		t.Fatalf("expected 1 queued, got %+v", summary)
	}

	stored, ok, err := campaignRepo.FindByID(context.Background(), "camp1")
	if err != nil || !ok {
		t.Fatalf("campaign lookup: %v", err)
	}
	if stored.Status != campaigns.CampaignStatusRunning {
		t.Fatalf("expected running campaign, got %q", stored.Status)
	}

	list, err := callRepo.ListByCampaign(context.Background(), "camp1")
	if err != nil || len(list) != 1 {
		t.Fatalf("expected 1 campaign call, got %d (%v)", len(list), err)
	}

	w = doJSON(t, r, http.MethodGet, "/v1/campaigns/camp1/calls", "")
	if w.Code != http.StatusOK {
		t.Fatalf("list status %d", w.Code)
	}

	w = doJSON(t, r, http.MethodGet, "/v1/campaigns/camp1/summary", "")
	if w.Code != http.StatusOK {
		t.Fatalf("summary status %d", w.Code)
	}
	var rep reporting.CampaignSummary
	if err := json.Unmarshal(w.Body.Bytes(), &rep); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rep.TotalCalls != 1 || rep.InitiatedCalls != 1 {
		t.Fatalf("unexpected summary %+v", rep)
	}
}

func TestRunCampaignNotFound(t *testing.T) {
	r, _, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/v1/campaigns/ghost/run", `{}`)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestDispatchErrorStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{calls.ErrInvalidDispatch, http.StatusBadRequest},
		{calls.ErrInvalidPhoneNumber, http.StatusBadRequest},
		{calls.ErrContactNotFound, http.StatusNotFound},
		{calls.ErrDialThrottled, http.StatusTooManyRequests},
		{&provider.APIError{StatusCode: 402}, http.StatusBadGateway},
	}
	for _, tc := range cases {
		if got := dispatchErrorStatus(tc.err); got != tc.want {
			t.Fatalf("status for %v: got %d, want %d", tc.err, got, tc.want)
		}
	}
}
