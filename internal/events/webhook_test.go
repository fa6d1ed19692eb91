package events

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"voiceagent-platform/internal/calls"

	"github.com/gin-gonic/gin"
)

func newWebhookTest(t *testing.T) (*calls.MemoryRepo, *MemoryLog, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := calls.NewMemoryRepo()
	trace := NewMemoryLog()
	h := &WebhookHandler{
		Calls: repo,
		Trace: trace,
		Clock: func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) },
	}

	r := gin.New()
	r.POST("/webhooks/voice/events", h.Handle)
	return repo, trace, r
}

func post(t *testing.T, r *gin.Engine, body string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/webhooks/voice/events", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func seedCall(t *testing.T, repo *calls.MemoryRepo, providerID string) {
	t.Helper()
	err := repo.Create(context.Background(), calls.Call{
		CallID:         "internal-1",
		ProviderCallID: providerID,
		To:             "+923001234567",
		Status:         calls.CallStatusInitiated,
	})
	if err != nil {
		t.Fatalf("seed call: %v", err)
	}
}

func TestWebhookLifecycle(t *testing.T) {
	repo, _, r := newWebhookTest(t)
	seedCall(t, repo, "p1")

	if w := post(t, r, `{"type":"call-started","call":{"id":"p1"}}`); w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	c, _, _ := repo.FindByProviderID(context.Background(), "p1")
	if c.Status != calls.CallStatusInProgress {
		t.Fatalf("expected in_progress, got %q", c.Status)
	}

	post(t, r, `{"type":"call-ended","call":{"id":"p1"},"endedReason":"user_hangup"}`)
	c, _, _ = repo.FindByProviderID(context.Background(), "p1")
	if c.Status != calls.CallStatusCompleted || c.EndReason != "user_hangup" {
		t.Fatalf("expected completed/user_hangup, got %+v", c)
	}

	// Stale ringing after completion is acknowledged but not applied.
	if w := post(t, r, `{"type":"ringing","call":{"id":"p1"}}`); w.Code != http.StatusOK {
		t.Fatalf("expected 200 for stale event, got %d", w.Code)
	}
	c, _, _ = repo.FindByProviderID(context.Background(), "p1")
	if c.Status != calls.CallStatusCompleted {
		t.Fatalf("terminal status regressed to %q", c.Status)
	}
}

func TestWebhookTranscriptAppend(t *testing.T) {
	repo, _, r := newWebhookTest(t)
	seedCall(t, repo, "p1")

	post(t, r, `{"type":"transcript","call":{"id":"p1"},"transcript":"hello"}`)
	post(t, r, `{"type":"transcript","call":{"id":"p1"},"transcript":"world"}`)

	c, _, _ := repo.FindByProviderID(context.Background(), "p1")
	if c.Transcript != "hello\nworld" {
		t.Fatalf("expected appended transcript, got %q", c.Transcript)
	}
}

func TestWebhookAlwaysAcknowledges(t *testing.T) {
	repo, trace, r := newWebhookTest(t)
	seedCall(t, repo, "p1")

	cases := []string{
		`not json at all`,
		`{"type":"transcript","transcript":"no id"}`,     // unroutable
		`{"type":"ringing","call":{"id":"unknown-call"}}`, // unknown call
		`{"type":"function-call","call":{"id":"p1"}}`,     // nothing to merge
	}
	for _, body := range cases {
		if w := post(t, r, body); w.Code != http.StatusOK {
			t.Fatalf("payload %q: expected 200, got %d", body, w.Code)
		}
	}

	// The unroutable JSON event is still traced for diagnostics.
	var sawUnroutable bool
	for _, rec := range trace.Records() {
		if !rec.Routable {
			sawUnroutable = true
		}
	}
	if !sawUnroutable {
		t.Fatalf("expected an unroutable record in the event trace")
	}
}
