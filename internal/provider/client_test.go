package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClientRequiresCredential(t *testing.T) {
	c := NewClient("http://example.invalid", "")
	_, err := c.GetCall(context.Background(), "abc")
	if !errors.Is(err, ErrMissingCredential) {
		t.Fatalf("expected ErrMissingCredential, got %v", err)
	}
}

func TestCreateOutboundCall(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/call" {
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer key_1" {
			t.Fatalf("missing bearer credential, got %q", got)
		}
		var req OutboundRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("bad request body: %v", err)
		}
		if req.Type != RequestTypeOutbound {
			t.Fatalf("expected outbound type, got %q", req.Type)
		}
		_ = json.NewEncoder(w).Encode(Call{ID: "call_1", Status: "queued"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "key_1")
	got, err := c.CreateOutboundCall(context.Background(), OutboundRequest{
		Type:          RequestTypeOutbound,
		PhoneNumberID: "num_1",
		Customer:      Customer{Number: "+923001234567"},
		AgentID:       "agent_1",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got.ID != "call_1" || got.Status != "queued" {
		t.Fatalf("unexpected call: %+v", got)
	}
}

func TestClientSurfacesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"agentOverrides.systemMessage not allowed"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "key_1")
	_, err := c.CreateOutboundCall(context.Background(), OutboundRequest{})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusBadRequest || apiErr.Body == "" {
		t.Fatalf("expected structured error, got %+v", apiErr)
	}
}

func TestListPhoneNumbers(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/phone-number" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode([]PhoneNumber{{ID: "num_1", Number: "+15550001111"}})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "key_1")
	nums, err := c.ListPhoneNumbers(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(nums) != 1 || nums[0].ID != "num_1" {
		t.Fatalf("unexpected numbers: %+v", nums)
	}
}
