package reporting

import (
	"context"
	"testing"

	"voiceagent-platform/internal/calls"
)

func TestCampaignSummary(t *testing.T) {
	repo := calls.NewMemoryRepo()
	seed := []calls.Call{
		{CallID: "1", ProviderCallID: "p1", CampaignID: "camp1", Status: calls.CallStatusCompleted, DurationSeconds: 60, Cost: 0.5, RecordingURL: "https://rec/1"},
		{CallID: "2", ProviderCallID: "p2", CampaignID: "camp1", Status: calls.CallStatusCompleted, DurationSeconds: 120, Cost: 1.0},
		{CallID: "3", ProviderCallID: "p3", CampaignID: "camp1", Status: calls.CallStatusNoAnswer},
		{CallID: "4", ProviderCallID: "p4", CampaignID: "other", Status: calls.CallStatusFailed},
	}
	for _, c := range seed {
		if err := repo.Create(context.Background(), c); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	s := NewService(repo)
	sum, err := s.CampaignSummary(context.Background(), "camp1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if sum.TotalCalls != 3 || sum.CompletedCalls != 2 || sum.NoAnswerCalls != 1 {
		t.Fatalf("unexpected counts: %+v", sum)
	}
	if sum.TotalDurationSeconds != 180 || sum.AverageDurationSeconds != 60 {
		t.Fatalf("unexpected durations: %+v", sum)
	}
	if sum.RecordedCalls != 1 || sum.TotalCost != 1.5 {
		t.Fatalf("unexpected recording/cost: %+v", sum)
	}
}

func TestCampaignSummaryInvalid(t *testing.T) {
	s := NewService(calls.NewMemoryRepo())
	if _, err := s.CampaignSummary(context.Background(), ""); err != ErrInvalidRequest {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}
