package campaigns

import (
	"context"
	"testing"
	"time"

	"voiceagent-platform/internal/calls"
	"voiceagent-platform/internal/contacts"
	"voiceagent-platform/internal/provider"
	"voiceagent-platform/internal/schedule"
	"voiceagent-platform/internal/scripts"
)

type runnerFixture struct {
	runner    *Runner
	campaigns *MemoryRepo
	callRepo  *calls.MemoryRepo
}

func newRunnerFixture(t *testing.T, batch ...contacts.Contact) runnerFixture {
	t.Helper()

	contactRepo := contacts.NewMemoryRepo(batch...)
	scriptRepo := scripts.NewMemoryRepo(
		scripts.Script{ID: "s1", SystemMessage: "Follow the reminder script."},
	)
	callRepo := calls.NewMemoryRepo()
	campaignRepo := NewMemoryRepo(Campaign{
		ID:     "camp1",
		Name:   "June reminders",
		Status: CampaignStatusDraft,
	})

	dispatcher := calls.NewDispatcher(calls.DispatcherDeps{
		Repo:               callRepo,
		Contacts:           contactRepo,
		Scripts:            scriptRepo,
		Provider:           provider.NewClient("", ""), // mock dispatch path
		DefaultCountryCode: "92",
		Clock:              schedule.NewManual(time.Time{}),
	})

	return runnerFixture{
		runner: NewRunner(RunnerDeps{
			Campaigns:          campaignRepo,
			Contacts:           contactRepo,
			Scripts:            scriptRepo,
			Calls:              callRepo,
			Dispatcher:         dispatcher,
			DefaultCountryCode: "92",
			Clock:              func() time.Time { return time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC) },
		}),
		campaigns: campaignRepo,
		callRepo:  callRepo,
	}
}

func threeContacts() []contacts.Contact {
	return []contacts.Contact{
		{ID: "c1", Name: "Jane", PhoneNumber: "3001234567", Active: true},
		{ID: "c2", Name: "Bad", PhoneNumber: "abc", Active: true},
		{ID: "c3", Name: "Ali", PhoneNumber: "03007654321", Active: true},
	}
}

func TestRunFaultIsolation(t *testing.T) {
	f := newRunnerFixture(t, threeContacts()...)

	sum, err := f.runner.Run(context.Background(), RunRequest{
		CampaignID: "camp1",
		ContactIDs: []string{"c1", "c2", "c3"},
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(sum.Results) != 3 {
		t.Fatalf("loop must visit every contact, got %d results", len(sum.Results))
	}
	if sum.Queued != 2 || sum.Skipped != 1 || sum.Failed != 0 {
		t.Fatalf("expected 2 queued / 1 skipped, got %+v", sum)
	}
	if sum.Results[1].Outcome != OutcomeSkipped || sum.Results[1].Reason != ReasonInvalidNumber {
		t.Fatalf("contact #2 should skip with invalid_number, got %+v", sum.Results[1])
	}
	// The invalid contact does not stop #3 from being dialed.
	if sum.Results[2].Outcome != OutcomeQueued {
		t.Fatalf("contact #3 should still queue, got %+v", sum.Results[2])
	}
}

func TestRunDedup(t *testing.T) {
	f := newRunnerFixture(t, threeContacts()...)
	req := RunRequest{CampaignID: "camp1", ContactIDs: []string{"c1", "c3"}}

	first, err := f.runner.Run(context.Background(), req)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if first.Queued != 2 {
		t.Fatalf("first run should queue both, got %+v", first)
	}

	second, err := f.runner.Run(context.Background(), req)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if second.Queued != 0 || second.Skipped != 2 {
		t.Fatalf("second run should skip all as already_called, got %+v", second)
	}
	for _, res := range second.Results {
		if res.Reason != ReasonAlreadyCalled {
			t.Fatalf("expected already_called, got %+v", res)
		}
	}

	third, err := f.runner.Run(context.Background(), RunRequest{
		CampaignID: "camp1",
		ContactIDs: []string{"c1", "c3"},
		RetryAll:   true,
	})
	if err != nil {
		t.Fatalf("retry run: %v", err)
	}
	if third.Queued != 2 {
		t.Fatalf("retryAll should queue again, got %+v", third)
	}
}

func TestRunCampaignWriteBack(t *testing.T) {
	f := newRunnerFixture(t, threeContacts()...)

	_, err := f.runner.Run(context.Background(), RunRequest{
		CampaignID: "camp1",
		ContactIDs: []string{"c1"},
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	c, ok, _ := f.campaigns.FindByID(context.Background(), "camp1")
	if !ok {
		t.Fatalf("campaign missing")
	}
	if c.Status != CampaignStatusRunning {
		t.Fatalf("expected running, got %q", c.Status)
	}
	if c.StartedAt == nil || c.TotalContacts != 1 {
		t.Fatalf("expected start timestamp and total contacts, got %+v", c)
	}
}

func TestRunActiveSampleFallback(t *testing.T) {
	batch := threeContacts()
	batch[1].Active = false
	f := newRunnerFixture(t, batch...)

	// No explicit ids, campaign has no stored refs: bounded active sample.
	sum, err := f.runner.Run(context.Background(), RunRequest{CampaignID: "camp1"})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(sum.Results) != 2 {
		t.Fatalf("expected the two active contacts, got %d", len(sum.Results))
	}
}

func TestRunCampaignNotFound(t *testing.T) {
	f := newRunnerFixture(t, threeContacts()...)
	if _, err := f.runner.Run(context.Background(), RunRequest{CampaignID: "nope"}); err != ErrCampaignNotFound {
		t.Fatalf("expected ErrCampaignNotFound, got %v", err)
	}
}

func TestRunSharedScriptResolution(t *testing.T) {
	f := newRunnerFixture(t, threeContacts()...)
	f.campaigns.Put(Campaign{
		ID:               "camp2",
		Name:             "Legacy",
		Status:           CampaignStatusDraft,
		LegacyScriptText: "Old style pitch.",
	})

	sum, err := f.runner.Run(context.Background(), RunRequest{
		CampaignID: "camp2",
		ContactIDs: []string{"c1"},
	})
	if err != nil || sum.Queued != 1 {
		t.Fatalf("expected one queued, got %+v err=%v", sum, err)
	}

	stored, _ := f.callRepo.ListByCampaign(context.Background(), "camp2")
	if len(stored) != 1 {
		t.Fatalf("expected one call, got %d", len(stored))
	}
	// Legacy text has no script id to link.
	if stored[0].ScriptID != "" {
		t.Fatalf("legacy text must not set a script id, got %q", stored[0].ScriptID)
	}
}
