package reporting

import (
	"context"
	"errors"

	"voiceagent-platform/internal/calls"
)

var ErrInvalidRequest = errors.New("reporting: invalid request")

// Service aggregates call outcomes per campaign.
//
// Reads only immutable-ish call records; no provider calls, no writes.
type Service struct {
	repo calls.Repository
}

func NewService(repo calls.Repository) *Service { return &Service{repo: repo} }

// CampaignSummary is the aggregate outcome of one campaign's calls.
type CampaignSummary struct {
	CampaignID string `json:"campaign_id"`

	TotalCalls      int `json:"total_calls"`
	InitiatedCalls  int `json:"initiated_calls"`
	InProgressCalls int `json:"in_progress_calls"`
	CompletedCalls  int `json:"completed_calls"`
	FailedCalls     int `json:"failed_calls"`
	NoAnswerCalls   int `json:"no_answer_calls"`
	BusyCalls       int `json:"busy_calls"`
	CanceledCalls   int `json:"canceled_calls"`

	RecordedCalls          int     `json:"recorded_calls"`
	TotalDurationSeconds   int     `json:"total_duration_seconds"`
	AverageDurationSeconds int     `json:"average_duration_seconds"`
	TotalCost              float64 `json:"total_cost"`
}

func (s *Service) CampaignSummary(ctx context.Context, campaignID string) (CampaignSummary, error) {
	if campaignID == "" {
		return CampaignSummary{}, ErrInvalidRequest
	}
	if s.repo == nil {
		return CampaignSummary{}, errors.New("reporting: repository not configured")
	}

	rows, err := s.repo.ListByCampaign(ctx, campaignID)
	if err != nil {
		return CampaignSummary{}, err
	}

	out := CampaignSummary{CampaignID: campaignID}
	for _, c := range rows {
		out.TotalCalls++
		out.TotalDurationSeconds += c.DurationSeconds
		out.TotalCost += c.Cost
		if c.RecordingURL != "" {
			out.RecordedCalls++
		}
		switch c.Status {
		case calls.CallStatusInitiated:
			out.InitiatedCalls++
		case calls.CallStatusInProgress:
			out.InProgressCalls++
		case calls.CallStatusCompleted:
			out.CompletedCalls++
		case calls.CallStatusFailed:
			out.FailedCalls++
		case calls.CallStatusNoAnswer:
			out.NoAnswerCalls++
		case calls.CallStatusBusy:
			out.BusyCalls++
		case calls.CallStatusCanceled:
			out.CanceledCalls++
		case calls.CallStatusRinging, calls.CallStatusQueued:
			// not counted separately
		}
	}
	if out.TotalCalls > 0 {
		out.AverageDurationSeconds = out.TotalDurationSeconds / out.TotalCalls
	}
	return out, nil
}
