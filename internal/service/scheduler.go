package service

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// DispatchDue claims every SCHEDULED campaign whose scheduled_at has passed
// and dispatches each. Claiming happens in a single conditional update, so a
// campaign is dispatched at most once even with concurrent scheduler
// processes. Individual dispatch failures are already recorded as FAILED by
// Dispatch; they do not stop the batch.
func (s *CampaignService) DispatchDue(ctx context.Context, now time.Time) (int, error) {
	ids, err := s.Campaigns.ClaimDue(ctx, now)
	if err != nil {
		return 0, err
	}

	for _, id := range ids {
		if _, err := s.Dispatch(ctx, id); err != nil {
			s.Logger.Warn("scheduled dispatch failed",
				zap.String("campaign_id", id),
				zap.Error(err),
			)
		}
	}

	return len(ids), nil
}
