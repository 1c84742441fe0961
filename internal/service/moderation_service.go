package service

import (
	"context"

	"nexora-campus-be/internal/constant"
	"nexora-campus-be/internal/dto"
	"nexora-campus-be/internal/pkg/logger"
	"nexora-campus-be/pkg/metrics"
	"nexora-campus-be/pkg/moderation"
)

type IModerationService interface {
	Check(ctx context.Context, text string) moderation.Result
	CheckRequest(ctx context.Context, req *dto.ModerationCheckRequest) *dto.ModerationCheckResponse
}

type moderationService struct {
	gate   *moderation.Gate
	logger logger.ILogger
}

func NewModerationService(gate *moderation.Gate, logger logger.ILogger) IModerationService {
	return &moderationService{gate: gate, logger: logger}
}

// Check never fails; classifier outages come back as a degraded result
// shaped by the gate's fail policy.
func (s *moderationService) Check(ctx context.Context, text string) moderation.Result {
	res := s.gate.Check(ctx, text)

	outcome := "allowed"
	switch {
	case res.Degraded:
		outcome = "degraded"
		s.logger.Warn(constant.ModuleModeration, "Moderation degraded", map[string]interface{}{
			"flagged": res.Flagged,
		})
	case res.Flagged:
		outcome = "flagged"
		s.logger.Warn(constant.ModuleModeration, "Content flagged", map[string]interface{}{
			"reason": res.Reason,
		})
	}
	metrics.ModerationChecks.WithLabelValues(outcome).Inc()
	return res
}

func (s *moderationService) CheckRequest(ctx context.Context, req *dto.ModerationCheckRequest) *dto.ModerationCheckResponse {
	res := s.Check(ctx, req.Content)

	out := &dto.ModerationCheckResponse{
		Flagged:        res.Flagged,
		Categories:     make(map[string]bool, len(moderation.Categories)),
		CategoryScores: make(map[string]float64, len(moderation.Categories)),
		Degraded:       res.Degraded,
	}
	for _, c := range moderation.Categories {
		out.Categories[string(c)] = res.Categories[c]
		out.CategoryScores[string(c)] = res.CategoryScores[c]
	}
	if res.Reason != "" {
		reason := res.Reason
		out.Reason = &reason
	}
	return out
}
