package service

import (
	"context"
	"fmt"
	"log"

	"github.com/interviewlab/coach/internal/domain"
	"github.com/interviewlab/coach/internal/extract"
	"github.com/interviewlab/coach/internal/prompts"
)

// neutralRadarScore is used for any dimension the analyst could not score.
const neutralRadarScore = 60

// Progress assesses a user's ability radar and trend from their finished
// interviews and study log. When the analyst degrades, a neutral radar is
// returned so the chart still renders.
func (s *Service) Progress(ctx context.Context, userID string) (*domain.ProgressReport, error) {
	if userID == "" {
		return nil, fmt.Errorf("user id is required")
	}

	sessions, err := s.store.ListScoredSessions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session history: %w", err)
	}
	stats, err := s.store.StudyStats(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load study stats: %w", err)
	}

	raw, err := s.generate(ctx, prompts.Progress(sessions, stats))
	if err != nil {
		log.Printf("WARN: progress generation unavailable, using neutral radar: %v", err)
		return neutralProgress(), nil
	}
	outcome := extract.Extract(raw, progressSchema)
	if !outcome.OK {
		log.Printf("WARN: progress payload unreadable (%s), using neutral radar", outcome.Reason)
		return neutralProgress(), nil
	}

	radarRaw, _ := outcome.Values["radar"].(map[string]any)
	radar := make(map[string]int, len(prompts.RadarDimensions))
	for _, dim := range prompts.RadarDimensions {
		score := neutralRadarScore
		if v, ok := radarRaw[dim].(float64); ok {
			score = clampScore(int(v))
		}
		radar[dim] = score
	}

	return &domain.ProgressReport{
		Radar:         radar,
		TrendAnalysis: outcome.String("trend_analysis"),
		KeySuggestion: outcome.String("key_suggestion"),
	}, nil
}

func neutralProgress() *domain.ProgressReport {
	radar := make(map[string]int, len(prompts.RadarDimensions))
	for _, dim := range prompts.RadarDimensions {
		radar[dim] = neutralRadarScore
	}
	return &domain.ProgressReport{
		Radar:         radar,
		TrendAnalysis: "Not enough signal to read a trend yet.",
		KeySuggestion: "Finish a few more mock interviews to sharpen this picture.",
	}
}
