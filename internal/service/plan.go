package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"github.com/interviewlab/coach/internal/domain"
	"github.com/interviewlab/coach/internal/extract"
	"github.com/interviewlab/coach/internal/prompts"
	"github.com/interviewlab/coach/internal/store"
)

// DailyPlan returns today's study plan for a user, generating one on the
// first request of the day. The generator sees the weaknesses recent mock
// interviews exposed, so the plan targets them; when generation degrades the
// user still gets a usable canned plan.
func (s *Service) DailyPlan(ctx context.Context, userID string, req domain.DailyPlanRequest) (*domain.StudyPlan, error) {
	if userID == "" {
		return nil, fmt.Errorf("user id is required")
	}
	date := s.now().Format("2006-01-02")

	existing, err := s.store.GetPlanForDate(ctx, userID, date)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("failed to check for existing plan: %w", err)
	}

	profile := domain.UserProfile{
		TargetRole:   req.TargetRole,
		DaysLeft:     req.DaysLeft,
		CurrentLevel: req.CurrentLevel,
	}
	weaknesses, err := s.store.RecentWeaknesses(ctx, userID, 5)
	if err != nil {
		log.Printf("WARN: failed to load recent weaknesses: %v", err)
		weaknesses = nil
	}

	plan := &domain.StudyPlan{
		PlanID:    "plan_" + uuid.New().String()[:8],
		UserID:    userID,
		Date:      date,
		Status:    domain.PlanStatusInProgress,
		CreatedAt: s.now(),
	}

	raw, genErr := s.generate(ctx, prompts.DailyPlan(profile, weaknesses))
	if genErr != nil {
		log.Printf("WARN: plan generation unavailable, using fallback: %v", genErr)
		fillFallbackPlan(plan, profile)
	} else if outcome := extract.Extract(raw, planSchema); !outcome.OK {
		log.Printf("WARN: plan payload unreadable (%s), using fallback", outcome.Reason)
		fillFallbackPlan(plan, profile)
	} else {
		plan.Encouragement = outcome.String("encouragement")
		plan.Tasks = decodePlanTasks(outcome.Values["tasks"])
		if len(plan.Tasks) == 0 {
			fillFallbackPlan(plan, profile)
		}
	}

	if err := s.store.CreatePlan(ctx, plan); err != nil {
		return nil, fmt.Errorf("failed to save plan: %w", err)
	}
	return plan, nil
}

// TodayPlan returns today's plan without generating one.
func (s *Service) TodayPlan(ctx context.Context, userID string) (*domain.StudyPlan, error) {
	return s.store.GetPlanForDate(ctx, userID, s.now().Format("2006-01-02"))
}

// CompletePlanTask marks one task on today's plan as done. When every task
// is done the plan itself flips to completed.
func (s *Service) CompletePlanTask(ctx context.Context, userID string, taskIndex int) (*domain.StudyPlan, error) {
	plan, err := s.TodayPlan(ctx, userID)
	if err != nil {
		return nil, err
	}
	if taskIndex < 0 || taskIndex >= len(plan.Tasks) {
		return nil, fmt.Errorf("task index %d out of range", taskIndex)
	}
	plan.Tasks[taskIndex].Status = domain.TaskStatusDone

	allDone := true
	for _, t := range plan.Tasks {
		if t.Status != domain.TaskStatusDone {
			allDone = false
			break
		}
	}
	if allDone {
		plan.Status = domain.PlanStatusCompleted
	}

	if err := s.store.UpdatePlanTasks(ctx, plan.PlanID, plan.Tasks, plan.Status); err != nil {
		return nil, fmt.Errorf("failed to update plan: %w", err)
	}
	return plan, nil
}

// SaveReflection stores the user's end-of-day note on today's plan.
func (s *Service) SaveReflection(ctx context.Context, userID, reflection string) (*domain.StudyPlan, error) {
	if strings.TrimSpace(reflection) == "" {
		return nil, fmt.Errorf("reflection is required")
	}
	plan, err := s.TodayPlan(ctx, userID)
	if err != nil {
		return nil, err
	}
	plan.Reflection = reflection
	if err := s.store.UpdatePlanReflection(ctx, plan.PlanID, reflection); err != nil {
		return nil, fmt.Errorf("failed to save reflection: %w", err)
	}
	return plan, nil
}

// Roadmap generates a phased preparation plan up to the interview date.
func (s *Service) Roadmap(ctx context.Context, req domain.RoadmapRequest) (*domain.Roadmap, error) {
	if req.TargetRole == "" {
		return nil, fmt.Errorf("target_role is required")
	}
	profile := domain.UserProfile{TargetRole: req.TargetRole, DaysLeft: req.DaysLeft}

	raw, err := s.generate(ctx, prompts.Roadmap(profile))
	if err != nil {
		return nil, fmt.Errorf("roadmap generation unavailable: %w", err)
	}
	outcome := extract.Extract(raw, roadmapSchema)
	if !outcome.OK {
		log.Printf("WARN: roadmap payload unreadable (%s), returning empty phases", outcome.Reason)
		return emptyRoadmap(), nil
	}

	roadmap := &domain.Roadmap{Phases: []domain.RoadmapPhase{}}
	items, _ := outcome.Values["phases"].([]any)
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		roadmap.Phases = append(roadmap.Phases, domain.RoadmapPhase{
			PhaseName: stringOf(m["phase_name"]),
			Duration:  stringOf(m["duration"]),
			Goals:     stringsOf(m["goals"]),
			KeyTopics: stringsOf(m["key_topics"]),
		})
	}
	return roadmap, nil
}

// emptyRoadmap is the degrade shape for a roadmap the generator could not
// deliver: an empty phase list the client renders as "try again", never an
// error page.
func emptyRoadmap() *domain.Roadmap {
	return &domain.Roadmap{Phases: []domain.RoadmapPhase{}}
}

func decodePlanTasks(v any) []domain.PlanTask {
	items, _ := v.([]any)
	var tasks []domain.PlanTask
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		task := domain.PlanTask{
			Topic:         stringOf(m["topic"]),
			Description:   stringOf(m["description"]),
			EstimatedTime: stringOf(m["estimated_time"]),
		}
		if task.Topic == "" && task.Description == "" {
			continue
		}
		tasks = append(tasks, task)
	}
	return tasks
}

func fillFallbackPlan(plan *domain.StudyPlan, profile domain.UserProfile) {
	role := profile.TargetRole
	if role == "" {
		role = "your target role"
	}
	plan.Encouragement = "The planner is offline, so today runs on fundamentals. Keep the streak alive."
	plan.Tasks = []domain.PlanTask{
		{Topic: "Algorithms", Description: "Solve two medium problems on arrays or hash maps and write down the complexity of each.", EstimatedTime: "60 min"},
		{Topic: "Fundamentals", Description: fmt.Sprintf("Review one core subsystem relevant to %s and explain it aloud in five minutes.", role), EstimatedTime: "45 min"},
		{Topic: "Mock interview", Description: "Run one short mock session and request the report.", EstimatedTime: "30 min"},
	}
}

func stringOf(v any) string {
	s, _ := v.(string)
	return s
}

func stringsOf(v any) []string {
	items, _ := v.([]any)
	var out []string
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
