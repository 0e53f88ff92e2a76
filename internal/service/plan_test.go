package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/interviewlab/coach/internal/domain"
	"github.com/interviewlab/coach/internal/store"
)

const planJSON = `Here is the plan:
{
  "encouragement": "Scheduler internals tripped you up last time; today we fix that.",
  "tasks": [
    {"topic": "Go runtime", "description": "Read about GMP scheduling and summarize it in your own words.", "estimated_time": "45 min"},
    {"topic": "Algorithms", "description": "Two medium problems on binary search.", "estimated_time": "60 min"},
    {"topic": "Mock interview", "description": "One short session on Go.", "estimated_time": "30 min"}
  ]
}`

func TestDailyPlanGeneratedOncePerDay(t *testing.T) {
	stub := &scriptedLLM{responses: []string{planJSON}}
	svc := newTestService(t, stub, 0)

	req := domain.DailyPlanRequest{TargetRole: "Backend Engineer", DaysLeft: 30, CurrentLevel: "junior"}

	plan, err := svc.DailyPlan(context.Background(), "u1", req)
	require.NoError(t, err)
	require.Equal(t, "2026-08-31", plan.Date)
	require.Len(t, plan.Tasks, 3)
	require.Contains(t, plan.Encouragement, "Scheduler internals")
	require.Equal(t, domain.PlanStatusInProgress, plan.Status)
	require.Equal(t, 1, stub.calls)

	// The second request of the day returns the stored plan untouched.
	again, err := svc.DailyPlan(context.Background(), "u1", req)
	require.NoError(t, err)
	require.Equal(t, plan.PlanID, again.PlanID)
	require.Equal(t, 1, stub.calls)
}

func TestDailyPlanFallbackOnOutage(t *testing.T) {
	stub := &scriptedLLM{err: errors.New("connection refused")}
	svc := newTestService(t, stub, 0)

	plan, err := svc.DailyPlan(context.Background(), "u1", domain.DailyPlanRequest{TargetRole: "SRE"})
	require.NoError(t, err)
	require.NotEmpty(t, plan.Tasks)
	require.NotEmpty(t, plan.Encouragement)

	// The fallback plan is persisted like any other.
	stored, err := svc.TodayPlan(context.Background(), "u1")
	require.NoError(t, err)
	require.Equal(t, plan.PlanID, stored.PlanID)
}

func TestCompletePlanTask(t *testing.T) {
	stub := &scriptedLLM{responses: []string{planJSON}}
	svc := newTestService(t, stub, 0)

	plan, err := svc.DailyPlan(context.Background(), "u1", domain.DailyPlanRequest{TargetRole: "Backend Engineer"})
	require.NoError(t, err)

	updated, err := svc.CompletePlanTask(context.Background(), "u1", 0)
	require.NoError(t, err)
	require.Equal(t, "done", updated.Tasks[0].Status)
	require.Equal(t, domain.PlanStatusInProgress, updated.Status)

	for i := 1; i < len(plan.Tasks); i++ {
		updated, err = svc.CompletePlanTask(context.Background(), "u1", i)
		require.NoError(t, err)
	}
	require.Equal(t, domain.PlanStatusCompleted, updated.Status)

	_, err = svc.CompletePlanTask(context.Background(), "u1", 99)
	require.Error(t, err)
}

func TestSaveReflectionPersists(t *testing.T) {
	stub := &scriptedLLM{responses: []string{planJSON}}
	svc := newTestService(t, stub, 0)
	ctx := context.Background()

	_, err := svc.DailyPlan(ctx, "u1", domain.DailyPlanRequest{TargetRole: "Backend Engineer"})
	require.NoError(t, err)

	note := "Shaky on scheduler internals, rereading the GMP notes tomorrow."
	plan, err := svc.SaveReflection(ctx, "u1", note)
	require.NoError(t, err)
	require.Equal(t, note, plan.Reflection)

	reloaded, err := svc.TodayPlan(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, note, reloaded.Reflection)
}

func TestSaveReflectionNeedsPlanAndContent(t *testing.T) {
	stub := &scriptedLLM{responses: []string{planJSON}}
	svc := newTestService(t, stub, 0)
	ctx := context.Background()

	_, err := svc.SaveReflection(ctx, "u1", "   ")
	require.Error(t, err)

	// No plan exists for today yet.
	_, err = svc.SaveReflection(ctx, "u1", "a note")
	require.True(t, errors.Is(err, store.ErrNotFound))
}

func TestRoadmap(t *testing.T) {
	stub := &scriptedLLM{responses: []string{`{
		"phases": [
			{"phase_name": "Foundations", "duration": "2 weeks", "goals": ["relearn data structures"], "key_topics": ["arrays", "trees"]},
			{"phase_name": "Mock loop", "duration": "1 week", "goals": ["daily mocks"], "key_topics": ["behavioral", "system design"]}
		]
	}`}}
	svc := newTestService(t, stub, 0)

	roadmap, err := svc.Roadmap(context.Background(), domain.RoadmapRequest{TargetRole: "Backend Engineer", DaysLeft: 21})
	require.NoError(t, err)
	require.Len(t, roadmap.Phases, 2)
	require.Equal(t, "Foundations", roadmap.Phases[0].PhaseName)
	require.Equal(t, []string{"arrays", "trees"}, roadmap.Phases[0].KeyTopics)
}

func TestRoadmapUnreadablePayloadReturnsEmptyPhases(t *testing.T) {
	stub := &scriptedLLM{responses: []string{"no structure here"}}
	svc := newTestService(t, stub, 0)

	roadmap, err := svc.Roadmap(context.Background(), domain.RoadmapRequest{TargetRole: "Backend Engineer"})
	require.NoError(t, err)
	require.NotNil(t, roadmap)
	require.Empty(t, roadmap.Phases)
}

func TestRoadmapNoPhasesReturnsEmptyPhases(t *testing.T) {
	stub := &scriptedLLM{responses: []string{`{"phases": []}`}}
	svc := newTestService(t, stub, 0)

	roadmap, err := svc.Roadmap(context.Background(), domain.RoadmapRequest{TargetRole: "Backend Engineer"})
	require.NoError(t, err)
	require.NotNil(t, roadmap)
	require.Empty(t, roadmap.Phases)
}
