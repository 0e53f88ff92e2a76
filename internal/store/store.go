// Package store persists interview sessions, transcripts, reports and study
// plans.
package store

import (
	"context"
	"errors"

	"github.com/interviewlab/coach/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Store is the persistence interface for the coach service.
type Store interface {
	CreateSession(ctx context.Context, session *domain.Session) error
	GetSession(ctx context.Context, sessionID string) (*domain.Session, error)
	UpdateSessionState(ctx context.Context, sessionID string, state domain.SessionState) error

	// AppendTurns records one or more turns and moves the session to
	// nextState in one transaction: either everything is written or nothing
	// is. A candidate answer and the interviewer's reply go in together so a
	// fault cannot strand the session between them.
	AppendTurns(ctx context.Context, turns []*domain.Turn, nextState domain.SessionState) error
	GetTurns(ctx context.Context, sessionID string) ([]domain.Turn, error)

	// SaveReport is first-write-wins: it reports whether this call stored
	// the report (false when one already existed).
	SaveReport(ctx context.Context, report *domain.FinalReport) (bool, error)
	GetReport(ctx context.Context, sessionID string) (*domain.FinalReport, error)

	CreatePlan(ctx context.Context, plan *domain.StudyPlan) error
	GetPlanForDate(ctx context.Context, userID, date string) (*domain.StudyPlan, error)
	UpdatePlanTasks(ctx context.Context, planID string, tasks []domain.PlanTask, status domain.PlanStatus) error
	UpdatePlanReflection(ctx context.Context, planID, reflection string) error

	ListScoredSessions(ctx context.Context, userID string) ([]domain.SessionSummary, error)
	RecentWeaknesses(ctx context.Context, userID string, limit int) ([]string, error)
	StudyStats(ctx context.Context, userID string) (*domain.StudyStats, error)

	Close() error
}
