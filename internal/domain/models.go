package domain

import (
	"time"
)

// Session represents one interview session.
type Session struct {
	SessionID string       `json:"session_id"`
	UserID    string       `json:"user_id"`
	Topic     string       `json:"topic"`
	Mode      SessionMode  `json:"mode"`
	JDText    string       `json:"jd_text,omitempty"`
	State     SessionState `json:"state"`
	CreatedAt time.Time    `json:"created_at"`
}

// Turn is a single utterance in a session transcript. Transcripts are
// append-only; turns are never edited or removed.
type Turn struct {
	TurnID    string    `json:"turn_id"`
	SessionID string    `json:"session_id"`
	Speaker   Speaker   `json:"speaker"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Evaluation is the interviewer's judgement of one candidate answer.
// FollowUp empty means the interviewer moves on to a new question.
type Evaluation struct {
	Score     int    `json:"score"`
	Feedback  string `json:"feedback"`
	Reference string `json:"reference,omitempty"`
	FollowUp  string `json:"follow_up,omitempty"`
}

// FinalReport summarizes a whole session. Written at most once per session.
type FinalReport struct {
	SessionID   string    `json:"session_id"`
	TotalScore  int       `json:"total_score"`
	Summary     string    `json:"summary"`
	Strengths   []string  `json:"strengths"`
	Weaknesses  []string  `json:"weaknesses"`
	Suggestions []string  `json:"suggestions"`
	CreatedAt   time.Time `json:"created_at"`
}

// PlanTask is one item on a daily study plan.
type PlanTask struct {
	Topic         string `json:"topic"`
	Description   string `json:"description"`
	EstimatedTime string `json:"estimated_time"`
	Status        string `json:"status,omitempty"`
}

// StudyPlan is a per-user, per-day study plan.
type StudyPlan struct {
	PlanID        string     `json:"plan_id"`
	UserID        string     `json:"user_id"`
	Date          string     `json:"date"` // YYYY-MM-DD
	Encouragement string     `json:"encouragement"`
	Tasks         []PlanTask `json:"tasks"`
	Status        PlanStatus `json:"status"`
	Reflection    string     `json:"reflection,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// RoadmapPhase is one stage of a long-term preparation roadmap.
type RoadmapPhase struct {
	PhaseName string   `json:"phase_name"`
	Duration  string   `json:"duration"`
	Goals     []string `json:"goals"`
	KeyTopics []string `json:"key_topics"`
}

// Roadmap is a phased preparation plan up to the interview date.
type Roadmap struct {
	Phases []RoadmapPhase `json:"phases"`
}

// RoadmapTemplate is a curated, hand-written roadmap for a common track.
type RoadmapTemplate struct {
	Name   string         `json:"name"`
	Phases []RoadmapPhase `json:"phases"`
}

// LibraryDoc is one knowledge-base article. Curated docs ship with the
// service and cannot be deleted; researched docs are generated on request.
type LibraryDoc struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Curated bool   `json:"curated"`
}

// UserProfile carries the study-planning inputs for one user.
type UserProfile struct {
	TargetRole   string `json:"target_role"`
	DaysLeft     int    `json:"days_left"`
	CurrentLevel string `json:"current_level"`
}

// ProgressReport is the analyst output over a user's history.
type ProgressReport struct {
	Radar         map[string]int `json:"radar"`
	TrendAnalysis string         `json:"trend_analysis"`
	KeySuggestion string         `json:"key_suggestion"`
}

// StudyStats aggregates plan completion for the analyst prompt.
type StudyStats struct {
	TotalDays        int     `json:"total_days"`
	TotalTasks       int     `json:"total_tasks"`
	CompletedTasks   int     `json:"completed_tasks"`
	CompletionRate   float64 `json:"completion_rate"`
	FinishedSessions int     `json:"finished_sessions"`
}

// SessionSummary is the scored-session view the analyst consumes.
type SessionSummary struct {
	SessionID string `json:"session_id"`
	Topic     string `json:"topic"`
	Score     int    `json:"score"`
}

// JobPosting is one curated job listing served by the scout.
type JobPosting struct {
	Company  string   `json:"company"`
	Title    string   `json:"title"`
	Salary   string   `json:"salary"`
	Location string   `json:"location"`
	Tags     []string `json:"tags"`
	Content  string   `json:"content"`
}

// JDAnalysis is the scout's read of a job description.
type JDAnalysis struct {
	EstimatedSalary   string   `json:"estimated_salary"`
	TechStackKeywords []string `json:"tech_stack_keywords"`
	RedFlags          []string `json:"red_flags"`
	ResumeTips        []string `json:"resume_tips"`
	DifficultyScore   int      `json:"difficulty_score"`
	InsiderComment    string   `json:"insider_comment"`
}
