// Package domain defines the core domain models for the coach service.
package domain

// SessionState represents where an interview session is in its lifecycle.
type SessionState string

const (
	SessionStateNotStarted          SessionState = "not_started"
	SessionStateAwaitingCandidate   SessionState = "awaiting_candidate"
	SessionStateAwaitingInterviewer SessionState = "awaiting_interviewer"
	SessionStateConcluded           SessionState = "concluded"
)

// Speaker identifies who produced a turn.
type Speaker string

const (
	SpeakerInterviewer Speaker = "interviewer"
	SpeakerCandidate   Speaker = "candidate"
)

// SessionMode selects how interview questions are sourced.
type SessionMode string

const (
	// ModeTopic drills a single curriculum topic.
	ModeTopic SessionMode = "topic"
	// ModeJobDescription derives questions from a pasted job description.
	ModeJobDescription SessionMode = "jd"
)

// PlanStatus represents the status of a daily study plan.
type PlanStatus string

const (
	PlanStatusInProgress PlanStatus = "in_progress"
	PlanStatusCompleted  PlanStatus = "completed"
)

// TaskStatusDone marks a finished plan task. An unset task status means the
// task is still open.
const TaskStatusDone = "done"
