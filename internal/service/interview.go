package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/interviewlab/coach/internal/domain"
	"github.com/interviewlab/coach/internal/extract"
	"github.com/interviewlab/coach/internal/prompts"
	"github.com/interviewlab/coach/internal/store"
)

// TurnSeparator splits interviewer utterances into feedback on the previous
// answer and the next question. Clients render the two halves separately.
const TurnSeparator = "---SEPARATOR---"

// unavailableUtterance is shown when the generator cannot be reached. It is
// never appended to the transcript.
const unavailableUtterance = "The interviewer needs a short break. Your answer was not lost; please send it again in a moment."

// continueUtterance is appended when the generator answered but its output
// could not be read as an evaluation.
const continueUtterance = "Answer recorded. Please continue with anything you would like to add, or ask me to move on."

// fallbackOpeningQuestion keeps a brand-new session usable when both the
// question bank and the generator have nothing to offer.
const fallbackOpeningQuestion = "To warm up, walk me through a recent project you are proud of and the part you personally owned."

// CreateSession starts an interview: it persists the session and appends the
// interviewer's opening turn (a greeting plus the first question).
func (s *Service) CreateSession(ctx context.Context, userID string, req domain.CreateSessionRequest) (*domain.Session, *domain.Turn, error) {
	if userID == "" {
		return nil, nil, fmt.Errorf("user id is required")
	}
	mode := req.Mode
	if mode == "" {
		mode = domain.ModeTopic
	}
	switch mode {
	case domain.ModeTopic:
		if req.Topic == "" {
			return nil, nil, fmt.Errorf("topic is required")
		}
	case domain.ModeJobDescription:
		if req.JDText == "" {
			return nil, nil, fmt.Errorf("jd_text is required")
		}
	default:
		return nil, nil, fmt.Errorf("unknown mode %q", mode)
	}

	session := &domain.Session{
		SessionID: "sess_" + uuid.New().String()[:8],
		UserID:    userID,
		Topic:     req.Topic,
		Mode:      mode,
		JDText:    req.JDText,
		State:     domain.SessionStateNotStarted,
		CreatedAt: s.now(),
	}
	if err := s.store.CreateSession(ctx, session); err != nil {
		return nil, nil, fmt.Errorf("failed to create session: %w", err)
	}

	question, err := s.nextQuestion(ctx, session, nil)
	if err != nil {
		// The session must still open; a canned question beats a dead session.
		question = fallbackOpeningQuestion
	}

	opening := &domain.Turn{
		TurnID:    "turn_" + uuid.New().String()[:8],
		SessionID: session.SessionID,
		Speaker:   domain.SpeakerInterviewer,
		Content:   s.greeting(session) + "\n\n" + question,
		CreatedAt: s.now(),
	}
	if err := s.store.AppendTurns(ctx, []*domain.Turn{opening}, domain.SessionStateAwaitingCandidate); err != nil {
		return nil, nil, fmt.Errorf("failed to append opening turn: %w", err)
	}
	session.State = domain.SessionStateAwaitingCandidate

	return session, opening, nil
}

// GetSession returns a session with its full transcript.
func (s *Service) GetSession(ctx context.Context, userID, sessionID string) (*domain.Session, []domain.Turn, error) {
	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}
	if err := s.authorize(ctx, "read_session", userID, session.UserID, string(session.State)); err != nil {
		return nil, nil, err
	}
	turns, err := s.store.GetTurns(ctx, sessionID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load transcript: %w", err)
	}
	return session, turns, nil
}

// RecordAnswer takes one candidate answer and produces the interviewer's
// reply. All generation happens before anything is persisted, so a generator
// outage leaves the transcript exactly as it was; the caller simply retries
// the same answer.
func (s *Service) RecordAnswer(ctx context.Context, userID, sessionID string, req domain.AnswerRequest) (*domain.AnswerResponse, error) {
	if strings.TrimSpace(req.Content) == "" {
		return nil, fmt.Errorf("content is required")
	}

	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, "append_turn", userID, session.UserID, string(session.State)); err != nil {
		return nil, err
	}
	if session.State != domain.SessionStateAwaitingCandidate {
		return nil, fmt.Errorf("%w: session is %s, not awaiting an answer", ErrInvalidState, session.State)
	}

	turns, err := s.store.GetTurns(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load transcript: %w", err)
	}

	answer := &domain.Turn{
		TurnID:    "turn_" + uuid.New().String()[:8],
		SessionID: sessionID,
		Speaker:   domain.SpeakerCandidate,
		Content:   req.Content,
		CreatedAt: s.now(),
	}
	withAnswer := append(append([]domain.Turn{}, turns...), *answer)

	utterance, transient := s.interviewerReply(ctx, session, withAnswer)
	if transient {
		return &domain.AnswerResponse{Utterance: utterance, Transient: true}, nil
	}

	reply := &domain.Turn{
		TurnID:    "turn_" + uuid.New().String()[:8],
		SessionID: sessionID,
		Speaker:   domain.SpeakerInterviewer,
		Content:   utterance,
		CreatedAt: s.now(),
	}
	// Answer and reply land in one transaction. A fault between two separate
	// writes would leave the session awaiting_interviewer, a state no
	// operation can move it out of.
	if err := s.store.AppendTurns(ctx, []*domain.Turn{answer, reply}, domain.SessionStateAwaitingCandidate); err != nil {
		return nil, fmt.Errorf("failed to append exchange: %w", err)
	}

	return &domain.AnswerResponse{Turn: reply, Utterance: utterance}, nil
}

// interviewerReply evaluates the latest answer and composes the next
// interviewer utterance. transient=true means nothing should be persisted.
func (s *Service) interviewerReply(ctx context.Context, session *domain.Session, turns []domain.Turn) (utterance string, transient bool) {
	p := s.interviewPrompt(session)

	raw, err := s.generate(ctx, p.Evaluation(turns))
	if err != nil {
		return unavailableUtterance, true
	}

	outcome := extract.Extract(raw, evaluationSchema)
	if !outcome.OK {
		return continueUtterance, false
	}

	eval := domain.Evaluation{
		Score:     clampScore(outcome.Int("score")),
		Feedback:  outcome.String("feedback"),
		Reference: outcome.String("reference"),
		FollowUp:  outcome.String("follow_up"),
	}

	if eval.FollowUp != "" {
		return eval.Feedback + "\n\n" + TurnSeparator + "\n\n" + eval.FollowUp, false
	}

	question, err := s.nextQuestion(ctx, session, turns)
	if err != nil {
		return unavailableUtterance, true
	}
	return eval.Feedback + "\n\n" + TurnSeparator + "\n\n" + question, false
}

// nextQuestion picks the interviewer's next question: a weighted draw from
// the curated bank when the session has a topic, otherwise (or when the bank
// is exhausted) a freshly generated one. A generator failure falls back to
// the bank before giving up.
func (s *Service) nextQuestion(ctx context.Context, session *domain.Session, turns []domain.Turn) (string, error) {
	asked := askedText(turns)

	fromBank := func() (string, bool) {
		if session.Mode != domain.ModeTopic || s.bank == nil {
			return "", false
		}
		pool := s.bank.Unasked(session.Topic, asked)
		if len(pool) == 0 {
			return "", false
		}
		q := pool[s.rng.Intn(len(pool))]
		if q.Company != "" {
			return fmt.Sprintf("[%s %s] %s", q.Company, q.Year, q.Question), true
		}
		return q.Question, true
	}

	if s.rng.Float64() < s.config.QuestionBankWeight {
		if q, ok := fromBank(); ok {
			return q, nil
		}
	}

	raw, err := s.generate(ctx, s.interviewPrompt(session).NewQuestion(turns))
	if err != nil {
		if q, ok := fromBank(); ok {
			return q, nil
		}
		return "", err
	}
	return strings.TrimSpace(raw), nil
}

// FinishInterview generates the final report, stores it once, and concludes
// the session. A second call returns the stored report without touching the
// generator.
func (s *Service) FinishInterview(ctx context.Context, userID, sessionID string) (*domain.FinalReport, error) {
	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, "generate_report", userID, session.UserID, string(session.State)); err != nil {
		return nil, err
	}

	report, err := s.store.GetReport(ctx, sessionID)
	if err == nil {
		return report, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("failed to check for existing report: %w", err)
	}

	turns, err := s.store.GetTurns(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load transcript: %w", err)
	}

	raw, err := s.generate(ctx, s.interviewPrompt(session).FinalReport(turns))
	if err != nil {
		return nil, fmt.Errorf("report generation unavailable: %w", err)
	}

	outcome := extract.Extract(raw, reportSchema)
	if !outcome.OK {
		// Placeholder is shown but not stored, so a retry can still
		// produce a real report.
		return placeholderReport(sessionID, s.now()), nil
	}

	report = &domain.FinalReport{
		SessionID:   sessionID,
		TotalScore:  clampScore(outcome.Int("total_score")),
		Summary:     outcome.String("summary"),
		Strengths:   outcome.StringList("strengths"),
		Weaknesses:  outcome.StringList("weaknesses"),
		Suggestions: outcome.StringList("suggestions"),
		CreatedAt:   s.now(),
	}

	stored, err := s.store.SaveReport(ctx, report)
	if err != nil {
		return nil, fmt.Errorf("failed to save report: %w", err)
	}
	if !stored {
		// Lost the race to an earlier writer; theirs wins.
		return s.store.GetReport(ctx, sessionID)
	}

	if err := s.store.UpdateSessionState(ctx, sessionID, domain.SessionStateConcluded); err != nil {
		return nil, fmt.Errorf("failed to conclude session: %w", err)
	}
	return report, nil
}

// GetReport returns the stored report for a session, if one exists.
func (s *Service) GetReport(ctx context.Context, userID, sessionID string) (*domain.FinalReport, error) {
	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, "read_session", userID, session.UserID, string(session.State)); err != nil {
		return nil, err
	}
	return s.store.GetReport(ctx, sessionID)
}

func (s *Service) interviewPrompt(session *domain.Session) prompts.Interview {
	return prompts.Interview{
		Mode:   session.Mode,
		Topic:  session.Topic,
		JDText: session.JDText,
		Window: s.config.HistoryWindow,
	}
}

func (s *Service) greeting(session *domain.Session) string {
	if session.Mode == domain.ModeJobDescription {
		return "Hello, I'm your interviewer today. I've read the job description you shared, and we'll run this interview against it. Take your time with each answer."
	}
	return fmt.Sprintf("Hello, I'm your interviewer today. We'll focus on %s. Take your time with each answer.", session.Topic)
}

func placeholderReport(sessionID string, now time.Time) *domain.FinalReport {
	return &domain.FinalReport{
		SessionID:  sessionID,
		Summary:    "The report could not be assembled this time. Your transcript is safe; request the report again in a moment.",
		Strengths:  []string{},
		Weaknesses: []string{},
		Suggestions: []string{
			"Request the report again shortly.",
		},
		CreatedAt: now,
	}
}

// askedText concatenates interviewer turns so the bank can skip questions
// that already came up.
func askedText(turns []domain.Turn) string {
	var b strings.Builder
	for _, t := range turns {
		if t.Speaker == domain.SpeakerInterviewer {
			b.WriteString(t.Content)
			b.WriteByte('\n')
		}
	}
	return b.String()
}
