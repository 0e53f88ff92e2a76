package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/interviewlab/coach/internal/domain"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore creates a new SQLite store.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// For in-memory SQLite, multiple connections create separate databases.
	// Keep a single connection to avoid schema/data disappearing across goroutines.
	if dsn == ":memory:" || strings.Contains(dsn, "mode=memory") {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// migrate runs database migrations.
func (s *SQLiteStore) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			session_id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			topic TEXT NOT NULL,
			mode TEXT NOT NULL,
			jd_text TEXT,
			state TEXT NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_user ON sessions(user_id, created_at)`,
		`CREATE TABLE IF NOT EXISTS turns (
			turn_id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL,
			speaker TEXT NOT NULL,
			content TEXT NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (session_id) REFERENCES sessions(session_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_turns_session ON turns(session_id, created_at)`,
		`CREATE TABLE IF NOT EXISTS reports (
			session_id TEXT PRIMARY KEY,
			total_score INTEGER NOT NULL,
			payload TEXT NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (session_id) REFERENCES sessions(session_id)
		)`,
		`CREATE TABLE IF NOT EXISTS plans (
			plan_id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			date TEXT NOT NULL,
			encouragement TEXT,
			tasks TEXT,
			status TEXT NOT NULL,
			reflection TEXT,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(user_id, date)
		)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\n%s", err, m)
		}
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateSession creates a new session.
func (s *SQLiteStore) CreateSession(ctx context.Context, session *domain.Session) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (session_id, user_id, topic, mode, jd_text, state, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		session.SessionID, session.UserID, session.Topic, session.Mode, nullString(session.JDText), session.State, session.CreatedAt)
	return err
}

// GetSession retrieves a session by ID.
func (s *SQLiteStore) GetSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	var session domain.Session
	var jdText sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT session_id, user_id, topic, mode, jd_text, state, created_at FROM sessions WHERE session_id = ?`,
		sessionID).Scan(&session.SessionID, &session.UserID, &session.Topic, &session.Mode, &jdText, &session.State, &session.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if jdText.Valid {
		session.JDText = jdText.String
	}
	return &session, nil
}

// UpdateSessionState updates the state of a session.
func (s *SQLiteStore) UpdateSessionState(ctx context.Context, sessionID string, state domain.SessionState) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET state = ? WHERE session_id = ?`,
		state, sessionID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// AppendTurns records turns and the resulting session state atomically. All
// turns must belong to the same session.
func (s *SQLiteStore) AppendTurns(ctx context.Context, turns []*domain.Turn, nextState domain.SessionState) error {
	if len(turns) == 0 {
		return fmt.Errorf("no turns to append")
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, turn := range turns {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO turns (turn_id, session_id, speaker, content, created_at) VALUES (?, ?, ?, ?, ?)`,
			turn.TurnID, turn.SessionID, turn.Speaker, turn.Content, turn.CreatedAt); err != nil {
			return err
		}
	}
	if nextState != "" {
		if _, err := tx.ExecContext(ctx,
			`UPDATE sessions SET state = ? WHERE session_id = ?`,
			nextState, turns[0].SessionID); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// GetTurns retrieves the transcript of a session in insertion order.
func (s *SQLiteStore) GetTurns(ctx context.Context, sessionID string) ([]domain.Turn, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT turn_id, session_id, speaker, content, created_at FROM turns WHERE session_id = ? ORDER BY created_at ASC, turn_id ASC`,
		sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var turns []domain.Turn
	for rows.Next() {
		var turn domain.Turn
		if err := rows.Scan(&turn.TurnID, &turn.SessionID, &turn.Speaker, &turn.Content, &turn.CreatedAt); err != nil {
			return nil, err
		}
		turns = append(turns, turn)
	}
	return turns, rows.Err()
}

// SaveReport stores a final report unless one already exists.
func (s *SQLiteStore) SaveReport(ctx context.Context, report *domain.FinalReport) (bool, error) {
	payload, err := json.Marshal(report)
	if err != nil {
		return false, err
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO reports (session_id, total_score, payload, created_at) VALUES (?, ?, ?, ?)`,
		report.SessionID, report.TotalScore, string(payload), report.CreatedAt)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// GetReport retrieves the report for a session.
func (s *SQLiteStore) GetReport(ctx context.Context, sessionID string) (*domain.FinalReport, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM reports WHERE session_id = ?`,
		sessionID).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var report domain.FinalReport
	if err := json.Unmarshal([]byte(payload), &report); err != nil {
		return nil, fmt.Errorf("corrupt report payload for session %s: %w", sessionID, err)
	}
	return &report, nil
}

// CreatePlan stores a daily study plan.
func (s *SQLiteStore) CreatePlan(ctx context.Context, plan *domain.StudyPlan) error {
	tasks, err := json.Marshal(plan.Tasks)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO plans (plan_id, user_id, date, encouragement, tasks, status, reflection, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		plan.PlanID, plan.UserID, plan.Date, plan.Encouragement, string(tasks), plan.Status, nullString(plan.Reflection), plan.CreatedAt)
	return err
}

// GetPlanForDate retrieves a user's plan for the given date (YYYY-MM-DD).
func (s *SQLiteStore) GetPlanForDate(ctx context.Context, userID, date string) (*domain.StudyPlan, error) {
	var plan domain.StudyPlan
	var tasks string
	var reflection sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT plan_id, user_id, date, encouragement, tasks, status, reflection, created_at FROM plans WHERE user_id = ? AND date = ?`,
		userID, date).Scan(&plan.PlanID, &plan.UserID, &plan.Date, &plan.Encouragement, &tasks, &plan.Status, &reflection, &plan.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if reflection.Valid {
		plan.Reflection = reflection.String
	}
	if err := json.Unmarshal([]byte(tasks), &plan.Tasks); err != nil {
		return nil, fmt.Errorf("corrupt tasks payload for plan %s: %w", plan.PlanID, err)
	}
	return &plan, nil
}

// UpdatePlanTasks replaces the task list of a plan (status updates included).
func (s *SQLiteStore) UpdatePlanTasks(ctx context.Context, planID string, tasks []domain.PlanTask, status domain.PlanStatus) error {
	payload, err := json.Marshal(tasks)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE plans SET tasks = ?, status = ? WHERE plan_id = ?`,
		string(payload), string(status), planID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdatePlanReflection sets the user's end-of-day note on a plan.
func (s *SQLiteStore) UpdatePlanReflection(ctx context.Context, planID, reflection string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE plans SET reflection = ? WHERE plan_id = ?`,
		reflection, planID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListScoredSessions lists a user's sessions that have a saved report.
func (s *SQLiteStore) ListScoredSessions(ctx context.Context, userID string) ([]domain.SessionSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT s.session_id, s.topic, r.total_score
		 FROM sessions s JOIN reports r ON r.session_id = s.session_id
		 WHERE s.user_id = ?
		 ORDER BY r.created_at ASC`,
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.SessionSummary
	for rows.Next() {
		var ss domain.SessionSummary
		if err := rows.Scan(&ss.SessionID, &ss.Topic, &ss.Score); err != nil {
			return nil, err
		}
		out = append(out, ss)
	}
	return out, rows.Err()
}

// RecentWeaknesses collects the weaknesses recorded in a user's most recent
// reports, newest first, annotated with the session topic.
func (s *SQLiteStore) RecentWeaknesses(ctx context.Context, userID string, limit int) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT s.topic, r.payload
		 FROM reports r JOIN sessions s ON s.session_id = r.session_id
		 WHERE s.user_id = ?
		 ORDER BY r.created_at DESC
		 LIMIT ?`,
		userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var weaknesses []string
	seen := map[string]bool{}
	for rows.Next() {
		var topic, payload string
		if err := rows.Scan(&topic, &payload); err != nil {
			return nil, err
		}
		var report domain.FinalReport
		if err := json.Unmarshal([]byte(payload), &report); err != nil {
			continue
		}
		for _, w := range report.Weaknesses {
			entry := fmt.Sprintf("%s (from: %s)", w, topic)
			if !seen[entry] {
				seen[entry] = true
				weaknesses = append(weaknesses, entry)
			}
		}
	}
	return weaknesses, rows.Err()
}

// StudyStats computes plan completion and finished-session counts for a user.
func (s *SQLiteStore) StudyStats(ctx context.Context, userID string) (*domain.StudyStats, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT tasks FROM plans WHERE user_id = ?`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := &domain.StudyStats{}
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		stats.TotalDays++
		var tasks []domain.PlanTask
		if err := json.Unmarshal([]byte(payload), &tasks); err != nil {
			continue
		}
		for _, t := range tasks {
			stats.TotalTasks++
			if t.Status == domain.TaskStatusDone {
				stats.CompletedTasks++
			}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM reports r JOIN sessions s ON s.session_id = r.session_id WHERE s.user_id = ?`,
		userID).Scan(&stats.FinishedSessions); err != nil {
		return nil, err
	}

	if stats.TotalTasks > 0 {
		stats.CompletionRate = float64(stats.CompletedTasks) / float64(stats.TotalTasks) * 100
	}
	return stats, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
