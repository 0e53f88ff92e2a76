// Package prompts builds the chat messages sent to the LLM. Keeping prompt
// construction here decouples phrasing experiments from the dialogue logic.
package prompts

import (
	"fmt"
	"strings"

	"github.com/interviewlab/coach/internal/adapter/llm"
	"github.com/interviewlab/coach/internal/domain"
)

// Interview carries the per-session context every interviewer prompt needs.
type Interview struct {
	Mode   domain.SessionMode
	Topic  string
	JDText string
	// Window caps how many recent turns are included; older history is
	// truncated, most recent first retained.
	Window int
}

// Evaluation asks the model to judge the candidate's latest answer and emit
// a JSON evaluation payload.
func (p Interview) Evaluation(turns []domain.Turn) []llm.ChatMessage {
	var system strings.Builder
	system.WriteString("You are a fair technical interviewer evaluating a candidate's answer.\n")
	if p.Mode == domain.ModeJobDescription {
		system.WriteString("The interview targets this job description:\n")
		system.WriteString(p.JDText)
		system.WriteString("\n")
	} else {
		fmt.Fprintf(&system, "The interview topic is %s.\n", p.Topic)
	}
	system.WriteString(`Respond with a JSON object containing:
- "score": integer 0-100
- "feedback": short critique naming one strength and one gap
- "reference": key points a strong answer would cover
- "follow_up": a deeper probe on the same question if the answer deserves one, otherwise null`)

	return []llm.ChatMessage{
		{Role: "system", Content: system.String()},
		{Role: "user", Content: "Recent exchange:\n" + historyText(lastN(turns, p.Window)) + "\n\nEvaluate the candidate's last answer."},
	}
}

// NewQuestion asks the model for a fresh question when the curated bank has
// nothing left to offer.
func (p Interview) NewQuestion(turns []domain.Turn) []llm.ChatMessage {
	var system strings.Builder
	if p.Mode == domain.ModeJobDescription {
		system.WriteString("You are a demanding interviewer hiring against this job description:\n")
		system.WriteString(p.JDText)
		system.WriteString("\nAsk one question that tests whether the candidate truly fits the role.\n")
	} else {
		fmt.Fprintf(&system, "You are a senior %s interviewer.\n", p.Topic)
		system.WriteString("Ask one new, challenging question.\n")
	}
	system.WriteString("Output only the question itself, no pleasantries. If the history already covers similar ground, pick a different angle.")

	return []llm.ChatMessage{
		{Role: "system", Content: system.String()},
		{Role: "user", Content: "History:\n" + historyText(lastN(turns, p.Window)) + "\n\nAsk the next question."},
	}
}

// FinalReport asks the model to summarize the whole transcript as a JSON
// report payload.
func (p Interview) FinalReport(turns []domain.Turn) []llm.ChatMessage {
	system := `The interview is over. Based on the full transcript, write a summary report as a JSON object containing:
- "total_score": integer 0-100
- "summary": overall assessment
- "strengths": list of highlights
- "weaknesses": list of gaps
- "suggestions": list of concrete improvements`

	return []llm.ChatMessage{
		{Role: "system", Content: system},
		{Role: "user", Content: "Transcript:\n" + historyText(turns) + "\n\nWrite the report."},
	}
}

// DailyPlan asks for today's study plan given the user's profile and the
// weaknesses their recent interviews exposed.
func DailyPlan(profile domain.UserProfile, weaknesses []string) []llm.ChatMessage {
	weaknessText := "none recorded"
	if len(weaknesses) > 0 {
		weaknessText = strings.Join(weaknesses, "; ")
	}
	system := fmt.Sprintf(`You are a strict but supportive interview-prep mentor. Plan today's study for a student.

Recent mock interviews exposed these weak spots: [%s].
Schedule one or two tasks that target them directly.

Output a JSON object containing:
- "encouragement": one short line that names a weak spot being tackled today
- "tasks": 3-5 tasks, each with "topic", "description" and "estimated_time"

Student:
Target role: %s
Days until interview: %d
Current level: %s`, weaknessText, profile.TargetRole, profile.DaysLeft, profile.CurrentLevel)

	return []llm.ChatMessage{
		{Role: "system", Content: system},
		{Role: "user", Content: "Generate today's plan."},
	}
}

// Roadmap asks for a phased long-term preparation plan.
func Roadmap(profile domain.UserProfile) []llm.ChatMessage {
	system := fmt.Sprintf(`You are an interview-prep planner. The student targets the role of %s with %d days left.
Output a JSON object with a "phases" list; each phase has "phase_name", "duration", "goals" (list) and "key_topics" (list).`,
		profile.TargetRole, profile.DaysLeft)

	return []llm.ChatMessage{
		{Role: "system", Content: system},
		{Role: "user", Content: "Generate the roadmap."},
	}
}

// RadarDimensions are the fixed axes of the progress radar chart.
var RadarDimensions = []string{
	"fundamentals",
	"algorithms",
	"engineering",
	"communication",
	"role_fit",
}

// Progress asks for an ability assessment over the user's history.
func Progress(sessions []domain.SessionSummary, stats *domain.StudyStats) []llm.ChatMessage {
	var history strings.Builder
	for _, s := range sessions {
		fmt.Fprintf(&history, "- topic: %s, score: %d\n", s.Topic, s.Score)
	}
	if history.Len() == 0 {
		history.WriteString("no finished interviews yet\n")
	}

	system := fmt.Sprintf(`You are an education analyst. Assess a student from their mock-interview history and study log.

Interview history:
%s
Study log: %d days active, task completion %.1f%%.

Output a JSON object containing:
- "radar": scores 0-100 for exactly these keys: %s
- "trend_analysis": one line on the trend
- "key_suggestion": one actionable suggestion for the weakest dimension

Estimate sensibly where data is thin.`,
		history.String(), stats.TotalDays, stats.CompletionRate, strings.Join(RadarDimensions, ", "))

	return []llm.ChatMessage{
		{Role: "system", Content: system},
		{Role: "user", Content: "Assess the student."},
	}
}

// Research asks for a deep technical note on one topic, suitable for the
// knowledge library.
func Research(topic string) []llm.ChatMessage {
	system := `You are a technical expert writing a deep technical note for an interview-prep library.
Requirements:
1. Clear structure: Core Concept, Mechanics, Pros and Cons, Interview Q&A.
2. Use Markdown headings and lists.
3. Go deep; a surface summary is useless to the reader.`

	return []llm.ChatMessage{
		{Role: "system", Content: system},
		{Role: "user", Content: "Write a deep technical note on: " + topic},
	}
}

// AnalyzeJD asks for an insider read of a job description.
func AnalyzeJD(jdText string) []llm.ChatMessage {
	system := `You analyze job descriptions for job seekers, surfacing what the text implies but does not say.

Output a JSON object containing:
- "estimated_salary": market range for this role if the posting omits one
- "tech_stack_keywords": list of core technologies
- "red_flags": list of risk signals (empty list if none)
- "resume_tips": list of 3 things a resume should emphasize for this posting
- "difficulty_score": integer 1-100 estimating interview difficulty
- "insider_comment": one blunt line of advice

Output pure JSON with no markdown fences.`

	return []llm.ChatMessage{
		{Role: "system", Content: system},
		{Role: "user", Content: "Analyze this job description:\n\n" + jdText},
	}
}

func lastN(turns []domain.Turn, n int) []domain.Turn {
	if n <= 0 || len(turns) <= n {
		return turns
	}
	return turns[len(turns)-n:]
}

func historyText(turns []domain.Turn) string {
	if len(turns) == 0 {
		return "none"
	}
	var b strings.Builder
	for _, t := range turns {
		fmt.Fprintf(&b, "%s: %s\n", t.Speaker, t.Content)
	}
	return b.String()
}
