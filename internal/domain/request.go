package domain

// CreateSessionRequest starts a new interview session.
type CreateSessionRequest struct {
	Topic  string      `json:"topic"`
	Mode   SessionMode `json:"mode"`
	JDText string      `json:"jd_text,omitempty"`
}

// AnswerRequest records one candidate answer.
type AnswerRequest struct {
	Content string `json:"content"`
}

// AnswerResponse carries the interviewer's reply to an answer.
// Transient is set when the reply is a degrade utterance that was not
// appended to the transcript (the generator was unavailable).
type AnswerResponse struct {
	Turn      *Turn  `json:"turn,omitempty"`
	Utterance string `json:"utterance"`
	Transient bool   `json:"transient"`
}

// DailyPlanRequest asks for today's study plan.
type DailyPlanRequest struct {
	TargetRole   string `json:"target_role"`
	DaysLeft     int    `json:"days_left"`
	CurrentLevel string `json:"current_level"`
}

// ReflectionRequest saves an end-of-day note on today's plan.
type ReflectionRequest struct {
	Reflection string `json:"reflection"`
}

// ResearchRequest asks the librarian to write a technical note on a topic.
type ResearchRequest struct {
	Topic string `json:"topic"`
}

// RoadmapRequest asks for a long-term preparation roadmap.
type RoadmapRequest struct {
	TargetRole string `json:"target_role"`
	DaysLeft   int    `json:"days_left"`
}

// AnalyzeJDRequest asks the scout to analyze a pasted job description.
type AnalyzeJDRequest struct {
	JDText string `json:"jd_text"`
}
