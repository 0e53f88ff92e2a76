package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/interviewlab/coach/internal/domain"
	"github.com/interviewlab/coach/internal/extract"
	"github.com/interviewlab/coach/internal/prompts"
)

// maxJobResults caps how many postings one query returns.
const maxJobResults = 5

// noMatchSampleSize is how many postings come back when a role keyword
// matches nothing; an empty board would read like a dead feature.
const noMatchSampleSize = 2

// curatedPostings is the static job board the scout serves from. Entries are
// hand-picked rather than scraped; freshness is a content concern, not a
// code concern.
var curatedPostings = []domain.JobPosting{
	{
		Company:  "ByteDance",
		Title:    "Backend Engineer, Recommendation Infra",
		Salary:   "30-55k/mo",
		Location: "Beijing",
		Tags:     []string{"go", "backend", "distributed systems"},
		Content:  "Build and operate the storage and serving layers behind the recommendation feed. Heavy Go, heavy scale, on-call rotation.",
	},
	{
		Company:  "Tencent",
		Title:    "Server Developer, WeChat Platform",
		Salary:   "28-50k/mo",
		Location: "Guangzhou",
		Tags:     []string{"backend", "c++", "go"},
		Content:  "Platform services for mini programs. Strong fundamentals in networking and storage expected.",
	},
	{
		Company:  "Meituan",
		Title:    "Software Engineer, Delivery Dispatch",
		Salary:   "25-45k/mo",
		Location: "Beijing",
		Tags:     []string{"java", "backend", "algorithms"},
		Content:  "Real-time dispatch engine matching riders to orders. Optimization background is a plus.",
	},
	{
		Company:  "Alibaba Cloud",
		Title:    "Site Reliability Engineer",
		Salary:   "30-50k/mo",
		Location: "Hangzhou",
		Tags:     []string{"sre", "kubernetes", "go", "infra"},
		Content:  "Keep a public cloud region healthy. Kubernetes internals, incident response, automation in Go or Python.",
	},
	{
		Company:  "PDD",
		Title:    "Data Engineer, Growth Analytics",
		Salary:   "35-60k/mo",
		Location: "Shanghai",
		Tags:     []string{"data", "spark", "sql"},
		Content:  "Pipelines feeding growth experiments. Expect long hours and short feedback loops.",
	},
	{
		Company:  "Xiaohongshu",
		Title:    "Machine Learning Engineer, Search",
		Salary:   "40-70k/mo",
		Location: "Shanghai",
		Tags:     []string{"ml", "search", "python"},
		Content:  "Ranking models for lifestyle search. Prior search or recsys experience strongly preferred.",
	},
	{
		Company:  "NetEase",
		Title:    "Game Server Engineer",
		Salary:   "22-40k/mo",
		Location: "Hangzhou",
		Tags:     []string{"game", "c++", "backend"},
		Content:  "Authoritative game servers for a live title. Latency budgets are unforgiving.",
	},
	{
		Company:  "DJI",
		Title:    "Embedded Software Engineer",
		Salary:   "25-45k/mo",
		Location: "Shenzhen",
		Tags:     []string{"embedded", "c", "rtos"},
		Content:  "Flight-adjacent firmware. C on RTOS, hardware bring-up, field debugging.",
	},
}

// Jobs returns curated postings matching a role keyword. An empty role
// returns a random sample of the board; a role that matches nothing returns
// a small random sample instead of an empty list.
func (s *Service) Jobs(role string) []domain.JobPosting {
	role = strings.ToLower(strings.TrimSpace(role))

	var matched []domain.JobPosting
	if role == "" {
		matched = append(matched, curatedPostings...)
	} else {
		for _, p := range curatedPostings {
			if postingMatches(p, role) {
				matched = append(matched, p)
			}
		}
	}

	limit := maxJobResults
	if role != "" && len(matched) == 0 {
		matched = append(matched, curatedPostings...)
		limit = noMatchSampleSize
	}

	s.rng.Shuffle(len(matched), func(i, j int) {
		matched[i], matched[j] = matched[j], matched[i]
	})
	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched
}

func postingMatches(p domain.JobPosting, role string) bool {
	if strings.Contains(strings.ToLower(p.Title), role) {
		return true
	}
	for _, tag := range p.Tags {
		if strings.Contains(strings.ToLower(tag), role) {
			return true
		}
	}
	return false
}

// AnalyzeJD reads between the lines of a job description. A transport
// failure is surfaced; an unreadable payload degrades to a keyword scan so
// the caller still gets something.
func (s *Service) AnalyzeJD(ctx context.Context, jdText string) (*domain.JDAnalysis, error) {
	jdText = strings.TrimSpace(jdText)
	if jdText == "" {
		return nil, fmt.Errorf("jd_text is required")
	}

	raw, err := s.generate(ctx, prompts.AnalyzeJD(jdText))
	if err != nil {
		return nil, fmt.Errorf("jd analysis unavailable: %w", err)
	}

	outcome := extract.Extract(raw, jdAnalysisSchema)
	if !outcome.OK {
		log.Printf("WARN: jd analysis payload unreadable (%s), using keyword scan", outcome.Reason)
		return fallbackJDAnalysis(jdText), nil
	}

	return &domain.JDAnalysis{
		EstimatedSalary:   outcome.String("estimated_salary"),
		TechStackKeywords: outcome.StringList("tech_stack_keywords"),
		RedFlags:          outcome.StringList("red_flags"),
		ResumeTips:        outcome.StringList("resume_tips"),
		DifficultyScore:   clampScore(outcome.Int("difficulty_score")),
		InsiderComment:    outcome.String("insider_comment"),
	}, nil
}

// commonStacks are the technologies the fallback scanner looks for.
var commonStacks = []string{
	"go", "golang", "java", "python", "c++", "rust", "kubernetes", "docker",
	"mysql", "postgresql", "redis", "kafka", "spark", "react", "typescript",
	"aws", "linux", "grpc",
}

func fallbackJDAnalysis(jdText string) *domain.JDAnalysis {
	lower := strings.ToLower(jdText)
	var keywords []string
	for _, stack := range commonStacks {
		if strings.Contains(lower, stack) {
			keywords = append(keywords, stack)
		}
	}
	return &domain.JDAnalysis{
		EstimatedSalary:   "unknown",
		TechStackKeywords: keywords,
		RedFlags:          []string{},
		ResumeTips:        []string{"Mirror the posting's own vocabulary for the technologies you have used."},
		DifficultyScore:   50,
		InsiderComment:    "The analyst choked on this posting; the keyword list above is a plain text scan.",
	}
}
