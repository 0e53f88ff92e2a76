package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestJobsFilterByRole(t *testing.T) {
	svc := newTestService(t, &scriptedLLM{responses: []string{""}}, 0)

	jobs := svc.Jobs("go")
	require.NotEmpty(t, jobs)
	for _, j := range jobs {
		match := strings.Contains(strings.ToLower(j.Title), "go")
		for _, tag := range j.Tags {
			if strings.Contains(strings.ToLower(tag), "go") {
				match = true
			}
		}
		require.True(t, match, "posting %s/%s does not match role", j.Company, j.Title)
	}

	all := svc.Jobs("")
	require.NotEmpty(t, all)
	require.LessOrEqual(t, len(all), maxJobResults)
}

func TestJobsNoMatchReturnsSample(t *testing.T) {
	svc := newTestService(t, &scriptedLLM{responses: []string{""}}, 0)

	// Nothing on the board mentions this role; the user still gets a
	// taste of the feed instead of an empty page.
	jobs := svc.Jobs("cobol")
	require.Len(t, jobs, noMatchSampleSize)
	for _, j := range jobs {
		require.NotEmpty(t, j.Company)
		require.NotEmpty(t, j.Title)
	}
}

func TestAnalyzeJD(t *testing.T) {
	stub := &scriptedLLM{responses: []string{"```json\n" + `{
		"estimated_salary": "30-50k/mo",
		"tech_stack_keywords": ["go", "kubernetes", "mysql"],
		"red_flags": ["\"flexible hours\" appears twice"],
		"resume_tips": ["Lead with the Kubernetes migration.", "Quantify throughput work.", "Name the on-call load you carried."],
		"difficulty_score": 65,
		"insider_comment": "Infra team with real scale; expect deep follow-ups."
	}` + "\n```"}}
	svc := newTestService(t, stub, 0)

	analysis, err := svc.AnalyzeJD(context.Background(), "We need a Go engineer comfortable with Kubernetes and MySQL at scale.")
	require.NoError(t, err)
	require.Equal(t, "30-50k/mo", analysis.EstimatedSalary)
	require.Equal(t, []string{"go", "kubernetes", "mysql"}, analysis.TechStackKeywords)
	require.Equal(t, 65, analysis.DifficultyScore)
	require.Len(t, analysis.ResumeTips, 3)
}

func TestAnalyzeJDFallsBackToKeywordScan(t *testing.T) {
	stub := &scriptedLLM{responses: []string{"That looks like a fine job, good luck!"}}
	svc := newTestService(t, stub, 0)

	analysis, err := svc.AnalyzeJD(context.Background(), "Looking for Kubernetes and MySQL experience, Python a plus.")
	require.NoError(t, err)
	require.Contains(t, analysis.TechStackKeywords, "kubernetes")
	require.Contains(t, analysis.TechStackKeywords, "mysql")
	require.Contains(t, analysis.TechStackKeywords, "python")
}

func TestAnalyzeJDRequiresText(t *testing.T) {
	svc := newTestService(t, &scriptedLLM{responses: []string{""}}, 0)
	_, err := svc.AnalyzeJD(context.Background(), "   ")
	require.Error(t, err)
}
