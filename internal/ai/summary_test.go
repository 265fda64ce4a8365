package ai

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/career-compass/internal/leadership"
	"github.com/spigell/career-compass/internal/matching"
	"github.com/spigell/career-compass/internal/plan"
)

func samplePlan() plan.CareerPlan {
	return plan.CareerPlan{
		EmployeeID: "1",
		TargetRole: "Tech Lead",
		FitScore:   73,
		MissingSkills: []matching.Gap{
			{Skill: "system design", GapScore: 90},
			{Skill: "coaching", GapScore: 80},
			{Skill: "budgeting", GapScore: 70},
			{Skill: "hiring", GapScore: 60},
		},
		RecommendedCourses: []plan.CourseRecommendation{{ID: 101, Title: "Advanced Systems Design", Match: 100}},
		RecommendedMentors: []plan.MentorRecommendation{{ID: "9", Name: "Ana", Match: 80}},
	}
}

func TestTemplateSummary(t *testing.T) {
	got, err := Template{}.Summarize(context.Background(), samplePlan(), leadership.Assessment{Score: 56.3, Level: "Developing"})
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}

	want := "Target role: Tech Lead (fit 73.0%). Top gaps: system design, coaching, budgeting. " +
		"Start with course: Advanced Systems Design. Suggested mentor: Ana. Leadership: Developing (56.3%). " +
		"Next 30/60/90 days: follow milestones in your plan."
	if got != want {
		t.Fatalf("unexpected summary:\n%s\nwant:\n%s", got, want)
	}
}

func TestTemplateSummaryWithoutRecommendations(t *testing.T) {
	got, _ := Template{}.Summarize(context.Background(), plan.CareerPlan{TargetRole: "Analyst", FitScore: 41.5}, leadership.Assessment{})

	want := "Target role: Analyst (fit 41.5%). Next 30/60/90 days: follow milestones in your plan."
	if got != want {
		t.Fatalf("unexpected summary %q", got)
	}
}

type failingSummarizer struct{ err error }

func (f failingSummarizer) Summarize(context.Context, plan.CareerPlan, leadership.Assessment) (string, error) {
	return "", f.err
}

func TestWithFallback(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	s := WithFallback(failingSummarizer{err: errors.New("quota exceeded")}, Template{}, zap.New(core))

	got, err := s.Summarize(context.Background(), samplePlan(), leadership.Assessment{})
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if got == "" {
		t.Fatalf("expected template summary")
	}
	if logs.FilterMessage("summary provider failed, using template summary").Len() != 1 {
		t.Fatalf("expected fallback warning")
	}
}

func TestWithFallbackRespectsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := WithFallback(failingSummarizer{err: context.Canceled}, Template{}, nil)
	if _, err := s.Summarize(ctx, samplePlan(), leadership.Assessment{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation error, got %v", err)
	}
}
