// Package ai turns a finished career plan into a short human-readable summary.
package ai

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/career-compass/internal/leadership"
	"github.com/spigell/career-compass/internal/logger"
	"github.com/spigell/career-compass/internal/plan"
)

// Summarizer describes a plan and its leadership assessment in prose.
type Summarizer interface {
	Summarize(ctx context.Context, p plan.CareerPlan, a leadership.Assessment) (string, error)
}

// Template renders a fixed-form summary from the plan fields. It never fails.
type Template struct{}

func (Template) Summarize(_ context.Context, p plan.CareerPlan, a leadership.Assessment) (string, error) {
	lines := []string{fmt.Sprintf("Target role: %s (fit %s%%).", p.TargetRole, formatScore(p.FitScore))}

	if len(p.MissingSkills) > 0 {
		top := make([]string, 0, 3)
		for _, g := range p.MissingSkills[:min(3, len(p.MissingSkills))] {
			top = append(top, g.Skill)
		}
		lines = append(lines, fmt.Sprintf("Top gaps: %s.", strings.Join(top, ", ")))
	}
	if len(p.RecommendedCourses) > 0 {
		lines = append(lines, fmt.Sprintf("Start with course: %s.", p.RecommendedCourses[0].Title))
	}
	if len(p.RecommendedMentors) > 0 {
		lines = append(lines, fmt.Sprintf("Suggested mentor: %s.", p.RecommendedMentors[0].Name))
	}
	if a.Level != "" {
		lines = append(lines, fmt.Sprintf("Leadership: %s (%s%%).", a.Level, formatScore(a.Score)))
	}
	lines = append(lines, "Next 30/60/90 days: follow milestones in your plan.")

	return strings.Join(lines, " "), nil
}

// WithFallback uses primary and switches to fallback when primary fails.
func WithFallback(primary, fallback Summarizer, log *zap.Logger) Summarizer {
	return &fallbackSummarizer{primary: primary, fallback: fallback, logger: logger.OrNop(log)}
}

type fallbackSummarizer struct {
	primary  Summarizer
	fallback Summarizer
	logger   *zap.Logger
}

func (f *fallbackSummarizer) Summarize(ctx context.Context, p plan.CareerPlan, a leadership.Assessment) (string, error) {
	summary, err := f.primary.Summarize(ctx, p, a)
	if err == nil {
		return summary, nil
	}
	if ctx.Err() != nil {
		return "", err
	}

	f.logger.Warn("summary provider failed, using template summary",
		zap.String(logger.FieldEntity, p.EmployeeID),
		zap.Error(err),
	)
	return f.fallback.Summarize(ctx, p, a)
}

// formatScore prints a one-decimal score the way plans present it.
func formatScore(score float64) string {
	return fmt.Sprintf("%.1f", score)
}
