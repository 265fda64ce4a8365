// Package orchestrator runs the full matching pipeline for one employee.
package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/spigell/career-compass/internal/ai"
	"github.com/spigell/career-compass/internal/catalog"
	"github.com/spigell/career-compass/internal/leadership"
	"github.com/spigell/career-compass/internal/logger"
	"github.com/spigell/career-compass/internal/lookup"
	"github.com/spigell/career-compass/internal/matching"
	"github.com/spigell/career-compass/internal/plan"
	"github.com/spigell/career-compass/internal/profile"
)

// ErrNoRoles is returned when no role could be ranked for the employee.
var ErrNoRoles = errors.New("no suitable roles found for this profile")

// alternativeRoles is how many runner-up roles are reported next to the target.
const alternativeRoles = 2

// Limits caps the length of each ranked list.
type Limits struct {
	Roles   int
	Gaps    int
	Courses int
	Mentors int
}

func DefaultLimits() Limits {
	return Limits{Roles: 5, Gaps: 6, Courses: 5, Mentors: 3}
}

type Result struct {
	Plan         plan.CareerPlan       `json:"plan"`
	Leadership   leadership.Assessment `json:"leadership"`
	Summary      string                `json:"summary,omitempty"`
	Alternatives []matching.RoleHit    `json:"alternatives"`
}

type Orchestrator struct {
	directory  *profile.Directory
	catalog    *catalog.Catalog
	engine     *matching.Engine
	policy     lookup.Policy
	summarizer ai.Summarizer
	limits     Limits
	logger     *zap.Logger
}

type Option func(*Orchestrator)

func WithSummarizer(s ai.Summarizer) Option {
	return func(o *Orchestrator) { o.summarizer = s }
}

func WithLimits(l Limits) Option {
	return func(o *Orchestrator) { o.limits = l }
}

func WithPolicy(p lookup.Policy) Option {
	return func(o *Orchestrator) { o.policy = p }
}

func New(directory *profile.Directory, cat *catalog.Catalog, engine *matching.Engine, log *zap.Logger, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		directory: directory,
		catalog:   cat,
		engine:    engine,
		policy:    lookup.Strict{},
		limits:    DefaultLimits(),
		logger:    logger.OrNop(log),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run resolves the employee, ranks roles, and builds the plan for the best
// one. Leadership is scored from signals independently of the matching.
func (o *Orchestrator) Run(ctx context.Context, employeeID string, signals leadership.Signals) (*Result, error) {
	id, err := o.policy.Resolve(employeeID, o.directory.IDs())
	if err != nil {
		return nil, err
	}
	employee, ok := o.directory.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", profile.ErrNotFound, id)
	}

	log := o.logger.With(zap.String(logger.FieldEntity, employee.ID))

	hits, err := o.engine.RankRoles(ctx, employee, o.catalog.Roles(), o.limits.Roles)
	if err != nil {
		return nil, fmt.Errorf("rank roles: %w", err)
	}
	if len(hits) == 0 {
		return nil, ErrNoRoles
	}

	best := hits[0]
	target, ok := o.catalog.RoleByID(best.RoleID)
	if !ok {
		return nil, fmt.Errorf("ranked role %d is missing from the catalog", best.RoleID)
	}

	gaps, err := o.engine.SkillGaps(ctx, employee, target, o.limits.Gaps)
	if err != nil {
		return nil, fmt.Errorf("skill gaps: %w", err)
	}
	courses := o.engine.TopCoursesForGaps(gaps, o.catalog.Courses(), o.limits.Courses)
	mentors, err := o.engine.TopMentors(employee, o.catalog.Mentors(), o.limits.Mentors)
	if err != nil {
		return nil, fmt.Errorf("top mentors: %w", err)
	}

	result := &Result{
		Plan:         plan.Assemble(employee, best, gaps, courses, mentors),
		Leadership:   leadership.Score(signals),
		Alternatives: hits[1:min(1+alternativeRoles, len(hits))],
	}

	log.Info("career plan assembled",
		zap.String("target_role", result.Plan.TargetRole),
		zap.Float64("fit_score", result.Plan.FitScore),
		zap.Int("gaps", len(gaps)),
		zap.Int("courses", len(courses)),
		zap.Int("mentors", len(mentors)),
		zap.String("leadership_level", result.Leadership.Level),
	)

	if o.summarizer != nil {
		summary, err := o.summarizer.Summarize(ctx, result.Plan, result.Leadership)
		if err != nil {
			log.Warn("summary unavailable", zap.Error(err))
			summary = fmt.Sprintf("Summary unavailable (%v). Target: %s • Fit %.1f%%",
				err, result.Plan.TargetRole, result.Plan.FitScore)
		}
		result.Summary = summary
	}

	return result, nil
}
