// Package matching ranks catalog entries against one employee profile.
// Every operation is deterministic for fixed inputs and only reads the
// catalog it is given.
package matching

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/spigell/career-compass/internal/catalog"
	"github.com/spigell/career-compass/internal/embedding"
	"github.com/spigell/career-compass/internal/normalizer"
	"github.com/spigell/career-compass/internal/profile"
)

const (
	similarityWeight = 0.6
	coverageWeight   = 0.3
	titleWeight      = 0.1

	// neededGaps is how many of the largest gaps course matching looks at.
	neededGaps = 4
)

// RoleHit is one ranked role.
type RoleHit struct {
	RoleID        int      `json:"role_id"`
	Role          string   `json:"role"`
	Score         float64  `json:"score"`
	MissingSkills []string `json:"missing_skills"`
}

// Gap is the distance between a profile and one required skill.
type Gap struct {
	Skill    string  `json:"skill"`
	GapScore float64 `json:"gap_score"`
}

type CourseHit struct {
	ID      int      `json:"id"`
	Title   string   `json:"title"`
	Score   float64  `json:"match_score"`
	Matched []string `json:"matched_skills,omitempty"`
}

type MentorHit struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	JobTitle string  `json:"job_title"`
	Score    float64 `json:"match_score"`
}

// Engine scores profiles against catalogs. The embedder is only used for
// short texts (job titles, role names and skills), so wrapping it in an
// embedding.SkillCache avoids repeated calls without changing any score.
type Engine struct {
	embedder embedding.Embedder
}

func NewEngine(embedder embedding.Embedder) *Engine {
	return &Engine{embedder: embedder}
}

// RankRoles scores every role and returns the topK best. Ties keep catalog
// order. A topK of zero or less returns all roles.
func (e *Engine) RankRoles(ctx context.Context, employee profile.Employee, roles []catalog.Role, topK int) ([]RoleHit, error) {
	if len(roles) == 0 {
		return []RoleHit{}, nil
	}
	for _, r := range roles {
		id := fmt.Sprint(r.ID)
		if err := e.sameModel(r.Model, "role", id); err != nil {
			return nil, err
		}
		if err := sameDimension(employee.Vector, r.Vector, "role", id); err != nil {
			return nil, err
		}
	}

	titleSims, err := e.titleSimilarities(ctx, employee.JobTitle, roles)
	if err != nil {
		return nil, err
	}

	owned := normalizer.Set(employee.Skills)

	hits := make([]RoleHit, 0, len(roles))
	for i, r := range roles {
		sim := embedding.Cosine(employee.Vector, r.Vector)

		required := unique(normalizer.NormalizeList(r.RequiredSkills))
		missing := make([]string, 0, len(required))
		for _, s := range required {
			if _, ok := owned[s]; !ok {
				missing = append(missing, s)
			}
		}
		gapRatio := float64(len(missing)) / float64(max(1, len(required)))

		score := similarityWeight*sim + coverageWeight*(1-gapRatio) + titleWeight*titleSims[i]
		hits = append(hits, RoleHit{
			RoleID:        r.ID,
			Role:          r.Name,
			Score:         percent(score),
			MissingSkills: missing,
		})
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	return truncate(hits, topK), nil
}

// SkillGaps measures how far the whole profile vector is from each required
// skill of role, biggest gap first.
func (e *Engine) SkillGaps(ctx context.Context, employee profile.Employee, role catalog.Role, topK int) ([]Gap, error) {
	skills := unique(normalizer.NormalizeList(role.RequiredSkills))
	if len(skills) == 0 {
		return []Gap{}, nil
	}

	vectors, err := e.embedder.EmbedBatch(ctx, skills)
	if err != nil {
		return nil, fmt.Errorf("embed required skills of role %d: %w", role.ID, err)
	}
	if len(vectors) != len(skills) {
		return nil, fmt.Errorf("embed required skills of role %d: got %d vectors for %d skills", role.ID, len(vectors), len(skills))
	}

	gaps := make([]Gap, 0, len(skills))
	for i, s := range skills {
		if err := sameDimension(employee.Vector, vectors[i], "skill", s); err != nil {
			return nil, err
		}
		gaps = append(gaps, Gap{
			Skill:    s,
			GapScore: percent(1 - embedding.Cosine(employee.Vector, vectors[i])),
		})
	}

	sort.SliceStable(gaps, func(i, j int) bool { return gaps[i].GapScore > gaps[j].GapScore })
	return truncate(gaps, topK), nil
}

// TopCoursesForGaps ranks courses by how many of the largest gaps they cover.
func (e *Engine) TopCoursesForGaps(gaps []Gap, courses []catalog.Course, topK int) []CourseHit {
	if len(courses) == 0 {
		return []CourseHit{}
	}

	needed := make(map[string]struct{}, neededGaps)
	for _, g := range gaps[:min(neededGaps, len(gaps))] {
		if skill := normalizer.Normalize(g.Skill); skill != "" {
			needed[skill] = struct{}{}
		}
	}

	hits := make([]CourseHit, 0, len(courses))
	for _, c := range courses {
		var matched []string
		for _, tag := range unique(normalizer.NormalizeList(c.RequiredSkills)) {
			if _, ok := needed[tag]; ok {
				matched = append(matched, tag)
			}
		}
		overlap := float64(len(matched)) / float64(max(1, len(needed)))
		hits = append(hits, CourseHit{
			ID:      c.ID,
			Title:   c.Title,
			Score:   percent(overlap),
			Matched: matched,
		})
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	return truncate(hits, topK)
}

// TopMentors ranks mentors by cosine similarity to the profile.
func (e *Engine) TopMentors(employee profile.Employee, mentors []catalog.Mentor, topK int) ([]MentorHit, error) {
	hits := make([]MentorHit, 0, len(mentors))
	for _, m := range mentors {
		if err := e.sameModel(m.Model, "mentor", m.ID); err != nil {
			return nil, err
		}
		if err := sameDimension(employee.Vector, m.Vector, "mentor", m.ID); err != nil {
			return nil, err
		}
		hits = append(hits, MentorHit{
			ID:       m.ID,
			Name:     m.Name,
			JobTitle: m.JobTitle,
			Score:    percent(embedding.Cosine(employee.Vector, m.Vector)),
		})
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	return truncate(hits, topK), nil
}

// titleSimilarities embeds the job title and every role name in one batch.
// An empty job title has no similarity to anything.
func (e *Engine) titleSimilarities(ctx context.Context, jobTitle string, roles []catalog.Role) ([]float64, error) {
	sims := make([]float64, len(roles))
	if strings.TrimSpace(jobTitle) == "" {
		return sims, nil
	}

	texts := make([]string, 0, len(roles)+1)
	texts = append(texts, jobTitle)
	for _, r := range roles {
		texts = append(texts, r.Name)
	}

	vectors, err := e.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed titles: %w", err)
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("embed titles: got %d vectors for %d texts", len(vectors), len(texts))
	}

	for i := range roles {
		sims[i] = embedding.Cosine(vectors[0], vectors[i+1])
	}
	return sims, nil
}

// sameModel rejects catalog records embedded by a model other than the
// engine's. Records without a model tag are accepted.
func (e *Engine) sameModel(model, kind, id string) error {
	if model == "" || e.embedder == nil || model == e.embedder.Model() {
		return nil
	}
	return fmt.Errorf("%w: %s %s was embedded by %q, engine uses %q",
		embedding.ErrMixedModels, kind, id, model, e.embedder.Model())
}

func sameDimension(profileVector, other []float64, kind, id string) error {
	if len(profileVector) != len(other) {
		return fmt.Errorf("%w: profile has %d dimensions, %s %s has %d",
			embedding.ErrDimensionMismatch, len(profileVector), kind, id, len(other))
	}
	return nil
}

// percent scales a [0, 1] ratio to a score rounded to one decimal and clamped to [0, 100].
func percent(ratio float64) float64 {
	score := math.Round(ratio*1000) / 10
	return math.Max(0, math.Min(100, score))
}

func truncate[T any](items []T, topK int) []T {
	if topK > 0 && len(items) > topK {
		return items[:topK]
	}
	return items
}

func unique(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := items[:0:0]
	for _, s := range items {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
