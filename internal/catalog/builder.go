package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/career-compass/internal/embedding"
	"github.com/spigell/career-compass/internal/logger"
	"github.com/spigell/career-compass/internal/normalizer"
	"github.com/spigell/career-compass/internal/profile"
)

// CourseSeed is a hand-authored course before embedding.
type CourseSeed struct {
	ID             int      `json:"id" mapstructure:"id"`
	Title          string   `json:"title" mapstructure:"title"`
	Description    string   `json:"description" mapstructure:"description"`
	RequiredSkills []string `json:"required_skills" mapstructure:"required_skills"`
}

// DefaultCourseSeed is the bootstrap course list used when no seed file is configured.
func DefaultCourseSeed() []CourseSeed {
	return []CourseSeed{
		{ID: 101, Title: "Advanced Systems Design", Description: "Patterns, tradeoffs, non-functional requirements", RequiredSkills: []string{"systems design"}},
		{ID: 102, Title: "Stakeholder Management for Engineers", Description: "Influence without authority", RequiredSkills: []string{"stakeholder and partnership management"}},
		{ID: 103, Title: "Optimization in Port Operations", Description: "Routing, scheduling, constraints", RequiredSkills: []string{"optimization", "data analysis"}},
	}
}

// Builder turns source data into embedded catalog records.
type Builder struct {
	embedder embedding.Embedder
	logger   *zap.Logger
}

func NewBuilder(embedder embedding.Embedder, log *zap.Logger) *Builder {
	return &Builder{
		embedder: embedder,
		logger:   logger.WithCommonFields(log, "", embedder.Model()),
	}
}

// BuildRoles builds one role per table row with a non-empty role cell. Role ids
// follow the data row position starting at 1.
func (b *Builder) BuildRoles(ctx context.Context, table Table) ([]Role, error) {
	cols, err := detectRoleColumns(table.Header)
	if err != nil {
		b.logger.Warn("role table is not usable", zap.Error(err))
		return []Role{}, nil
	}

	roles := make([]Role, 0, len(table.Rows))
	texts := make([]string, 0, len(table.Rows))
	for i, row := range table.Rows {
		name := table.Cell(row, cols.role)
		if name == "" {
			continue
		}
		description := ""
		if cols.description >= 0 {
			description = table.Cell(row, cols.description)
		}

		var skills []string
		for _, col := range cols.skills {
			skills = append(skills, splitSkills(table.Cell(row, col))...)
		}
		skills = normalizer.NormalizeList(skills)

		roles = append(roles, Role{
			ID:             i + 1,
			Name:           name,
			Description:    description,
			RequiredSkills: skills,
		})
		texts = append(texts, joinFields(name, description, "required: "+strings.Join(skills, ", ")))
	}

	vectors, err := b.embed(ctx, "roles", texts)
	if err != nil {
		return nil, err
	}
	for i := range roles {
		roles[i].Vector = vectors[i]
		roles[i].Model = b.embedder.Model()
	}

	b.logger.Info("roles built", zap.Int("roles", len(roles)), zap.Int("rows", len(table.Rows)))
	return roles, nil
}

// RolesFromFile reads a role table and builds roles from it. Input that cannot
// be read is logged and yields no roles.
func (b *Builder) RolesFromFile(ctx context.Context, path, sheet string) ([]Role, error) {
	table, err := ReadTable(path, sheet)
	if err != nil {
		b.logger.Warn("role source is not usable, continuing without roles",
			zap.String("path", path),
			zap.Bool("malformed", errors.Is(err, ErrMalformedInput)),
			zap.Error(err),
		)
		return []Role{}, nil
	}
	return b.BuildRoles(ctx, table)
}

func (b *Builder) BuildCourses(ctx context.Context, seeds []CourseSeed) ([]Course, error) {
	courses := make([]Course, 0, len(seeds))
	texts := make([]string, 0, len(seeds))
	for _, s := range seeds {
		skills := normalizer.NormalizeList(s.RequiredSkills)
		courses = append(courses, Course{
			ID:             s.ID,
			Title:          s.Title,
			Description:    s.Description,
			RequiredSkills: skills,
		})
		texts = append(texts, joinFields(s.Title, s.Description, "skills: "+strings.Join(skills, ", ")))
	}

	vectors, err := b.embed(ctx, "courses", texts)
	if err != nil {
		return nil, err
	}
	for i := range courses {
		courses[i].Vector = vectors[i]
		courses[i].Model = b.embedder.Model()
	}

	b.logger.Info("courses built", zap.Int("courses", len(courses)))
	return courses, nil
}

// BuildMentors re-embeds employees from a mentorship text made of name, job
// title and skills. The employee profile vector is not reused.
func (b *Builder) BuildMentors(ctx context.Context, employees []profile.Employee) ([]Mentor, error) {
	mentors := make([]Mentor, 0, len(employees))
	texts := make([]string, 0, len(employees))
	for _, e := range employees {
		skills := normalizer.NormalizeList(e.Skills)
		mentors = append(mentors, Mentor{
			ID:       e.ID,
			Name:     e.Name,
			JobTitle: e.JobTitle,
			Skills:   skills,
		})
		texts = append(texts, joinFields(e.Name, e.JobTitle, "skills: "+strings.Join(skills, ", ")))
	}

	vectors, err := b.embed(ctx, "mentors", texts)
	if err != nil {
		return nil, err
	}
	for i := range mentors {
		mentors[i].Vector = vectors[i]
		mentors[i].Model = b.embedder.Model()
	}

	b.logger.Info("mentors built", zap.Int("mentors", len(mentors)))
	return mentors, nil
}

func (b *Builder) embed(ctx context.Context, kind string, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	vectors, err := b.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed %s: %w", kind, err)
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("embed %s: got %d vectors for %d texts", kind, len(vectors), len(texts))
	}
	return vectors, nil
}

// joinFields joins the non-empty parts with " | ".
func joinFields(parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " | ")
}
