// Package catalog builds, persists and loads the reference indices the
// matching engine ranks against: target roles, courses and mentors.
package catalog

import (
	"errors"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/spigell/career-compass/internal/logger"
)

const (
	RolesFile   = "index_roles.json"
	CoursesFile = "index_courses.json"
	MentorsFile = "index_mentors.json"
)

// ErrMalformedInput marks source data the builder could not interpret.
var ErrMalformedInput = errors.New("malformed catalog input")

// Role is a target position an employee may move into.
type Role struct {
	ID             int       `json:"id"`
	Name           string    `json:"role"`
	Description    string    `json:"description"`
	RequiredSkills []string  `json:"required_skills"`
	Vector         []float64 `json:"vector"`
	Model          string    `json:"model,omitempty"`
}

// Course is a training course tagged with the skills it develops.
type Course struct {
	ID             int       `json:"id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	RequiredSkills []string  `json:"required_skills"`
	Vector         []float64 `json:"vector"`
	Model          string    `json:"model,omitempty"`
}

// Mentor is an employee eligible to mentor others.
type Mentor struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	JobTitle string    `json:"job_title"`
	Skills   []string  `json:"skills"`
	Bio      string    `json:"bio"`
	Vector   []float64 `json:"vector"`
	Model    string    `json:"model,omitempty"`
}

// Catalog holds the three indices. It is built once and only read afterwards.
type Catalog struct {
	roles     []Role
	courses   []Course
	mentors   []Mentor
	roleIndex map[int]int
}

func New(roles []Role, courses []Course, mentors []Mentor) *Catalog {
	c := &Catalog{
		roles:     roles,
		courses:   courses,
		mentors:   mentors,
		roleIndex: make(map[int]int, len(roles)),
	}
	for i, r := range roles {
		if _, seen := c.roleIndex[r.ID]; !seen {
			c.roleIndex[r.ID] = i
		}
	}
	return c
}

// Roles returns the role index in catalog order. Callers must not modify it.
func (c *Catalog) Roles() []Role { return c.roles }

func (c *Catalog) Courses() []Course { return c.courses }

func (c *Catalog) Mentors() []Mentor { return c.mentors }

func (c *Catalog) RoleByID(id int) (Role, bool) {
	i, ok := c.roleIndex[id]
	if !ok {
		return Role{}, false
	}
	return c.roles[i], true
}

// Load reads the indices from dir. Missing files give empty indices, and
// records that cannot be compared with vectors of model are dropped. An empty
// model disables the model check.
func Load(dir, model string, log *zap.Logger) (*Catalog, error) {
	log = logger.WithCommonFields(log, "", model)

	roles, err := LoadIndex[Role](filepath.Join(dir, RolesFile))
	if err != nil {
		return nil, err
	}
	courses, err := LoadIndex[Course](filepath.Join(dir, CoursesFile))
	if err != nil {
		return nil, err
	}
	mentors, err := LoadIndex[Mentor](filepath.Join(dir, MentorsFile))
	if err != nil {
		return nil, err
	}

	roles = validate(log, "roles", roles, roleEntry, model)
	courses = validate(log, "courses", courses, courseEntry, model)
	mentors = validate(log, "mentors", mentors, mentorEntry, model)

	for name, size := range map[string]int{"roles": len(roles), "courses": len(courses), "mentors": len(mentors)} {
		if size == 0 {
			log.Warn("catalog is empty, recommendations will be degraded", zap.String("catalog", name))
		}
	}

	return New(roles, courses, mentors), nil
}

// Save writes the three indices into dir.
func (c *Catalog) Save(dir string) error {
	if err := SaveIndex(filepath.Join(dir, RolesFile), c.roles); err != nil {
		return fmt.Errorf("save roles: %w", err)
	}
	if err := SaveIndex(filepath.Join(dir, CoursesFile), c.courses); err != nil {
		return fmt.Errorf("save courses: %w", err)
	}
	if err := SaveIndex(filepath.Join(dir, MentorsFile), c.mentors); err != nil {
		return fmt.Errorf("save mentors: %w", err)
	}
	return nil
}
