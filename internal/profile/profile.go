// Package profile holds the employee records the matching engine works on:
// the raw source shape, its typed view, and the processed Employee.
package profile

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// ErrNotFound is returned when a referenced employee does not exist.
var ErrNotFound = errors.New("employee not found")

// Record is the typed view of one raw profile as delivered by the profile source.
type Record struct {
	EmployeeID     string         `mapstructure:"employee_id"`
	PersonalInfo   PersonalInfo   `mapstructure:"personal_info"`
	EmploymentInfo EmploymentInfo `mapstructure:"employment_info"`
	Skills         []Skill        `mapstructure:"skills"`
	Competencies   []Competency   `mapstructure:"competencies"`
	Projects       []Project      `mapstructure:"projects"`
}

type PersonalInfo struct {
	Name string `mapstructure:"name"`
}

type EmploymentInfo struct {
	JobTitle   string `mapstructure:"job_title"`
	Department string `mapstructure:"department"`
}

type Skill struct {
	SkillName string `mapstructure:"skill_name"`
}

type Competency struct {
	Name string `mapstructure:"name"`
}

type Project struct {
	Description string `mapstructure:"description"`
}

// Raw keeps the untouched source document next to its typed view.
// The document is what the content hash covers.
type Raw struct {
	ID       string
	Document map[string]any
	Record   Record
}

// Parse validates a raw source document and decodes its typed view.
func Parse(doc map[string]any) (Raw, error) {
	if doc == nil {
		return Raw{}, errors.New("profile document is empty")
	}

	var rec Record
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &rec,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return Raw{}, fmt.Errorf("create profile decoder: %w", err)
	}

	if err := decoder.Decode(doc); err != nil {
		return Raw{}, fmt.Errorf("decode profile: %w", err)
	}

	rec.EmployeeID = strings.TrimSpace(rec.EmployeeID)
	if rec.EmployeeID == "" {
		return Raw{}, errors.New("profile has no employee_id")
	}

	return Raw{ID: rec.EmployeeID, Document: doc, Record: rec}, nil
}

// Hash digests the canonical JSON form of the source document. Map keys are
// serialized in sorted order, so the digest does not depend on key order.
func (r Raw) Hash() (string, error) {
	content, err := json.Marshal(r.Document)
	if err != nil {
		return "", fmt.Errorf("canonicalize profile %s: %w", r.ID, err)
	}
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:]), nil
}

// Blob renders the fields that describe the employee's role fit as one text.
func (r Record) Blob() string {
	return strings.Join([]string{
		strings.TrimSpace(r.EmploymentInfo.JobTitle),
		strings.TrimSpace(r.EmploymentInfo.Department),
		"skills: " + strings.Join(r.SkillNames(), ", "),
		"competencies: " + strings.Join(r.CompetencyNames(), ", "),
		"projects: " + strings.Join(r.ProjectDescriptions(), " || "),
	}, " | ")
}

func (r Record) SkillNames() []string {
	out := make([]string, 0, len(r.Skills))
	for _, s := range r.Skills {
		out = append(out, s.SkillName)
	}
	return out
}

func (r Record) CompetencyNames() []string {
	out := make([]string, 0, len(r.Competencies))
	for _, c := range r.Competencies {
		out = append(out, c.Name)
	}
	return out
}

func (r Record) ProjectDescriptions() []string {
	out := make([]string, 0, len(r.Projects))
	for _, p := range r.Projects {
		out = append(out, p.Description)
	}
	return out
}

// Employee is one worker's matchable profile.
type Employee struct {
	ID           string    `json:"employee_id"`
	Name         string    `json:"name"`
	JobTitle     string    `json:"job_title"`
	Department   string    `json:"department"`
	Skills       []string  `json:"skills"`
	Competencies []string  `json:"competencies"`
	Projects     []string  `json:"projects,omitempty"`
	Vector       []float64 `json:"vector"`
	Hash         string    `json:"hash,omitempty"`
}

// NewEmployee combines a raw profile with the vector computed for it.
func NewEmployee(raw Raw, hash string, vector []float64) Employee {
	return Employee{
		ID:           raw.ID,
		Name:         raw.Record.PersonalInfo.Name,
		JobTitle:     raw.Record.EmploymentInfo.JobTitle,
		Department:   raw.Record.EmploymentInfo.Department,
		Skills:       raw.Record.SkillNames(),
		Competencies: raw.Record.CompetencyNames(),
		Projects:     raw.Record.ProjectDescriptions(),
		Vector:       vector,
		Hash:         hash,
	}
}
