// Package plan assembles matching results into a career-development plan.
package plan

import (
	"github.com/spigell/career-compass/internal/matching"
	"github.com/spigell/career-compass/internal/profile"
)

type CareerPlan struct {
	EmployeeID         string                 `json:"employee_id"`
	TargetRole         string                 `json:"target_role"`
	FitScore           float64                `json:"fit_score"`
	MissingSkills      []matching.Gap         `json:"missing_skills"`
	RecommendedCourses []CourseRecommendation `json:"recommended_courses"`
	RecommendedMentors []MentorRecommendation `json:"recommended_mentors"`
	Milestones         []Milestone            `json:"milestones"`
}

type CourseRecommendation struct {
	ID    int     `json:"id"`
	Title string  `json:"title"`
	Match float64 `json:"match"`
}

type MentorRecommendation struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Match float64 `json:"match"`
}

type Milestone struct {
	Phase   string   `json:"phase"`
	Focus   string   `json:"focus"`
	Actions []string `json:"actions"`
}

// Milestones returns the fixed 30/60/90 day scaffold attached to every plan.
func Milestones() []Milestone {
	return []Milestone{
		{
			Phase:   "30 days",
			Focus:   "Close top 2 skill gaps",
			Actions: []string{"Enroll in recommended course #1", "Complete 1:1 mentor session"},
		},
		{
			Phase:   "60 days",
			Focus:   "Apply skills in project context",
			Actions: []string{"Volunteer for stretch task", "Update learning log"},
		},
		{
			Phase:   "90 days",
			Focus:   "Show readiness for target role",
			Actions: []string{"Present outcomes to manager"},
		},
	}
}

// Assemble copies the best role as target and projects the ranked lists.
func Assemble(employee profile.Employee, best matching.RoleHit, gaps []matching.Gap, courses []matching.CourseHit, mentors []matching.MentorHit) CareerPlan {
	p := CareerPlan{
		EmployeeID:         employee.ID,
		TargetRole:         best.Role,
		FitScore:           best.Score,
		MissingSkills:      append([]matching.Gap{}, gaps...),
		RecommendedCourses: make([]CourseRecommendation, 0, len(courses)),
		RecommendedMentors: make([]MentorRecommendation, 0, len(mentors)),
		Milestones:         Milestones(),
	}

	for _, c := range courses {
		p.RecommendedCourses = append(p.RecommendedCourses, CourseRecommendation{ID: c.ID, Title: c.Title, Match: c.Score})
	}
	for _, m := range mentors {
		p.RecommendedMentors = append(p.RecommendedMentors, MentorRecommendation{ID: m.ID, Name: m.Name, Match: m.Score})
	}

	return p
}
