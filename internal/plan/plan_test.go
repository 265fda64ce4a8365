package plan

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/spigell/career-compass/internal/matching"
	"github.com/spigell/career-compass/internal/profile"
)

func TestAssemble(t *testing.T) {
	p := Assemble(
		profile.Employee{ID: "12"},
		matching.RoleHit{RoleID: 3, Role: "Tech Lead", Score: 73},
		[]matching.Gap{{Skill: "system design", GapScore: 81.2}},
		[]matching.CourseHit{{ID: 101, Title: "Advanced Systems Design", Score: 100, Matched: []string{"systems design"}}},
		[]matching.MentorHit{{ID: "7", Name: "Ana", JobTitle: "Architect", Score: 64.5}},
	)

	if p.EmployeeID != "12" || p.TargetRole != "Tech Lead" || p.FitScore != 73 {
		t.Fatalf("unexpected plan header %+v", p)
	}
	if len(p.RecommendedCourses) != 1 || p.RecommendedCourses[0] != (CourseRecommendation{ID: 101, Title: "Advanced Systems Design", Match: 100}) {
		t.Fatalf("unexpected courses %+v", p.RecommendedCourses)
	}
	if len(p.RecommendedMentors) != 1 || p.RecommendedMentors[0] != (MentorRecommendation{ID: "7", Name: "Ana", Match: 64.5}) {
		t.Fatalf("unexpected mentors %+v", p.RecommendedMentors)
	}

	phases := make([]string, 0, len(p.Milestones))
	for _, m := range p.Milestones {
		phases = append(phases, m.Phase)
	}
	if strings.Join(phases, ",") != "30 days,60 days,90 days" {
		t.Fatalf("unexpected milestones %v", phases)
	}
}

func TestAssembleEmptyListsEncodeAsArrays(t *testing.T) {
	p := Assemble(profile.Employee{ID: "1"}, matching.RoleHit{Role: "Analyst"}, nil, nil, nil)

	data, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	for _, key := range []string{`"missing_skills":[]`, `"recommended_courses":[]`, `"recommended_mentors":[]`} {
		if !strings.Contains(string(data), key) {
			t.Fatalf("expected %s in %s", key, data)
		}
	}
}

func TestMilestonesAreIndependentCopies(t *testing.T) {
	first := Milestones()
	first[0].Actions[0] = "changed"

	if Milestones()[0].Actions[0] != "Enroll in recommended course #1" {
		t.Fatalf("milestone scaffold must not be shared")
	}
}
