package profile

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"
)

func sampleDoc() map[string]any {
	return map[string]any{
		"employee_id":     json.Number("7"),
		"personal_info":   map[string]any{"name": "Dana Reyes"},
		"employment_info": map[string]any{"job_title": "Data Engineer", "department": "Analytics", "grade": "L4"},
		"skills": []any{
			map[string]any{"skill_name": "Python", "level": "expert"},
			map[string]any{"skill_name": "SQL"},
		},
		"competencies": []any{map[string]any{"name": "Leadership"}},
		"projects":     []any{map[string]any{"description": "Port routing model"}, map[string]any{"description": "Dashboards"}},
	}
}

func TestParse(t *testing.T) {
	raw, err := Parse(sampleDoc())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if raw.ID != "7" {
		t.Fatalf("expected id 7, got %q", raw.ID)
	}
	if raw.Record.EmploymentInfo.JobTitle != "Data Engineer" {
		t.Fatalf("unexpected job title %q", raw.Record.EmploymentInfo.JobTitle)
	}
	if !reflect.DeepEqual(raw.Record.SkillNames(), []string{"Python", "SQL"}) {
		t.Fatalf("unexpected skills %v", raw.Record.SkillNames())
	}
}

func TestParseNumericID(t *testing.T) {
	doc := sampleDoc()
	doc["employee_id"] = float64(20001)

	raw, err := Parse(doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if raw.ID != "20001" {
		t.Fatalf("expected id 20001, got %q", raw.ID)
	}
}

func TestParseRejectsMissingID(t *testing.T) {
	doc := sampleDoc()
	delete(doc, "employee_id")

	if _, err := Parse(doc); err == nil {
		t.Fatal("expected error for profile without id")
	}
	if _, err := Parse(nil); err == nil {
		t.Fatal("expected error for nil document")
	}
}

func TestHashIsOrderIndependentAndChangeAware(t *testing.T) {
	a, _ := Parse(sampleDoc())
	b, _ := Parse(sampleDoc())

	ha, err := a.Hash()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	hb, _ := b.Hash()
	if ha != hb {
		t.Fatalf("expected equal hashes for equal documents")
	}

	changed := sampleDoc()
	changed["employment_info"].(map[string]any)["grade"] = "L5"
	c, _ := Parse(changed)
	hc, _ := c.Hash()
	if hc == ha {
		t.Fatalf("expected hash to change when any field changes")
	}
}

func TestBlob(t *testing.T) {
	raw, _ := Parse(sampleDoc())

	blob := raw.Record.Blob()
	expected := "Data Engineer | Analytics | skills: Python, SQL | competencies: Leadership | projects: Port routing model || Dashboards"
	if blob != expected {
		t.Fatalf("unexpected blob:\n%s\nexpected:\n%s", blob, expected)
	}
}

func TestNewEmployee(t *testing.T) {
	raw, _ := Parse(sampleDoc())
	e := NewEmployee(raw, "abc", []float64{1, 0})

	if e.ID != "7" || e.Name != "Dana Reyes" || e.Department != "Analytics" || e.Hash != "abc" {
		t.Fatalf("unexpected employee: %+v", e)
	}
	if !reflect.DeepEqual(e.Competencies, []string{"Leadership"}) {
		t.Fatalf("unexpected competencies: %v", e.Competencies)
	}
}

func TestDirectory(t *testing.T) {
	d := NewDirectory([]Employee{{ID: "10"}, {ID: "2"}, {ID: "EMP-1"}, {ID: "1"}})

	if got := strings.Join(d.IDs(), ","); got != "1,2,10,EMP-1" {
		t.Fatalf("unexpected id order: %s", got)
	}
	if _, ok := d.Get("2"); !ok {
		t.Fatal("expected employee 2")
	}
	if _, ok := d.Get("3"); ok {
		t.Fatal("did not expect employee 3")
	}
	if d.Len() != 4 {
		t.Fatalf("expected 4 employees, got %d", d.Len())
	}
}
