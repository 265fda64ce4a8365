package source

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"go.uber.org/zap"
)

const profilesJSON = `[
  {"employee_id": 1, "personal_info": {"name": "Ana"}, "employment_info": {"job_title": "Analyst", "department": "Ops"},
   "skills": [{"skill_name": "SQL"}], "competencies": [], "projects": []},
  {"employee_id": "EMP-2", "employment_info": {"job_title": "Engineer"}}
]`

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles.json")
	if err := os.WriteFile(path, []byte(profilesJSON), 0o644); err != nil {
		t.Fatalf("write profiles: %v", err)
	}

	raws, err := Load(context.Background(), path, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(raws) != 2 {
		t.Fatalf("expected 2 profiles, got %d", len(raws))
	}
	if raws[0].ID != "1" || raws[1].ID != "EMP-2" {
		t.Fatalf("unexpected ids: %q %q", raws[0].ID, raws[1].ID)
	}
	if raws[0].Record.PersonalInfo.Name != "Ana" {
		t.Fatalf("unexpected name %q", raws[0].Record.PersonalInfo.Name)
	}
}

func TestLoadFileErrors(t *testing.T) {
	dir := t.TempDir()

	if _, err := LoadFile(filepath.Join(dir, "missing.json")); err == nil {
		t.Fatal("expected error for missing file")
	}

	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte(`[{"personal_info": {}}]`), 0o644); err != nil {
		t.Fatalf("write profiles: %v", err)
	}
	if _, err := LoadFile(bad); err == nil {
		t.Fatal("expected error for profile without id")
	}

	if _, err := Load(context.Background(), "  ", nil); err == nil {
		t.Fatal("expected error for empty location")
	}
}

func TestClientFetchPaginatesAndDecompresses(t *testing.T) {
	var tokens []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokens = append(tokens, r.Header.Get("Authorization"))

		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		body := map[string]any{
			"items": []map[string]any{{"employee_id": fmt.Sprintf("%d", page+1)}},
			"page":  page,
			"pages": 3,
		}

		if page == 1 {
			w.Header().Set("Content-Encoding", "gzip")
			gz := gzip.NewWriter(w)
			defer gz.Close()
			_ = json.NewEncoder(gz).Encode(body)
			return
		}
		_ = json.NewEncoder(w).Encode(body)
	}))
	defer srv.Close()

	client := New(context.Background(), zap.NewNop(), "secret")
	raws, err := Load(context.Background(), srv.URL+"/employees", client)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(raws) != 3 {
		t.Fatalf("expected 3 profiles, got %d", len(raws))
	}
	for i, raw := range raws {
		if raw.ID != strconv.Itoa(i+1) {
			t.Fatalf("unexpected id at %d: %q", i, raw.ID)
		}
	}
	for _, token := range tokens {
		if token != "Bearer secret" {
			t.Fatalf("unexpected authorization header %q", token)
		}
	}
}

func TestClientFetchBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer srv.Close()

	client := New(context.Background(), zap.NewNop(), "")
	if _, err := client.Fetch(srv.URL); err == nil {
		t.Fatal("expected error on bad status")
	}
}
