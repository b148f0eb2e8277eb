package store

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"suggest/internal/domain"
)

func newTestStore(t *testing.T) *BoltStore {
	t.Helper()
	st, err := NewBoltStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func TestProjectRoundtrip(t *testing.T) {
	st := newTestStore(t)

	p := domain.Project{ID: "proj1", Name: "demo", RootDir: "/tmp/demo", CreatedAt: time.Now()}
	if err := st.PutProject(p); err != nil {
		t.Fatal(err)
	}

	got, err := st.GetProject("proj1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "demo" || got.RootDir != "/tmp/demo" {
		t.Errorf("unexpected project: %+v", got)
	}
}

func TestGetProject_NotFound(t *testing.T) {
	st := newTestStore(t)

	_, err := st.GetProject("missing")
	if !errors.Is(err, domain.ErrProjectNotFound) {
		t.Errorf("expected ErrProjectNotFound, got %v", err)
	}
}

func TestFilesPerProjectIsolation(t *testing.T) {
	st := newTestStore(t)

	now := time.Now()
	files := []domain.File{
		{ID: "f1", ProjectID: "a", Path: "main.go", Name: "main.go", UpdatedAt: now},
		{ID: "f2", ProjectID: "a", Path: "util.go", Name: "util.go", UpdatedAt: now},
		{ID: "f3", ProjectID: "b", Path: "other.go", Name: "other.go", UpdatedAt: now},
	}
	for _, f := range files {
		if err := st.PutFile(f); err != nil {
			t.Fatal(err)
		}
	}

	a, err := st.ListFiles("a")
	if err != nil {
		t.Fatal(err)
	}
	if len(a) != 2 {
		t.Errorf("expected 2 files for project a, got %d", len(a))
	}

	if err := st.DeleteFilesByProject("a"); err != nil {
		t.Fatal(err)
	}
	a, _ = st.ListFiles("a")
	if len(a) != 0 {
		t.Errorf("expected project a cleared, got %d files", len(a))
	}
	b, _ := st.ListFiles("b")
	if len(b) != 1 {
		t.Errorf("project b should be untouched, got %d files", len(b))
	}
}

func TestPromptRoundtrip(t *testing.T) {
	st := newTestStore(t)

	p := domain.Prompt{
		ID: "p1", ProjectID: "a", Title: "Authentication Flow",
		Tags: []string{"auth", "backend"}, UpdatedAt: time.Now(),
	}
	if err := st.PutPrompt(p); err != nil {
		t.Fatal(err)
	}

	prompts, err := st.ListPrompts("a")
	if err != nil {
		t.Fatal(err)
	}
	if len(prompts) != 1 || prompts[0].Title != "Authentication Flow" {
		t.Errorf("unexpected prompts: %+v", prompts)
	}
	if len(prompts[0].Tags) != 2 {
		t.Errorf("tags lost in roundtrip: %v", prompts[0].Tags)
	}
}
