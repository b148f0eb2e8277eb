package scorer

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"suggest/internal/domain"
)

func TestScorePrompt_SubScoresInRange(t *testing.T) {
	s := NewRelevanceScorer(DefaultPromptWeights())
	now := time.Now()

	p := domain.Prompt{
		ID:        "p1",
		Title:     "Authentication Flow",
		Content:   "How to implement login with JWT tokens and session auth.",
		Tags:      []string{"auth", "backend"},
		UpdatedAt: now.Add(-2 * time.Hour),
	}

	score := s.ScorePrompt(p, []string{"implement", "auth", "login"}, now)

	for name, v := range map[string]float64{
		"title":   score.Title,
		"content": score.Content,
		"tags":    score.Tags,
		"recency": score.Recency,
		"total":   score.Total,
	} {
		if v < 0 || v > 1 {
			t.Errorf("%s score out of range: %f", name, v)
		}
	}

	if score.Total == 0 {
		t.Error("expected non-zero total for a matching prompt")
	}
}

func TestScorePrompt_AuthOutranksUnrelated(t *testing.T) {
	s := NewRelevanceScorer(DefaultPromptWeights())
	now := time.Now()
	keywords := []string{"implement", "auth", "login"}

	auth := s.ScorePrompt(domain.Prompt{
		ID: "auth", Title: "Authentication Flow", Tags: []string{"auth", "backend"},
		Content: "login flows", UpdatedAt: now,
	}, keywords, now)
	testing_ := s.ScorePrompt(domain.Prompt{
		ID: "test", Title: "Unit Testing Guide", Tags: []string{"testing"},
		Content: "how to write unit tests", UpdatedAt: now,
	}, keywords, now)

	if auth.Total <= testing_.Total {
		t.Errorf("auth prompt (%.3f) should outrank testing prompt (%.3f)", auth.Total, testing_.Total)
	}
}

func TestRecencyScore(t *testing.T) {
	now := time.Now()

	cases := []struct {
		name string
		age  time.Duration
		want float64
	}{
		{"within a day", 6 * time.Hour, 1.0},
		{"beyond 30 days", 60 * 24 * time.Hour, 0.5},
	}
	for _, c := range cases {
		got := recencyScore(now.Add(-c.age), now)
		if got != c.want {
			t.Errorf("%s: expected %.2f, got %.2f", c.name, c.want, got)
		}
	}

	// Linear decay lands strictly between the endpoints.
	mid := recencyScore(now.Add(-15*24*time.Hour), now)
	if mid <= 0.5 || mid >= 1.0 {
		t.Errorf("mid-range recency should be in (0.5, 1.0), got %f", mid)
	}

	// Missing timestamp defaults to 0.5.
	if got := recencyScore(time.Time{}, now); got != 0.5 {
		t.Errorf("zero timestamp should score 0.5, got %f", got)
	}
}

func TestPathScore_ExactAndPartial(t *testing.T) {
	exact := PathScore("internal/auth/login.go", []string{"auth", "login"})
	if exact != 1.0 {
		t.Errorf("expected full path credit for exact segment matches, got %f", exact)
	}

	none := PathScore("docs/roadmap.md", []string{"auth", "login"})
	if none >= exact {
		t.Errorf("unrelated path (%f) should score below matching path (%f)", none, exact)
	}
}

func TestContainmentScore_StemPartialCredit(t *testing.T) {
	full := containmentScore("the test harness", []string{"test"})
	partial := containmentScore("testing utilities", []string{"tests"})
	zero := containmentScore("completely unrelated", []string{"zebra"})

	if full != 1.0 {
		t.Errorf("exact containment should score 1.0, got %f", full)
	}
	if partial <= zero || partial >= full {
		t.Errorf("stem match should score between zero and full: got %f", partial)
	}
}

func TestScorePrompt_ContentSampleBounded(t *testing.T) {
	s := NewRelevanceScorer(DefaultPromptWeights())
	now := time.Now()

	// The keyword appears only beyond the sampled window.
	padding := strings.Repeat("x ", promptContentSample)
	late := s.ScorePrompt(domain.Prompt{
		ID: "late", Content: padding + " authentication",
	}, []string{"authentication"}, now)
	early := s.ScorePrompt(domain.Prompt{
		ID: "early", Content: "authentication " + padding,
	}, []string{"authentication"}, now)

	if late.Content != 0 {
		t.Errorf("content beyond the sample window should not score, got %f", late.Content)
	}
	if early.Content == 0 {
		t.Error("content inside the sample window should score")
	}
}

func TestSample_RuneSafe(t *testing.T) {
	text := strings.Repeat("é", 10)
	got := sample(text, 5)
	if !utf8.ValidString(got) {
		t.Errorf("sample split a rune: %q", got)
	}
	if len(got) > 5 {
		t.Errorf("sample exceeded the byte bound: %d", len(got))
	}
	if sample("short", 400) != "short" {
		t.Error("text under the bound should pass through unchanged")
	}
}

func TestScoreFile_ImportsContribute(t *testing.T) {
	s := NewRelevanceScorer(DefaultFileWeights())
	now := time.Now()

	withImports := s.ScoreFile(domain.File{
		ID: "f1", Path: "internal/server/server.go", Name: "server.go",
		Imports: []string{"net/http", "internal/auth"}, UpdatedAt: now,
	}, []string{"auth"}, now)

	withoutImports := s.ScoreFile(domain.File{
		ID: "f2", Path: "internal/server/server.go", Name: "server.go",
		UpdatedAt: now,
	}, []string{"auth"}, now)

	if withImports.Total <= withoutImports.Total {
		t.Errorf("import match should raise the total: %f vs %f", withImports.Total, withoutImports.Total)
	}
}

func TestClamp01(t *testing.T) {
	if Clamp01(1.5) != 1.0 || Clamp01(-0.1) != 0.0 || Clamp01(0.3) != 0.3 {
		t.Error("clamp boundaries wrong")
	}
}
