package ranker

import (
	"testing"
	"time"

	"suggest/internal/domain"
)

func fileSet() map[string]domain.File {
	now := time.Now()
	mk := func(id, path string) domain.File {
		return domain.File{ID: id, ProjectID: "proj", Path: path, Name: path, UpdatedAt: now}
	}
	return map[string]domain.File{
		"f-auth":     mk("f-auth", "internal/auth/login.go"),
		"f-test":     mk("f-test", "internal/auth/login_test.go"),
		"f-doc":      mk("f-doc", "docs/auth.md"),
		"f-sql":      mk("f-sql", "migrations/001_users.sql"),
		"f-workflow": mk("f-workflow", ".github/workflows/deploy.yml"),
		"f-vendor":   mk("f-vendor", "vendor/lib/auth.go"),
	}
}

func relFor(ids ...string) []domain.RelevanceScore {
	rel := make([]domain.RelevanceScore, 0, len(ids))
	for i, id := range ids {
		rel = append(rel, domain.RelevanceScore{ItemID: id, Total: 0.8 - float64(i)*0.05})
	}
	return rel
}

func TestRankFiles_PenaltiesUnlessQueryNamesCategory(t *testing.T) {
	c := NewComposite(DefaultBlend())
	files := fileSet()

	ranked := c.RankFiles(files, relFor("f-auth", "f-test"), nil, []string{"auth", "login"})
	if len(ranked) != 2 {
		t.Fatalf("expected 2 results, got %d", len(ranked))
	}
	if ranked[0].ItemID != "f-auth" {
		t.Errorf("test file should be penalized below source file, got %s first", ranked[0].ItemID)
	}

	// Query naming tests lifts the penalty.
	rankedTests := c.RankFiles(files, relFor("f-test", "f-auth"), nil, []string{"auth", "test"})
	var testScore domain.CompositeScore
	for _, r := range rankedTests {
		if r.ItemID == "f-test" {
			testScore = r
		}
	}
	if testScore.Penalty != 0 {
		t.Errorf("penalty should be lifted when query mentions tests, got %f", testScore.Penalty)
	}
}

func TestRankFiles_IgnoreListDropsOutright(t *testing.T) {
	c := NewComposite(DefaultBlend())

	ranked := c.RankFiles(fileSet(), relFor("f-vendor", "f-auth"), nil, []string{"auth"})
	for _, r := range ranked {
		if r.ItemID == "f-vendor" {
			t.Error("vendored file should be dropped by the ignore list")
		}
	}
}

func TestRankFiles_WorkflowSuppressedUnlessNamed(t *testing.T) {
	c := NewComposite(DefaultBlend())
	files := fileSet()

	ranked := c.RankFiles(files, relFor("f-workflow", "f-auth"), nil, []string{"auth"})
	for _, r := range ranked {
		if r.ItemID == "f-workflow" {
			t.Error("workflow file should be suppressed when query does not name CI")
		}
	}

	named := c.RankFiles(files, relFor("f-workflow", "f-auth"), nil, []string{"deploy", "workflow"})
	found := false
	for _, r := range named {
		if r.ItemID == "f-workflow" {
			found = true
		}
	}
	if !found {
		t.Error("workflow file should survive when query names CI")
	}
}

func TestRankFiles_CodeIntentExtraPenalty(t *testing.T) {
	c := NewComposite(DefaultBlend())
	files := fileSet()

	plain := c.RankFiles(files, relFor("f-sql"), nil, []string{"users"})
	intent := c.RankFiles(files, relFor("f-sql"), nil, []string{"users", "service"})

	if len(plain) != 1 || len(intent) != 1 {
		t.Fatal("expected single results")
	}
	if intent[0].Penalty <= plain[0].Penalty {
		t.Errorf("code intent should deepen the SQL penalty: %f vs %f",
			intent[0].Penalty, plain[0].Penalty)
	}
}

func TestRankFiles_FuzzyOnlyCandidatesJoinPool(t *testing.T) {
	c := NewComposite(DefaultBlend())
	files := fileSet()

	fuzzy := map[string]float64{"f-doc": 0.9}
	ranked := c.RankFiles(files, relFor("f-auth"), fuzzy, []string{"auth", "docs"})

	found := false
	for _, r := range ranked {
		if r.ItemID == "f-doc" {
			found = true
			if r.Fuzzy != 0.9 {
				t.Errorf("expected fuzzy score carried through, got %f", r.Fuzzy)
			}
		}
	}
	if !found {
		t.Error("fuzzy-only hit should join the candidate pool")
	}
}

func TestRankFiles_Deterministic(t *testing.T) {
	c := NewComposite(DefaultBlend())
	files := fileSet()
	rel := relFor("f-auth", "f-test", "f-doc", "f-sql")
	fuzzy := map[string]float64{"f-doc": 0.4, "f-auth": 0.6}
	keywords := []string{"auth", "login"}

	first := c.RankFiles(files, rel, fuzzy, keywords)
	for i := 0; i < 5; i++ {
		again := c.RankFiles(files, rel, fuzzy, keywords)
		if len(again) != len(first) {
			t.Fatalf("run %d: length changed", i)
		}
		for j := range first {
			if again[j].ItemID != first[j].ItemID {
				t.Fatalf("run %d: ordering changed at %d: %s vs %s",
					i, j, again[j].ItemID, first[j].ItemID)
			}
		}
	}
}

func TestRankFiles_ScoresClamped(t *testing.T) {
	c := NewComposite(DefaultBlend())
	files := fileSet()

	rel := []domain.RelevanceScore{{ItemID: "f-auth", Total: 1.0, Path: 1.0, Title: 1.0}}
	fuzzy := map[string]float64{"f-auth": 1.0}
	ranked := c.RankFiles(files, rel, fuzzy, []string{"auth", "login", "service", "mcp"})

	for _, r := range ranked {
		if r.Total < 0 || r.Total > 1 {
			t.Errorf("total out of [0,1]: %f", r.Total)
		}
	}
}

func TestRankPrompts_SortedDescending(t *testing.T) {
	c := NewComposite(DefaultBlend())

	rel := []domain.RelevanceScore{
		{ItemID: "p1", Total: 0.3},
		{ItemID: "p2", Total: 0.9},
		{ItemID: "p3", Total: 0.6},
	}
	ranked := c.RankPrompts(rel, nil)

	for i := 1; i < len(ranked); i++ {
		if ranked[i].Total > ranked[i-1].Total {
			t.Errorf("not sorted descending at %d", i)
		}
	}
	if ranked[0].ItemID != "p2" {
		t.Errorf("expected p2 first, got %s", ranked[0].ItemID)
	}
}

func TestPenaltyRule_RuleByRule(t *testing.T) {
	rules := DefaultPenaltyRules()

	cases := []struct {
		rule     string
		path     string
		keywords []string
		want     bool
	}{
		{"tests", "pkg/auth/login_test.go", []string{"auth"}, true},
		{"tests", "pkg/auth/login_test.go", []string{"auth", "test"}, false},
		{"migrations", "db/migrations/001.sql", []string{"users"}, true},
		{"migrations", "db/migrations/001.sql", []string{"migration"}, false},
		{"docs", "docs/guide.md", []string{"auth"}, true},
		{"docs", "docs/guide.md", []string{"readme"}, false},
		{"workflows", ".github/workflows/ci.yml", []string{"auth"}, true},
		{"workflows", ".github/workflows/ci.yml", []string{"deploy"}, false},
	}

	byName := map[string]PenaltyRule{}
	for _, r := range rules {
		byName[r.Name] = r
	}

	for _, c := range cases {
		rule, ok := byName[c.rule]
		if !ok {
			t.Fatalf("missing rule %q", c.rule)
		}
		if got := rule.Applies(c.path, c.keywords); got != c.want {
			t.Errorf("rule %s on %s with %v: expected %v, got %v",
				c.rule, c.path, c.keywords, c.want, got)
		}
	}
}
