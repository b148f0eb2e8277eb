package analyzer

import (
	"strings"
	"testing"
)

func TestExtract_StopwordRemoval(t *testing.T) {
	e := NewKeywordExtractor()

	keywords := e.Extract("the quick brown fox is jumping")

	for _, kw := range keywords {
		if kw == "the" || kw == "is" {
			t.Errorf("stopword %q should be removed, got %v", kw, keywords)
		}
	}
	if !contains(keywords, "quick") || !contains(keywords, "brown") {
		t.Errorf("expected 'quick' and 'brown' to survive, got %v", keywords)
	}
}

func TestExtract_EmptyInput(t *testing.T) {
	e := NewKeywordExtractor()

	if got := e.Extract(""); len(got) != 0 {
		t.Errorf("expected empty keywords for empty input, got %v", got)
	}
	if got := e.Extract("   \t\n"); len(got) != 0 {
		t.Errorf("expected empty keywords for whitespace input, got %v", got)
	}
}

func TestExtract_GenericTokensStrippedByDefault(t *testing.T) {
	e := NewKeywordExtractor()

	keywords := e.Extract("open the config file")
	if contains(keywords, "file") {
		t.Errorf("'file' should be stripped without intent words, got %v", keywords)
	}
	if !contains(keywords, "config") {
		t.Errorf("expected 'config' to survive, got %v", keywords)
	}
}

func TestExtract_GenericTokensReadmittedWithIntent(t *testing.T) {
	e := NewKeywordExtractor()

	keywords := e.Extract("suggest files for the auth module")
	if !contains(keywords, "files") {
		t.Errorf("'files' should be re-admitted with intent word present, got %v", keywords)
	}
	if !contains(keywords, "suggest") {
		t.Errorf("expected 'suggest' to survive, got %v", keywords)
	}
}

func TestExtract_TypoCorrection(t *testing.T) {
	e := NewKeywordExtractor()

	keywords := e.Extract("serach the databse")
	if !contains(keywords, "search") {
		t.Errorf("expected 'serach' corrected to 'search', got %v", keywords)
	}
	if !contains(keywords, "database") {
		t.Errorf("expected 'databse' corrected to 'database', got %v", keywords)
	}
}

func TestExtract_DeduplicationAndOrder(t *testing.T) {
	e := NewKeywordExtractor()

	keywords := e.Extract("auth login auth token login")
	want := []string{"auth", "login", "token"}
	if len(keywords) != len(want) {
		t.Fatalf("expected %v, got %v", want, keywords)
	}
	for i := range want {
		if keywords[i] != want[i] {
			t.Errorf("position %d: expected %q, got %q", i, want[i], keywords[i])
		}
	}
}

func TestExtract_Cap(t *testing.T) {
	e := NewKeywordExtractor()

	text := strings.Repeat("alpha beta gamma delta epsilon zeta eta theta iota kappa ", 3) +
		"lambda omicron sigma upsilon omega zephyr quartz"
	keywords := e.Extract(text)
	if len(keywords) > maxKeywords {
		t.Errorf("expected at most %d keywords, got %d: %v", maxKeywords, len(keywords), keywords)
	}
}

func TestStem(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"testing", "test"},
		{"tests", "test"},
		{"migrations", "migr"},
		{"auth", "auth"},
	}
	for _, c := range cases {
		if got := Stem(c.in); got != c.want {
			t.Errorf("Stem(%q) = %q, want %q", c.in, got, c.want)
		}
	}

	if !StemMatch("testing", "tests") {
		t.Error("expected 'testing' and 'tests' to share a stem")
	}
}

func contains(list []string, want string) bool {
	for _, s := range list {
		if s == want {
			return true
		}
	}
	return false
}
