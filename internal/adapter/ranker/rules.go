package ranker

import (
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// PenaltyRule is one tagged file-type penalty: paths matching any
// pattern are penalized by Weight unless the query carries one of the
// override keywords. Rules are data so they can be tested rule by rule.
type PenaltyRule struct {
	Name      string
	Patterns  []string // lowercase path substrings
	Overrides []string // query keywords that lift the penalty
	Weight    float64
	// CodeIntentExtra is added on top when the query signals clear code
	// intent; borderline docs and SQL drop further in that case.
	CodeIntentExtra float64
}

// DefaultPenaltyRules is the canonical rule set. The richer variant of
// the two historical tables was kept: it carries the workflow
// suppression and the code-intent extra penalties.
func DefaultPenaltyRules() []PenaltyRule {
	return []PenaltyRule{
		{
			Name:      "tests",
			Patterns:  []string{"_test.", ".test.", ".spec.", "/test/", "/tests/", "/e2e/", "/__tests__/"},
			Overrides: []string{"test", "tests", "testing", "spec", "e2e"},
			Weight:    0.25,
		},
		{
			Name:            "migrations",
			Patterns:        []string{".sql", "/migrations/", "/migration/"},
			Overrides:       []string{"db", "sql", "database", "migration", "migrations", "schema"},
			Weight:          0.25,
			CodeIntentExtra: 0.10,
		},
		{
			Name:            "docs",
			Patterns:        []string{".md", ".rst", "/docs/", "/doc/"},
			Overrides:       []string{"doc", "docs", "documentation", "readme"},
			Weight:          0.20,
			CodeIntentExtra: 0.10,
		},
		{
			Name:      "workflows",
			Patterns:  []string{".github/workflows/", ".gitlab-ci", "jenkinsfile", ".circleci/"},
			Overrides: []string{"workflow", "workflows", "ci", "cd", "deploy", "release", "github"},
			Weight:    0.30,
		},
	}
}

// Applies reports whether the rule penalizes this path under this
// keyword set.
func (r PenaltyRule) Applies(path string, keywords []string) bool {
	if !r.matchesPath(path) {
		return false
	}
	return !hasAny(keywords, r.Overrides)
}

func (r PenaltyRule) matchesPath(path string) bool {
	lower := strings.ToLower(path)
	for _, p := range r.Patterns {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

// DefaultIgnoreGlobs drop candidates outright: build output, dependency
// directories, logs and temp files.
func DefaultIgnoreGlobs() []string {
	return []string{
		"**/node_modules/**",
		"**/vendor/**",
		"**/dist/**",
		"**/build/**",
		"**/.git/**",
		"**/__pycache__/**",
		"**/*.min.js",
		"**/*.log",
		"**/*.tmp",
		"**/.DS_Store",
	}
}

// SuppressRule drops a candidate entirely unless the query names its
// category. Currently only CI workflow files are suppressed this way.
type SuppressRule struct {
	Name      string
	Patterns  []string
	Overrides []string
}

func DefaultSuppressRules() []SuppressRule {
	return []SuppressRule{
		{
			Name:      "ci-workflows",
			Patterns:  []string{".github/workflows/"},
			Overrides: []string{"workflow", "workflows", "ci", "deploy", "release", "github"},
		},
	}
}

// Applies reports whether the candidate should be suppressed.
func (r SuppressRule) Applies(path string, keywords []string) bool {
	lower := strings.ToLower(path)
	matched := false
	for _, p := range r.Patterns {
		if strings.Contains(lower, p) {
			matched = true
			break
		}
	}
	if !matched {
		return false
	}
	return !hasAny(keywords, r.Overrides)
}

// codeIntentWords signal the user is after implementation code.
var codeIntentWords = []string{
	"feature", "route", "routes", "api", "service", "handler",
	"endpoint", "controller", "component", "implement", "function",
	"method", "middleware", "hook",
}

// codeLocationDirs are recognized source roots for the binary
// code-location boost.
var codeLocationDirs = []string{
	"src/", "internal/", "lib/", "pkg/", "app/", "server/",
	"packages/", "services/", "api/",
}

// DomainBoostRule gives extra credit when the query names a domain the
// path clearly belongs to.
type DomainBoostRule struct {
	Name     string
	Keywords []string
	Segments []string
	Weight   float64
}

func DefaultDomainBoostRules() []DomainBoostRule {
	return []DomainBoostRule{
		{
			Name:     "mcp",
			Keywords: []string{"mcp"},
			Segments: []string{"mcp", "model-context"},
			Weight:   0.15,
		},
		{
			Name:     "workflow",
			Keywords: []string{"workflow", "workflows"},
			Segments: []string{"workflow", "workflows", ".github"},
			Weight:   0.10,
		},
	}
}

func hasCodeIntent(keywords []string) bool {
	return hasAny(keywords, codeIntentWords)
}

func underCodeLocation(path string) bool {
	lower := strings.ToLower(path)
	for _, dir := range codeLocationDirs {
		if strings.HasPrefix(lower, dir) || strings.Contains(lower, "/"+dir) {
			return true
		}
	}
	return false
}

func matchesIgnoreGlob(path string, globs []string) bool {
	for _, g := range globs {
		if ok, err := doublestar.Match(g, path); err == nil && ok {
			return true
		}
	}
	return false
}

func hasAny(keywords, wants []string) bool {
	for _, kw := range keywords {
		for _, w := range wants {
			if kw == w {
				return true
			}
		}
	}
	return false
}
