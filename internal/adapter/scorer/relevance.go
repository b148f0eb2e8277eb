package scorer

import (
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"suggest/internal/adapter/analyzer"
	"suggest/internal/domain"
)

// promptContentSample bounds how much prompt content the substring test
// inspects. File content is scored in full.
const promptContentSample = 400

// Weights is the sub-score weight vector for one strategy. Weights sum
// to at most 1 so the total stays in [0,1] without rescaling.
type Weights struct {
	Title   float64 `yaml:"title"`
	Content float64 `yaml:"content"`
	Tags    float64 `yaml:"tags"`
	Path    float64 `yaml:"path"`
	Recency float64 `yaml:"recency"`
	Imports float64 `yaml:"imports"`
}

// DefaultPromptWeights weight title and tags heavily; prompts have no
// path or import signal.
func DefaultPromptWeights() Weights {
	return Weights{
		Title:   0.40,
		Content: 0.25,
		Tags:    0.20,
		Recency: 0.15,
	}
}

// DefaultFileWeights lean on path and name, the strongest signals for
// code files.
func DefaultFileWeights() Weights {
	return Weights{
		Title:   0.25,
		Content: 0.20,
		Path:    0.30,
		Recency: 0.10,
		Imports: 0.15,
	}
}

// RelevanceScorer computes independent heuristic sub-scores per
// candidate, stateless across calls.
type RelevanceScorer struct {
	weights Weights
}

func NewRelevanceScorer(weights Weights) *RelevanceScorer {
	return &RelevanceScorer{weights: weights}
}

// ScorePrompt scores one prompt against the extracted keywords.
func (s *RelevanceScorer) ScorePrompt(p domain.Prompt, keywords []string, now time.Time) domain.RelevanceScore {
	score := domain.RelevanceScore{
		ItemID:  p.ID,
		Title:   keywordFraction(p.Title, keywords),
		Content: containmentScore(sample(p.Content, promptContentSample), keywords),
		Tags:    tagScore(p.Tags, keywords),
		Recency: recencyScore(p.UpdatedAt, now),
	}
	score.Total = s.total(score)
	return score
}

// ScoreFile scores one file against the extracted keywords.
func (s *RelevanceScorer) ScoreFile(f domain.File, keywords []string, now time.Time) domain.RelevanceScore {
	score := domain.RelevanceScore{
		ItemID:  f.ID,
		Title:   keywordFraction(f.Name, keywords),
		Content: containmentScore(f.Content, keywords),
		Path:    PathScore(f.Path, keywords),
		Recency: recencyScore(f.UpdatedAt, now),
		Imports: importScore(f.Imports, keywords),
	}
	score.Total = s.total(score)
	return score
}

func (s *RelevanceScorer) total(sc domain.RelevanceScore) float64 {
	total := s.weights.Title*sc.Title +
		s.weights.Content*sc.Content +
		s.weights.Tags*sc.Tags +
		s.weights.Path*sc.Path +
		s.weights.Recency*sc.Recency +
		s.weights.Imports*sc.Imports
	return Clamp01(total)
}

// keywordFraction is the fraction of keywords present as substrings of
// the (lowercased) text.
func keywordFraction(text string, keywords []string) float64 {
	if len(keywords) == 0 || text == "" {
		return 0
	}
	lower := strings.ToLower(text)
	hits := 0
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			hits++
		}
	}
	return Clamp01(float64(hits) / float64(len(keywords)))
}

// containmentScore extends the substring test with half credit for
// stem-approximate containment.
func containmentScore(text string, keywords []string) float64 {
	if len(keywords) == 0 || text == "" {
		return 0
	}
	lower := strings.ToLower(text)
	words := fieldsAlnum(lower)

	credit := 0.0
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			credit += 1.0
			continue
		}
		stem := analyzer.Stem(kw)
		for _, w := range words {
			if analyzer.Stem(w) == stem {
				credit += 0.5
				break
			}
		}
	}
	return Clamp01(credit / float64(len(keywords)))
}

// tagScore gives full credit for an exact tag match and half credit for
// partial substring overlap, normalized by keyword count.
func tagScore(tags, keywords []string) float64 {
	if len(keywords) == 0 || len(tags) == 0 {
		return 0
	}
	credit := 0.0
	for _, kw := range keywords {
		best := 0.0
		for _, tag := range tags {
			tag = strings.ToLower(tag)
			switch {
			case tag == kw:
				best = 1.0
			case best < 0.5 && (strings.Contains(tag, kw) || strings.Contains(kw, tag)):
				best = 0.5
			}
			if best == 1.0 {
				break
			}
		}
		credit += best
	}
	return Clamp01(credit / float64(len(keywords)))
}

// recencyScore is 1.0 within the last day, decays linearly to 0.5 over
// 30 days, and stays flat at 0.5 beyond that. Missing timestamps score
// the 0.5 default.
func recencyScore(updatedAt, now time.Time) float64 {
	if updatedAt.IsZero() {
		return 0.5
	}
	age := now.Sub(updatedAt)
	switch {
	case age <= 24*time.Hour:
		return 1.0
	case age >= 30*24*time.Hour:
		return 0.5
	default:
		days := age.Hours() / 24
		return Clamp01(1.0 - 0.5*(days-1)/29)
	}
}

// PathScore compares tokenized path segments against the keywords with
// exact, substring, and ratio-based partial-overlap credit.
func PathScore(path string, keywords []string) float64 {
	pathTokens := TokenizePath(path)
	if len(pathTokens) == 0 || len(keywords) == 0 {
		return 0
	}

	credit := 0.0
	for _, kw := range keywords {
		best := 0.0
		for _, pt := range pathTokens {
			switch {
			case pt == kw:
				best = 1.0
			case best < 0.5 && (strings.Contains(pt, kw) || strings.Contains(kw, pt)):
				best = 0.5
			case best < 0.5:
				switch ratio := overlapRatio(pt, kw); {
				case ratio >= 0.9:
					best = maxFloat(best, 0.8)
				case ratio >= 0.6:
					best = maxFloat(best, 0.4)
				case ratio >= 0.4:
					best = maxFloat(best, 0.2)
				}
			}
			if best == 1.0 {
				break
			}
		}
		credit += best
	}
	return Clamp01(credit / float64(len(keywords)))
}

// importScore is the fraction of keywords appearing in tracked import
// paths.
func importScore(imports, keywords []string) float64 {
	if len(imports) == 0 || len(keywords) == 0 {
		return 0
	}
	joined := strings.ToLower(strings.Join(imports, " "))
	hits := 0
	for _, kw := range keywords {
		if strings.Contains(joined, kw) {
			hits++
		}
	}
	return Clamp01(float64(hits) / float64(len(keywords)))
}

// TokenizePath splits a path into lowercase tokens on separators, dots,
// underscores and dashes.
func TokenizePath(path string) []string {
	path = strings.TrimPrefix(path, "/")

	var tokens []string
	parts := strings.Split(path, string(filepath.Separator))
	for _, part := range parts {
		for _, sp := range strings.Split(part, ".") {
			for _, token := range strings.FieldsFunc(sp, func(r rune) bool {
				return r == '_' || r == '-'
			}) {
				token = strings.ToLower(token)
				if len(token) >= 2 {
					tokens = append(tokens, token)
				}
			}
		}
	}
	return tokens
}

// overlapRatio measures character-set overlap between two tokens,
// normalized by the longer token.
func overlapRatio(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	setA := make(map[rune]struct{}, len(a))
	for _, r := range a {
		setA[r] = struct{}{}
	}
	common := 0
	seen := make(map[rune]struct{}, len(b))
	for _, r := range b {
		if _, dup := seen[r]; dup {
			continue
		}
		seen[r] = struct{}{}
		if _, ok := setA[r]; ok {
			common++
		}
	}
	longer := len(setA)
	if len(seen) > longer {
		longer = len(seen)
	}
	return float64(common) / float64(longer)
}

// sample bounds text to at most n bytes without splitting a rune.
func sample(text string, n int) string {
	if len(text) <= n {
		return text
	}
	cut := n
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut]
}

func fieldsAlnum(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return !(r >= 'a' && r <= 'z') && !(r >= '0' && r <= '9') && r != '_'
	})
}

// Clamp01 clamps a score to [0,1].
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
