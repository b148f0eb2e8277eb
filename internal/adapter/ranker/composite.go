package ranker

import (
	"sort"
	"strings"

	"suggest/internal/adapter/scorer"
	"suggest/internal/domain"
)

// Blend is the composite weight vector: how much each contribution adds
// to the base relevance total before the penalty term is subtracted.
type Blend struct {
	Relevance float64 `yaml:"relevance"`
	Fuzzy     float64 `yaml:"fuzzy"`
	PathBoost float64 `yaml:"path_boost"`
	CodeBoost float64 `yaml:"code_boost"`
}

// DefaultBlend documents the canonical composite weights.
func DefaultBlend() Blend {
	return Blend{
		Relevance: 0.55,
		Fuzzy:     0.25,
		PathBoost: 0.10,
		CodeBoost: 0.10,
	}
}

// Composite unions relevance and fuzzy candidates, applies the rule
// tables, and sorts the blended scores. It is pure: identical inputs
// yield identical ordering.
type Composite struct {
	blend        Blend
	penalties    []PenaltyRule
	suppress     []SuppressRule
	domainBoosts []DomainBoostRule
	ignoreGlobs  []string
}

func NewComposite(blend Blend) *Composite {
	return &Composite{
		blend:        blend,
		penalties:    DefaultPenaltyRules(),
		suppress:     DefaultSuppressRules(),
		domainBoosts: DefaultDomainBoostRules(),
		ignoreGlobs:  DefaultIgnoreGlobs(),
	}
}

// RankFiles blends relevance and fuzzy scores for file candidates.
// relevance must already be ordered by descending relevance total; that
// order is the tie-break, so the sort is stable and deterministic.
func (c *Composite) RankFiles(files map[string]domain.File, relevance []domain.RelevanceScore, fuzzy map[string]float64, keywords []string) []domain.CompositeScore {
	codeIntent := hasCodeIntent(keywords)

	ordered := unionCandidates(relevance, fuzzy)

	results := make([]domain.CompositeScore, 0, len(ordered))
	for _, rel := range ordered {
		f, known := files[rel.ItemID]
		if !known {
			continue
		}
		if matchesIgnoreGlob(f.Path, c.ignoreGlobs) {
			continue
		}
		if c.suppressed(f.Path, keywords) {
			continue
		}

		cs := domain.CompositeScore{
			RelevanceScore: rel,
			Fuzzy:          fuzzy[rel.ItemID],
			PathBoost:      scorer.PathScore(f.Path, keywords),
		}
		if codeIntent && underCodeLocation(f.Path) {
			cs.CodeBoost = 1.0
		}
		cs.DomainBoost = c.domainBoost(f.Path, keywords)
		cs.Penalty = c.penalty(f.Path, keywords, codeIntent)

		cs.Total = scorer.Clamp01(
			c.blend.Relevance*rel.Total +
				c.blend.Fuzzy*cs.Fuzzy +
				c.blend.PathBoost*cs.PathBoost +
				c.blend.CodeBoost*cs.CodeBoost +
				cs.DomainBoost -
				cs.Penalty)

		results = append(results, cs)
	}

	sortByTotalStable(results)
	return results
}

// RankPrompts blends relevance and fuzzy scores for prompt candidates.
// Prompts carry no location heuristics, so no boosts or penalties apply.
func (c *Composite) RankPrompts(relevance []domain.RelevanceScore, fuzzy map[string]float64) []domain.CompositeScore {
	ordered := unionCandidates(relevance, fuzzy)

	results := make([]domain.CompositeScore, 0, len(ordered))
	for _, rel := range ordered {
		cs := domain.CompositeScore{
			RelevanceScore: rel,
			Fuzzy:          fuzzy[rel.ItemID],
		}
		cs.Total = scorer.Clamp01(c.blend.Relevance*rel.Total + c.blend.Fuzzy*cs.Fuzzy)
		results = append(results, cs)
	}

	sortByTotalStable(results)
	return results
}

func (c *Composite) suppressed(path string, keywords []string) bool {
	for _, rule := range c.suppress {
		if rule.Applies(path, keywords) {
			return true
		}
	}
	return false
}

// penalty sums every independent matching rule.
func (c *Composite) penalty(path string, keywords []string, codeIntent bool) float64 {
	total := 0.0
	for _, rule := range c.penalties {
		if !rule.Applies(path, keywords) {
			continue
		}
		total += rule.Weight
		if codeIntent {
			total += rule.CodeIntentExtra
		}
	}
	return total
}

func (c *Composite) domainBoost(path string, keywords []string) float64 {
	lower := strings.ToLower(path)
	boost := 0.0
	for _, rule := range c.domainBoosts {
		if !hasAny(keywords, rule.Keywords) {
			continue
		}
		for _, seg := range rule.Segments {
			if strings.Contains(lower, seg) {
				boost += rule.Weight
				break
			}
		}
	}
	return boost
}

// unionCandidates appends fuzzy-only hits (zero-initialized relevance)
// after the relevance-ordered list, keeping the relevance order as the
// stable base ordering.
func unionCandidates(relevance []domain.RelevanceScore, fuzzy map[string]float64) []domain.RelevanceScore {
	seen := make(map[string]struct{}, len(relevance))
	ordered := make([]domain.RelevanceScore, 0, len(relevance)+len(fuzzy))
	for _, rel := range relevance {
		seen[rel.ItemID] = struct{}{}
		ordered = append(ordered, rel)
	}

	extra := make([]string, 0, len(fuzzy))
	for id := range fuzzy {
		if _, ok := seen[id]; ok {
			continue
		}
		extra = append(extra, id)
	}
	sort.Strings(extra) // deterministic order for fuzzy-only candidates

	for _, id := range extra {
		ordered = append(ordered, domain.RelevanceScore{ItemID: id})
	}
	return ordered
}

// sortByTotalStable sorts descending by total; ties keep the original
// relevance ordering.
func sortByTotalStable(results []domain.CompositeScore) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Total > results[j].Total
	})
}
