package retriever

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"suggest/internal/port"
)

// Expander issues approximate text queries against the fuzzy search
// backend to surface candidates the relevance scorer alone would miss.
// Each variant query is best-effort enrichment: a failing variant
// contributes nothing instead of failing the call.
type Expander struct {
	searcher port.FuzzySearcher
	limit    int
	logger   *slog.Logger
}

func NewExpander(searcher port.FuzzySearcher, limit int, logger *slog.Logger) *Expander {
	if limit <= 0 {
		limit = 20
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Expander{
		searcher: searcher,
		limit:    limit,
		logger:   logger,
	}
}

// Expand runs every variant query concurrently and merges hits by
// keeping, per item, the maximum normalized score seen across variants.
// The returned map is empty (never nil) when nothing matched or the
// backend is unavailable.
func (e *Expander) Expand(ctx context.Context, projectID string, keywords []string) map[string]float64 {
	merged := make(map[string]float64)
	if e.searcher == nil || len(keywords) == 0 {
		return merged
	}

	variants := BuildVariants(keywords)

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)

	for _, variant := range variants {
		variant := variant
		g.Go(func() error {
			hits, err := e.searcher.Search(gctx, projectID, port.SearchRequest{
				Query: variant,
				Limit: e.limit,
			})
			if err != nil {
				// Enrichment failure: an ignored result is an empty
				// contribution, not an error.
				e.logger.Warn("fuzzy variant query failed", "variant", variant, "error", err)
				return nil
			}
			mu.Lock()
			defer mu.Unlock()
			for _, hit := range hits {
				score := normalizeScore(hit.Score)
				if score > merged[hit.ItemID] {
					merged[hit.ItemID] = score
				}
			}
			return nil
		})
	}

	// Goroutines never return errors; Wait only synchronizes.
	_ = g.Wait()

	return merged
}

// BuildVariants derives the fuzzy query set: the first three keywords
// joined, plus known phrase-variant expansions for domain words.
func BuildVariants(keywords []string) []string {
	if len(keywords) == 0 {
		return nil
	}

	head := keywords
	if len(head) > 3 {
		head = head[:3]
	}
	base := strings.Join(head, " ")

	variants := []string{base}
	seen := map[string]struct{}{base: {}}

	add := func(v string) {
		if v == "" {
			return
		}
		if _, dup := seen[v]; dup {
			return
		}
		seen[v] = struct{}{}
		variants = append(variants, v)
	}

	if containsAll(keywords, "suggest", "files") {
		add("suggest-files")
		add("suggestions")
		add("suggestFiles")
	}

	for _, kw := range keywords {
		for _, v := range phraseVariants[kw] {
			add(v)
		}
	}

	return variants
}

// phraseVariants maps a trigger keyword to extra query spellings worth
// trying against the backend.
var phraseVariants = map[string][]string{
	"mcp":      {"mcp server", "mcp tools", "model context protocol"},
	"workflow": {"workflows", "github workflow", "ci workflow"},
	"suggest":  {"suggestion", "suggestions"},
	"prompt":   {"prompts", "prompt template"},
	"ticket":   {"tickets", "task"},
	"api":      {"endpoint", "route"},
}

// normalizeScore maps any monotonic similarity measure onto [0,1).
// Scores already in [0,1] pass through unchanged.
func normalizeScore(s float64) float64 {
	if s <= 0 {
		return 0
	}
	if s <= 1 {
		return s
	}
	return s / (s + 1)
}

func containsAll(haystack []string, wants ...string) bool {
	for _, want := range wants {
		found := false
		for _, h := range haystack {
			if h == want {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
