package retriever

import (
	"context"
	"sort"
	"strings"

	"suggest/internal/port"
)

// ItemKind selects which candidate universe a TrigramSearcher queries.
type ItemKind string

const (
	KindFiles   ItemKind = "files"
	KindPrompts ItemKind = "prompts"
)

// TrigramSearcher is the default production FuzzySearcher: character
// trigram Jaccard similarity over item names and paths. It reads the
// repository snapshot per call and keeps no state, matching the
// no-caching contract of the pipeline.
type TrigramSearcher struct {
	repo port.ItemRepository
	kind ItemKind
}

func NewTrigramSearcher(repo port.ItemRepository, kind ItemKind) *TrigramSearcher {
	return &TrigramSearcher{repo: repo, kind: kind}
}

// Search returns up to req.Limit items ranked by trigram similarity
// between the query and the item's searchable text. Scores are already
// in [0,1].
func (s *TrigramSearcher) Search(ctx context.Context, projectID string, req port.SearchRequest) ([]port.SearchHit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	queryGrams := trigrams(strings.ToLower(req.Query))
	if len(queryGrams) == 0 {
		return nil, nil
	}

	texts, err := s.searchableTexts(projectID)
	if err != nil {
		return nil, err
	}

	hits := make([]port.SearchHit, 0, len(texts))
	for id, text := range texts {
		score := jaccard(queryGrams, trigrams(strings.ToLower(text)))
		if score > 0 {
			hits = append(hits, port.SearchHit{ItemID: id, Score: score})
		}
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].ItemID < hits[j].ItemID
	})

	limit := req.Limit
	if limit <= 0 {
		limit = 20
	}
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

func (s *TrigramSearcher) searchableTexts(projectID string) (map[string]string, error) {
	texts := make(map[string]string)
	switch s.kind {
	case KindPrompts:
		prompts, err := s.repo.ListPrompts(projectID)
		if err != nil {
			return nil, err
		}
		for _, p := range prompts {
			texts[p.ID] = p.Title + " " + strings.Join(p.Tags, " ")
		}
	default:
		files, err := s.repo.ListFiles(projectID)
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			texts[f.ID] = f.Path
		}
	}
	return texts, nil
}

var _ port.FuzzySearcher = (*TrigramSearcher)(nil)

func trigrams(text string) map[string]struct{} {
	grams := make(map[string]struct{})
	runes := []rune(text)
	if len(runes) < 3 {
		if len(runes) > 0 {
			grams[string(runes)] = struct{}{}
		}
		return grams
	}
	for i := 0; i+3 <= len(runes); i++ {
		grams[string(runes[i:i+3])] = struct{}{}
	}
	return grams
}

func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	intersection := 0
	for g := range a {
		if _, ok := b[g]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}
