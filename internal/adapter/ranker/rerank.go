package ranker

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"suggest/internal/domain"
	"suggest/internal/port"
)

// minAISelections is the floor below which a model response is treated
// as unusable and the composite order stands. Kept a fixed constant
// rather than scaled with the requested count.
const minAISelections = 3

// FallbackReason is the only reason tag the system itself ever writes.
const FallbackReason = "fallback"

// allowedReasons is the fixed vocabulary the model must pick from;
// anything else is dropped per reason, keeping output machine-checkable.
var allowedReasons = map[string]struct{}{
	"title-match":  {},
	"tag-match":    {},
	"path-match":   {},
	"category-fit": {},
	"recent":       {},
	"high-score":   {},
	"diverse":      {},
}

// Reranker asks a structured-output model to select and justify up to K
// candidates. It either succeeds with usable selections or reports that
// the composite order stands; it never errors past itself.
type Reranker struct {
	gateway port.ModelGateway
	tiers   port.TierResolver
	logger  *slog.Logger
}

func NewReranker(gateway port.ModelGateway, tiers port.TierResolver, logger *slog.Logger) *Reranker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reranker{gateway: gateway, tiers: tiers, logger: logger}
}

type rerankResponse struct {
	Selections []domain.AISelection `json:"selections"`
}

// RerankOptions parameterizes one rerank call. Compact controls
// descriptor verbosity: 0 renders everything, 1 drops hints, 2 drops
// hints and tags.
type RerankOptions struct {
	MaxResults int
	Tier       domain.ModelTier
	Compact    int
}

// Rerank returns the model's accepted selections and true, or nil and
// false when the stage declined (gateway failure, schema failure, or
// fewer than minAISelections usable picks). Both outcomes are valid;
// callers fall back to the composite order on false.
func (r *Reranker) Rerank(ctx context.Context, query domain.Query, candidates []Candidate, opts RerankOptions) ([]domain.AISelection, bool) {
	if r.gateway == nil || len(candidates) == 0 {
		return nil, false
	}

	// Dedupe by id, first occurrence wins (composite order).
	seen := make(map[string]struct{}, len(candidates))
	deduped := candidates[:0:0]
	for _, c := range candidates {
		if _, dup := seen[c.ID]; dup {
			continue
		}
		seen[c.ID] = struct{}{}
		deduped = append(deduped, c)
	}

	prompt := buildRerankPrompt(query, deduped, opts)

	modelOpts := port.ModelOptions{}
	if r.tiers != nil {
		modelOpts = r.tiers.Resolve(opts.Tier)
	}

	var resp rerankResponse
	err := r.gateway.Generate(ctx, port.GenerateRequest{
		Prompt:        prompt,
		SystemMessage: rerankSystemMessage,
		Options:       modelOpts,
	}, &resp)
	if err != nil {
		r.logger.Warn("reranking unavailable, composite order stands", "error", err)
		return nil, false
	}

	accepted := r.filterSelections(resp.Selections, seen, opts.MaxResults)
	if len(accepted) < minAISelections {
		r.logger.Warn("too few usable selections, composite order stands",
			"accepted", len(accepted), "minimum", minAISelections)
		return nil, false
	}

	return accepted, true
}

// filterSelections enforces the anti-hallucination guard and the reason
// vocabulary, preserving model-given order.
func (r *Reranker) filterSelections(selections []domain.AISelection, offered map[string]struct{}, maxResults int) []domain.AISelection {
	accepted := make([]domain.AISelection, 0, len(selections))
	picked := make(map[string]struct{}, len(selections))

	for _, sel := range selections {
		if _, known := offered[sel.ItemID]; !known {
			r.logger.Warn("model named an item that was never offered", "id", sel.ItemID)
			continue
		}
		if _, dup := picked[sel.ItemID]; dup {
			continue
		}
		picked[sel.ItemID] = struct{}{}

		sel.Confidence = clamp01(sel.Confidence)
		sel.Reasons = filterReasons(sel.Reasons)
		accepted = append(accepted, sel)

		if len(accepted) >= maxResults {
			break
		}
	}
	return accepted
}

func filterReasons(reasons []string) []string {
	kept := make([]string, 0, len(reasons))
	for _, reason := range reasons {
		if _, ok := allowedReasons[reason]; ok {
			kept = append(kept, reason)
		}
	}
	return kept
}

// Merge applies accepted selections onto the composite ordering:
// model-given order first, then remaining composite candidates in their
// original order, capped at maxResults.
func Merge(composite []domain.CompositeScore, selections []domain.AISelection, maxResults int) []domain.CompositeScore {
	if maxResults <= 0 {
		return nil
	}

	byID := make(map[string]domain.CompositeScore, len(composite))
	for _, cs := range composite {
		byID[cs.ItemID] = cs
	}

	merged := make([]domain.CompositeScore, 0, maxResults)
	taken := make(map[string]struct{}, maxResults)

	for _, sel := range selections {
		cs, ok := byID[sel.ItemID]
		if !ok {
			continue
		}
		cs.AIConfidence = sel.Confidence
		cs.AIReasons = sel.Reasons
		merged = append(merged, cs)
		taken[sel.ItemID] = struct{}{}
		if len(merged) >= maxResults {
			return merged
		}
	}

	for _, cs := range composite {
		if _, dup := taken[cs.ItemID]; dup {
			continue
		}
		merged = append(merged, cs)
		if len(merged) >= maxResults {
			break
		}
	}
	return merged
}

const rerankSystemMessage = `You rank candidate items for a developer's request. ` +
	`Respond with JSON only, matching: {"selections":[{"id":"...","confidence":0.0,"reasons":["..."]}]}. ` +
	`Valid reasons: title-match, tag-match, path-match, category-fit, recent, high-score, diverse. ` +
	`Only use ids from the candidate list. Confidence is between 0 and 1.`

// buildRerankPrompt renders the fixed-format listwise ranking prompt:
// request, optional context, descriptor block, result count, and the
// ordered evaluation rubric.
func buildRerankPrompt(query domain.Query, candidates []Candidate, opts RerankOptions) string {
	var b strings.Builder
	now := time.Now()

	fmt.Fprintf(&b, "## User Request\n%s\n", query.Text)
	if query.UserContext != "" {
		fmt.Fprintf(&b, "\n## Additional Context\n%s\n", query.UserContext)
	}

	b.WriteString("\n## Candidates\n")
	keywords := strings.Fields(strings.ToLower(query.Text))
	for i, c := range candidates {
		b.WriteString(buildDescriptor(c, i+1, keywords, now, opts.Compact))
		b.WriteByte('\n')
	}

	fmt.Fprintf(&b, "\nSelect up to %d items, best first. Evaluate in order:\n", opts.MaxResults)
	b.WriteString("1. Intent alignment: does the item serve what the request asks for?\n")
	b.WriteString("2. Domain coverage: prefer items covering the request's domain terms.\n")
	b.WriteString("3. Recency and specificity: prefer fresher, more specific items.\n")
	b.WriteString("4. Diversity: avoid near-duplicates of already selected items.\n")

	return b.String()
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
