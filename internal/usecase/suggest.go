package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"suggest/config"
	"suggest/internal/adapter/analyzer"
	"suggest/internal/adapter/ranker"
	"suggest/internal/adapter/retriever"
	"suggest/internal/adapter/scorer"
	"suggest/internal/domain"
	"suggest/internal/port"
)

// SuggestOptions bound one suggestion call.
type SuggestOptions struct {
	Strategy   domain.Strategy
	MaxResults int
}

func (o SuggestOptions) withDefaults() SuggestOptions {
	if o.Strategy == "" {
		o.Strategy = domain.StrategyBalanced
	}
	if o.MaxResults <= 0 {
		o.MaxResults = 10
	}
	return o
}

// SuggestResult is the exposed surface of one suggestion call.
type SuggestResult struct {
	Suggestions []string                  `json:"suggestions"`
	Scores      []domain.CompositeScore   `json:"scores"`
	Metadata    domain.SuggestionMetadata `json:"metadata"`
}

// SuggestService orchestrates the suggestion pipeline for files and
// prompts. All stages are request-scoped; the only external calls are
// the fuzzy search backend and the model gateway, and failures from
// either degrade to the composite ordering instead of erroring.
type SuggestService struct {
	repo           port.ItemRepository
	extractor      *analyzer.KeywordExtractor
	promptScorer   *scorer.RelevanceScorer
	fileScorer     *scorer.RelevanceScorer
	fileExpander   *retriever.Expander
	promptExpander *retriever.Expander
	composite      *ranker.Composite
	reranker       *ranker.Reranker
	dirSelector    *DirectorySelector
	fetcher        *ContentFetcher
	cfg            *config.Config
	logger         *slog.Logger
	now            func() time.Time
}

// SuggestDeps collects the collaborators a SuggestService needs. Nil
// gateway-backed fields disable the AI stages (composite order only).
type SuggestDeps struct {
	Repo           port.ItemRepository
	FileSearcher   port.FuzzySearcher
	PromptSearcher port.FuzzySearcher
	Gateway        port.ModelGateway
	Tiers          port.TierResolver
	Config         *config.Config
	Logger         *slog.Logger
}

func NewSuggestService(deps SuggestDeps) *SuggestService {
	cfg := deps.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var rr *ranker.Reranker
	var ds *DirectorySelector
	if deps.Gateway != nil && deps.Tiers != nil {
		rr = ranker.NewReranker(deps.Gateway, deps.Tiers, logger)
		ds = NewDirectorySelector(deps.Gateway, deps.Tiers, logger)
	}

	return &SuggestService{
		repo:           deps.Repo,
		extractor:      analyzer.NewKeywordExtractor(),
		promptScorer:   scorer.NewRelevanceScorer(cfg.Scoring.PromptWeights),
		fileScorer:     scorer.NewRelevanceScorer(cfg.Scoring.FileWeights),
		fileExpander:   retriever.NewExpander(deps.FileSearcher, cfg.Ranking.FuzzyLimit, logger),
		promptExpander: retriever.NewExpander(deps.PromptSearcher, cfg.Ranking.FuzzyLimit, logger),
		composite:      ranker.NewComposite(cfg.Ranking.Blend),
		reranker:       rr,
		dirSelector:    ds,
		fetcher:        NewContentFetcher(deps.Repo),
		cfg:            cfg,
		logger:         logger,
		now:            time.Now,
	}
}

// SuggestPrompts ranks a project's prompts against a query. Prompts
// below the configured minimum relevance are dropped before pooling.
func (s *SuggestService) SuggestPrompts(ctx context.Context, projectID string, query domain.Query, opts SuggestOptions) (SuggestResult, error) {
	start := s.now()
	opts = opts.withDefaults()
	strategy := s.cfg.Strategy(opts.Strategy)

	if _, err := s.repo.GetProject(projectID); err != nil {
		return SuggestResult{}, err
	}
	prompts, err := s.repo.ListPrompts(projectID)
	if err != nil {
		return SuggestResult{}, fmt.Errorf("listing prompts: %w", err)
	}

	keywords := s.extractor.Extract(query.Combined())
	now := s.now()

	var relevance []domain.RelevanceScore
	index := make(map[string]domain.Prompt, len(prompts))
	for _, p := range prompts {
		index[p.ID] = p
		score := s.promptScorer.ScorePrompt(p, keywords, now)
		if score.Total < s.cfg.Scoring.MinScore {
			continue
		}
		relevance = append(relevance, score)
	}
	sortRelevance(relevance)
	relevance = capRelevance(relevance, strategy.MaxPreFilterItems)

	fuzzy := s.promptExpander.Expand(ctx, projectID, keywords)
	composite := s.composite.RankPrompts(relevance, fuzzy)

	aiCount := 0
	if s.aiEnabled(strategy) && len(composite) > opts.MaxResults {
		candidates := promptCandidates(composite, index, strategy.MaxAIItems)
		if selections, ok := s.reranker.Rerank(ctx, query, candidates, ranker.RerankOptions{
			MaxResults: opts.MaxResults,
			Tier:       strategy.ModelTier,
			Compact:    strategy.CompactLevel,
		}); ok {
			composite = ranker.Merge(composite, selections, opts.MaxResults)
			aiCount = len(selections)
		}
	}
	composite = capComposite(composite, opts.MaxResults)

	return s.buildResult(composite, opts.Strategy, len(prompts), len(relevance), aiCount, promptTokens(prompts), start), nil
}

// SuggestFiles ranks a project's files against a query. Low scorers
// are kept and penalized rather than dropped, since path and
// code-location boosts may still apply. Large projects with AI enabled
// run directory selection and partial content fetch to narrow the AI
// candidate set before reranking.
func (s *SuggestService) SuggestFiles(ctx context.Context, projectID string, query domain.Query, opts SuggestOptions) (SuggestResult, error) {
	start := s.now()
	opts = opts.withDefaults()
	strategy := s.cfg.Strategy(opts.Strategy)

	if _, err := s.repo.GetProject(projectID); err != nil {
		return SuggestResult{}, err
	}
	files, err := s.repo.ListFiles(projectID)
	if err != nil {
		return SuggestResult{}, fmt.Errorf("listing files: %w", err)
	}

	keywords := s.extractor.Extract(query.Combined())
	now := s.now()

	index := make(map[string]domain.File, len(files))
	relevance := make([]domain.RelevanceScore, 0, len(files))
	for _, f := range files {
		index[f.ID] = f
		relevance = append(relevance, s.fileScorer.ScoreFile(f, keywords, now))
	}
	sortRelevance(relevance)
	relevance = capRelevance(relevance, strategy.MaxPreFilterItems)

	fuzzy := s.fileExpander.Expand(ctx, projectID, keywords)
	composite := s.composite.RankFiles(index, relevance, fuzzy, keywords)

	aiCount := 0
	tokensSaved := 0
	if s.aiEnabled(strategy) && len(composite) > opts.MaxResults {
		pool := composite
		if len(files) > s.cfg.Fetch.LargeProjectMinSize {
			if narrowed, saved, ok := s.narrowByDirectories(ctx, projectID, query, files, composite, strategy); ok {
				pool = narrowed
				tokensSaved = saved
			}
		}
		candidates := fileCandidates(pool, index, strategy.MaxAIItems)
		if selections, ok := s.reranker.Rerank(ctx, query, candidates, ranker.RerankOptions{
			MaxResults: opts.MaxResults,
			Tier:       strategy.ModelTier,
			Compact:    strategy.CompactLevel,
		}); ok {
			composite = ranker.Merge(composite, selections, opts.MaxResults)
			aiCount = len(selections)
		}
	}
	composite = capComposite(composite, opts.MaxResults)

	result := s.buildResult(composite, opts.Strategy, len(files), len(relevance), aiCount, fileTokens(files), start)
	if tokensSaved > 0 {
		result.Metadata.TokensSaved = tokensSaved
	}
	return result, nil
}

// SelectDirectories exposes the directory selection stage directly.
func (s *SuggestService) SelectDirectories(ctx context.Context, projectID string, query domain.Query, opts DirectoryOptions) ([]domain.DirectorySelection, error) {
	if _, err := s.repo.GetProject(projectID); err != nil {
		return nil, err
	}
	files, err := s.repo.ListFiles(projectID)
	if err != nil {
		return nil, fmt.Errorf("listing files: %w", err)
	}
	tree := BuildDirectoryTree(files)
	if s.dirSelector == nil {
		return rootFallback(tree, opts.withDefaults().MaxDirectories), nil
	}
	return s.dirSelector.Select(ctx, tree, query, opts), nil
}

// FetchPartialContent exposes the partial content fetch stage directly.
func (s *SuggestService) FetchPartialContent(projectID string, dirs []string, opts FetchOptions) (FetchResult, error) {
	return s.fetcher.Fetch(projectID, dirs, opts)
}

// narrowByDirectories runs the two-stage large-project flow: directory
// selection, then partial content fetch, and keeps only composite
// candidates whose files were fetched. Any failure reports not-ok and
// the caller stays on the generic composite pool.
func (s *SuggestService) narrowByDirectories(ctx context.Context, projectID string, query domain.Query, files []domain.File, composite []domain.CompositeScore, strategy config.StrategyConfig) ([]domain.CompositeScore, int, bool) {
	if s.dirSelector == nil {
		return nil, 0, false
	}

	tree := BuildDirectoryTree(files)
	selections := s.dirSelector.Select(ctx, tree, query, DirectoryOptions{ModelTier: strategy.ModelTier})
	if len(selections) == 0 {
		return nil, 0, false
	}

	dirs := make([]string, 0, len(selections))
	for _, sel := range selections {
		dirs = append(dirs, sel.Path)
	}

	fetched, err := s.fetcher.Fetch(projectID, dirs, FetchOptions{
		LineCount:         s.cfg.Fetch.LineCount,
		MaxTotalFiles:     s.cfg.Fetch.MaxTotalFiles,
		MaxFilesPerDir:    s.cfg.Fetch.MaxFilesPerDir,
		MaxFileSize:       s.cfg.Fetch.MaxFileSize,
		IncludeExtensions: s.cfg.Fetch.IncludeExtensions,
		ExcludeExtensions: s.cfg.Fetch.ExcludeExtensions,
	})
	if err != nil || len(fetched.PartialFiles) == 0 {
		if err != nil {
			s.logger.Warn("partial content fetch failed, using generic pool", "error", err)
		}
		return nil, 0, false
	}

	kept := make(map[string]struct{}, len(fetched.PartialFiles))
	for _, pf := range fetched.PartialFiles {
		kept[pf.FileID] = struct{}{}
	}
	var narrowed []domain.CompositeScore
	for _, c := range composite {
		if _, ok := kept[c.ItemID]; ok {
			narrowed = append(narrowed, c)
		}
	}
	if len(narrowed) == 0 {
		return nil, 0, false
	}

	saved := fileTokens(files) - fetched.Metadata.TotalEstimatedTokens
	if saved < 0 {
		saved = 0
	}
	return narrowed, saved, true
}

func (s *SuggestService) aiEnabled(strategy config.StrategyConfig) bool {
	return strategy.UseAI && s.reranker != nil
}

func (s *SuggestService) buildResult(composite []domain.CompositeScore, strategy domain.Strategy, total, analyzed, aiCount, universeTokens int, start time.Time) SuggestResult {
	ids := make([]string, 0, len(composite))
	for _, c := range composite {
		ids = append(ids, c.ItemID)
	}

	return SuggestResult{
		Suggestions: ids,
		Scores:      composite,
		Metadata: domain.SuggestionMetadata{
			TotalItems:       total,
			AnalyzedItems:    analyzed,
			Strategy:         strategy,
			ProcessingTimeMs: s.now().Sub(start).Milliseconds(),
			TokensSaved:      universeTokens,
			AISelections:     aiCount,
		},
	}
}

func sortRelevance(relevance []domain.RelevanceScore) {
	sort.SliceStable(relevance, func(i, j int) bool {
		if relevance[i].Total != relevance[j].Total {
			return relevance[i].Total > relevance[j].Total
		}
		return relevance[i].ItemID < relevance[j].ItemID
	})
}

func capRelevance(relevance []domain.RelevanceScore, limit int) []domain.RelevanceScore {
	if limit > 0 && len(relevance) > limit {
		return relevance[:limit]
	}
	return relevance
}

func capComposite(composite []domain.CompositeScore, limit int) []domain.CompositeScore {
	if limit > 0 && len(composite) > limit {
		return composite[:limit]
	}
	return composite
}

func promptCandidates(composite []domain.CompositeScore, index map[string]domain.Prompt, maxItems int) []ranker.Candidate {
	if maxItems > 0 && len(composite) > maxItems {
		composite = composite[:maxItems]
	}
	out := make([]ranker.Candidate, 0, len(composite))
	for _, c := range composite {
		p := index[c.ItemID]
		out = append(out, ranker.Candidate{
			ID:        c.ItemID,
			Title:     p.Title,
			Tags:      p.Tags,
			UpdatedAt: p.UpdatedAt,
			Score:     c,
		})
	}
	return out
}

func fileCandidates(composite []domain.CompositeScore, index map[string]domain.File, maxItems int) []ranker.Candidate {
	if maxItems > 0 && len(composite) > maxItems {
		composite = composite[:maxItems]
	}
	out := make([]ranker.Candidate, 0, len(composite))
	for _, c := range composite {
		f := index[c.ItemID]
		out = append(out, ranker.Candidate{
			ID:        c.ItemID,
			Title:     f.Path,
			Tags:      f.Imports,
			UpdatedAt: f.UpdatedAt,
			Score:     c,
		})
	}
	return out
}

func promptTokens(prompts []domain.Prompt) int {
	total := 0
	for _, p := range prompts {
		total += estimateTokens(p.Content)
	}
	return total
}

func fileTokens(files []domain.File) int {
	total := 0
	for _, f := range files {
		total += estimateTokens(f.Content)
	}
	return total
}
