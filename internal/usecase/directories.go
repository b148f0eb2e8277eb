package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"sort"
	"strings"

	"suggest/internal/domain"
	"suggest/internal/port"
)

const (
	defaultMaxDirectories = 5
	defaultMaxTreeDepth   = 4
	defaultMinConfidence  = 0.3
)

// DirectorySelector picks directories likely to contain files relevant
// to a query. Model failure degrades to the root-level subdirectories.
type DirectorySelector struct {
	gateway port.ModelGateway
	tiers   port.TierResolver
	logger  *slog.Logger
}

func NewDirectorySelector(gateway port.ModelGateway, tiers port.TierResolver, logger *slog.Logger) *DirectorySelector {
	if logger == nil {
		logger = slog.Default()
	}
	return &DirectorySelector{gateway: gateway, tiers: tiers, logger: logger}
}

// DirectoryOptions bound one selection call.
type DirectoryOptions struct {
	MaxDirectories int
	MaxDepth       int
	MinConfidence  float64
	ModelTier      domain.ModelTier
}

func (o DirectoryOptions) withDefaults() DirectoryOptions {
	if o.MaxDirectories <= 0 {
		o.MaxDirectories = defaultMaxDirectories
	}
	if o.MaxDepth <= 0 {
		o.MaxDepth = defaultMaxTreeDepth
	}
	if o.MinConfidence <= 0 {
		o.MinConfidence = defaultMinConfidence
	}
	if o.ModelTier == "" {
		o.ModelTier = domain.TierMedium
	}
	return o
}

type directoryResponse struct {
	Selections []domain.DirectorySelection `json:"selections"`
}

// Select flattens the tree, asks the model for up to MaxDirectories
// picks, filters by confidence, and normalizes every path to be
// project-relative without a leading slash. An empty tree yields an
// empty selection. A failed or unusable model call falls back to the
// tree's root-level subdirectories with fixed confidence.
func (s *DirectorySelector) Select(ctx context.Context, tree *domain.DirectoryNode, query domain.Query, opts DirectoryOptions) []domain.DirectorySelection {
	opts = opts.withDefaults()

	flat := FlattenTree(tree, opts.MaxDepth)
	if len(flat) == 0 {
		return []domain.DirectorySelection{}
	}

	picks, ok := s.askModel(ctx, flat, query, opts)
	if !ok {
		return rootFallback(tree, opts.MaxDirectories)
	}
	return picks
}

func (s *DirectorySelector) askModel(ctx context.Context, dirs []string, query domain.Query, opts DirectoryOptions) ([]domain.DirectorySelection, bool) {
	if s.gateway == nil {
		return nil, false
	}

	prompt := buildDirectoryPrompt(dirs, query, opts.MaxDirectories)
	req := port.GenerateRequest{
		Prompt:        prompt,
		SystemMessage: directorySystemMessage,
		Options:       s.tiers.Resolve(opts.ModelTier),
	}

	var resp directoryResponse
	if err := s.gateway.Generate(ctx, req, &resp); err != nil {
		s.logger.Warn("directory selection unavailable, using root fallback", "error", err)
		return nil, false
	}

	offered := make(map[string]struct{}, len(dirs))
	for _, d := range dirs {
		offered[d] = struct{}{}
	}

	var picks []domain.DirectorySelection
	seen := make(map[string]struct{})
	for _, sel := range resp.Selections {
		p := NormalizeDirPath(sel.Path)
		if p == "" {
			continue
		}
		if _, ok := offered[p]; !ok {
			s.logger.Warn("model selected unknown directory, discarding", "path", sel.Path)
			continue
		}
		if _, dup := seen[p]; dup {
			continue
		}
		if sel.Confidence < opts.MinConfidence {
			continue
		}
		seen[p] = struct{}{}
		picks = append(picks, domain.DirectorySelection{
			Path:       p,
			Confidence: clampUnit(sel.Confidence),
			Reason:     sel.Reason,
		})
		if len(picks) >= opts.MaxDirectories {
			break
		}
	}

	if len(picks) == 0 {
		s.logger.Warn("directory selection returned no usable picks, using root fallback")
		return nil, false
	}
	return picks, true
}

// FlattenTree lists every directory path in the tree up to maxDepth,
// normalized and sorted. The root node itself is excluded.
func FlattenTree(tree *domain.DirectoryNode, maxDepth int) []string {
	if tree == nil {
		return nil
	}
	var out []string
	var walk func(n *domain.DirectoryNode, depth int)
	walk = func(n *domain.DirectoryNode, depth int) {
		if depth > maxDepth {
			return
		}
		p := NormalizeDirPath(n.Path)
		if p != "" {
			out = append(out, p)
		}
		for _, c := range n.Children {
			walk(c, depth+1)
		}
	}
	walk(tree, 0)
	sort.Strings(out)
	return out
}

// BuildDirectoryTree assembles a directory tree from indexed file paths.
func BuildDirectoryTree(files []domain.File) *domain.DirectoryNode {
	root := &domain.DirectoryNode{Name: ".", Path: ""}
	nodes := map[string]*domain.DirectoryNode{"": root}

	for _, f := range files {
		dir := path.Dir(strings.ReplaceAll(f.Path, "\\", "/"))
		if dir == "." || dir == "/" {
			continue
		}
		segments := strings.Split(dir, "/")
		cur := ""
		parent := root
		for _, seg := range segments {
			if seg == "" {
				continue
			}
			if cur == "" {
				cur = seg
			} else {
				cur = cur + "/" + seg
			}
			node, ok := nodes[cur]
			if !ok {
				node = &domain.DirectoryNode{Name: seg, Path: cur}
				nodes[cur] = node
				parent.Children = append(parent.Children, node)
			}
			parent = node
		}
	}

	sortTree(root)
	return root
}

func sortTree(n *domain.DirectoryNode) {
	sort.Slice(n.Children, func(i, j int) bool { return n.Children[i].Path < n.Children[j].Path })
	for _, c := range n.Children {
		sortTree(c)
	}
}

func rootFallback(tree *domain.DirectoryNode, maxDirs int) []domain.DirectorySelection {
	var picks []domain.DirectorySelection
	for _, c := range tree.Children {
		p := NormalizeDirPath(c.Path)
		if p == "" {
			continue
		}
		picks = append(picks, domain.DirectorySelection{
			Path:       p,
			Confidence: 0.5,
			Reason:     "fallback",
		})
		if len(picks) >= maxDirs {
			break
		}
	}
	if picks == nil {
		picks = []domain.DirectorySelection{}
	}
	return picks
}

// NormalizeDirPath makes a directory path project-relative: forward
// slashes, no leading slash, no trailing slash, no "./" prefix.
func NormalizeDirPath(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	p = strings.TrimPrefix(p, "./")
	p = strings.Trim(p, "/")
	if p == "." {
		return ""
	}
	return p
}

const directorySystemMessage = `You select project directories likely to contain files relevant to a developer's request. ` +
	`Respond with JSON only, matching {"selections":[{"path":"...","confidence":0.0,"reason":"..."}]}. ` +
	`Paths must be copied exactly from the candidate list. Confidence is between 0 and 1. ` +
	`Reason is one short sentence.`

func buildDirectoryPrompt(dirs []string, query domain.Query, maxDirs int) string {
	var b strings.Builder
	b.WriteString("## User Request\n")
	b.WriteString(query.Text)
	b.WriteString("\n")
	if query.UserContext != "" {
		b.WriteString("\n## Additional Context\n")
		b.WriteString(query.UserContext)
		b.WriteString("\n")
	}
	b.WriteString("\n## Directories\n")
	for i, d := range dirs {
		fmt.Fprintf(&b, "%d. %s\n", i+1, d)
	}
	fmt.Fprintf(&b, "\nSelect up to %d directories most likely to contain relevant files.\n", maxDirs)
	return b.String()
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
