package usecase

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"suggest/internal/domain"
	"suggest/internal/port"
)

// FetchOptions bound one partial content fetch.
type FetchOptions struct {
	LineCount         int
	MaxTotalFiles     int
	MaxFilesPerDir    int
	MaxFileSize       int64
	IncludeExtensions []string
	ExcludeExtensions []string
}

func (o FetchOptions) withDefaults() FetchOptions {
	if o.LineCount <= 0 {
		o.LineCount = 50
	}
	if o.MaxTotalFiles <= 0 {
		o.MaxTotalFiles = 30
	}
	if o.MaxFilesPerDir <= 0 {
		o.MaxFilesPerDir = 10
	}
	if o.MaxFileSize <= 0 {
		o.MaxFileSize = 1 << 20
	}
	return o
}

// FetchResult is the exposed surface of one fetch call.
type FetchResult struct {
	PartialFiles []domain.PartialFileContent `json:"partialFiles"`
	Metadata     domain.FetchMetadata        `json:"metadata"`
}

// ContentFetcher returns the first N lines of files under selected
// directories, enforcing a project-root sandbox and per-call caps.
type ContentFetcher struct {
	repo port.ItemRepository
}

func NewContentFetcher(repo port.ItemRepository) *ContentFetcher {
	return &ContentFetcher{repo: repo}
}

// Fetch validates every directory against the project root before any
// content access, then groups files by containing directory and
// extracts partial content under the configured caps. Files beyond a
// cap, empty files, and files failing a size or extension filter are
// counted as skipped.
func (f *ContentFetcher) Fetch(projectID string, dirs []string, opts FetchOptions) (FetchResult, error) {
	start := time.Now()
	opts = opts.withDefaults()

	project, err := f.repo.GetProject(projectID)
	if err != nil {
		return FetchResult{}, err
	}

	resolved := make([]string, 0, len(dirs))
	for _, d := range dirs {
		rel, err := resolveWithinRoot(project.RootDir, d)
		if err != nil {
			return FetchResult{}, err
		}
		resolved = append(resolved, rel)
	}

	files, err := f.repo.ListFiles(projectID)
	if err != nil {
		return FetchResult{}, fmt.Errorf("listing project files: %w", err)
	}

	var (
		partials   []domain.PartialFileContent
		meta       domain.FetchMetadata
		perDir     = make(map[string]int)
		totalLines int
	)

	for _, file := range files {
		dir, ok := containingDir(file.Path, resolved)
		if !ok {
			continue
		}
		meta.TotalFilesFound++

		if len(partials) >= opts.MaxTotalFiles || perDir[dir] >= opts.MaxFilesPerDir {
			meta.FilesSkipped++
			continue
		}
		if file.Content == "" || file.Size > opts.MaxFileSize || !extensionAllowed(file.Extension, opts) {
			meta.FilesSkipped++
			continue
		}

		partial := extractPartial(file, opts.LineCount)
		perDir[dir]++
		partials = append(partials, partial)
		totalLines += partial.LineCount
		meta.TotalEstimatedTokens += estimateTokens(partial.PartialContent)
	}

	meta.FilesReturned = len(partials)
	if len(partials) > 0 {
		meta.AverageLineCount = float64(totalLines) / float64(len(partials))
	}
	meta.ProcessingTimeMs = time.Since(start).Milliseconds()

	if partials == nil {
		partials = []domain.PartialFileContent{}
	}
	return FetchResult{PartialFiles: partials, Metadata: meta}, nil
}

// resolveWithinRoot normalizes dir against root and rejects anything
// that resolves outside it. Runs before any file access.
func resolveWithinRoot(root, dir string) (string, error) {
	if strings.TrimSpace(dir) == "" {
		return "", fmt.Errorf("%w: empty path", domain.ErrInvalidDirectory)
	}

	rootAbs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("%w: %s", domain.ErrInvalidDirectory, dir)
	}

	var target string
	if filepath.IsAbs(dir) {
		target = filepath.Clean(dir)
	} else {
		target = filepath.Join(rootAbs, filepath.FromSlash(dir))
	}

	rel, err := filepath.Rel(rootAbs, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s resolves outside project root", domain.ErrInvalidDirectory, dir)
	}
	if rel == "." {
		return "", nil
	}
	return filepath.ToSlash(rel), nil
}

// containingDir reports which selected directory holds the file path,
// if any. An empty selected directory means the project root and
// matches every file.
func containingDir(filePath string, dirs []string) (string, bool) {
	p := strings.TrimPrefix(strings.ReplaceAll(filePath, "\\", "/"), "/")
	for _, d := range dirs {
		if d == "" {
			return d, true
		}
		if strings.HasPrefix(p, d+"/") {
			return d, true
		}
	}
	return "", false
}

func extensionAllowed(ext string, opts FetchOptions) bool {
	ext = strings.ToLower(ext)
	for _, e := range opts.ExcludeExtensions {
		if strings.EqualFold(e, ext) {
			return false
		}
	}
	if len(opts.IncludeExtensions) == 0 {
		return true
	}
	for _, e := range opts.IncludeExtensions {
		if strings.EqualFold(e, ext) {
			return true
		}
	}
	return false
}

func extractPartial(file domain.File, lineCount int) domain.PartialFileContent {
	lines := strings.Split(file.Content, "\n")
	total := len(lines)
	kept := lineCount
	if total < kept {
		kept = total
	}
	content := strings.Join(lines[:kept], "\n")

	return domain.PartialFileContent{
		FileID:         file.ID,
		Path:           file.Path,
		Extension:      file.Extension,
		PartialContent: content,
		LineCount:      kept,
		TotalLines:     total,
		Truncated:      total > lineCount,
		Size:           file.Size,
	}
}

// estimateTokens approximates token cost as ceil(length / 4).
func estimateTokens(content string) int {
	return (len(content) + 3) / 4
}
