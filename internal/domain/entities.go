package domain

import (
	"errors"
	"time"
)

// Sentinel errors for input validation failures. Everything else in the
// pipeline degrades to a documented fallback instead of erroring.
var (
	ErrProjectNotFound  = errors.New("project not found")
	ErrInvalidDirectory = errors.New("invalid directory")
)

// Strategy names a suggestion preset controlling pool sizes and AI usage.
type Strategy string

const (
	StrategyFast     Strategy = "fast"
	StrategyBalanced Strategy = "balanced"
	StrategyThorough Strategy = "thorough"
)

// ModelTier is a logical model capability level, resolved to concrete
// provider settings by a TierResolver.
type ModelTier string

const (
	TierMedium ModelTier = "medium"
	TierHigh   ModelTier = "high"
)

type Project struct {
	ID        string
	Name      string
	RootDir   string
	CreatedAt time.Time
}

// File is a candidate source file. Content is the indexed snapshot, not
// a live read of the working tree.
type File struct {
	ID        string
	ProjectID string
	Path      string
	Name      string
	Extension string
	Content   string
	Size      int64
	Imports   []string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Prompt is a reusable candidate prompt.
type Prompt struct {
	ID        string
	ProjectID string
	Title     string
	Content   string
	Tags      []string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Query is one suggestion request's text. Immutable for the duration of
// a call; Combined is what the heuristics match against.
type Query struct {
	Text        string
	UserContext string
}

func (q Query) Combined() string {
	if q.UserContext == "" {
		return q.Text
	}
	return q.Text + " " + q.UserContext
}

// RelevanceScore holds the per-candidate heuristic sub-scores. Every
// field, including Total, is clamped to [0,1].
type RelevanceScore struct {
	ItemID  string  `json:"itemId"`
	Title   float64 `json:"title"`
	Content float64 `json:"content"`
	Tags    float64 `json:"tags"`
	Path    float64 `json:"path"`
	Recency float64 `json:"recency"`
	Imports float64 `json:"imports"`
	Total   float64 `json:"total"`
}

// CompositeScore extends a relevance score with blended contributions.
// Total is re-clamped to [0,1] after blending.
type CompositeScore struct {
	RelevanceScore
	Fuzzy        float64  `json:"fuzzy"`
	PathBoost    float64  `json:"pathBoost"`
	CodeBoost    float64  `json:"codeBoost"`
	DomainBoost  float64  `json:"domainBoost"`
	Penalty      float64  `json:"penalty"`
	AIConfidence float64  `json:"aiConfidence,omitempty"`
	AIReasons    []string `json:"aiReasons,omitempty"`
}

// AISelection is one structured model pick. Confidence and Reasons come
// only from the model response; the system never fabricates reasons
// beyond the literal fallback marker.
type AISelection struct {
	ItemID     string   `json:"id"`
	Confidence float64  `json:"confidence"`
	Reasons    []string `json:"reasons"`
}

// DirectoryNode is one node of a project directory tree.
type DirectoryNode struct {
	Name     string           `json:"name"`
	Path     string           `json:"path"`
	Children []*DirectoryNode `json:"children,omitempty"`
}

// DirectorySelection is a directory the model (or the fallback) picked.
// Path is project-relative without a leading slash.
type DirectorySelection struct {
	Path       string  `json:"path"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason"`
}

// PartialFileContent is the head of one file, computed per fetch call
// and never cached.
type PartialFileContent struct {
	FileID         string `json:"fileId"`
	Path           string `json:"path"`
	Extension      string `json:"extension"`
	PartialContent string `json:"partialContent"`
	LineCount      int    `json:"lineCount"`
	TotalLines     int    `json:"totalLines"`
	Truncated      bool   `json:"truncated"`
	Size           int64  `json:"size"`
}

// FetchMetadata aggregates one partial-content fetch.
type FetchMetadata struct {
	TotalFilesFound      int     `json:"totalFilesFound"`
	FilesReturned        int     `json:"filesReturned"`
	FilesSkipped         int     `json:"filesSkipped"`
	AverageLineCount     float64 `json:"averageLineCount"`
	TotalEstimatedTokens int     `json:"totalEstimatedTokens"`
	ProcessingTimeMs     int64   `json:"processingTimeMs"`
}

// SuggestionMetadata reports how a suggestion call was served. Callers
// distinguish "AI declined" from "AI picked nothing" here, not through
// errors.
type SuggestionMetadata struct {
	TotalItems       int      `json:"totalItems"`
	AnalyzedItems    int      `json:"analyzedItems"`
	Strategy         Strategy `json:"strategy"`
	ProcessingTimeMs int64    `json:"processingTimeMs"`
	TokensSaved      int      `json:"tokensSaved"`
	AISelections     int      `json:"aiSelections"`
}
