package ranker

import (
	"fmt"
	"strings"
	"time"

	"suggest/internal/domain"
)

const (
	maxDescriptorTitle = 60
	maxDescriptorTags  = 4
	maxDescriptorHints = 3
)

// Candidate is what the reranker knows about one composite result:
// enough for a compact descriptor, nothing more.
type Candidate struct {
	ID        string
	Title     string
	Tags      []string
	UpdatedAt time.Time
	Score     domain.CompositeScore
}

// categoryTags maps tag spellings to the descriptor category vocabulary.
var categoryTags = map[string]string{
	"auth": "auth", "authentication": "auth", "login": "auth", "security": "auth",
	"test": "test", "testing": "test", "spec": "test", "e2e": "test",
	"api": "api", "endpoint": "api", "route": "api", "backend": "api",
	"ui": "ui", "frontend": "ui", "component": "ui", "page": "ui",
	"docs": "docs", "documentation": "docs", "readme": "docs",
}

// inferCategory derives a coarse category from tags, defaulting to
// "general".
func inferCategory(tags []string) string {
	for _, tag := range tags {
		if cat, ok := categoryTags[strings.ToLower(tag)]; ok {
			return cat
		}
	}
	return "general"
}

// buildDescriptor renders one candidate as a single line the model can
// scan cheaply: id, truncated title, category, composite rank, score,
// recency signal, a few tags and derived hints. The compact level trims
// the line for cheaper strategies: 1 drops hints, 2 drops hints and
// tags.
func buildDescriptor(c Candidate, rank int, keywords []string, now time.Time, compact int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s | %s | cat:%s | rank:%d | score:%.2f | %s",
		c.ID, truncateTitle(c.Title), inferCategory(c.Tags), rank, c.Score.Total, recencySignal(c.UpdatedAt, now))

	if compact < 2 && len(c.Tags) > 0 {
		tags := c.Tags
		if len(tags) > maxDescriptorTags {
			tags = tags[:maxDescriptorTags]
		}
		fmt.Fprintf(&b, " | tags:%s", strings.Join(tags, ","))
	}

	if compact < 1 {
		if hints := buildHints(c, keywords); len(hints) > 0 {
			fmt.Fprintf(&b, " | hints:%s", strings.Join(hints, ","))
		}
	}

	return b.String()
}

// truncateTitle bounds a title to maxDescriptorTitle runes.
func truncateTitle(title string) string {
	runes := []rune(title)
	if len(runes) <= maxDescriptorTitle {
		return title
	}
	return string(runes[:maxDescriptorTitle-3]) + "..."
}

// buildHints derives up to 3 machine-checkable hint tokens: keyword
// appearing in the title, a tag landing in a known category, and
// unusually strong sub-scores.
func buildHints(c Candidate, keywords []string) []string {
	var hints []string
	lowerTitle := strings.ToLower(c.Title)

	for _, kw := range keywords {
		if strings.Contains(lowerTitle, kw) {
			hints = append(hints, "title:"+kw)
			break
		}
	}
	if cat := inferCategory(c.Tags); cat != "general" {
		hints = append(hints, "cat:"+cat)
	}
	switch {
	case c.Score.Tags >= 0.8:
		hints = append(hints, "strong-tags")
	case c.Score.Path >= 0.8:
		hints = append(hints, "strong-path")
	case c.Score.Title >= 0.8:
		hints = append(hints, "strong-title")
	}

	if len(hints) > maxDescriptorHints {
		hints = hints[:maxDescriptorHints]
	}
	return hints
}

func recencySignal(updatedAt, now time.Time) string {
	if updatedAt.IsZero() {
		return "age:unknown"
	}
	age := now.Sub(updatedAt)
	switch {
	case age <= 24*time.Hour:
		return "age:today"
	case age <= 7*24*time.Hour:
		return "age:week"
	case age <= 30*24*time.Hour:
		return "age:month"
	default:
		return "age:older"
	}
}
