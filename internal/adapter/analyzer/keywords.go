package analyzer

import (
	"strings"
	"unicode"
)

const maxKeywords = 15

// KeywordExtractor normalizes free text into an ordered, deduplicated
// list of content tokens for the scoring heuristics.
type KeywordExtractor struct {
	stopwords map[string]struct{}
	typos     map[string]string
	generic   map[string]struct{}
	intent    map[string]struct{}
}

// NewKeywordExtractor creates an extractor with the default stopword,
// typo-correction and intent tables.
func NewKeywordExtractor() *KeywordExtractor {
	return &KeywordExtractor{
		stopwords: defaultStopwords(),
		typos:     defaultTypoTable(),
		generic:   toSet([]string{"file", "files"}),
		intent:    toSet([]string{"suggest", "suggestion", "suggestions", "search", "find", "manager", "browse", "list"}),
	}
}

// Extract returns up to 15 lowercase keywords: stopwords removed, typos
// corrected, deduplicated, input order preserved. Generic tokens like
// "file"/"files" are stripped unless the token set also carries a
// search/suggestion-intent word, which marks them as the actual
// subject. Empty input yields an empty list.
func (e *KeywordExtractor) Extract(text string) []string {
	words := splitWords(text)
	if len(words) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(words))
	keywords := make([]string, 0, len(words))
	var stripped []string
	hasIntent := false

	for _, word := range words {
		word = strings.ToLower(word)
		if len(word) < 2 {
			continue
		}
		if fixed, ok := e.typos[word]; ok {
			word = fixed
		}
		if _, isStop := e.stopwords[word]; isStop {
			continue
		}
		if _, isIntent := e.intent[word]; isIntent {
			hasIntent = true
		}
		if _, isGeneric := e.generic[word]; isGeneric {
			stripped = append(stripped, word)
			continue
		}
		if _, dup := seen[word]; dup {
			continue
		}
		seen[word] = struct{}{}
		keywords = append(keywords, word)
	}

	// Re-admit generic tokens only when the query signals search intent.
	if hasIntent {
		for _, word := range stripped {
			if _, dup := seen[word]; dup {
				continue
			}
			seen[word] = struct{}{}
			keywords = append(keywords, word)
		}
	}

	if len(keywords) > maxKeywords {
		keywords = keywords[:maxKeywords]
	}
	return keywords
}

// splitWords splits text into words using unicode word boundaries.
func splitWords(text string) []string {
	var words []string
	var current strings.Builder

	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			current.WriteRune(r)
		} else {
			if current.Len() > 0 {
				words = append(words, current.String())
				current.Reset()
			}
		}
	}
	if current.Len() > 0 {
		words = append(words, current.String())
	}

	return words
}

func toSet(words []string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}

// defaultTypoTable maps frequent misspellings seen in real queries to
// their corrections.
func defaultTypoTable() map[string]string {
	return map[string]string{
		"serach":   "search",
		"saerch":   "search",
		"suggets":  "suggest",
		"sugest":   "suggest",
		"promt":    "prompt",
		"promts":   "prompts",
		"fiel":     "file",
		"fiels":    "files",
		"databse":  "database",
		"funciton": "function",
		"functoin": "function",
		"servce":   "service",
		"confg":    "config",
		"migratin": "migration",
	}
}

// defaultStopwords returns a set of common English stopwords.
func defaultStopwords() map[string]struct{} {
	return toSet([]string{
		"a", "an", "and", "are", "as", "at", "be", "by", "for",
		"from", "has", "he", "in", "is", "it", "its", "of", "on",
		"that", "the", "to", "was", "were", "will", "with", "this",
		"have", "had", "but", "not", "you", "your", "we", "our",
		"they", "their", "she", "her", "his", "if", "or", "so",
		"no", "can", "do", "does", "did", "been", "being", "would",
		"could", "should", "may", "might", "must", "shall", "which",
		"who", "whom", "what", "when", "where", "why", "how", "all",
		"each", "every", "both", "few", "more", "most", "other",
		"some", "such", "than", "too", "very", "just", "also",
		"me", "my", "please", "want", "need", "like", "about",
	})
}
