package ranker

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"suggest/internal/domain"
	"suggest/internal/port"
)

// stubGateway decodes a canned JSON payload into out, or fails.
type stubGateway struct {
	payload string
	err     error
	calls   int
	prompts []string
}

func (g *stubGateway) Generate(ctx context.Context, req port.GenerateRequest, out any) error {
	g.calls++
	g.prompts = append(g.prompts, req.Prompt)
	if g.err != nil {
		return g.err
	}
	return json.Unmarshal([]byte(g.payload), out)
}

func testCandidates() []Candidate {
	now := time.Now()
	return []Candidate{
		{ID: "a", Title: "Authentication Flow", Tags: []string{"auth"}, UpdatedAt: now, Score: domain.CompositeScore{RelevanceScore: domain.RelevanceScore{ItemID: "a", Total: 0.9}}},
		{ID: "b", Title: "API Routes", Tags: []string{"api"}, UpdatedAt: now, Score: domain.CompositeScore{RelevanceScore: domain.RelevanceScore{ItemID: "b", Total: 0.7}}},
		{ID: "c", Title: "Unit Testing Guide", Tags: []string{"testing"}, UpdatedAt: now, Score: domain.CompositeScore{RelevanceScore: domain.RelevanceScore{ItemID: "c", Total: 0.5}}},
		{ID: "d", Title: "Readme", Tags: nil, UpdatedAt: now, Score: domain.CompositeScore{RelevanceScore: domain.RelevanceScore{ItemID: "d", Total: 0.3}}},
	}
}

func TestRerank_HallucinatedIDsDiscarded(t *testing.T) {
	gw := &stubGateway{payload: `{"selections":[
		{"id":"ghost","confidence":0.99,"reasons":["title-match"]},
		{"id":"a","confidence":0.9,"reasons":["title-match"]},
		{"id":"b","confidence":0.8,"reasons":["tag-match"]},
		{"id":"c","confidence":0.7,"reasons":["recent"]}
	]}`}
	r := NewReranker(gw, nil, nil)

	selections, ok := r.Rerank(context.Background(), domain.Query{Text: "auth"}, testCandidates(), RerankOptions{MaxResults: 4, Tier: domain.TierMedium})
	if !ok {
		t.Fatal("expected successful rerank")
	}
	for _, sel := range selections {
		if sel.ItemID == "ghost" {
			t.Error("hallucinated id must never survive filtering")
		}
	}
	if len(selections) != 3 {
		t.Errorf("expected 3 accepted selections, got %d", len(selections))
	}
}

func TestRerank_GatewayFailureFallsBack(t *testing.T) {
	gw := &stubGateway{err: errors.New("model timeout")}
	r := NewReranker(gw, nil, nil)

	selections, ok := r.Rerank(context.Background(), domain.Query{Text: "auth"}, testCandidates(), RerankOptions{MaxResults: 4, Tier: domain.TierMedium})
	if ok {
		t.Error("gateway failure must report a declined stage")
	}
	if selections != nil {
		t.Errorf("expected nil selections on fallback, got %v", selections)
	}
}

func TestRerank_TooFewSelectionsFallsBack(t *testing.T) {
	gw := &stubGateway{payload: `{"selections":[
		{"id":"a","confidence":0.9,"reasons":["title-match"]},
		{"id":"b","confidence":0.8,"reasons":["tag-match"]}
	]}`}
	r := NewReranker(gw, nil, nil)

	_, ok := r.Rerank(context.Background(), domain.Query{Text: "auth"}, testCandidates(), RerankOptions{MaxResults: 4, Tier: domain.TierMedium})
	if ok {
		t.Error("two selections are below the minimum and must decline")
	}
}

func TestRerank_ReasonVocabularyEnforced(t *testing.T) {
	gw := &stubGateway{payload: `{"selections":[
		{"id":"a","confidence":0.9,"reasons":["title-match","because it looks great"]},
		{"id":"b","confidence":0.8,"reasons":["tag-match"]},
		{"id":"c","confidence":2.5,"reasons":["recent"]}
	]}`}
	r := NewReranker(gw, nil, nil)

	selections, ok := r.Rerank(context.Background(), domain.Query{Text: "auth"}, testCandidates(), RerankOptions{MaxResults: 4, Tier: domain.TierMedium})
	if !ok {
		t.Fatal("expected successful rerank")
	}

	for _, sel := range selections {
		for _, reason := range sel.Reasons {
			if _, allowed := allowedReasons[reason]; !allowed {
				t.Errorf("free-text reason leaked through: %q", reason)
			}
		}
		if sel.Confidence < 0 || sel.Confidence > 1 {
			t.Errorf("confidence out of range: %f", sel.Confidence)
		}
	}
}

func TestRerank_PromptContainsDescriptorsAndRubric(t *testing.T) {
	gw := &stubGateway{payload: `{"selections":[
		{"id":"a","confidence":0.9,"reasons":[]},
		{"id":"b","confidence":0.8,"reasons":[]},
		{"id":"c","confidence":0.7,"reasons":[]}
	]}`}
	r := NewReranker(gw, nil, nil)

	_, ok := r.Rerank(context.Background(),
		domain.Query{Text: "implement auth", UserContext: "working on the login page"},
		testCandidates(), RerankOptions{MaxResults: 3, Tier: domain.TierHigh})
	if !ok {
		t.Fatal("expected successful rerank")
	}

	prompt := gw.prompts[0]
	for _, want := range []string{
		"implement auth",
		"working on the login page",
		"Authentication Flow",
		"cat:auth",
		"Intent alignment",
		"Diversity",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestBuildDescriptor_CompactLevels(t *testing.T) {
	c := testCandidates()[0]
	now := time.Now()
	keywords := []string{"auth"}

	full := buildDescriptor(c, 1, keywords, now, 0)
	noHints := buildDescriptor(c, 1, keywords, now, 1)
	terse := buildDescriptor(c, 1, keywords, now, 2)

	if !strings.Contains(full, "hints:") || !strings.Contains(full, "tags:") {
		t.Errorf("level 0 should carry tags and hints: %q", full)
	}
	if strings.Contains(noHints, "hints:") {
		t.Errorf("level 1 should drop hints: %q", noHints)
	}
	if !strings.Contains(noHints, "tags:") {
		t.Errorf("level 1 should keep tags: %q", noHints)
	}
	if strings.Contains(terse, "hints:") || strings.Contains(terse, "tags:") {
		t.Errorf("level 2 should drop hints and tags: %q", terse)
	}
	for _, d := range []string{full, noHints, terse} {
		if !strings.Contains(d, "cat:auth") || !strings.Contains(d, "rank:1") {
			t.Errorf("every level keeps id, category and rank: %q", d)
		}
	}
}

func TestTruncateTitle_RuneSafe(t *testing.T) {
	long := strings.Repeat("é", maxDescriptorTitle+20)
	got := truncateTitle(long)
	if !utf8.ValidString(got) {
		t.Errorf("truncation split a rune: %q", got)
	}
	if want := maxDescriptorTitle; len([]rune(got)) != want {
		t.Errorf("expected %d runes including ellipsis, got %d", want, len([]rune(got)))
	}
	if truncateTitle("short") != "short" {
		t.Error("short titles pass through unchanged")
	}
}

func TestMerge_ModelOrderFirstThenComposite(t *testing.T) {
	composite := []domain.CompositeScore{
		{RelevanceScore: domain.RelevanceScore{ItemID: "a", Total: 0.9}},
		{RelevanceScore: domain.RelevanceScore{ItemID: "b", Total: 0.7}},
		{RelevanceScore: domain.RelevanceScore{ItemID: "c", Total: 0.5}},
		{RelevanceScore: domain.RelevanceScore{ItemID: "d", Total: 0.3}},
	}
	selections := []domain.AISelection{
		{ItemID: "c", Confidence: 0.95, Reasons: []string{"title-match"}},
		{ItemID: "a", Confidence: 0.80, Reasons: []string{"recent"}},
	}

	merged := Merge(composite, selections, 3)

	want := []string{"c", "a", "b"}
	if len(merged) != len(want) {
		t.Fatalf("expected %d results, got %d", len(want), len(merged))
	}
	for i, id := range want {
		if merged[i].ItemID != id {
			t.Errorf("position %d: expected %s, got %s", i, id, merged[i].ItemID)
		}
	}
	if merged[0].AIConfidence != 0.95 {
		t.Errorf("expected confidence carried onto merged score, got %f", merged[0].AIConfidence)
	}
	if merged[2].AIConfidence != 0 {
		t.Errorf("composite filler must not carry AI confidence, got %f", merged[2].AIConfidence)
	}
}

func TestMerge_CapsAtMaxResults(t *testing.T) {
	composite := []domain.CompositeScore{
		{RelevanceScore: domain.RelevanceScore{ItemID: "a"}},
		{RelevanceScore: domain.RelevanceScore{ItemID: "b"}},
	}
	merged := Merge(composite, nil, 1)
	if len(merged) != 1 {
		t.Errorf("expected 1 result, got %d", len(merged))
	}
	if got := Merge(composite, nil, 0); got != nil {
		t.Errorf("zero maxResults should return nil, got %v", got)
	}
}

func TestInferCategory(t *testing.T) {
	cases := []struct {
		tags []string
		want string
	}{
		{[]string{"auth", "backend"}, "auth"},
		{[]string{"testing"}, "test"},
		{[]string{"frontend"}, "ui"},
		{[]string{"misc"}, "general"},
		{nil, "general"},
	}
	for _, c := range cases {
		if got := inferCategory(c.tags); got != c.want {
			t.Errorf("inferCategory(%v) = %q, want %q", c.tags, got, c.want)
		}
	}
}
