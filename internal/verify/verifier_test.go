package verify

import (
	"context"
	"errors"
	"testing"

	"github.com/pverdier/veracite/internal/cache"
	"github.com/pverdier/veracite/internal/model"
)

// fakeSearcher records lookup traffic and serves canned passages
type fakeSearcher struct {
	sections     []model.Section
	entries      []model.JournalEntry
	err          error
	sectionCalls int
	journalCalls int
}

func (f *fakeSearcher) SearchRelevantSections(ctx context.Context, query string, limit int) ([]model.Section, error) {
	f.sectionCalls++
	if f.err != nil {
		return nil, f.err
	}
	if len(f.sections) > limit {
		return f.sections[:limit], nil
	}
	return f.sections, nil
}

func (f *fakeSearcher) SearchRelevantJournal(ctx context.Context, query string, limit int) ([]model.JournalEntry, error) {
	f.journalCalls++
	if f.err != nil {
		return nil, f.err
	}
	if len(f.entries) > limit {
		return f.entries[:limit], nil
	}
	return f.entries, nil
}

func suspect(text string) model.SuspectSegment {
	return model.SuspectSegment{
		Text:    text,
		Context: text,
		Span:    model.Span{Start: 0, End: len(text)},
		Pattern: model.PatternPercentage,
	}
}

func TestVerifier_ExactMatch(t *testing.T) {
	searcher := &fakeSearcher{}
	v := NewVerifier(cache.NewMemoryCache(), searcher, nil)

	kctx := &model.KnowledgeContext{
		Sections: []model.Section{{Title: "Survey", Content: "In the survey, 87% of users preferred the new design."}},
	}

	out := v.Verify(context.Background(), []model.SuspectSegment{suspect("87%")}, kctx)

	if len(out.Verified) != 1 || len(out.Unresolved) != 0 {
		t.Fatalf("expected 1 verified, got %d verified / %d unresolved", len(out.Verified), len(out.Unresolved))
	}
	if out.Verified[0].VerificationSource != "knowledge base (exact match)" {
		t.Errorf("source = %q", out.Verified[0].VerificationSource)
	}
	if len(out.Facts) != 1 || out.Facts[0].Confidence != 1.0 {
		t.Errorf("exact match fact should carry confidence 1.0, got %+v", out.Facts)
	}
	if searcher.sectionCalls != 0 {
		t.Errorf("exact match should not hit the store, made %d calls", searcher.sectionCalls)
	}
}

func TestVerifier_SectionSimilarity(t *testing.T) {
	seg := suspect("the municipal budget grew by twelve percent")
	searcher := &fakeSearcher{
		sections: []model.Section{{
			Title:   "Finances",
			Content: "A long review of how the municipal budget grew over the period, by twelve percent overall.",
		}},
	}
	v := NewVerifier(cache.NewMemoryCache(), searcher, nil)

	out := v.Verify(context.Background(), []model.SuspectSegment{seg}, &model.KnowledgeContext{})

	if len(out.Verified) != 1 {
		t.Fatalf("expected similarity verification, got %+v", out)
	}
	if out.Verified[0].VerificationSource != "section: Finances" {
		t.Errorf("source = %q", out.Verified[0].VerificationSource)
	}
	fact := out.Facts[0]
	if fact.Confidence < similarityThreshold || fact.Confidence > 1.0 {
		t.Errorf("similarity confidence out of range: %f", fact.Confidence)
	}
}

func TestVerifier_JournalFallback(t *testing.T) {
	seg := suspect("quarterly projections reviewed with finance committee")
	searcher := &fakeSearcher{
		entries: []model.JournalEntry{{
			Date:    "2024-03-01",
			Content: "Reviewed quarterly projections with the finance committee this morning.",
		}},
	}
	v := NewVerifier(cache.NewMemoryCache(), searcher, nil)

	out := v.Verify(context.Background(), []model.SuspectSegment{seg}, &model.KnowledgeContext{})

	if len(out.Verified) != 1 {
		t.Fatalf("expected journal verification, got %+v", out)
	}
	if out.Verified[0].VerificationSource != "journal: 2024-03-01" {
		t.Errorf("source = %q", out.Verified[0].VerificationSource)
	}
	if searcher.sectionCalls != 1 {
		t.Errorf("sections should be tried before journal, calls = %d", searcher.sectionCalls)
	}
}

func TestVerifier_Unresolved(t *testing.T) {
	seg := suspect("completely unsupported claim about zebras")
	searcher := &fakeSearcher{}
	v := NewVerifier(cache.NewMemoryCache(), searcher, nil)

	out := v.Verify(context.Background(), []model.SuspectSegment{seg}, &model.KnowledgeContext{})

	if len(out.Unresolved) != 1 || len(out.Verified) != 0 {
		t.Fatalf("expected 1 unresolved, got %+v", out)
	}
	if out.Unresolved[0].Verified {
		t.Error("unresolved segment must not be marked verified")
	}
}

func TestVerifier_CacheShortCircuit(t *testing.T) {
	c := cache.NewMemoryCache()
	kctx := &model.KnowledgeContext{
		Sections: []model.Section{{Title: "Survey", Content: "In the survey, 87% of users preferred the new design."}},
	}

	searcher := &fakeSearcher{}
	v := NewVerifier(c, searcher, nil)

	first := v.Verify(context.Background(), []model.SuspectSegment{suspect("87%")}, kctx)
	if first.Verified[0].VerificationSource != "knowledge base (exact match)" {
		t.Fatalf("first pass source = %q", first.Verified[0].VerificationSource)
	}

	second := v.Verify(context.Background(), []model.SuspectSegment{suspect("87%")}, kctx)
	if len(second.Verified) != 1 {
		t.Fatalf("second pass should verify from cache, got %+v", second)
	}
	if second.Verified[0].VerificationSource != "cache" {
		t.Errorf("second pass source = %q, want cache", second.Verified[0].VerificationSource)
	}
	if searcher.sectionCalls != 0 || searcher.journalCalls != 0 {
		t.Errorf("cached verdict must not trigger retrieval, got %d/%d calls",
			searcher.sectionCalls, searcher.journalCalls)
	}
}

func TestVerifier_NegativeVerdictCached(t *testing.T) {
	c := cache.NewMemoryCache()
	searcher := &fakeSearcher{}
	v := NewVerifier(c, searcher, nil)

	seg := suspect("unsupported claim about moths")
	v.Verify(context.Background(), []model.SuspectSegment{seg}, &model.KnowledgeContext{})
	callsAfterFirst := searcher.sectionCalls

	out := v.Verify(context.Background(), []model.SuspectSegment{seg}, &model.KnowledgeContext{})
	if len(out.Unresolved) != 1 {
		t.Fatalf("expected unresolved from cached negative verdict, got %+v", out)
	}
	if searcher.sectionCalls != callsAfterFirst {
		t.Error("cached negative verdict must not trigger another lookup")
	}
}

func TestVerifier_RetrievalDisabledSkipsFallback(t *testing.T) {
	seg := suspect("the municipal budget grew by twelve percent")
	searcher := &fakeSearcher{
		sections: []model.Section{{
			Title:   "Finances",
			Content: "A long review of how the municipal budget grew over the period, by twelve percent overall.",
		}},
	}
	v := NewVerifier(cache.NewMemoryCache(), searcher, nil)

	kctx := &model.KnowledgeContext{RetrievalDisabled: true}
	out := v.Verify(context.Background(), []model.SuspectSegment{seg}, kctx)

	if len(out.Unresolved) != 1 || len(out.Verified) != 0 {
		t.Fatalf("disabled retrieval should leave the segment unresolved, got %+v", out)
	}
	if searcher.sectionCalls != 0 || searcher.journalCalls != 0 {
		t.Errorf("disabled retrieval must not query the store, got %d/%d calls",
			searcher.sectionCalls, searcher.journalCalls)
	}
}

func TestVerifier_SearcherErrorLeavesUnresolved(t *testing.T) {
	searcher := &fakeSearcher{err: errors.New("store offline")}
	v := NewVerifier(cache.NewMemoryCache(), searcher, nil)

	out := v.Verify(context.Background(), []model.SuspectSegment{suspect("unverifiable claim text")}, &model.KnowledgeContext{})

	if len(out.Unresolved) != 1 {
		t.Fatalf("retrieval failure should leave segment unresolved, got %+v", out)
	}
}

func TestVerifier_CorpusChangeInvalidatesVerdict(t *testing.T) {
	c := cache.NewMemoryCache()
	searcher := &fakeSearcher{}
	v := NewVerifier(c, searcher, nil)

	withFact := &model.KnowledgeContext{
		Sections: []model.Section{{Title: "A", Content: "Exactly 87% of users agreed."}},
	}
	out := v.Verify(context.Background(), []model.SuspectSegment{suspect("87%")}, withFact)
	if len(out.Verified) != 1 {
		t.Fatal("expected verification against first corpus")
	}

	// A different corpus produces a different fingerprint: the old verdict
	// must not be reused.
	withoutFact := &model.KnowledgeContext{
		Sections: []model.Section{{Title: "B", Content: "Nothing relevant in here."}},
	}
	out = v.Verify(context.Background(), []model.SuspectSegment{suspect("87%")}, withoutFact)
	if len(out.Unresolved) != 1 {
		t.Fatalf("stale verdict reused across corpora: %+v", out)
	}
}

func TestSimilarity(t *testing.T) {
	tests := []struct {
		name      string
		a, b      string
		threshold bool // whether the score should clear 0.4
	}{
		{
			name:      "identical text",
			a:         "the municipal budget grew substantially",
			b:         "the municipal budget grew substantially",
			threshold: true,
		},
		{
			name:      "no overlap",
			a:         "zebras roam the savanna plains",
			b:         "budget committee quarterly review",
			threshold: false,
		},
		{
			name:      "partial overlap above threshold",
			a:         "budget grew twelve percent",
			b:         "review shows the budget grew by twelve percent overall",
			threshold: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Similarity(tt.a, tt.b)
			if got < 0 || got > 1 {
				t.Fatalf("similarity out of [0,1]: %f", got)
			}
			if cleared := got >= similarityThreshold; cleared != tt.threshold {
				t.Errorf("Similarity(%q, %q) = %f, threshold clearance = %v, want %v",
					tt.a, tt.b, got, cleared, tt.threshold)
			}
		})
	}
}

func TestSimilarity_EntityBoost(t *testing.T) {
	// Shared entities (percentage, year) add 0.1 each
	base := Similarity("growth was steady overall", "entirely different words here")
	boosted := Similarity("growth of 45% since 2019 overall", "unrelated text mentioning 45% and 2019 only")
	if boosted <= base {
		t.Errorf("shared entities should raise the score: base=%f boosted=%f", base, boosted)
	}
}

func TestSimilarity_EmptyInput(t *testing.T) {
	if got := Similarity("", "anything at all"); got != 0 {
		t.Errorf("empty text should score 0, got %f", got)
	}
}
