// Package verify corroborates suspect segments against a knowledge context:
// exact substring match first, then keyword/entity similarity against
// passages retrieved from the store.
package verify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pverdier/veracite/internal/cache"
	"github.com/pverdier/veracite/internal/extract"
	"github.com/pverdier/veracite/internal/model"
	"github.com/pverdier/veracite/internal/store"
)

// Verification constants. These are behavioral, not tunable: results are
// defined relative to these exact values.
const (
	similarityThreshold = 0.4
	entityBoost         = 0.1
	sectionLookupLimit  = 3
	journalLookupLimit  = 3
)

// Verification sources reported on corroborated segments
const (
	sourceCache      = "cache"
	sourceExactMatch = "knowledge base (exact match)"
)

// Verifier resolves suspect segments to verified/unresolved. The cache and
// the retrieval collaborator are injected so callers control sharing and
// tests can substitute fakes.
type Verifier struct {
	cache    cache.Cache
	searcher store.Searcher
	logger   *slog.Logger
}

// NewVerifier creates a verifier. searcher may be nil, in which case the
// per-segment retrieval fallback is skipped.
func NewVerifier(c cache.Cache, searcher store.Searcher, logger *slog.Logger) *Verifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Verifier{
		cache:    c,
		searcher: searcher,
		logger:   logger.With("component", "verifier"),
	}
}

// Outcome is the result of verifying a batch of suspect segments
type Outcome struct {
	Verified   []model.SuspectSegment
	Unresolved []model.SuspectSegment
	Facts      []model.VerifiedFact
}

// Verify resolves each segment in order: cached verdict, exact substring
// match against the serialized context, then similarity against retrieved
// sections and journal entries. The first success wins; a segment with no
// success is unresolved and the negative verdict is cached. Retrieval
// failures leave the segment unresolved, never abort the batch. A context
// marked RetrievalDisabled is matched against as supplied: the per-segment
// retrieval fallback is skipped.
func (v *Verifier) Verify(ctx context.Context, segments []model.SuspectSegment, kctx *model.KnowledgeContext) Outcome {
	out := Outcome{
		Verified:   []model.SuspectSegment{},
		Unresolved: []model.SuspectSegment{},
		Facts:      []model.VerifiedFact{},
	}

	corpus := kctx.Serialize()
	retrieve := kctx == nil || !kctx.RetrievalDisabled

	for _, seg := range segments {
		fp := cache.Fingerprint(seg.Text, corpus)

		if verdict, found := v.cache.Get(fp); found {
			if verdict.Verified {
				seg.Verified = true
				seg.VerificationSource = sourceCache
				out.Verified = append(out.Verified, seg)
				out.Facts = append(out.Facts, model.VerifiedFact{
					Text:       seg.Text,
					Confidence: verdict.Confidence,
					Source:     sourceCache,
				})
			} else {
				out.Unresolved = append(out.Unresolved, seg)
			}
			continue
		}

		if corpus != "" && strings.Contains(corpus, seg.Text) {
			v.resolve(&out, seg, fp, sourceExactMatch, 1.0)
			continue
		}

		if retrieve {
			if source, confidence, ok := v.searchFallback(ctx, seg); ok {
				v.resolve(&out, seg, fp, source, confidence)
				continue
			}
		}

		v.cache.Put(fp, cache.Verdict{Verified: false})
		out.Unresolved = append(out.Unresolved, seg)
	}

	return out
}

// resolve marks a segment verified, records the fact and caches the verdict
func (v *Verifier) resolve(out *Outcome, seg model.SuspectSegment, fp, source string, confidence float64) {
	seg.Verified = true
	seg.VerificationSource = source
	out.Verified = append(out.Verified, seg)
	out.Facts = append(out.Facts, model.VerifiedFact{
		Text:       seg.Text,
		Confidence: confidence,
		Source:     source,
	})
	v.cache.Put(fp, cache.Verdict{Verified: true, Source: source, Confidence: confidence})
}

// searchFallback queries the retrieval collaborator with the segment's
// surrounding context and tests similarity against each candidate passage:
// sections first, then journal entries.
func (v *Verifier) searchFallback(ctx context.Context, seg model.SuspectSegment) (string, float64, bool) {
	if v.searcher == nil {
		return "", 0, false
	}

	sections, err := v.searcher.SearchRelevantSections(ctx, seg.Context, sectionLookupLimit)
	if err != nil {
		v.logger.Warn("section lookup failed", "error", err)
	}
	for _, sec := range sections {
		if score := Similarity(seg.Text, sec.Body()); score >= similarityThreshold {
			return fmt.Sprintf("section: %s", sec.Title), score, true
		}
	}

	entries, err := v.searcher.SearchRelevantJournal(ctx, seg.Context, journalLookupLimit)
	if err != nil {
		v.logger.Warn("journal lookup failed", "error", err)
	}
	for _, e := range entries {
		if score := Similarity(seg.Text, e.Content); score >= similarityThreshold {
			return fmt.Sprintf("journal: %s", e.Date), score, true
		}
	}

	return "", 0, false
}

// Similarity scores how much of a is covered by b: the share of a's
// significant words present in b, boosted by 0.1 per shared entity,
// clamped to 1.0.
func Similarity(a, b string) float64 {
	wordsA := extract.SignificantWords(a)
	if len(wordsA) == 0 {
		return 0
	}
	wordsB := extract.SignificantWords(b)

	common := 0
	for w := range wordsA {
		if _, ok := wordsB[w]; ok {
			common++
		}
	}
	score := float64(common) / float64(len(wordsA))

	entitiesA := extract.Entities(a)
	entitiesB := extract.Entities(b)
	for e := range entitiesA {
		if _, ok := entitiesB[e]; ok {
			score += entityBoost
		}
	}

	if score > 1.0 {
		score = 1.0
	}
	return score
}
