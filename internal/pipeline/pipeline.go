// Package pipeline sequences the verification pass: scan, ensure context,
// verify, score, correct, assemble. The Checker is the only unit exposed
// to callers.
package pipeline

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/pverdier/veracite/internal/cache"
	"github.com/pverdier/veracite/internal/correct"
	"github.com/pverdier/veracite/internal/extract"
	"github.com/pverdier/veracite/internal/model"
	"github.com/pverdier/veracite/internal/scan"
	"github.com/pverdier/veracite/internal/score"
	"github.com/pverdier/veracite/internal/store"
	"github.com/pverdier/veracite/internal/verify"
)

const (
	// Content shorter than this is trivially non-hallucinatory and is not
	// scanned at all. Counted in runes: the corpus is accent-heavy French.
	minCheckLength = 50

	// Implicit context construction: keywords pulled from the whole input,
	// passages retrieved per repository
	implicitKeywordLimit = 10
	implicitSectionLimit = 5
	implicitJournalLimit = 10
)

// Checker owns one verification cache and runs the complete pass over a
// piece of content. Construct one per worker, or share one: every shared
// component is safe for concurrent use.
type Checker struct {
	scanner   *scan.Scanner
	verifier  *verify.Verifier
	scorer    *score.Scorer
	corrector *correct.Corrector
	searcher  store.Searcher
	cache     cache.Cache
	logger    *slog.Logger

	mu               sync.Mutex
	lastRun          time.Time
	segmentsSeen     int
	segmentsVerified int
}

// NewChecker wires a checker around the given retrieval collaborator.
// searcher may be nil: verification then relies on caller-supplied
// contexts alone.
func NewChecker(searcher store.Searcher, logger *slog.Logger) *Checker {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "checker")

	verdictCache := cache.NewMemoryCache()
	return &Checker{
		scanner:   scan.NewScanner(),
		verifier:  verify.NewVerifier(verdictCache, searcher, logger),
		scorer:    score.NewScorer(),
		corrector: correct.NewCorrector(),
		searcher:  searcher,
		cache:     verdictCache,
		logger:    logger,
	}
}

// Check runs the verification pass over content. When kctx is nil an
// implicit context is built by querying the store with keywords from the
// whole input; any failure there degrades to an empty context rather than
// failing the check. Check never returns an error: retrieval problems
// only leave segments unresolved.
func (c *Checker) Check(ctx context.Context, content string, kctx *model.KnowledgeContext) *model.CheckResult {
	if utf8.RuneCountInString(content) < minCheckLength {
		return model.DefaultCheckResult(content)
	}

	suspects, uncertains := c.scanner.Scan(content)

	if kctx == nil {
		kctx = c.buildContext(ctx, content)
	}

	outcome := c.verifier.Verify(ctx, suspects, kctx)

	confidence := c.scorer.Score(outcome.Unresolved, len(content))
	hasHallucinations := len(outcome.Unresolved) > 0

	corrected := content
	if hasHallucinations {
		corrected = c.corrector.Correct(content, outcome.Unresolved)
	}

	c.recordRun(len(suspects), len(outcome.Verified))

	return &model.CheckResult{
		HasHallucinations: hasHallucinations,
		ConfidenceScore:   confidence,
		SuspectSegments:   assembleSegments(outcome),
		VerifiedFacts:     outcome.Facts,
		UncertainSegments: uncertains,
		CorrectedContent:  corrected,
	}
}

// buildContext derives a query from the input and retrieves candidate
// passages. Every failure path returns an empty (never nil) context.
func (c *Checker) buildContext(ctx context.Context, content string) *model.KnowledgeContext {
	kctx := &model.KnowledgeContext{}
	if c.searcher == nil {
		return kctx
	}

	keywords := extract.Keywords(content, implicitKeywordLimit)
	if len(keywords) == 0 {
		return kctx
	}
	query := strings.Join(keywords, " ")

	sections, err := c.searcher.SearchRelevantSections(ctx, query, implicitSectionLimit)
	if err != nil {
		c.logger.Warn("implicit context: section retrieval failed", "error", err)
	} else {
		kctx.Sections = sections
	}

	entries, err := c.searcher.SearchRelevantJournal(ctx, query, implicitJournalLimit)
	if err != nil {
		c.logger.Warn("implicit context: journal retrieval failed", "error", err)
	} else {
		kctx.JournalEntries = entries
	}

	return kctx
}

// assembleSegments merges verified and unresolved segments back into a
// single list ordered by position in the source text
func assembleSegments(outcome verify.Outcome) []model.SuspectSegment {
	all := make([]model.SuspectSegment, 0, len(outcome.Verified)+len(outcome.Unresolved))
	all = append(all, outcome.Verified...)
	all = append(all, outcome.Unresolved...)
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].Span.Start != all[j].Span.Start {
			return all[i].Span.Start < all[j].Span.Start
		}
		return all[i].Span.End < all[j].Span.End
	})
	return all
}

func (c *Checker) recordRun(seen, verified int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastRun = time.Now().UTC()
	c.segmentsSeen += seen
	c.segmentsVerified += verified
}

// Status reports operational state: cache size, share of suspect segments
// verified so far, and the time of the last run.
type Status struct {
	CacheSize     int        `json:"cache_size"`
	VerifiedRatio float64    `json:"verified_ratio"`
	LastRunTime   *time.Time `json:"last_run_time,omitempty"`
}

// Status returns current operational counters
func (c *Checker) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := Status{CacheSize: c.cache.Size()}
	if c.segmentsSeen > 0 {
		st.VerifiedRatio = float64(c.segmentsVerified) / float64(c.segmentsSeen)
	}
	if !c.lastRun.IsZero() {
		t := c.lastRun
		st.LastRunTime = &t
	}
	return st
}

// ClearCache drops every cached verdict. Subsequent checks re-verify from
// scratch.
func (c *Checker) ClearCache() {
	c.cache.Clear()
}
