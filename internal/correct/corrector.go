// Package correct rewrites unresolved suspect segments into hedged,
// defensible language. Corrections are template substitutions, never
// model-generated text.
package correct

import (
	"regexp"
	"sort"
	"strings"

	"github.com/pverdier/veracite/internal/model"
)

var (
	percentRe = regexp.MustCompile(`(\d{1,3}(?:,\d{3})*|\d+)(?:\.\d+)?\s*%`)
	yearRe    = regexp.MustCompile(`\d{4}`)

	// "in 2020", "en l'année 2004": point-in-time phrasings
	pointYearRe = regexp.MustCompile(`(?i)\b(?:in|en)\s+(?:the\s+years?\s+|l'année\s+|les\s+années\s+)?(\d{4})\b`)
	// "during/since <phrase> <year>" and the French equivalents
	spanYearRe = regexp.MustCompile(`(?i)\b(during|since|durant|pendant|depuis)\b[^.\d]{0,40}\d{4}\b`)

	attributionRe = regexp.MustCompile(`(?i)^\s*(according to|based on|selon|d'après)\b`)
)

// Corrector applies span-local rewrite rules to the unresolved segments of
// a text
type Corrector struct{}

// NewCorrector creates a new corrector
func NewCorrector() *Corrector {
	return &Corrector{}
}

type edit struct {
	span        model.Span
	replacement string
}

// Correct rewrites each unresolved segment in place and splices the
// results back at their original offsets. Segments are considered in
// descending start order; a segment overlapping an already-kept one is
// dropped so offsets stay valid. The final text is assembled in a single
// linear pass. The corrected text is not re-scanned.
func (c *Corrector) Correct(original string, unresolved []model.SuspectSegment) string {
	if len(unresolved) == 0 {
		return original
	}

	edits := make([]edit, 0, len(unresolved))
	for _, seg := range unresolved {
		if seg.Span.Start < 0 || seg.Span.End > len(original) || seg.Span.Start >= seg.Span.End {
			continue
		}
		edits = append(edits, edit{span: seg.Span, replacement: c.rewrite(seg.Text)})
	}

	sort.Slice(edits, func(i, j int) bool {
		if edits[i].span.Start != edits[j].span.Start {
			return edits[i].span.Start > edits[j].span.Start
		}
		return edits[i].span.End > edits[j].span.End
	})

	// Keep non-overlapping edits, highest offsets first
	kept := edits[:0]
	minStart := len(original) + 1
	for _, e := range edits {
		if e.span.End > minStart {
			continue
		}
		kept = append(kept, e)
		minStart = e.span.Start
	}

	// Rebuild ascending in one pass
	var b strings.Builder
	pos := 0
	for i := len(kept) - 1; i >= 0; i-- {
		e := kept[i]
		b.WriteString(original[pos:e.span.Start])
		b.WriteString(e.replacement)
		pos = e.span.End
	}
	b.WriteString(original[pos:])
	return b.String()
}

// rewrite picks the rule for one segment. Priority order matters: a
// percentage inside an attributed phrase is still treated as a percentage.
func (c *Corrector) rewrite(text string) string {
	switch {
	case strings.Contains(text, "%"):
		return percentRe.ReplaceAllString(text, "approximately $1%")
	case yearRe.MatchString(text):
		return rewriteYear(text)
	case attributionRe.MatchString(text):
		return rewriteAttribution(text)
	default:
		return "it would seem that " + text
	}
}

// rewriteYear replaces a temporal-phrase year with an approximate period:
// point-in-time forms become "vers <year>", duration forms keep their
// temporal word and drop the year.
func rewriteYear(text string) string {
	if m := pointYearRe.FindStringSubmatch(text); m != nil {
		return pointYearRe.ReplaceAllString(text, "vers $1")
	}
	if m := spanYearRe.FindStringSubmatch(text); m != nil {
		return spanYearRe.ReplaceAllString(text, strings.ToLower(m[1])+" cette période")
	}
	return "it would seem that " + text
}

// rewriteAttribution generalizes a named source to an indefinite one
func rewriteAttribution(text string) string {
	lower := strings.ToLower(strings.TrimSpace(text))
	switch {
	case strings.HasPrefix(lower, "based on"):
		return "based on certain analyses"
	case strings.HasPrefix(lower, "according to"):
		return "according to certain sources"
	default: // selon, d'après
		return "d'après certaines sources"
	}
}
