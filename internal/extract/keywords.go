// Package extract derives significant terms and coarse named entities from
// arbitrary text. The verifier uses it to judge similarity between a suspect
// segment and a corpus passage; the pipeline uses it to build retrieval
// queries when no knowledge context was supplied.
package extract

import (
	"regexp"
	"sort"
	"strings"
)

// Token length thresholds. Both affect observable results and are kept
// distinct on purpose: similarity keeps shorter tokens than query building.
const (
	minSignificantLen = 2 // similarity path keeps tokens longer than this
	minKeywordLen     = 3 // query construction keeps tokens longer than this
)

// stopwords covers both corpus languages (the store is French-first, the
// generated content mostly English)
var stopwords = map[string]struct{}{
	// French
	"le": {}, "la": {}, "les": {}, "un": {}, "une": {}, "des": {}, "et": {},
	"ou": {}, "a": {}, "à": {}, "de": {}, "du": {}, "en": {}, "est": {},
	"ce": {}, "que": {}, "qui": {}, "dans": {}, "par": {}, "pour": {},
	"sur": {}, "avec": {}, "sans": {}, "il": {}, "elle": {}, "ils": {},
	"elles": {}, "nous": {}, "vous": {}, "je": {}, "tu": {},
	// English
	"the": {}, "an": {}, "and": {}, "or": {}, "of": {}, "in": {}, "is": {},
	"are": {}, "was": {}, "were": {}, "that": {}, "this": {}, "these": {},
	"those": {}, "to": {}, "for": {}, "on": {}, "with": {}, "without": {},
	"by": {}, "at": {}, "from": {}, "as": {}, "it": {}, "its": {}, "has": {},
	"have": {}, "had": {}, "be": {}, "been": {}, "not": {}, "but": {},
}

var (
	nonWordRe = regexp.MustCompile(`[^\p{L}\p{N}\s]`)

	monthNames = `(?:january|february|march|april|may|june|july|august|september|october|november|december|` +
		`janvier|février|mars|avril|mai|juin|juillet|août|septembre|octobre|novembre|décembre)`

	// Date-like spans: "12 january 2020", "january 2020", bare "2020"
	dayMonthYearRe = regexp.MustCompile(`(?i)\b\d{1,2}\s+` + monthNames + `\s+\d{4}\b`)
	monthYearRe    = regexp.MustCompile(`(?i)\b` + monthNames + `\s+\d{4}\b`)
	bareYearRe     = regexp.MustCompile(`\b\d{4}\b`)

	// Runs of capitalized tokens ("Banque de France" keeps lowercase linkers)
	properRunRe = regexp.MustCompile(`\p{Lu}[\p{L}\p{N}'-]*(?:\s+(?:de|du|des|of|the|la|le)\s+\p{Lu}[\p{L}\p{N}'-]*|\s+\p{Lu}[\p{L}\p{N}'-]*)*`)

	percentRe = regexp.MustCompile(`(?:\d{1,3}(?:,\d{3})*|\d+)(?:\.\d+)?\s*%`)

	sentenceEndRe = regexp.MustCompile(`[.!?]\s*$`)
)

// SignificantWords returns the lower-cased, punctuation-stripped tokens of
// text longer than two characters, minus stopwords
func SignificantWords(text string) map[string]struct{} {
	words := make(map[string]struct{})
	for _, tok := range tokenize(text) {
		if len([]rune(tok)) <= minSignificantLen {
			continue
		}
		if _, stop := stopwords[tok]; stop {
			continue
		}
		words[tok] = struct{}{}
	}
	return words
}

// Keywords returns up to topN tokens ranked by frequency, restricted to
// tokens longer than three characters. Ties break alphabetically so the
// ranking is deterministic.
func Keywords(text string, topN int) []string {
	freq := make(map[string]int)
	for _, tok := range tokenize(text) {
		if len([]rune(tok)) <= minKeywordLen {
			continue
		}
		if _, stop := stopwords[tok]; stop {
			continue
		}
		freq[tok]++
	}

	ranked := make([]string, 0, len(freq))
	for w := range freq {
		ranked = append(ranked, w)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if freq[ranked[i]] != freq[ranked[j]] {
			return freq[ranked[i]] > freq[ranked[j]]
		}
		return ranked[i] < ranked[j]
	})

	if topN >= 0 && len(ranked) > topN {
		ranked = ranked[:topN]
	}
	return ranked
}

// Entities unions three detectors: date-like spans, capitalized-token runs
// not at sentence start, and percentage literals. Everything except the
// percentage literals is lower-cased.
func Entities(text string) map[string]struct{} {
	entities := make(map[string]struct{})

	for _, re := range []*regexp.Regexp{dayMonthYearRe, monthYearRe, bareYearRe} {
		for _, m := range re.FindAllString(text, -1) {
			entities[strings.ToLower(m)] = struct{}{}
		}
	}

	for _, loc := range properRunRe.FindAllStringIndex(text, -1) {
		if atSentenceStart(text, loc[0]) {
			continue
		}
		entities[strings.ToLower(text[loc[0]:loc[1]])] = struct{}{}
	}

	for _, m := range percentRe.FindAllString(text, -1) {
		entities[m] = struct{}{}
	}

	return entities
}

// tokenize lower-cases text, strips punctuation and splits on whitespace
func tokenize(text string) []string {
	cleaned := nonWordRe.ReplaceAllString(strings.ToLower(text), " ")
	return strings.Fields(cleaned)
}

// atSentenceStart reports whether the byte at pos begins the text or
// follows sentence-ending punctuation. Capitalized tokens in that position are
// presumed ordinary sentence case, not proper nouns.
func atSentenceStart(text string, pos int) bool {
	if pos == 0 {
		return true
	}
	return sentenceEndRe.MatchString(text[:pos])
}
