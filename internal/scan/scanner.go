package scan

import (
	"regexp"
	"unicode/utf8"

	"github.com/pverdier/veracite/internal/model"
)

const (
	suspectWindow   = 50 // context bytes kept on each side of a suspect match
	uncertainWindow = 30 // context bytes kept around an uncertainty marker
)

// suspectPattern pairs a matcher with the kind it reports
type suspectPattern struct {
	kind model.PatternKind
	re   *regexp.Regexp
}

// Scanner applies the fixed suspect-pattern and uncertainty-marker lists
// over raw text. It is a pure function of its input: no state, no I/O.
//
// The source corpus is French-first with English generated content mixed
// in, so every matcher carries both languages.
type Scanner struct {
	patterns []suspectPattern
	markers  []*regexp.Regexp
}

// NewScanner compiles the fixed pattern set
func NewScanner() *Scanner {
	return &Scanner{
		patterns: []suspectPattern{
			// Academic citation: "according to Dupont et al., 2019"
			{model.PatternCitation, regexp.MustCompile(
				`(?i)\b(?:according to|selon|d'après)\s+\p{L}[\p{L}\p{N}]*\s+et\s+al\.?,?\s+\d{4}`)},
			// Unspecified study: "a study has shown", "une étude a démontré",
			// plus the attributed form "according to a study"
			{model.PatternVagueStudy, regexp.MustCompile(
				`(?i)\b(?:` +
					`(?:a|one|some|recent|several|many)\s+(?:stud(?:y|ies)|research|analys[ei]s)\s+ha(?:s|ve)\s+(?:shown|demonstrated|proven|suggested|indicated)` +
					`|(?:une|des|l[ae]s?)\s+(?:étude|recherche|analyse)s?\b[^.]{0,40}?\b(?:a|ont)\s+(?:démontré|montré|prouvé|suggéré|indiqué)` +
					`|(?:according to|selon|d'après)\s+(?:a|one|recent|une|un)\s+(?:study|survey|research|étude|recherche|analyse)` +
					`)`)},
			// Vague statistics: "according to the statistics/figures/data"
			{model.PatternVagueStats, regexp.MustCompile(
				`(?i)\b(?:according to|based on|selon|d'après)\s+(?:the\s+|les\s+|des\s+)?(?:statistics|figures|data|statistiques|chiffres|données)\b`)},
			// Bare percentage value
			{model.PatternPercentage, regexp.MustCompile(
				`(\d{1,3}(?:,\d{3})*|\d+)(?:\.\d+)?\s*%`)},
			// 4-digit year inside a temporal phrase
			{model.PatternTemporalYear, regexp.MustCompile(
				`(?i)\b(?:in|during|since|en|durant|pendant|depuis)\s+(?:the\s+years?\s+|the\s+early\s+|the\s+late\s+|les\s+années\s+|l'année\s+)?(\d{4})\b`)},
		},
		markers: compileMarkers([]string{
			"probably", "perhaps", "possibly", "it is possible that",
			"it seems that", "it appears that", "one could say that",
			"one may assume that", "generally", "typically", "as a rule",
			"probablement", "peut-être", "possiblement", "il est possible que",
			"il semble que", "on pourrait dire que", "on peut supposer que",
			"généralement", "typiquement", "en règle générale",
		}),
	}
}

// compileMarkers builds one whole-word, case-insensitive matcher per marker
func compileMarkers(markers []string) []*regexp.Regexp {
	res := make([]*regexp.Regexp, 0, len(markers))
	for _, m := range markers {
		res = append(res, regexp.MustCompile(`(?i)\b`+regexp.QuoteMeta(m)+`\b`))
	}
	return res
}

// Scan applies every suspect pattern and uncertainty marker over text.
// Segments come back in pattern order, then match order; offsets are byte
// offsets into text with text[start:end] == segment.Text.
func (s *Scanner) Scan(text string) ([]model.SuspectSegment, []model.UncertainSegment) {
	suspects := []model.SuspectSegment{}
	for _, p := range s.patterns {
		for _, loc := range p.re.FindAllStringIndex(text, -1) {
			start, end := loc[0], loc[1]
			suspects = append(suspects, model.SuspectSegment{
				Text:    text[start:end],
				Context: window(text, start, end, suspectWindow),
				Span:    model.Span{Start: start, End: end},
				Pattern: p.kind,
			})
		}
	}

	uncertains := []model.UncertainSegment{}
	for _, re := range s.markers {
		for _, loc := range re.FindAllStringIndex(text, -1) {
			start, end := loc[0], loc[1]
			uncertains = append(uncertains, model.UncertainSegment{
				Text:    text[start:end],
				Context: window(text, start, end, uncertainWindow),
				Span:    model.Span{Start: start, End: end},
			})
		}
	}

	return suspects, uncertains
}

// window returns text[start-n : end+n] clamped to the text bounds, with
// both cuts widened to the nearest rune boundary so accented text never
// yields an invalid context.
func window(text string, start, end, n int) string {
	lo := start - n
	if lo < 0 {
		lo = 0
	}
	for lo > 0 && !utf8.RuneStart(text[lo]) {
		lo--
	}
	hi := end + n
	if hi > len(text) {
		hi = len(text)
	}
	for hi < len(text) && !utf8.RuneStart(text[hi]) {
		hi++
	}
	return text[lo:hi]
}
