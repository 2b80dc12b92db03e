package model

// PatternKind identifies which suspect matcher fired
type PatternKind string

const (
	PatternCitation     PatternKind = "academic_citation"  // "according to Smith et al., 2019"
	PatternVagueStudy   PatternKind = "vague_study"        // "a study has shown", "according to a study"
	PatternVagueStats   PatternKind = "vague_statistics"   // "according to the statistics"
	PatternPercentage   PatternKind = "percentage"         // "87%", "12.5 %"
	PatternTemporalYear PatternKind = "temporal_year"      // "since 1987", "durant l'année 2004"
)

// Span is a half-open [Start, End) byte range into the source text.
// Invariant: 0 <= Start < End <= len(source) and Text == source[Start:End].
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// SuspectSegment is a text span matched by a suspect pattern, possibly
// corroborated later by the verifier
type SuspectSegment struct {
	Text               string      `json:"text"`                          // The matched text itself
	Context            string      `json:"context"`                       // ±50 chars around the match
	Span               Span        `json:"span"`                          // Offsets into the source text
	Pattern            PatternKind `json:"pattern_kind"`                  // Which matcher fired
	Verified           bool        `json:"verified"`                      // Set by the verifier
	VerificationSource string      `json:"verification_source,omitempty"` // Where corroboration came from
}

// UncertainSegment marks hedging language. Reported, never corrected:
// the author already signaled doubt.
type UncertainSegment struct {
	Text    string `json:"text"`
	Context string `json:"context"` // ±30 chars around the match
	Span    Span   `json:"span"`
}

// VerifiedFact is a suspect segment that was corroborated. Confidence
// reflects how: 1.0 for an exact corpus match, the similarity score
// (>= 0.4, < 1.0) for an approximate one.
type VerifiedFact struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
	Source     string  `json:"source,omitempty"`
}

// CheckResult is the outcome of one verification pass over a piece of content
type CheckResult struct {
	HasHallucinations bool               `json:"has_hallucinations"`
	ConfidenceScore   float64            `json:"confidence_score"` // 1.0 = full confidence
	SuspectSegments   []SuspectSegment   `json:"suspect_segments"`
	VerifiedFacts     []VerifiedFact     `json:"verified_facts"`
	UncertainSegments []UncertainSegment `json:"uncertain_segments"`
	CorrectedContent  string             `json:"corrected_content"`
}

// DefaultCheckResult returns the result for content that needs no checking:
// full confidence, content untouched.
func DefaultCheckResult(content string) *CheckResult {
	return &CheckResult{
		HasHallucinations: false,
		ConfidenceScore:   1.0,
		SuspectSegments:   []SuspectSegment{},
		VerifiedFacts:     []VerifiedFact{},
		UncertainSegments: []UncertainSegment{},
		CorrectedContent:  content,
	}
}
