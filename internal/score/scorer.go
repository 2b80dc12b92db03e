// Package score turns the set of unresolved suspect segments into a single
// confidence value in [0,1].
package score

import (
	"github.com/pverdier/veracite/internal/model"
)

// Scoring constants. Empirically chosen; results are defined relative to
// these exact values, so they are not configuration.
const (
	countDivisor        = 20.0
	baseFloor           = 0.5
	concentrationWeight = 0.7
	scoreFloor          = 0.1
)

// Scorer computes the aggregate confidence score
type Scorer struct{}

// NewScorer creates a new scorer
func NewScorer() *Scorer {
	return &Scorer{}
}

// Score aggregates unresolved segments into a confidence value. An empty
// set scores 1.0. Otherwise the base drops with the segment count (floored
// at 0.5) and is further reduced by the share of the text the unresolved
// segments cover, floored at 0.1.
func (s *Scorer) Score(unresolved []model.SuspectSegment, totalLength int) float64 {
	if len(unresolved) == 0 {
		return 1.0
	}

	base := 1.0 - float64(len(unresolved))/countDivisor
	if base < baseFloor {
		base = baseFloor
	}

	concentration := 0.0
	if totalLength > 0 {
		covered := 0
		for _, seg := range unresolved {
			covered += len(seg.Text)
		}
		concentration = float64(covered) / float64(totalLength)
	}

	result := base * (1.0 - concentration*concentrationWeight)
	if result < scoreFloor {
		result = scoreFloor
	}
	return result
}
