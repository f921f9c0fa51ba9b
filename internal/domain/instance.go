package domain

import (
	"slices"
	"time"
)

// Instance holds the results of one competition event that are relevant to
// determining medal boundaries, together with the medals actually awarded.
type Instance struct {
	// Competition names the competition, such as "imo" or "egmo".
	Competition string `json:"competition"`

	// EventID identifies the event within the competition (a year or an
	// event number).
	EventID int `json:"event_id"`

	// NumContestants is the number of contestants considered.
	NumContestants int `json:"num_contestants"`

	// MaxTotal is the maximum possible total score, possibly not achieved.
	MaxTotal int `json:"max_total"`

	// Scores is the number of contestants with each exact total score.
	Scores ScoreDistribution `json:"scores"`

	// Stats is the cumulative form of Scores.
	Stats CumulativeStats `json:"stats"`

	// ActualMedals is the number of each medal awarded, highest first. It
	// is nil if boundaries have not been set for the event.
	ActualMedals []int `json:"actual_medals,omitempty"`
}

// NewInstance builds an Instance and derives its cumulative statistics.
func NewInstance(competition string, eventID int, scores ScoreDistribution, actualMedals []int) Instance {
	num := 0
	for _, n := range scores {
		num += n
	}
	return Instance{
		Competition:    competition,
		EventID:        eventID,
		NumContestants: num,
		MaxTotal:       len(scores) - 1,
		Scores:         slices.Clone(scores),
		Stats:          scores.Cumulative(),
		ActualMedals:   slices.Clone(actualMedals),
	}
}

// CumulativeMedals returns the number of contestants with each medal or
// better, or nil when no medals were recorded.
func (in Instance) CumulativeMedals() []int {
	if in.ActualMedals == nil {
		return nil
	}
	cum := make([]int, len(in.ActualMedals))
	total := 0
	for i, n := range in.ActualMedals {
		total += n
		cum[i] = total
	}
	return cum
}

// ActualBoundaries returns the jury's boundaries in the same shape an
// algorithm produces, or nil when no medals were recorded.
func (in Instance) ActualBoundaries() Boundaries {
	cum := in.CumulativeMedals()
	if cum == nil {
		return nil
	}
	return append(Boundaries(cum), in.NumContestants)
}

// Evaluation records the outcome of applying one rule to one instance.
type Evaluation struct {
	// RuleID identifies the rule that produced the boundaries.
	RuleID string `json:"rule_id"`

	// Competition and EventID identify the instance.
	Competition string `json:"competition"`
	EventID     int    `json:"event_id"`

	// Computed holds the boundaries the rule would have chosen.
	Computed Boundaries `json:"computed"`

	// Actual holds the boundaries the jury chose, if known.
	Actual Boundaries `json:"actual,omitempty"`

	// Timestamp records when the evaluation was produced.
	Timestamp time.Time `json:"timestamp"`
}

// Matches reports whether the rule reproduces the jury's decision exactly.
func (e Evaluation) Matches() bool {
	return e.Actual != nil && slices.Equal(e.Computed, e.Actual)
}

// TotalDeviation returns the computed total awarded minus the actual total
// and whether an actual total is known.
func (e Evaluation) TotalDeviation() (int, bool) {
	if len(e.Actual) < 2 || len(e.Computed) != len(e.Actual) {
		return 0, false
	}
	i := len(e.Actual) - 2
	return e.Computed[i] - e.Actual[i], true
}
