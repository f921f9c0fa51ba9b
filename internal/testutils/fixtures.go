// Package testutils provides fixtures and test doubles shared by the
// package tests.
package testutils

import "github.com/ahrav/medalbound/internal/domain"

// StandardGoal is the conventional 1:2:3 gold:silver:bronze split with half
// the contestants receiving a medal.
var StandardGoal = domain.Goal{1, 2, 3, 6}

// SampleDistribution is a small score distribution over a maximum total of
// six. Its cumulative statistics are {10, 10, 9, 7, 4, 2, 0}.
var SampleDistribution = domain.ScoreDistribution{0, 1, 2, 3, 2, 2, 0}

// SampleInstance returns an IMO instance with SampleDistribution and the
// given medal counts, highest tier first. medals may be nil for an event
// without recorded awards.
func SampleInstance(year int, medals []int) domain.Instance {
	return domain.NewInstance("imo", year, SampleDistribution, medals)
}
