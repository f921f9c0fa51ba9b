// Package results loads published competition results and converts them
// into domain instances. Documents are downloaded once into a file cache
// and parsed locally.
package results

import (
	"errors"
	"fmt"
	"slices"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/cases"
)

// ErrMalformedResults indicates a results document that cannot be parsed
// or holds impossible values.
var ErrMalformedResults = errors.New("malformed results")

// maxSuggestionDistance bounds how far a label may be from a known label
// for it to be offered as a suggestion.
const maxSuggestionDistance = 3

// UnrecognizedAwardError reports an award label that is neither a medal nor
// a known non-medal award.
type UnrecognizedAwardError struct {
	// Source names the competition, such as "imo".
	Source string

	// Event identifies the event within the competition.
	Event int

	// Label is the award exactly as it appeared in the results.
	Label string

	// Suggestion is the closest known label, or empty if none is close.
	Suggestion string
}

// Error implements the error interface for UnrecognizedAwardError.
func (e *UnrecognizedAwardError) Error() string {
	msg := fmt.Sprintf("%s %d: unknown award: %q", e.Source, e.Event, e.Label)
	if e.Suggestion != "" {
		msg += fmt.Sprintf(" (did you mean %q?)", e.Suggestion)
	}
	return msg
}

// Is reports ErrMalformedResults as a cause so callers can treat unknown
// awards like any other bad document.
func (e *UnrecognizedAwardError) Is(target error) bool {
	return target == ErrMalformedResults
}

// NewUnrecognizedAwardError creates an UnrecognizedAwardError, suggesting
// the known label closest to label.
func NewUnrecognizedAwardError(source string, event int, label string, known []string) *UnrecognizedAwardError {
	return &UnrecognizedAwardError{
		Source:     source,
		Event:      event,
		Label:      label,
		Suggestion: suggest(label, known),
	}
}

// suggest returns the known label with the smallest case-insensitive edit
// distance to label, or "" if none is within maxSuggestionDistance.
func suggest(label string, known []string) string {
	fold := cases.Fold()
	target := fold.String(label)

	best, bestDist := "", maxSuggestionDistance+1
	for _, k := range slices.Sorted(slices.Values(known)) {
		if k == "" {
			continue
		}
		if d := levenshtein.ComputeDistance(target, fold.String(k)); d < bestDist {
			best, bestDist = k, d
		}
	}
	return best
}
