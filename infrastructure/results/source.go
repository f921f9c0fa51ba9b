package results

import (
	"fmt"

	"github.com/ahrav/medalbound/internal/ports"
)

// NewSource returns the results source for a competition name.
func NewSource(competition string, fetcher *Fetcher) (ports.ResultsSource, error) {
	switch competition {
	case "imo":
		return NewIMOSource(fetcher, ""), nil
	case "egmo":
		return NewEGMOSource(fetcher, ""), nil
	default:
		return nil, ports.NewConfigError("competition.name", fmt.Errorf("%w: no results source for %q", ports.ErrConfigNotFound, competition))
	}
}
