package report

import (
	"fmt"
	"io"
	"math/big"

	"github.com/ahrav/medalbound/internal/bounds"
	"github.com/ahrav/medalbound/internal/domain"
)

// BronzeRow describes the choice a jury faces for the total number of
// medals when aiming for half the contestants: the achievable counts on
// either side of the ideal and how far each is from it.
type BronzeRow struct {
	Event int

	// Ideal is half the number of contestants.
	Ideal *big.Rat

	// Below and Above are the achievable counts bracketing Ideal.
	Below, Above int

	// MarginBelow is Ideal − Below and MarginAbove is Above − Ideal.
	MarginBelow, MarginAbove *big.Rat

	// Actual is the number of medals awarded, or domain.Unknown.
	Actual int
}

// NewBronzeRow computes the bronze bracket of an instance.
func NewBronzeRow(in domain.Instance) (BronzeRow, error) {
	ideal := big.NewRat(int64(in.NumContestants), 2)
	below, above, err := bounds.FindBracket(ideal, in.Stats)
	if err != nil {
		return BronzeRow{}, fmt.Errorf("%s %d: %w", in.Competition, in.EventID, err)
	}

	row := BronzeRow{
		Event:       in.EventID,
		Ideal:       ideal,
		Below:       below,
		Above:       above,
		MarginBelow: new(big.Rat).Sub(ideal, new(big.Rat).SetInt64(int64(below))),
		MarginAbove: new(big.Rat).Sub(new(big.Rat).SetInt64(int64(above)), ideal),
		Actual:      domain.Unknown,
	}
	if cum := in.CumulativeMedals(); len(cum) > 0 {
		row.Actual = cum[len(cum)-1]
	}
	return row, nil
}

// WriteBronzeTable writes one LaTeX table row per event:
//
//	year & $ideal$ & $margin below$ & $margin above$ \\
//
// A margin is set in bold when its side is the total the jury chose.
func WriteBronzeTable(w io.Writer, rows []BronzeRow) error {
	for _, r := range rows {
		ideal, err := FormatFraction(r.Ideal)
		if err != nil {
			return err
		}
		mb, err := FormatFraction(r.MarginBelow)
		if err != nil {
			return err
		}
		ma, err := FormatFraction(r.MarginAbove)
		if err != nil {
			return err
		}
		if r.Below == r.Actual {
			mb = `\mathbf{` + mb + `}`
		}
		if r.Above == r.Actual {
			ma = `\mathbf{` + ma + `}`
		}
		if _, err := fmt.Fprintf(w, "%d & $%s$ & $%s$ & $%s$ \\\\\n", r.Event, ideal, mb, ma); err != nil {
			return err
		}
	}
	return nil
}
