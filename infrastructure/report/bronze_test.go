package report

import (
	"bytes"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/medalbound/internal/domain"
	"github.com/ahrav/medalbound/internal/testutils"
)

func TestNewBronzeRow(t *testing.T) {
	row, err := NewBronzeRow(testutils.SampleInstance(2019, []int{0, 2, 2}))
	require.NoError(t, err)

	assert.Equal(t, 2019, row.Event)
	assert.Zero(t, row.Ideal.Cmp(big.NewRat(5, 1)))
	assert.Equal(t, 4, row.Below)
	assert.Equal(t, 7, row.Above)
	assert.Zero(t, row.MarginBelow.Cmp(big.NewRat(1, 1)))
	assert.Zero(t, row.MarginAbove.Cmp(big.NewRat(2, 1)))
	assert.Equal(t, 4, row.Actual)

	row, err = NewBronzeRow(testutils.SampleInstance(2020, nil))
	require.NoError(t, err)
	assert.Equal(t, domain.Unknown, row.Actual)
}

func TestWriteBronzeTable(t *testing.T) {
	below, err := NewBronzeRow(testutils.SampleInstance(2019, []int{0, 2, 2}))
	require.NoError(t, err)
	above, err := NewBronzeRow(testutils.SampleInstance(2018, []int{2, 2, 3}))
	require.NoError(t, err)
	odd, err := NewBronzeRow(domain.NewInstance("imo", 2017, domain.ScoreDistribution{2, 1, 2}, nil))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteBronzeTable(&buf, []BronzeRow{below, above, odd}))

	assert.Equal(t,
		"2019 & $5$ & $\\mathbf{1}$ & $2$ \\\\\n"+
			"2018 & $5$ & $1$ & $\\mathbf{2}$ \\\\\n"+
			"2017 & $2\\frac{1}{2}$ & $\\frac{1}{2}$ & $\\frac{1}{2}$ \\\\\n",
		buf.String())
}
