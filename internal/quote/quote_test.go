package quote

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestChangePercent(t *testing.T) {
	got := ChangePercent(Num(102), Num(100))
	require.NotNil(t, got)
	require.True(t, got.Equal(decimal.NewFromInt(2)), "got %s", got)

	got = ChangePercent(Num(95), Num(100))
	require.NotNil(t, got)
	require.True(t, got.Equal(decimal.NewFromInt(-5)), "got %s", got)
}

func TestChangePercent_GuardsZeroPreviousClose(t *testing.T) {
	// A zero or missing previous close must structurally prevent the
	// division; there is nothing to catch after the fact.
	require.Nil(t, ChangePercent(Num(102), Num(0)))
	require.Nil(t, ChangePercent(Num(102), nil))
	require.Nil(t, ChangePercent(nil, Num(100)))
	require.Nil(t, ChangePercent(nil, nil))
}

func TestParseMarket(t *testing.T) {
	for in, want := range map[string]Market{
		"US":   US,
		"nse":  NSE,
		" bse ": BSE,
	} {
		got, err := ParseMarket(in)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
	_, err := ParseMarket("LSE")
	require.Error(t, err)
}

func TestCurrencySymbol(t *testing.T) {
	require.Equal(t, "$", US.CurrencySymbol())
	require.Equal(t, "₹", NSE.CurrencySymbol())
	require.Equal(t, "₹", BSE.CurrencySymbol())
}
