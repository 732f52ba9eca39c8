package ptdecimal_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"pnl-engine/pkg/ptdecimal"
)

func TestNewFromStringRejectsOverScaleQuantity(t *testing.T) {
	_, err := ptdecimal.NewFromString("1.2345678901234", ptdecimal.Quantity) // 13 decimal places
	require.ErrorIs(t, err, ptdecimal.ErrArithmeticOverflow)
}

func TestNewFromStringRejectsOverScaleMoney(t *testing.T) {
	_, err := ptdecimal.NewFromString("1.1234567", ptdecimal.Money) // 7 decimal places
	require.ErrorIs(t, err, ptdecimal.ErrArithmeticOverflow)
}

func TestNewFromStringAcceptsWithinBudget(t *testing.T) {
	q, err := ptdecimal.NewFromString("100.123456789012", ptdecimal.Quantity)
	require.NoError(t, err)
	require.Equal(t, "100.123456789012", q.String())
}

func TestMulDoesNotReapplyScaleCheck(t *testing.T) {
	qty, err := ptdecimal.NewFromString("1.123456789012", ptdecimal.Quantity)
	require.NoError(t, err)
	price, err := ptdecimal.NewFromString("2.123456", ptdecimal.Money)
	require.NoError(t, err)

	// This product has up to 18 decimal places, well past either budget;
	// Mul must not error or silently round.
	cost := qty.Mul(price)
	require.Equal(t, ptdecimal.Money, cost.Kind())
}

func TestDivExactByZero(t *testing.T) {
	a := ptdecimal.NewFromInt(10, ptdecimal.Money)
	zero := ptdecimal.Zero(ptdecimal.Money)
	_, err := a.DivExact(zero)
	require.ErrorIs(t, err, ptdecimal.ErrArithmeticOverflow)
}

func TestArithmeticIsExact(t *testing.T) {
	a, err := ptdecimal.NewFromString("0.1", ptdecimal.Money)
	require.NoError(t, err)
	b, err := ptdecimal.NewFromString("0.2", ptdecimal.Money)
	require.NoError(t, err)

	sum := a.Add(b)
	require.True(t, sum.Equal(ptdecimal.NewFromInt(0, ptdecimal.Money).Add(mustParse(t, "0.3", ptdecimal.Money))))
}

func TestJSONRoundTrip(t *testing.T) {
	original, err := ptdecimal.NewFromString("42.123456", ptdecimal.Money)
	require.NoError(t, err)

	data, err := json.Marshal(original)
	require.NoError(t, err)

	var decoded ptdecimal.Decimal
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.True(t, original.Equal(decoded))
	require.Equal(t, original.Kind(), decoded.Kind())
}

func mustParse(t *testing.T, s string, kind ptdecimal.Kind) ptdecimal.Decimal {
	t.Helper()
	d, err := ptdecimal.NewFromString(s, kind)
	require.NoError(t, err)
	return d
}
