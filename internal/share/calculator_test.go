package share

import (
	"errors"
	"math/big"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"poolScope/internal/model"
)

func coin(symbol, price, balance, decimals string) model.AssetBalance {
	return model.AssetBalance{
		Symbol:      symbol,
		USDPrice:    model.Numeric(price),
		PoolBalance: model.Numeric(balance),
		Decimals:    model.Numeric(decimals),
	}
}

func dec(t *testing.T, value string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(value)
	require.NoError(t, err)
	return d
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.Truef(t, dec(t, want).Equal(got), "want %s, got %s", want, got.String())
}

func TestComputeReportTwoCoinPool(t *testing.T) {
	pool := model.PoolRecord{
		Name:     "A/B",
		USDTotal: "1000.00",
		Coins: []model.AssetBalance{
			coin("A", "1.00000", "600000000000000000000", "18"),
			coin("B", "0.80000", "500000000000000000000", "18"),
		},
	}

	report, err := ComputeReport(pool)
	require.NoError(t, err)

	assert.Equal(t, "A/B", report.PoolName)
	require.Len(t, report.Lines, 2)

	a, b := report.Lines[0], report.Lines[1]
	assert.Equal(t, "A", a.Symbol)
	assertDecimal(t, "1", a.USDPrice)
	assertDecimal(t, "600", a.HumanBalance)
	assertDecimal(t, "600", a.USDValue)
	assertDecimal(t, "60", a.PercentShare)

	assert.Equal(t, "B", b.Symbol)
	assertDecimal(t, "0.8", b.USDPrice)
	assertDecimal(t, "500", b.HumanBalance)
	assertDecimal(t, "400", b.USDValue)
	assertDecimal(t, "40", b.PercentShare)

	assertDecimal(t, "1000", report.TotalUSD)
	assertDecimal(t, "100", report.TotalPercent)
	assert.Equal(t, "100.00", report.TotalPercent.StringFixed(2))
}

func TestComputeReportPreservesOrderAndLength(t *testing.T) {
	symbols := []string{"USDC", "DAI", "USDT", "FRAX", "crvUSD"}
	pool := model.PoolRecord{USDTotal: "5"}
	for _, symbol := range symbols {
		pool.Coins = append(pool.Coins, coin(symbol, "1", "1000000", "6"))
	}

	report, err := ComputeReport(pool)
	require.NoError(t, err)
	require.Len(t, report.Lines, len(symbols))
	for i, symbol := range symbols {
		assert.Equal(t, symbol, report.Lines[i].Symbol)
		assertDecimal(t, "20", report.Lines[i].PercentShare)
	}
	assertDecimal(t, "100", report.TotalPercent)
}

func TestComputeReportRoundingDrift(t *testing.T) {
	tests := []struct {
		name         string
		balances     []string
		wantShares   []string
		wantRendered string
	}{
		{
			name:         "sums to exactly one hundred",
			balances:     []string{"33330", "33330", "33340"},
			wantShares:   []string{"33.33", "33.33", "33.34"},
			wantRendered: "100.00",
		},
		{
			name:         "renders above one hundred",
			balances:     []string{"33334", "33334", "33340"},
			wantShares:   []string{"33.33", "33.33", "33.34"},
			wantRendered: "100.01",
		},
		{
			name:         "renders below one hundred",
			balances:     []string{"33333", "33333", "33323"},
			wantShares:   []string{"33.33", "33.33", "33.32"},
			wantRendered: "99.99",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pool := model.PoolRecord{USDTotal: "1000"}
			for i, balance := range tt.balances {
				pool.Coins = append(pool.Coins, coin(string(rune('A'+i)), "1", balance, "2"))
			}

			report, err := ComputeReport(pool)
			require.NoError(t, err)
			for i, want := range tt.wantShares {
				assert.Equal(t, want, report.Lines[i].PercentShare.StringFixed(2))
			}
			assert.Equal(t, tt.wantRendered, report.TotalPercent.StringFixed(2))
		})
	}
}

func TestComputeReportUSDValuesSumToTotal(t *testing.T) {
	pool := model.PoolRecord{
		USDTotal: "2500.5",
		Coins: []model.AssetBalance{
			coin("X", "2.5", "400000000", "6"),
			coin("Y", "0.5", "3001000000000000000000", "18"),
		},
	}

	report, err := ComputeReport(pool)
	require.NoError(t, err)

	sum := decimal.Zero
	for _, line := range report.Lines {
		sum = sum.Add(line.USDValue)
	}
	assertDecimal(t, "2500.5", sum)

	drift := report.TotalPercent.Sub(decimal.NewFromInt(100)).Abs()
	assert.True(t, drift.LessThan(dec(t, "1e-25")), "drift %s", drift.String())
}

func TestComputeReportIsIdempotent(t *testing.T) {
	pool := model.PoolRecord{
		Name:     "sDAI/sUSDe",
		USDTotal: "15234987.12",
		Coins: []model.AssetBalance{
			coin("sDAI", "1.0812", "7123456789012345678901234", "18"),
			coin("sUSDe", "1.0297", "6543210987654321098765432", "18"),
		},
	}

	first, err := ComputeReport(pool)
	require.NoError(t, err)
	second, err := ComputeReport(pool)
	require.NoError(t, err)

	require.Len(t, second.Lines, len(first.Lines))
	for i := range first.Lines {
		assert.Equal(t, first.Lines[i].Symbol, second.Lines[i].Symbol)
		assert.True(t, first.Lines[i].HumanBalance.Equal(second.Lines[i].HumanBalance))
		assert.True(t, first.Lines[i].USDValue.Equal(second.Lines[i].USDValue))
		assert.True(t, first.Lines[i].PercentShare.Equal(second.Lines[i].PercentShare))
	}
	assert.True(t, first.TotalPercent.Equal(second.TotalPercent))
	assert.True(t, first.TotalUSD.Equal(second.TotalUSD))
}

func TestComputeReportZeroTotal(t *testing.T) {
	for _, total := range []string{"0", "0.00", "-0"} {
		t.Run(total, func(t *testing.T) {
			pool := model.PoolRecord{
				USDTotal: model.Numeric(total),
				Coins:    []model.AssetBalance{coin("A", "1", "100", "0")},
			}

			report, err := ComputeReport(pool)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrDivisionByZero))
			assert.False(t, errors.Is(err, ErrInvalidField))
			assert.Empty(t, report.Lines)

			var calcErr *CalculationError
			require.True(t, errors.As(err, &calcErr))
			assert.Equal(t, "usdTotal", calcErr.Field)
		})
	}
}

func TestComputeReportInvalidFields(t *testing.T) {
	valid := func() model.PoolRecord {
		return model.PoolRecord{
			USDTotal: "100",
			Coins: []model.AssetBalance{
				coin("A", "1", "50", "0"),
				coin("B", "1", "50", "0"),
			},
		}
	}

	tests := []struct {
		name      string
		mutate    func(p *model.PoolRecord)
		wantField string
	}{
		{"missing total", func(p *model.PoolRecord) { p.USDTotal = "" }, "usdTotal"},
		{"malformed total", func(p *model.PoolRecord) { p.USDTotal = "1,000" }, "usdTotal"},
		{"missing price", func(p *model.PoolRecord) { p.Coins[1].USDPrice = "" }, "coins[1].usdPrice"},
		{"malformed price", func(p *model.PoolRecord) { p.Coins[0].USDPrice = "true" }, "coins[0].usdPrice"},
		{"missing balance", func(p *model.PoolRecord) { p.Coins[0].PoolBalance = "" }, "coins[0].poolBalance"},
		{"fractional balance", func(p *model.PoolRecord) { p.Coins[1].PoolBalance = "1.5" }, "coins[1].poolBalance"},
		{"malformed balance", func(p *model.PoolRecord) { p.Coins[1].PoolBalance = "12abc" }, "coins[1].poolBalance"},
		{"missing decimals", func(p *model.PoolRecord) { p.Coins[0].Decimals = "" }, "coins[0].decimals"},
		{"negative decimals", func(p *model.PoolRecord) { p.Coins[0].Decimals = "-1" }, "coins[0].decimals"},
		{"decimals out of range", func(p *model.PoolRecord) { p.Coins[1].Decimals = "256" }, "coins[1].decimals"},
		{"fractional decimals", func(p *model.PoolRecord) { p.Coins[1].Decimals = "6.0" }, "coins[1].decimals"},
		{"price exponent too small", func(p *model.PoolRecord) {
			p.Coins[0].USDPrice = "1e-2147483648"
			p.Coins[0].Decimals = "255"
		}, "coins[0].usdPrice"},
		{"price exponent too large", func(p *model.PoolRecord) { p.Coins[1].USDPrice = "1e5000" }, "coins[1].usdPrice"},
		{"total exponent too small", func(p *model.PoolRecord) { p.USDTotal = "1e-200000000" }, "usdTotal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pool := valid()
			tt.mutate(&pool)

			report, err := ComputeReport(pool)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidField))
			assert.Empty(t, report.Lines)

			var calcErr *CalculationError
			require.True(t, errors.As(err, &calcErr))
			assert.Equal(t, tt.wantField, calcErr.Field)
			assert.Contains(t, err.Error(), tt.wantField)
		})
	}
}

func TestComputeReportZeroBalanceAndEmptyPool(t *testing.T) {
	report, err := ComputeReport(model.PoolRecord{
		USDTotal: "10",
		Coins:    []model.AssetBalance{coin("A", "1", "0", "18"), coin("B", "1", "10", "0")},
	})
	require.NoError(t, err)
	assert.True(t, report.Lines[0].USDValue.IsZero())
	assert.True(t, report.Lines[0].PercentShare.IsZero())
	assertDecimal(t, "100", report.Lines[1].PercentShare)

	report, err = ComputeReport(model.PoolRecord{USDTotal: "10"})
	require.NoError(t, err)
	assert.Empty(t, report.Lines)
	assert.True(t, report.TotalPercent.IsZero())
}

func TestComputeReportAcceptsExponentsInRange(t *testing.T) {
	report, err := ComputeReport(model.PoolRecord{
		USDTotal: "1e3",
		Coins:    []model.AssetBalance{coin("A", "1e-7", "10000000000000000", "0")},
	})
	require.NoError(t, err)
	assertDecimal(t, "1000000000", report.Lines[0].USDValue)
}

func TestHumanBalanceIsExact(t *testing.T) {
	raw, ok := new(big.Int).SetString("123456789012345678901234567890", 10)
	require.True(t, ok)

	assert.Equal(t, "123456789012.34567890123456789", HumanBalance(raw, 18).String())
	assert.Equal(t, "123456789012345678901234567890", HumanBalance(raw, 0).String())
	assert.True(t, HumanBalance(nil, 6).IsZero())
}

func TestParseDecimals(t *testing.T) {
	got, err := ParseDecimals("6")
	require.NoError(t, err)
	assert.Equal(t, int32(6), got)

	_, err = ParseDecimals("")
	assert.Error(t, err)
	_, err = ParseDecimals("1e1")
	assert.Error(t, err)
}
