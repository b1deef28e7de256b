package share

import (
	"fmt"
	"math/big"
	"strconv"

	"github.com/shopspring/decimal"

	"poolScope/internal/model"
)

// percentScale is the number of fractional digits kept by the share division. Every other
// step is exact.
const percentScale = 28

// maxExponent bounds the decimal exponent accepted from upstream. Real prices and totals
// sit far inside it; values outside it would overflow or stall the arithmetic.
const maxExponent = 1000

var hundred = decimal.NewFromInt(100)

// ComputeReport converts each coin balance to a human-scaled amount, values it in USD and
// computes its share of the pool's reported USD total. It has no side effects.
func ComputeReport(pool model.PoolRecord) (model.PoolReport, error) {
	totalUSD, err := parseDecimal("usdTotal", pool.USDTotal)
	if err != nil {
		return model.PoolReport{}, err
	}
	if totalUSD.IsZero() {
		return model.PoolReport{}, &CalculationError{Kind: ErrDivisionByZero, Field: "usdTotal", Value: pool.USDTotal.String()}
	}

	lines := make([]model.AssetReportLine, 0, len(pool.Coins))
	totalPercent := decimal.Zero
	for i, coin := range pool.Coins {
		line, err := computeLine(i, coin, totalUSD)
		if err != nil {
			return model.PoolReport{}, err
		}
		totalPercent = totalPercent.Add(line.PercentShare)
		lines = append(lines, line)
	}

	return model.PoolReport{
		PoolName:     pool.Name,
		Lines:        lines,
		TotalUSD:     totalUSD,
		TotalPercent: totalPercent,
	}, nil
}

func computeLine(index int, coin model.AssetBalance, totalUSD decimal.Decimal) (model.AssetReportLine, error) {
	prefix := fmt.Sprintf("coins[%d].", index)

	price, err := parseDecimal(prefix+"usdPrice", coin.USDPrice)
	if err != nil {
		return model.AssetReportLine{}, err
	}
	balance, err := parseBalance(prefix+"poolBalance", coin.PoolBalance)
	if err != nil {
		return model.AssetReportLine{}, err
	}
	decimals, err := ParseDecimals(coin.Decimals)
	if err != nil {
		return model.AssetReportLine{}, invalidField(prefix+"decimals", coin.Decimals.String(), err)
	}

	humanBalance := HumanBalance(balance, decimals)
	usdValue := humanBalance.Mul(price)
	percent := usdValue.Mul(hundred).DivRound(totalUSD, percentScale)

	return model.AssetReportLine{
		Symbol:       coin.Symbol,
		USDPrice:     price,
		HumanBalance: humanBalance,
		USDValue:     usdValue,
		PercentShare: percent,
	}, nil
}

// HumanBalance scales an integer amount of smallest units down by 10^decimals. The result
// is exact: only the exponent changes.
func HumanBalance(raw *big.Int, decimals int32) decimal.Decimal {
	if raw == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(raw, -decimals)
}

// ParseDecimals parses a token decimals field. Valid values are integers in [0, 255], the
// range of the ERC20 decimals() return type.
func ParseDecimals(value model.Numeric) (int32, error) {
	if value.IsEmpty() {
		return 0, fmt.Errorf("missing value")
	}
	parsed, err := strconv.ParseUint(value.String(), 10, 8)
	if err != nil {
		return 0, err
	}
	return int32(parsed), nil
}

func parseDecimal(field string, value model.Numeric) (decimal.Decimal, error) {
	if value.IsEmpty() {
		return decimal.Decimal{}, invalidField(field, "", fmt.Errorf("missing value"))
	}
	parsed, err := decimal.NewFromString(value.String())
	if err != nil {
		return decimal.Decimal{}, invalidField(field, value.String(), err)
	}
	if exp := parsed.Exponent(); exp < -maxExponent || exp > maxExponent {
		return decimal.Decimal{}, invalidField(field, value.String(), fmt.Errorf("exponent %d out of range", exp))
	}
	return parsed, nil
}

func parseBalance(field string, value model.Numeric) (*big.Int, error) {
	if value.IsEmpty() {
		return nil, invalidField(field, "", fmt.Errorf("missing value"))
	}
	parsed, ok := new(big.Int).SetString(value.String(), 10)
	if !ok {
		return nil, invalidField(field, value.String(), fmt.Errorf("not an integer"))
	}
	return parsed, nil
}
