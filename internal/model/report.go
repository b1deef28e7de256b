package model

import "github.com/shopspring/decimal"

// AssetReportLine is the computed row for one pool asset.
type AssetReportLine struct {
	Symbol       string
	USDPrice     decimal.Decimal
	HumanBalance decimal.Decimal
	USDValue     decimal.Decimal
	PercentShare decimal.Decimal
}

// PoolReport holds the per-asset lines in upstream coin order, the pool total echoed from
// upstream, and the sum of the un-rounded percentage shares.
type PoolReport struct {
	PoolName     string
	Lines        []AssetReportLine
	TotalUSD     decimal.Decimal
	TotalPercent decimal.Decimal
}
