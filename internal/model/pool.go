package model

// PoolRecord is one liquidity pool as reported by the market-data endpoint.
type PoolRecord struct {
	Name     string         `json:"name"`
	Address  string         `json:"address,omitempty"`
	USDTotal Numeric        `json:"usdTotal"`
	Coins    []AssetBalance `json:"coins"`
}

// AssetBalance is one constituent asset of a pool. PoolBalance is expressed in the
// asset's smallest unit; Decimals says how many of its digits are fractional.
type AssetBalance struct {
	Symbol      string  `json:"symbol"`
	Address     string  `json:"address,omitempty"`
	USDPrice    Numeric `json:"usdPrice"`
	PoolBalance Numeric `json:"poolBalance"`
	Decimals    Numeric `json:"decimals"`
}
