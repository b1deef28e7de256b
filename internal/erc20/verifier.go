package erc20

import (
	"context"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"poolScope/internal/model"
	"poolScope/internal/share"
)

// NativeAssetAddress is the placeholder Curve uses for ETH, which has no contract.
const NativeAssetAddress = "0xEeeeeEeeeEeEeeEeEeEeeEEEeeeeEeeeeeeeEEeE"

// DecimalsMismatchError reports a coin whose upstream decimals disagree with the contract.
type DecimalsMismatchError struct {
	Index    int
	Symbol   string
	Address  string
	Upstream int32
	OnChain  uint8
}

func (e *DecimalsMismatchError) Error() string {
	return fmt.Sprintf("coins[%d] %s (%s): upstream decimals %d, contract decimals %d",
		e.Index, e.Symbol, e.Address, e.Upstream, e.OnChain)
}

// Verifier checks upstream decimals against the token contracts.
type Verifier struct {
	caller ContractCaller
	logger *zap.Logger
}

// NewVerifier builds a Verifier.
func NewVerifier(caller ContractCaller, logger *zap.Logger) *Verifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Verifier{caller: caller, logger: logger}
}

// Verify reads decimals() for every coin with a contract address and fails on the first
// disagreement. Coins without an address, and coins whose upstream decimals do not parse,
// are skipped; the calculator reports the latter.
func (v *Verifier) Verify(ctx context.Context, pool model.PoolRecord) error {
	if v.caller == nil {
		return fmt.Errorf("contract caller is nil")
	}

	checked := 0
	for i, coin := range pool.Coins {
		if !common.IsHexAddress(coin.Address) || strings.EqualFold(coin.Address, NativeAssetAddress) {
			v.logger.Debug("skip decimals check", zap.Int("index", i), zap.String("symbol", coin.Symbol), zap.String("address", coin.Address))
			continue
		}
		upstream, err := share.ParseDecimals(coin.Decimals)
		if err != nil {
			continue
		}

		token := common.HexToAddress(coin.Address)
		meta, err := FetchTokenMeta(ctx, v.caller, token, v.logger)
		if err != nil {
			return fmt.Errorf("coins[%d] %s: %w", i, coin.Symbol, err)
		}
		if int32(meta.Decimals) != upstream {
			return &DecimalsMismatchError{
				Index:    i,
				Symbol:   coin.Symbol,
				Address:  token.Hex(),
				Upstream: upstream,
				OnChain:  meta.Decimals,
			}
		}
		if meta.Symbol != "" && meta.Symbol != coin.Symbol {
			v.logger.Warn("symbol differs from contract",
				zap.Int("index", i),
				zap.String("upstream", coin.Symbol),
				zap.String("contract", meta.Symbol),
			)
		}
		checked++
	}

	v.logger.Debug("decimals verified", zap.String("pool", pool.Name), zap.Int("checked", checked))
	return nil
}
