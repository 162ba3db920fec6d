package universe

import (
	"strings"

	"github.com/igorcrp/lova-mia-sub000/internal/modules/backtest"
)

// LotRoundingFor resolves the lot rounding for an asset class once, at
// configuration time. Crypto-class instruments trade in fractional units.
func LotRoundingFor(assetClass string) backtest.LotRounding {
	switch strings.ToLower(strings.TrimSpace(assetClass)) {
	case AssetClassCrypto, "cryptocurrency", "cryptocurrencies":
		return backtest.LotFractional
	}
	return backtest.LotInteger
}
