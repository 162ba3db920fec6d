package universe

import (
	"encoding/json"
	"time"
)

// Asset classes known to the screening service. Markets are free-form codes
// (e.g. "BR", "US") stored alongside each security.
const (
	AssetClassStocks     = "stocks"
	AssetClassFunds      = "funds"
	AssetClassETF        = "etf"
	AssetClassBDR        = "bdr"
	AssetClassCrypto     = "crypto"
	AssetClassCurrencies = "currencies"
)

// Security is one screenable instrument.
// CreatedAt and UpdatedAt are unix seconds, converted to RFC3339 in MarshalJSON.
type Security struct {
	Symbol     string `json:"symbol"`
	Name       string `json:"name,omitempty"`
	Market     string `json:"market"`
	AssetClass string `json:"asset_class"`
	Currency   string `json:"currency,omitempty"`
	Active     bool   `json:"active"`
	CreatedAt  int64  `json:"-"`
	UpdatedAt  int64  `json:"-"`
}

// MarshalJSON customizes JSON serialization to convert Unix timestamps to strings
func (s Security) MarshalJSON() ([]byte, error) {
	type Alias Security
	aux := &struct {
		CreatedAt string `json:"created_at,omitempty"`
		UpdatedAt string `json:"updated_at,omitempty"`
		*Alias
	}{
		Alias: (*Alias)(&s),
	}

	if s.CreatedAt > 0 {
		aux.CreatedAt = time.Unix(s.CreatedAt, 0).UTC().Format(time.RFC3339)
	}
	if s.UpdatedAt > 0 {
		aux.UpdatedAt = time.Unix(s.UpdatedAt, 0).UTC().Format(time.RFC3339)
	}

	return json.Marshal(aux)
}

// BarQuery selects a date range and/or the most recent Limit bars.
// Zero values mean unbounded.
type BarQuery struct {
	From  *time.Time `json:"from,omitempty"`
	To    *time.Time `json:"to,omitempty"`
	Limit int        `json:"limit,omitempty"`
}

// Coverage summarizes what history exists for a symbol.
type Coverage struct {
	Symbol string    `json:"symbol"`
	Bars   int       `json:"bars"`
	First  time.Time `json:"first"`
	Last   time.Time `json:"last"`
}
