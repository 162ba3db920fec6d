package universe

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/igorcrp/lova-mia-sub000/internal/utils"
	"github.com/rs/zerolog"
)

// SecurityRepository handles security database operations
type SecurityRepository struct {
	universeDB *sql.DB // universe.db - securities table
	log        zerolog.Logger
}

// securitiesColumns is the list of columns for the securities table
// Used to avoid SELECT * which can break when schema changes
const securitiesColumns = `symbol, name, market, asset_class, currency, active, created_at, updated_at`

// NewSecurityRepository creates a new security repository
func NewSecurityRepository(universeDB *sql.DB, log zerolog.Logger) *SecurityRepository {
	return &SecurityRepository{
		universeDB: universeDB,
		log:        log.With().Str("repo", "security").Logger(),
	}
}

// GetBySymbol returns a security by symbol, or nil if it does not exist
func (r *SecurityRepository) GetBySymbol(ctx context.Context, symbol string) (*Security, error) {
	query := "SELECT " + securitiesColumns + " FROM securities WHERE symbol = ?"

	rows, err := r.universeDB.QueryContext(ctx, query, utils.NormalizeSymbol(symbol))
	if err != nil {
		return nil, fmt.Errorf("failed to query security by symbol: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}

	security, err := r.scanSecurity(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to scan security: %w", err)
	}
	return &security, nil
}

// GetSymbols returns the active symbols for a market and asset class in
// alphabetical order. An empty market or asset class matches all.
func (r *SecurityRepository) GetSymbols(ctx context.Context, market, assetClass string) ([]string, error) {
	securities, err := r.List(ctx, market, assetClass)
	if err != nil {
		return nil, err
	}

	symbols := make([]string, 0, len(securities))
	for _, s := range securities {
		symbols = append(symbols, s.Symbol)
	}
	return symbols, nil
}

// List returns active securities filtered like GetSymbols.
func (r *SecurityRepository) List(ctx context.Context, market, assetClass string) ([]Security, error) {
	where := []string{"active = 1"}
	var args []interface{}
	if m := strings.TrimSpace(market); m != "" {
		where = append(where, "market = ?")
		args = append(args, strings.ToUpper(m))
	}
	if ac := strings.TrimSpace(assetClass); ac != "" {
		where = append(where, "asset_class = ?")
		args = append(args, strings.ToLower(ac))
	}

	query := "SELECT " + securitiesColumns + " FROM securities WHERE " +
		strings.Join(where, " AND ") + " ORDER BY symbol ASC"

	rows, err := r.universeDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query securities: %w", err)
	}
	defer rows.Close()

	var securities []Security
	for rows.Next() {
		security, err := r.scanSecurity(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan security: %w", err)
		}
		securities = append(securities, security)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating securities: %w", err)
	}

	return securities, nil
}

// GetMarkets returns the distinct market/asset class pairs with active securities.
func (r *SecurityRepository) GetMarkets(ctx context.Context) (map[string][]string, error) {
	rows, err := r.universeDB.QueryContext(ctx, `
		SELECT DISTINCT market, asset_class
		FROM securities
		WHERE active = 1
		ORDER BY market, asset_class
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query markets: %w", err)
	}
	defer rows.Close()

	markets := make(map[string][]string)
	for rows.Next() {
		var market, assetClass string
		if err := rows.Scan(&market, &assetClass); err != nil {
			return nil, fmt.Errorf("failed to scan market: %w", err)
		}
		markets[market] = append(markets[market], assetClass)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating markets: %w", err)
	}

	return markets, nil
}

// Upsert creates or updates a security keyed by symbol.
func (r *SecurityRepository) Upsert(ctx context.Context, security Security) error {
	security.Symbol = utils.NormalizeSymbol(security.Symbol)
	if security.Symbol == "" {
		return fmt.Errorf("symbol is required")
	}
	if strings.TrimSpace(security.Market) == "" || strings.TrimSpace(security.AssetClass) == "" {
		return fmt.Errorf("market and asset class are required for %s", security.Symbol)
	}

	now := time.Now().Unix()
	_, err := r.universeDB.ExecContext(ctx, `
		INSERT INTO securities
		(symbol, name, market, asset_class, currency, active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(symbol) DO UPDATE SET
			name = excluded.name,
			market = excluded.market,
			asset_class = excluded.asset_class,
			currency = excluded.currency,
			active = excluded.active,
			updated_at = excluded.updated_at
	`,
		security.Symbol,
		nullString(security.Name),
		strings.ToUpper(strings.TrimSpace(security.Market)),
		strings.ToLower(strings.TrimSpace(security.AssetClass)),
		nullString(security.Currency),
		boolToInt(security.Active),
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert security: %w", err)
	}

	r.log.Info().Str("symbol", security.Symbol).Str("market", security.Market).Msg("Security upserted")
	return nil
}

// SetActive toggles whether a symbol takes part in screening.
func (r *SecurityRepository) SetActive(ctx context.Context, symbol string, active bool) error {
	res, err := r.universeDB.ExecContext(ctx,
		"UPDATE securities SET active = ?, updated_at = ? WHERE symbol = ?",
		boolToInt(active), time.Now().Unix(), utils.NormalizeSymbol(symbol))
	if err != nil {
		return fmt.Errorf("failed to update security: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("security %s not found", symbol)
	}
	return nil
}

func (r *SecurityRepository) scanSecurity(rows *sql.Rows) (Security, error) {
	var security Security
	var name, currency sql.NullString
	var active int64

	err := rows.Scan(
		&security.Symbol,
		&name,
		&security.Market,
		&security.AssetClass,
		&currency,
		&active,
		&security.CreatedAt,
		&security.UpdatedAt,
	)
	if err != nil {
		return security, err
	}

	security.Name = name.String
	security.Currency = currency.String
	security.Active = active != 0
	return security, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: s, Valid: true}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
