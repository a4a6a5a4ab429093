package currency

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/richxcame/currencies/pkg/logger"
	"github.com/richxcame/currencies/pkg/redis"
	"go.uber.org/zap"
)

// CacheKey is the cache entry holding the enabled currency list
const CacheKey = "currencies:list"

const pgUniqueViolation = "23505"

const currencyColumns = `
	code, title, COALESCE(symbol_left, ''), COALESCE(symbol_right, ''),
	decimal_place, COALESCE(decimal_point, '.'), COALESCE(thousand_point, ' '),
	value, enabled, created_at, updated_at`

// DatabaseStore keeps currencies in PostgreSQL, with the enabled list
// cached in Redis without expiry
type DatabaseStore struct {
	db           DB
	cache        Cache
	cacheEnabled bool
}

// NewDatabaseStore creates a database store. A nil cache disables caching.
func NewDatabaseStore(db DB, cache Cache, cacheEnabled bool) *DatabaseStore {
	return &DatabaseStore{
		db:           db,
		cache:        cache,
		cacheEnabled: cacheEnabled && cache != nil,
	}
}

// FetchAll returns the enabled currencies ordered by code
func (s *DatabaseStore) FetchAll(ctx context.Context) ([]Currency, error) {
	if cached, ok := s.cachedList(ctx); ok {
		return cached, nil
	}

	query := `SELECT ` + currencyColumns + `
		FROM currencies
		WHERE enabled = true
		ORDER BY code
	`

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get currencies: %w", err)
	}
	defer rows.Close()

	currencies := make([]Currency, 0)
	for rows.Next() {
		c, err := scanCurrency(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan currency: %w", err)
		}
		currencies = append(currencies, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate currencies: %w", err)
	}

	s.storeList(ctx, currencies)
	return currencies, nil
}

// GetCurrency returns the currency with the code regardless of its enabled
// flag, or nil when there is none
func (s *DatabaseStore) GetCurrency(ctx context.Context, code string) (*Currency, error) {
	code = normalizeCode(code)

	if cached, ok := s.cachedList(ctx); ok {
		for _, c := range cached {
			if c.Code == code {
				return &c, nil
			}
		}
	}

	query := `SELECT ` + currencyColumns + `
		FROM currencies
		WHERE code = $1
	`

	c, err := scanCurrency(s.db.QueryRow(ctx, query, code))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get currency: %w", err)
	}
	return &c, nil
}

// AddCurrency validates and inserts a currency
func (s *DatabaseStore) AddCurrency(ctx context.Context, data CurrencyData) (*Currency, error) {
	data.Code = normalizeCode(data.Code)
	if err := validateData(data, true); err != nil {
		return nil, err
	}

	query := `
		INSERT INTO currencies (code, title, symbol_left, symbol_right, decimal_place,
		                        decimal_point, thousand_point, value, enabled)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + currencyColumns

	c, err := scanCurrency(s.db.QueryRow(ctx, query,
		data.Code, data.Title, nullIfEmpty(data.SymbolLeft), nullIfEmpty(data.SymbolRight),
		data.DecimalPlace, data.DecimalPoint, data.ThousandPoint, data.Value, data.Enabled,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, newError(ErrCurrencyAlreadyExists, data.Code, nil)
		}
		return nil, fmt.Errorf("failed to create currency: %w", err)
	}
	return &c, nil
}

// UpdateCurrency validates and writes every field except the code
func (s *DatabaseStore) UpdateCurrency(ctx context.Context, code string, data CurrencyData) error {
	code = normalizeCode(code)
	if err := validateData(data, false); err != nil {
		return err
	}

	query := `
		UPDATE currencies
		SET title = $1, symbol_left = $2, symbol_right = $3, decimal_place = $4,
		    decimal_point = $5, thousand_point = $6, value = $7, enabled = $8,
		    updated_at = NOW()
		WHERE code = $9
	`

	tag, err := s.db.Exec(ctx, query,
		data.Title, nullIfEmpty(data.SymbolLeft), nullIfEmpty(data.SymbolRight), data.DecimalPlace,
		data.DecimalPoint, data.ThousandPoint, data.Value, data.Enabled, code,
	)
	if err != nil {
		return fmt.Errorf("failed to update currency: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return newError(ErrCurrencyNotFound, code, nil)
	}
	return nil
}

// RemoveCurrency deletes the currency with the code
func (s *DatabaseStore) RemoveCurrency(ctx context.Context, code string) error {
	_, err := s.db.Exec(ctx, `DELETE FROM currencies WHERE code = $1`, normalizeCode(code))
	if err != nil {
		return fmt.Errorf("failed to remove currency: %w", err)
	}
	return nil
}

// InvalidateCache drops the cached list, retrying transient Redis failures
func (s *DatabaseStore) InvalidateCache(ctx context.Context) error {
	if !s.cacheEnabled {
		return nil
	}
	_, err := redis.RetryableOperation(ctx, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.cache.Delete(ctx, CacheKey)
	}, "invalidate currency cache")
	if err != nil {
		return fmt.Errorf("failed to invalidate currency cache: %w", err)
	}
	return nil
}

// cachedList reads the cached list. Misses and cache failures report false.
func (s *DatabaseStore) cachedList(ctx context.Context) ([]Currency, bool) {
	if !s.cacheEnabled {
		return nil, false
	}

	payload, err := s.cache.GetString(ctx, CacheKey)
	if err != nil {
		if !redis.IsNil(err) {
			logger.WithContext(ctx).Warn("failed to read currency cache", zap.Error(err))
		}
		return nil, false
	}

	var currencies []Currency
	if err := json.Unmarshal([]byte(payload), &currencies); err != nil {
		logger.WithContext(ctx).Warn("failed to decode currency cache", zap.Error(err))
		return nil, false
	}
	return currencies, true
}

func (s *DatabaseStore) storeList(ctx context.Context, currencies []Currency) {
	if !s.cacheEnabled {
		return
	}

	payload, err := json.Marshal(currencies)
	if err != nil {
		logger.WithContext(ctx).Warn("failed to encode currency cache", zap.Error(err))
		return
	}
	if err := s.cache.SetWithExpiration(ctx, CacheKey, string(payload), 0); err != nil {
		logger.WithContext(ctx).Warn("failed to write currency cache", zap.Error(err))
	}
}

func scanCurrency(row pgx.Row) (Currency, error) {
	var c Currency
	err := row.Scan(
		&c.Code, &c.Title, &c.SymbolLeft, &c.SymbolRight,
		&c.DecimalPlace, &c.DecimalPoint, &c.ThousandPoint,
		&c.Value, &c.Enabled, &c.CreatedAt, &c.UpdatedAt,
	)
	return c, err
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
