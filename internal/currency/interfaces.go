package currency

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Store persists currency definitions
type Store interface {
	// FetchAll returns the enabled currencies ordered by code
	FetchAll(ctx context.Context) ([]Currency, error)
	// GetCurrency returns nil, nil when the code is unknown
	GetCurrency(ctx context.Context, code string) (*Currency, error)
	AddCurrency(ctx context.Context, data CurrencyData) (*Currency, error)
	UpdateCurrency(ctx context.Context, code string, data CurrencyData) error
	RemoveCurrency(ctx context.Context, code string) error
	InvalidateCache(ctx context.Context) error
}

// DB is the subset of pgxpool.Pool used by the database store
type DB interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

// Cache is the subset of the redis client used for the persistent list cache
type Cache interface {
	GetString(ctx context.Context, key string) (string, error)
	SetWithExpiration(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// QuoteFetcher retrieves raw quotes for DEFAULT+CODE=X pairs
type QuoteFetcher interface {
	Fetch(ctx context.Context, pairs []string) ([]byte, error)
}

// QuoteParser turns a quote service body into quotes
type QuoteParser interface {
	Parse(body []byte) []Quote
}

// Refresher refreshes the rate of a single currency
type Refresher interface {
	RefreshOne(ctx context.Context, code string, fromStore bool) error
}

// ValuesRefresher refreshes the rates of every enabled currency
type ValuesRefresher interface {
	RefreshAll(ctx context.Context, excluded []string, fromStore bool) error
}
