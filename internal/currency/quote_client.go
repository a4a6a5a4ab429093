package currency

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/richxcame/currencies/pkg/config"
	"github.com/richxcame/currencies/pkg/httpclient"
	"github.com/richxcame/currencies/pkg/resilience"
)

const quoteServiceName = "quote-service"

// HTTPQuoteFetcher requests quotes from the configured quote endpoint
type HTTPQuoteFetcher struct {
	client  *httpclient.Client
	breaker *resilience.CircuitBreaker
}

// NewHTTPQuoteFetcher creates a fetcher from the quote configuration
func NewHTTPQuoteFetcher(cfg config.QuoteConfig) *HTTPQuoteFetcher {
	opts := []httpclient.Option{httpclient.WithConnectTimeout(cfg.ConnectTimeoutDuration())}
	if cfg.Retry {
		opts = append(opts, httpclient.WithDefaultRetry())
	}

	return &HTTPQuoteFetcher{
		client: httpclient.NewClient(cfg.URL, cfg.TimeoutDuration()).With(opts...),
		breaker: resilience.NewCircuitBreaker(
			resilience.BuildSettings(quoteServiceName, time.Minute, time.Minute, 3, 1),
			resilience.GracefulDegradation(quoteServiceName),
		),
	}
}

// QuoteBudget is the longest a single Fetch built from cfg may take,
// retries included.
func QuoteBudget(cfg config.QuoteConfig) time.Duration {
	perAttempt := cfg.ConnectTimeoutDuration() + cfg.TimeoutDuration()
	if !cfg.Retry {
		return perAttempt
	}
	return resilience.DefaultRetryConfig().MaxElapsed(perAttempt)
}

// Fetch performs one GET for all pairs
func (f *HTTPQuoteFetcher) Fetch(ctx context.Context, pairs []string) ([]byte, error) {
	result, err := f.breaker.Execute(ctx, func(ctx context.Context) (interface{}, error) {
		return f.client.Get(ctx, QuoteQuery(pairs), nil)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch quotes: %w", err)
	}
	body, _ := result.([]byte)
	return body, nil
}

// QuoteQuery builds the query string for pairs. Pairs are sent unescaped.
func QuoteQuery(pairs []string) string {
	return "?s=" + strings.Join(pairs, ",") + "&f=sl1&e=.csv"
}

// QuotePair returns the DEFAULT+CODE=X symbol for code
func QuotePair(defaultCode, code string) string {
	return strings.ToUpper(defaultCode+code) + "=X"
}
