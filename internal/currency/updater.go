package currency

import (
	"context"
	"fmt"
	"time"

	"github.com/richxcame/currencies/pkg/logger"
	"go.uber.org/zap"
)

// Refresh scopes used in metrics
const (
	scopeAll = "all"
	scopeOne = "one"
)

// RateUpdater refreshes currency rates from the quote service
type RateUpdater struct {
	registry *Registry
	store    Store
	fetcher  QuoteFetcher
	parser   QuoteParser
}

// NewRateUpdater creates an updater and attaches it to the registry, so
// Auto values on Add and Update are resolved through it. A nil parser
// selects the fixed-width format.
func NewRateUpdater(registry *Registry, store Store, fetcher QuoteFetcher, parser QuoteParser) *RateUpdater {
	if parser == nil {
		parser = FixedWidthParser{}
	}

	u := &RateUpdater{
		registry: registry,
		store:    store,
		fetcher:  fetcher,
		parser:   parser,
	}
	registry.SetRefresher(u)
	return u
}

// RefreshAll refreshes every enabled currency except the default and the
// excluded codes. Candidates come from the store when fromStore is set,
// otherwise from the snapshot.
func (u *RateUpdater) RefreshAll(ctx context.Context, excluded []string, fromStore bool) error {
	var candidates []Currency
	if fromStore {
		list, err := u.store.FetchAll(ctx)
		if err != nil {
			return fmt.Errorf("failed to fetch currencies: %w", err)
		}
		candidates = list
	} else {
		candidates = u.registry.GetAll()
	}

	skip := map[string]bool{u.registry.DefaultCode(): true}
	for _, code := range excluded {
		skip[normalizeCode(code)] = true
	}

	pairs := make([]string, 0, len(candidates))
	for _, c := range candidates {
		code := normalizeCode(c.Code)
		if skip[code] || !c.Enabled {
			continue
		}
		pairs = append(pairs, QuotePair(u.registry.DefaultCode(), code))
	}

	if len(pairs) == 0 {
		refreshRuns.WithLabelValues(scopeAll, "empty").Inc()
		return nil
	}

	return u.apply(ctx, scopeAll, pairs)
}

// RefreshOne refreshes a single currency, looked up in the store when
// fromStore is set, otherwise in the snapshot.
func (u *RateUpdater) RefreshOne(ctx context.Context, code string, fromStore bool) error {
	code = normalizeCode(code)

	found := false
	if fromStore {
		c, err := u.store.GetCurrency(ctx, code)
		if err != nil {
			return fmt.Errorf("failed to get currency: %w", err)
		}
		found = c != nil
	} else {
		found = u.registry.Has(code)
	}

	if !found {
		return newError(ErrCurrencyNotFound, code, nil)
	}

	return u.apply(ctx, scopeOne, []string{QuotePair(u.registry.DefaultCode(), code)})
}

// apply fetches quotes for pairs and writes each non-zero quote through the
// registry. Fetch failures are logged and do not fail the caller; a failed
// write stops the run and is returned.
func (u *RateUpdater) apply(ctx context.Context, scope string, pairs []string) error {
	log := logger.WithContext(ctx).With(zap.String("scope", scope))

	if u.fetcher == nil {
		log.Error("quote fetcher not configured, currency auto-refresh cancelled")
		refreshRuns.WithLabelValues(scope, "unavailable").Inc()
		return nil
	}

	start := time.Now()
	body, err := u.fetcher.Fetch(ctx, pairs)
	quoteFetchDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		log.Error("failed to fetch quotes, currency auto-refresh cancelled",
			zap.Strings("pairs", pairs),
			zap.Error(err),
		)
		refreshRuns.WithLabelValues(scope, "fetch_failed").Inc()
		return nil
	}

	applied := 0
	for _, q := range u.parser.Parse(body) {
		if !q.Value.IsPositive() {
			continue
		}

		value := FixedValue(q.Value)
		if _, err := u.registry.Update(ctx, q.Code, UpdateInput{Value: &value}); err != nil {
			log.Error("failed to apply quote",
				zap.String("code", q.Code),
				zap.String("value", q.Value.String()),
				zap.Error(err),
			)
			quotesProcessed.WithLabelValues("applied").Add(float64(applied))
			refreshRuns.WithLabelValues(scope, "update_failed").Inc()
			return err
		}
		applied++
	}

	quotesProcessed.WithLabelValues("applied").Add(float64(applied))
	if skipped := len(pairs) - applied; skipped > 0 {
		quotesProcessed.WithLabelValues("skipped").Add(float64(skipped))
	}

	if u.registry.CacheEnabled() {
		if err := u.registry.Recache(ctx); err != nil {
			refreshRuns.WithLabelValues(scope, "recache_failed").Inc()
			return err
		}
	}

	refreshRuns.WithLabelValues(scope, "success").Inc()
	log.Info("currency rates refreshed",
		zap.Int("requested", len(pairs)),
		zap.Int("applied", applied),
	)
	return nil
}
