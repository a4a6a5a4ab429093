package currency

import (
	"context"
	"fmt"
	"sync"

	"github.com/richxcame/currencies/pkg/logger"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Options configures a Registry
type Options struct {
	DefaultCode  string
	CacheEnabled bool
}

// snapshot is an immutable view of the enabled currencies
type snapshot struct {
	list   []Currency
	byCode map[string]int
}

func newSnapshot(currencies []Currency) *snapshot {
	s := &snapshot{
		list:   make([]Currency, 0, len(currencies)),
		byCode: make(map[string]int, len(currencies)),
	}
	for _, c := range currencies {
		if !c.Enabled {
			continue
		}
		c.Code = normalizeCode(c.Code)
		s.byCode[c.Code] = len(s.list)
		s.list = append(s.list, c)
	}
	return s
}

// Registry serves currency reads from an in-memory snapshot of the store
type Registry struct {
	store        Store
	defaultCode  string
	cacheEnabled bool

	mu      sync.RWMutex
	current *snapshot

	// writeMu serializes a store write with the reload that follows it
	writeMu   sync.Mutex
	refresher Refresher
}

// NewRegistry loads the snapshot and checks that the default currency exists
func NewRegistry(ctx context.Context, store Store, opts Options) (*Registry, error) {
	r := &Registry{
		store:        store,
		defaultCode:  normalizeCode(opts.DefaultCode),
		cacheEnabled: opts.CacheEnabled,
	}

	if err := r.reload(ctx); err != nil {
		return nil, err
	}

	if !r.Has(r.defaultCode) {
		return nil, newError(ErrDefaultCurrencyNotFound, r.defaultCode, nil)
	}

	return r, nil
}

// SetRefresher attaches the component used for Auto values
func (r *Registry) SetRefresher(refresher Refresher) {
	r.writeMu.Lock()
	r.refresher = refresher
	r.writeMu.Unlock()
}

// DefaultCode returns the configured default currency code
func (r *Registry) DefaultCode() string {
	return r.defaultCode
}

// CacheEnabled reports whether the store cache is in use
func (r *Registry) CacheEnabled() bool {
	return r.cacheEnabled
}

func (r *Registry) view() *snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current
}

func (r *Registry) lookup(code string) (Currency, bool) {
	s := r.view()
	i, ok := s.byCode[normalizeCode(code)]
	if !ok {
		return Currency{}, false
	}
	return s.list[i], true
}

// Has reports whether an enabled currency with the code exists
func (r *Registry) Has(code string) bool {
	_, ok := r.lookup(code)
	return ok
}

// Get returns the enabled currency with the code
func (r *Registry) Get(code string) (Currency, error) {
	c, ok := r.lookup(code)
	if !ok {
		return Currency{}, newError(ErrCurrencyNotFound, normalizeCode(code), nil)
	}
	return c, nil
}

// GetValue returns the rate of code. Unknown codes are worth 1 and an
// empty code resolves to the default currency.
func (r *Registry) GetValue(code string) decimal.Decimal {
	if code == "" {
		code = r.defaultCode
	}
	if c, ok := r.lookup(code); ok {
		return c.Value
	}
	return decimal.NewFromInt(1)
}

// GetAll returns a copy of the snapshot, ordered by code
func (r *Registry) GetAll() []Currency {
	s := r.view()
	out := make([]Currency, len(s.list))
	copy(out, s.list)
	return out
}

// Add registers a new currency. An Auto value is stored as 1 and then
// refreshed from the quote service.
func (r *Registry) Add(ctx context.Context, in AddInput) (Currency, error) {
	code := normalizeCode(in.Code)

	err := r.write(func() error {
		if r.Has(code) {
			return newError(ErrCurrencyAlreadyExists, code, nil)
		}
		if _, err := r.store.AddCurrency(ctx, in.data(code)); err != nil {
			return err
		}
		return r.recache(ctx)
	})
	if err != nil {
		return Currency{}, err
	}

	if in.value().Auto {
		if err := r.refresh(ctx, code); err != nil {
			return Currency{}, err
		}
	}

	return r.find(ctx, code)
}

// Update merges the present fields of in over the current record
func (r *Registry) Update(ctx context.Context, code string, in UpdateInput) (Currency, error) {
	code = normalizeCode(code)

	err := r.write(func() error {
		current, err := r.Get(code)
		if err != nil {
			return err
		}
		if err := r.store.UpdateCurrency(ctx, code, in.merge(current)); err != nil {
			return err
		}
		return r.recache(ctx)
	})
	if err != nil {
		return Currency{}, err
	}

	if in.autoRefresh() {
		if err := r.refresh(ctx, code); err != nil {
			return Currency{}, err
		}
	}

	return r.find(ctx, code)
}

// Remove deletes a currency from the store
func (r *Registry) Remove(ctx context.Context, code string) error {
	code = normalizeCode(code)

	return r.write(func() error {
		if !r.Has(code) {
			return newError(ErrCurrencyNotFound, code, nil)
		}
		if err := r.store.RemoveCurrency(ctx, code); err != nil {
			return err
		}
		return r.recache(ctx)
	})
}

// Format renders number in the currency identified by code, falling back to
// the default currency. With convertFrom set, number is converted first.
func (r *Registry) Format(number decimal.Decimal, code, convertFrom string) string {
	c, ok := r.lookup(code)
	if !ok {
		c, ok = r.lookup(r.defaultCode)
	}
	if !ok {
		return formatNumber(number, DefaultDecimalPlace, DefaultDecimalPoint, DefaultThousandPoint)
	}

	if convertFrom != "" {
		number = r.Convert(number, c.Code, convertFrom)
	}
	return c.Format(number)
}

// Convert converts value from one currency into another through their rates.
// A source rate of zero is treated like an unknown code and counts as 1.
func (r *Registry) Convert(value decimal.Decimal, to, from string) decimal.Decimal {
	rate := r.GetValue(from)
	if rate.IsZero() {
		rate = decimal.NewFromInt(1)
	}
	return value.Mul(r.GetValue(to).Div(rate))
}

// Recache drops the store cache and reloads the snapshot
func (r *Registry) Recache(ctx context.Context) error {
	return r.write(func() error {
		return r.recache(ctx)
	})
}

func (r *Registry) write(fn func() error) error {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()
	return fn()
}

func (r *Registry) recache(ctx context.Context) error {
	if r.cacheEnabled {
		if err := r.store.InvalidateCache(ctx); err != nil {
			logger.WithContext(ctx).Warn("failed to invalidate currency cache", zap.Error(err))
		}
	}
	return r.reload(ctx)
}

func (r *Registry) reload(ctx context.Context) error {
	currencies, err := r.store.FetchAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load currencies: %w", err)
	}

	s := newSnapshot(currencies)

	r.mu.Lock()
	r.current = s
	r.mu.Unlock()

	registrySize.Set(float64(len(s.list)))
	registryReloads.Inc()
	return nil
}

// refresh asks the attached refresher for a quote on a single code
func (r *Registry) refresh(ctx context.Context, code string) error {
	r.writeMu.Lock()
	refresher := r.refresher
	r.writeMu.Unlock()

	if refresher == nil {
		logger.WithContext(ctx).Warn("no rate refresher attached, auto value left unchanged",
			zap.String("code", code))
		return nil
	}
	return refresher.RefreshOne(ctx, code, true)
}

// find returns the record after a write. Disabled records are not part of
// the snapshot, so they are read from the store directly.
func (r *Registry) find(ctx context.Context, code string) (Currency, error) {
	if c, ok := r.lookup(code); ok {
		return c, nil
	}

	c, err := r.store.GetCurrency(ctx, code)
	if err != nil {
		return Currency{}, fmt.Errorf("failed to get currency: %w", err)
	}
	if c == nil {
		return Currency{}, newError(ErrCurrencyNotFound, code, nil)
	}
	return *c, nil
}
