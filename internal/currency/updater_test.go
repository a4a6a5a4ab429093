package currency

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestUpdater(t *testing.T, store *memStore, cache bool) (*Registry, *RateUpdater, *MockQuoteFetcher) {
	t.Helper()
	r := newTestRegistry(t, store, cache)
	fetcher := new(MockQuoteFetcher)
	return r, NewRateUpdater(r, store, fetcher, nil), fetcher
}

func TestRateUpdater_RefreshAll_SkipsDefaultAndExcluded(t *testing.T) {
	store := newMemStore(usd(), eur(), gbp(), rub())
	r, u, fetcher := newTestUpdater(t, store, false)

	fetcher.On("Fetch", mock.Anything, []string{"USDEUR=X"}).
		Return([]byte(`"USDEUR=X",0.9012`+"\n"), nil).Once()

	err := u.RefreshAll(context.Background(), []string{"GBP"}, false)
	require.NoError(t, err)

	assert.True(t, r.GetValue("eur").Equal(decimal.RequireFromString("0.9012")))
	assert.True(t, r.GetValue("gbp").Equal(decimal.RequireFromString("0.75")))
	assert.Equal(t, 0, store.writeCount("usd"))
	fetcher.AssertExpectations(t)
}

func TestRateUpdater_RefreshAll_FromStore(t *testing.T) {
	store := newMemStore(usd(), eur())
	r, u, fetcher := newTestUpdater(t, store, false)

	// present in the store, not yet in the snapshot
	store.records["gbp"] = gbp()

	fetcher.On("Fetch", mock.Anything, []string{"USDEUR=X", "USDGBP=X"}).
		Return([]byte("\"USDEUR=X\",0.8600\n\"USDGBP=X\",0.7700\n"), nil).Once()

	err := u.RefreshAll(context.Background(), nil, true)

	// eur is written before gbp, which is missing from the snapshot
	assert.True(t, errors.Is(err, ErrCurrencyNotFound))
	assert.True(t, r.GetValue("eur").Equal(decimal.RequireFromString("0.86")))
	assert.Equal(t, 0, store.writeCount("gbp"))
	fetcher.AssertExpectations(t)
}

func TestRateUpdater_RefreshAll_NothingToRefresh(t *testing.T) {
	_, u, fetcher := newTestUpdater(t, newMemStore(usd(), eur()), false)

	require.NoError(t, u.RefreshAll(context.Background(), []string{"eur"}, false))
	fetcher.AssertNotCalled(t, "Fetch", mock.Anything, mock.Anything)
}

func TestRateUpdater_ZeroQuoteIsNotWritten(t *testing.T) {
	store := newMemStore(usd(), eur(), gbp())
	r, u, fetcher := newTestUpdater(t, store, false)

	fetcher.On("Fetch", mock.Anything, []string{"USDEUR=X", "USDGBP=X"}).
		Return([]byte("\"USDEUR=X\",0.0000\n\"USDGBP=X\",N/A\n"), nil).Once()

	require.NoError(t, u.RefreshAll(context.Background(), nil, false))

	assert.Equal(t, 0, store.writeCount("eur"))
	assert.Equal(t, 0, store.writeCount("gbp"))
	assert.True(t, r.GetValue("eur").Equal(decimal.RequireFromString("0.85")))
}

func TestRateUpdater_FetchFailureIsSwallowed(t *testing.T) {
	store := newMemStore(usd(), eur())
	_, u, fetcher := newTestUpdater(t, store, true)

	fetcher.On("Fetch", mock.Anything, mock.Anything).Return(nil, errors.New("timeout")).Once()

	require.NoError(t, u.RefreshAll(context.Background(), nil, false))
	assert.Equal(t, 0, store.writeCount("eur"))
	assert.Equal(t, 0, store.invalidations)
}

func TestRateUpdater_NoFetcherConfigured(t *testing.T) {
	store := newMemStore(usd(), eur())
	r := newTestRegistry(t, store, false)
	u := NewRateUpdater(r, store, nil, nil)

	require.NoError(t, u.RefreshAll(context.Background(), nil, false))
	require.NoError(t, u.RefreshOne(context.Background(), "eur", false))
	assert.Equal(t, 0, store.writeCount("eur"))
}

func TestRateUpdater_RecachesOnceWhenCacheEnabled(t *testing.T) {
	store := newMemStore(usd(), eur(), gbp())
	_, u, fetcher := newTestUpdater(t, store, true)

	fetcher.On("Fetch", mock.Anything, mock.Anything).
		Return([]byte("\"USDEUR=X\",0.8600\n\"USDGBP=X\",0.7700\n"), nil).Once()

	require.NoError(t, u.RefreshAll(context.Background(), nil, false))

	// one per registry update plus the final recache
	assert.Equal(t, 3, store.invalidations)
}

func TestRateUpdater_RefreshOne(t *testing.T) {
	t.Run("from snapshot", func(t *testing.T) {
		r, u, fetcher := newTestUpdater(t, newMemStore(usd(), eur()), false)
		fetcher.On("Fetch", mock.Anything, []string{"USDEUR=X"}).
			Return([]byte(`"USDEUR=X",0.8800`), nil).Once()

		require.NoError(t, u.RefreshOne(context.Background(), "EUR", false))
		assert.True(t, r.GetValue("eur").Equal(decimal.RequireFromString("0.88")))
	})

	t.Run("unknown code", func(t *testing.T) {
		_, u, fetcher := newTestUpdater(t, newMemStore(usd()), false)

		err := u.RefreshOne(context.Background(), "jpy", false)
		assert.True(t, errors.Is(err, ErrCurrencyNotFound))
		fetcher.AssertNotCalled(t, "Fetch", mock.Anything, mock.Anything)
	})

	t.Run("disabled code is fetched but cannot be written", func(t *testing.T) {
		store := newMemStore(usd(), rub())
		_, u, fetcher := newTestUpdater(t, store, false)
		fetcher.On("Fetch", mock.Anything, []string{"USDRUB=X"}).
			Return([]byte(`"USDRUB=X",91.500`), nil).Once()

		err := u.RefreshOne(context.Background(), "rub", true)
		assert.True(t, errors.Is(err, ErrCurrencyNotFound))
		fetcher.AssertExpectations(t)
		assert.Equal(t, 0, store.writeCount("rub"))
	})

	t.Run("disabled code is unknown to the snapshot", func(t *testing.T) {
		_, u, _ := newTestUpdater(t, newMemStore(usd(), rub()), false)

		err := u.RefreshOne(context.Background(), "rub", false)
		assert.True(t, errors.Is(err, ErrCurrencyNotFound))
	})
}

func TestRateUpdater_AddWithAutoValue(t *testing.T) {
	store := newMemStore(usd())
	r, _, fetcher := newTestUpdater(t, store, false)

	fetcher.On("Fetch", mock.Anything, []string{"USDGBP=X"}).
		Return([]byte(`"USDGBP=X",0.7900`), nil).Once()

	c, err := r.Add(context.Background(), AddInput{Code: "gbp", Title: "Pound", Symbols: Symbols{Left: "£"}})
	require.NoError(t, err)

	assert.True(t, c.Value.Equal(decimal.RequireFromString("0.79")))
	fetcher.AssertExpectations(t)
}

func TestRateUpdater_StoreFailureIsReturned(t *testing.T) {
	store := newMemStore(usd(), eur())
	r, u, fetcher := newTestUpdater(t, store, false)
	store.updateErr = errors.New("dial tcp 127.0.0.1:5432: connect: connection refused")

	fetcher.On("Fetch", mock.Anything, []string{"USDEUR=X"}).
		Return([]byte(`"USDEUR=X",0.9100`), nil).Once()

	result, err := UpdateValues(context.Background(), u, AutoUpdateOptions{Enabled: true})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
	assert.False(t, result.Updated)
	assert.Empty(t, result.Message)
	assert.True(t, r.GetValue("eur").Equal(decimal.RequireFromString("0.85")))
}

func TestRateUpdater_AddDisabledWithAutoValue(t *testing.T) {
	store := newMemStore(usd())
	r, _, fetcher := newTestUpdater(t, store, false)

	fetcher.On("Fetch", mock.Anything, []string{"USDGBP=X"}).
		Return([]byte(`"USDGBP=X",0.7900`), nil).Once()

	_, err := r.Add(context.Background(), AddInput{
		Code:    "gbp",
		Title:   "Pound",
		Symbols: Symbols{Left: "£"},
		Enabled: ptr(false),
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCurrencyNotFound))
	assert.False(t, r.Has("gbp"))
	assert.True(t, store.record("gbp").Value.Equal(decimal.NewFromInt(1)))
	fetcher.AssertExpectations(t)
}
