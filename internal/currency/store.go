package currency

import (
	"errors"
	"sort"
	"strings"
)

// StoreDatabase identifies the PostgreSQL store
const StoreDatabase = "database"

// StoreDeps carries the dependencies a store backend may need
type StoreDeps struct {
	DB           DB
	Cache        Cache
	CacheEnabled bool
}

// StoreFactory builds a store backend
type StoreFactory func(deps StoreDeps) (Store, error)

var storeFactories = map[string]StoreFactory{
	StoreDatabase: func(deps StoreDeps) (Store, error) {
		if deps.DB == nil {
			return nil, errors.New("database store requires a database connection")
		}
		return NewDatabaseStore(deps.DB, deps.Cache, deps.CacheEnabled), nil
	},
}

// ValidateStore reports whether name is a registered store, before any of
// the store's connections are opened
func ValidateStore(name string) error {
	if _, ok := storeFactories[storeKey(name)]; !ok {
		return newError(ErrNotSupportedStore, name, nil)
	}
	return nil
}

// NewStore builds the store registered under name
func NewStore(name string, deps StoreDeps) (Store, error) {
	if err := ValidateStore(name); err != nil {
		return nil, err
	}
	return storeFactories[storeKey(name)](deps)
}

func storeKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// SupportedStores lists the registered store identifiers
func SupportedStores() []string {
	names := make([]string, 0, len(storeFactories))
	for name := range storeFactories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
