package collector

import (
	"fmt"
	"sort"
	"sync"
)

// DefaultExchange is preselected in the UI when available.
const DefaultExchange = "binance"

// DefaultCryptoLimit is the number of 1m candles requested per fetch.
const DefaultCryptoLimit = 500

// Registry holds the exchanges that can serve OHLC data.
type Registry struct {
	mu       sync.RWMutex
	fetchers map[string]CryptoFetcher
}

// NewRegistry registers the given fetchers under their Name().
func NewRegistry(fetchers ...CryptoFetcher) *Registry {
	r := &Registry{fetchers: make(map[string]CryptoFetcher, len(fetchers))}
	for _, f := range fetchers {
		r.Register(f)
	}
	return r
}

// Register adds or replaces an exchange.
func (r *Registry) Register(f CryptoFetcher) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fetchers[f.Name()] = f
}

// Get returns the fetcher for exchange.
func (r *Registry) Get(exchange string) (CryptoFetcher, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.fetchers[exchange]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedExchange, exchange)
	}
	return f, nil
}

// Names returns the registered exchange ids, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.fetchers))
	for name := range r.fetchers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Default returns DefaultExchange if registered, else the first name.
func (r *Registry) Default() string {
	names := r.Names()
	for _, n := range names {
		if n == DefaultExchange {
			return n
		}
	}
	if len(names) == 0 {
		return ""
	}
	return names[0]
}
