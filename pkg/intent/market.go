package intent

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/uhyunpark/perpsign/pkg/codec"
)

// MarketIDLength is the byte length of an on-chain market object id.
const MarketIDLength = 32

var ErrMarketNotFound = errors.New("market not found")

// MarketResolver maps a market symbol to its 0x-prefixed object id.
// Implementations may block on a metadata lookup; they must honor ctx.
type MarketResolver interface {
	ResolveMarket(ctx context.Context, symbol string) (string, error)
}

// Market is a symbol and its perpetual object id.
type Market struct {
	Symbol string
	ID     string
}

// MarketRegistry is an in-memory MarketResolver, safe for concurrent use.
type MarketRegistry struct {
	mu      sync.RWMutex
	markets map[string]string // symbol -> object id
}

func NewMarketRegistry() *MarketRegistry {
	return &MarketRegistry{markets: make(map[string]string)}
}

// NewMarketRegistryFrom registers every market in ms.
func NewMarketRegistryFrom(ms []Market) (*MarketRegistry, error) {
	r := NewMarketRegistry()
	for _, m := range ms {
		if err := r.Register(m); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds a market. The id must be 32 bytes of 0x-prefixed hex and the
// symbol must not be registered yet.
func (r *MarketRegistry) Register(m Market) error {
	if m.Symbol == "" {
		return fmt.Errorf("cannot register market without symbol")
	}
	if _, err := codec.ParseHexID("market", m.ID, MarketIDLength); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.markets[m.Symbol]; exists {
		return fmt.Errorf("market %s already registered", m.Symbol)
	}
	r.markets[m.Symbol] = strings.ToLower(m.ID)
	return nil
}

// ResolveMarket implements MarketResolver.
func (r *MarketRegistry) ResolveMarket(ctx context.Context, symbol string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	id, exists := r.markets[symbol]
	if !exists {
		return "", fmt.Errorf("%w: %s", ErrMarketNotFound, symbol)
	}
	return id, nil
}

// Remove drops a market.
func (r *MarketRegistry) Remove(symbol string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.markets[symbol]; !exists {
		return fmt.Errorf("%w: %s", ErrMarketNotFound, symbol)
	}
	delete(r.markets, symbol)
	return nil
}

// Symbols returns the registered symbols in sorted order.
func (r *MarketRegistry) Symbols() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.markets))
	for s := range r.markets {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

func (r *MarketRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.markets)
}

// ParseMarkets reads a comma-separated SYMBOL=0xid list, e.g.
// "ETH-PERP=0xab..,BTC-PERP=0xcd..". Blank entries are skipped.
func ParseMarkets(s string) ([]Market, error) {
	var out []Market
	for _, entry := range strings.Split(s, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		symbol, id, ok := strings.Cut(entry, "=")
		if !ok {
			return nil, fmt.Errorf("market entry %q: want SYMBOL=0xid", entry)
		}
		out = append(out, Market{Symbol: strings.TrimSpace(symbol), ID: strings.TrimSpace(id)})
	}
	return out, nil
}
