package service

import (
	"fmt"
	"strings"

	"github.com/alanyoungcy/ctexplorer/internal/domain"
	"github.com/alanyoungcy/ctexplorer/internal/preview"
)

// fallbackDecimals is used for collateral missing from the registry; most
// ERC-20 collateral uses 18.
const fallbackDecimals = 18

// TokenRegistry resolves collateral addresses to display metadata.
type TokenRegistry struct {
	byAddress map[string]domain.Token
}

// NewTokenRegistry indexes tokens by lower-cased address. Later entries win
// on duplicates.
func NewTokenRegistry(tokens []domain.Token) *TokenRegistry {
	r := &TokenRegistry{byAddress: make(map[string]domain.Token, len(tokens))}
	for _, t := range tokens {
		r.byAddress[normalizeAddress(t.Address)] = t
	}
	return r
}

// Lookup returns the registered token for address.
func (r *TokenRegistry) Lookup(address string) (domain.Token, error) {
	t, ok := r.byAddress[normalizeAddress(address)]
	if !ok {
		return domain.Token{}, fmt.Errorf("token_registry: %w: %s", domain.ErrUnknownToken, address)
	}
	return t, nil
}

// Resolve is Lookup with a fallback: unknown collateral is labelled with its
// shortened address and assumed to have 18 decimals. The second return value
// reports whether the token was registered.
func (r *TokenRegistry) Resolve(address string) (domain.Token, bool) {
	if t, err := r.Lookup(address); err == nil {
		return t, true
	}
	return domain.Token{
		Address:  address,
		Symbol:   preview.TruncateMiddle(address, 6, 4),
		Decimals: fallbackDecimals,
	}, false
}

// Len returns the number of registered tokens.
func (r *TokenRegistry) Len() int {
	return len(r.byAddress)
}

func normalizeAddress(a string) string {
	a = strings.ToLower(strings.TrimSpace(a))
	return strings.TrimPrefix(a, "0x")
}
