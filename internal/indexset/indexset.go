// Package indexset implements bitwise algebra over CTF index sets. An index set
// is a bitmask over a condition's outcomes (bit i set means outcome i is
// included), carried as a decimal string because outcome counts may exceed any
// fixed-width integer.
package indexset

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/alanyoungcy/ctexplorer/internal/domain"
)

var one = big.NewInt(1)

// Parse decodes a decimal index set. Empty, non-decimal or negative input
// fails with domain.ErrMalformedIndexSet.
func Parse(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("indexset: %w: empty value", domain.ErrMalformedIndexSet)
	}
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("indexset: %w: %q is not a decimal integer", domain.ErrMalformedIndexSet, s)
	}
	if n.Sign() < 0 {
		return nil, fmt.Errorf("indexset: %w: %q is negative", domain.ErrMalformedIndexSet, s)
	}
	return n, nil
}

// ParseAll decodes every element of sets, failing on the first malformed one.
func ParseAll(sets []string) ([]*big.Int, error) {
	out := make([]*big.Int, len(sets))
	for i, s := range sets {
		n, err := Parse(s)
		if err != nil {
			return nil, fmt.Errorf("indexset: element %d: %w", i, err)
		}
		out[i] = n
	}
	return out, nil
}

// Or returns a | b.
func Or(a, b string) (string, error) {
	return binary(a, b, (*big.Int).Or)
}

// And returns a & b.
func And(a, b string) (string, error) {
	return binary(a, b, (*big.Int).And)
}

// Xor returns a ^ b.
func Xor(a, b string) (string, error) {
	return binary(a, b, (*big.Int).Xor)
}

func binary(a, b string, op func(z, x, y *big.Int) *big.Int) (string, error) {
	x, err := Parse(a)
	if err != nil {
		return "", err
	}
	y, err := Parse(b)
	if err != nil {
		return "", err
	}
	return op(new(big.Int), x, y).String(), nil
}

// FullBig returns 2^outcomeSlotCount - 1.
func FullBig(outcomeSlotCount int) (*big.Int, error) {
	if outcomeSlotCount < 0 {
		return nil, fmt.Errorf("indexset: %w: negative outcome slot count %d", domain.ErrMalformedIndexSet, outcomeSlotCount)
	}
	full := new(big.Int).Lsh(one, uint(outcomeSlotCount))
	return full.Sub(full, one), nil
}

// Full returns the index set containing every outcome of a condition with
// outcomeSlotCount slots. Full(0) is "0".
func Full(outcomeSlotCount int) (string, error) {
	full, err := FullBig(outcomeSlotCount)
	if err != nil {
		return "", err
	}
	return full.String(), nil
}

// IsValid reports whether 0 < candidate <= full.
func IsValid(full, candidate string) (bool, error) {
	f, err := Parse(full)
	if err != nil {
		return false, err
	}
	c, err := Parse(candidate)
	if err != nil {
		return false, err
	}
	return IsValidBig(f, c), nil
}

// IsValidBig is IsValid over already parsed values.
func IsValidBig(full, candidate *big.Int) bool {
	return candidate.Sign() > 0 && candidate.Cmp(full) <= 0
}

// FromOutcomes folds already encoded index sets into their union. It is used
// to combine the individually selected outcomes of a form into one set.
func FromOutcomes(sets []string) (string, error) {
	acc := new(big.Int)
	for i, s := range sets {
		n, err := Parse(s)
		if err != nil {
			return "", fmt.Errorf("indexset: outcome %d: %w", i, err)
		}
		acc.Or(acc, n)
	}
	return acc.String(), nil
}

// FromOutcomeIndices builds the index set with exactly the given outcome bits
// set. Negative indices fail with domain.ErrMalformedIndexSet.
func FromOutcomeIndices(outcomes []int) (string, error) {
	acc := new(big.Int)
	for _, o := range outcomes {
		if o < 0 {
			return "", fmt.Errorf("indexset: %w: negative outcome index %d", domain.ErrMalformedIndexSet, o)
		}
		acc.SetBit(acc, o, 1)
	}
	return acc.String(), nil
}

// Outcomes lists the outcome indices contained in s, lowest bit first.
func Outcomes(s string) ([]int, error) {
	n, err := Parse(s)
	if err != nil {
		return nil, err
	}
	return OutcomesBig(n), nil
}

// OutcomesBig is Outcomes over a parsed value.
func OutcomesBig(n *big.Int) []int {
	var out []int
	for i := 0; i < n.BitLen(); i++ {
		if n.Bit(i) == 1 {
			out = append(out, i)
		}
	}
	return out
}

// Trivial returns the partition of outcomeSlotCount outcomes into singletons:
// "1", "2", "4", ... It is the default partition offered when splitting.
func Trivial(outcomeSlotCount int) ([]string, error) {
	if outcomeSlotCount < 0 {
		return nil, fmt.Errorf("indexset: %w: negative outcome slot count %d", domain.ErrMalformedIndexSet, outcomeSlotCount)
	}
	out := make([]string, outcomeSlotCount)
	for i := range out {
		out[i] = new(big.Int).Lsh(one, uint(i)).String()
	}
	return out, nil
}
