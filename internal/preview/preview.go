// Package preview renders positions and collateral amounts as the short
// strings shown next to split, merge and redeem forms, e.g.
//
//	[USDC C:0xd86578...6a9c87 O:0|2 & C:0x1b0920...abd4d0 O:1] x2.5
//	2.5 USDC
package preview

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/alanyoungcy/ctexplorer/internal/domain"
	"github.com/alanyoungcy/ctexplorer/internal/indexset"
)

// Formatter controls how condition ids are shortened.
type Formatter struct {
	ShortIDHead int
	ShortIDTail int
}

// Default keeps the first 8 and last 6 characters of a condition id.
var Default = Formatter{ShortIDHead: 8, ShortIDTail: 6}

// Position renders a position over the given conditions holding amount of
// token.
func (f Formatter) Position(conditionIDs, indexSets []string, amount *big.Int, token domain.Token) (string, error) {
	if len(conditionIDs) != len(indexSets) {
		return "", fmt.Errorf("preview: %w: %d conditions but %d index sets",
			domain.ErrPreconditionViolation, len(conditionIDs), len(indexSets))
	}
	parts := make([]string, len(conditionIDs))
	for i, id := range conditionIDs {
		outcomes, err := indexset.Outcomes(indexSets[i])
		if err != nil {
			return "", fmt.Errorf("preview: condition %d: %w", i, err)
		}
		parts[i] = fmt.Sprintf("C:%s O:%s", TruncateMiddle(id, f.ShortIDHead, f.ShortIDTail), joinOutcomes(outcomes))
	}
	return fmt.Sprintf("[%s %s] x%s", token.Symbol, strings.Join(parts, " & "), FormatAmount(amount, token.Decimals)), nil
}

// Collateral renders a plain collateral amount.
func (f Formatter) Collateral(amount *big.Int, token domain.Token) string {
	return FormatAmount(amount, token.Decimals) + " " + token.Symbol
}

// FormatAmount renders raw token units as a decimal with trailing zeros
// trimmed: 2500000000000000000 with 18 decimals is "2.5".
func FormatAmount(amount *big.Int, decimals int32) string {
	if amount == nil {
		return "0"
	}
	return decimal.NewFromBigInt(amount, -decimals).String()
}

// TruncateMiddle keeps the first head and last tail characters of s joined
// by "...". Strings too short to benefit are returned unchanged.
func TruncateMiddle(s string, head, tail int) string {
	if head < 0 || tail < 0 || len(s) <= head+tail+3 {
		return s
	}
	return s[:head] + "..." + s[len(s)-tail:]
}

func joinOutcomes(outcomes []int) string {
	strs := make([]string, len(outcomes))
	for i, o := range outcomes {
		strs[i] = strconv.Itoa(o)
	}
	return strings.Join(strs, "|")
}
