package partition

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/alanyoungcy/ctexplorer/internal/domain"
	"github.com/alanyoungcy/ctexplorer/internal/indexset"
)

// PayoutScale is the fixed-point factor applied to fractional payouts before
// they multiply a balance. Precision below 1/PayoutScale is truncated.
const PayoutScale int64 = 10000

// RedeemResult describes what redeeming a position on a resolved condition
// leaves the holder with.
type RedeemResult struct {
	// Redeemed is the amount of the resulting collateral or position.
	Redeemed *big.Int
	// Position is the position left once the resolved condition is
	// stripped. Unset when ToCollateral is true.
	Position     domain.Position
	ToCollateral bool
}

// ParseAmount decodes a non-negative decimal integer in raw token units.
func ParseAmount(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	n, ok := new(big.Int).SetString(s, 10)
	if !ok || n.Sign() < 0 {
		return nil, fmt.Errorf("partition: %w: %q", domain.ErrMalformedAmount, s)
	}
	return n, nil
}

// ScalePayout converts a fractional payout such as "0.25" into an integer
// numerator over scale, truncating finer precision.
func ScalePayout(payout string, scale int64) (*big.Int, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(payout))
	if err != nil {
		return nil, fmt.Errorf("partition: %w: payout %q: %v", domain.ErrMalformedAmount, payout, err)
	}
	if d.IsNegative() {
		return nil, fmt.Errorf("partition: %w: payout %q is negative", domain.ErrMalformedAmount, payout)
	}
	return d.Mul(decimal.NewFromInt(scale)).Truncate(0).BigInt(), nil
}

// RedeemedBalance returns what balance of position is worth once the
// condition at conditionIndex resolves with payouts: for every outcome bit in
// the position's index set it adds balance * payout[bit], computed in
// fixed point with PayoutScale.
func RedeemedBalance(position domain.Position, conditionIndex int, payouts []string, balance *big.Int) (*big.Int, error) {
	return RedeemedBalanceWithScale(position, conditionIndex, payouts, balance, PayoutScale)
}

// RedeemedBalanceWithScale is RedeemedBalance with an explicit fixed-point
// scale.
func RedeemedBalanceWithScale(position domain.Position, conditionIndex int, payouts []string, balance *big.Int, scale int64) (*big.Int, error) {
	if scale <= 0 {
		return nil, fmt.Errorf("partition: %w: payout scale %d", domain.ErrPreconditionViolation, scale)
	}
	if balance == nil || balance.Sign() < 0 {
		return nil, fmt.Errorf("partition: %w: balance must be non-negative", domain.ErrMalformedAmount)
	}
	if conditionIndex < 0 || conditionIndex >= len(position.IndexSets) {
		return nil, fmt.Errorf("partition: %w: condition index %d out of range for %d index sets",
			domain.ErrPreconditionViolation, conditionIndex, len(position.IndexSets))
	}
	set, err := indexset.Parse(position.IndexSets[conditionIndex])
	if err != nil {
		return nil, fmt.Errorf("partition: %w", err)
	}

	denom := big.NewInt(scale)
	total := new(big.Int)
	for _, outcome := range indexset.OutcomesBig(set) {
		if outcome >= len(payouts) {
			return nil, fmt.Errorf("partition: %w: outcome %d has no payout (%d reported)",
				domain.ErrPreconditionViolation, outcome, len(payouts))
		}
		num, err := ScalePayout(payouts[outcome], scale)
		if err != nil {
			return nil, err
		}
		share := new(big.Int).Mul(balance, num)
		share.Quo(share, denom)
		total.Add(total, share)
	}
	return total, nil
}

// Redeem computes the result of redeeming position on the resolved condition
// conditionID. The position's own Balance is the amount redeemed.
func Redeem(position domain.Position, conditionID string, payouts []string) (RedeemResult, error) {
	return RedeemWithScale(position, conditionID, payouts, PayoutScale)
}

// RedeemWithScale is Redeem with an explicit fixed-point scale.
func RedeemWithScale(position domain.Position, conditionID string, payouts []string, scale int64) (RedeemResult, error) {
	if len(position.ConditionIDs) != len(position.IndexSets) {
		return RedeemResult{}, fmt.Errorf("partition: %w: position %q has %d conditions but %d index sets",
			domain.ErrPreconditionViolation, position.ID, len(position.ConditionIDs), len(position.IndexSets))
	}
	idx := position.ConditionIndex(conditionID)
	if idx < 0 {
		return RedeemResult{}, fmt.Errorf("partition: %w: position %q does not depend on condition %s",
			domain.ErrPreconditionViolation, position.ID, conditionID)
	}
	balance, err := ParseAmount(position.Balance)
	if err != nil {
		return RedeemResult{}, err
	}
	redeemed, err := RedeemedBalanceWithScale(position, idx, payouts, balance, scale)
	if err != nil {
		return RedeemResult{}, err
	}

	if len(position.ConditionIDs) == 1 {
		return RedeemResult{Redeemed: redeemed, ToCollateral: true}, nil
	}
	return RedeemResult{Redeemed: redeemed, Position: position.Without(idx)}, nil
}
