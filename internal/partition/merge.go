package partition

import (
	"fmt"
	"math/big"

	"github.com/alanyoungcy/ctexplorer/internal/domain"
	"github.com/alanyoungcy/ctexplorer/internal/indexset"
)

// MergeKind says what a merge produces.
type MergeKind int

const (
	// MergeToPosition yields another outcome position.
	MergeToPosition MergeKind = iota + 1
	// MergeToCollateral yields plain collateral: the merged condition was the
	// last one and its outcomes were fully covered.
	MergeToCollateral
)

func (k MergeKind) String() string {
	switch k {
	case MergeToPosition:
		return "position"
	case MergeToCollateral:
		return "collateral"
	default:
		return fmt.Sprintf("MergeKind(%d)", int(k))
	}
}

// MergeResult describes the outcome of merging positions on one condition.
type MergeResult struct {
	Kind MergeKind
	// Position is the resulting position. For MergeToCollateral only
	// CollateralToken is set.
	Position domain.Position
	// FullIndexSet is true when the merged index sets covered the whole
	// condition, so the condition was dropped rather than combined.
	FullIndexSet bool
}

// AreMergeable reports whether positions can be merged at all: more than one
// position, a single collateral, and the same ordered list of conditions.
func AreMergeable(positions []domain.Position) bool {
	if len(positions) <= 1 {
		return false
	}
	first := positions[0]
	for _, p := range positions[1:] {
		if !domain.SameAddress(p.CollateralToken, first.CollateralToken) {
			return false
		}
		if len(p.ConditionIDs) != len(first.ConditionIDs) {
			return false
		}
		for i := range p.ConditionIDs {
			if !domain.SameAddress(p.ConditionIDs[i], first.ConditionIDs[i]) {
				return false
			}
		}
	}
	return true
}

// AreMergeableByCondition reports whether positions are mergeable, agree on
// every condition other than conditionID, and hold disjoint outcome sets on
// conditionID.
func AreMergeableByCondition(positions []domain.Position, conditionID string, outcomeSlotCount int) (bool, error) {
	if !AreMergeable(positions) {
		return false, nil
	}
	target := positions[0].ConditionIndex(conditionID)
	if target < 0 {
		return false, nil
	}
	sets, err := conditionIndexSets(positions, conditionID)
	if err != nil {
		return false, err
	}
	same, err := sameOutsideCondition(positions, target)
	if err != nil || !same {
		return false, err
	}
	return IsDisjoint(sets, outcomeSlotCount)
}

func sameOutsideCondition(positions []domain.Position, target int) (bool, error) {
	first := positions[0]
	for i := range first.IndexSets {
		if i == target {
			continue
		}
		want, err := indexset.Parse(first.IndexSets[i])
		if err != nil {
			return false, fmt.Errorf("partition: %w", err)
		}
		for _, p := range positions[1:] {
			got, err := indexset.Parse(p.IndexSets[i])
			if err != nil {
				return false, fmt.Errorf("partition: %w", err)
			}
			if got.Cmp(want) != 0 {
				return false, nil
			}
		}
	}
	return true, nil
}

// Merge computes the result of merging positions along conditionID. When the
// positions' index sets for the condition cover all of its outcomes the
// condition is removed from the result (leaving collateral if it was the
// only one); otherwise the result holds the union of those index sets.
func Merge(positions []domain.Position, conditionID string, outcomeSlotCount int) (MergeResult, error) {
	ok, err := AreMergeableByCondition(positions, conditionID, outcomeSlotCount)
	if err != nil {
		return MergeResult{}, err
	}
	if !ok {
		return MergeResult{}, fmt.Errorf("partition: %w: positions are not mergeable on condition %s",
			domain.ErrPreconditionViolation, conditionID)
	}

	first := positions[0]
	target := first.ConditionIndex(conditionID)
	sets, err := conditionIndexSets(positions, conditionID)
	if err != nil {
		return MergeResult{}, err
	}

	full, err := IsFullIndexSet(sets, outcomeSlotCount)
	if err != nil {
		return MergeResult{}, err
	}
	if full {
		if len(first.ConditionIDs) == 1 {
			return MergeResult{
				Kind:         MergeToCollateral,
				Position:     domain.Position{CollateralToken: first.CollateralToken},
				FullIndexSet: true,
			}, nil
		}
		return MergeResult{
			Kind:         MergeToPosition,
			Position:     first.Without(target),
			FullIndexSet: true,
		}, nil
	}

	union, err := indexset.FromOutcomes(sets)
	if err != nil {
		return MergeResult{}, fmt.Errorf("partition: %w", err)
	}
	merged := first.Clone()
	merged.ID = ""
	merged.Balance = ""
	merged.IndexSets[target] = union
	return MergeResult{Kind: MergeToPosition, Position: merged}, nil
}

// MergeAmount returns the largest amount mergeable from the given balances:
// the smallest of them.
func MergeAmount(balances []string) (*big.Int, error) {
	if len(balances) == 0 {
		return nil, fmt.Errorf("partition: %w: no balances", domain.ErrEmptyPartition)
	}
	var smallest *big.Int
	for i, b := range balances {
		n, err := ParseAmount(b)
		if err != nil {
			return nil, fmt.Errorf("partition: balance %d: %w", i, err)
		}
		if smallest == nil || n.Cmp(smallest) < 0 {
			smallest = n
		}
	}
	return smallest, nil
}
