// Package partition classifies outcome partitions of a condition and derives
// the positions produced by merging or redeeming them.
package partition

import (
	"fmt"
	"math/big"

	"github.com/alanyoungcy/ctexplorer/internal/domain"
	"github.com/alanyoungcy/ctexplorer/internal/indexset"
)

// IsDisjoint reports whether partition is a disjoint partition of a condition
// with outcomeSlotCount outcomes: more than one element, every element a valid
// non-empty subset of the full set, and no outcome claimed twice.
func IsDisjoint(partition []string, outcomeSlotCount int) (bool, error) {
	if outcomeSlotCount < 0 {
		return false, fmt.Errorf("partition: %w: negative outcome slot count %d", domain.ErrMalformedIndexSet, outcomeSlotCount)
	}
	if len(partition) <= 1 || outcomeSlotCount == 0 {
		return false, nil
	}
	sets, err := indexset.ParseAll(partition)
	if err != nil {
		return false, fmt.Errorf("partition: %w", err)
	}
	full, err := indexset.FullBig(outcomeSlotCount)
	if err != nil {
		return false, err
	}
	return isDisjoint(sets, full), nil
}

// isDisjoint walks the partition once, removing each element's bits from the
// pool of free outcomes. An element that needs a bit no longer free overlaps
// an earlier one.
func isDisjoint(sets []*big.Int, full *big.Int) bool {
	free := new(big.Int).Set(full)
	claimed := new(big.Int)
	for _, s := range sets {
		if !indexset.IsValidBig(full, s) {
			return false
		}
		if claimed.And(s, free).Cmp(s) != 0 {
			return false
		}
		free.Xor(free, s)
	}
	return true
}

// IsFullIndexSet reports whether partition is disjoint and covers every
// outcome of the condition.
func IsFullIndexSet(partition []string, outcomeSlotCount int) (bool, error) {
	disjoint, err := IsDisjoint(partition, outcomeSlotCount)
	if err != nil || !disjoint {
		return false, err
	}
	union, err := indexset.FromOutcomes(partition)
	if err != nil {
		return false, fmt.Errorf("partition: %w", err)
	}
	full, err := indexset.Full(outcomeSlotCount)
	if err != nil {
		return false, err
	}
	return union == full, nil
}

// IsConditionFullIndexSet collects each position's index set for conditionID
// and checks whether together they form a full partition of the condition.
// A position that does not depend on conditionID violates the precondition.
func IsConditionFullIndexSet(positions []domain.Position, conditionID string, outcomeSlotCount int) (bool, error) {
	sets, err := conditionIndexSets(positions, conditionID)
	if err != nil {
		return false, err
	}
	return IsFullIndexSet(sets, outcomeSlotCount)
}

func conditionIndexSets(positions []domain.Position, conditionID string) ([]string, error) {
	sets := make([]string, len(positions))
	for i, p := range positions {
		if len(p.ConditionIDs) != len(p.IndexSets) {
			return nil, fmt.Errorf("partition: %w: position %q has %d conditions but %d index sets",
				domain.ErrPreconditionViolation, p.ID, len(p.ConditionIDs), len(p.IndexSets))
		}
		idx := p.ConditionIndex(conditionID)
		if idx < 0 {
			return nil, fmt.Errorf("partition: %w: position %q does not depend on condition %s",
				domain.ErrPreconditionViolation, p.ID, conditionID)
		}
		sets[i] = p.IndexSets[idx]
	}
	return sets, nil
}
