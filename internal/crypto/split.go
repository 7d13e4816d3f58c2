package crypto

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/sync/errgroup"

	"github.com/alanyoungcy/ctexplorer/internal/domain"
	"github.com/alanyoungcy/ctexplorer/internal/indexset"
)

// DefaultSplitConcurrency bounds how many partition elements SplitPositions
// derives at once.
const DefaultSplitConcurrency = 4

// SplitPosition is one child position produced by a split.
type SplitPosition struct {
	IndexSet   string
	Collection common.Hash
	Position   common.Hash
}

// SplitPositions derives the position created for every element of partition
// when collateral under parent is split on conditionID. Results are returned
// in partition order. Hashing onto the curve is the expensive step, so
// elements are derived concurrently, at most limit at a time (limit <= 0
// uses DefaultSplitConcurrency).
func SplitPositions(ctx context.Context, collateral common.Address, parent, conditionID common.Hash, partition []string, limit int) ([]SplitPosition, error) {
	if len(partition) == 0 {
		return nil, fmt.Errorf("crypto: %w: nothing to split into", domain.ErrEmptyPartition)
	}
	if limit <= 0 {
		limit = DefaultSplitConcurrency
	}

	out := make([]SplitPosition, len(partition))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, raw := range partition {
		i, raw := i, raw
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			set, err := indexset.Parse(raw)
			if err != nil {
				return fmt.Errorf("crypto: partition element %d: %w", i, err)
			}
			coll, err := CollectionID(parent, conditionID, set)
			if err != nil {
				return fmt.Errorf("crypto: partition element %d: %w", i, err)
			}
			out[i] = SplitPosition{
				IndexSet:   set.String(),
				Collection: coll,
				Position:   PositionID(collateral, coll),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
