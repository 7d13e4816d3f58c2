package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/alanyoungcy/ctexplorer/internal/crypto"
	"github.com/alanyoungcy/ctexplorer/internal/domain"
	"github.com/alanyoungcy/ctexplorer/internal/indexset"
	"github.com/alanyoungcy/ctexplorer/internal/service"
)

var errMissingFlag = errors.New("missing required flag")

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func required(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%w: -%s", errMissingFlag, name)
	}
	return nil
}

// conditionCmd derives a condition id from oracle, question id and outcome
// count.
func (a *App) conditionCmd(_ context.Context, args []string) (any, error) {
	fs := newFlagSet("condition")
	oracle := fs.String("oracle", "", "oracle address")
	question := fs.String("question", "", "question id (bytes32 hex)")
	outcomes := fs.Uint64("outcomes", 0, "outcome slot count")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if err := errors.Join(required("oracle", *oracle), required("question", *question)); err != nil {
		return nil, err
	}
	if *outcomes < 2 {
		return nil, fmt.Errorf("%w: a condition needs at least 2 outcome slots", domain.ErrPreconditionViolation)
	}

	addr, err := crypto.ParseAddress(*oracle)
	if err != nil {
		return nil, err
	}
	q, err := crypto.ParseHash(*question)
	if err != nil {
		return nil, err
	}
	return map[string]string{
		"condition_id": crypto.ConditionID(addr, q, *outcomes).Hex(),
	}, nil
}

// collectionCmd adds (or with -remove strips) one condition constraint to a
// parent collection, or combines a list of condition:indexSet pairs.
func (a *App) collectionCmd(_ context.Context, args []string) (any, error) {
	fs := newFlagSet("collection")
	pairsFlag := fs.String("pairs", "", "comma separated conditionId:indexSet pairs")
	parent := fs.String("parent", crypto.NullCollection.Hex(), "parent collection id")
	condition := fs.String("condition", "", "condition id")
	set := fs.String("index-set", "", "index set (decimal)")
	remove := fs.Bool("remove", false, "strip the condition from -parent instead of adding it")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if *pairsFlag != "" {
		var pairs []domain.ConditionIndexSet
		for _, p := range splitList(*pairsFlag) {
			cond, is, ok := strings.Cut(p, ":")
			if !ok {
				return nil, fmt.Errorf("%w: pair %q, want conditionId:indexSet", domain.ErrMalformedIdentifier, p)
			}
			pairs = append(pairs, domain.ConditionIndexSet{ConditionID: cond, IndexSet: is})
		}
		id, err := crypto.CombineCollectionIDs(pairs)
		if err != nil {
			return nil, err
		}
		return map[string]string{"collection_id": id.Hex()}, nil
	}

	if err := errors.Join(required("condition", *condition), required("index-set", *set)); err != nil {
		return nil, err
	}
	parentID, err := crypto.ParseHash(*parent)
	if err != nil {
		return nil, err
	}
	condID, err := crypto.ParseHash(*condition)
	if err != nil {
		return nil, err
	}
	is, err := indexset.Parse(*set)
	if err != nil {
		return nil, err
	}
	op := crypto.CollectionID
	if *remove {
		op = crypto.RemoveFromCollection
	}
	id, err := op(parentID, condID, is)
	if err != nil {
		return nil, err
	}
	return map[string]string{"collection_id": id.Hex()}, nil
}

// positionCmd derives a position id from collateral and collection, or
// describes a full position read from -input.
func (a *App) positionCmd(ctx context.Context, args []string) (any, error) {
	fs := newFlagSet("position")
	input := fs.String("input", "", "position JSON file (- for stdin)")
	collateral := fs.String("collateral", "", "collateral token address")
	collection := fs.String("collection", crypto.NullCollection.Hex(), "collection id")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if *input != "" {
		var in positionInput
		if err := readInput(*input, a.in, &in); err != nil {
			return nil, err
		}
		return a.deps.Positions.Describe(ctx, in.toDomain())
	}

	if err := required("collateral", *collateral); err != nil {
		return nil, err
	}
	addr, err := crypto.ParseAddress(*collateral)
	if err != nil {
		return nil, err
	}
	coll, err := crypto.ParseHash(*collection)
	if err != nil {
		return nil, err
	}
	pos := crypto.PositionID(addr, coll)
	return map[string]string{
		"position_id": pos.Hex(),
		"token_id":    pos.Big().String(),
	}, nil
}

type classifyResult struct {
	service.Classification
	Union string `json:"union"`
	Full  string `json:"full"`
}

// classifyCmd reports whether a partition is disjoint and full.
func (a *App) classifyCmd(ctx context.Context, args []string) (any, error) {
	fs := newFlagSet("classify")
	partitionFlag := fs.String("partition", "", "comma separated index sets")
	outcomes := fs.Int("outcomes", 0, "outcome slot count")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	sets := splitList(*partitionFlag)

	class, err := a.deps.Positions.Classify(ctx, sets, *outcomes)
	if err != nil {
		return nil, err
	}
	union, err := indexset.FromOutcomes(sets)
	if err != nil {
		return nil, err
	}
	full, err := indexset.Full(*outcomes)
	if err != nil {
		return nil, err
	}
	return classifyResult{Classification: class, Union: union, Full: full}, nil
}

// splitCmd previews a split described by flags or by -input.
func (a *App) splitCmd(ctx context.Context, args []string) (any, error) {
	fs := newFlagSet("split")
	input := fs.String("input", "", "split request JSON file (- for stdin)")
	collateral := fs.String("collateral", "", "collateral token address")
	conditions := fs.String("conditions", "", "comma separated condition ids of the position being split")
	sets := fs.String("index-sets", "", "comma separated index sets of the position being split")
	condition := fs.String("condition", "", "condition to split on")
	outcomes := fs.Int("outcomes", 0, "outcome slot count of -condition")
	partitionFlag := fs.String("partition", "", "comma separated index sets (default: one per outcome)")
	amount := fs.String("amount", "", "amount in raw token units")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	var in splitInput
	if *input != "" {
		if err := readInput(*input, a.in, &in); err != nil {
			return nil, err
		}
	} else {
		in = splitInput{
			Collateral:       *collateral,
			ConditionIDs:     splitList(*conditions),
			IndexSets:        splitList(*sets),
			ConditionID:      *condition,
			OutcomeSlotCount: *outcomes,
			Partition:        splitList(*partitionFlag),
			Amount:           *amount,
		}
		if *partitionFlag == "" {
			trivial, err := indexset.Trivial(*outcomes)
			if err != nil {
				return nil, err
			}
			in.Partition = trivial
		}
	}

	return a.deps.Positions.PreviewSplit(ctx, service.SplitRequest{
		Collateral:       in.Collateral,
		ConditionIDs:     in.ConditionIDs,
		IndexSets:        in.IndexSets,
		ConditionID:      in.ConditionID,
		OutcomeSlotCount: in.OutcomeSlotCount,
		Partition:        in.Partition,
		Amount:           in.Amount,
	})
}

// mergeCmd previews merging the positions in -input.
func (a *App) mergeCmd(ctx context.Context, args []string) (any, error) {
	fs := newFlagSet("merge")
	input := fs.String("input", "", "merge request JSON file (- for stdin)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if err := required("input", *input); err != nil {
		return nil, err
	}

	var in mergeInput
	if err := readInput(*input, a.in, &in); err != nil {
		return nil, err
	}
	positions := make([]domain.Position, len(in.Positions))
	for i, p := range in.Positions {
		positions[i] = p.toDomain()
	}
	return a.deps.Positions.PreviewMerge(ctx, positions, in.ConditionID, in.OutcomeSlotCount, in.Amount)
}

// redeemCmd previews redeeming the position in -input.
func (a *App) redeemCmd(ctx context.Context, args []string) (any, error) {
	fs := newFlagSet("redeem")
	input := fs.String("input", "", "redeem request JSON file (- for stdin)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if err := required("input", *input); err != nil {
		return nil, err
	}

	var in redeemInput
	if err := readInput(*input, a.in, &in); err != nil {
		return nil, err
	}
	return a.deps.Positions.PreviewRedeem(ctx, in.Position.toDomain(), in.Condition.toDomain())
}
