package service

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"

	"github.com/alanyoungcy/ctexplorer/internal/crypto"
	"github.com/alanyoungcy/ctexplorer/internal/domain"
	"github.com/alanyoungcy/ctexplorer/internal/indexset"
	"github.com/alanyoungcy/ctexplorer/internal/partition"
	"github.com/alanyoungcy/ctexplorer/internal/preview"
)

// PositionServiceConfig tunes a PositionService.
type PositionServiceConfig struct {
	Formatter preview.Formatter
	// PayoutScale is the fixed-point factor for fractional payouts.
	PayoutScale int64
	// SplitConcurrency bounds parallel id derivation during a split.
	SplitConcurrency int
}

// PositionService previews splits, merges and redemptions: what positions
// they produce, the ids those positions will have on chain, and the strings
// shown to the user before a transaction is sent.
type PositionService struct {
	tokens *TokenRegistry
	cfg    PositionServiceConfig
	logger *slog.Logger
}

// NewPositionService creates a PositionService with all required dependencies.
func NewPositionService(tokens *TokenRegistry, cfg PositionServiceConfig, logger *slog.Logger) *PositionService {
	if cfg.PayoutScale <= 0 {
		cfg.PayoutScale = partition.PayoutScale
	}
	if cfg.SplitConcurrency <= 0 {
		cfg.SplitConcurrency = crypto.DefaultSplitConcurrency
	}
	if cfg.Formatter == (preview.Formatter{}) {
		cfg.Formatter = preview.Default
	}
	return &PositionService{
		tokens: tokens,
		cfg:    cfg,
		logger: logger,
	}
}

// Classification is the outcome of classifying a partition.
type Classification struct {
	Disjoint     bool `json:"disjoint"`
	FullIndexSet bool `json:"full_index_set"`
}

// Classify reports whether partition is disjoint and whether it covers every
// outcome of a condition with outcomeSlotCount slots.
func (s *PositionService) Classify(ctx context.Context, partitionSets []string, outcomeSlotCount int) (Classification, error) {
	disjoint, err := partition.IsDisjoint(partitionSets, outcomeSlotCount)
	if err != nil {
		return Classification{}, fmt.Errorf("position_service: classify: %w", err)
	}
	full, err := partition.IsFullIndexSet(partitionSets, outcomeSlotCount)
	if err != nil {
		return Classification{}, fmt.Errorf("position_service: classify: %w", err)
	}
	s.logger.DebugContext(ctx, "position_service: classified partition",
		slog.Int("elements", len(partitionSets)),
		slog.Int("outcome_slots", outcomeSlotCount),
		slog.Bool("disjoint", disjoint),
		slog.Bool("full", full),
	)
	return Classification{Disjoint: disjoint, FullIndexSet: full}, nil
}

// DerivedPosition is a position together with its predicted identifiers.
type DerivedPosition struct {
	ConditionIDs []string `json:"condition_ids"`
	IndexSets    []string `json:"index_sets"`
	CollectionID string   `json:"collection_id"`
	PositionID   string   `json:"position_id"`
	TokenID      string   `json:"token_id"`
	Preview      string   `json:"preview"`
}

// SplitRequest describes a split of amount on a condition. With empty
// ConditionIDs the split starts from collateral; otherwise it starts from
// the position over those conditions.
type SplitRequest struct {
	Collateral       string
	ConditionIDs     []string
	IndexSets        []string
	ConditionID      string
	OutcomeSlotCount int
	Partition        []string
	Amount           string
}

// SplitPreview lists what a split consumes and produces.
type SplitPreview struct {
	// Source is the position burnt by the split; nil when collateral is
	// split directly.
	Source        *DerivedPosition  `json:"source,omitempty"`
	SourcePreview string            `json:"source_preview"`
	Children      []DerivedPosition `json:"children"`
}

// PreviewSplit derives the positions a split creates. The partition must be
// disjoint. A partition that does not cover the whole condition splits the
// position holding the union of its elements rather than the parent itself,
// exactly like the contract.
func (s *PositionService) PreviewSplit(ctx context.Context, req SplitRequest) (SplitPreview, error) {
	if len(req.Partition) == 0 {
		return SplitPreview{}, fmt.Errorf("position_service: split: %w", domain.ErrEmptyPartition)
	}
	if len(req.ConditionIDs) != len(req.IndexSets) {
		return SplitPreview{}, fmt.Errorf("position_service: split: %w: %d conditions but %d index sets",
			domain.ErrPreconditionViolation, len(req.ConditionIDs), len(req.IndexSets))
	}
	parentPos := domain.Position{ConditionIDs: req.ConditionIDs, IndexSets: req.IndexSets}
	if parentPos.ConditionIndex(req.ConditionID) >= 0 {
		return SplitPreview{}, fmt.Errorf("position_service: split: %w: position already depends on condition %s",
			domain.ErrPreconditionViolation, req.ConditionID)
	}

	class, err := s.Classify(ctx, req.Partition, req.OutcomeSlotCount)
	if err != nil {
		return SplitPreview{}, err
	}
	if !class.Disjoint {
		return SplitPreview{}, fmt.Errorf("position_service: split: %w: partition is not disjoint",
			domain.ErrPreconditionViolation)
	}

	collateral, err := crypto.ParseAddress(req.Collateral)
	if err != nil {
		return SplitPreview{}, fmt.Errorf("position_service: split: %w", err)
	}
	conditionID, err := crypto.ParseHash(req.ConditionID)
	if err != nil {
		return SplitPreview{}, fmt.Errorf("position_service: split: %w", err)
	}
	amount, err := partition.ParseAmount(req.Amount)
	if err != nil {
		return SplitPreview{}, fmt.Errorf("position_service: split: %w", err)
	}
	token := s.token(ctx, req.Collateral)

	parent, err := crypto.CombineCollectionIDs(pairs(req.ConditionIDs, req.IndexSets))
	if err != nil {
		return SplitPreview{}, fmt.Errorf("position_service: split: %w", err)
	}

	var out SplitPreview
	switch {
	case !class.FullIndexSet:
		union, err := indexset.FromOutcomes(req.Partition)
		if err != nil {
			return SplitPreview{}, fmt.Errorf("position_service: split: %w", err)
		}
		src, err := s.derive(req.Collateral, append(clone(req.ConditionIDs), req.ConditionID), append(clone(req.IndexSets), union), amount, token)
		if err != nil {
			return SplitPreview{}, fmt.Errorf("position_service: split source: %w", err)
		}
		out.Source = &src
		out.SourcePreview = src.Preview
	case len(req.ConditionIDs) == 0:
		out.SourcePreview = s.cfg.Formatter.Collateral(amount, token)
	default:
		src, err := s.derive(req.Collateral, req.ConditionIDs, req.IndexSets, amount, token)
		if err != nil {
			return SplitPreview{}, fmt.Errorf("position_service: split source: %w", err)
		}
		out.Source = &src
		out.SourcePreview = src.Preview
	}

	children, err := crypto.SplitPositions(ctx, collateral, parent, conditionID, req.Partition, s.cfg.SplitConcurrency)
	if err != nil {
		return SplitPreview{}, fmt.Errorf("position_service: split: %w", err)
	}
	conds := append(clone(req.ConditionIDs), req.ConditionID)
	out.Children = make([]DerivedPosition, len(children))
	for i, c := range children {
		sets := append(clone(req.IndexSets), c.IndexSet)
		text, err := s.cfg.Formatter.Position(conds, sets, amount, token)
		if err != nil {
			return SplitPreview{}, fmt.Errorf("position_service: split child %d: %w", i, err)
		}
		out.Children[i] = DerivedPosition{
			ConditionIDs: conds,
			IndexSets:    sets,
			CollectionID: c.Collection.Hex(),
			PositionID:   c.Position.Hex(),
			TokenID:      c.Position.Big().String(),
			Preview:      text,
		}
	}

	s.logger.DebugContext(ctx, "position_service: split preview",
		slog.String("condition_id", req.ConditionID),
		slog.Int("children", len(out.Children)),
		slog.Bool("full", class.FullIndexSet),
	)
	return out, nil
}

// MergePreview describes the result of merging positions on a condition.
type MergePreview struct {
	Kind         string           `json:"kind"`
	FullIndexSet bool             `json:"full_index_set"`
	Amount       string           `json:"amount"`
	Position     *DerivedPosition `json:"position,omitempty"`
	Preview      string           `json:"preview"`
}

// PreviewMerge merges positions along conditionID. An empty amount merges
// the largest possible amount: the smallest of the positions' balances.
func (s *PositionService) PreviewMerge(ctx context.Context, positions []domain.Position, conditionID string, outcomeSlotCount int, amount string) (MergePreview, error) {
	res, err := partition.Merge(positions, conditionID, outcomeSlotCount)
	if err != nil {
		return MergePreview{}, fmt.Errorf("position_service: merge: %w", err)
	}

	var qty *big.Int
	if amount == "" {
		balances := make([]string, len(positions))
		for i, p := range positions {
			balances[i] = p.Balance
		}
		qty, err = partition.MergeAmount(balances)
	} else {
		qty, err = partition.ParseAmount(amount)
	}
	if err != nil {
		return MergePreview{}, fmt.Errorf("position_service: merge: %w", err)
	}

	token := s.token(ctx, res.Position.CollateralToken)
	out := MergePreview{
		Kind:         res.Kind.String(),
		FullIndexSet: res.FullIndexSet,
		Amount:       qty.String(),
	}
	if res.Kind == partition.MergeToCollateral {
		out.Preview = s.cfg.Formatter.Collateral(qty, token)
	} else {
		derived, err := s.derive(res.Position.CollateralToken, res.Position.ConditionIDs, res.Position.IndexSets, qty, token)
		if err != nil {
			return MergePreview{}, fmt.Errorf("position_service: merge: %w", err)
		}
		out.Position = &derived
		out.Preview = derived.Preview
	}

	s.logger.DebugContext(ctx, "position_service: merge preview",
		slog.String("condition_id", conditionID),
		slog.Int("positions", len(positions)),
		slog.String("kind", out.Kind),
		slog.Bool("full", out.FullIndexSet),
	)
	return out, nil
}

// RedeemPreview describes the result of redeeming a position.
type RedeemPreview struct {
	Redeemed     string           `json:"redeemed"`
	ToCollateral bool             `json:"to_collateral"`
	Position     *DerivedPosition `json:"position,omitempty"`
	Preview      string           `json:"preview"`
}

// PreviewRedeem redeems position against a resolved condition.
func (s *PositionService) PreviewRedeem(ctx context.Context, position domain.Position, condition domain.Condition) (RedeemPreview, error) {
	if !condition.Resolved || len(condition.Payouts) == 0 {
		return RedeemPreview{}, fmt.Errorf("position_service: redeem: %w: condition %s is not resolved",
			domain.ErrPreconditionViolation, condition.ID)
	}
	if condition.OutcomeSlotCount > 0 && len(condition.Payouts) != condition.OutcomeSlotCount {
		return RedeemPreview{}, fmt.Errorf("position_service: redeem: %w: %d payouts for %d outcome slots",
			domain.ErrPreconditionViolation, len(condition.Payouts), condition.OutcomeSlotCount)
	}

	res, err := partition.RedeemWithScale(position, condition.ID, condition.Payouts, s.cfg.PayoutScale)
	if err != nil {
		return RedeemPreview{}, fmt.Errorf("position_service: redeem: %w", err)
	}

	token := s.token(ctx, position.CollateralToken)
	out := RedeemPreview{Redeemed: res.Redeemed.String(), ToCollateral: res.ToCollateral}
	if res.ToCollateral {
		out.Preview = s.cfg.Formatter.Collateral(res.Redeemed, token)
	} else {
		derived, err := s.derive(position.CollateralToken, res.Position.ConditionIDs, res.Position.IndexSets, res.Redeemed, token)
		if err != nil {
			return RedeemPreview{}, fmt.Errorf("position_service: redeem: %w", err)
		}
		out.Position = &derived
		out.Preview = derived.Preview
	}

	s.logger.DebugContext(ctx, "position_service: redeem preview",
		slog.String("position_id", position.ID),
		slog.String("condition_id", condition.ID),
		slog.String("redeemed", out.Redeemed),
	)
	return out, nil
}

// Describe derives the ids and preview string of an existing position.
func (s *PositionService) Describe(ctx context.Context, position domain.Position) (DerivedPosition, error) {
	amount := new(big.Int)
	if position.Balance != "" {
		var err error
		if amount, err = partition.ParseAmount(position.Balance); err != nil {
			return DerivedPosition{}, fmt.Errorf("position_service: describe: %w", err)
		}
	}
	token := s.token(ctx, position.CollateralToken)
	derived, err := s.derive(position.CollateralToken, position.ConditionIDs, position.IndexSets, amount, token)
	if err != nil {
		return DerivedPosition{}, fmt.Errorf("position_service: describe: %w", err)
	}
	if position.ID != "" && !domain.SameAddress(position.ID, derived.PositionID) && position.ID != derived.TokenID {
		s.logger.WarnContext(ctx, "position_service: position id mismatch",
			slog.String("given", position.ID),
			slog.String("derived", derived.PositionID),
		)
	}
	return derived, nil
}

func (s *PositionService) derive(collateral string, conditionIDs, indexSets []string, amount *big.Int, token domain.Token) (DerivedPosition, error) {
	coll, pos, err := crypto.DerivePosition(domain.Position{
		CollateralToken: collateral,
		ConditionIDs:    conditionIDs,
		IndexSets:       indexSets,
	})
	if err != nil {
		return DerivedPosition{}, err
	}
	text, err := s.cfg.Formatter.Position(conditionIDs, indexSets, amount, token)
	if err != nil {
		return DerivedPosition{}, err
	}
	return DerivedPosition{
		ConditionIDs: conditionIDs,
		IndexSets:    indexSets,
		CollectionID: coll.Hex(),
		PositionID:   pos.Hex(),
		TokenID:      pos.Big().String(),
		Preview:      text,
	}, nil
}

func (s *PositionService) token(ctx context.Context, address string) domain.Token {
	t, known := s.tokens.Resolve(address)
	if !known {
		s.logger.WarnContext(ctx, "position_service: unknown collateral, using defaults",
			slog.String("collateral", address),
			slog.Int("decimals", int(t.Decimals)),
		)
	}
	return t
}

func pairs(conditionIDs, indexSets []string) []domain.ConditionIndexSet {
	out := make([]domain.ConditionIndexSet, len(conditionIDs))
	for i := range conditionIDs {
		out[i] = domain.ConditionIndexSet{ConditionID: conditionIDs[i], IndexSet: indexSets[i]}
	}
	return out
}

func clone(s []string) []string {
	return append(make([]string, 0, len(s)+1), s...)
}
