package service

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/ctexplorer/internal/domain"
)

const (
	usdcAddr = "0x2791Bca1f2de4661ED88A30C99A7a9449Aa84174"
	daiAddr  = "0x6B175474E89094C44Da98b954EedeAC495271d0F"

	condA = "0xd86578b93494bc383b444803d040c75e55d480cc7b3e46855790fb12f66a9c87" // 2 outcomes
	condB = "0x1b0920d595b6477a1ef3571f380ddbfbdd0b97138d4f42f50cb03242c5abd4d0" // 3 outcomes
	condC = "0xcccccccccccccccccccccccccccccccccccccccccccccccccccccccccccccccc"

	collA1   = "0x0ff9744daec6a0f7d2615e95ef2889ecb170595c3a7bbfb0b0354b52abee2a03"
	collA1B4 = "0x4792b74fa6d28bc914880017cdc12746417ccdae9e4fffd1eb13b2f988bfd190"
	posA1    = "0x03220c0ad02ec4f5802e7f628c8468b4459f29e8ec5bbf8b2495adea721ee1ae"
	posA1B4  = "0x31ac0da615b35af692727cf2d9a0e17a9769c38f40d7646877be2e1c10328012"
)

func newTestService(t *testing.T) *PositionService {
	t.Helper()
	tokens := NewTokenRegistry([]domain.Token{
		{Address: usdcAddr, Symbol: "USDC", Decimals: 6},
		{Address: daiAddr, Symbol: "DAI", Decimals: 18},
	})
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewPositionService(tokens, PositionServiceConfig{}, logger)
}

func TestClassify(t *testing.T) {
	svc := newTestService(t)

	got, err := svc.Classify(context.Background(), []string{"4", "1"}, 3)
	require.NoError(t, err)
	assert.Equal(t, Classification{Disjoint: true, FullIndexSet: false}, got)

	got, err = svc.Classify(context.Background(), []string{"6", "1"}, 3)
	require.NoError(t, err)
	assert.Equal(t, Classification{Disjoint: true, FullIndexSet: true}, got)

	_, err = svc.Classify(context.Background(), []string{"6", "?"}, 3)
	require.ErrorIs(t, err, domain.ErrMalformedIndexSet)
}

func TestPreviewSplitFromCollateral(t *testing.T) {
	svc := newTestService(t)

	out, err := svc.PreviewSplit(context.Background(), SplitRequest{
		Collateral:       usdcAddr,
		ConditionID:      condA,
		OutcomeSlotCount: 2,
		Partition:        []string{"1", "2"},
		Amount:           "2500000",
	})
	require.NoError(t, err)
	assert.Nil(t, out.Source)
	assert.Equal(t, "2.5 USDC", out.SourcePreview)
	require.Len(t, out.Children, 2)
	assert.Equal(t, collA1, out.Children[0].CollectionID)
	assert.Equal(t, posA1, out.Children[0].PositionID)
	assert.Equal(t, "[USDC C:0xd86578...6a9c87 O:0] x2.5", out.Children[0].Preview)
	assert.Equal(t, "[USDC C:0xd86578...6a9c87 O:1] x2.5", out.Children[1].Preview)
}

func TestPreviewSplitFromPosition(t *testing.T) {
	svc := newTestService(t)

	out, err := svc.PreviewSplit(context.Background(), SplitRequest{
		Collateral:       usdcAddr,
		ConditionIDs:     []string{condA},
		IndexSets:        []string{"1"},
		ConditionID:      condB,
		OutcomeSlotCount: 3,
		Partition:        []string{"4", "3"},
		Amount:           "1000000",
	})
	require.NoError(t, err)
	require.NotNil(t, out.Source)
	assert.Equal(t, posA1, out.Source.PositionID)
	require.Len(t, out.Children, 2)
	assert.Equal(t, collA1B4, out.Children[0].CollectionID)
	assert.Equal(t, posA1B4, out.Children[0].PositionID)
	assert.Equal(t, []string{"1", "4"}, out.Children[0].IndexSets)
	assert.Equal(t, "[USDC C:0xd86578...6a9c87 O:0 & C:0x1b0920...abd4d0 O:2] x1", out.Children[0].Preview)
}

func TestPreviewSplitPartialPartitionSplitsUnion(t *testing.T) {
	svc := newTestService(t)

	out, err := svc.PreviewSplit(context.Background(), SplitRequest{
		Collateral:       usdcAddr,
		ConditionID:      condB,
		OutcomeSlotCount: 3,
		Partition:        []string{"4", "1"},
		Amount:           "1000000",
	})
	require.NoError(t, err)
	require.NotNil(t, out.Source)
	assert.Equal(t, []string{"5"}, out.Source.IndexSets)
	assert.Equal(t, "[USDC C:0x1b0920...abd4d0 O:0|2] x1", out.SourcePreview)
}

func TestPreviewSplitErrors(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.PreviewSplit(ctx, SplitRequest{Collateral: usdcAddr, ConditionID: condA, OutcomeSlotCount: 2, Amount: "1"})
	require.ErrorIs(t, err, domain.ErrEmptyPartition)

	_, err = svc.PreviewSplit(ctx, SplitRequest{Collateral: usdcAddr, ConditionID: condA, OutcomeSlotCount: 2, Partition: []string{"3"}, Amount: "1"})
	require.ErrorIs(t, err, domain.ErrPreconditionViolation)

	_, err = svc.PreviewSplit(ctx, SplitRequest{Collateral: usdcAddr, ConditionID: "0xabc", OutcomeSlotCount: 2, Partition: []string{"1", "2"}, Amount: "1"})
	require.ErrorIs(t, err, domain.ErrMalformedIdentifier)

	_, err = svc.PreviewSplit(ctx, SplitRequest{
		Collateral: usdcAddr, ConditionIDs: []string{condA}, IndexSets: []string{"1"},
		ConditionID: condA, OutcomeSlotCount: 2, Partition: []string{"1", "2"}, Amount: "1",
	})
	require.ErrorIs(t, err, domain.ErrPreconditionViolation)
}

func TestPreviewMergeFullCoverMatchesReducedPosition(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	positions := []domain.Position{
		{CollateralToken: usdcAddr, ConditionIDs: []string{condA, condB, condC}, IndexSets: []string{"1", "4", "2"}, Balance: "3000000"},
		{CollateralToken: usdcAddr, ConditionIDs: []string{condA, condB, condC}, IndexSets: []string{"1", "3", "2"}, Balance: "2000000"},
	}
	out, err := svc.PreviewMerge(ctx, positions, condB, 3, "")
	require.NoError(t, err)
	assert.Equal(t, "position", out.Kind)
	assert.True(t, out.FullIndexSet)
	assert.Equal(t, "2000000", out.Amount)

	reduced, err := svc.Describe(ctx, domain.Position{
		CollateralToken: usdcAddr,
		ConditionIDs:    []string{condA, condC},
		IndexSets:       []string{"1", "2"},
		Balance:         "2000000",
	})
	require.NoError(t, err)
	require.NotNil(t, out.Position)
	assert.Equal(t, reduced.Preview, out.Preview)
	assert.Equal(t, reduced.PositionID, out.Position.PositionID)
}

func TestPreviewMergePartial(t *testing.T) {
	svc := newTestService(t)

	positions := []domain.Position{
		{CollateralToken: usdcAddr, ConditionIDs: []string{condB}, IndexSets: []string{"1"}, Balance: "5"},
		{CollateralToken: usdcAddr, ConditionIDs: []string{condB}, IndexSets: []string{"4"}, Balance: "5"},
	}
	out, err := svc.PreviewMerge(context.Background(), positions, condB, 3, "1000000")
	require.NoError(t, err)
	assert.False(t, out.FullIndexSet)
	require.NotNil(t, out.Position)
	assert.Equal(t, []string{"5"}, out.Position.IndexSets)
	assert.Equal(t, "[USDC C:0x1b0920...abd4d0 O:0|2] x1", out.Preview)
}

func TestPreviewMergeToCollateral(t *testing.T) {
	svc := newTestService(t)

	positions := []domain.Position{
		{CollateralToken: usdcAddr, ConditionIDs: []string{condA}, IndexSets: []string{"1"}, Balance: "2500000"},
		{CollateralToken: usdcAddr, ConditionIDs: []string{condA}, IndexSets: []string{"2"}, Balance: "4000000"},
	}
	out, err := svc.PreviewMerge(context.Background(), positions, condA, 2, "")
	require.NoError(t, err)
	assert.Equal(t, "collateral", out.Kind)
	assert.Nil(t, out.Position)
	assert.Equal(t, "2.5 USDC", out.Preview)

	_, err = svc.PreviewMerge(context.Background(), positions[:1], condA, 2, "")
	require.ErrorIs(t, err, domain.ErrPreconditionViolation)
}

func TestPreviewRedeemToCollateral(t *testing.T) {
	svc := newTestService(t)

	pos := domain.Position{CollateralToken: daiAddr, ConditionIDs: []string{condA}, IndexSets: []string{"2"}, Balance: "10000000000000000000"}
	cond := domain.Condition{ID: condA, OutcomeSlotCount: 2, Resolved: true, Payouts: []string{"0.75", "0.25"}}

	out, err := svc.PreviewRedeem(context.Background(), pos, cond)
	require.NoError(t, err)
	assert.True(t, out.ToCollateral)
	assert.Equal(t, "2500000000000000000", out.Redeemed)
	assert.Equal(t, "2.5 DAI", out.Preview)
}

func TestPreviewRedeemLeavesPosition(t *testing.T) {
	svc := newTestService(t)

	pos := domain.Position{CollateralToken: usdcAddr, ConditionIDs: []string{condA, condB}, IndexSets: []string{"1", "4"}, Balance: "1000000"}
	cond := domain.Condition{ID: condB, OutcomeSlotCount: 3, Resolved: true, Payouts: []string{"0", "0", "1"}}

	out, err := svc.PreviewRedeem(context.Background(), pos, cond)
	require.NoError(t, err)
	assert.False(t, out.ToCollateral)
	require.NotNil(t, out.Position)
	assert.Equal(t, posA1, out.Position.PositionID)
	assert.Equal(t, "[USDC C:0xd86578...6a9c87 O:0] x1", out.Preview)
}

func TestPreviewRedeemRequiresResolution(t *testing.T) {
	svc := newTestService(t)
	pos := domain.Position{CollateralToken: usdcAddr, ConditionIDs: []string{condA}, IndexSets: []string{"1"}, Balance: "1"}

	_, err := svc.PreviewRedeem(context.Background(), pos, domain.Condition{ID: condA, OutcomeSlotCount: 2})
	require.ErrorIs(t, err, domain.ErrPreconditionViolation)

	_, err = svc.PreviewRedeem(context.Background(), pos, domain.Condition{ID: condA, OutcomeSlotCount: 2, Resolved: true, Payouts: []string{"1"}})
	require.ErrorIs(t, err, domain.ErrPreconditionViolation)
}

func TestTokenRegistry(t *testing.T) {
	reg := NewTokenRegistry([]domain.Token{{Address: usdcAddr, Symbol: "USDC", Decimals: 6}})
	assert.Equal(t, 1, reg.Len())

	tok, err := reg.Lookup("0x2791bca1f2de4661ed88a30c99a7a9449aa84174")
	require.NoError(t, err)
	assert.Equal(t, "USDC", tok.Symbol)

	_, err = reg.Lookup(daiAddr)
	require.ErrorIs(t, err, domain.ErrUnknownToken)

	fallback, known := reg.Resolve(daiAddr)
	assert.False(t, known)
	assert.Equal(t, "0x6B17...1d0F", fallback.Symbol)
	assert.Equal(t, int32(18), fallback.Decimals)
}
