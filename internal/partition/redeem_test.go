package partition

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/ctexplorer/internal/domain"
)

func mustBig(t *testing.T, s string) *big.Int {
	t.Helper()
	n, ok := new(big.Int).SetString(s, 10)
	require.True(t, ok, s)
	return n
}

func TestRedeemedBalanceWinningOutcome(t *testing.T) {
	pos := domain.Position{ConditionIDs: []string{condA}, IndexSets: []string{"1"}}
	balance := mustBig(t, "123456789")

	got, err := RedeemedBalance(pos, 0, []string{"1", "0", "0"}, balance)
	require.NoError(t, err)
	assert.Equal(t, balance, got)
}

func TestRedeemedBalanceFractionalPayout(t *testing.T) {
	pos := domain.Position{ConditionIDs: []string{condA}, IndexSets: []string{"2"}}

	got, err := RedeemedBalance(pos, 0, []string{"0.75", "0.25"}, mustBig(t, "10000000000000000000"))
	require.NoError(t, err)
	assert.Equal(t, "2500000000000000000", got.String())
}

func TestRedeemedBalanceSumsEverySetOutcome(t *testing.T) {
	pos := domain.Position{ConditionIDs: []string{condA, condB}, IndexSets: []string{"1", "5"}}

	got, err := RedeemedBalance(pos, 1, []string{"0.5", "0.3", "0.2"}, big.NewInt(1000))
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(700), got)
}

func TestRedeemedBalanceTruncates(t *testing.T) {
	pos := domain.Position{ConditionIDs: []string{condA}, IndexSets: []string{"1"}}

	// 0.33339 scales to 3333; 7 * 3333 / 10000 = 2.3331, truncated to 2.
	got, err := RedeemedBalance(pos, 0, []string{"0.33339", "0.66661"}, big.NewInt(7))
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(2), got)
}

func TestRedeemedBalanceErrors(t *testing.T) {
	pos := domain.Position{ConditionIDs: []string{condA}, IndexSets: []string{"4"}}

	_, err := RedeemedBalance(pos, 0, []string{"1", "0"}, big.NewInt(1))
	require.ErrorIs(t, err, domain.ErrPreconditionViolation)

	_, err = RedeemedBalance(pos, 1, []string{"1", "0", "0"}, big.NewInt(1))
	require.ErrorIs(t, err, domain.ErrPreconditionViolation)

	_, err = RedeemedBalance(pos, 0, []string{"0", "0", "half"}, big.NewInt(1))
	require.ErrorIs(t, err, domain.ErrMalformedAmount)

	_, err = RedeemedBalance(pos, 0, []string{"0", "0", "-1"}, big.NewInt(1))
	require.ErrorIs(t, err, domain.ErrMalformedAmount)

	bad := domain.Position{ConditionIDs: []string{condA}, IndexSets: []string{"z"}}
	_, err = RedeemedBalance(bad, 0, []string{"1"}, big.NewInt(1))
	require.ErrorIs(t, err, domain.ErrMalformedIndexSet)
}

func TestRedeemToCollateral(t *testing.T) {
	pos := domain.Position{
		ID:              "p1",
		CollateralToken: collateral,
		ConditionIDs:    []string{condA},
		IndexSets:       []string{"2"},
		Balance:         "10000000000000000000",
	}
	res, err := Redeem(pos, condA, []string{"0.75", "0.25"})
	require.NoError(t, err)
	assert.True(t, res.ToCollateral)
	assert.Equal(t, "2500000000000000000", res.Redeemed.String())
}

func TestRedeemStripsResolvedCondition(t *testing.T) {
	pos := domain.Position{
		ID:              "p1",
		CollateralToken: collateral,
		ConditionIDs:    []string{condA, condB, condC},
		IndexSets:       []string{"1", "3", "2"},
		Balance:         "400",
	}
	res, err := Redeem(pos, condB, []string{"0.5", "0.25", "0.25"})
	require.NoError(t, err)
	assert.False(t, res.ToCollateral)
	assert.Equal(t, big.NewInt(300), res.Redeemed)
	assert.Equal(t, []string{condA, condC}, res.Position.ConditionIDs)
	assert.Equal(t, []string{"1", "2"}, res.Position.IndexSets)
	assert.Equal(t, collateral, res.Position.CollateralToken)
}

func TestRedeemErrors(t *testing.T) {
	pos := domain.Position{ConditionIDs: []string{condA}, IndexSets: []string{"1"}, Balance: "abc"}
	_, err := Redeem(pos, condA, []string{"1"})
	require.ErrorIs(t, err, domain.ErrMalformedAmount)

	pos.Balance = "1"
	_, err = Redeem(pos, condB, []string{"1"})
	require.ErrorIs(t, err, domain.ErrPreconditionViolation)
}

func TestScalePayout(t *testing.T) {
	got, err := ScalePayout("0.25", PayoutScale)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(2500), got)

	got, err = ScalePayout("1", PayoutScale)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(10000), got)
}
