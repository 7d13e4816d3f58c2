package indexset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/ctexplorer/internal/domain"
)

func TestFull(t *testing.T) {
	cases := []struct {
		n    int
		want string
	}{
		{0, "0"},
		{1, "1"},
		{3, "7"},
		{8, "255"},
		{64, "18446744073709551615"},
		{65, "36893488147419103231"},
	}
	for _, tc := range cases {
		got, err := Full(tc.n)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, "Full(%d)", tc.n)
	}

	_, err := Full(-1)
	require.ErrorIs(t, err, domain.ErrMalformedIndexSet)
}

func TestBitwiseOps(t *testing.T) {
	or, err := Or("5", "2")
	require.NoError(t, err)
	assert.Equal(t, "7", or)

	and, err := And("6", "3")
	require.NoError(t, err)
	assert.Equal(t, "2", and)

	xor, err := Xor("7", "5")
	require.NoError(t, err)
	assert.Equal(t, "2", xor)

	// Beyond 64 bits.
	big, err := Or("18446744073709551616", "1")
	require.NoError(t, err)
	assert.Equal(t, "18446744073709551617", big)
}

func TestBitwiseOpsRejectMalformed(t *testing.T) {
	for _, bad := range []string{"", "abc", "-1", "1.5", "0x10"} {
		_, err := Or(bad, "1")
		assert.ErrorIs(t, err, domain.ErrMalformedIndexSet, "input %q", bad)
		_, err = And("1", bad)
		assert.ErrorIs(t, err, domain.ErrMalformedIndexSet, "input %q", bad)
		_, err = Xor(bad, bad)
		assert.ErrorIs(t, err, domain.ErrMalformedIndexSet, "input %q", bad)
	}
}

func TestIsValid(t *testing.T) {
	cases := []struct {
		full, candidate string
		want            bool
	}{
		{"7", "0", false},
		{"7", "1", true},
		{"7", "7", true},
		{"7", "8", false},
		{"0", "0", false},
	}
	for _, tc := range cases {
		got, err := IsValid(tc.full, tc.candidate)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, "IsValid(%s, %s)", tc.full, tc.candidate)
	}

	_, err := IsValid("7", "x")
	require.ErrorIs(t, err, domain.ErrMalformedIndexSet)
}

func TestFromOutcomes(t *testing.T) {
	got, err := FromOutcomes([]string{"1", "2", "4", "8", "16"})
	require.NoError(t, err)
	assert.Equal(t, "31", got)

	got, err = FromOutcomes(nil)
	require.NoError(t, err)
	assert.Equal(t, "0", got)

	_, err = FromOutcomes([]string{"1", "nope"})
	require.ErrorIs(t, err, domain.ErrMalformedIndexSet)
}

func TestOutcomes(t *testing.T) {
	got, err := Outcomes("13")
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2, 3}, got)

	got, err = Outcomes("0")
	require.NoError(t, err)
	assert.Empty(t, got)

	set, err := FromOutcomeIndices([]int{0, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, "13", set)

	_, err = FromOutcomeIndices([]int{-1})
	require.ErrorIs(t, err, domain.ErrMalformedIndexSet)
}

func TestTrivial(t *testing.T) {
	got, err := Trivial(4)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "4", "8"}, got)

	union, err := FromOutcomes(got)
	require.NoError(t, err)
	full, err := Full(4)
	require.NoError(t, err)
	assert.Equal(t, full, union)
}
