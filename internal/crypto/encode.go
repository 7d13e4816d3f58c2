package crypto

import (
	"fmt"
	"math/big"

	"github.com/alanyoungcy/ctexplorer/internal/domain"
)

// uint256Bytes returns the 32-byte big-endian abi encoding of n. Values that
// do not fit in a uint256 are rejected.
func uint256Bytes(n *big.Int) ([]byte, error) {
	if n.Sign() < 0 || n.BitLen() > 256 {
		return nil, fmt.Errorf("crypto: %w: %s does not fit in uint256", domain.ErrMalformedIndexSet, n)
	}
	return bigIntTo32Bytes(n), nil
}

// bigIntTo32Bytes returns a 32-byte big-endian representation of n.
func bigIntTo32Bytes(n *big.Int) []byte {
	return n.FillBytes(make([]byte, 32))
}

// concatBytes concatenates multiple byte slices into one.
func concatBytes(slices ...[]byte) []byte {
	total := 0
	for _, s := range slices {
		total += len(s)
	}
	buf := make([]byte, 0, total)
	for _, s := range slices {
		buf = append(buf, s...)
	}
	return buf
}
