package crypto

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/alanyoungcy/ctexplorer/internal/domain"
)

// ParseHash decodes a 0x-prefixed 32-byte hex value such as a condition,
// question or collection id.
func ParseHash(s string) (common.Hash, error) {
	b, err := hexutil.Decode(strings.TrimSpace(s))
	if err != nil {
		return common.Hash{}, fmt.Errorf("crypto: %w: %q: %v", domain.ErrMalformedIdentifier, s, err)
	}
	if len(b) != common.HashLength {
		return common.Hash{}, fmt.Errorf("crypto: %w: %q is %d bytes, want %d",
			domain.ErrMalformedIdentifier, s, len(b), common.HashLength)
	}
	return common.BytesToHash(b), nil
}

// ParseAddress decodes a 20-byte hex address. The 0x prefix is optional and
// checksum casing is not enforced.
func ParseAddress(s string) (common.Address, error) {
	s = strings.TrimSpace(s)
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("crypto: %w: %q is not a hex address", domain.ErrMalformedIdentifier, s)
	}
	return common.HexToAddress(s), nil
}
