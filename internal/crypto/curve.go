package crypto

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto/bn256"

	"github.com/alanyoungcy/ctexplorer/internal/domain"
)

// Collection ids are compressed points on alt_bn128 (y^2 = x^3 + 3 over the
// field below). Bit 254 of a compressed id carries the parity of y; the zero
// id is the point at infinity.
var (
	fieldModulus, _ = new(big.Int).SetString("30644e72e131a029b85045b68181585d97816a916871ca8d3c208c16d87cfd47", 16)
	curveB          = big.NewInt(3)
	sqrtExponent    = new(big.Int).Rsh(new(big.Int).Add(fieldModulus, big.NewInt(1)), 2)
	lowBitsMask     = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 254), big.NewInt(1))
	one             = big.NewInt(1)
)

const parityBit = 254

// point is an affine curve point. The zero value (0, 0) stands for infinity,
// as in the ecAdd precompile encoding.
type point struct {
	x, y *big.Int
}

func infinity() point {
	return point{x: new(big.Int), y: new(big.Int)}
}

func (p point) isInfinity() bool {
	return p.x.Sign() == 0 && p.y.Sign() == 0
}

func (p point) neg() point {
	if p.isInfinity() {
		return p
	}
	return point{x: new(big.Int).Set(p.x), y: new(big.Int).Sub(fieldModulus, p.y)}
}

// curveRHS returns x^3 + 3 mod P.
func curveRHS(x *big.Int) *big.Int {
	yy := new(big.Int).Mul(x, x)
	yy.Mod(yy, fieldModulus)
	yy.Mul(yy, x)
	yy.Add(yy, curveB)
	return yy.Mod(yy, fieldModulus)
}

// modSqrt returns yy^((P+1)/4) mod P and whether it is a square root of yy.
// P = 3 mod 4, so the exponent yields the root whenever one exists.
func modSqrt(yy *big.Int) (*big.Int, bool) {
	y := new(big.Int).Exp(yy, sqrtExponent, fieldModulus)
	check := new(big.Int).Mul(y, y)
	check.Mod(check, fieldModulus)
	return y, check.Cmp(yy) == 0
}

// withParity returns y or P - y, whichever has the requested parity.
func withParity(y *big.Int, odd bool) *big.Int {
	if (y.Bit(0) == 1) != odd {
		return new(big.Int).Sub(fieldModulus, y)
	}
	return y
}

// hashToPoint maps keccak256(conditionId ++ indexSet) onto the curve by
// incrementing x until x^3 + 3 is a square. The top bit of the hash picks
// the parity of y.
func hashToPoint(conditionID common.Hash, indexSet *big.Int) (point, error) {
	enc, err := uint256Bytes(indexSet)
	if err != nil {
		return point{}, err
	}
	x := new(big.Int).SetBytes(keccak256(concatBytes(conditionID.Bytes(), enc)))
	odd := x.Bit(255) == 1

	var y *big.Int
	for {
		x.Add(x, one)
		x.Mod(x, fieldModulus)
		var ok bool
		if y, ok = modSqrt(curveRHS(x)); ok {
			break
		}
	}
	return point{x: x, y: withParity(y, odd)}, nil
}

// decompress recovers the point behind a collection id.
func decompress(id common.Hash) (point, error) {
	x := id.Big()
	if x.Sign() == 0 {
		return infinity(), nil
	}
	odd := x.Bit(parityBit) == 1
	x.And(x, lowBitsMask)

	y, ok := modSqrt(curveRHS(x))
	if !ok {
		return point{}, fmt.Errorf("crypto: %w: collection id %s is not on the curve", domain.ErrMalformedIdentifier, id.Hex())
	}
	return point{x: x, y: withParity(y, odd)}, nil
}

// compress encodes p as a collection id.
func compress(p point) common.Hash {
	x := new(big.Int).Set(p.x)
	if p.y.Bit(0) == 1 {
		x.SetBit(x, parityBit, 1)
	}
	return common.BigToHash(x)
}

// addPoints performs the same addition as the ecAdd precompile.
func addPoints(a, b point) (point, error) {
	ga, err := toG1(a)
	if err != nil {
		return point{}, err
	}
	gb, err := toG1(b)
	if err != nil {
		return point{}, err
	}
	sum := new(bn256.G1)
	sum.Add(ga, gb)
	out := sum.Marshal()
	return point{
		x: new(big.Int).SetBytes(out[:32]),
		y: new(big.Int).SetBytes(out[32:64]),
	}, nil
}

func toG1(p point) (*bn256.G1, error) {
	g := new(bn256.G1)
	if _, err := g.Unmarshal(concatBytes(bigIntTo32Bytes(p.x), bigIntTo32Bytes(p.y))); err != nil {
		return nil, fmt.Errorf("crypto: %w: invalid curve point: %v", domain.ErrMalformedIdentifier, err)
	}
	return g, nil
}
