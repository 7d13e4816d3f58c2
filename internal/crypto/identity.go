// Package crypto derives Conditional Tokens identifiers (condition,
// collection and position ids) exactly as the on-chain CTHelpers library
// does, so the outcome of a split, merge or redemption can be predicted
// before a transaction is sent.
package crypto

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"

	"github.com/alanyoungcy/ctexplorer/internal/domain"
	"github.com/alanyoungcy/ctexplorer/internal/indexset"
)

// NullCollection is the root collection: no conditions.
var NullCollection = common.Hash{}

func keccak256(data []byte) []byte {
	return ethcrypto.Keccak256(data)
}

// ConditionID returns keccak256(abi.encodePacked(oracle, questionId, outcomeSlotCount)).
func ConditionID(oracle common.Address, questionID common.Hash, outcomeSlotCount uint64) common.Hash {
	return common.BytesToHash(keccak256(concatBytes(
		oracle.Bytes(),
		questionID.Bytes(),
		bigIntTo32Bytes(new(big.Int).SetUint64(outcomeSlotCount)),
	)))
}

// CollectionID returns the id of the collection obtained by adding the
// (conditionID, indexSet) constraint to parent. Pass NullCollection as parent
// for a top-level collection.
func CollectionID(parent, conditionID common.Hash, indexSet *big.Int) (common.Hash, error) {
	if indexSet == nil || indexSet.Sign() <= 0 {
		return common.Hash{}, fmt.Errorf("crypto: %w: index set must be positive", domain.ErrMalformedIndexSet)
	}
	p, err := hashToPoint(conditionID, indexSet)
	if err != nil {
		return common.Hash{}, err
	}
	if parent != NullCollection {
		q, err := decompress(parent)
		if err != nil {
			return common.Hash{}, fmt.Errorf("crypto: invalid parent collection: %w", err)
		}
		if p, err = addPoints(p, q); err != nil {
			return common.Hash{}, err
		}
	}
	return compress(p), nil
}

// CombineCollectionIDs derives the collection id for a set of condition
// constraints, starting from the root collection. Because collection ids add
// as curve points the order of pairs does not matter.
func CombineCollectionIDs(pairs []domain.ConditionIndexSet) (common.Hash, error) {
	acc := NullCollection
	for i, pair := range pairs {
		cond, set, err := parsePair(pair)
		if err != nil {
			return common.Hash{}, fmt.Errorf("crypto: pair %d: %w", i, err)
		}
		if acc, err = CollectionID(acc, cond, set); err != nil {
			return common.Hash{}, fmt.Errorf("crypto: pair %d: %w", i, err)
		}
	}
	return acc, nil
}

// RemoveFromCollection strips the (conditionID, indexSet) constraint from
// collection. It is the inverse of CollectionID: removing a constraint that
// was added returns the parent, and removing the last one returns
// NullCollection.
func RemoveFromCollection(collection, conditionID common.Hash, indexSet *big.Int) (common.Hash, error) {
	if indexSet == nil || indexSet.Sign() <= 0 {
		return common.Hash{}, fmt.Errorf("crypto: %w: index set must be positive", domain.ErrMalformedIndexSet)
	}
	c, err := decompress(collection)
	if err != nil {
		return common.Hash{}, err
	}
	p, err := hashToPoint(conditionID, indexSet)
	if err != nil {
		return common.Hash{}, err
	}
	rest, err := addPoints(c, p.neg())
	if err != nil {
		return common.Hash{}, err
	}
	return compress(rest), nil
}

// PositionID returns keccak256(abi.encodePacked(collateral, collectionId)).
// Its integer value is the ERC-1155 token id of the position.
func PositionID(collateral common.Address, collection common.Hash) common.Hash {
	return common.BytesToHash(keccak256(concatBytes(collateral.Bytes(), collection.Bytes())))
}

// PositionTokenID returns the position id as a decimal uint256 string.
func PositionTokenID(collateral common.Address, collection common.Hash) string {
	return PositionID(collateral, collection).Big().String()
}

// DerivePosition computes the collection and position ids of a position from
// its collateral and parallel condition/index-set lists.
func DerivePosition(p domain.Position) (collection, position common.Hash, err error) {
	if len(p.ConditionIDs) != len(p.IndexSets) {
		return common.Hash{}, common.Hash{}, fmt.Errorf("crypto: %w: %d conditions but %d index sets",
			domain.ErrPreconditionViolation, len(p.ConditionIDs), len(p.IndexSets))
	}
	collateral, err := ParseAddress(p.CollateralToken)
	if err != nil {
		return common.Hash{}, common.Hash{}, err
	}
	pairs := make([]domain.ConditionIndexSet, len(p.ConditionIDs))
	for i := range p.ConditionIDs {
		pairs[i] = domain.ConditionIndexSet{ConditionID: p.ConditionIDs[i], IndexSet: p.IndexSets[i]}
	}
	collection, err = CombineCollectionIDs(pairs)
	if err != nil {
		return common.Hash{}, common.Hash{}, err
	}
	return collection, PositionID(collateral, collection), nil
}

func parsePair(pair domain.ConditionIndexSet) (common.Hash, *big.Int, error) {
	cond, err := ParseHash(pair.ConditionID)
	if err != nil {
		return common.Hash{}, nil, err
	}
	set, err := indexset.Parse(pair.IndexSet)
	if err != nil {
		return common.Hash{}, nil, err
	}
	return cond, set, nil
}
