package eip712

import (
	"errors"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/uhyunpark/perpsign/pkg/codec"
)

const (
	CancelTypeString = "CancelLimitOrder(string action,bytes32[] orderHashes)"
	CancelAction     = "Cancel Orders"
)

var (
	cancelTypeHash   = crypto.Keccak256Hash([]byte(CancelTypeString))
	cancelActionHash = crypto.Keccak256Hash([]byte(CancelAction))
)

var errNoOrderHashes = errors.New("cancel requires at least one order hash")

// CancelStructHash returns keccak256(typeHash || keccak("Cancel Orders") || keccak(h1 || h2 || ...)).
// For a single hash the array member reduces to keccak256 of its 32 raw bytes.
func CancelStructHash(orderHashes ...common.Hash) (common.Hash, error) {
	if len(orderHashes) == 0 {
		return common.Hash{}, errNoOrderHashes
	}

	members := make([]byte, 0, len(orderHashes)*common.HashLength)
	for _, h := range orderHashes {
		members = append(members, h.Bytes()...)
	}

	return crypto.Keccak256Hash(
		cancelTypeHash.Bytes(),
		cancelActionHash.Bytes(),
		crypto.Keccak256(members),
	), nil
}

// ParseOrderHashes decodes hex order hashes; a leading 0x is optional.
func ParseOrderHashes(orderHashes []string) ([]common.Hash, error) {
	out := make([]common.Hash, 0, len(orderHashes))
	for _, s := range orderHashes {
		h, err := codec.ParseHash("orderHash", s)
		if err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, nil
}
