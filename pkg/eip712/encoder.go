package eip712

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// Encoder hashes orders and cancellations for one domain. The domain hash is
// computed once at construction; the Encoder is immutable and safe for concurrent use.
type Encoder struct {
	domain     Domain
	domainHash common.Hash
}

// NewEncoder validates the domain and caches its hash.
func NewEncoder(domain Domain) (*Encoder, error) {
	h, err := DomainHash(domain)
	if err != nil {
		return nil, fmt.Errorf("failed to hash domain: %w", err)
	}
	return &Encoder{domain: domain, domainHash: h}, nil
}

// Domain returns the domain the encoder was built for.
func (e *Encoder) Domain() Domain { return e.domain }

// DomainHash returns the cached domain separator.
func (e *Encoder) DomainHash() common.Hash { return e.domainHash }

// OrderHash returns the digest a maker signs to place the order.
func (e *Encoder) OrderHash(order *Order) (common.Hash, error) {
	structHash, err := StructHash(order)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to hash order: %w", err)
	}
	return FinalHash(e.domainHash, structHash), nil
}

// CancelHash returns the digest a maker signs to cancel the given order hashes.
func (e *Encoder) CancelHash(orderHashes ...common.Hash) (common.Hash, error) {
	structHash, err := CancelStructHash(orderHashes...)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to hash cancel: %w", err)
	}
	return FinalHash(e.domainHash, structHash), nil
}

// CancelHashHex is CancelHash over hex-encoded order hashes.
func (e *Encoder) CancelHashHex(orderHashes ...string) (common.Hash, error) {
	hashes, err := ParseOrderHashes(orderHashes)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to hash cancel: %w", err)
	}
	return e.CancelHash(hashes...)
}

// ComputeOrderHash hashes one order without keeping an Encoder around.
func ComputeOrderHash(order *Order, domain Domain) (common.Hash, error) {
	e, err := NewEncoder(domain)
	if err != nil {
		return common.Hash{}, err
	}
	return e.OrderHash(order)
}

// ComputeCancelHash hashes a cancellation without keeping an Encoder around.
func ComputeCancelHash(domain Domain, orderHashes ...common.Hash) (common.Hash, error) {
	e, err := NewEncoder(domain)
	if err != nil {
		return common.Hash{}, err
	}
	return e.CancelHash(orderHashes...)
}
