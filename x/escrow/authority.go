package escrow

import (
	"github.com/iov-one/barter"
	"github.com/iov-one/barter/errors"
	"github.com/iov-one/barter/x"
	"github.com/iov-one/barter/x/ledger"
)

const (
	extensionName = "escrow"

	// discriminators keep the address spaces of records, authorities and
	// custody accounts apart
	swapType    = "swap"
	authType    = "auth"
	custodyType = "custody"

	maxBump = 255
)

// swapSeed returns the seed material shared by all derivations of a swap.
func swapSeed(program, offeringSource, requestingSource barter.Address) []byte {
	seed := make([]byte, 0, len(program)+len(offeringSource)+len(requestingSource))
	seed = append(seed, program...)
	seed = append(seed, offeringSource...)
	seed = append(seed, requestingSource...)
	return seed
}

// EscrowID returns the key under which the escrow for given sources is
// stored. It is the same for every initiation attempt with the same sources.
func EscrowID(program, offeringSource, requestingSource barter.Address) barter.Address {
	return barter.NewCondition(extensionName, swapType, swapSeed(program, offeringSource, requestingSource)).Address()
}

// CustodyAddress returns the address of the custody account of given side.
func CustodyAddress(program barter.Address, side Side, offeringSource, requestingSource barter.Address) barter.Address {
	data := make([]byte, 0, len(program)+1+len(offeringSource)+len(requestingSource))
	data = append(data, program...)
	data = append(data, byte(side))
	data = append(data, offeringSource...)
	data = append(data, requestingSource...)
	return barter.NewCondition(extensionName, custodyType, data).Address()
}

// Authority is the capability to move assets out of custody accounts of a
// single swap. It is reconstructed from the swap seeds and a bump and is
// never stored or signed for.
type Authority struct {
	seed []byte
	bump uint8
}

var _ x.Authenticator = Authority{}

// NewAuthority reconstructs the authority of a swap.
func NewAuthority(program, offeringSource, requestingSource barter.Address, bump uint8) Authority {
	return Authority{
		seed: swapSeed(program, offeringSource, requestingSource),
		bump: bump,
	}
}

// Bump returns the bump the authority was derived with.
func (a Authority) Bump() uint8 {
	return a.bump
}

// Condition returns the condition fulfilled by this authority.
func (a Authority) Condition() barter.Condition {
	data := make([]byte, 0, len(a.seed)+1)
	data = append(data, a.seed...)
	data = append(data, a.bump)
	return barter.NewCondition(extensionName, authType, data)
}

// Address returns the address accounts controlled by this authority use.
func (a Authority) Address() barter.Address {
	return a.Condition().Address()
}

// GetConditions returns the single condition of this authority.
func (a Authority) GetConditions(barter.Context) []barter.Condition {
	return []barter.Condition{a.Condition()}
}

// HasAddress returns true only for the authority address.
func (a Authority) HasAddress(_ barter.Context, addr barter.Address) bool {
	return a.Address().Equals(addr)
}

// FindAuthority returns the canonical authority of a swap. Bumps are tried
// from the highest down and the first one whose address is not used by any
// ledger entity is returned.
func FindAuthority(db barter.ReadOnlyKVStore, ledgr ledger.Reader, program, offeringSource, requestingSource barter.Address) (Authority, error) {
	for bump := maxBump; bump >= 0; bump-- {
		auth := NewAuthority(program, offeringSource, requestingSource, uint8(bump))
		exists, err := ledgr.Exists(db, auth.Address())
		if err != nil {
			return Authority{}, errors.Wrap(err, "authority lookup")
		}
		if !exists {
			return auth, nil
		}
	}
	return Authority{}, errors.Wrap(errors.ErrState, "no authority bump available")
}

// recordAuthority reconstructs the authority of given escrow with the
// caller supplied bump. ErrAuthorityDerivationMismatch is returned if the
// result is not the escrow authority.
func recordAuthority(e *Escrow, bump uint32) (Authority, error) {
	if bump > maxBump {
		return Authority{}, errors.Wrapf(ErrAuthorityDerivationMismatch, "bump %d out of range", bump)
	}
	off, req := e.Leg(Offering), e.Leg(Requesting)
	auth := NewAuthority(e.Program, off.Source, req.Source, uint8(bump))
	if !auth.Address().Equals(e.Authority) {
		return Authority{}, errors.Wrapf(ErrAuthorityDerivationMismatch, "bump %d", bump)
	}
	return auth, nil
}
