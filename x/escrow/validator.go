package escrow

import (
	"github.com/iov-one/barter"
	"github.com/iov-one/barter/errors"
	"github.com/iov-one/barter/x/ledger"
)

// Signed reports whether an address authorized the current call.
type Signed func(barter.Address) bool

// Position is an account address together with its ledger state.
type Position struct {
	Address barter.Address
	Account *ledger.Account
}

// All validation functions below are pure. They inspect the escrow record,
// a snapshot of the involved accounts and the signers and never touch the
// store.

// ValidateInitiate checks that both classes are unique assets and that
// both sources hold their single unit and are owned by their parties.
// Limiting swaps to unique classes keeps every custody account at zero or
// one unit, whoever else transfers into it.
func ValidateInitiate(msg *InitiateSwapMsg, offering, requesting *ledger.Account, offered, requested *ledger.AssetClass, signed Signed) error {
	if !signed(msg.OfferingParty) {
		return errors.Wrap(ErrAuthorizationMismatch, "offering party signature required")
	}
	legs := []struct {
		side    Side
		party   barter.Address
		classID barter.Address
		class   *ledger.AssetClass
		src     *ledger.Account
	}{
		{Offering, msg.OfferingParty, msg.OfferedClass, offered, offering},
		{Requesting, msg.RequestingParty, msg.RequestedClass, requested, requesting},
	}
	for _, l := range legs {
		if !l.src.Authority.Equals(l.party) {
			return errors.Wrapf(ErrAuthorizationMismatch, "%s source is not owned by the %s party", l.side, l.side)
		}
		if !l.src.Class.Equals(l.classID) {
			return errors.Wrapf(ErrRecordMismatch, "%s source does not hold class %s", l.side, l.classID)
		}
		if !l.class.IsUnique() {
			return errors.Wrapf(ErrBalancePrecondition, "%s class %s has a supply of %d, only unique assets can be swapped", l.side, l.classID, l.class.Supply)
		}
		if l.src.Amount != 1 {
			return errors.Wrapf(ErrBalancePrecondition, "%s source must hold exactly 1 unit, holds %d", l.side, l.src.Amount)
		}
	}
	return nil
}

// ValidateFund checks that the signer can deposit into the custody account
// of given side.
func ValidateFund(e *Escrow, side Side, source, custody Position, signed Signed) error {
	if e.Status != StatusOpen {
		return errors.Wrap(errors.ErrState, "escrow is completed")
	}
	leg := e.Leg(side)
	if !custody.Address.Equals(leg.Custody) {
		return errors.Wrapf(ErrRecordMismatch, "%s custody address", side)
	}
	if !signed(leg.Party) {
		return errors.Wrapf(ErrAuthorizationMismatch, "only the %s party can fund this side", side)
	}
	if !custody.Account.Authority.Equals(e.Authority) {
		return errors.Wrapf(ErrRecordMismatch, "%s custody is not controlled by the escrow", side)
	}
	if !source.Account.Class.Equals(leg.Class) {
		return errors.Wrapf(ErrRecordMismatch, "source does not hold class %s", leg.Class)
	}
	if !signed(source.Account.Authority) {
		return errors.Wrap(ErrAuthorizationMismatch, "source authority signature required")
	}
	if custody.Account.Amount != 0 {
		return errors.Wrapf(ErrBalancePrecondition, "%s custody is already funded", side)
	}
	if source.Account.Amount < 1 {
		return errors.Wrap(ErrBalancePrecondition, "source is empty")
	}
	return nil
}

// ValidateDefund checks that the signer can withdraw the deposit of given
// side into the destination account.
func ValidateDefund(e *Escrow, side Side, bump uint32, custody, destination Position, signed Signed) error {
	if e.Status != StatusOpen {
		return errors.Wrap(errors.ErrState, "escrow is completed")
	}
	leg := e.Leg(side)
	if !signed(leg.Party) {
		return errors.Wrapf(ErrAuthorizationMismatch, "only the %s party can defund this side", side)
	}
	if !custody.Address.Equals(leg.Custody) {
		return errors.Wrapf(ErrRecordMismatch, "%s custody address", side)
	}
	if _, err := recordAuthority(e, bump); err != nil {
		return err
	}
	if !custody.Account.Authority.Equals(e.Authority) {
		return errors.Wrapf(ErrRecordMismatch, "%s custody is not controlled by the escrow", side)
	}
	if !destination.Account.Authority.Equals(leg.Party) {
		return errors.Wrapf(ErrAuthorizationMismatch, "destination is not owned by the %s party", side)
	}
	if !destination.Account.Class.Equals(leg.Class) {
		return errors.Wrapf(ErrRecordMismatch, "destination does not hold class %s", leg.Class)
	}
	if custody.Account.Amount != 1 {
		return errors.Wrapf(ErrBalancePrecondition, "%s custody holds %d units", side, custody.Account.Amount)
	}
	return nil
}

// Settlement describes the accounts involved in finalizing a swap, indexed
// by side. Sources are the accounts recorded at initiation.
type Settlement struct {
	Sources      [2]Position
	Custodies    [2]Position
	Destinations [2]Position
}

// ValidateFinalize checks all preconditions of releasing both deposits.
// Custody of each side is released to the destination of the same side,
// which must be owned by the counterparty.
func ValidateFinalize(e *Escrow, bump uint32, s Settlement) error {
	if e.Status != StatusOpen {
		return errors.Wrap(ErrPreconditionFailed, "escrow is completed")
	}
	if _, err := recordAuthority(e, bump); err != nil {
		return err
	}
	for _, side := range Sides {
		i, leg := side.index(), e.Leg(side)
		counter := e.Leg(side.Counterparty())

		custody := s.Custodies[i]
		if !custody.Address.Equals(leg.Custody) {
			return errors.Wrapf(ErrPreconditionFailed, "%s custody address does not match the record", side)
		}
		if !custody.Account.Authority.Equals(e.Authority) {
			return errors.Wrapf(ErrPreconditionFailed, "%s custody is not controlled by the escrow", side)
		}
		if custody.Account.Amount != 1 {
			return errors.Wrapf(ErrPreconditionFailed, "%s custody holds %d units", side, custody.Account.Amount)
		}

		dest := s.Destinations[i]
		if !dest.Account.Authority.Equals(counter.Party) {
			return errors.Wrapf(ErrPreconditionFailed, "%s destination is not owned by the %s party", side, side.Counterparty())
		}
		if !dest.Account.Class.Equals(leg.Class) {
			return errors.Wrapf(ErrPreconditionFailed, "%s destination does not hold class %s", side, leg.Class)
		}

		// The original source of the counterparty and this destination
		// must share the owner.
		counterSource := s.Sources[side.Counterparty().index()]
		if !counterSource.Address.Equals(counter.Source) {
			return errors.Wrapf(ErrPreconditionFailed, "%s source does not match the record", side.Counterparty())
		}
		if !counterSource.Account.Authority.Equals(dest.Account.Authority) {
			return errors.Wrapf(ErrPreconditionFailed, "%s source and %s destination owners differ", side.Counterparty(), side)
		}
	}
	return nil
}
