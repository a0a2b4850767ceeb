package escrow

import (
	"fmt"

	"github.com/iov-one/barter/errors"
)

// Side identifies one of the two parties of a swap.
type Side int32

const (
	// Offering is the side of the party that initiated the swap.
	Offering Side = 1
	// Requesting is the side of the party the swap was offered to.
	Requesting Side = 2
)

// Sides lists both sides in their canonical order.
var Sides = [2]Side{Offering, Requesting}

// Validate returns an error if the side is not known.
func (s Side) Validate() error {
	switch s {
	case Offering, Requesting:
		return nil
	}
	return errors.Wrapf(errors.ErrInput, "unknown side %d", int32(s))
}

// Counterparty returns the other side of the swap.
func (s Side) Counterparty() Side {
	if s == Offering {
		return Requesting
	}
	return Offering
}

func (s Side) String() string {
	switch s {
	case Offering:
		return "offering"
	case Requesting:
		return "requesting"
	}
	return fmt.Sprintf("side(%d)", int32(s))
}

// index returns the position of the side in Escrow.Legs.
func (s Side) index() int {
	return int(s) - 1
}
