package escrow

import (
	"fmt"

	"github.com/iov-one/barter"
	"github.com/iov-one/barter/errors"
	"github.com/iov-one/barter/x/ledger"
)

// SwapStage is the derived progress of a swap. It is not stored, it is
// computed from the escrow status and the custody balances.
type SwapStage int

const (
	BothEmpty SwapStage = iota
	OfferingFunded
	RequestingFunded
	BothFunded
	Complete
)

func (s SwapStage) String() string {
	switch s {
	case BothEmpty:
		return "both_empty"
	case OfferingFunded:
		return "offering_funded"
	case RequestingFunded:
		return "requesting_funded"
	case BothFunded:
		return "both_funded"
	case Complete:
		return "complete"
	}
	return fmt.Sprintf("stage(%d)", int(s))
}

// Stage reports the progress of given escrow.
func Stage(db barter.ReadOnlyKVStore, l ledger.Reader, e *Escrow) (SwapStage, error) {
	if e.Status == StatusCompleted {
		return Complete, nil
	}
	var funded [len(Sides)]bool
	for _, s := range Sides {
		bal, err := l.Balance(db, e.Leg(s).Custody)
		if err != nil {
			return 0, errors.Wrapf(err, "%s custody", s)
		}
		funded[s.index()] = bal > 0
	}
	switch off, req := funded[Offering.index()], funded[Requesting.index()]; {
	case off && req:
		return BothFunded, nil
	case off:
		return OfferingFunded, nil
	case req:
		return RequestingFunded, nil
	default:
		return BothEmpty, nil
	}
}
