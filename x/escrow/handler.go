package escrow

import (
	"github.com/iov-one/barter"
	"github.com/iov-one/barter/errors"
	"github.com/iov-one/barter/gconf"
	"github.com/iov-one/barter/x"
	"github.com/iov-one/barter/x/ledger"
)

const (
	initiateSwapCost int64 = 300
	fundCost         int64 = 100
	defundCost       int64 = 100
	finalizeSwapCost int64 = 200
)

// RegisterRoutes will instantiate and register
// all handlers in this package
func RegisterRoutes(r barter.Registry, auth x.Authenticator, l ledger.Controller) {
	bucket := NewBucket()
	ex := NewExecutor(l)
	r.Handle(pathInitiateSwap, InitiateSwapHandler{auth: auth, bucket: bucket, ledger: l})
	r.Handle(pathFund, FundHandler{auth: auth, bucket: bucket, ledger: l, ex: ex})
	r.Handle(pathDefund, DefundHandler{auth: auth, bucket: bucket, ledger: l, ex: ex})
	r.Handle(pathFinalizeSwap, FinalizeSwapHandler{bucket: bucket, ledger: l, ex: ex})
	r.Handle(pathUpdateConfiguration, gconf.NewUpdateConfigurationHandler(configurationKey, &Configuration{}, auth, nil))
}

func signedBy(ctx barter.Context, auth x.Authenticator) Signed {
	return func(a barter.Address) bool {
		return auth.HasAddress(ctx, a)
	}
}

func loadPosition(db barter.ReadOnlyKVStore, l ledger.Reader, addr barter.Address) (Position, error) {
	acc, err := l.Account(db, addr)
	if err != nil {
		return Position{}, err
	}
	return Position{Address: addr, Account: acc}, nil
}

// InitiateSwapHandler creates an escrow together with its custody accounts.
type InitiateSwapHandler struct {
	auth   x.Authenticator
	bucket Bucket
	ledger ledger.Controller
}

var _ barter.Handler = InitiateSwapHandler{}

// Check verifies the swap can be initiated
func (h InitiateSwapHandler) Check(ctx barter.Context, db barter.KVStore, tx barter.Tx) (*barter.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return barter.NewCheck(initiateSwapCost, ""), nil
}

// Deliver stores the escrow and creates both custody accounts. The id of
// the escrow is returned.
func (h InitiateSwapHandler) Deliver(ctx barter.Context, db barter.KVStore, tx barter.Tx) (*barter.DeliverResult, error) {
	msg, program, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}

	id := EscrowID(program, msg.OfferingSource, msg.RequestingSource)
	var escrow *Escrow
	err = atomic(db, func(db barter.KVStore) error {
		auth, err := FindAuthority(db, h.ledger, program, msg.OfferingSource, msg.RequestingSource)
		if err != nil {
			return err
		}
		escrow = &Escrow{
			Metadata: &barter.Metadata{Schema: 1},
			Program:  program,
			Legs: []Leg{
				{Party: msg.OfferingParty, Class: msg.OfferedClass, Source: msg.OfferingSource},
				{Party: msg.RequestingParty, Class: msg.RequestedClass, Source: msg.RequestingSource},
			},
			Authority: auth.Address(),
			Bump:      uint32(auth.Bump()),
			Status:    StatusOpen,
		}
		for _, side := range Sides {
			leg := escrow.Leg(side)
			leg.Custody = CustodyAddress(program, side, msg.OfferingSource, msg.RequestingSource)
			// Offering party pays for both custody accounts.
			if _, err := h.ledger.CreateAccount(db, msg.OfferingParty, leg.Custody, leg.Class, escrow.Authority); err != nil {
				return errors.Wrapf(err, "create %s custody", side)
			}
		}
		return errors.Wrap(h.bucket.Put(db, id, escrow), "cannot store escrow")
	})
	if err != nil {
		return nil, err
	}

	barter.GetLogger(ctx).Info("swap initiated",
		"escrow", id,
		"offering", msg.OfferingParty,
		"requesting", msg.RequestingParty,
		"bump", escrow.Bump)
	return &barter.DeliverResult{Data: id}, nil
}

// validate does all common pre-processing between Check and Deliver.
func (h InitiateSwapHandler) validate(ctx barter.Context, db barter.KVStore, tx barter.Tx) (*InitiateSwapMsg, barter.Address, error) {
	var msg *InitiateSwapMsg
	if err := barter.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	conf, err := loadConf(db)
	if err != nil {
		return nil, nil, err
	}

	id := EscrowID(conf.ProgramID, msg.OfferingSource, msg.RequestingSource)
	switch err := h.bucket.Has(db, id); {
	case err == nil:
		return nil, nil, errors.Wrapf(ErrAlreadyInitiated, "escrow %s", id)
	case !errors.ErrNotFound.Is(err):
		return nil, nil, err
	}

	offering, err := h.ledger.Account(db, msg.OfferingSource)
	if err != nil {
		return nil, nil, errors.Wrap(err, "offering source")
	}
	requesting, err := h.ledger.Account(db, msg.RequestingSource)
	if err != nil {
		return nil, nil, errors.Wrap(err, "requesting source")
	}
	offered, err := h.ledger.Class(db, msg.OfferedClass)
	if err != nil {
		return nil, nil, errors.Wrap(err, "offered class")
	}
	requested, err := h.ledger.Class(db, msg.RequestedClass)
	if err != nil {
		return nil, nil, errors.Wrap(err, "requested class")
	}
	if err := ValidateInitiate(msg, offering, requesting, offered, requested, signedBy(ctx, h.auth)); err != nil {
		return nil, nil, err
	}
	return msg, conf.ProgramID, nil
}

// FundHandler deposits the asset of one side into its custody account.
type FundHandler struct {
	auth   x.Authenticator
	bucket Bucket
	ledger ledger.Controller
	ex     Executor
}

var _ barter.Handler = FundHandler{}

// Check verifies the deposit can be made
func (h FundHandler) Check(ctx barter.Context, db barter.KVStore, tx barter.Tx) (*barter.CheckResult, error) {
	if _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return barter.NewCheck(fundCost, ""), nil
}

// Deliver moves one unit from the source into custody. The escrow record
// is not modified.
func (h FundHandler) Deliver(ctx barter.Context, db barter.KVStore, tx barter.Tx) (*barter.DeliverResult, error) {
	msg, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	if err := h.ex.Deposit(ctx, db, h.auth, msg.Source, msg.Custody); err != nil {
		return nil, err
	}
	barter.GetLogger(ctx).Info("swap funded",
		"escrow", msg.EscrowID,
		"side", msg.Side,
		"signer", x.MainSigner(ctx, h.auth))
	return &barter.DeliverResult{}, nil
}

func (h FundHandler) validate(ctx barter.Context, db barter.KVStore, tx barter.Tx) (*FundMsg, error) {
	var msg *FundMsg
	if err := barter.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	escrow, err := h.bucket.Load(db, msg.EscrowID)
	if err != nil {
		return nil, err
	}
	source, err := loadPosition(db, h.ledger, msg.Source)
	if err != nil {
		return nil, errors.Wrap(err, "source")
	}
	custody, err := loadPosition(db, h.ledger, msg.Custody)
	if err != nil {
		return nil, errors.Wrap(err, "custody")
	}
	if err := ValidateFund(escrow, msg.Side, source, custody, signedBy(ctx, h.auth)); err != nil {
		return nil, err
	}
	return msg, nil
}

// DefundHandler returns the deposit of one side to its party.
type DefundHandler struct {
	auth   x.Authenticator
	bucket Bucket
	ledger ledger.Controller
	ex     Executor
}

var _ barter.Handler = DefundHandler{}

// Check verifies the deposit can be withdrawn
func (h DefundHandler) Check(ctx barter.Context, db barter.KVStore, tx barter.Tx) (*barter.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return barter.NewCheck(defundCost, ""), nil
}

// Deliver moves the deposit from custody to the destination on behalf of
// the escrow authority. The escrow record is not modified so the side can
// be funded again.
func (h DefundHandler) Deliver(ctx barter.Context, db barter.KVStore, tx barter.Tx) (*barter.DeliverResult, error) {
	msg, escrow, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	auth, err := recordAuthority(escrow, msg.Bump)
	if err != nil {
		return nil, err
	}
	if err := h.ex.Withdraw(ctx, db, auth, msg.Custody, msg.Destination); err != nil {
		return nil, err
	}
	barter.GetLogger(ctx).Info("swap defunded", "escrow", msg.EscrowID, "side", msg.Side)
	return &barter.DeliverResult{}, nil
}

func (h DefundHandler) validate(ctx barter.Context, db barter.KVStore, tx barter.Tx) (*DefundMsg, *Escrow, error) {
	var msg *DefundMsg
	if err := barter.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	escrow, err := h.bucket.Load(db, msg.EscrowID)
	if err != nil {
		return nil, nil, err
	}
	custody, err := loadPosition(db, h.ledger, msg.Custody)
	if err != nil {
		return nil, nil, errors.Wrap(err, "custody")
	}
	destination, err := loadPosition(db, h.ledger, msg.Destination)
	if err != nil {
		return nil, nil, errors.Wrap(err, "destination")
	}
	if err := ValidateDefund(escrow, msg.Side, msg.Bump, custody, destination, signedBy(ctx, h.auth)); err != nil {
		return nil, nil, err
	}
	return msg, escrow, nil
}

// FinalizeSwapHandler releases both deposits to the counterparties. It does
// not require any signature.
type FinalizeSwapHandler struct {
	bucket Bucket
	ledger ledger.Controller
	ex     Executor
}

var _ barter.Handler = FinalizeSwapHandler{}

// Check verifies the swap can be finalized
func (h FinalizeSwapHandler) Check(ctx barter.Context, db barter.KVStore, tx barter.Tx) (*barter.CheckResult, error) {
	if _, _, err := h.validate(db, tx); err != nil {
		return nil, err
	}
	return barter.NewCheck(finalizeSwapCost, ""), nil
}

// Deliver executes both releases atomically and marks the escrow completed.
func (h FinalizeSwapHandler) Deliver(ctx barter.Context, db barter.KVStore, tx barter.Tx) (*barter.DeliverResult, error) {
	msg, escrow, err := h.validate(db, tx)
	if err != nil {
		return nil, err
	}
	auth, err := recordAuthority(escrow, msg.Bump)
	if err != nil {
		return nil, err
	}
	err = atomic(db, func(db barter.KVStore) error {
		err := h.ex.Settle(ctx, db, auth,
			Release{Custody: msg.OfferingCustody, Destination: msg.OfferingDestination},
			Release{Custody: msg.RequestingCustody, Destination: msg.RequestingDestination},
		)
		if err != nil {
			return err
		}
		escrow.Status = StatusCompleted
		return errors.Wrap(h.bucket.Put(db, msg.EscrowID, escrow), "cannot store escrow")
	})
	if err != nil {
		return nil, err
	}
	barter.GetLogger(ctx).Info("swap finalized", "escrow", msg.EscrowID)
	return &barter.DeliverResult{}, nil
}

func (h FinalizeSwapHandler) validate(db barter.KVStore, tx barter.Tx) (*FinalizeSwapMsg, *Escrow, error) {
	var msg *FinalizeSwapMsg
	if err := barter.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	escrow, err := h.bucket.Load(db, msg.EscrowID)
	if err != nil {
		return nil, nil, err
	}

	var s Settlement
	load := func(dst *Position, addr barter.Address, what string) error {
		pos, err := loadPosition(db, h.ledger, addr)
		if err != nil {
			if errors.ErrNotFound.Is(err) {
				return errors.Wrapf(ErrPreconditionFailed, "%s %s does not exist", what, addr)
			}
			return err
		}
		*dst = pos
		return nil
	}
	accounts := []struct {
		dst  *Position
		addr barter.Address
		what string
	}{
		{&s.Sources[Offering.index()], escrow.Leg(Offering).Source, "offering source"},
		{&s.Sources[Requesting.index()], escrow.Leg(Requesting).Source, "requesting source"},
		{&s.Custodies[Offering.index()], msg.OfferingCustody, "offering custody"},
		{&s.Custodies[Requesting.index()], msg.RequestingCustody, "requesting custody"},
		{&s.Destinations[Offering.index()], msg.OfferingDestination, "offering destination"},
		{&s.Destinations[Requesting.index()], msg.RequestingDestination, "requesting destination"},
	}
	for _, a := range accounts {
		if err := load(a.dst, a.addr, a.what); err != nil {
			return nil, nil, err
		}
	}
	if err := ValidateFinalize(escrow, msg.Bump, s); err != nil {
		return nil, nil, err
	}
	return msg, escrow, nil
}
