package ledger

import (
	"github.com/iov-one/barter"
	"github.com/iov-one/barter/errors"
	"github.com/iov-one/barter/x"
)

const (
	transferCost      int64 = 100
	createAccountCost int64 = 200
)

// RegisterRoutes will instantiate and register
// all handlers in this package
func RegisterRoutes(r barter.Registry, auth x.Authenticator, ctrl Controller) {
	r.Handle(pathTransfer, TransferHandler{auth: auth, ctrl: ctrl})
	r.Handle(pathCreateAccount, CreateAccountHandler{auth: auth, ctrl: ctrl})
}

// TransferHandler moves units between accounts on behalf of the signer.
type TransferHandler struct {
	auth x.Authenticator
	ctrl Controller
}

var _ barter.Handler = TransferHandler{}

// Check verifies that the transfer can be executed
func (h TransferHandler) Check(ctx barter.Context, db barter.KVStore, tx barter.Tx) (*barter.CheckResult, error) {
	if _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &barter.CheckResult{GasAllocated: transferCost}, nil
}

// Deliver moves the units
func (h TransferHandler) Deliver(ctx barter.Context, db barter.KVStore, tx barter.Tx) (*barter.DeliverResult, error) {
	msg, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	if err := h.ctrl.Transfer(ctx, db, h.auth, msg.Source, msg.Destination, msg.Amount); err != nil {
		return nil, err
	}
	return &barter.DeliverResult{}, nil
}

// validate does all common pre-processing between Check and Deliver.
func (h TransferHandler) validate(ctx barter.Context, db barter.KVStore, tx barter.Tx) (*TransferMsg, error) {
	var msg *TransferMsg
	if err := barter.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	src, err := h.ctrl.Account(db, msg.Source)
	if err != nil {
		return nil, err
	}
	if !h.auth.HasAddress(ctx, src.Authority) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "source authority signature required")
	}
	return msg, nil
}

// CreateAccountHandler creates empty accounts at derived addresses.
type CreateAccountHandler struct {
	auth x.Authenticator
	ctrl Controller
}

var _ barter.Handler = CreateAccountHandler{}

// Check verifies the payer signature and that the account does not exist
func (h CreateAccountHandler) Check(ctx barter.Context, db barter.KVStore, tx barter.Tx) (*barter.CheckResult, error) {
	msg, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	if _, err := h.ctrl.Class(db, msg.Class); err != nil {
		return nil, err
	}
	addr := AccountAddress(msg.Class, msg.Authority, msg.Seed)
	exists, err := h.ctrl.Exists(db, addr)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, errors.Wrapf(errors.ErrDuplicate, "account %s", addr)
	}
	return &barter.CheckResult{GasAllocated: createAccountCost}, nil
}

// Deliver creates the account and returns its address
func (h CreateAccountHandler) Deliver(ctx barter.Context, db barter.KVStore, tx barter.Tx) (*barter.DeliverResult, error) {
	msg, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	addr := AccountAddress(msg.Class, msg.Authority, msg.Seed)
	if _, err := h.ctrl.CreateAccount(db, msg.Payer, addr, msg.Class, msg.Authority); err != nil {
		return nil, err
	}
	return &barter.DeliverResult{Data: addr}, nil
}

func (h CreateAccountHandler) validate(ctx barter.Context, db barter.KVStore, tx barter.Tx) (*CreateAccountMsg, error) {
	var msg *CreateAccountMsg
	if err := barter.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if !h.auth.HasAddress(ctx, msg.Payer) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "payer signature required")
	}
	return msg, nil
}
