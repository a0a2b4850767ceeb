package ledger

import (
	"github.com/iov-one/barter"
	"github.com/iov-one/barter/errors"
)

const (
	pathTransfer      = "ledger/transfer"
	pathCreateAccount = "ledger/create_account"

	maxMemoSize = 128
	maxSeedSize = 32
)

var _ barter.Msg = (*TransferMsg)(nil)
var _ barter.Msg = (*CreateAccountMsg)(nil)

// TransferMsg moves units between two accounts of the same class. It must
// be signed by the authority of the source account.
type TransferMsg struct {
	Metadata    *barter.Metadata `json:"metadata"`
	Source      barter.Address   `json:"source"`
	Destination barter.Address   `json:"destination"`
	Amount      uint64           `json:"amount"`
	Memo        string           `json:"memo,omitempty"`
}

// Path fulfills barter.Msg interface to allow routing
func (TransferMsg) Path() string {
	return pathTransfer
}

// Validate makes sure that this is sane
func (m *TransferMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", m.Metadata.Validate())
	errs = errors.AppendField(errs, "Source", m.Source.Validate())
	errs = errors.AppendField(errs, "Destination", m.Destination.Validate())
	if m.Amount == 0 {
		errs = errors.AppendField(errs, "Amount", errors.ErrAmount)
	}
	if len(m.Memo) > maxMemoSize {
		errs = errors.AppendField(errs, "Memo", errors.ErrInput)
	}
	return errs
}

// Marshal serializes the message with the ledger codec.
func (m *TransferMsg) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(m)
}

// Unmarshal loads the message serialized with the ledger codec.
func (m *TransferMsg) Unmarshal(raw []byte) error {
	return cdc.UnmarshalBinaryBare(raw, m)
}

// CreateAccountMsg creates an empty account of a class controlled by given
// authority. The account address is derived from the class, the authority
// and the seed, see AccountAddress. The payer must sign the message.
type CreateAccountMsg struct {
	Metadata  *barter.Metadata `json:"metadata"`
	Payer     barter.Address   `json:"payer"`
	Class     barter.Address   `json:"class"`
	Authority barter.Address   `json:"authority"`
	Seed      []byte           `json:"seed,omitempty"`
}

// Path fulfills barter.Msg interface to allow routing
func (CreateAccountMsg) Path() string {
	return pathCreateAccount
}

// Validate makes sure that this is sane
func (m *CreateAccountMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", m.Metadata.Validate())
	errs = errors.AppendField(errs, "Payer", m.Payer.Validate())
	errs = errors.AppendField(errs, "Class", m.Class.Validate())
	errs = errors.AppendField(errs, "Authority", m.Authority.Validate())
	if len(m.Seed) > maxSeedSize {
		errs = errors.AppendField(errs, "Seed", errors.ErrInput)
	}
	return errs
}

// Marshal serializes the message with the ledger codec.
func (m *CreateAccountMsg) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(m)
}

// Unmarshal loads the message serialized with the ledger codec.
func (m *CreateAccountMsg) Unmarshal(raw []byte) error {
	return cdc.UnmarshalBinaryBare(raw, m)
}
