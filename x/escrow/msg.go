package escrow

import (
	"github.com/iov-one/barter"
	"github.com/iov-one/barter/errors"
	"github.com/iov-one/barter/gconf"
)

const (
	pathInitiateSwap        = "escrow/initiate"
	pathFund                = "escrow/fund"
	pathDefund              = "escrow/defund"
	pathFinalizeSwap        = "escrow/finalize"
	pathUpdateConfiguration = "escrow/update_configuration"
)

var _ barter.Msg = (*InitiateSwapMsg)(nil)
var _ barter.Msg = (*FundMsg)(nil)
var _ barter.Msg = (*DefundMsg)(nil)
var _ barter.Msg = (*FinalizeSwapMsg)(nil)
var _ barter.Msg = (*UpdateConfigurationMsg)(nil)

// InitiateSwapMsg creates an escrow and its custody accounts. It must be
// signed by the offering party.
type InitiateSwapMsg struct {
	Metadata         *barter.Metadata `json:"metadata"`
	OfferingParty    barter.Address   `json:"offering_party"`
	RequestingParty  barter.Address   `json:"requesting_party"`
	OfferedClass     barter.Address   `json:"offered_class"`
	RequestedClass   barter.Address   `json:"requested_class"`
	OfferingSource   barter.Address   `json:"offering_source"`
	RequestingSource barter.Address   `json:"requesting_source"`
}

// Path fulfills barter.Msg interface to allow routing
func (InitiateSwapMsg) Path() string {
	return pathInitiateSwap
}

// Validate makes sure that this is sane
func (m *InitiateSwapMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", m.Metadata.Validate())
	errs = errors.AppendField(errs, "OfferingParty", m.OfferingParty.Validate())
	errs = errors.AppendField(errs, "RequestingParty", m.RequestingParty.Validate())
	errs = errors.AppendField(errs, "OfferedClass", m.OfferedClass.Validate())
	errs = errors.AppendField(errs, "RequestedClass", m.RequestedClass.Validate())
	errs = errors.AppendField(errs, "OfferingSource", m.OfferingSource.Validate())
	errs = errors.AppendField(errs, "RequestingSource", m.RequestingSource.Validate())
	if m.OfferingSource != nil && m.OfferingSource.Equals(m.RequestingSource) {
		errs = errors.AppendField(errs, "RequestingSource", errors.Wrap(errors.ErrInput, "sources must differ"))
	}
	return errs
}

// Marshal serializes the message with the escrow codec.
func (m *InitiateSwapMsg) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(m)
}

// Unmarshal loads the message serialized with the escrow codec.
func (m *InitiateSwapMsg) Unmarshal(raw []byte) error {
	return cdc.UnmarshalBinaryBare(raw, m)
}

// FundMsg deposits one unit from a source account of the signer into the
// custody account of the signer's side.
type FundMsg struct {
	Metadata *barter.Metadata `json:"metadata"`
	EscrowID barter.Address   `json:"escrow_id"`
	Side     Side             `json:"side"`
	Source   barter.Address   `json:"source"`
	Custody  barter.Address   `json:"custody"`
}

// Path fulfills barter.Msg interface to allow routing
func (FundMsg) Path() string {
	return pathFund
}

// Validate makes sure that this is sane
func (m *FundMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", m.Metadata.Validate())
	errs = errors.AppendField(errs, "EscrowID", m.EscrowID.Validate())
	errs = errors.AppendField(errs, "Side", m.Side.Validate())
	errs = errors.AppendField(errs, "Source", m.Source.Validate())
	errs = errors.AppendField(errs, "Custody", m.Custody.Validate())
	return errs
}

// Marshal serializes the message with the escrow codec.
func (m *FundMsg) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(m)
}

// Unmarshal loads the message serialized with the escrow codec.
func (m *FundMsg) Unmarshal(raw []byte) error {
	return cdc.UnmarshalBinaryBare(raw, m)
}

// DefundMsg withdraws the deposit of the signer's side back to an account
// owned by the signer.
type DefundMsg struct {
	Metadata    *barter.Metadata `json:"metadata"`
	EscrowID    barter.Address   `json:"escrow_id"`
	Side        Side             `json:"side"`
	Bump        uint32           `json:"bump"`
	Custody     barter.Address   `json:"custody"`
	Destination barter.Address   `json:"destination"`
}

// Path fulfills barter.Msg interface to allow routing
func (DefundMsg) Path() string {
	return pathDefund
}

// Validate makes sure that this is sane
func (m *DefundMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", m.Metadata.Validate())
	errs = errors.AppendField(errs, "EscrowID", m.EscrowID.Validate())
	errs = errors.AppendField(errs, "Side", m.Side.Validate())
	errs = errors.AppendField(errs, "Custody", m.Custody.Validate())
	errs = errors.AppendField(errs, "Destination", m.Destination.Validate())
	return errs
}

// Marshal serializes the message with the escrow codec.
func (m *DefundMsg) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(m)
}

// Unmarshal loads the message serialized with the escrow codec.
func (m *DefundMsg) Unmarshal(raw []byte) error {
	return cdc.UnmarshalBinaryBare(raw, m)
}

// FinalizeSwapMsg releases both deposits to the counterparties. It can be
// submitted by anyone.
type FinalizeSwapMsg struct {
	Metadata              *barter.Metadata `json:"metadata"`
	EscrowID              barter.Address   `json:"escrow_id"`
	Bump                  uint32           `json:"bump"`
	OfferingCustody       barter.Address   `json:"offering_custody"`
	RequestingCustody     barter.Address   `json:"requesting_custody"`
	OfferingDestination   barter.Address   `json:"offering_destination"`
	RequestingDestination barter.Address   `json:"requesting_destination"`
}

// Path fulfills barter.Msg interface to allow routing
func (FinalizeSwapMsg) Path() string {
	return pathFinalizeSwap
}

// Validate makes sure that this is sane
func (m *FinalizeSwapMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", m.Metadata.Validate())
	errs = errors.AppendField(errs, "EscrowID", m.EscrowID.Validate())
	errs = errors.AppendField(errs, "OfferingCustody", m.OfferingCustody.Validate())
	errs = errors.AppendField(errs, "RequestingCustody", m.RequestingCustody.Validate())
	errs = errors.AppendField(errs, "OfferingDestination", m.OfferingDestination.Validate())
	errs = errors.AppendField(errs, "RequestingDestination", m.RequestingDestination.Validate())
	return errs
}

// Marshal serializes the message with the escrow codec.
func (m *FinalizeSwapMsg) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(m)
}

// Unmarshal loads the message serialized with the escrow codec.
func (m *FinalizeSwapMsg) Unmarshal(raw []byte) error {
	return cdc.UnmarshalBinaryBare(raw, m)
}

// UpdateConfigurationMsg patches the escrow configuration. Only non zero
// fields of the patch are applied.
type UpdateConfigurationMsg struct {
	Metadata *barter.Metadata `json:"metadata"`
	Patch    *Configuration   `json:"patch"`
}

// Path fulfills barter.Msg interface to allow routing
func (UpdateConfigurationMsg) Path() string {
	return pathUpdateConfiguration
}

// Validate makes sure that this is sane
func (m *UpdateConfigurationMsg) Validate() error {
	if err := m.Metadata.Validate(); err != nil {
		return errors.Wrap(err, "metadata")
	}
	if m.Patch == nil {
		return errors.Wrap(errors.ErrEmpty, "patch")
	}
	return nil
}

// ConfigPatch returns the partial configuration to apply.
func (m *UpdateConfigurationMsg) ConfigPatch() gconf.OwnedConfig {
	if m.Patch == nil {
		return nil
	}
	return m.Patch
}

// Marshal serializes the message with the escrow codec.
func (m *UpdateConfigurationMsg) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(m)
}

// Unmarshal loads the message serialized with the escrow codec.
func (m *UpdateConfigurationMsg) Unmarshal(raw []byte) error {
	return cdc.UnmarshalBinaryBare(raw, m)
}
