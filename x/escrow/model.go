package escrow

import (
	"github.com/iov-one/barter"
	"github.com/iov-one/barter/errors"
	"github.com/iov-one/barter/orm"
)

// Status of an escrow record.
type Status int32

const (
	// StatusOpen escrows accept funding and withdrawals.
	StatusOpen Status = 1
	// StatusCompleted escrows were finalized. This is a terminal status.
	StatusCompleted Status = 2
)

// Leg holds the terms of one side of the swap.
type Leg struct {
	// Party is the identity of the side's owner.
	Party barter.Address `json:"party"`
	// Class is the asset class this side deposits.
	Class barter.Address `json:"class"`
	// Source is the account that held the asset at initiation. It seeds
	// all derivations of the swap.
	Source barter.Address `json:"source"`
	// Custody is the account holding the deposit of this side.
	Custody barter.Address `json:"custody"`
}

// Validate ensures the leg is valid.
func (l *Leg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Party", l.Party.Validate())
	errs = errors.AppendField(errs, "Class", l.Class.Validate())
	errs = errors.AppendField(errs, "Source", l.Source.Validate())
	errs = errors.AppendField(errs, "Custody", l.Custody.Validate())
	return errs
}

// Escrow is the durable record of a swap.
type Escrow struct {
	Metadata *barter.Metadata `json:"metadata"`
	// Program is the program identity all addresses were derived with.
	Program barter.Address `json:"program"`
	// Legs are indexed by side, offering first.
	Legs []Leg `json:"legs"`
	// Authority controls both custody accounts.
	Authority barter.Address `json:"authority"`
	// Bump is the canonical bump of the authority.
	Bump   uint32 `json:"bump"`
	Status Status `json:"status"`
}

var _ orm.Model = (*Escrow)(nil)

// Leg returns the terms of given side. It panics for an unknown side.
func (e *Escrow) Leg(s Side) *Leg {
	return &e.Legs[s.index()]
}

// Validate ensures the escrow is valid
func (e *Escrow) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", e.Metadata.Validate())
	errs = errors.AppendField(errs, "Program", e.Program.Validate())
	if len(e.Legs) != len(Sides) {
		return errors.AppendField(errs, "Legs", errors.Wrapf(errors.ErrModel, "want %d legs, got %d", len(Sides), len(e.Legs)))
	}
	for _, s := range Sides {
		errs = errors.AppendField(errs, "Legs."+s.String(), e.Leg(s).Validate())
	}
	if e.Leg(Offering).Custody.Equals(e.Leg(Requesting).Custody) {
		errs = errors.AppendField(errs, "Legs", errors.Wrap(errors.ErrModel, "custody accounts must be distinct"))
	}
	errs = errors.AppendField(errs, "Authority", e.Authority.Validate())
	if e.Bump > maxBump {
		errs = errors.AppendField(errs, "Bump", errors.ErrInput)
	}
	switch e.Status {
	case StatusOpen, StatusCompleted:
	default:
		errs = errors.AppendField(errs, "Status", errors.ErrState)
	}
	return errs
}

// Copy returns a deep copy of the escrow.
func (e *Escrow) Copy() orm.Model {
	legs := make([]Leg, len(e.Legs))
	for i, l := range e.Legs {
		legs[i] = Leg{
			Party:   l.Party.Clone(),
			Class:   l.Class.Clone(),
			Source:  l.Source.Clone(),
			Custody: l.Custody.Clone(),
		}
	}
	return &Escrow{
		Metadata:  e.Metadata.Copy(),
		Program:   e.Program.Clone(),
		Legs:      legs,
		Authority: e.Authority.Clone(),
		Bump:      e.Bump,
		Status:    e.Status,
	}
}

// Marshal serializes the escrow with the escrow codec.
func (e *Escrow) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(e)
}

// Unmarshal loads the escrow serialized with the escrow codec.
func (e *Escrow) Unmarshal(raw []byte) error {
	return cdc.UnmarshalBinaryBare(raw, e)
}

// Bucket stores escrow records by their id.
type Bucket struct {
	orm.ModelBucket
}

// NewBucket returns a bucket for escrow records, indexed by both parties.
func NewBucket() Bucket {
	return Bucket{
		ModelBucket: orm.NewModelBucket("escrow", &Escrow{},
			orm.WithMultiKeyIndex("party", escrowParties, false),
		),
	}
}

// ByParty returns all escrows where given address is one of the parties,
// together with their ids.
func (b Bucket) ByParty(db barter.ReadOnlyKVStore, party barter.Address) ([]barter.Address, []*Escrow, error) {
	var escrows []*Escrow
	keys, err := b.ByIndex(db, "party", party, &escrows)
	if err != nil {
		return nil, nil, err
	}
	ids := make([]barter.Address, len(keys))
	for i, k := range keys {
		ids[i] = barter.Address(k)
	}
	return ids, escrows, nil
}

// Load returns the escrow with given id or ErrNotFound.
func (b Bucket) Load(db barter.ReadOnlyKVStore, id barter.Address) (*Escrow, error) {
	var e Escrow
	if err := b.One(db, id, &e); err != nil {
		return nil, errors.Wrapf(err, "escrow %s", id)
	}
	return &e, nil
}

func escrowParties(obj orm.Object) ([][]byte, error) {
	if obj == nil {
		return nil, errors.Wrap(errors.ErrHuman, "cannot take index of nil")
	}
	e, ok := obj.Value().(*Escrow)
	if !ok {
		return nil, errors.Wrapf(errors.ErrHuman, "can only take index of Escrow, got %T", obj.Value())
	}
	keys := make([][]byte, 0, len(e.Legs))
	for _, l := range e.Legs {
		keys = append(keys, l.Party)
	}
	return keys, nil
}
