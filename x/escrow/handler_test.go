package escrow

import (
	"testing"

	"github.com/iov-one/barter"
	"github.com/iov-one/barter/bartertest"
	"github.com/iov-one/barter/bartertest/assert"
	"github.com/iov-one/barter/errors"
	"github.com/iov-one/barter/store"
	"github.com/iov-one/barter/x/ledger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestSwapLifecycle(t *testing.T) {
	Convey("Alice swaps her painting for the statue of Bob", t, func() {
		f := newFixture(t)
		db := store.MemStore()
		f.load(t, db)

		id, e := f.open(t, db)
		So(id, ShouldResemble, EscrowID(f.program, f.aliceSrc, f.bobSrc))
		So(e.Status, ShouldEqual, StatusOpen)
		So(e.Leg(Offering).Party, ShouldResemble, f.alice.Address())
		So(e.Leg(Requesting).Party, ShouldResemble, f.bob.Address())

		stage := func() SwapStage {
			e, err := NewBucket().Load(db, id)
			So(err, ShouldBeNil)
			s, err := Stage(db, f.ledger, e)
			So(err, ShouldBeNil)
			return s
		}
		So(stage(), ShouldEqual, BothEmpty)

		Convey("Custody accounts are controlled by the escrow authority", func() {
			for _, side := range Sides {
				acc, err := f.ledger.Account(db, e.Leg(side).Custody)
				So(err, ShouldBeNil)
				So(acc.Authority, ShouldResemble, e.Authority)
				So(acc.Payer, ShouldResemble, f.alice.Address())
				So(acc.Amount, ShouldEqual, 0)
			}
		})

		Convey("Initiating again is rejected", func() {
			_, err := f.run(f.ctx(f.alice), db, f.initiate())
			So(ErrAlreadyInitiated.Is(err), ShouldBeTrue)
		})

		Convey("Both parties fund their side", func() {
			_, err := f.run(f.ctx(f.alice), db, f.fund(id, e, Offering))
			So(err, ShouldBeNil)
			So(stage(), ShouldEqual, OfferingFunded)

			_, err = f.run(f.ctx(f.bob), db, f.fund(id, e, Requesting))
			So(err, ShouldBeNil)
			So(stage(), ShouldEqual, BothFunded)
			So(f.balance(t, db, f.aliceSrc), ShouldEqual, 0)
			So(f.balance(t, db, f.bobSrc), ShouldEqual, 0)

			Convey("Anyone can finalize", func() {
				_, err := f.run(f.ctx(), db, f.finalize(id, e))
				So(err, ShouldBeNil)
				So(stage(), ShouldEqual, Complete)

				So(f.balance(t, db, f.bobDst), ShouldEqual, 1)
				So(f.balance(t, db, f.aliceDst), ShouldEqual, 1)
				So(f.balance(t, db, e.Leg(Offering).Custody), ShouldEqual, 0)
				So(f.balance(t, db, e.Leg(Requesting).Custody), ShouldEqual, 0)

				Convey("Completed escrow cannot be used again", func() {
					_, err := f.run(f.ctx(f.alice), db, f.fund(id, e, Offering))
					So(errors.ErrState.Is(err), ShouldBeTrue)

					_, err = f.run(f.ctx(f.alice), db, &DefundMsg{
						Metadata:    &barter.Metadata{Schema: 1},
						EscrowID:    id,
						Side:        Offering,
						Bump:        e.Bump,
						Custody:     e.Leg(Offering).Custody,
						Destination: f.aliceSrc,
					})
					So(errors.ErrState.Is(err), ShouldBeTrue)

					_, err = f.run(f.ctx(), db, f.finalize(id, e))
					So(ErrPreconditionFailed.Is(err), ShouldBeTrue)
				})
			})
		})

		Convey("A party can withdraw and fund again", func() {
			_, err := f.run(f.ctx(f.alice), db, f.fund(id, e, Offering))
			So(err, ShouldBeNil)

			Convey("Finalizing with one side funded fails", func() {
				_, err := f.run(f.ctx(), db, f.finalize(id, e))
				So(ErrPreconditionFailed.Is(err), ShouldBeTrue)
				So(f.balance(t, db, e.Leg(Offering).Custody), ShouldEqual, 1)
			})

			defund := &DefundMsg{
				Metadata:    &barter.Metadata{Schema: 1},
				EscrowID:    id,
				Side:        Offering,
				Bump:        e.Bump,
				Custody:     e.Leg(Offering).Custody,
				Destination: f.aliceSrc,
			}
			_, err = f.run(f.ctx(f.alice), db, defund)
			So(err, ShouldBeNil)
			So(stage(), ShouldEqual, BothEmpty)
			So(f.balance(t, db, f.aliceSrc), ShouldEqual, 1)

			_, err = f.run(f.ctx(f.alice), db, f.fund(id, e, Offering))
			So(err, ShouldBeNil)
			So(stage(), ShouldEqual, OfferingFunded)
		})
	})
}

func TestInitiateSwapHandler(t *testing.T) {
	cases := map[string]struct {
		signer  func(f *fixture) barter.Condition
		msg     func(f *fixture) *InitiateSwapMsg
		wantErr *errors.Error
	}{
		"offering party initiates": {
			signer: func(f *fixture) barter.Condition { return f.alice },
			msg:    func(f *fixture) *InitiateSwapMsg { return f.initiate() },
		},
		"requesting party cannot initiate": {
			signer:  func(f *fixture) barter.Condition { return f.bob },
			msg:     func(f *fixture) *InitiateSwapMsg { return f.initiate() },
			wantErr: ErrAuthorizationMismatch,
		},
		"source not owned by the requesting party": {
			signer: func(f *fixture) barter.Condition { return f.alice },
			msg: func(f *fixture) *InitiateSwapMsg {
				msg := f.initiate()
				msg.RequestingParty = f.owner.Address()
				return msg
			},
			wantErr: ErrAuthorizationMismatch,
		},
		"offered class does not match the source": {
			signer: func(f *fixture) barter.Condition { return f.alice },
			msg: func(f *fixture) *InitiateSwapMsg {
				msg := f.initiate()
				msg.OfferedClass = f.statue
				return msg
			},
			wantErr: ErrRecordMismatch,
		},
		"empty source": {
			signer: func(f *fixture) barter.Condition { return f.alice },
			msg: func(f *fixture) *InitiateSwapMsg {
				msg := f.initiate()
				msg.OfferingSource = f.aliceDst
				msg.OfferedClass = f.statue
				return msg
			},
			wantErr: ErrBalancePrecondition,
		},
		"class with more than one unit": {
			signer: func(f *fixture) barter.Condition { return f.alice },
			msg: func(f *fixture) *InitiateSwapMsg {
				msg := f.initiate()
				msg.OfferingSource = f.aliceTok
				msg.OfferedClass = f.tokens
				return msg
			},
			wantErr: ErrBalancePrecondition,
		},
		"unknown class": {
			signer: func(f *fixture) barter.Condition { return f.alice },
			msg: func(f *fixture) *InitiateSwapMsg {
				msg := f.initiate()
				msg.RequestedClass = bartertest.RandomAddr(t)
				return msg
			},
			wantErr: errors.ErrNotFound,
		},
		"unknown source": {
			signer: func(f *fixture) barter.Condition { return f.alice },
			msg: func(f *fixture) *InitiateSwapMsg {
				msg := f.initiate()
				msg.RequestingSource = bartertest.RandomAddr(t)
				return msg
			},
			wantErr: errors.ErrNotFound,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			f := newFixture(t)
			db := store.MemStore()
			f.load(t, db)

			msg := tc.msg(f)
			_, err := f.run(f.ctx(tc.signer(f)), db, msg)
			assert.IsErr(t, tc.wantErr, err)

			id := EscrowID(f.program, msg.OfferingSource, msg.RequestingSource)
			err = NewBucket().Has(db, id)
			if tc.wantErr == nil {
				assert.Nil(t, err)
			} else {
				assert.IsErr(t, errors.ErrNotFound, err)
			}
		})
	}
}

func TestFundHandler(t *testing.T) {
	cases := map[string]struct {
		signers []func(f *fixture) barter.Condition
		msg     func(f *fixture, id barter.Address, e *Escrow) *FundMsg
		wantErr *errors.Error
	}{
		"counterparty cannot fund": {
			signers: signers(bobSigner),
			msg: func(f *fixture, id barter.Address, e *Escrow) *FundMsg {
				return f.fund(id, e, Offering)
			},
			wantErr: ErrAuthorizationMismatch,
		},
		"custody of the other side": {
			signers: signers(aliceSigner),
			msg: func(f *fixture, id barter.Address, e *Escrow) *FundMsg {
				msg := f.fund(id, e, Offering)
				msg.Custody = e.Leg(Requesting).Custody
				return msg
			},
			wantErr: ErrRecordMismatch,
		},
		"source of another class": {
			signers: signers(aliceSigner),
			msg: func(f *fixture, id barter.Address, e *Escrow) *FundMsg {
				msg := f.fund(id, e, Offering)
				msg.Source = f.aliceDst
				return msg
			},
			wantErr: ErrRecordMismatch,
		},
		"source authority did not sign": {
			signers: signers(aliceSigner),
			msg: func(f *fixture, id barter.Address, e *Escrow) *FundMsg {
				msg := f.fund(id, e, Offering)
				msg.Source = f.bobDst
				return msg
			},
			wantErr: ErrAuthorizationMismatch,
		},
		"empty source": {
			signers: signers(aliceSigner, bobSigner),
			msg: func(f *fixture, id barter.Address, e *Escrow) *FundMsg {
				msg := f.fund(id, e, Offering)
				msg.Source = f.bobDst
				return msg
			},
			wantErr: ErrBalancePrecondition,
		},
		"unknown escrow": {
			signers: signers(aliceSigner),
			msg: func(f *fixture, id barter.Address, e *Escrow) *FundMsg {
				msg := f.fund(id, e, Offering)
				msg.EscrowID = bartertest.RandomAddr(t)
				return msg
			},
			wantErr: errors.ErrNotFound,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			f := newFixture(t)
			db := store.MemStore()
			f.load(t, db)
			id, e := f.open(t, db)

			var conds []barter.Condition
			for _, s := range tc.signers {
				conds = append(conds, s(f))
			}
			_, err := f.run(f.ctx(conds...), db, tc.msg(f, id, e))
			assert.IsErr(t, tc.wantErr, err)

			assert.Equal(t, uint64(0), f.balance(t, db, e.Leg(Offering).Custody))
			assert.Equal(t, uint64(1), f.balance(t, db, f.aliceSrc))
		})
	}
}

// TestCustodyHoldsOneUnit pushes assets into a funded custody account
// directly through the ledger. No transfer can raise the custody above one
// unit, so the depositor can always withdraw.
func TestCustodyHoldsOneUnit(t *testing.T) {
	f := newFixture(t)
	db := store.MemStore()
	f.load(t, db)
	id, e := f.open(t, db)
	custody := e.Leg(Offering).Custody

	_, err := f.run(f.ctx(f.alice), db, f.fund(id, e, Offering))
	assert.Nil(t, err)

	cases := map[string]struct {
		signer barter.Condition
		source barter.Address
	}{
		"units of a fungible class": {signer: f.carol, source: f.carolTok},
		"asset of the counterparty": {signer: f.bob, source: f.bobSrc},
		"units of the depositor":    {signer: f.alice, source: f.aliceTok},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.run(f.ctx(tc.signer), db, &ledger.TransferMsg{
				Metadata:    &barter.Metadata{Schema: 1},
				Source:      tc.source,
				Destination: custody,
				Amount:      1,
			})
			assert.IsErr(t, errors.ErrType, err)
			assert.Equal(t, uint64(1), f.balance(t, db, custody))
		})
	}

	// The single painting is already in custody, nobody can add a second.
	_, err = f.run(f.ctx(f.bob), db, &ledger.TransferMsg{
		Metadata:    &barter.Metadata{Schema: 1},
		Source:      f.bobDst,
		Destination: custody,
		Amount:      1,
	})
	assert.IsErr(t, ledger.ErrInsufficientBalance, err)

	_, err = f.run(f.ctx(f.alice), db, defundOffering(f, id, e))
	assert.Nil(t, err)
	assert.Equal(t, uint64(0), f.balance(t, db, custody))
	assert.Equal(t, uint64(1), f.balance(t, db, f.aliceSrc))
}

// TestDeliverIsAtomic runs the handlers on a store without any savepoint
// around them and checks that failing deliveries write nothing.
func TestDeliverIsAtomic(t *testing.T) {
	f := newFixture(t)
	db := store.MemStore()
	f.load(t, db)

	// The requesting custody address is taken, so initiation fails after
	// the offering custody was created.
	msg := f.initiate()
	conf, err := loadConf(db)
	assert.Nil(t, err)
	taken := CustodyAddress(conf.ProgramID, Requesting, msg.OfferingSource, msg.RequestingSource)
	_, err = f.ledger.CreateAccount(db, nil, taken, f.statue, f.carol.Address())
	assert.Nil(t, err)

	_, err = f.router.Deliver(f.ctx(f.alice), db, &bartertest.Tx{Msg: msg})
	assert.IsErr(t, errors.ErrDuplicate, err)
	offering := CustodyAddress(conf.ProgramID, Offering, msg.OfferingSource, msg.RequestingSource)
	exists, err := f.ledger.Exists(db, offering)
	assert.Nil(t, err)
	assert.Equal(t, false, exists)
	assert.IsErr(t, errors.ErrNotFound, NewBucket().Has(db, EscrowID(conf.ProgramID, msg.OfferingSource, msg.RequestingSource)))
}

func TestFinalizeDeliverIsAtomic(t *testing.T) {
	f := newFixture(t)
	db := store.MemStore()
	f.load(t, db)
	id, e := f.open(t, db)
	for _, side := range Sides {
		_, err := f.run(f.ctx(f.party(side)), db, f.fund(id, e, side))
		assert.Nil(t, err)
	}

	flaky := &flakyLedger{Controller: f.ledger, failAt: 2}
	h := FinalizeSwapHandler{bucket: NewBucket(), ledger: flaky, ex: NewExecutor(flaky)}
	_, err := h.Deliver(f.ctx(), db, &bartertest.Tx{Msg: f.finalize(id, e)})
	assert.IsErr(t, errors.ErrDatabase, err)

	got, err := NewBucket().Load(db, id)
	assert.Nil(t, err)
	assert.Equal(t, StatusOpen, got.Status)
	for _, side := range Sides {
		assert.Equal(t, uint64(1), f.balance(t, db, e.Leg(side).Custody))
	}

	// A store without cache wraps is refused before anything is written.
	_, err = h.Deliver(f.ctx(), plainStore{db}, &bartertest.Tx{Msg: f.finalize(id, e)})
	assert.IsErr(t, errors.ErrHuman, err)
	assert.Equal(t, uint64(1), f.balance(t, db, e.Leg(Offering).Custody))
}

// plainStore hides the cache wrap support of the embedded store.
type plainStore struct {
	barter.KVStore
}

func TestFundTwice(t *testing.T) {
	f := newFixture(t)
	db := store.MemStore()
	f.load(t, db)
	id, e := f.open(t, db)

	_, err := f.run(f.ctx(f.alice), db, f.fund(id, e, Offering))
	assert.Nil(t, err)
	_, err = f.run(f.ctx(f.alice), db, f.fund(id, e, Offering))
	assert.IsErr(t, ErrBalancePrecondition, err)
}

func TestDefundHandler(t *testing.T) {
	cases := map[string]struct {
		signer  func(f *fixture) barter.Condition
		msg     func(f *fixture, id barter.Address, e *Escrow) *DefundMsg
		wantErr *errors.Error
	}{
		"party withdraws": {
			signer: aliceSigner,
			msg:    defundOffering,
		},
		"counterparty cannot withdraw": {
			signer:  bobSigner,
			msg:     defundOffering,
			wantErr: ErrAuthorizationMismatch,
		},
		"wrong bump": {
			signer: aliceSigner,
			msg: func(f *fixture, id barter.Address, e *Escrow) *DefundMsg {
				msg := defundOffering(f, id, e)
				msg.Bump = (e.Bump + 1) % (maxBump + 1)
				return msg
			},
			wantErr: ErrAuthorityDerivationMismatch,
		},
		"bump out of range": {
			signer: aliceSigner,
			msg: func(f *fixture, id barter.Address, e *Escrow) *DefundMsg {
				msg := defundOffering(f, id, e)
				msg.Bump = 1000
				return msg
			},
			wantErr: ErrAuthorityDerivationMismatch,
		},
		"destination of the counterparty": {
			signer: aliceSigner,
			msg: func(f *fixture, id barter.Address, e *Escrow) *DefundMsg {
				msg := defundOffering(f, id, e)
				msg.Destination = f.bobDst
				return msg
			},
			wantErr: ErrAuthorizationMismatch,
		},
		"destination of another class": {
			signer: aliceSigner,
			msg: func(f *fixture, id barter.Address, e *Escrow) *DefundMsg {
				msg := defundOffering(f, id, e)
				msg.Destination = f.aliceDst
				return msg
			},
			wantErr: ErrRecordMismatch,
		},
		"unfunded side": {
			signer: bobSigner,
			msg: func(f *fixture, id barter.Address, e *Escrow) *DefundMsg {
				return &DefundMsg{
					Metadata:    &barter.Metadata{Schema: 1},
					EscrowID:    id,
					Side:        Requesting,
					Bump:        e.Bump,
					Custody:     e.Leg(Requesting).Custody,
					Destination: f.bobSrc,
				}
			},
			wantErr: ErrBalancePrecondition,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			f := newFixture(t)
			db := store.MemStore()
			f.load(t, db)
			id, e := f.open(t, db)
			_, err := f.run(f.ctx(f.alice), db, f.fund(id, e, Offering))
			assert.Nil(t, err)

			_, err = f.run(f.ctx(tc.signer(f)), db, tc.msg(f, id, e))
			assert.IsErr(t, tc.wantErr, err)

			want := uint64(1)
			if tc.wantErr == nil {
				want = 0
			}
			assert.Equal(t, want, f.balance(t, db, e.Leg(Offering).Custody))
			assert.Equal(t, 1-want, f.balance(t, db, f.aliceSrc))
		})
	}
}

func TestFinalizeSwapHandler(t *testing.T) {
	cases := map[string]struct {
		msg     func(f *fixture, id barter.Address, e *Escrow) *FinalizeSwapMsg
		wantErr *errors.Error
	}{
		"wrong bump": {
			msg: func(f *fixture, id barter.Address, e *Escrow) *FinalizeSwapMsg {
				msg := f.finalize(id, e)
				msg.Bump = (e.Bump + 1) % (maxBump + 1)
				return msg
			},
			wantErr: ErrAuthorityDerivationMismatch,
		},
		"destinations swapped": {
			msg: func(f *fixture, id barter.Address, e *Escrow) *FinalizeSwapMsg {
				msg := f.finalize(id, e)
				msg.OfferingDestination, msg.RequestingDestination = msg.RequestingDestination, msg.OfferingDestination
				return msg
			},
			wantErr: ErrPreconditionFailed,
		},
		"destination is the original source": {
			msg: func(f *fixture, id barter.Address, e *Escrow) *FinalizeSwapMsg {
				msg := f.finalize(id, e)
				msg.OfferingDestination = f.aliceSrc
				return msg
			},
			wantErr: ErrPreconditionFailed,
		},
		"custody mismatch": {
			msg: func(f *fixture, id barter.Address, e *Escrow) *FinalizeSwapMsg {
				msg := f.finalize(id, e)
				msg.OfferingCustody = msg.RequestingCustody
				return msg
			},
			wantErr: ErrPreconditionFailed,
		},
		"unknown destination": {
			msg: func(f *fixture, id barter.Address, e *Escrow) *FinalizeSwapMsg {
				msg := f.finalize(id, e)
				msg.RequestingDestination = bartertest.RandomAddr(t)
				return msg
			},
			wantErr: ErrPreconditionFailed,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			f := newFixture(t)
			db := store.MemStore()
			f.load(t, db)
			id, e := f.open(t, db)
			for _, side := range Sides {
				_, err := f.run(f.ctx(f.party(side)), db, f.fund(id, e, side))
				assert.Nil(t, err)
			}

			_, err := f.run(f.ctx(), db, tc.msg(f, id, e))
			assert.IsErr(t, tc.wantErr, err)

			for _, side := range Sides {
				assert.Equal(t, uint64(1), f.balance(t, db, e.Leg(side).Custody))
			}
			got, err := NewBucket().Load(db, id)
			assert.Nil(t, err)
			assert.Equal(t, StatusOpen, got.Status)
		})
	}
}

func TestUpdateConfiguration(t *testing.T) {
	f := newFixture(t)
	db := store.MemStore()
	f.load(t, db)
	id, e := f.open(t, db)

	program := bartertest.RandomAddr(t)
	update := &UpdateConfigurationMsg{
		Metadata: &barter.Metadata{Schema: 1},
		Patch:    &Configuration{Metadata: &barter.Metadata{Schema: 1}, ProgramID: program},
	}
	_, err := f.run(f.ctx(f.alice), db, update)
	assert.IsErr(t, errors.ErrUnauthorized, err)

	_, err = f.run(f.ctx(f.owner), db, update)
	assert.Nil(t, err)
	conf, err := loadConf(db)
	assert.Nil(t, err)
	assert.Equal(t, program, conf.ProgramID)
	assert.Equal(t, f.owner.Address(), conf.Owner)

	// Existing escrows keep the program they were derived with.
	_, err = f.run(f.ctx(f.alice), db, f.fund(id, e, Offering))
	assert.Nil(t, err)
	_, err = f.run(f.ctx(f.alice), db, &DefundMsg{
		Metadata:    &barter.Metadata{Schema: 1},
		EscrowID:    id,
		Side:        Offering,
		Bump:        e.Bump,
		Custody:     e.Leg(Offering).Custody,
		Destination: f.aliceSrc,
	})
	assert.Nil(t, err)

	// New escrows use the updated program.
	res, err := f.run(f.ctx(f.alice), db, f.initiate())
	assert.Nil(t, err)
	assert.Equal(t, EscrowID(program, f.aliceSrc, f.bobSrc), barter.Address(res.Data))
}

func TestEscrowsByParty(t *testing.T) {
	f := newFixture(t)
	db := store.MemStore()
	f.load(t, db)
	id, _ := f.open(t, db)

	for _, party := range []barter.Condition{f.alice, f.bob} {
		ids, escrows, err := NewBucket().ByParty(db, party.Address())
		assert.Nil(t, err)
		assert.Equal(t, 1, len(escrows))
		assert.Equal(t, []barter.Address{id}, ids)
	}
	ids, _, err := NewBucket().ByParty(db, f.owner.Address())
	assert.Nil(t, err)
	assert.Equal(t, 0, len(ids))
}

func aliceSigner(f *fixture) barter.Condition { return f.alice }
func bobSigner(f *fixture) barter.Condition   { return f.bob }

func signers(fns ...func(*fixture) barter.Condition) []func(*fixture) barter.Condition {
	return fns
}

func defundOffering(f *fixture, id barter.Address, e *Escrow) *DefundMsg {
	return &DefundMsg{
		Metadata:    &barter.Metadata{Schema: 1},
		EscrowID:    id,
		Side:        Offering,
		Bump:        e.Bump,
		Custody:     e.Leg(Offering).Custody,
		Destination: f.aliceSrc,
	}
}
