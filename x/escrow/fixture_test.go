package escrow

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/iov-one/barter"
	"github.com/iov-one/barter/app"
	"github.com/iov-one/barter/bartertest"
	"github.com/iov-one/barter/bartertest/assert"
	"github.com/iov-one/barter/x/ledger"
)

// fixture is a ledger where alice holds a painting and bob holds a statue.
// Both have an empty account for the asset they expect in exchange. Alice
// and carol also hold one unit each of tokens, a class with a supply of 2.
type fixture struct {
	alice, bob, carol, owner barter.Condition

	program          barter.Address
	painting, statue barter.Address
	tokens           barter.Address

	aliceSrc, bobSrc   barter.Address
	aliceDst, bobDst   barter.Address
	aliceTok, carolTok barter.Address

	auth   *bartertest.CtxAuth
	ledger ledger.BaseController
	router *app.Router
}

func newFixture(t testing.TB) *fixture {
	t.Helper()
	f := &fixture{
		alice:    bartertest.NewCondition(),
		bob:      bartertest.NewCondition(),
		carol:    bartertest.NewCondition(),
		owner:    bartertest.NewCondition(),
		program:  bartertest.RandomAddr(t),
		painting: bartertest.RandomAddr(t),
		statue:   bartertest.RandomAddr(t),
		tokens:   bartertest.RandomAddr(t),
		auth:     &bartertest.CtxAuth{Key: "auth"},
		ledger:   ledger.NewController(),
	}
	f.aliceSrc = ledger.AccountAddress(f.painting, f.alice.Address(), nil)
	f.bobSrc = ledger.AccountAddress(f.statue, f.bob.Address(), nil)
	f.aliceDst = ledger.AccountAddress(f.statue, f.alice.Address(), nil)
	f.bobDst = ledger.AccountAddress(f.painting, f.bob.Address(), nil)
	f.aliceTok = ledger.AccountAddress(f.tokens, f.alice.Address(), nil)
	f.carolTok = ledger.AccountAddress(f.tokens, f.carol.Address(), nil)

	f.router = app.NewRouter()
	ledger.RegisterRoutes(f.router, f.auth, f.ledger)
	RegisterRoutes(f.router, f.auth, f.ledger)
	return f
}

// genesis returns the application state loading the fixture ledger and the
// escrow configuration.
func (f *fixture) genesis(t testing.TB) []byte {
	t.Helper()
	account := func(addr, class barter.Address, owner barter.Condition, amount uint64) map[string]interface{} {
		return map[string]interface{}{
			"address":   addr,
			"class":     class,
			"authority": owner.Address(),
			"amount":    amount,
		}
	}
	raw, err := json.Marshal(map[string]interface{}{
		"ledger": map[string]interface{}{
			"classes": []interface{}{
				map[string]interface{}{"id": f.painting, "name": "painting", "supply": 1},
				map[string]interface{}{"id": f.statue, "name": "statue", "supply": 1},
				map[string]interface{}{"id": f.tokens, "name": "tokens", "supply": 2},
			},
			"accounts": []interface{}{
				account(f.aliceSrc, f.painting, f.alice, 1),
				account(f.bobSrc, f.statue, f.bob, 1),
				account(f.aliceDst, f.statue, f.alice, 0),
				account(f.bobDst, f.painting, f.bob, 0),
				account(f.aliceTok, f.tokens, f.alice, 1),
				account(f.carolTok, f.tokens, f.carol, 1),
			},
		},
		"conf": map[string]interface{}{
			"escrow": map[string]interface{}{
				"metadata":   map[string]interface{}{"schema": 1},
				"program_id": f.program,
				"owner":      f.owner.Address(),
			},
		},
	})
	assert.Nil(t, err)
	return raw
}

// load writes the genesis state into given store.
func (f *fixture) load(t testing.TB, db barter.KVStore) {
	t.Helper()
	var opts barter.Options
	assert.Nil(t, json.Unmarshal(f.genesis(t), &opts))
	init := barter.ChainInitializers(&ledger.Initializer{}, &Initializer{})
	assert.Nil(t, init.FromGenesis(opts, db))
}

func (f *fixture) ctx(signers ...barter.Condition) barter.Context {
	return f.auth.SetConditions(context.Background(), signers...)
}

// run checks the message on a discarded cache and delivers it when the
// check passes.
func (f *fixture) run(ctx barter.Context, db barter.CacheableKVStore, msg barter.Msg) (*barter.DeliverResult, error) {
	tx := &bartertest.Tx{Msg: msg}
	cache := db.CacheWrap()
	_, err := f.router.Check(ctx, cache, tx)
	cache.Discard()
	if err != nil {
		return nil, err
	}
	return f.router.Deliver(ctx, db, tx)
}

func (f *fixture) initiate() *InitiateSwapMsg {
	return &InitiateSwapMsg{
		Metadata:         &barter.Metadata{Schema: 1},
		OfferingParty:    f.alice.Address(),
		RequestingParty:  f.bob.Address(),
		OfferedClass:     f.painting,
		RequestedClass:   f.statue,
		OfferingSource:   f.aliceSrc,
		RequestingSource: f.bobSrc,
	}
}

// open initiates the fixture swap and returns its id and record.
func (f *fixture) open(t testing.TB, db barter.CacheableKVStore) (barter.Address, *Escrow) {
	t.Helper()
	res, err := f.run(f.ctx(f.alice), db, f.initiate())
	assert.Nil(t, err)
	id := barter.Address(res.Data)
	e, err := NewBucket().Load(db, id)
	assert.Nil(t, err)
	return id, e
}

func (f *fixture) fund(id barter.Address, e *Escrow, side Side) *FundMsg {
	src := f.aliceSrc
	if side == Requesting {
		src = f.bobSrc
	}
	return &FundMsg{
		Metadata: &barter.Metadata{Schema: 1},
		EscrowID: id,
		Side:     side,
		Source:   src,
		Custody:  e.Leg(side).Custody,
	}
}

func (f *fixture) party(side Side) barter.Condition {
	if side == Offering {
		return f.alice
	}
	return f.bob
}

func (f *fixture) finalize(id barter.Address, e *Escrow) *FinalizeSwapMsg {
	return &FinalizeSwapMsg{
		Metadata:              &barter.Metadata{Schema: 1},
		EscrowID:              id,
		Bump:                  e.Bump,
		OfferingCustody:       e.Leg(Offering).Custody,
		RequestingCustody:     e.Leg(Requesting).Custody,
		OfferingDestination:   f.bobDst,
		RequestingDestination: f.aliceDst,
	}
}

func (f *fixture) balance(t testing.TB, db barter.ReadOnlyKVStore, addr barter.Address) uint64 {
	t.Helper()
	bal, err := f.ledger.Balance(db, addr)
	assert.Nil(t, err)
	return bal
}
