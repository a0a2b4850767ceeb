package app

import (
	"reflect"

	"github.com/iov-one/barter"
)

// Decorators is an ordered stack of decorators waiting for the handler
// they wrap. The first decorator runs first.
type Decorators []barter.Decorator

// ChainDecorators starts a stack. Nil entries, including typed nil
// pointers, are skipped so optional decorators can be passed as is:
//
//   app.ChainDecorators(
//     utils.NewLogging(),
//     utils.NewRecovery(),
//     metrics, // may be nil
//     utils.NewSavepoint().OnDeliver(),
//   ).WithHandler(router)
func ChainDecorators(ds ...barter.Decorator) Decorators {
	return Decorators(nil).Chain(ds...)
}

// Chain returns a new stack with ds appended.
func (d Decorators) Chain(ds ...barter.Decorator) Decorators {
	out := make(Decorators, len(d), len(d)+len(ds))
	copy(out, d)
	for _, dec := range ds {
		if !isNilDecorator(dec) {
			out = append(out, dec)
		}
	}
	return out
}

func isNilDecorator(d barter.Decorator) bool {
	if d == nil {
		return true
	}
	v := reflect.ValueOf(d)
	return v.Kind() == reflect.Ptr && v.IsNil()
}

// WithHandler closes the stack around h.
func (d Decorators) WithHandler(h barter.Handler) barter.Handler {
	for i := len(d) - 1; i >= 0; i-- {
		h = wrapped{dec: d[i], next: h}
	}
	return h
}

// wrapped runs one decorator around the rest of the stack.
type wrapped struct {
	dec  barter.Decorator
	next barter.Handler
}

func (w wrapped) Check(ctx barter.Context, db barter.KVStore, tx barter.Tx) (*barter.CheckResult, error) {
	return w.dec.Check(ctx, db, tx, w.next)
}

func (w wrapped) Deliver(ctx barter.Context, db barter.KVStore, tx barter.Tx) (*barter.DeliverResult, error) {
	return w.dec.Deliver(ctx, db, tx, w.next)
}
