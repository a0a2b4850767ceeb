package bartertest

import "github.com/iov-one/barter"

// calls counts how often a mock was used, split by phase.
type calls struct {
	check, deliver int
}

func (c *calls) CheckCallCount() int   { return c.check }
func (c *calls) DeliverCallCount() int { return c.deliver }
func (c *calls) CallCount() int        { return c.check + c.deliver }

// Handler returns the preconfigured results and counts every call.
type Handler struct {
	calls

	CheckResult barter.CheckResult
	CheckErr    error

	DeliverResult barter.DeliverResult
	DeliverErr    error
}

var _ barter.Handler = (*Handler)(nil)

func (h *Handler) Check(barter.Context, barter.KVStore, barter.Tx) (*barter.CheckResult, error) {
	h.check++
	return &h.CheckResult, h.CheckErr
}

func (h *Handler) Deliver(barter.Context, barter.KVStore, barter.Tx) (*barter.DeliverResult, error) {
	h.deliver++
	return &h.DeliverResult, h.DeliverErr
}

// Decorator passes calls through to the next handler unless the matching
// error is set, in which case the chain is cut short. Calls are counted
// either way.
type Decorator struct {
	calls

	CheckErr   error
	DeliverErr error
}

var _ barter.Decorator = (*Decorator)(nil)

func (d *Decorator) Check(ctx barter.Context, db barter.KVStore, tx barter.Tx, next barter.Checker) (*barter.CheckResult, error) {
	d.check++
	if d.CheckErr != nil {
		return nil, d.CheckErr
	}
	return next.Check(ctx, db, tx)
}

func (d *Decorator) Deliver(ctx barter.Context, db barter.KVStore, tx barter.Tx, next barter.Deliverer) (*barter.DeliverResult, error) {
	d.deliver++
	if d.DeliverErr != nil {
		return nil, d.DeliverErr
	}
	return next.Deliver(ctx, db, tx)
}
