package bartertest

import (
	"context"
	"fmt"

	"github.com/iov-one/barter"
)

// Auth authenticates a fixed set of conditions, regardless of the context.
// Signer is a shortcut for the common single signer case and is reported
// after all Signers.
type Auth struct {
	Signer  barter.Condition
	Signers []barter.Condition
}

func (a *Auth) GetConditions(barter.Context) []barter.Condition {
	if a.Signer == nil {
		return a.Signers
	}
	conds := make([]barter.Condition, 0, len(a.Signers)+1)
	conds = append(conds, a.Signers...)
	return append(conds, a.Signer)
}

func (a *Auth) HasAddress(ctx barter.Context, addr barter.Address) bool {
	return anyMatches(a.GetConditions(ctx), addr)
}

// CtxAuth keeps the authenticated conditions in the context, under Key.
// Two CtxAuth with different keys never see each other's conditions.
type CtxAuth struct {
	Key string
}

// SetConditions returns a child context authenticating the given conditions.
func (a *CtxAuth) SetConditions(ctx barter.Context, conds ...barter.Condition) barter.Context {
	return context.WithValue(ctx, a.Key, conds)
}

func (a *CtxAuth) GetConditions(ctx barter.Context) []barter.Condition {
	switch val := ctx.Value(a.Key).(type) {
	case nil:
		return nil
	case []barter.Condition:
		return val
	default:
		panic(fmt.Sprintf("context key %q holds %T", a.Key, val))
	}
}

func (a *CtxAuth) HasAddress(ctx barter.Context, addr barter.Address) bool {
	return anyMatches(a.GetConditions(ctx), addr)
}

func anyMatches(conds []barter.Condition, addr barter.Address) bool {
	for _, c := range conds {
		if addr.Equals(c.Address()) {
			return true
		}
	}
	return false
}
