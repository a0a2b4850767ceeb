package x

import (
	"github.com/iov-one/barter"
)

// Authenticator extracts the conditions satisfied by the current
// transaction from the context. Handlers receive one in their constructor
// so the signature scheme can be swapped without touching them.
//
// Program derived authorities (see x/escrow) implement this interface as
// well, so that the ledger can treat them like any other signer.
type Authenticator interface {
	// GetConditions returns every condition satisfied in this context.
	GetConditions(barter.Context) []barter.Condition
	// HasAddress returns true if any satisfied condition maps to addr.
	HasAddress(barter.Context, barter.Address) bool
}

// MultiAuth merges the view of several authenticators.
type MultiAuth []Authenticator

var _ Authenticator = MultiAuth(nil)

// ChainAuth returns an authenticator that accepts whatever any of the given
// authenticators accept.
func ChainAuth(impls ...Authenticator) MultiAuth {
	return MultiAuth(impls)
}

// GetConditions concatenates the conditions of all authenticators, in order.
func (m MultiAuth) GetConditions(ctx barter.Context) []barter.Condition {
	var res []barter.Condition
	for _, impl := range m {
		res = append(res, impl.GetConditions(ctx)...)
	}
	return res
}

// HasAddress is true if at least one authenticator knows addr.
func (m MultiAuth) HasAddress(ctx barter.Context, addr barter.Address) bool {
	for _, impl := range m {
		if impl.HasAddress(ctx, addr) {
			return true
		}
	}
	return false
}

// MainSigner returns the first satisfied condition or nil.
func MainSigner(ctx barter.Context, auth Authenticator) barter.Condition {
	if conds := auth.GetConditions(ctx); len(conds) > 0 {
		return conds[0]
	}
	return nil
}

// HasAllAddresses is true when every required address is authenticated.
func HasAllAddresses(ctx barter.Context, auth Authenticator, required ...barter.Address) bool {
	for _, r := range required {
		if !auth.HasAddress(ctx, r) {
			return false
		}
	}
	return true
}
