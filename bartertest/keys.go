package bartertest

import (
	"github.com/iov-one/barter"
	"github.com/iov-one/barter/crypto"
)

// NewKey returns a freshly generated signing key.
func NewKey() *crypto.PrivateKey {
	return crypto.GenPrivKeyEd25519()
}

// NewCondition returns a condition of a freshly generated key.
func NewCondition() barter.Condition {
	return NewKey().PublicKey().Condition()
}
