package ledger

import "github.com/iov-one/barter/errors"

// ledger extension reserves error codes 1100-1109
var (
	// ErrInsufficientBalance is returned when an account does not hold
	// enough units to cover a transfer.
	ErrInsufficientBalance = errors.Register(1100, "insufficient balance")

	// ErrSupply is returned when minting would exceed the class supply.
	ErrSupply = errors.Register(1101, "supply exceeded")
)
