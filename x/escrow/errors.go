package escrow

import "github.com/iov-one/barter/errors"

// escrow extension reserves error codes 1110-1119
var (
	// ErrAuthorizationMismatch is returned when a party or an account
	// owner is not the one the escrow expects.
	ErrAuthorizationMismatch = errors.Register(1110, "authorization mismatch")

	// ErrBalancePrecondition is returned when an account does not hold
	// the amount required by the operation.
	ErrBalancePrecondition = errors.Register(1111, "balance precondition")

	// ErrRecordMismatch is returned when an account does not match the
	// one stored in the escrow record.
	ErrRecordMismatch = errors.Register(1112, "record mismatch")

	// ErrAuthorityDerivationMismatch is returned when the authority
	// reconstructed from the seeds and bump is not the escrow authority.
	ErrAuthorityDerivationMismatch = errors.Register(1113, "authority derivation mismatch")

	// ErrAlreadyInitiated is returned when an escrow for the same sources
	// already exists under the configured program. The program is part of
	// the escrow id, so after a ProgramID update the same sources can be
	// initiated again as a separate escrow of the new program.
	ErrAlreadyInitiated = errors.Register(1114, "already initiated")

	// ErrPreconditionFailed is returned when the swap cannot be
	// finalized.
	ErrPreconditionFailed = errors.Register(1115, "precondition failed")
)
