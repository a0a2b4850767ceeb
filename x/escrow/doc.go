/*
Package escrow implements a two party atomic swap of unique assets.

Two parties agree to exchange one unit of one asset class each. The swap is
initiated by the offering party. Initiation stores an escrow record and
creates one custody account per side. Custody accounts are controlled by an
authority that is derived from the record and is not held by anyone. Only
this package can act on its behalf, by reconstructing it from the record
seeds and a bump.

Each party funds its own custody account and can withdraw (defund) its own
deposit any time before the swap completes. Once both custody accounts are
funded, anyone can finalize the swap. Finalization releases both deposits to
the counterparties in a single atomic step or does nothing at all.

	initiate -> fund -> [defund -> fund] -> finalize
*/
package escrow
