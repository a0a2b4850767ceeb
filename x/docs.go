/*
Package x contains the extensions of the barter application.

Extensions implement common functionality (Handler, Decorator,
etc.) and are combined together in the app package. The x package
itself holds what is shared between extensions, mostly the
authentication interfaces.

Follow standard go naming conventions and avoid stutter. Use eg.
`escrow.FundMsg` in place of `escrow.EscrowFundMsg`.
*/
package x
