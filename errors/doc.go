/*
Package errors implements the error handling of the barter application.

Reuse as many errors from this package as possible and define custom package
errors only when absolutely necessary. If you want to register a custom
error, use Register(code, description). Code stands for ABCI error code,
which allows to distinguish types of errors on the client side and act
accordingly.

Always create a new error instance with errors.Wrap(ErrXyz, "...") or
ErrXyz.New("...") at the point of failure, so that a stacktrace is attached.
If you wrap multiple times, only the first wrap records the stacktrace.

Once you have an error, use ErrXyz.Is(err) to test its kind. Errors that
describe a single field of a model or message should be created with Field
and combined with Append or AppendField.

	%s is just the error message
	%+v is the full stack trace
*/
package errors
