/*
Package errors implements the error handling used across tokendist.

Reuse the root errors declared in this package whenever possible and declare
custom extension errors only when a client must be able to tell the failure
apart (for example, a keeper retrying only "not yet eligible" executions).
Register a custom error with Register(code, description). Codes below 100
are reserved for this package.

Create errors at the point of failure with ErrXyz.New("...") or
errors.Wrap(err, "...") so that a stack trace is attached. Only the innermost
wrap records the trace.

Once you have an error, fmt verbs give more context

	%s is just the error message
	%+v is the full stack trace
	%v appends a compressed [filename:line] where the error was created
*/
package errors
