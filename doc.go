/*
Package tokendist holds the interfaces shared by the packages of the
distributor ledger and the small types all of them use, like Address and
Condition.

Request scoped values travel in a context.Context from the app through the
decorators to the handlers. Every value T stored there gets a pair of
functions:

	WithXYZ(Context, T) Context
	GetXYZ(Context) (val T, ok bool)

WithXYZ panics when a value that must be set once, like the height or the
chain ID, is set again.
*/
package tokendist
