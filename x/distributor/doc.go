/*
Package distributor implements threshold gated fund distribution.

A factory lets every account create at most one distributor. A distributor
holds custody of any number of assets for its owner. For each asset the
owner registers a policy: a threshold, a list of receivers and their shares
in basis points. Once the custody balance of an asset reaches the threshold,
the executor configured for the factory may trigger a payout. The executor
is paid a fee that is deducted before the remaining balance is split between
the receivers. Rounding leftovers stay in custody.

The owner can withdraw the full balance of any asset at any time and can
hand the distributor over to another owner.
*/
package distributor
