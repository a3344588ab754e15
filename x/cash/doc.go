/*
Package cash keeps custody balances. Every holder address owns an amount of
any number of assets, stored as one record per (holder, asset) pair.

Anyone may send coins to any address, which is how distributors are funded.
Other extensions move coins through the Controller.
*/
package cash
