/*
Package utils contains the decorators every transaction passes through before
it reaches a message handler: panic recovery, logging, event tagging and the
savepoint that makes a transaction all-or-nothing.
*/
package utils
