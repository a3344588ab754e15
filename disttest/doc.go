// Package disttest provides helpers for testing handlers, decorators and
// applications: mock authentication, transactions, handlers and
// deterministic conditions.
package disttest
