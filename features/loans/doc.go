// Package loans implements the loan lifecycle: requesting a material for a reader,
// approving, cancelling and returning loans, and the overdue check.
//
// Every operation runs in one store transaction. Decisions are pure functions over the
// state read inside that transaction (see DecideRequest), and the whole read-decide-write
// cycle is retried when the store reports a concurrency conflict.
package loans
