// Package lending provides the core types of a lending library's loan engine.
//
// It defines the tagged variants for people (readers, librarians) and materials
// (books, special items), the Loan record with its state machine, the calendar Date
// used for all loan dates, the error taxonomy shared by all components, and the
// store contract that persistence engines implement.
//
// Key types:
//   - Person: a reader or a librarian, discriminated by PersonKind
//   - Material: a book or a special item, discriminated by MaterialKind
//   - Loan: reader + librarian + material with a LoanState
//   - Store / Tx: scoped transactions with commit-or-rollback on every exit path
//
// Loan state machine:
//
//	PENDING -> IN_PROGRESS -> RETURNED
//	PENDING -> CANCELLED
//
// Common usage pattern:
//
//	err := store.Transact(ctx, func(ctx context.Context, tx lending.Tx) error {
//		loan, err := tx.GetLoan(ctx, loanID)
//		if err != nil {
//			return err
//		}
//
//		next, err := loan.TransitionTo(lending.LoanInProgress)
//		if err != nil {
//			return err
//		}
//
//		return tx.UpdateLoanState(ctx, loan.ID, loan.State, next.State)
//	})
package lending
