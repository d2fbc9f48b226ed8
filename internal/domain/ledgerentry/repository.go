package ledgerentry

import "context"

// Repository defines persistence operations for ledger entries. The only
// mutation after insert is Discard; there is deliberately no update-amount
// operation, even internally.
type Repository interface {
	// CreateBulk inserts entries in one statement inside the caller's
	// transaction and returns them in input order.
	CreateBulk(ctx context.Context, entries []*LedgerEntry) ([]*LedgerEntry, error)

	// Get retrieves a ledger entry by ID.
	Get(ctx context.Context, id string) (*LedgerEntry, error)

	// ListByAccount returns all entries for a ledger account, oldest first.
	ListByAccount(ctx context.Context, ledgerAccountID string) ([]*LedgerEntry, error)

	// Discard soft-voids a posted entry: sets discarded_at and moves the
	// status to discarded. The row remains for audit.
	Discard(ctx context.Context, id string) error

	// AggregateBalance computes posted credits minus posted debits for an
	// account, ignoring pending and discarded entries.
	AggregateBalance(ctx context.Context, ledgerAccountID string) (int64, error)

	// BalanceBySourceCredit computes the remaining balance of each given
	// usage credit: recognized amount minus posted debits referencing it.
	BalanceBySourceCredit(ctx context.Context, sourceUsageCreditIDs []string) (map[string]int64, error)
}
