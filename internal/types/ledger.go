package types

import ierr "github.com/lumenbill/lumenbill/internal/errors"

// LedgerEntryDirection is the side of the account an entry moves.
type LedgerEntryDirection string

const (
	LedgerEntryDirectionCredit LedgerEntryDirection = "credit"
	LedgerEntryDirectionDebit  LedgerEntryDirection = "debit"
)

func (d LedgerEntryDirection) Validate() error {
	switch d {
	case LedgerEntryDirectionCredit, LedgerEntryDirectionDebit:
		return nil
	default:
		return ierr.NewErrorf("invalid ledger entry direction: %s", d).
			WithHint("Direction must be either credit or debit").
			Mark(ierr.ErrValidation)
	}
}

// LedgerEntryStatus tracks whether an entry counts towards the posted balance.
// Discarded is a soft void: the row stays for audit, the balance ignores it.
type LedgerEntryStatus string

const (
	LedgerEntryStatusPosted    LedgerEntryStatus = "posted"
	LedgerEntryStatusPending   LedgerEntryStatus = "pending"
	LedgerEntryStatusDiscarded LedgerEntryStatus = "discarded"
)

// LedgerEntryType identifies the economic event behind an entry.
type LedgerEntryType string

const (
	LedgerEntryTypeCreditGrantRecognized LedgerEntryType = "credit_grant_recognized"
	LedgerEntryTypeCreditGrantExpired    LedgerEntryType = "credit_grant_expired"
	LedgerEntryTypeUsageCost             LedgerEntryType = "usage_cost"
	LedgerEntryTypePaymentRecognized     LedgerEntryType = "payment_recognized"
)

// LedgerTransactionSourceType records what kind of command initiated a
// ledger transaction.
type LedgerTransactionSourceType string

const (
	LedgerTransactionSourceTypeBillingPeriodTransition LedgerTransactionSourceType = "billing_period_transition"
	LedgerTransactionSourceTypeUsageEvent              LedgerTransactionSourceType = "usage_event"
	LedgerTransactionSourceTypeAdminAdjustment         LedgerTransactionSourceType = "admin_adjustment"
)
