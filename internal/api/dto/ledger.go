package dto

// LedgerAccountBalanceResponse is the available balance of one ledger
// account: posted credits minus posted debits, discarded entries excluded.
type LedgerAccountBalanceResponse struct {
	LedgerAccountID string `json:"ledger_account_id"`
	SubscriptionID  string `json:"subscription_id"`
	UsageMeterID    string `json:"usage_meter_id"`
	Balance         int64  `json:"balance"`
}
