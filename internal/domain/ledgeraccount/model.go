package ledgeraccount

import (
	ierr "github.com/lumenbill/lumenbill/internal/errors"
	"github.com/lumenbill/lumenbill/internal/types"
)

// LedgerAccount is the balance scope for one (subscription, usage meter)
// pair. Accounts are created lazily on the first grant or usage event and
// never deleted. The unique index on (subscription_id, usage_meter_id) is
// what makes concurrent find-or-create race-safe.
type LedgerAccount struct {
	ID             string `json:"id" gorm:"column:id;primaryKey"`
	SubscriptionID string `json:"subscription_id" gorm:"column:subscription_id;uniqueIndex:idx_ledger_account_sub_meter"`
	UsageMeterID   string `json:"usage_meter_id" gorm:"column:usage_meter_id;uniqueIndex:idx_ledger_account_sub_meter"`
	EnvironmentID  string `json:"environment_id" gorm:"column:environment_id;index"`
	types.BaseModel
}

func (LedgerAccount) TableName() string {
	return "ledger_accounts"
}

// Validate checks the account's referential fields.
func (a *LedgerAccount) Validate() error {
	if a.SubscriptionID == "" {
		return ierr.NewError("subscription_id is required").Mark(ierr.ErrValidation)
	}
	if a.UsageMeterID == "" {
		return ierr.NewError("usage_meter_id is required").Mark(ierr.ErrValidation)
	}
	return nil
}
