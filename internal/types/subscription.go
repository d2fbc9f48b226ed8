package types

import ierr "github.com/lumenbill/lumenbill/internal/errors"

// FeatureType distinguishes boolean toggle features from metered
// usage-credit-grant features. Only the latter interact with the ledger.
type FeatureType string

const (
	FeatureTypeToggle           FeatureType = "toggle"
	FeatureTypeUsageCreditGrant FeatureType = "usage_credit_grant"
)

// RenewalFrequency controls whether an entitlement grant recurs.
type RenewalFrequency string

const (
	RenewalFrequencyOnce               RenewalFrequency = "once"
	RenewalFrequencyEveryBillingPeriod RenewalFrequency = "every_billing_period"
)

func (f RenewalFrequency) Validate() error {
	switch f {
	case RenewalFrequencyOnce, RenewalFrequencyEveryBillingPeriod:
		return nil
	default:
		return ierr.NewErrorf("invalid renewal frequency: %s", f).
			WithHint("Renewal frequency must be once or every_billing_period").
			Mark(ierr.ErrValidation)
	}
}
