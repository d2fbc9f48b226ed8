package types

import (
	"time"

	ierr "github.com/lumenbill/lumenbill/internal/errors"
)

// BillingPeriodStatus is the lifecycle state of a billing period.
type BillingPeriodStatus string

const (
	BillingPeriodStatusActive    BillingPeriodStatus = "active"
	BillingPeriodStatusCompleted BillingPeriodStatus = "completed"
	BillingPeriodStatusUpcoming  BillingPeriodStatus = "upcoming"
)

// BillingPeriodTransitionType discriminates the two transition variants.
// A credit trial has no billing periods at all; a standard transition closes
// one period (possibly none, on the first renewal) and opens the next.
type BillingPeriodTransitionType string

const (
	BillingPeriodTransitionTypeStandard    BillingPeriodTransitionType = "standard"
	BillingPeriodTransitionTypeCreditTrial BillingPeriodTransitionType = "credit_trial"
)

// BillingPeriodRef is the slice of a billing period the transition payload
// needs: identity plus boundary dates.
type BillingPeriodRef struct {
	ID        string    `json:"id"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
}

// BillingPeriodTransitionPayload is a tagged union over Type. Billing period
// fields are only meaningful for the standard variant; Validate enforces the
// variant shape so downstream code can switch on Type without nil checks
// beyond the optional previous period.
type BillingPeriodTransitionPayload struct {
	Type BillingPeriodTransitionType `json:"type"`

	// Standard variant only. PreviousBillingPeriod is nil on the very first
	// standard transition of a subscription.
	PreviousBillingPeriod *BillingPeriodRef `json:"previous_billing_period,omitempty"`
	NewBillingPeriod      *BillingPeriodRef `json:"new_billing_period,omitempty"`
}

func (p BillingPeriodTransitionPayload) Validate() error {
	switch p.Type {
	case BillingPeriodTransitionTypeStandard:
		if p.NewBillingPeriod == nil {
			return ierr.NewError("standard transition requires a new billing period").
				WithHint("Provide new_billing_period with id, start_date and end_date").
				Mark(ierr.ErrValidation)
		}
		if p.NewBillingPeriod.EndDate.Before(p.NewBillingPeriod.StartDate) {
			return ierr.NewError("new billing period ends before it starts").
				WithReportableDetails(map[string]interface{}{
					"start_date": p.NewBillingPeriod.StartDate,
					"end_date":   p.NewBillingPeriod.EndDate,
				}).
				Mark(ierr.ErrValidation)
		}
		return nil
	case BillingPeriodTransitionTypeCreditTrial:
		if p.PreviousBillingPeriod != nil || p.NewBillingPeriod != nil {
			return ierr.NewError("credit trial transition must not carry billing periods").
				WithHint("Credit trials have no billing periods; omit both period fields").
				Mark(ierr.ErrValidation)
		}
		return nil
	default:
		return ierr.NewErrorf("invalid billing period transition type: %s", p.Type).
			WithHint("Type must be standard or credit_trial").
			Mark(ierr.ErrValidation)
	}
}

// IsInitialGrant reports whether this transition is the trial/first-period
// case: a credit trial, or a standard transition with no previous period.
// Initial grants issue every metered entitlement, including one-time ones.
func (p BillingPeriodTransitionPayload) IsInitialGrant() bool {
	switch p.Type {
	case BillingPeriodTransitionTypeCreditTrial:
		return true
	case BillingPeriodTransitionTypeStandard:
		return p.PreviousBillingPeriod == nil
	default:
		return false
	}
}

// NewBillingPeriodID returns the id of the opening period for standard
// transitions, nil for credit trials.
func (p BillingPeriodTransitionPayload) NewBillingPeriodID() *string {
	if p.Type == BillingPeriodTransitionTypeStandard && p.NewBillingPeriod != nil {
		return &p.NewBillingPeriod.ID
	}
	return nil
}
