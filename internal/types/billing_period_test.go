package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func standardRef(id string) *BillingPeriodRef {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	return &BillingPeriodRef{ID: id, StartDate: start, EndDate: start.AddDate(0, 1, 0)}
}

func TestBillingPeriodTransitionPayloadValidate(t *testing.T) {
	tests := []struct {
		name    string
		payload BillingPeriodTransitionPayload
		wantErr bool
	}{
		{
			name: "standard with new period",
			payload: BillingPeriodTransitionPayload{
				Type:             BillingPeriodTransitionTypeStandard,
				NewBillingPeriod: standardRef("bp_1"),
			},
		},
		{
			name: "standard with previous and new period",
			payload: BillingPeriodTransitionPayload{
				Type:                  BillingPeriodTransitionTypeStandard,
				PreviousBillingPeriod: standardRef("bp_0"),
				NewBillingPeriod:      standardRef("bp_1"),
			},
		},
		{
			name:    "standard without new period",
			payload: BillingPeriodTransitionPayload{Type: BillingPeriodTransitionTypeStandard},
			wantErr: true,
		},
		{
			name: "standard with inverted dates",
			payload: BillingPeriodTransitionPayload{
				Type: BillingPeriodTransitionTypeStandard,
				NewBillingPeriod: &BillingPeriodRef{
					ID:        "bp_1",
					StartDate: time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
					EndDate:   time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
				},
			},
			wantErr: true,
		},
		{
			name:    "credit trial without periods",
			payload: BillingPeriodTransitionPayload{Type: BillingPeriodTransitionTypeCreditTrial},
		},
		{
			name: "credit trial with a period",
			payload: BillingPeriodTransitionPayload{
				Type:             BillingPeriodTransitionTypeCreditTrial,
				NewBillingPeriod: standardRef("bp_1"),
			},
			wantErr: true,
		},
		{
			name:    "unknown type",
			payload: BillingPeriodTransitionPayload{Type: "grace_period"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.payload.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestBillingPeriodTransitionPayloadIsInitialGrant(t *testing.T) {
	creditTrial := BillingPeriodTransitionPayload{Type: BillingPeriodTransitionTypeCreditTrial}
	assert.True(t, creditTrial.IsInitialGrant())

	firstStandard := BillingPeriodTransitionPayload{
		Type:             BillingPeriodTransitionTypeStandard,
		NewBillingPeriod: standardRef("bp_1"),
	}
	assert.True(t, firstStandard.IsInitialGrant())

	renewal := BillingPeriodTransitionPayload{
		Type:                  BillingPeriodTransitionTypeStandard,
		PreviousBillingPeriod: standardRef("bp_0"),
		NewBillingPeriod:      standardRef("bp_1"),
	}
	assert.False(t, renewal.IsInitialGrant())
}

func TestBillingPeriodTransitionPayloadNewBillingPeriodID(t *testing.T) {
	standard := BillingPeriodTransitionPayload{
		Type:             BillingPeriodTransitionTypeStandard,
		NewBillingPeriod: standardRef("bp_1"),
	}
	id := standard.NewBillingPeriodID()
	if assert.NotNil(t, id) {
		assert.Equal(t, "bp_1", *id)
	}

	trial := BillingPeriodTransitionPayload{Type: BillingPeriodTransitionTypeCreditTrial}
	assert.Nil(t, trial.NewBillingPeriodID())
}
