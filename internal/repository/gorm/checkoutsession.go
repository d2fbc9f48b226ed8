package gorm

import (
	"context"
	"errors"
	"time"

	gormdb "gorm.io/gorm"

	domainCheckoutSession "github.com/lumenbill/lumenbill/internal/domain/checkoutsession"
	ierr "github.com/lumenbill/lumenbill/internal/errors"
	"github.com/lumenbill/lumenbill/internal/logger"
	"github.com/lumenbill/lumenbill/internal/postgres"
	"github.com/lumenbill/lumenbill/internal/types"
)

type checkoutSessionRepository struct {
	client postgres.IClient
	logger *logger.Logger
}

// NewCheckoutSessionRepository creates a new checkout session repository
func NewCheckoutSessionRepository(client postgres.IClient, logger *logger.Logger) domainCheckoutSession.Repository {
	return &checkoutSessionRepository{
		client: client,
		logger: logger,
	}
}

func (r *checkoutSessionRepository) Get(ctx context.Context, id string) (*domainCheckoutSession.CheckoutSession, error) {
	var session domainCheckoutSession.CheckoutSession
	err := r.client.Querier(ctx).
		Where("id = ? AND tenant_id = ?", id, types.GetTenantID(ctx)).
		First(&session).Error
	if err != nil {
		if errors.Is(err, gormdb.ErrRecordNotFound) {
			return nil, ierr.NewErrorf("checkout session not found: %s", id).
				WithHint("The checkout session does not exist").
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get checkout session").
			Mark(ierr.ErrDatabase)
	}
	return &session, nil
}

func (r *checkoutSessionRepository) Update(ctx context.Context, session *domainCheckoutSession.CheckoutSession) error {
	session.UpdatedAt = time.Now().UTC()
	session.UpdatedBy = types.GetUserID(ctx)

	res := r.client.Querier(ctx).
		Where("id = ? AND tenant_id = ?", session.ID, types.GetTenantID(ctx)).
		Save(session)
	if res.Error != nil {
		return ierr.WithError(res.Error).
			WithHint("Failed to update checkout session").
			WithReportableDetails(map[string]interface{}{"id": session.ID}).
			Mark(ierr.ErrDatabase)
	}
	return nil
}
