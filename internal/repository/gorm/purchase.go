package gorm

import (
	"context"
	"errors"

	gormdb "gorm.io/gorm"

	domainPurchase "github.com/lumenbill/lumenbill/internal/domain/purchase"
	ierr "github.com/lumenbill/lumenbill/internal/errors"
	"github.com/lumenbill/lumenbill/internal/logger"
	"github.com/lumenbill/lumenbill/internal/postgres"
	"github.com/lumenbill/lumenbill/internal/types"
)

type purchaseRepository struct {
	client postgres.IClient
	logger *logger.Logger
}

// NewPurchaseRepository creates a new purchase repository
func NewPurchaseRepository(client postgres.IClient, logger *logger.Logger) domainPurchase.Repository {
	return &purchaseRepository{
		client: client,
		logger: logger,
	}
}

func (r *purchaseRepository) Get(ctx context.Context, id string) (*domainPurchase.Purchase, error) {
	var p domainPurchase.Purchase
	err := r.client.Querier(ctx).
		Where("id = ? AND tenant_id = ?", id, types.GetTenantID(ctx)).
		First(&p).Error
	if err != nil {
		if errors.Is(err, gormdb.ErrRecordNotFound) {
			return nil, ierr.NewErrorf("purchase not found: %s", id).
				WithHint("The purchase does not exist").
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get purchase").
			Mark(ierr.ErrDatabase)
	}
	return &p, nil
}
