package gorm

import (
	"context"
	"errors"
	"time"

	gormdb "gorm.io/gorm"

	domainCustomer "github.com/lumenbill/lumenbill/internal/domain/customer"
	ierr "github.com/lumenbill/lumenbill/internal/errors"
	"github.com/lumenbill/lumenbill/internal/logger"
	"github.com/lumenbill/lumenbill/internal/postgres"
	"github.com/lumenbill/lumenbill/internal/types"
)

type customerRepository struct {
	client postgres.IClient
	logger *logger.Logger
}

// NewCustomerRepository creates a new customer repository
func NewCustomerRepository(client postgres.IClient, logger *logger.Logger) domainCustomer.Repository {
	return &customerRepository{
		client: client,
		logger: logger,
	}
}

func (r *customerRepository) Create(ctx context.Context, customer *domainCustomer.Customer) error {
	if err := customer.Validate(); err != nil {
		return err
	}
	r.logger.Debugw("creating customer", "email", customer.Email)

	if err := r.client.Querier(ctx).Create(customer).Error; err != nil {
		if postgres.IsUniqueViolation(err) {
			return ierr.WithError(err).
				WithHint("A customer with this external ID already exists").
				WithReportableDetails(map[string]interface{}{
					"external_id": customer.ExternalID,
				}).
				Mark(ierr.ErrAlreadyExists)
		}
		return ierr.WithError(err).
			WithHint("Failed to create customer").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *customerRepository) Get(ctx context.Context, id string) (*domainCustomer.Customer, error) {
	var customer domainCustomer.Customer
	err := r.client.Querier(ctx).
		Where("id = ? AND tenant_id = ?", id, types.GetTenantID(ctx)).
		First(&customer).Error
	if err != nil {
		if errors.Is(err, gormdb.ErrRecordNotFound) {
			return nil, ierr.NewErrorf("customer not found: %s", id).
				WithHint("The customer does not exist").
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get customer").
			Mark(ierr.ErrDatabase)
	}
	return &customer, nil
}

func (r *customerRepository) Update(ctx context.Context, customer *domainCustomer.Customer) error {
	customer.UpdatedAt = time.Now().UTC()
	customer.UpdatedBy = types.GetUserID(ctx)

	res := r.client.Querier(ctx).
		Where("id = ? AND tenant_id = ?", customer.ID, types.GetTenantID(ctx)).
		Save(customer)
	if res.Error != nil {
		return ierr.WithError(res.Error).
			WithHint("Failed to update customer").
			WithReportableDetails(map[string]interface{}{"id": customer.ID}).
			Mark(ierr.ErrDatabase)
	}
	return nil
}
