package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/lumenbill/lumenbill/internal/config"
	ierr "github.com/lumenbill/lumenbill/internal/errors"
	"github.com/lumenbill/lumenbill/internal/logger"
)

type contextKey string

const txContextKey contextKey = "postgres_tx"

// IClient is the database access interface used by all repositories.
// Querier returns the transaction bound to the context when one is active,
// so repository code is identical inside and outside transactions.
type IClient interface {
	Querier(ctx context.Context) *gorm.DB
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Client wraps a gorm DB handle.
type Client struct {
	db     *gorm.DB
	logger *logger.Logger
}

// NewClient opens a postgres connection pool.
func NewClient(cfg *config.Configuration, log *logger.Logger) (*Client, error) {
	gormCfg := &gorm.Config{
		// Needed so duplicate-key violations surface as gorm.ErrDuplicatedKey.
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
	}

	db, err := gorm.Open(postgres.Open(cfg.Postgres.DSN()), gormCfg)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to connect to postgres").
			Mark(ierr.ErrDatabase)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to access underlying sql.DB").
			Mark(ierr.ErrDatabase)
	}
	sqlDB.SetMaxOpenConns(cfg.Postgres.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.Postgres.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.Postgres.ConnMaxLifetimeMinutes) * time.Minute)

	return &Client{db: db, logger: log}, nil
}

// NewClientWithDB wraps an existing gorm handle; used by tests running
// against sqlite or a transactional fixture.
func NewClientWithDB(db *gorm.DB, log *logger.Logger) *Client {
	return &Client{db: db, logger: log}
}

// Querier returns the active transaction from the context if present,
// otherwise the root connection.
func (c *Client) Querier(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(txContextKey).(*gorm.DB); ok {
		return tx
	}
	return c.db.WithContext(ctx)
}

// WithTx runs fn inside a database transaction. The transaction handle is
// stored in the context so that nested repository calls via Querier join it.
// Nested WithTx calls join the outer transaction rather than opening a new
// one: the outermost boundary owns commit and rollback.
func (c *Client) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txContextKey).(*gorm.DB); ok {
		return fn(ctx)
	}
	return c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txContextKey, tx))
	})
}

// IsUniqueViolation reports whether err is a unique-constraint violation.
// Callers use this to implement insert-catch-conflict-reselect flows.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// SQLSTATE 23505 = unique_violation
		return pgErr.Code == "23505"
	}
	return false
}
