package testutil

import (
	"context"

	"gorm.io/gorm"
)

// PassthroughDBClient satisfies postgres.IClient for service tests backed by
// in-memory stores. WithTx just runs the function; the stores apply writes
// immediately, which matches the committed state the services assert on.
type PassthroughDBClient struct{}

func NewPassthroughDBClient() *PassthroughDBClient {
	return &PassthroughDBClient{}
}

func (c *PassthroughDBClient) Querier(_ context.Context) *gorm.DB {
	return nil
}

func (c *PassthroughDBClient) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
