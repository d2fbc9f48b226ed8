package types

import (
	"context"
	"time"
)

// Status is the lifecycle status shared by all persisted entities.
type Status string

const (
	StatusPublished Status = "published"
	StatusDeleted   Status = "deleted"
	StatusArchived  Status = "archived"
)

// BaseModel provides common columns for all entities: tenancy, lifecycle
// status and audit fields. Embedded in every domain model and mirrored in
// every table.
type BaseModel struct {
	TenantID  string    `db:"tenant_id" json:"tenant_id" gorm:"column:tenant_id;index"`
	Status    Status    `db:"status" json:"status" gorm:"column:status"`
	CreatedAt time.Time `db:"created_at" json:"created_at" gorm:"column:created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at" gorm:"column:updated_at"`
	CreatedBy string    `db:"created_by" json:"created_by" gorm:"column:created_by"`
	UpdatedBy string    `db:"updated_by" json:"updated_by" gorm:"column:updated_by"`
}

// GetDefaultBaseModel returns a BaseModel seeded from the request context.
func GetDefaultBaseModel(ctx context.Context) BaseModel {
	now := time.Now().UTC()
	return BaseModel{
		TenantID:  GetTenantID(ctx),
		Status:    StatusPublished,
		CreatedAt: now,
		UpdatedAt: now,
		CreatedBy: GetUserID(ctx),
		UpdatedBy: GetUserID(ctx),
	}
}

// Metadata is a free-form string map persisted as JSONB.
type Metadata map[string]string
