package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/mercatohq/mercato-backend/pkg/types"
)

// Warehouse is a stock location shared across products.
type Warehouse struct {
	ID        uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string         `gorm:"column:name;not null"`
	Code      string         `gorm:"column:code;not null;uniqueIndex"`
	Address   *types.Address `gorm:"column:address;type:address_t"`
	IsActive  bool           `gorm:"column:is_active;not null;default:true"`
	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
