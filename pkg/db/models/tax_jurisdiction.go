package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/mercatohq/mercato-backend/pkg/enums"
)

// TaxJurisdiction is one level of the geographic tax hierarchy. Rows are only
// added or deactivated, never mutated in place.
type TaxJurisdiction struct {
	ID        uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Kind      enums.JurisdictionKind `gorm:"column:kind;type:jurisdiction_kind;not null"`
	Code      string                 `gorm:"column:code;not null"`
	Name      string                 `gorm:"column:name;not null"`
	ParentID  *uuid.UUID             `gorm:"column:parent_id;type:uuid"`
	IsActive  bool                   `gorm:"column:is_active;not null;default:true"`
	CreatedAt time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}
