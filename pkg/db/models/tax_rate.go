package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mercatohq/mercato-backend/pkg/enums"
)

// TaxRate is one levy attached to a jurisdiction. Rate is a fraction in
// [0, 1]. Compound rates reference the non-compound base rate whose
// tax-inclusive amount they apply to. CategoryOverrides maps category id to a
// replacement rate fraction.
type TaxRate struct {
	ID                uuid.UUID                  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	JurisdictionID    uuid.UUID                  `gorm:"column:jurisdiction_id;type:uuid;not null;index"`
	TaxType           enums.TaxType              `gorm:"column:tax_type;type:tax_type;not null"`
	Rate              decimal.Decimal            `gorm:"column:rate;type:numeric(9,6);not null"`
	IsCompound        bool                       `gorm:"column:is_compound;not null;default:false"`
	CompoundBaseID    *uuid.UUID                 `gorm:"column:compound_base_id;type:uuid"`
	EffectiveFrom     time.Time                  `gorm:"column:effective_from;not null"`
	EffectiveTo       *time.Time                 `gorm:"column:effective_to"`
	CategoryOverrides map[string]decimal.Decimal `gorm:"column:category_overrides;type:jsonb;serializer:json"`
	CreatedAt         time.Time                  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time                  `gorm:"column:updated_at;autoUpdateTime"`
}
