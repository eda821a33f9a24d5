package models

import (
	"time"

	"github.com/google/uuid"
)

// OrderLineItem snapshots the purchased item. TaxBreakdown keeps the per-levy
// amounts produced when the quote was applied.
type OrderLineItem struct {
	ID             uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID        uuid.UUID          `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID      *uuid.UUID         `gorm:"column:product_id;type:uuid"`
	VariantID      *uuid.UUID         `gorm:"column:variant_id;type:uuid"`
	Name           string             `gorm:"column:name;not null"`
	SKU            string             `gorm:"column:sku;not null"`
	UnitPriceCents int64              `gorm:"column:unit_price_cents;not null"`
	Qty            int                `gorm:"column:qty;not null"`
	DiscountCents  int64              `gorm:"column:discount_cents;not null;default:0"`
	TaxCents       int64              `gorm:"column:tax_cents;not null;default:0"`
	TotalCents     int64              `gorm:"column:total_cents;not null"`
	TaxBreakdown   []LineTaxComponent `gorm:"column:tax_breakdown;type:jsonb;serializer:json"`
	CreatedAt      time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

// LineTaxComponent is one applied levy within a line item's stored breakdown.
type LineTaxComponent struct {
	JurisdictionCode string `json:"jurisdiction_code"`
	TaxType          string `json:"tax_type"`
	Rate             string `json:"rate"`
	AmountCents      int64  `json:"amount_cents"`
}
