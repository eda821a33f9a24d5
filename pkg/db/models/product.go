package models

import (
	"time"

	"github.com/google/uuid"
)

// Product is the catalog listing. Category, Warehouse and Supplier are weak
// references; variants belong exclusively to the product and cascade with it.
type Product struct {
	ID          uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SKU         string           `gorm:"column:sku;not null;uniqueIndex"`
	Title       string           `gorm:"column:title;not null"`
	Description *string          `gorm:"column:description"`
	CategoryID  *uuid.UUID       `gorm:"column:category_id;type:uuid;index"`
	WarehouseID *uuid.UUID       `gorm:"column:warehouse_id;type:uuid;index"`
	SupplierID  *uuid.UUID       `gorm:"column:supplier_id;type:uuid;index"`
	PriceCents  int64            `gorm:"column:price_cents;not null"`
	HSNCode     *string          `gorm:"column:hsn_code"`
	IsActive    bool             `gorm:"column:is_active;not null;default:true"`
	Variants    []ProductVariant `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
