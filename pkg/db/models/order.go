package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/mercatohq/mercato-backend/pkg/enums"
	"github.com/mercatohq/mercato-backend/pkg/types"
)

// Order carries the three lifecycle statuses plus the milestone timestamps
// stamped by successful transitions.
type Order struct {
	ID                uuid.UUID               `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderNumber       int64                   `gorm:"column:order_number;not null;uniqueIndex"`
	CustomerEmail     string                  `gorm:"column:customer_email;not null"`
	Currency          enums.Currency          `gorm:"column:currency;type:text;not null;default:'INR'"`
	ShippingAddress   *types.Address          `gorm:"column:shipping_address;type:address_t"`
	BillingAddress    *types.Address          `gorm:"column:billing_address;type:address_t"`
	Status            enums.OrderStatus       `gorm:"column:status;type:order_status;not null;default:'placed'"`
	PaymentStatus     enums.PaymentStatus     `gorm:"column:payment_status;type:payment_status;not null;default:'pending'"`
	FulfillmentStatus enums.FulfillmentStatus `gorm:"column:fulfillment_status;type:fulfillment_status;not null;default:'unfulfilled'"`
	SubtotalCents     int64                   `gorm:"column:subtotal_cents;not null"`
	TaxCents          int64                   `gorm:"column:tax_cents;not null;default:0"`
	TotalCents        int64                   `gorm:"column:total_cents;not null"`
	Notes             *string                 `gorm:"column:notes"`
	ConfirmedAt       *time.Time              `gorm:"column:confirmed_at"`
	ShippedAt         *time.Time              `gorm:"column:shipped_at"`
	DeliveredAt       *time.Time              `gorm:"column:delivered_at"`
	CancelledAt       *time.Time              `gorm:"column:cancelled_at"`
	Items             []OrderLineItem         `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt         time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}
