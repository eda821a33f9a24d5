package orders

import (
	"github.com/google/uuid"

	"github.com/mercatohq/mercato-backend/pkg/db/models"
	"github.com/mercatohq/mercato-backend/pkg/enums"
	"github.com/mercatohq/mercato-backend/pkg/types"
)

// CreateOrderItem is one purchased line in a create request. Prices are in
// the currency's minor unit.
type CreateOrderItem struct {
	ProductID      *uuid.UUID `json:"product_id,omitempty"`
	VariantID      *uuid.UUID `json:"variant_id,omitempty"`
	Name           string     `json:"name" validate:"required"`
	SKU            string     `json:"sku" validate:"required"`
	UnitPriceCents int64      `json:"unit_price_cents" validate:"gte=0"`
	Qty            int        `json:"qty" validate:"required,gt=0"`
	DiscountCents  int64      `json:"discount_cents" validate:"gte=0"`
	CategoryID     string     `json:"category_id,omitempty"`
}

// CreateOrderInput is the order intake surface. Taxes are computed at create
// time from the shipping address, never taken from the caller.
type CreateOrderInput struct {
	CustomerEmail   string            `json:"customer_email" validate:"required,email"`
	Currency        enums.Currency    `json:"currency"`
	ShippingAddress types.Address     `json:"shipping_address" validate:"required"`
	BillingAddress  *types.Address    `json:"billing_address,omitempty"`
	Notes           *string           `json:"notes,omitempty"`
	Items           []CreateOrderItem `json:"items" validate:"required,min=1,dive"`
}

// TransitionInput carries one requested status change.
type TransitionInput struct {
	OrderID     uuid.UUID
	Domain      Domain
	Target      string
	ActorUserID string
	ActorRole   string
}

// ListFilter narrows order listings.
type ListFilter struct {
	Status            *enums.OrderStatus
	PaymentStatus     *enums.PaymentStatus
	FulfillmentStatus *enums.FulfillmentStatus
	CustomerEmail     *string
}

// OrderPage is one cursor page of orders.
type OrderPage struct {
	Orders     []models.Order
	NextCursor string
}

// StatusChangedEvent is the outbox payload for a lifecycle change in any of
// the three dimensions.
type StatusChangedEvent struct {
	OrderID     uuid.UUID `json:"order_id"`
	OrderNumber int64     `json:"order_number"`
	Domain      string    `json:"domain"`
	From        string    `json:"from"`
	To          string    `json:"to"`
}
