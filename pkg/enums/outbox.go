package enums

import "fmt"

// OutboxEventType is the kind of domain event staged in the outbox table.
type OutboxEventType string

const (
	OutboxEventOrderStatusChanged       OutboxEventType = "order.status_changed"
	OutboxEventPaymentStatusChanged     OutboxEventType = "order.payment_status_changed"
	OutboxEventFulfillmentStatusChanged OutboxEventType = "order.fulfillment_status_changed"
	OutboxEventOrderCancelled           OutboxEventType = "order.cancelled"
	OutboxEventProductDeleted           OutboxEventType = "product.deleted"
)

var validOutboxEventTypes = []OutboxEventType{
	OutboxEventOrderStatusChanged,
	OutboxEventPaymentStatusChanged,
	OutboxEventFulfillmentStatusChanged,
	OutboxEventOrderCancelled,
	OutboxEventProductDeleted,
}

// String implements fmt.Stringer.
func (t OutboxEventType) String() string {
	return string(t)
}

// IsValid reports whether the value is a known OutboxEventType.
func (t OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into an OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid outbox event type %q", value)
}

// OutboxAggregateType names the aggregate an outbox event belongs to.
type OutboxAggregateType string

const (
	OutboxAggregateOrder   OutboxAggregateType = "order"
	OutboxAggregateProduct OutboxAggregateType = "product"
)

// String implements fmt.Stringer.
func (t OutboxAggregateType) String() string {
	return string(t)
}

// IsValid reports whether the value is a known OutboxAggregateType.
func (t OutboxAggregateType) IsValid() bool {
	return t == OutboxAggregateOrder || t == OutboxAggregateProduct
}
