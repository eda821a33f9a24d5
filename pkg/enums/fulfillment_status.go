package enums

import "fmt"

// FulfillmentStatus tracks physical movement of an order's goods.
type FulfillmentStatus string

const (
	FulfillmentStatusUnfulfilled    FulfillmentStatus = "unfulfilled"
	FulfillmentStatusProcessing     FulfillmentStatus = "processing"
	FulfillmentStatusPacked         FulfillmentStatus = "packed"
	FulfillmentStatusDispatched     FulfillmentStatus = "dispatched"
	FulfillmentStatusInTransit      FulfillmentStatus = "in_transit"
	FulfillmentStatusOutForDelivery FulfillmentStatus = "out_for_delivery"
	FulfillmentStatusFailedDelivery FulfillmentStatus = "failed_delivery"
	FulfillmentStatusDelivered      FulfillmentStatus = "delivered"
	FulfillmentStatusReturned       FulfillmentStatus = "returned"
)

var validFulfillmentStatuses = []FulfillmentStatus{
	FulfillmentStatusUnfulfilled,
	FulfillmentStatusProcessing,
	FulfillmentStatusPacked,
	FulfillmentStatusDispatched,
	FulfillmentStatusInTransit,
	FulfillmentStatusOutForDelivery,
	FulfillmentStatusFailedDelivery,
	FulfillmentStatusDelivered,
	FulfillmentStatusReturned,
}

// String implements fmt.Stringer.
func (s FulfillmentStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known FulfillmentStatus.
func (s FulfillmentStatus) IsValid() bool {
	for _, candidate := range validFulfillmentStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further fulfillment-status transitions exist.
func (s FulfillmentStatus) IsTerminal() bool {
	return s == FulfillmentStatusReturned
}

// ParseFulfillmentStatus converts raw input into a FulfillmentStatus.
func ParseFulfillmentStatus(value string) (FulfillmentStatus, error) {
	for _, candidate := range validFulfillmentStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid fulfillment status %q", value)
}
