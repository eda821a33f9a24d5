package orders

import (
	"github.com/mercatohq/mercato-backend/pkg/enums"
	pkgerrors "github.com/mercatohq/mercato-backend/pkg/errors"
)

// Domain identifies which lifecycle dimension a transition targets. The three
// dimensions evolve independently on the same order row, with one shared
// guard: a cancelled order freezes its payment and fulfillment lifecycles.
type Domain string

const (
	DomainOrder       Domain = "order"
	DomainPayment     Domain = "payment"
	DomainFulfillment Domain = "fulfillment"
)

// Rejection reasons surfaced in transition error details.
const (
	ReasonInvalidTransition = "invalid_transition"
	ReasonOrderCancelled    = "order_cancelled"
	ReasonUnknownStatus     = "unknown_status"
)

var orderTransitions = map[enums.OrderStatus][]enums.OrderStatus{
	enums.OrderStatusPlaced:     {enums.OrderStatusConfirmed, enums.OrderStatusCancelled},
	enums.OrderStatusConfirmed:  {enums.OrderStatusProcessing, enums.OrderStatusCancelled},
	enums.OrderStatusProcessing: {enums.OrderStatusShipped, enums.OrderStatusCancelled},
	enums.OrderStatusShipped:    {enums.OrderStatusDelivered, enums.OrderStatusCancelled},
	enums.OrderStatusDelivered:  {enums.OrderStatusCompleted},
	enums.OrderStatusCompleted:  {},
	enums.OrderStatusCancelled:  {},
}

var paymentTransitions = map[enums.PaymentStatus][]enums.PaymentStatus{
	enums.PaymentStatusPending:           {enums.PaymentStatusPaid, enums.PaymentStatusFailed},
	enums.PaymentStatusPaid:              {enums.PaymentStatusPartiallyRefunded, enums.PaymentStatusRefunded},
	enums.PaymentStatusFailed:            {enums.PaymentStatusPending},
	enums.PaymentStatusPartiallyRefunded: {enums.PaymentStatusRefunded},
	enums.PaymentStatusRefunded:          {},
}

var fulfillmentTransitions = map[enums.FulfillmentStatus][]enums.FulfillmentStatus{
	enums.FulfillmentStatusUnfulfilled:    {enums.FulfillmentStatusProcessing},
	enums.FulfillmentStatusProcessing:     {enums.FulfillmentStatusPacked},
	enums.FulfillmentStatusPacked:         {enums.FulfillmentStatusDispatched},
	enums.FulfillmentStatusDispatched:     {enums.FulfillmentStatusInTransit},
	enums.FulfillmentStatusInTransit:      {enums.FulfillmentStatusOutForDelivery, enums.FulfillmentStatusFailedDelivery},
	enums.FulfillmentStatusOutForDelivery: {enums.FulfillmentStatusDelivered, enums.FulfillmentStatusFailedDelivery},
	enums.FulfillmentStatusFailedDelivery: {enums.FulfillmentStatusInTransit, enums.FulfillmentStatusReturned},
	enums.FulfillmentStatusDelivered:      {enums.FulfillmentStatusReturned},
	enums.FulfillmentStatusReturned:       {},
}

// guardAllows is the one predicate shared by the payment and fulfillment
// tables: no movement on either while the order itself is cancelled.
func guardAllows(orderStatus enums.OrderStatus) bool {
	return orderStatus != enums.OrderStatusCancelled
}

func rejection(domain Domain, from, to, reason string) error {
	return pkgerrors.New(pkgerrors.CodeStateConflict, "transition rejected").
		WithDetails(map[string]any{
			"domain": string(domain),
			"from":   from,
			"to":     to,
			"reason": reason,
		})
}

// CheckOrderTransition validates a commercial status change.
func CheckOrderTransition(from, to enums.OrderStatus) error {
	targets, ok := orderTransitions[from]
	if !ok {
		return rejection(DomainOrder, from.String(), to.String(), ReasonUnknownStatus)
	}
	for _, candidate := range targets {
		if candidate == to {
			return nil
		}
	}
	return rejection(DomainOrder, from.String(), to.String(), ReasonInvalidTransition)
}

// CheckPaymentTransition validates a payment status change under the
// cancellation guard.
func CheckPaymentTransition(orderStatus enums.OrderStatus, from, to enums.PaymentStatus) error {
	if !guardAllows(orderStatus) {
		return rejection(DomainPayment, from.String(), to.String(), ReasonOrderCancelled)
	}
	targets, ok := paymentTransitions[from]
	if !ok {
		return rejection(DomainPayment, from.String(), to.String(), ReasonUnknownStatus)
	}
	for _, candidate := range targets {
		if candidate == to {
			return nil
		}
	}
	return rejection(DomainPayment, from.String(), to.String(), ReasonInvalidTransition)
}

// CheckFulfillmentTransition validates a fulfillment status change under the
// cancellation guard.
func CheckFulfillmentTransition(orderStatus enums.OrderStatus, from, to enums.FulfillmentStatus) error {
	if !guardAllows(orderStatus) {
		return rejection(DomainFulfillment, from.String(), to.String(), ReasonOrderCancelled)
	}
	targets, ok := fulfillmentTransitions[from]
	if !ok {
		return rejection(DomainFulfillment, from.String(), to.String(), ReasonUnknownStatus)
	}
	for _, candidate := range targets {
		if candidate == to {
			return nil
		}
	}
	return rejection(DomainFulfillment, from.String(), to.String(), ReasonInvalidTransition)
}

// ValidTransitions is the projection of every target reachable from the
// order's current statuses. It applies the same cancellation guard the
// transition checks do, so a cancelled order projects empty payment and
// fulfillment lists.
type ValidTransitions struct {
	Order       []enums.OrderStatus       `json:"order"`
	Payment     []enums.PaymentStatus     `json:"payment"`
	Fulfillment []enums.FulfillmentStatus `json:"fulfillment"`
}

// ProjectValidTransitions computes the reachable targets without mutating
// anything.
func ProjectValidTransitions(orderStatus enums.OrderStatus, paymentStatus enums.PaymentStatus, fulfillmentStatus enums.FulfillmentStatus) ValidTransitions {
	projection := ValidTransitions{
		Order:       append([]enums.OrderStatus{}, orderTransitions[orderStatus]...),
		Payment:     []enums.PaymentStatus{},
		Fulfillment: []enums.FulfillmentStatus{},
	}
	if guardAllows(orderStatus) {
		projection.Payment = append(projection.Payment, paymentTransitions[paymentStatus]...)
		projection.Fulfillment = append(projection.Fulfillment, fulfillmentTransitions[fulfillmentStatus]...)
	}
	return projection
}
