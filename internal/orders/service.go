package orders

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mercatohq/mercato-backend/internal/tax"
	"github.com/mercatohq/mercato-backend/pkg/db/models"
	"github.com/mercatohq/mercato-backend/pkg/enums"
	pkgerrors "github.com/mercatohq/mercato-backend/pkg/errors"
	"github.com/mercatohq/mercato-backend/pkg/logger"
	"github.com/mercatohq/mercato-backend/pkg/metrics"
	"github.com/mercatohq/mercato-backend/pkg/outbox"
	"github.com/mercatohq/mercato-backend/pkg/pagination"
	"github.com/mercatohq/mercato-backend/pkg/types"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type taxQuoter interface {
	QuoteBreakdown(ctx context.Context, req tax.QuoteRequest) (*tax.Breakdown, error)
}

// Service defines order lifecycle operations.
type Service interface {
	Create(ctx context.Context, input CreateOrderInput) (*models.Order, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Order, error)
	List(ctx context.Context, filter ListFilter, page pagination.Params) (*OrderPage, error)
	Transition(ctx context.Context, input TransitionInput) (*models.Order, error)
	ValidTransitions(ctx context.Context, orderID uuid.UUID) (*ValidTransitions, error)
}

type service struct {
	repo    Repository
	tx      txRunner
	outbox  outboxPublisher
	quoter  taxQuoter
	metrics *metrics.EngineMetrics
	logg    *logger.Logger
}

// NewService builds the order service. Metrics and logging are optional.
func NewService(repo Repository, tx txRunner, ob outboxPublisher, quoter taxQuoter, m *metrics.EngineMetrics, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if ob == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if quoter == nil {
		return nil, fmt.Errorf("tax quoter required")
	}
	return &service{
		repo:    repo,
		tx:      tx,
		outbox:  ob,
		quoter:  quoter,
		metrics: m,
		logg:    logg,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateOrderInput) (*models.Order, error) {
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one item is required")
	}
	for _, item := range input.Items {
		if item.Qty <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item quantity must be positive").
				WithDetails(map[string]any{"sku": item.SKU})
		}
		if item.UnitPriceCents < 0 || item.DiscountCents < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item amounts must not be negative").
				WithDetails(map[string]any{"sku": item.SKU})
		}
	}
	currency := input.Currency
	if currency == "" {
		currency = enums.CurrencyINR
	}
	if !currency.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unsupported currency").
			WithDetails(map[string]any{"currency": string(input.Currency)})
	}

	breakdown, err := s.quoteItems(ctx, input)
	if err != nil {
		return nil, err
	}

	taxesByLine := make(map[string][]tax.AppliedTax, len(breakdown.PerLine))
	for _, line := range breakdown.PerLine {
		taxesByLine[line.LineID] = line.Taxes
	}

	var order *models.Order
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		orderNumber, err := repo.NextOrderNumber(ctx)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "allocate order number")
		}

		row := &models.Order{
			OrderNumber:       orderNumber,
			CustomerEmail:     input.CustomerEmail,
			Currency:          currency,
			ShippingAddress:   addressPtr(input.ShippingAddress),
			BillingAddress:    input.BillingAddress,
			Status:            enums.OrderStatusPlaced,
			PaymentStatus:     enums.PaymentStatusPending,
			FulfillmentStatus: enums.FulfillmentStatusUnfulfilled,
			Notes:             input.Notes,
		}

		var subtotal, totalTax int64
		for i, item := range input.Items {
			lineSubtotal := item.UnitPriceCents*int64(item.Qty) - item.DiscountCents
			if lineSubtotal < 0 {
				lineSubtotal = 0
			}

			var components []models.LineTaxComponent
			var lineTax int64
			for _, applied := range taxesByLine[strconv.Itoa(i)] {
				amountCents := applied.Amount.Shift(2).IntPart()
				lineTax += amountCents
				components = append(components, models.LineTaxComponent{
					JurisdictionCode: applied.JurisdictionCode,
					TaxType:          applied.TaxType.String(),
					Rate:             applied.Rate.String(),
					AmountCents:      amountCents,
				})
			}

			row.Items = append(row.Items, models.OrderLineItem{
				ProductID:      item.ProductID,
				VariantID:      item.VariantID,
				Name:           item.Name,
				SKU:            item.SKU,
				UnitPriceCents: item.UnitPriceCents,
				Qty:            item.Qty,
				DiscountCents:  item.DiscountCents,
				TaxCents:       lineTax,
				TotalCents:     lineSubtotal + lineTax,
				TaxBreakdown:   components,
			})
			subtotal += lineSubtotal
			totalTax += lineTax
		}

		row.SubtotalCents = subtotal
		row.TaxCents = totalTax
		row.TotalCents = subtotal + totalTax

		created, err := repo.Create(ctx, row)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}
		order = created
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.logg != nil {
		logCtx := s.logg.WithOrderID(ctx, order.ID.String())
		s.logg.Info(logCtx, "order placed")
	}
	return order, nil
}

func (s *service) quoteItems(ctx context.Context, input CreateOrderInput) (*tax.Breakdown, error) {
	req := tax.QuoteRequest{ShippingAddress: input.ShippingAddress}
	for i, item := range input.Items {
		req.Lines = append(req.Lines, tax.QuoteRequestLine{
			LineID:     strconv.Itoa(i),
			UnitPrice:  decimal.New(item.UnitPriceCents, -2).String(),
			Quantity:   item.Qty,
			Discount:   decimal.New(item.DiscountCents, -2).String(),
			CategoryID: item.CategoryID,
		})
	}
	return s.quoter.QuoteBreakdown(ctx, req)
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

func (s *service) List(ctx context.Context, filter ListFilter, page pagination.Params) (*OrderPage, error) {
	rows, err := s.repo.List(ctx, filter, page)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}

	limit := pagination.NormalizeLimit(page.Limit)
	result := &OrderPage{Orders: rows}
	if len(rows) > limit {
		result.Orders = rows[:limit]
		last := result.Orders[limit-1]
		result.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	return result, nil
}

// Transition applies one status change on one of the three lifecycle
// dimensions, stamps milestone timestamps, and stages the outbox event in the
// same transaction.
func (s *service) Transition(ctx context.Context, input TransitionInput) (*models.Order, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}

	var order *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		current, err := repo.FindByIDForUpdate(ctx, input.OrderID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}

		updates, event, err := s.applyTransition(current, input)
		if err != nil {
			return err
		}

		if err := repo.UpdateOrder(ctx, current.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "stage outbox event")
		}
		order = current
		return nil
	})
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeStateConflict {
			s.metrics.IncTransitionRejected(string(input.Domain), rejectionReason(typed))
		}
		return nil, err
	}

	s.metrics.IncTransitionApplied(string(input.Domain))
	if s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"order_id": order.ID.String(),
			"domain":   string(input.Domain),
			"target":   input.Target,
		})
		s.logg.Info(logCtx, "order transition applied")
	}
	return order, nil
}

// applyTransition validates the requested change against the state tables and
// mutates the in-memory order to its post-transition shape. The returned
// updates map is what gets persisted.
func (s *service) applyTransition(order *models.Order, input TransitionInput) (map[string]any, outbox.DomainEvent, error) {
	now := time.Now().UTC()
	updates := map[string]any{}
	event := outbox.DomainEvent{
		AggregateType: enums.OutboxAggregateOrder,
		AggregateID:   order.ID,
	}
	if input.ActorUserID != "" {
		event.Actor = &outbox.ActorRef{UserID: input.ActorUserID, Role: input.ActorRole}
	}

	switch input.Domain {
	case DomainOrder:
		target, err := enums.ParseOrderStatus(input.Target)
		if err != nil {
			return nil, event, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status").
				WithDetails(map[string]any{"target": input.Target})
		}
		if err := CheckOrderTransition(order.Status, target); err != nil {
			return nil, event, err
		}
		event.EventType = enums.OutboxEventOrderStatusChanged
		event.Data = StatusChangedEvent{
			OrderID:     order.ID,
			OrderNumber: order.OrderNumber,
			Domain:      string(DomainOrder),
			From:        order.Status.String(),
			To:          target.String(),
		}
		updates["status"] = target
		switch target {
		case enums.OrderStatusConfirmed:
			updates["confirmed_at"] = now
			order.ConfirmedAt = &now
		case enums.OrderStatusShipped:
			updates["shipped_at"] = now
			order.ShippedAt = &now
		case enums.OrderStatusDelivered:
			updates["delivered_at"] = now
			order.DeliveredAt = &now
		case enums.OrderStatusCancelled:
			updates["cancelled_at"] = now
			order.CancelledAt = &now
			event.EventType = enums.OutboxEventOrderCancelled
		}
		order.Status = target

	case DomainPayment:
		target, err := enums.ParsePaymentStatus(input.Target)
		if err != nil {
			return nil, event, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment status").
				WithDetails(map[string]any{"target": input.Target})
		}
		if err := CheckPaymentTransition(order.Status, order.PaymentStatus, target); err != nil {
			return nil, event, err
		}
		event.EventType = enums.OutboxEventPaymentStatusChanged
		event.Data = StatusChangedEvent{
			OrderID:     order.ID,
			OrderNumber: order.OrderNumber,
			Domain:      string(DomainPayment),
			From:        order.PaymentStatus.String(),
			To:          target.String(),
		}
		updates["payment_status"] = target
		order.PaymentStatus = target

	case DomainFulfillment:
		target, err := enums.ParseFulfillmentStatus(input.Target)
		if err != nil {
			return nil, event, pkgerrors.New(pkgerrors.CodeValidation, "invalid fulfillment status").
				WithDetails(map[string]any{"target": input.Target})
		}
		if err := CheckFulfillmentTransition(order.Status, order.FulfillmentStatus, target); err != nil {
			return nil, event, err
		}
		event.EventType = enums.OutboxEventFulfillmentStatusChanged
		event.Data = StatusChangedEvent{
			OrderID:     order.ID,
			OrderNumber: order.OrderNumber,
			Domain:      string(DomainFulfillment),
			From:        order.FulfillmentStatus.String(),
			To:          target.String(),
		}
		updates["fulfillment_status"] = target
		order.FulfillmentStatus = target

	default:
		return nil, event, pkgerrors.New(pkgerrors.CodeValidation, "invalid transition domain").
			WithDetails(map[string]any{"domain": string(input.Domain)})
	}

	return updates, event, nil
}

// ValidTransitions projects every reachable target for the order without
// changing anything.
func (s *service) ValidTransitions(ctx context.Context, orderID uuid.UUID) (*ValidTransitions, error) {
	order, err := s.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	projection := ProjectValidTransitions(order.Status, order.PaymentStatus, order.FulfillmentStatus)
	return &projection, nil
}

func rejectionReason(err *pkgerrors.Error) string {
	if details, ok := err.Details().(map[string]any); ok {
		if reason, ok := details["reason"].(string); ok {
			return reason
		}
	}
	return "unknown"
}

func addressPtr(addr types.Address) *types.Address {
	normalized := addr.Normalized()
	return &normalized
}
