package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mercatohq/mercato-backend/api/responses"
	"github.com/mercatohq/mercato-backend/api/validators"
	"github.com/mercatohq/mercato-backend/internal/orders"
	"github.com/mercatohq/mercato-backend/pkg/enums"
	pkgerrors "github.com/mercatohq/mercato-backend/pkg/errors"
	"github.com/mercatohq/mercato-backend/pkg/logger"
	"github.com/mercatohq/mercato-backend/pkg/pagination"
)

const actorIDHeader = "X-Actor-Id"
const actorRoleHeader = "X-Actor-Role"

type transitionRequest struct {
	Domain string `json:"domain" validate:"required"`
	Target string `json:"target" validate:"required"`
}

type orderListResponse struct {
	Orders     any    `json:"orders"`
	NextCursor string `json:"next_cursor,omitempty"`
}

// CreateOrder persists an order with taxes computed server-side from the
// shipping address.
func CreateOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input orders.CreateOrderInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

// ListOrders returns a cursor page of orders, newest first.
func ListOrders(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filter, err := listFilterFromQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.List(r.Context(), filter, pagination.Params{
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, orderListResponse{
			Orders:     page.Orders,
			NextCursor: page.NextCursor,
		})
	}
}

// OrderDetail returns one order with its line items.
func OrderDetail(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := orderIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Get(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// OrderTransition applies one lifecycle change in the requested domain.
func OrderTransition(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := orderIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req transitionRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		domain, err := parseDomain(req.Domain)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Transition(r.Context(), orders.TransitionInput{
			OrderID:     orderID,
			Domain:      domain,
			Target:      req.Target,
			ActorUserID: strings.TrimSpace(r.Header.Get(actorIDHeader)),
			ActorRole:   strings.TrimSpace(r.Header.Get(actorRoleHeader)),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// OrderValidTransitions projects every target reachable from the order's
// current statuses.
func OrderValidTransitions(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := orderIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		transitions, err := svc.ValidTransitions(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, transitions)
	}
}

func orderIDParam(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "orderId")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order id").
			WithDetails(map[string]any{"order_id": raw})
	}
	return id, nil
}

func parseDomain(value string) (orders.Domain, error) {
	switch orders.Domain(strings.ToLower(strings.TrimSpace(value))) {
	case orders.DomainOrder:
		return orders.DomainOrder, nil
	case orders.DomainPayment:
		return orders.DomainPayment, nil
	case orders.DomainFulfillment:
		return orders.DomainFulfillment, nil
	}
	return "", pkgerrors.New(pkgerrors.CodeValidation, "unknown transition domain").
		WithDetails(map[string]any{"domain": value})
}

func listFilterFromQuery(r *http.Request) (orders.ListFilter, error) {
	var filter orders.ListFilter

	if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
		status, err := enums.ParseOrderStatus(raw)
		if err != nil {
			return filter, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status filter").
				WithDetails(map[string]any{"status": raw})
		}
		filter.Status = &status
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("payment_status")); raw != "" {
		status, err := enums.ParsePaymentStatus(raw)
		if err != nil {
			return filter, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment status filter").
				WithDetails(map[string]any{"payment_status": raw})
		}
		filter.PaymentStatus = &status
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("fulfillment_status")); raw != "" {
		status, err := enums.ParseFulfillmentStatus(raw)
		if err != nil {
			return filter, pkgerrors.New(pkgerrors.CodeValidation, "invalid fulfillment status filter").
				WithDetails(map[string]any{"fulfillment_status": raw})
		}
		filter.FulfillmentStatus = &status
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("customer_email")); raw != "" {
		filter.CustomerEmail = &raw
	}

	return filter, nil
}
