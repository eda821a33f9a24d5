package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mercatohq/mercato-backend/api/responses"
	"github.com/mercatohq/mercato-backend/api/validators"
	"github.com/mercatohq/mercato-backend/internal/products"
	pkgerrors "github.com/mercatohq/mercato-backend/pkg/errors"
	"github.com/mercatohq/mercato-backend/pkg/logger"
)

type bulkValidateRequest struct {
	ProductIDs      []uuid.UUID `json:"product_ids" validate:"required,min=1"`
	DeleteVariants  bool        `json:"delete_variants"`
	DeleteCategory  bool        `json:"delete_category"`
	DeleteWarehouse bool        `json:"delete_warehouse"`
	DeleteSupplier  bool        `json:"delete_supplier"`
}

// ValidateProductDelete previews a single product delete. Cascade targets are
// selected through query parameters so the check stays a plain GET.
func ValidateProductDelete(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := productIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		opts, err := cascadeOptionsFromQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ValidateDelete(r.Context(), productID, opts)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// ValidateBulkProductDelete previews a multi-product delete. Products inside
// the requested set never count as blockers for each other.
func ValidateBulkProductDelete(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req bulkValidateRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ValidateBulkDelete(r.Context(), req.ProductIDs, products.CascadeOptions{
			DeleteVariants:  req.DeleteVariants,
			DeleteCategory:  req.DeleteCategory,
			DeleteWarehouse: req.DeleteWarehouse,
			DeleteSupplier:  req.DeleteSupplier,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// DeleteProduct validates and executes a cascade delete in one transaction.
// A blocked validation returns the conflict together with the blocking
// entities in the error details.
func DeleteProduct(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := productIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		opts, err := cascadeOptionsFromQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Delete(r.Context(), products.DeleteInput{
			ProductID:   productID,
			Options:     opts,
			ActorUserID: strings.TrimSpace(r.Header.Get(actorIDHeader)),
			ActorRole:   strings.TrimSpace(r.Header.Get(actorRoleHeader)),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func productIDParam(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "productId")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid product id").
			WithDetails(map[string]any{"product_id": raw})
	}
	return id, nil
}

func cascadeOptionsFromQuery(r *http.Request) (products.CascadeOptions, error) {
	var opts products.CascadeOptions
	var err error

	if opts.DeleteVariants, err = validators.ParseQueryBool(r, "delete_variants"); err != nil {
		return opts, err
	}
	if opts.DeleteCategory, err = validators.ParseQueryBool(r, "delete_category"); err != nil {
		return opts, err
	}
	if opts.DeleteWarehouse, err = validators.ParseQueryBool(r, "delete_warehouse"); err != nil {
		return opts, err
	}
	if opts.DeleteSupplier, err = validators.ParseQueryBool(r, "delete_supplier"); err != nil {
		return opts, err
	}
	return opts, nil
}
