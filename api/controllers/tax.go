package controllers

import (
	"net/http"

	"github.com/mercatohq/mercato-backend/api/responses"
	"github.com/mercatohq/mercato-backend/api/validators"
	"github.com/mercatohq/mercato-backend/internal/tax"
	"github.com/mercatohq/mercato-backend/pkg/logger"
)

type taxSetupRequest struct {
	Preset string `json:"preset" validate:"required"`
}

// TaxQuote computes a tax breakdown for a hypothetical order without
// persisting anything.
func TaxQuote(svc tax.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req tax.QuoteRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		quote, err := svc.Quote(r.Context(), req)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, quote)
	}
}

// TaxSetup seeds the jurisdiction and rate configuration for a preset country.
func TaxSetup(svc tax.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req taxSetupRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.SetupCountry(r.Context(), req.Preset); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]string{
			"preset": req.Preset,
			"status": "configured",
		})
	}
}
