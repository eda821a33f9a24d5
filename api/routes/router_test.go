package routes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mercatohq/mercato-backend/internal/orders"
	"github.com/mercatohq/mercato-backend/internal/products"
	"github.com/mercatohq/mercato-backend/internal/tax"
	"github.com/mercatohq/mercato-backend/pkg/config"
	"github.com/mercatohq/mercato-backend/pkg/db/models"
	pkgerrors "github.com/mercatohq/mercato-backend/pkg/errors"
	"github.com/mercatohq/mercato-backend/pkg/pagination"
)

type fakeTaxService struct {
	quote *tax.QuoteResponse
	err   error
}

func (f *fakeTaxService) Quote(context.Context, tax.QuoteRequest) (*tax.QuoteResponse, error) {
	return f.quote, f.err
}

func (f *fakeTaxService) QuoteBreakdown(context.Context, tax.QuoteRequest) (*tax.Breakdown, error) {
	return nil, f.err
}

func (f *fakeTaxService) SetupCountry(context.Context, string) error {
	return f.err
}

func (f *fakeTaxService) LoadSnapshot(context.Context, string) (tax.Snapshot, error) {
	return tax.Snapshot{}, f.err
}

type fakeOrdersService struct {
	page *orders.OrderPage
	err  error
}

func (f *fakeOrdersService) Create(context.Context, orders.CreateOrderInput) (*models.Order, error) {
	return nil, f.err
}

func (f *fakeOrdersService) Get(context.Context, uuid.UUID) (*models.Order, error) {
	return nil, f.err
}

func (f *fakeOrdersService) List(context.Context, orders.ListFilter, pagination.Params) (*orders.OrderPage, error) {
	return f.page, f.err
}

func (f *fakeOrdersService) Transition(context.Context, orders.TransitionInput) (*models.Order, error) {
	return nil, f.err
}

func (f *fakeOrdersService) ValidTransitions(context.Context, uuid.UUID) (*orders.ValidTransitions, error) {
	return nil, f.err
}

type fakeProductsService struct {
	result *products.CascadeValidationResult
	err    error
}

func (f *fakeProductsService) ValidateDelete(context.Context, uuid.UUID, products.CascadeOptions) (*products.CascadeValidationResult, error) {
	return f.result, f.err
}

func (f *fakeProductsService) ValidateBulkDelete(context.Context, []uuid.UUID, products.CascadeOptions) (*products.BulkCascadeValidationResult, error) {
	return nil, f.err
}

func (f *fakeProductsService) Delete(context.Context, products.DeleteInput) (*products.CascadeValidationResult, error) {
	return f.result, f.err
}

func testRouter(taxSvc tax.Service, ordersSvc orders.Service, productsSvc products.Service) http.Handler {
	cfg := &config.Config{}
	cfg.App.Env = "test"
	return NewRouter(cfg, nil, nil, nil, nil, taxSvc, ordersSvc, productsSvc)
}

func TestHealthLive(t *testing.T) {
	handler := testRouter(&fakeTaxService{}, &fakeOrdersService{}, &fakeProductsService{})

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "test", rec.Header().Get("X-Mercato-Env"))
	assert.Contains(t, rec.Body.String(), `"live"`)
}

func TestTaxQuoteRoute(t *testing.T) {
	taxSvc := &fakeTaxService{quote: &tax.QuoteResponse{TotalTax: "15.47", IsInterstate: false}}
	handler := testRouter(taxSvc, &fakeOrdersService{}, &fakeProductsService{})

	body := `{"lines":[{"line_id":"1","unit_price":"100.00","quantity":1}],"shipping_address":{"line1":"1 Rue","city":"Montreal","state_code":"QC","postal_code":"H2X","country_code":"CA"}}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/tax/quote", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "15.47")
}

func TestTaxQuoteRouteRejectsUnknownFields(t *testing.T) {
	handler := testRouter(&fakeTaxService{}, &fakeOrdersService{}, &fakeProductsService{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/tax/quote", strings.NewReader(`{"bogus":true}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListOrdersRoute(t *testing.T) {
	ordersSvc := &fakeOrdersService{page: &orders.OrderPage{Orders: []models.Order{}, NextCursor: "abc"}}
	handler := testRouter(&fakeTaxService{}, ordersSvc, &fakeProductsService{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders?limit=10", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var envelope struct {
		Data struct {
			NextCursor string `json:"next_cursor"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, "abc", envelope.Data.NextCursor)
}

func TestOrderDetailRejectsMalformedID(t *testing.T) {
	handler := testRouter(&fakeTaxService{}, &fakeOrdersService{}, &fakeProductsService{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders/not-a-uuid", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid order id")
}

func TestValidateProductDeleteRoute(t *testing.T) {
	productID := uuid.New()
	productsSvc := &fakeProductsService{result: &products.CascadeValidationResult{ProductID: productID}}
	handler := testRouter(&fakeTaxService{}, &fakeOrdersService{}, productsSvc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/"+productID.String()+"/validate-delete?delete_warehouse=true", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), productID.String())
}

func TestErrorEnvelopeOnServiceFailure(t *testing.T) {
	ordersSvc := &fakeOrdersService{err: pkgerrors.New(pkgerrors.CodeNotFound, "order not found")}
	handler := testRouter(&fakeTaxService{}, ordersSvc, &fakeProductsService{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders/"+uuid.NewString(), nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), string(pkgerrors.CodeNotFound))
}
