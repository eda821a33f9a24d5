package tax

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mercatohq/mercato-backend/pkg/config"
	"github.com/mercatohq/mercato-backend/pkg/db"
	pkgerrors "github.com/mercatohq/mercato-backend/pkg/errors"
	"github.com/mercatohq/mercato-backend/pkg/logger"
	"github.com/mercatohq/mercato-backend/pkg/metrics"
	"github.com/mercatohq/mercato-backend/pkg/types"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// QuoteRequestLine is one line of a quote request. Monetary fields are
// decimal strings to avoid float drift on the wire.
type QuoteRequestLine struct {
	LineID     string `json:"line_id" validate:"required"`
	UnitPrice  string `json:"unit_price" validate:"required"`
	Quantity   int    `json:"quantity" validate:"required,gt=0"`
	Discount   string `json:"discount,omitempty"`
	CategoryID string `json:"category_id,omitempty"`
}

// QuoteRequest is the tax quote input surface.
type QuoteRequest struct {
	Lines           []QuoteRequestLine `json:"lines" validate:"required,min=1,dive"`
	ShippingAddress types.Address      `json:"shipping_address" validate:"required"`
	TaxDate         *time.Time         `json:"tax_date,omitempty"`
}

// QuoteResponseTax is one applied levy in the response.
type QuoteResponseTax struct {
	JurisdictionCode string `json:"jurisdiction_code"`
	TaxType          string `json:"tax_type"`
	Rate             string `json:"rate"`
	Amount           string `json:"amount"`
}

// QuoteResponseLine is the per-line result.
type QuoteResponseLine struct {
	LineID string             `json:"line_id"`
	Taxes  []QuoteResponseTax `json:"taxes"`
	Total  string             `json:"total"`
}

// QuoteResponse is the full quote result.
type QuoteResponse struct {
	PerLine      []QuoteResponseLine `json:"per_line"`
	TotalTax     string              `json:"total_tax"`
	IsInterstate bool                `json:"is_interstate"`
}

// Service exposes tax quoting and country setup.
type Service interface {
	Quote(ctx context.Context, req QuoteRequest) (*QuoteResponse, error)
	QuoteBreakdown(ctx context.Context, req QuoteRequest) (*Breakdown, error)
	SetupCountry(ctx context.Context, preset string) error
	LoadSnapshot(ctx context.Context, countryCode string) (Snapshot, error)
}

type service struct {
	repo    Repository
	tx      txRunner
	cache   SnapshotCache
	metrics *metrics.EngineMetrics
	cfg     config.TaxConfig
	logg    *logger.Logger
}

// NewService builds the tax service with its dependencies. The cache and
// metrics are optional; repo and tx are not.
func NewService(repo Repository, tx txRunner, cache SnapshotCache, m *metrics.EngineMetrics, cfg config.TaxConfig, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("tax repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{
		repo:    repo,
		tx:      tx,
		cache:   cache,
		metrics: m,
		cfg:     cfg,
		logg:    logg,
	}, nil
}

func (s *service) Quote(ctx context.Context, req QuoteRequest) (*QuoteResponse, error) {
	breakdown, err := s.QuoteBreakdown(ctx, req)
	if err != nil {
		return nil, err
	}

	resp := &QuoteResponse{
		TotalTax:     breakdown.TotalTax.StringFixed(minorUnitDigits),
		IsInterstate: breakdown.IsInterstate,
	}
	for _, line := range breakdown.PerLine {
		out := QuoteResponseLine{
			LineID: line.LineID,
			Taxes:  []QuoteResponseTax{},
			Total:  line.LineTaxTotal().StringFixed(minorUnitDigits),
		}
		for _, tax := range line.Taxes {
			out.Taxes = append(out.Taxes, QuoteResponseTax{
				JurisdictionCode: tax.JurisdictionCode,
				TaxType:          tax.TaxType.String(),
				Rate:             tax.Rate.String(),
				Amount:           tax.Amount.StringFixed(minorUnitDigits),
			})
		}
		resp.PerLine = append(resp.PerLine, out)
	}
	return resp, nil
}

func (s *service) QuoteBreakdown(ctx context.Context, req QuoteRequest) (*Breakdown, error) {
	if len(req.Lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one line is required")
	}

	countryCode := strings.ToUpper(strings.TrimSpace(req.ShippingAddress.CountryCode))

	input := QuoteInput{ShippingAddress: req.ShippingAddress}
	if req.TaxDate != nil {
		input.TaxDate = *req.TaxDate
	}
	// the registered state only matters for domestic sales; a foreign
	// destination never trips the interstate switch
	if strings.EqualFold(countryCode, strings.TrimSpace(s.cfg.BusinessCountryCode)) {
		input.BusinessStateCode = s.cfg.BusinessStateCode
	}

	for _, line := range req.Lines {
		unitPrice, err := decimal.NewFromString(line.UnitPrice)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid unit price").
				WithDetails(map[string]any{"line_id": line.LineID})
		}
		discount := decimal.Zero
		if line.Discount != "" {
			if discount, err = decimal.NewFromString(line.Discount); err != nil {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid discount").
					WithDetails(map[string]any{"line_id": line.LineID})
			}
		}
		input.Lines = append(input.Lines, QuoteLine{
			LineID:     line.LineID,
			UnitPrice:  unitPrice,
			Quantity:   line.Quantity,
			Discount:   discount,
			CategoryID: line.CategoryID,
		})
	}

	snap, err := s.LoadSnapshot(ctx, countryCode)
	if err != nil {
		return nil, err
	}

	started := time.Now()
	breakdown, err := Calculate(snap, input)
	if err != nil {
		return nil, err
	}

	s.metrics.ObserveQuoteDuration(countryCode, time.Since(started))
	s.metrics.IncQuoteComputed(countryCode)
	return &breakdown, nil
}

// LoadSnapshot returns the validated snapshot for the country, serving from
// cache when possible.
func (s *service) LoadSnapshot(ctx context.Context, countryCode string) (Snapshot, error) {
	countryCode = strings.ToUpper(strings.TrimSpace(countryCode))
	if countryCode == "" {
		return Snapshot{}, pkgerrors.New(pkgerrors.CodeValidation, "country code required")
	}

	if s.cache != nil {
		if cached, ok := s.cache.Get(ctx, countryCode); ok {
			return *cached, nil
		}
	}

	tree, err := s.repo.FindJurisdictionTree(ctx, countryCode)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return Snapshot{}, pkgerrors.New(pkgerrors.CodeSetupRequired, "no tax jurisdiction configured for country").
				WithDetails(map[string]any{"country_code": countryCode})
		}
		return Snapshot{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load tax jurisdictions")
	}

	ids := make([]uuid.UUID, 0, len(tree))
	for _, j := range tree {
		ids = append(ids, j.ID)
	}
	rates, err := s.repo.FindRatesForJurisdictions(ctx, ids)
	if err != nil {
		return Snapshot{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load tax rates")
	}

	snap := NewSnapshot(countryCode, tree, rates)
	if err := snap.ValidateStrict(); err != nil {
		return Snapshot{}, err
	}

	if s.cache != nil {
		s.cache.Set(ctx, snap)
	}
	return snap, nil
}

// SetupCountry seeds the jurisdiction and rate configuration for a preset.
// Setup is additive; running it for an already configured country is a
// conflict, never a silent overwrite.
func (s *service) SetupCountry(ctx context.Context, preset string) error {
	seed, err := seedForPreset(preset)
	if err != nil {
		return err
	}

	if _, err := s.repo.FindCountryJurisdiction(ctx, seed.countryCode); err == nil {
		return pkgerrors.New(pkgerrors.CodeConflict, "country tax configuration already exists").
			WithDetails(map[string]any{"country_code": seed.countryCode})
	} else if err != gorm.ErrRecordNotFound {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check existing configuration")
	}

	if err := NewSnapshot(seed.countryCode, seed.jurisdictions, seed.rates).ValidateStrict(); err != nil {
		return err
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.CreateJurisdictions(ctx, seed.jurisdictions); err != nil {
			// two setups racing past the existence check land here
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.New(pkgerrors.CodeConflict, "country tax configuration already exists").
					WithDetails(map[string]any{"country_code": seed.countryCode})
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create jurisdictions")
		}
		if err := repo.CreateRates(ctx, seed.rates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create rates")
		}
		return nil
	})
	if err != nil {
		return err
	}

	if s.cache != nil {
		s.cache.Invalidate(ctx, seed.countryCode)
	}
	if s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"preset":        preset,
			"country_code":  seed.countryCode,
			"jurisdictions": len(seed.jurisdictions),
			"rates":         len(seed.rates),
		})
		s.logg.Info(logCtx, "country tax configuration created")
	}
	return nil
}
