package tax

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mercatohq/mercato-backend/pkg/config"
	"github.com/mercatohq/mercato-backend/pkg/db/models"
	"github.com/mercatohq/mercato-backend/pkg/enums"
	pkgerrors "github.com/mercatohq/mercato-backend/pkg/errors"
	"github.com/mercatohq/mercato-backend/pkg/types"
)

type fakeTaxRepo struct {
	jurisdictions []models.TaxJurisdiction
	rates         []models.TaxRate

	treeCalls int
}

func (f *fakeTaxRepo) WithTx(tx *gorm.DB) Repository {
	return f
}

func (f *fakeTaxRepo) FindCountryJurisdiction(ctx context.Context, countryCode string) (*models.TaxJurisdiction, error) {
	for _, j := range f.jurisdictions {
		if j.Kind == enums.JurisdictionKindCountry && strings.EqualFold(j.Code, countryCode) && j.IsActive {
			row := j
			return &row, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeTaxRepo) FindJurisdictionTree(ctx context.Context, countryCode string) ([]models.TaxJurisdiction, error) {
	f.treeCalls++
	if _, err := f.FindCountryJurisdiction(ctx, countryCode); err != nil {
		return nil, err
	}
	return f.jurisdictions, nil
}

func (f *fakeTaxRepo) FindRatesForJurisdictions(ctx context.Context, jurisdictionIDs []uuid.UUID) ([]models.TaxRate, error) {
	return f.rates, nil
}

func (f *fakeTaxRepo) CreateJurisdictions(ctx context.Context, jurisdictions []models.TaxJurisdiction) error {
	f.jurisdictions = append(f.jurisdictions, jurisdictions...)
	return nil
}

func (f *fakeTaxRepo) CreateRates(ctx context.Context, rates []models.TaxRate) error {
	f.rates = append(f.rates, rates...)
	return nil
}

type fakeTxRunner struct{}

func (fakeTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(&gorm.DB{})
}

type memorySnapshotCache struct {
	entries map[string]Snapshot
}

func newMemorySnapshotCache() *memorySnapshotCache {
	return &memorySnapshotCache{entries: make(map[string]Snapshot)}
}

func (c *memorySnapshotCache) Get(ctx context.Context, countryCode string) (*Snapshot, bool) {
	snap, ok := c.entries[countryCode]
	if !ok {
		return nil, false
	}
	return &snap, true
}

func (c *memorySnapshotCache) Set(ctx context.Context, snap Snapshot) {
	c.entries[snap.CountryCode] = snap
}

func (c *memorySnapshotCache) Invalidate(ctx context.Context, countryCode string) {
	delete(c.entries, countryCode)
}

func newTestService(t *testing.T, repo *fakeTaxRepo, cache SnapshotCache, businessState string) Service {
	t.Helper()
	svc, err := NewService(repo, fakeTxRunner{}, cache, nil, config.TaxConfig{
		BusinessCountryCode: "IN",
		BusinessStateCode:   businessState,
	}, nil)
	require.NoError(t, err)
	return svc
}

func TestServiceSetupCountry_IndiaPreset(t *testing.T) {
	repo := &fakeTaxRepo{}
	cache := newMemorySnapshotCache()
	svc := newTestService(t, repo, cache, "MH")
	ctx := context.Background()

	require.NoError(t, svc.SetupCountry(ctx, PresetIndiaGST))
	assert.NotEmpty(t, repo.jurisdictions)
	assert.Len(t, repo.rates, 3)

	// second setup for the same country is a conflict
	err := svc.SetupCountry(ctx, PresetIndiaGST)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeConflict, pkgerrors.As(err).Code())
}

func TestServiceSetupCountry_UnknownPreset(t *testing.T) {
	svc := newTestService(t, &fakeTaxRepo{}, nil, "")
	err := svc.SetupCountry(context.Background(), "narnia_vat")
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestServiceLoadSnapshot_CachesPerCountry(t *testing.T) {
	repo := &fakeTaxRepo{}
	cache := newMemorySnapshotCache()
	svc := newTestService(t, repo, cache, "MH")
	ctx := context.Background()

	require.NoError(t, svc.SetupCountry(ctx, PresetIndiaGST))

	first, err := svc.LoadSnapshot(ctx, "in")
	require.NoError(t, err)
	assert.Equal(t, "IN", first.CountryCode)
	assert.Equal(t, 1, repo.treeCalls)

	second, err := svc.LoadSnapshot(ctx, "IN")
	require.NoError(t, err)
	assert.Equal(t, len(first.Rates), len(second.Rates))
	assert.Equal(t, 1, repo.treeCalls, "second load must be served from cache")
}

func TestServiceLoadSnapshot_SetupRequired(t *testing.T) {
	svc := newTestService(t, &fakeTaxRepo{}, newMemorySnapshotCache(), "")
	_, err := svc.LoadSnapshot(context.Background(), "BR")
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeSetupRequired, pkgerrors.As(err).Code())
}

func TestServiceQuote_EndToEnd(t *testing.T) {
	repo := &fakeTaxRepo{}
	svc := newTestService(t, repo, newMemorySnapshotCache(), "MH")
	ctx := context.Background()

	require.NoError(t, svc.SetupCountry(ctx, PresetIndiaGST))

	resp, err := svc.Quote(ctx, QuoteRequest{
		Lines: []QuoteRequestLine{
			{LineID: "line-1", UnitPrice: "100", Quantity: 1},
		},
		ShippingAddress: types.Address{StateCode: "DL", CountryCode: "IN"},
	})
	require.NoError(t, err)

	assert.True(t, resp.IsInterstate)
	assert.Equal(t, "18.00", resp.TotalTax)
	require.Len(t, resp.PerLine, 1)
	require.Len(t, resp.PerLine[0].Taxes, 1)
	assert.Equal(t, "IGST", resp.PerLine[0].Taxes[0].TaxType)
	assert.Equal(t, "18.00", resp.PerLine[0].Taxes[0].Amount)
	assert.Equal(t, "18.00", resp.PerLine[0].Total)
}

func TestServiceQuote_ForeignDestinationIgnoresBusinessState(t *testing.T) {
	repo := &fakeTaxRepo{}
	svc := newTestService(t, repo, newMemorySnapshotCache(), "MH")
	ctx := context.Background()

	require.NoError(t, svc.SetupCountry(ctx, PresetCanadaGSTQST))

	resp, err := svc.Quote(ctx, QuoteRequest{
		Lines: []QuoteRequestLine{
			{LineID: "line-1", UnitPrice: "100", Quantity: 1},
		},
		ShippingAddress: types.Address{StateCode: "QC", CountryCode: "CA"},
	})
	require.NoError(t, err)

	// the Indian registration's MH state must not flag a Quebec sale
	assert.False(t, resp.IsInterstate)
	assert.Equal(t, "15.47", resp.TotalTax)
	require.Len(t, resp.PerLine, 1)
	require.Len(t, resp.PerLine[0].Taxes, 2)
	assert.Equal(t, "GST", resp.PerLine[0].Taxes[0].TaxType)
	assert.Equal(t, "5.00", resp.PerLine[0].Taxes[0].Amount)
	assert.Equal(t, "QST", resp.PerLine[0].Taxes[1].TaxType)
	assert.Equal(t, "10.47", resp.PerLine[0].Taxes[1].Amount)
}

func TestServiceQuote_InvalidDecimal(t *testing.T) {
	svc := newTestService(t, &fakeTaxRepo{}, nil, "")
	_, err := svc.Quote(context.Background(), QuoteRequest{
		Lines: []QuoteRequestLine{
			{LineID: "line-1", UnitPrice: "not-a-number", Quantity: 1},
		},
		ShippingAddress: types.Address{CountryCode: "IN"},
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestServiceQuote_NoLines(t *testing.T) {
	svc := newTestService(t, &fakeTaxRepo{}, nil, "")
	_, err := svc.Quote(context.Background(), QuoteRequest{
		ShippingAddress: types.Address{CountryCode: "IN"},
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}
