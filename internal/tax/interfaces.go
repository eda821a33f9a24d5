package tax

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mercatohq/mercato-backend/pkg/db/models"
)

// Repository defines persistence operations for tax configuration tables.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindCountryJurisdiction(ctx context.Context, countryCode string) (*models.TaxJurisdiction, error)
	FindJurisdictionTree(ctx context.Context, countryCode string) ([]models.TaxJurisdiction, error)
	FindRatesForJurisdictions(ctx context.Context, jurisdictionIDs []uuid.UUID) ([]models.TaxRate, error)
	CreateJurisdictions(ctx context.Context, jurisdictions []models.TaxJurisdiction) error
	CreateRates(ctx context.Context, rates []models.TaxRate) error
}

// SnapshotCache stores the per-country snapshot between requests.
type SnapshotCache interface {
	Get(ctx context.Context, countryCode string) (*Snapshot, bool)
	Set(ctx context.Context, snap Snapshot)
	Invalidate(ctx context.Context, countryCode string)
}
