package tax

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mercatohq/mercato-backend/pkg/db/models"
	"github.com/mercatohq/mercato-backend/pkg/enums"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a tax configuration repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindCountryJurisdiction(ctx context.Context, countryCode string) (*models.TaxJurisdiction, error) {
	var row models.TaxJurisdiction
	err := r.db.WithContext(ctx).
		Where("kind = ? AND upper(code) = ? AND is_active", enums.JurisdictionKindCountry, strings.ToUpper(countryCode)).
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// FindJurisdictionTree loads the country row plus every active descendant.
// Two levels of nesting (state under country, city under state) cover the
// configured hierarchies, so two queries beat a recursive CTE here.
func (r *repository) FindJurisdictionTree(ctx context.Context, countryCode string) ([]models.TaxJurisdiction, error) {
	country, err := r.FindCountryJurisdiction(ctx, countryCode)
	if err != nil {
		return nil, err
	}

	tree := []models.TaxJurisdiction{*country}

	var states []models.TaxJurisdiction
	if err := r.db.WithContext(ctx).
		Where("parent_id = ? AND is_active", country.ID).
		Order("code ASC").
		Find(&states).Error; err != nil {
		return nil, err
	}
	tree = append(tree, states...)

	if len(states) > 0 {
		stateIDs := make([]uuid.UUID, 0, len(states))
		for _, s := range states {
			stateIDs = append(stateIDs, s.ID)
		}
		var cities []models.TaxJurisdiction
		if err := r.db.WithContext(ctx).
			Where("parent_id IN ? AND is_active", stateIDs).
			Order("code ASC").
			Find(&cities).Error; err != nil {
			return nil, err
		}
		tree = append(tree, cities...)
	}

	return tree, nil
}

func (r *repository) FindRatesForJurisdictions(ctx context.Context, jurisdictionIDs []uuid.UUID) ([]models.TaxRate, error) {
	if len(jurisdictionIDs) == 0 {
		return nil, nil
	}
	var rates []models.TaxRate
	err := r.db.WithContext(ctx).
		Where("jurisdiction_id IN ?", jurisdictionIDs).
		Order("effective_from ASC").
		Find(&rates).Error
	if err != nil {
		return nil, err
	}
	return rates, nil
}

func (r *repository) CreateJurisdictions(ctx context.Context, jurisdictions []models.TaxJurisdiction) error {
	if len(jurisdictions) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&jurisdictions).Error
}

func (r *repository) CreateRates(ctx context.Context, rates []models.TaxRate) error {
	if len(rates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&rates).Error
}
