package products

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mercatohq/mercato-backend/pkg/db/models"
	dbtypes "github.com/mercatohq/mercato-backend/pkg/db/types"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a products repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("Variants").
		Where("id = ?", id).
		First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *repository) CountVariants(ctx context.Context, productID uuid.UUID) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.ProductVariant{}).
		Where("product_id = ?", productID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return int(count), nil
}

func referenceColumn(entityType string) (string, error) {
	switch entityType {
	case EntityCategory:
		return "category_id", nil
	case EntityWarehouse:
		return "warehouse_id", nil
	case EntitySupplier:
		return "supplier_id", nil
	default:
		return "", fmt.Errorf("unknown reference entity type %q", entityType)
	}
}

// ReferencingProductIDs returns the ids of products outside the exclusion set
// that still reference the entity.
func (r *repository) ReferencingProductIDs(ctx context.Context, entityType string, entityID uuid.UUID, excludeProductIDs []uuid.UUID) (dbtypes.UUIDArray, error) {
	column, err := referenceColumn(entityType)
	if err != nil {
		return nil, err
	}

	query := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where(column+" = ?", entityID)
	if len(excludeProductIDs) > 0 {
		query = query.Where("id NOT IN ?", excludeProductIDs)
	}

	var ids []uuid.UUID
	if err := query.Order("id ASC").Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return dbtypes.UUIDArray(ids), nil
}

func (r *repository) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Product{}, "id = ?", id).Error
}

func (r *repository) DeleteVariantsByProduct(ctx context.Context, productID uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.ProductVariant{}, "product_id = ?", productID).Error
}

func (r *repository) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Category{}, "id = ?", id).Error
}

func (r *repository) DeleteWarehouse(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Warehouse{}, "id = ?", id).Error
}

func (r *repository) DeleteSupplier(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Supplier{}, "id = ?", id).Error
}
