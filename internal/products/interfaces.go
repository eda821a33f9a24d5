package products

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mercatohq/mercato-backend/pkg/db/models"
	dbtypes "github.com/mercatohq/mercato-backend/pkg/db/types"
)

// Repository defines persistence operations for products and the entities a
// product delete can cascade into.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
	CountVariants(ctx context.Context, productID uuid.UUID) (int, error)
	ReferencingProductIDs(ctx context.Context, entityType string, entityID uuid.UUID, excludeProductIDs []uuid.UUID) (dbtypes.UUIDArray, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	DeleteVariantsByProduct(ctx context.Context, productID uuid.UUID) error
	DeleteCategory(ctx context.Context, id uuid.UUID) error
	DeleteWarehouse(ctx context.Context, id uuid.UUID) error
	DeleteSupplier(ctx context.Context, id uuid.UUID) error
}
