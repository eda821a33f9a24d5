package products

import (
	"github.com/google/uuid"

	dbtypes "github.com/mercatohq/mercato-backend/pkg/db/types"
)

// Entity types reported in cascade validation results.
const (
	EntityCategory  = "category"
	EntityWarehouse = "warehouse"
	EntitySupplier  = "supplier"
)

// ReasonSharedByOtherProducts marks an entity still referenced outside the
// requested delete set.
const ReasonSharedByOtherProducts = "shared_by_other_products"

// CascadeOptions selects what should be deleted along with the product.
// Variants are owned, not shared: the flag only controls whether the service
// removes them explicitly or leaves the cleanup to the product row's
// referential cascade. They never block either way.
type CascadeOptions struct {
	DeleteVariants  bool `json:"delete_variants"`
	DeleteCategory  bool `json:"delete_category"`
	DeleteWarehouse bool `json:"delete_warehouse"`
	DeleteSupplier  bool `json:"delete_supplier"`
}

// BlockedEntity is one entity that cannot be cascade-deleted because other
// products still reference it.
type BlockedEntity struct {
	EntityType            string            `json:"entity_type"`
	EntityID              uuid.UUID         `json:"entity_id"`
	Reason                string            `json:"reason"`
	ReferencingProductIDs dbtypes.UUIDArray `json:"referencing_product_ids"`
}

// AffectedSummary reports what a delete would remove. Variants never block a
// delete; they cascade with their product. The shared flags mark requested
// entities still referenced by other products, which stay in place and show
// up under Blocked.
type AffectedSummary struct {
	Variants        int  `json:"variants"`
	CategoryShared  bool `json:"category_shared"`
	WarehouseShared bool `json:"warehouse_shared"`
	SupplierShared  bool `json:"supplier_shared"`
}

// CascadeValidationResult is the outcome of validating one product delete.
type CascadeValidationResult struct {
	ProductID       uuid.UUID       `json:"product_id"`
	Blocked         []BlockedEntity `json:"blocked"`
	AffectedSummary AffectedSummary `json:"affected_summary"`
}

// CanProceed reports whether the delete is unblocked.
func (r CascadeValidationResult) CanProceed() bool {
	return len(r.Blocked) == 0
}

// BulkCascadeValidationResult aggregates per-product validations. Blocked
// entries are deduplicated by entity id across the requested set.
type BulkCascadeValidationResult struct {
	ProductIDs      []uuid.UUID     `json:"product_ids"`
	Blocked         []BlockedEntity `json:"blocked"`
	AffectedSummary AffectedSummary `json:"affected_summary"`
}

// CanProceed reports whether the bulk delete is unblocked.
func (r BulkCascadeValidationResult) CanProceed() bool {
	return len(r.Blocked) == 0
}

// ProductDeletedEvent is the outbox payload staged when a product delete
// commits.
type ProductDeletedEvent struct {
	ProductID        uuid.UUID `json:"product_id"`
	SKU              string    `json:"sku"`
	DeletedVariants  int       `json:"deleted_variants"`
	CategoryDeleted  bool      `json:"category_deleted"`
	WarehouseDeleted bool      `json:"warehouse_deleted"`
	SupplierDeleted  bool      `json:"supplier_deleted"`
}
