package products

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mercatohq/mercato-backend/pkg/db"
	"github.com/mercatohq/mercato-backend/pkg/db/models"
	"github.com/mercatohq/mercato-backend/pkg/enums"
	pkgerrors "github.com/mercatohq/mercato-backend/pkg/errors"
	"github.com/mercatohq/mercato-backend/pkg/logger"
	"github.com/mercatohq/mercato-backend/pkg/metrics"
	"github.com/mercatohq/mercato-backend/pkg/outbox"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// DeleteInput is one cascade delete request.
type DeleteInput struct {
	ProductID   uuid.UUID
	Options     CascadeOptions
	ActorUserID string
	ActorRole   string
}

// Service validates and executes product deletes with optional cascades into
// shared catalog entities.
type Service interface {
	ValidateDelete(ctx context.Context, productID uuid.UUID, opts CascadeOptions) (*CascadeValidationResult, error)
	ValidateBulkDelete(ctx context.Context, productIDs []uuid.UUID, opts CascadeOptions) (*BulkCascadeValidationResult, error)
	Delete(ctx context.Context, input DeleteInput) (*CascadeValidationResult, error)
}

type service struct {
	repo    Repository
	tx      txRunner
	outbox  outboxPublisher
	metrics *metrics.EngineMetrics
	logg    *logger.Logger
}

// NewService builds the product service. Metrics and logging are optional.
func NewService(repo Repository, tx txRunner, ob outboxPublisher, m *metrics.EngineMetrics, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("products repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if ob == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{
		repo:    repo,
		tx:      tx,
		outbox:  ob,
		metrics: m,
		logg:    logg,
	}, nil
}

// ValidateDelete is a read-only preview. Running it any number of times
// returns the same result for the same catalog state.
func (s *service) ValidateDelete(ctx context.Context, productID uuid.UUID, opts CascadeOptions) (*CascadeValidationResult, error) {
	product, err := s.loadProduct(ctx, s.repo, productID)
	if err != nil {
		return nil, err
	}
	return s.validateOne(ctx, s.repo, product, []uuid.UUID{productID}, opts)
}

func (s *service) ValidateBulkDelete(ctx context.Context, productIDs []uuid.UUID, opts CascadeOptions) (*BulkCascadeValidationResult, error) {
	if len(productIDs) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one product id is required")
	}

	result := &BulkCascadeValidationResult{ProductIDs: productIDs}
	seenEntities := make(map[uuid.UUID]bool)

	for _, id := range productIDs {
		product, err := s.loadProduct(ctx, s.repo, id)
		if err != nil {
			return nil, err
		}
		// other products in the same request never count as blockers
		one, err := s.validateOne(ctx, s.repo, product, productIDs, opts)
		if err != nil {
			return nil, err
		}
		result.AffectedSummary.Variants += one.AffectedSummary.Variants
		result.AffectedSummary.CategoryShared = result.AffectedSummary.CategoryShared || one.AffectedSummary.CategoryShared
		result.AffectedSummary.WarehouseShared = result.AffectedSummary.WarehouseShared || one.AffectedSummary.WarehouseShared
		result.AffectedSummary.SupplierShared = result.AffectedSummary.SupplierShared || one.AffectedSummary.SupplierShared
		for _, blocked := range one.Blocked {
			if seenEntities[blocked.EntityID] {
				continue
			}
			seenEntities[blocked.EntityID] = true
			result.Blocked = append(result.Blocked, blocked)
		}
	}
	return result, nil
}

// Delete validates the cascade and, when unblocked, removes the product, its
// variants, and every requested referenced entity in one transaction.
func (s *service) Delete(ctx context.Context, input DeleteInput) (*CascadeValidationResult, error) {
	var result *CascadeValidationResult

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		product, err := s.loadProduct(ctx, repo, input.ProductID)
		if err != nil {
			return err
		}

		validation, err := s.validateOne(ctx, repo, product, []uuid.UUID{input.ProductID}, input.Options)
		if err != nil {
			return err
		}
		result = validation

		if !validation.CanProceed() {
			for _, blocked := range validation.Blocked {
				s.metrics.IncCascadeBlocked(blocked.EntityType)
			}
			return pkgerrors.New(pkgerrors.CodeConflict, "delete blocked by shared references").
				WithDetails(map[string]any{"blocked": validation.Blocked})
		}

		// without the flag, the product_variants FK cascade cleans them up
		if input.Options.DeleteVariants {
			if err := repo.DeleteVariantsByProduct(ctx, product.ID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete variants")
			}
		}
		if err := repo.DeleteProduct(ctx, product.ID); err != nil {
			// a reference created between validation and the delete statement
			if db.IsForeignKeyViolation(err) {
				return pkgerrors.New(pkgerrors.CodeConflict, "delete blocked by shared references").
					WithDetails(map[string]any{"product_id": product.ID.String()})
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete product")
		}

		event := ProductDeletedEvent{
			ProductID:       product.ID,
			SKU:             product.SKU,
			DeletedVariants: validation.AffectedSummary.Variants,
		}
		if input.Options.DeleteCategory && product.CategoryID != nil {
			if err := repo.DeleteCategory(ctx, *product.CategoryID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete category")
			}
			event.CategoryDeleted = true
		}
		if input.Options.DeleteWarehouse && product.WarehouseID != nil {
			if err := repo.DeleteWarehouse(ctx, *product.WarehouseID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete warehouse")
			}
			event.WarehouseDeleted = true
		}
		if input.Options.DeleteSupplier && product.SupplierID != nil {
			if err := repo.DeleteSupplier(ctx, *product.SupplierID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete supplier")
			}
			event.SupplierDeleted = true
		}

		domainEvent := outbox.DomainEvent{
			EventType:     enums.OutboxEventProductDeleted,
			AggregateType: enums.OutboxAggregateProduct,
			AggregateID:   product.ID,
			Data:          event,
		}
		if input.ActorUserID != "" {
			domainEvent.Actor = &outbox.ActorRef{UserID: input.ActorUserID, Role: input.ActorRole}
		}
		return s.outbox.Emit(ctx, tx, domainEvent)
	})
	if err != nil {
		return result, err
	}

	if s.logg != nil {
		logCtx := s.logg.WithProductID(ctx, input.ProductID.String())
		s.logg.Info(logCtx, "product deleted")
	}
	return result, nil
}

func (s *service) loadProduct(ctx context.Context, repo Repository, id uuid.UUID) (*models.Product, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	product, err := repo.FindProduct(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found").
				WithDetails(map[string]any{"product_id": id.String()})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return product, nil
}

// validateOne checks each requested cascade target for references from
// products outside the exclusion set. Variants are counted, never blocking.
func (s *service) validateOne(ctx context.Context, repo Repository, product *models.Product, excludeProductIDs []uuid.UUID, opts CascadeOptions) (*CascadeValidationResult, error) {
	result := &CascadeValidationResult{ProductID: product.ID}

	variants, err := repo.CountVariants(ctx, product.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count variants")
	}
	result.AffectedSummary.Variants = variants

	type target struct {
		entityType string
		entityID   *uuid.UUID
		requested  bool
	}
	targets := []target{
		{EntityCategory, product.CategoryID, opts.DeleteCategory},
		{EntityWarehouse, product.WarehouseID, opts.DeleteWarehouse},
		{EntitySupplier, product.SupplierID, opts.DeleteSupplier},
	}

	for _, tgt := range targets {
		if !tgt.requested || tgt.entityID == nil {
			continue
		}
		refs, err := repo.ReferencingProductIDs(ctx, tgt.entityType, *tgt.entityID, excludeProductIDs)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count entity references")
		}
		if len(refs) == 0 {
			continue
		}
		switch tgt.entityType {
		case EntityCategory:
			result.AffectedSummary.CategoryShared = true
		case EntityWarehouse:
			result.AffectedSummary.WarehouseShared = true
		case EntitySupplier:
			result.AffectedSummary.SupplierShared = true
		}
		result.Blocked = append(result.Blocked, BlockedEntity{
			EntityType:            tgt.entityType,
			EntityID:              *tgt.entityID,
			Reason:                ReasonSharedByOtherProducts,
			ReferencingProductIDs: refs,
		})
	}
	return result, nil
}
