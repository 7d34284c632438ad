package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/binarymart/storefront-backend/pkg/db/models"
	"github.com/binarymart/storefront-backend/pkg/enums"
	pkgerrors "github.com/binarymart/storefront-backend/pkg/errors"
)

// Repository reads catalog rows from both product lines and presents them as
// Snapshots. It is the only place that knows which table backs which line.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a catalog repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// Fetch loads one catalog item without locking it. Inactive and missing
// items are both reported as not found so callers cannot distinguish them.
func (r *Repository) Fetch(ctx context.Context, line enums.ProductLine, id uuid.UUID) (*Snapshot, error) {
	return r.fetch(ctx, line, id, false)
}

// FetchForUpdate loads one catalog item under a row lock. It must be called
// inside a transaction; the lock is held until that transaction ends.
func (r *Repository) FetchForUpdate(ctx context.Context, line enums.ProductLine, id uuid.UUID) (*Snapshot, error) {
	return r.fetch(ctx, line, id, true)
}

func (r *Repository) fetch(ctx context.Context, line enums.ProductLine, id uuid.UUID, lock bool) (*Snapshot, error) {
	query := r.db.WithContext(ctx)
	if lock {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	switch line {
	case enums.ProductLineSoftware:
		var plan models.SoftwarePlan
		if err := query.Where("id = ?", id).First(&plan).Error; err != nil {
			return nil, translateLookupErr(err, line, id)
		}
		if !plan.IsActive {
			return nil, notFound(line, id)
		}
		return &Snapshot{
			Line:         line,
			ID:           plan.ID,
			Name:         planDisplayName(plan),
			BasePrice:    plan.Price,
			SpecialPrice: plan.SpecialPrice,
			StartDate:    plan.StartDate,
			ExpiryDate:   plan.ExpiryDate,
			IsActive:     plan.IsActive,
		}, nil
	case enums.ProductLineCartridge:
		var product models.CartridgeProduct
		if err := query.Where("id = ?", id).First(&product).Error; err != nil {
			return nil, translateLookupErr(err, line, id)
		}
		if !product.IsActive {
			return nil, notFound(line, id)
		}
		return &Snapshot{
			Line:         line,
			ID:           product.ID,
			Name:         product.ProductName,
			BasePrice:    product.Price,
			SpecialPrice: product.SpecialPrice,
			Stock:        product.Quantity,
			IsActive:     product.IsActive,
		}, nil
	default:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown product line %q", line))
	}
}

// DecrementStock atomically subtracts qty from a cartridge product's stock.
// The guarded WHERE keeps stock non-negative even if a caller skipped the
// row lock; zero rows affected means the stock ran out underneath us.
func (r *Repository) DecrementStock(ctx context.Context, line enums.ProductLine, id uuid.UUID, qty int) error {
	if line != enums.ProductLineCartridge {
		return nil
	}
	if qty <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	result := r.db.WithContext(ctx).
		Model(&models.CartridgeProduct{}).
		Where("id = ? AND quantity >= ?", id, qty).
		Update("quantity", gorm.Expr("quantity - ?", qty))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeConflict, "insufficient stock").
			WithDetails(map[string]any{"product_line": line, "catalog_item_id": id, "requested": qty})
	}
	return nil
}

func planDisplayName(plan models.SoftwarePlan) string {
	if plan.PlanName == "" {
		return plan.ProductName
	}
	return strings.TrimSpace(plan.ProductName + " " + plan.PlanName)
}

func translateLookupErr(err error, line enums.ProductLine, id uuid.UUID) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound(line, id)
	}
	return err
}

func notFound(line enums.ProductLine, id uuid.UUID) error {
	return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("%s item %s not found", line, id))
}
