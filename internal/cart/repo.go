package cart

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/binarymart/storefront-backend/pkg/db/models"
	"github.com/binarymart/storefront-backend/pkg/enums"
)

// Repository exposes persistence operations for carts and their items.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a cart repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) CartRepository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// Create inserts a new cart. A unique violation here means another request
// created the user's active cart first; callers resolve that by re-selecting.
func (r *Repository) Create(ctx context.Context, cart *models.Cart) error {
	if cart.Status == "" {
		cart.Status = enums.CartStatusActive
	}
	return r.db.WithContext(ctx).Create(cart).Error
}

// FindActiveByUser loads the user's active cart with its items.
func (r *Repository) FindActiveByUser(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Where("user_id = ? AND status = ?", userID, enums.CartStatusActive).
		First(&cart).Error
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// FindItem returns the cart line for a catalog item, or nil when absent.
func (r *Repository) FindItem(ctx context.Context, cartID uuid.UUID, line enums.ProductLine, catalogItemID uuid.UUID) (*models.CartItem, error) {
	var item models.CartItem
	err := r.db.WithContext(ctx).
		Where("cart_id = ? AND product_line = ? AND catalog_item_id = ?", cartID, line, catalogItemID).
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// UpsertItem inserts a cart line or, when the (cart, line, item) key already
// exists, adds the quantity onto the existing row and refreshes the price
// snapshot. The merge happens in the database so concurrent adds of the same
// item cannot lose an increment.
func (r *Repository) UpsertItem(ctx context.Context, item *models.CartItem) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "cart_id"}, {Name: "product_line"}, {Name: "catalog_item_id"},
			},
			DoUpdates: clause.Assignments(map[string]any{
				"quantity":   gorm.Expr("cart_items.quantity + excluded.quantity"),
				"unit_price": gorm.Expr("excluded.unit_price"),
				"updated_at": gorm.Expr("excluded.updated_at"),
			}),
		}).
		Create(item).Error
}

// UpdateItemQuantity sets a line's quantity, scoped to the caller's active
// cart in the same statement so a foreign cart item can never be touched.
func (r *Repository) UpdateItemQuantity(ctx context.Context, userID, cartItemID uuid.UUID, qty int) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.CartItem{}).
		Where("id = ? AND cart_id IN (?)", cartItemID, r.activeCartIDs(userID)).
		Update("quantity", qty)
	return result.RowsAffected, result.Error
}

// DeleteItem removes a line, owner-scoped like UpdateItemQuantity.
func (r *Repository) DeleteItem(ctx context.Context, userID, cartItemID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("id = ? AND cart_id IN (?)", cartItemID, r.activeCartIDs(userID)).
		Delete(&models.CartItem{})
	return result.RowsAffected, result.Error
}

// ClearItems removes every line of the user's active cart.
func (r *Repository) ClearItems(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("cart_id IN (?)", r.activeCartIDs(userID)).
		Delete(&models.CartItem{}).Error
}

// ItemsForUpdate loads and row-locks a cart's items. Must run inside a
// transaction; checkout uses it to freeze the cart against concurrent edits.
func (r *Repository) ItemsForUpdate(ctx context.Context, cartID uuid.UUID) ([]models.CartItem, error) {
	var items []models.CartItem
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("cart_id = ?", cartID).
		Order("created_at ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// Retire marks a cart checked out, which releases the partial unique index
// slot so the user's next GetOrCreate starts a fresh cart.
func (r *Repository) Retire(ctx context.Context, cartID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Cart{}).
		Where("id = ? AND status = ?", cartID, enums.CartStatusActive).
		Update("status", enums.CartStatusCheckedOut).Error
}

func (r *Repository) activeCartIDs(userID uuid.UUID) *gorm.DB {
	return r.db.
		Model(&models.Cart{}).
		Select("id").
		Where("user_id = ? AND status = ?", userID, enums.CartStatusActive)
}
