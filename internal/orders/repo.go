package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/binarymart/storefront-backend/pkg/db/models"
	"github.com/binarymart/storefront-backend/pkg/enums"
)

// ListFilters narrows the admin order listing. Zero values mean no filter.
type ListFilters struct {
	Status      enums.OrderStatus
	PaymentType enums.PaymentType
	Email       string
	Limit       int
	Offset      int
}

// Repository reads and transitions orders after checkout has written them.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs an orders repository bound to the provided DB.
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

func (r *Repository) withGraph(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Preload("Items.Codes").
		Preload("Payment")
}

// FindByID loads one order with its full graph.
func (r *Repository) FindByID(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.withGraph(ctx).Where("id = ?", orderID).First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// FindByIDAndBuyer loads one order restricted to its buyer.
func (r *Repository) FindByIDAndBuyer(ctx context.Context, orderID, buyerUserID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.withGraph(ctx).
		Where("id = ? AND buyer_user_id = ?", orderID, buyerUserID).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// FindGuestOrder loads a guest order matched by id and billing email.
// Orders that belong to an account are excluded so the email alone can
// never open them.
func (r *Repository) FindGuestOrder(ctx context.Context, orderID uuid.UUID, email string) (*models.Order, error) {
	var order models.Order
	err := r.withGraph(ctx).
		Where("id = ? AND billing_email = ? AND buyer_user_id IS NULL", orderID, email).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// FindBySerialCode resolves the order that issued a serial code.
func (r *Repository) FindBySerialCode(ctx context.Context, code string) (*models.Order, error) {
	var order models.Order
	err := r.withGraph(ctx).
		Where("id IN (?)", r.db.
			Model(&models.OrderItem{}).
			Select("order_id").
			Where("id IN (?)", r.db.
				Model(&models.OrderItemCode{}).
				Select("order_item_id").
				Where("code = ?", code))).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// ListByBuyer returns the buyer's orders, newest first.
func (r *Repository) ListByBuyer(ctx context.Context, buyerUserID uuid.UUID, limit, offset int) ([]models.Order, error) {
	var rows []models.Order
	query := r.withGraph(ctx).
		Where("buyer_user_id = ?", buyerUserID).
		Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// List returns orders matching the admin filters, newest first.
func (r *Repository) List(ctx context.Context, filters ListFilters) ([]models.Order, int64, error) {
	base := r.db.WithContext(ctx).Model(&models.Order{})
	if filters.Status != "" {
		base = base.Where("status = ?", filters.Status)
	}
	if filters.Email != "" {
		base = base.Where("billing_email = ?", filters.Email)
	}
	if filters.PaymentType != "" {
		base = base.Where("id IN (?)", r.db.
			Model(&models.Payment{}).
			Select("order_id").
			Where("payment_type = ?", filters.PaymentType))
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query := base.
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Preload("Items.Codes").
		Preload("Payment").
		Order("created_at DESC")
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	var rows []models.Order
	if err := query.Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// UpdateStatus moves an order to the given status, guarded by the expected
// current status so concurrent admin actions cannot cross each other.
func (r *Repository) UpdateStatus(ctx context.Context, orderID uuid.UUID, from, to enums.OrderStatus) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND status = ?", orderID, from).
		Update("status", to)
	return result.RowsAffected, result.Error
}
