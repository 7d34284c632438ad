package checkout

import (
	"context"

	"gorm.io/gorm"

	"github.com/binarymart/storefront-backend/pkg/db/models"
)

// OrderRepository persists the order graph produced by a checkout. Creation
// is the only write this side owns; reads and status transitions live with
// the orders read side.
type OrderRepository struct {
	db *gorm.DB
}

// NewOrderRepository constructs an order writer bound to the provided DB.
func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// WithTx binds the writer to a transaction.
func (r *OrderRepository) WithTx(tx *gorm.DB) OrderWriter {
	if tx == nil {
		return r
	}
	return &OrderRepository{db: tx}
}

// Create inserts the order with its items, serial codes and payment in one
// cascading write.
func (r *OrderRepository) Create(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}
