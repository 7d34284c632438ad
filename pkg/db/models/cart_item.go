package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/binarymart/storefront-backend/pkg/enums"
)

// CartItem snapshots one catalog line inside a cart. UnitPrice is the price
// observed at add/update time; checkout recomputes it from the catalog under
// lock. The composite unique index is what merge-on-conflict writes race
// against, so concurrent adds of the same item can never fork into two rows.
type CartItem struct {
	ID            uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	CartID        uuid.UUID         `gorm:"column:cart_id;type:uuid;not null;uniqueIndex:uq_cart_items_line_item"`
	ProductLine   enums.ProductLine `gorm:"column:product_line;type:text;not null;uniqueIndex:uq_cart_items_line_item"`
	CatalogItemID uuid.UUID         `gorm:"column:catalog_item_id;type:uuid;not null;uniqueIndex:uq_cart_items_line_item"`
	UnitPrice     decimal.Decimal   `gorm:"column:unit_price;type:numeric(12,2);not null"`
	Quantity      int               `gorm:"column:quantity;not null"`
	CreatedAt     time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

func (i *CartItem) BeforeCreate(*gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
