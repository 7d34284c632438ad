package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/binarymart/storefront-backend/pkg/enums"
)

// OrderItem is one purchased line. UnitPrice is the authoritative price
// computed server-side at commit time, never the client's number.
type OrderItem struct {
	ID            uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	OrderID       uuid.UUID         `gorm:"column:order_id;type:uuid;not null;index"`
	ProductLine   enums.ProductLine `gorm:"column:product_line;type:text;not null"`
	CatalogItemID uuid.UUID         `gorm:"column:catalog_item_id;type:uuid;not null"`
	ItemName      string            `gorm:"column:item_name;not null"`
	UnitPrice     decimal.Decimal   `gorm:"column:unit_price;type:numeric(12,2);not null"`
	Quantity      int               `gorm:"column:quantity;not null"`
	Codes         []OrderItemCode   `gorm:"foreignKey:OrderItemID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

func (i *OrderItem) BeforeCreate(*gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
