package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrderItemCode is one serial code per purchased unit. The unique index is
// the system-wide uniqueness guarantee; a random collision rolls back the
// owning checkout instead of corrupting an order.
type OrderItemCode struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	OrderItemID uuid.UUID `gorm:"column:order_item_id;type:uuid;not null;index"`
	Code        string    `gorm:"column:code;not null;unique"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (c *OrderItemCode) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
