package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CartridgeProduct is a stock-bound physical good. Quantity is the remaining
// sellable stock and is only mutated under a row lock.
type CartridgeProduct struct {
	ID           uuid.UUID        `gorm:"column:id;type:uuid;primaryKey"`
	ProductName  string           `gorm:"column:product_name;not null"`
	ModelNumber  string           `gorm:"column:model_number;not null"`
	Description  *string          `gorm:"column:description"`
	Price        decimal.Decimal  `gorm:"column:price;type:numeric(12,2);not null"`
	SpecialPrice *decimal.Decimal `gorm:"column:special_price;type:numeric(12,2)"`
	Quantity     int              `gorm:"column:quantity;not null;default:0"`
	IsActive     bool             `gorm:"column:is_active;not null"`
	CreatedAt    time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *CartridgeProduct) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
