package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/binarymart/storefront-backend/pkg/enums"
)

// Payment records how an order was paid. In this system payments settle
// synchronously at order creation; Status is terminal from the start.
type Payment struct {
	ID          uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	OrderID     uuid.UUID           `gorm:"column:order_id;type:uuid;not null;index"`
	PaymentType enums.PaymentType   `gorm:"column:payment_type;type:text;not null"`
	Reference   *string             `gorm:"column:reference"`
	Amount      decimal.Decimal     `gorm:"column:amount;type:numeric(12,2);not null"`
	Status      enums.PaymentStatus `gorm:"column:status;type:text;not null"`
	PaidAt      *time.Time          `gorm:"column:paid_at"`
	CreatedAt   time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *Payment) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
