package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/binarymart/storefront-backend/pkg/enums"
)

// Order is immutable after creation except for status transitions performed
// by admin flows. Billing fields are a snapshot taken at order time and are
// never re-derived from a live user profile.
type Order struct {
	ID              uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	BuyerUserID     *uuid.UUID        `gorm:"column:buyer_user_id;type:uuid;index"`
	BillingFullName string            `gorm:"column:billing_full_name;not null"`
	BillingEmail    string            `gorm:"column:billing_email;not null;index"`
	BillingPhone    string            `gorm:"column:billing_phone;not null"`
	BillingAddress  string            `gorm:"column:billing_address;not null"`
	Status          enums.OrderStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	Total           decimal.Decimal   `gorm:"column:total;type:numeric(12,2);not null"`
	Items           []OrderItem       `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Payment         *Payment          `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

func (o *Order) BeforeCreate(*gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}
