package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SoftwarePlan is a purchasable subscription plan. Plans are not
// stock-limited; an optional validity window drives proration.
type SoftwarePlan struct {
	ID           uuid.UUID        `gorm:"column:id;type:uuid;primaryKey"`
	ProductName  string           `gorm:"column:product_name;not null"`
	PlanName     string           `gorm:"column:plan_name;not null"`
	DurationType string           `gorm:"column:duration_type;not null;default:'yearly'"`
	Price        decimal.Decimal  `gorm:"column:price;type:numeric(12,2);not null"`
	SpecialPrice *decimal.Decimal `gorm:"column:special_price;type:numeric(12,2)"`
	Features     *string          `gorm:"column:features"`
	StartDate    *time.Time       `gorm:"column:start_date"`
	ExpiryDate   *time.Time       `gorm:"column:expiry_date"`
	IsActive     bool             `gorm:"column:is_active;not null"`
	CreatedAt    time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *SoftwarePlan) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
