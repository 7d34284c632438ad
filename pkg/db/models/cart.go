package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/binarymart/storefront-backend/pkg/enums"
)

// Cart holds a user's in-progress selection. The partial unique index keeps
// at most one active cart per user at the schema level; concurrent creates
// surface as unique violations and are resolved by re-selecting.
type Cart struct {
	ID        uuid.UUID        `gorm:"column:id;type:uuid;primaryKey"`
	UserID    uuid.UUID        `gorm:"column:user_id;type:uuid;not null;uniqueIndex:uq_carts_user_active,where:status = 'active'"`
	Status    enums.CartStatus `gorm:"column:status;type:text;not null;default:'active'"`
	Items     []CartItem       `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

func (c *Cart) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
