package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/binarymart/storefront-backend/pkg/enums"
)

// User is the minimal account record this core needs; credential handling
// lives in the auth collaborator.
type User struct {
	ID        uuid.UUID      `gorm:"column:id;type:uuid;primaryKey"`
	Email     string         `gorm:"column:email;not null;unique"`
	FullName  string         `gorm:"column:full_name;not null"`
	Phone     *string        `gorm:"column:phone"`
	Role      enums.UserRole `gorm:"column:role;type:text;not null;default:'customer'"`
	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
