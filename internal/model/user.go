package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User represents a registered account.
type User struct {
	ID           string    `json:"id" bson:"_id" gorm:"primaryKey;size:36"`
	Username     string    `json:"username" bson:"username" gorm:"size:255;not null"`
	Email        string    `json:"email" bson:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string    `json:"-" bson:"passwordHash" gorm:"size:255;not null"` // Never expose in JSON
	Avatar       string    `json:"avatar,omitempty" bson:"avatar,omitempty" gorm:"type:longtext"`
	CreatedAt    time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt" bson:"updatedAt"`
}

// BeforeCreate sets a UUID before creating the record.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// UserUpdate is a partial profile update. Nil fields are left unchanged.
type UserUpdate struct {
	Username *string `json:"username" validate:"omitempty,min=1,max=255"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Password *string `json:"password" validate:"omitempty,min=6"`
	Avatar   *string `json:"avatar"`
}
