package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MaxImageSize is the largest accepted image upload in bytes.
const MaxImageSize = 2 << 20

// Image is an uploaded listing or avatar picture.
type Image struct {
	ID          string    `json:"id" gorm:"primaryKey;size:36"`
	Filename    string    `json:"filename" gorm:"size:255;not null"`
	ContentType string    `json:"contentType" gorm:"size:64;not null"`
	Size        int64     `json:"size" gorm:"not null"`
	OwnerRef    string    `json:"ownerRef" gorm:"size:36;not null;index"`
	Data        []byte    `json:"-" gorm:"type:longblob;not null"`
	CreatedAt   time.Time `json:"createdAt"`
}

// BeforeCreate sets a UUID before creating the record.
func (i *Image) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}
