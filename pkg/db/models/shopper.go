package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Shopper is a storefront customer. RFIDTag is empty until a physical cart is paired.
type Shopper struct {
	ID                 uuid.UUID      `gorm:"column:id;type:uuid;primaryKey"`
	Email              string         `gorm:"column:email;not null"`
	RFIDTag            string         `gorm:"column:rfid_tag;not null;default:''"`
	DietaryPreferences pq.StringArray `gorm:"column:dietary_preferences;type:text[]"`
	Username           string         `gorm:"column:username;not null;default:''"`
	Timestamp          time.Time      `gorm:"column:timestamp;not null"`
}

func (Shopper) TableName() string { return "shoppers" }
