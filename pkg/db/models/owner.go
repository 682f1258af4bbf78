package models

import "github.com/google/uuid"

type Owner struct {
	ID    uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Email string    `gorm:"column:email;not null"`
}

func (Owner) TableName() string { return "owners" }
