package models

import (
	"time"

	"github.com/google/uuid"
)

// ShoppingListItem is one remote shopping list row. ProductID holds the
// product's barcode reference; the row carries presence, not quantity.
type ShoppingListItem struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement"`
	ShopperID uuid.UUID `gorm:"column:shopper_id;type:uuid;not null"`
	ProductID string    `gorm:"column:product_id;not null"`
	Scanned   bool      `gorm:"column:scanned;not null;default:false"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	Product   *Product  `gorm:"foreignKey:ProductID;references:ID"`
}

func (ShoppingListItem) TableName() string { return "shopping_list" }
