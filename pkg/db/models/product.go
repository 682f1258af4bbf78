package models

import "github.com/shopspring/decimal"

// Product mirrors the remote products table. Column names keep the
// capitalised headers the table was imported with.
type Product struct {
	ID          string          `gorm:"column:id;primaryKey"`
	Name        string          `gorm:"column:Product;not null"`
	Description string          `gorm:"column:Description"`
	Price       decimal.Decimal `gorm:"column:Price;type:numeric(10,2)"`
	Category    string          `gorm:"column:Category"`
	Subcategory string          `gorm:"column:Subcategory"`
	Stock       int             `gorm:"column:Stock"`
	Aisle       string          `gorm:"column:Aisle"`
	Popular     bool            `gorm:"column:Popular"`
	ImageURL    string          `gorm:"column:image_url"`
}

func (Product) TableName() string { return "products" }
