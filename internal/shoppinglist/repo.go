package shoppinglist

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/smartcart/smartcart-backend/internal/repo"
	"github.com/smartcart/smartcart-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository persists shopping_list rows.
type Repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// Exists reports whether the shopper has at least one row for ref.
func (r *Repository) Exists(ctx context.Context, shopperID uuid.UUID, ref string) (bool, error) {
	var count int64
	err := r.DB(ctx).Model(&models.ShoppingListItem{}).
		Where("shopper_id = ? AND product_id = ?", shopperID, strings.TrimSpace(ref)).
		Limit(1).
		Count(&count).Error
	return count > 0, err
}

func (r *Repository) Insert(ctx context.Context, shopperID uuid.UUID, ref string, scanned bool) (*models.ShoppingListItem, error) {
	row := &models.ShoppingListItem{
		ShopperID: shopperID,
		ProductID: strings.TrimSpace(ref),
		Scanned:   scanned,
	}
	if err := r.DB(ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

// DeleteByRef removes every row of the shopper for ref and returns them.
func (r *Repository) DeleteByRef(ctx context.Context, shopperID uuid.UUID, ref string) ([]models.ShoppingListItem, error) {
	return r.deleteWhere(ctx, "shopper_id = ? AND product_id = ?", shopperID, strings.TrimSpace(ref))
}

// DeleteAll empties the shopper's list and returns the removed rows.
func (r *Repository) DeleteAll(ctx context.Context, shopperID uuid.UUID) ([]models.ShoppingListItem, error) {
	return r.deleteWhere(ctx, "shopper_id = ?", shopperID)
}

func (r *Repository) deleteWhere(ctx context.Context, query string, args ...any) ([]models.ShoppingListItem, error) {
	var rows []models.ShoppingListItem
	err := r.Tx(ctx, func(tx repo.Base) error {
		if err := tx.DB(ctx).Where(query, args...).Order("id ASC").Find(&rows).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		ids := make([]int64, 0, len(rows))
		for _, row := range rows {
			ids = append(ids, row.ID)
		}
		return tx.DB(ctx).Where("id IN ?", ids).Delete(&models.ShoppingListItem{}).Error
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// List returns the shopper's rows in insertion order with their products.
func (r *Repository) List(ctx context.Context, shopperID uuid.UUID) ([]models.ShoppingListItem, error) {
	var rows []models.ShoppingListItem
	err := r.DB(ctx).
		Preload("Product").
		Where("shopper_id = ?", shopperID).
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
