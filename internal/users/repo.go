package users

import (
	"context"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/smartcart/smartcart-backend/internal/repo"
	"github.com/smartcart/smartcart-backend/pkg/db/models"
	"github.com/smartcart/smartcart-backend/pkg/pagination"
	"gorm.io/gorm"
)

// Repository exposes shopper persistence operations.
type Repository struct {
	repo.Base
}

// NewRepository constructs a shoppers repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// List returns up to limit shoppers, newest first, strictly after cursor.
func (r *Repository) List(ctx context.Context, cursor *pagination.Cursor, limit int) ([]models.Shopper, error) {
	q := r.DB(ctx).Model(&models.Shopper{})
	if cursor != nil {
		q = q.Where(`"timestamp" < ? OR ("timestamp" = ? AND id < ?)`, cursor.At, cursor.At, cursor.ID)
	}
	var rows []models.Shopper
	err := q.Order(`"timestamp" DESC`).Order("id DESC").Limit(limit).Find(&rows).Error
	return rows, err
}

// FindByID loads a shopper by id.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Shopper, error) {
	var row models.Shopper
	if err := r.DB(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// UpdatePreferences overwrites the dietary_preferences array.
func (r *Repository) UpdatePreferences(ctx context.Context, id uuid.UUID, prefs []string) (bool, error) {
	res := r.DB(ctx).
		Model(&models.Shopper{}).
		Where("id = ?", id).
		UpdateColumn("dietary_preferences", pq.StringArray(prefs))
	return res.RowsAffected > 0, res.Error
}

// FindByRFID resolves the shopper paired with a physical cart tag.
func (r *Repository) FindByRFID(ctx context.Context, tag string) (*models.Shopper, error) {
	var row models.Shopper
	err := r.DB(ctx).
		Where("rfid_tag = ? AND rfid_tag <> ''", tag).
		Order(`"timestamp" DESC`).
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}
