package roles

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/smartcart/smartcart-backend/internal/repo"
	"github.com/smartcart/smartcart-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository is the gorm-backed Directory over owners and shoppers.
type Repository struct {
	repo.Base
}

var _ Directory = (*Repository)(nil)

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

func (r *Repository) FindOwner(ctx context.Context, id uuid.UUID, email string) (bool, error) {
	q := r.DB(ctx).Model(&models.Owner{})
	if email = strings.ToLower(strings.TrimSpace(email)); email != "" {
		q = q.Where("id = ? OR lower(email) = ?", id, email)
	} else {
		q = q.Where("id = ?", id)
	}
	var count int64
	err := q.Count(&count).Error
	return count > 0, err
}

func (r *Repository) FindShopper(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	err := r.DB(ctx).Model(&models.Shopper{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func (r *Repository) ProvisionShopper(ctx context.Context, seed ShopperSeed) error {
	row := models.Shopper{
		ID:                 seed.ID,
		Email:              seed.Email,
		RFIDTag:            "",
		DietaryPreferences: pq.StringArray{},
		Username:           seed.Username,
		Timestamp:          seed.Timestamp,
	}
	return r.DB(ctx).Create(&row).Error
}
