package users

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/smartcart/smartcart-backend/pkg/db"
	"github.com/smartcart/smartcart-backend/pkg/db/models"
	"github.com/smartcart/smartcart-backend/pkg/enums"
	pkgerrors "github.com/smartcart/smartcart-backend/pkg/errors"
	"github.com/smartcart/smartcart-backend/pkg/pagination"
)

type repository interface {
	List(ctx context.Context, cursor *pagination.Cursor, limit int) ([]models.Shopper, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Shopper, error)
	UpdatePreferences(ctx context.Context, id uuid.UUID, prefs []string) (bool, error)
}

// Service serves the owner's user list and shopper preferences.
type Service interface {
	ListShoppers(ctx context.Context, params pagination.Params) (pagination.Page[ShopperDTO], error)
	Get(ctx context.Context, id uuid.UUID) (*ShopperDTO, error)
	// Preferences returns nil for a shopper row that does not exist yet.
	Preferences(ctx context.Context, id uuid.UUID) ([]enums.DietaryTag, error)
	UpdatePreferences(ctx context.Context, id uuid.UUID, prefs []string) ([]enums.DietaryTag, error)
}

type service struct {
	repo repository
}

func NewService(repo repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("shoppers repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) ListShoppers(ctx context.Context, params pagination.Params) (pagination.Page[ShopperDTO], error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return pagination.Page[ShopperDTO]{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	rows, err := s.repo.List(ctx, cursor, pagination.LimitWithBuffer(params.Limit))
	if err != nil {
		return pagination.Page[ShopperDTO]{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list shoppers")
	}

	items := make([]ShopperDTO, 0, len(rows))
	for i := range rows {
		items = append(items, *FromModel(&rows[i]))
	}
	page := pagination.Trim(items, params.Limit, func(d ShopperDTO) pagination.Cursor {
		return pagination.Cursor{At: d.Timestamp, ID: d.ID}
	})
	if page.Items == nil {
		page.Items = []ShopperDTO{}
	}
	return page, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*ShopperDTO, error) {
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "shopper not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "get shopper")
	}
	return FromModel(row), nil
}

func (s *service) Preferences(ctx context.Context, id uuid.UUID) ([]enums.DietaryTag, error) {
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load preferences")
	}
	return knownTags(row.DietaryPreferences), nil
}

func (s *service) UpdatePreferences(ctx context.Context, id uuid.UUID, prefs []string) ([]enums.DietaryTag, error) {
	tags, err := ParsePreferences(prefs)
	if err != nil {
		return nil, err
	}
	values := make([]string, len(tags))
	for i, t := range tags {
		values[i] = t.String()
	}
	found, err := s.repo.UpdatePreferences(ctx, id, values)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update preferences")
	}
	if !found {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "shopper not found")
	}
	return tags, nil
}

// ParsePreferences validates raw tags, keeping caller order and dropping repeats.
func ParsePreferences(raw []string) ([]enums.DietaryTag, error) {
	tags := make([]enums.DietaryTag, 0, len(raw))
	seen := make(map[enums.DietaryTag]struct{}, len(raw))
	var invalid []string
	for _, v := range raw {
		tag, err := enums.ParseDietaryTag(v)
		if err != nil {
			invalid = append(invalid, strings.TrimSpace(v))
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}
	if len(invalid) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown dietary preference").
			WithDetails(map[string]any{"invalid": invalid})
	}
	return tags, nil
}
