package catalog

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/smartcart/smartcart-backend/pkg/db"
	"github.com/smartcart/smartcart-backend/pkg/db/models"
	pkgerrors "github.com/smartcart/smartcart-backend/pkg/errors"
	"github.com/smartcart/smartcart-backend/pkg/logger"
)

// Filter narrows a catalog listing. Empty fields match everything.
type Filter struct {
	Category    string
	Subcategory string
	Query       string
	PopularOnly bool
}

// Service exposes the storefront catalog.
type Service interface {
	List(ctx context.Context, filter Filter) []Product
	Get(ctx context.Context, id string) (Product, error)
	Categories() []Category
	ProductByRef(ctx context.Context, ref string) (Product, error)
	Remote(ctx context.Context) ([]Product, error)
	Seed(ctx context.Context) (int, error)
}

type service struct {
	repo     *Repository
	products []Product
	logg     *logger.Logger
}

// NewService builds the catalog over the static products, with repo as the
// fallback for references only known to the remote table.
func NewService(repo *Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{repo: repo, products: Static(), logg: logg}, nil
}

func (s *service) List(_ context.Context, filter Filter) []Product {
	query := strings.ToLower(strings.TrimSpace(filter.Query))
	out := make([]Product, 0, len(s.products))
	for _, p := range s.products {
		if filter.Category != "" && !strings.EqualFold(p.Category, filter.Category) {
			continue
		}
		if filter.Subcategory != "" && !strings.EqualFold(p.Subcategory, filter.Subcategory) {
			continue
		}
		if filter.PopularOnly && !p.Popular {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(p.Name), query) &&
			!strings.Contains(strings.ToLower(p.Description), query) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func (s *service) Get(ctx context.Context, id string) (Product, error) {
	for _, p := range s.products {
		if p.ID == strings.TrimSpace(id) {
			return p, nil
		}
	}
	return Product{}, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
}

func (s *service) Categories() []Category {
	return Taxonomy()
}

// ProductByRef resolves a shopping list reference (barcode or id). The static
// catalog answers first; unknown references are looked up remotely.
func (s *service) ProductByRef(ctx context.Context, ref string) (Product, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return Product{}, pkgerrors.New(pkgerrors.CodeValidation, "product reference is required")
	}
	for _, p := range s.products {
		if p.Matches(ref) {
			return p, nil
		}
	}
	row, err := s.repo.FindByID(ctx, ref)
	if err != nil {
		if db.IsNotFound(err) {
			return Product{}, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "product not found")
		}
		return Product{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return FromModel(*row), nil
}

// Remote returns the products table, or the static catalog while the table
// is still empty.
func (s *service) Remote(ctx context.Context) ([]Product, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	if len(rows) == 0 {
		return Static(), nil
	}
	out := make([]Product, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromModel(row))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Seed upserts the static catalog into the products table keyed by barcode.
func (s *service) Seed(ctx context.Context) (int, error) {
	rows := make([]models.Product, 0, len(s.products))
	for _, p := range s.products {
		rows = append(rows, ToModel(p))
	}
	if err := s.repo.Upsert(ctx, rows); err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "seed products")
	}
	s.logg.Info(ctx, fmt.Sprintf("catalog seeded with %d products", len(rows)))
	return len(rows), nil
}
