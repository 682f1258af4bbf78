package catalog

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/smartcart/smartcart-backend/internal/repo/repotest"
	"github.com/smartcart/smartcart-backend/pkg/db/models"
	pkgerrors "github.com/smartcart/smartcart-backend/pkg/errors"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (Service, *Repository) {
	t.Helper()
	repo := NewRepository(repotest.Open(t))
	svc, err := NewService(repo, nil)
	require.NoError(t, err)
	return svc, repo
}

func TestNewServiceRequiresRepository(t *testing.T) {
	_, err := NewService(nil, nil)
	require.Error(t, err)
}

func TestListFilters(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	all := svc.List(ctx, Filter{})
	require.Len(t, all, len(Static()))

	produce := svc.List(ctx, Filter{Category: "produce"})
	require.NotEmpty(t, produce)
	for _, p := range produce {
		require.Equal(t, "Produce", p.Category)
	}

	fruits := svc.List(ctx, Filter{Category: "Produce", Subcategory: "Fruits", PopularOnly: true})
	for _, p := range fruits {
		require.True(t, p.Popular)
		require.Equal(t, "Fruits", p.Subcategory)
	}

	milk := svc.List(ctx, Filter{Query: "milk"})
	require.Len(t, milk, 2)
}

func TestGetAndProductByRef(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	p, err := svc.Get(ctx, "2")
	require.NoError(t, err)
	require.Equal(t, "Avocado", p.Name)

	_, err = svc.Get(ctx, "nope")
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	byBarcode, err := svc.ProductByRef(ctx, "0002")
	require.NoError(t, err)
	require.Equal(t, "2", byBarcode.ID)

	require.NoError(t, repo.Upsert(ctx, []models.Product{{ID: "9999", Name: "Kombucha", Price: decimal.RequireFromString("3.50"), Stock: 3}}))
	remote, err := svc.ProductByRef(ctx, "9999")
	require.NoError(t, err)
	require.Equal(t, "Kombucha", remote.Name)
	require.Equal(t, "9999", remote.BarcodeID)

	_, err = svc.ProductByRef(ctx, "missing")
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	_, err = svc.ProductByRef(ctx, " ")
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestSeedAndRemote(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	fallback, err := svc.Remote(ctx)
	require.NoError(t, err)
	require.Len(t, fallback, len(Static()))

	n, err := svc.Seed(ctx)
	require.NoError(t, err)
	require.Equal(t, len(Static()), n)

	// seeding twice updates in place
	_, err = svc.Seed(ctx)
	require.NoError(t, err)

	rows, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, rows, len(Static()))

	remote, err := svc.Remote(ctx)
	require.NoError(t, err)
	require.Len(t, remote, len(Static()))
	require.Equal(t, remote[0].ID, remote[0].BarcodeID)
}
