package shoppinglist

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/smartcart/smartcart-backend/internal/repo/repotest"
	"github.com/smartcart/smartcart-backend/pkg/db/models"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedProducts(t *testing.T, conn *gorm.DB, ids ...string) {
	t.Helper()
	for _, id := range ids {
		require.NoError(t, conn.Create(&models.Product{ID: id, Name: "Product " + id, Price: decimal.NewFromInt(2), Stock: 10}).Error)
	}
}

func TestRepositoryLifecycle(t *testing.T) {
	conn := repotest.Open(t)
	seedProducts(t, conn, "0001", "0002")
	repo := NewRepository(conn)
	ctx := context.Background()
	shopper, other := uuid.New(), uuid.New()

	ok, err := repo.Exists(ctx, shopper, "0001")
	require.NoError(t, err)
	require.False(t, ok)

	first, err := repo.Insert(ctx, shopper, "0001", false)
	require.NoError(t, err)
	require.NotZero(t, first.ID)
	_, err = repo.Insert(ctx, shopper, "0002", true)
	require.NoError(t, err)
	_, err = repo.Insert(ctx, shopper, "0001", true)
	require.NoError(t, err)
	_, err = repo.Insert(ctx, other, "0001", false)
	require.NoError(t, err)

	ok, err = repo.Exists(ctx, shopper, "0001")
	require.NoError(t, err)
	require.True(t, ok)

	rows, err := repo.List(ctx, shopper)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	require.Equal(t, "0001", rows[0].ProductID)
	require.NotNil(t, rows[0].Product)
	require.Equal(t, "Product 0001", rows[0].Product.Name)

	deleted, err := repo.DeleteByRef(ctx, shopper, "0001")
	require.NoError(t, err)
	require.Len(t, deleted, 2)

	rows, err = repo.List(ctx, shopper)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	cleared, err := repo.DeleteAll(ctx, shopper)
	require.NoError(t, err)
	require.Len(t, cleared, 1)

	none, err := repo.DeleteAll(ctx, shopper)
	require.NoError(t, err)
	require.Empty(t, none)

	otherRows, err := repo.List(ctx, other)
	require.NoError(t, err)
	require.Len(t, otherRows, 1)
}

func TestRepositoryListWithoutProductRow(t *testing.T) {
	conn := repotest.Open(t)
	repo := NewRepository(conn)
	ctx := context.Background()
	shopper := uuid.New()

	_, err := repo.Insert(ctx, shopper, "ghost", false)
	require.NoError(t, err)

	rows, err := repo.List(ctx, shopper)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Nil(t, rows[0].Product)
}
