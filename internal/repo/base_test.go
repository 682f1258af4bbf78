package repo

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/smartcart/smartcart-backend/internal/repo/repotest"
	"github.com/smartcart/smartcart-backend/pkg/db/models"
	"github.com/stretchr/testify/require"
)

type ctxKey struct{}

func TestBaseDB_BindsContext(t *testing.T) {
	db := repotest.Open(t)
	base := NewBase(db)

	ctx := context.WithValue(context.Background(), ctxKey{}, "value")
	withCtx := base.DB(ctx)
	require.NotNil(t, withCtx.Statement)
	require.Equal(t, ctx, withCtx.Statement.Context)

	require.Same(t, db, base.DB(nil))
}

func TestBaseTx_RollsBackOnError(t *testing.T) {
	base := NewBase(repotest.Open(t))
	ctx := context.Background()

	err := base.Tx(ctx, func(tx Base) error {
		require.NoError(t, tx.DB(ctx).Create(&models.Owner{ID: uuid.New(), Email: "o@example.com"}).Error)
		return errors.New("abort")
	})
	require.Error(t, err)

	var count int64
	require.NoError(t, base.DB(ctx).Model(&models.Owner{}).Count(&count).Error)
	require.Zero(t, count)
}
