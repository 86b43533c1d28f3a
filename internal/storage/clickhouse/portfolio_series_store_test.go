package clickhouse

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"walkforward-lab/internal/domain"
	"walkforward-lab/internal/storage"
)

func TestPortfolioSeriesStore_InsertBulkAndGet(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewPortfolioSeriesStore(conn)
	ctx := context.Background()

	p := domain.PortfolioPnL{
		Index:   domain.BusinessDays(domain.MustDate("2020-01-01"), 4),
		Returns: domain.Series{domain.Undefined, 0.01, domain.Undefined, -0.005},
	}
	require.NoError(t, store.InsertBulk(ctx, "run-1", p))

	got, err := store.GetByRunID(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, got.Returns, 2)
	assert.Equal(t, domain.Series{0.01, -0.005}, got.Returns)
	assert.True(t, got.Index[0].Equal(p.Index[1]))

	err = store.InsertBulk(ctx, "run-1", p)
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	_, err = store.GetByRunID(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
