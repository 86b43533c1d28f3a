package clickhouse

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"walkforward-lab/internal/domain"
	"walkforward-lab/internal/storage"
)

func testPoints(prices ...float64) []domain.PricePoint {
	dates := domain.BusinessDays(domain.MustDate("2020-01-01"), len(prices))
	out := make([]domain.PricePoint, len(prices))
	for i, p := range prices {
		out[i] = domain.PricePoint{Date: dates[i], Price: p}
	}
	return out
}

func TestPriceSeriesStore_InsertBulkAndGet(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewPriceSeriesStore(conn)
	ctx := context.Background()

	points := testPoints(100, 101.5, 99.25)
	require.NoError(t, store.InsertBulk(ctx, "SPX", points))

	ps, err := store.GetBySymbol(ctx, "SPX")
	require.NoError(t, err)
	require.Equal(t, 3, ps.Len())
	assert.Equal(t, domain.Series{100, 101.5, 99.25}, ps.Prices)
	for i := range points {
		assert.True(t, ps.Index[i].Equal(points[i].Date), "date %d", i)
	}

	ranged, err := store.GetByDateRange(ctx, "SPX", points[1].Date, points[2].Date)
	require.NoError(t, err)
	assert.Equal(t, 2, ranged.Len())

	symbols, err := store.ListSymbols(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"SPX"}, symbols)
}

func TestPriceSeriesStore_Duplicates(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewPriceSeriesStore(conn)
	ctx := context.Background()

	points := testPoints(100, 101)
	require.NoError(t, store.InsertBulk(ctx, "SPX", points))

	err := store.InsertBulk(ctx, "SPX", points[1:])
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	intra := testPoints(1, 2)
	intra[1].Date = intra[0].Date
	err = store.InsertBulk(ctx, "NDX", intra)
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestPriceSeriesStore_NotFound(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := NewPriceSeriesStore(conn).GetBySymbol(context.Background(), "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
