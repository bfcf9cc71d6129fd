package stats

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregator_DriverStats(t *testing.T) {
	t.Run("NoDeliveriesYieldsZeros", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		agg := NewAggregator(db)
		w := Today()

		mock.ExpectQuery(`SELECT COUNT\(\*\), COALESCE\(SUM\(delivery_fee\), 0\)`).
			WithArgs("drv-1", w.From, w.To).
			WillReturnRows(sqlmock.NewRows([]string{"count", "sum"}).AddRow(0, 0))

		s, err := agg.DriverStats(context.Background(), "drv-1", w)

		require.NoError(t, err)
		assert.Equal(t, 0, s.Deliveries)
		assert.Equal(t, int64(0), s.Earnings)
	})

	t.Run("SumsDeliveredFees", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		agg := NewAggregator(db)
		w := Today()

		mock.ExpectQuery(`SELECT COUNT\(\*\), COALESCE\(SUM\(delivery_fee\), 0\)`).
			WithArgs("drv-1", w.From, w.To).
			WillReturnRows(sqlmock.NewRows([]string{"count", "sum"}).AddRow(4, 200000))

		s, err := agg.DriverStats(context.Background(), "drv-1", w)

		require.NoError(t, err)
		assert.Equal(t, 4, s.Deliveries)
		assert.Equal(t, int64(200000), s.Earnings)
	})
}

func TestAggregator_RestaurantStats(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	agg := NewAggregator(db)
	w := Today()

	mock.ExpectQuery(`SELECT COUNT\(\*\), COALESCE\(SUM\(total\), 0\)`).
		WithArgs("rest-1", w.From, w.To).
		WillReturnRows(sqlmock.NewRows([]string{"count", "sum"}).AddRow(12, 8760000))

	s, err := agg.RestaurantStats(context.Background(), "rest-1", w)

	require.NoError(t, err)
	assert.Equal(t, 12, s.Orders)
	assert.Equal(t, int64(8760000), s.Revenue)
}

func TestToday(t *testing.T) {
	w := Today()
	now := time.Now()

	assert.Equal(t, 24*time.Hour, w.To.Sub(w.From))
	assert.False(t, now.Before(w.From))
	assert.True(t, now.Before(w.To))
	assert.Zero(t, w.From.Hour())
	assert.Zero(t, w.From.Minute())
}
