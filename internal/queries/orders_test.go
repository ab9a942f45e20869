package queries

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMeanSKUsPerUser(t *testing.T) {
	db, store := newTestStore(t)
	seedOrders(t, db)

	// U1 bought two line items, U2 one.
	mean, err := store.MeanSKUsPerUser()
	require.NoError(t, err)
	assert.InDelta(t, 1.5, mean, 1e-9)
}

func TestMaxOrdersPerUser(t *testing.T) {
	db, store := newTestStore(t)
	seedOrders(t, db)
	seed(t, db,
		`INSERT INTO orders VALUES ('O000000003','S000000001','U000000001','2020-01-02 09:00:00',1,1.0,3)`,
	)

	max, err := store.MaxOrdersPerUser()
	require.NoError(t, err)
	assert.Equal(t, 2, max)
}

func TestMostExpensiveOrder(t *testing.T) {
	db, store := newTestStore(t)
	seedOrders(t, db)

	order, err := store.MostExpensiveOrder()
	require.NoError(t, err)
	require.NotNil(t, order)

	assert.Equal(t, "O000000002", order.OrderID)
	assert.Equal(t, "U000000002", order.UserID)
	assert.Equal(t, 100.0, order.Value)
	require.Len(t, order.Lines, 1)
	assert.Equal(t, "S000000001", order.Lines[0].SkuID)
}

func TestMostExpensiveOrderEmptyStore(t *testing.T) {
	_, store := newTestStore(t)

	order, err := store.MostExpensiveOrder()
	require.NoError(t, err)
	assert.Nil(t, order)
}

func TestDescriptiveStatsOnEmptyStore(t *testing.T) {
	_, store := newTestStore(t)

	mean, err := store.MeanSKUsPerUser()
	require.NoError(t, err)
	assert.Zero(t, mean)

	max, err := store.MaxOrdersPerUser()
	require.NoError(t, err)
	assert.Zero(t, max)

	info, err := store.BuildInfo()
	require.NoError(t, err)
	assert.Empty(t, info)
}
