package queries

import (
	"path/filepath"
	"testing"

	"github.com/matthieukhl/ordersight/internal/config"
	"github.com/matthieukhl/ordersight/internal/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*database.DB, *Store) {
	t.Helper()

	cfg := &config.StoreConfig{
		Driver:       database.DriverSQLite,
		Path:         filepath.Join(t.TempDir(), "store.db"),
		MaxOpenConns: 1,
	}
	db, err := database.Rebuild(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, NewStore(db)
}

func seed(t *testing.T, db *database.DB, statements ...string) {
	t.Helper()
	for _, stmt := range statements {
		_, err := db.Exec(stmt)
		require.NoError(t, err)
	}
}

// The scenario from the delivery funnel write-up: two orders, one of them
// with two line items.
func seedOrders(t *testing.T, db *database.DB) {
	seed(t, db,
		`INSERT INTO orders VALUES ('O000000001','S000000001','U000000001','2020-01-01 09:00:00',1,10.0,0)`,
		`INSERT INTO orders VALUES ('O000000001','S000000002','U000000001','2020-01-01 09:00:00',2,5.0,1)`,
		`INSERT INTO orders VALUES ('O000000002','S000000001','U000000002','2020-01-01 10:00:00',1,100.0,2)`,
	)
}

func TestSegmentCountsSumToUserTotal(t *testing.T) {
	db, store := newTestStore(t)
	seed(t, db,
		`INSERT INTO users VALUES ('U000000001',0,0)`,
		`INSERT INTO users VALUES ('U000000002',1,1)`,
		`INSERT INTO users VALUES ('U000000003',1,2)`,
	)

	counts, err := store.SegmentCounts()
	require.NoError(t, err)
	require.Len(t, counts, 2)

	total := 0
	for _, c := range counts {
		total += c.Users
	}
	assert.Equal(t, 3, total)
	assert.Equal(t, SegmentCount{Plus: 0, Users: 1}, counts[0])
	assert.Equal(t, SegmentCount{Plus: 1, Users: 2}, counts[1])
}

func TestTopOrdersByValue(t *testing.T) {
	db, store := newTestStore(t)
	seedOrders(t, db)

	top, err := store.TopOrdersByValue(5)
	require.NoError(t, err)
	require.Len(t, top, 2)

	assert.Equal(t, "O000000002", top[0].OrderID)
	assert.Equal(t, 100.0, top[0].Value)
	assert.Equal(t, "O000000001", top[1].OrderID)
	assert.Equal(t, 20.0, top[1].Value)

	for i := 1; i < len(top); i++ {
		assert.GreaterOrEqual(t, top[i-1].Value, top[i].Value, "results must be sorted by descending value")
	}
}

func TestTopOrdersTieBreakPreservesInputOrder(t *testing.T) {
	db, store := newTestStore(t)
	seed(t, db,
		`INSERT INTO orders VALUES ('O000000009','S000000001','U000000001','2020-01-01 09:00:00',1,50.0,0)`,
		`INSERT INTO orders VALUES ('O000000001','S000000001','U000000002','2020-01-01 09:00:00',1,50.0,1)`,
	)

	top, err := store.TopOrdersByValue(2)
	require.NoError(t, err)
	require.Len(t, top, 2)

	// Equal values: the row loaded first wins, not the lexicographically
	// smaller order_ID.
	assert.Equal(t, "O000000009", top[0].OrderID)
	assert.Equal(t, "O000000001", top[1].OrderID)
}

func TestAverageOrderValueBySegment(t *testing.T) {
	db, store := newTestStore(t)
	seedOrders(t, db)
	seed(t, db,
		`INSERT INTO users VALUES ('U000000001',0,0)`,
		`INSERT INTO users VALUES ('U000000002',1,1)`,
	)

	averages, err := store.AverageOrderValueBySegment()
	require.NoError(t, err)
	require.Len(t, averages, 2)

	assert.Equal(t, 0, averages[0].Plus)
	assert.InDelta(t, 20.0, averages[0].AverageValue, 1e-9)
	assert.Equal(t, 1, averages[1].Plus)
	assert.InDelta(t, 100.0, averages[1].AverageValue, 1e-9)
}

func TestFunnelDistribution(t *testing.T) {
	db, store := newTestStore(t)
	seedOrders(t, db)
	seed(t, db,
		`INSERT INTO delivery VALUES ('O000000001','P000000001','2020-01-01 13:00:00',0)`,
		`INSERT INTO delivery VALUES ('O000000002','P000000002','2020-01-02 12:00:00',1)`,
		// 1h before the O1 order, 5h before its ship-out.
		`INSERT INTO clicks VALUES ('U000000001','S000000001','2020-01-01 08:00:00',0)`,
		// 4.7h before the O2 order (rounds to 5); 30.7h before its ship-out,
		// outside the window.
		`INSERT INTO clicks VALUES ('U000000002','S000000001','2020-01-01 05:20:00',1)`,
		// After the O1 order: negative click-to-order delta, excluded from
		// that histogram, but still 3h before the ship-out.
		`INSERT INTO clicks VALUES ('U000000001','S000000001','2020-01-01 10:00:00',2)`,
	)

	dist, err := store.Funnel(24)
	require.NoError(t, err)
	require.Len(t, dist.Hours, 25)

	assert.Equal(t, 1, dist.ClickToOrder[1])
	assert.Equal(t, 1, dist.ClickToOrder[5])
	assert.Equal(t, 1, dist.ClickToShip[3])
	assert.Equal(t, 1, dist.ClickToShip[5])

	orderTotal, shipTotal := 0, 0
	for i := range dist.Hours {
		orderTotal += dist.ClickToOrder[i]
		shipTotal += dist.ClickToShip[i]
	}
	assert.Equal(t, 2, orderTotal)
	assert.Equal(t, 2, shipTotal)
}

func TestQueriesOnEmptyStore(t *testing.T) {
	_, store := newTestStore(t)

	counts, err := store.SegmentCounts()
	require.NoError(t, err)
	assert.Empty(t, counts)

	top, err := store.TopOrdersByValue(5)
	require.NoError(t, err)
	assert.Empty(t, top)

	averages, err := store.AverageOrderValueBySegment()
	require.NoError(t, err)
	assert.Empty(t, averages)

	dist, err := store.Funnel(24)
	require.NoError(t, err)
	for i := range dist.Hours {
		assert.Zero(t, dist.ClickToOrder[i])
		assert.Zero(t, dist.ClickToShip[i])
	}
}

func TestQueriesOnMissingTables(t *testing.T) {
	db, store := newTestStore(t)
	seed(t, db, "DROP TABLE users", "DROP TABLE orders")

	counts, err := store.SegmentCounts()
	require.NoError(t, err)
	assert.Empty(t, counts)

	top, err := store.TopOrdersByValue(5)
	require.NoError(t, err)
	assert.Empty(t, top)
}
