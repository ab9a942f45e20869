package queries

import (
	"fmt"

	"github.com/matthieukhl/ordersight/internal/database"
)

// Store wraps the populated store with the fixed analytical queries. Every
// query is a pure read; an empty or missing table yields an empty result,
// never an error.
type Store struct {
	db *database.DB
}

func NewStore(db *database.DB) *Store {
	return &Store{db: db}
}

// SegmentCount is the number of users in one PLUS segment.
type SegmentCount struct {
	Plus  int `json:"plus"`
	Users int `json:"users"`
}

// SegmentCounts groups users by PLUS membership and counts each segment.
func (s *Store) SegmentCounts() ([]SegmentCount, error) {
	rows, err := s.db.Query("SELECT plus, COUNT(*) FROM users GROUP BY plus ORDER BY plus")
	if err != nil {
		if database.IsMissingTable(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to count segments: %w", err)
	}
	defer rows.Close()

	var counts []SegmentCount
	for rows.Next() {
		var c SegmentCount
		if err := rows.Scan(&c.Plus, &c.Users); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

// OrderValue is the total value of one order.
type OrderValue struct {
	OrderID string  `json:"order_ID"`
	UserID  string  `json:"user_ID"`
	Value   float64 `json:"order_value"`
}

// TopOrdersByValue sums quantity × final_unit_price per order and returns
// the limit most valuable orders, descending. Equal-valued orders keep
// extract order, which the seq column makes explicit.
func (s *Store) TopOrdersByValue(limit int) ([]OrderValue, error) {
	rows, err := s.db.Query(`
		SELECT order_ID, MIN(user_ID), SUM(quantity * final_unit_price) AS order_value
		FROM orders
		GROUP BY order_ID
		ORDER BY order_value DESC, MIN(seq)
		LIMIT ?`, limit)
	if err != nil {
		if database.IsMissingTable(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to rank orders: %w", err)
	}
	defer rows.Close()

	var values []OrderValue
	for rows.Next() {
		var v OrderValue
		if err := rows.Scan(&v.OrderID, &v.UserID, &v.Value); err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, rows.Err()
}

// SegmentAverage is the average order value within one PLUS segment.
type SegmentAverage struct {
	Plus         int     `json:"plus"`
	AverageValue float64 `json:"average_order_value"`
}

// AverageOrderValueBySegment computes per-order values, joins them to users,
// and averages within each PLUS segment.
func (s *Store) AverageOrderValueBySegment() ([]SegmentAverage, error) {
	rows, err := s.db.Query(`
		SELECT u.plus, AVG(t.order_value)
		FROM (
			SELECT order_ID, MIN(user_ID) AS user_ID, SUM(quantity * final_unit_price) AS order_value
			FROM orders
			GROUP BY order_ID
		) t
		INNER JOIN users u ON u.user_ID = t.user_ID
		GROUP BY u.plus
		ORDER BY u.plus`)
	if err != nil {
		if database.IsMissingTable(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to average order values: %w", err)
	}
	defer rows.Close()

	var averages []SegmentAverage
	for rows.Next() {
		var a SegmentAverage
		if err := rows.Scan(&a.Plus, &a.AverageValue); err != nil {
			return nil, err
		}
		averages = append(averages, a)
	}
	return averages, rows.Err()
}

// FunnelDistribution holds two parallel histograms over the same hourly
// buckets: how long users take from clicking a SKU to ordering it, and from
// clicking to the order shipping out.
type FunnelDistribution struct {
	Hours        []int `json:"hours"`
	ClickToOrder []int `json:"click_to_order"`
	ClickToShip  []int `json:"click_to_ship"`
}

// Funnel joins clicks, orders, and deliveries, and buckets the elapsed
// hours from click to order and from click to ship, rounded to the nearest
// whole hour and restricted to [0, windowHours]. Buckets with no events
// report zero.
func (s *Store) Funnel(windowHours int) (*FunnelDistribution, error) {
	dist := &FunnelDistribution{
		Hours:        make([]int, windowHours+1),
		ClickToOrder: make([]int, windowHours+1),
		ClickToShip:  make([]int, windowHours+1),
	}
	for h := 0; h <= windowHours; h++ {
		dist.Hours[h] = h
	}

	if err := s.funnelHistogram(s.db.HoursBetween("c.request_time", "o.order_time"), windowHours, dist.ClickToOrder); err != nil {
		return nil, fmt.Errorf("failed to compute click-to-order distribution: %w", err)
	}
	if err := s.funnelHistogram(s.db.HoursBetween("c.request_time", "d.ship_out_time"), windowHours, dist.ClickToShip); err != nil {
		return nil, fmt.Errorf("failed to compute click-to-ship distribution: %w", err)
	}

	return dist, nil
}

func (s *Store) funnelHistogram(hoursExpr string, windowHours int, buckets []int) error {
	query := fmt.Sprintf(`
		SELECT t.hours, COUNT(*)
		FROM (
			SELECT %s AS hours
			FROM clicks c
			INNER JOIN orders o ON c.sku_ID = o.sku_ID AND c.user_ID = o.user_ID
			INNER JOIN delivery d ON o.order_ID = d.order_ID
		) t
		WHERE t.hours BETWEEN 0 AND ?
		GROUP BY t.hours
		ORDER BY t.hours`, hoursExpr)

	rows, err := s.db.Query(query, windowHours)
	if err != nil {
		if database.IsMissingTable(err) {
			return nil
		}
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var hour, count int
		if err := rows.Scan(&hour, &count); err != nil {
			return err
		}
		if hour >= 0 && hour < len(buckets) {
			buckets[hour] = count
		}
	}
	return rows.Err()
}
