package queries

import (
	"database/sql"
	"fmt"

	"github.com/matthieukhl/ordersight/internal/database"
)

// Descriptive order statistics, computed in SQL over the loaded store.

// MeanSKUsPerUser is the mean number of order line items per user.
func (s *Store) MeanSKUsPerUser() (float64, error) {
	var mean sql.NullFloat64
	err := s.db.QueryRow(`
		SELECT AVG(n) FROM (
			SELECT COUNT(*) AS n FROM orders GROUP BY user_ID
		) t`).Scan(&mean)
	if err != nil {
		if database.IsMissingTable(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to compute mean SKUs per user: %w", err)
	}
	return mean.Float64, nil
}

// MaxOrdersPerUser is the largest number of distinct orders placed by any
// single user.
func (s *Store) MaxOrdersPerUser() (int, error) {
	var max sql.NullInt64
	err := s.db.QueryRow(`
		SELECT MAX(n) FROM (
			SELECT COUNT(DISTINCT order_ID) AS n FROM orders GROUP BY user_ID
		) t`).Scan(&max)
	if err != nil {
		if database.IsMissingTable(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to compute max orders per user: %w", err)
	}
	return int(max.Int64), nil
}

// OrderLine is one line item of an order, with its extended value.
type OrderLine struct {
	SkuID     string  `json:"sku_ID"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"final_unit_price"`
	Value     float64 `json:"value"`
}

// ExpensiveOrder is the most valuable order with its line items.
type ExpensiveOrder struct {
	OrderID string      `json:"order_ID"`
	UserID  string      `json:"user_ID"`
	Value   float64     `json:"order_value"`
	Lines   []OrderLine `json:"lines"`
}

// MostExpensiveOrder returns the single most valuable order, or nil when
// the store holds no orders.
func (s *Store) MostExpensiveOrder() (*ExpensiveOrder, error) {
	top, err := s.TopOrdersByValue(1)
	if err != nil {
		return nil, err
	}
	if len(top) == 0 {
		return nil, nil
	}

	order := &ExpensiveOrder{OrderID: top[0].OrderID, UserID: top[0].UserID, Value: top[0].Value}

	rows, err := s.db.Query(`
		SELECT sku_ID, quantity, final_unit_price
		FROM orders
		WHERE order_ID = ?
		ORDER BY seq`, order.OrderID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch order lines: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var line OrderLine
		if err := rows.Scan(&line.SkuID, &line.Quantity, &line.UnitPrice); err != nil {
			return nil, err
		}
		line.Value = float64(line.Quantity) * line.UnitPrice
		order.Lines = append(order.Lines, line)
	}
	return order, rows.Err()
}

// TableProvenance is one build_info row.
type TableProvenance struct {
	RunID       string `json:"run_ID"`
	Table       string `json:"table"`
	SourceFile  string `json:"source_file"`
	Rows        int    `json:"rows"`
	RowsDropped int    `json:"rows_dropped"`
	BuiltAt     string `json:"built_at"`
}

// BuildInfo reports when and from which files the store was built.
func (s *Store) BuildInfo() ([]TableProvenance, error) {
	rows, err := s.db.Query(`
		SELECT run_ID, table_name, source_file, row_count, rows_dropped, built_at
		FROM build_info
		ORDER BY table_name`)
	if err != nil {
		if database.IsMissingTable(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read build info: %w", err)
	}
	defer rows.Close()

	var info []TableProvenance
	for rows.Next() {
		var p TableProvenance
		if err := rows.Scan(&p.RunID, &p.Table, &p.SourceFile, &p.Rows, &p.RowsDropped, &p.BuiltAt); err != nil {
			return nil, err
		}
		info = append(info, p)
	}
	return info, rows.Err()
}
