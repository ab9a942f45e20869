package ingest

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/matthieukhl/ordersight/internal/config"
	"github.com/matthieukhl/ordersight/internal/database"
	"github.com/matthieukhl/ordersight/internal/models"
	log "github.com/sirupsen/logrus"
)

// Loader bulk-loads the raw extracts into an empty store. Source data
// violates the primary keys (JD publishes duplicate order lines and user
// rows), so each keyed table keeps exactly one row per key: the first one
// encountered in the extract. Insertion is append-only and a constraint
// violation aborts the build.
type Loader struct {
	db *database.DB
}

func NewLoader(db *database.DB) *Loader {
	return &Loader{db: db}
}

// TableReport describes one loaded table.
type TableReport struct {
	Table       string `json:"table"`
	SourceFile  string `json:"source_file"`
	Rows        int    `json:"rows"`
	RowsDropped int    `json:"rows_dropped"`
}

// BuildReport describes one complete store build.
type BuildReport struct {
	RunID  string        `json:"run_ID"`
	Tables []TableReport `json:"tables"`
}

// LoadAll loads the four extracts in schema order and records provenance in
// build_info. The store must hold a fresh, empty schema.
func (l *Loader) LoadAll(cfg *config.ExtractsConfig) (*BuildReport, error) {
	report := &BuildReport{RunID: uuid.New().String()}

	loads := []struct {
		table string
		path  string
		load  func(path string) (TableReport, error)
	}{
		{"orders", cfg.Orders, l.LoadOrders},
		{"delivery", cfg.Delivery, l.LoadDeliveries},
		{"clicks", cfg.Clicks, l.LoadClicks},
		{"users", cfg.Users, l.LoadUsers},
	}

	builtAt := time.Now()
	for _, step := range loads {
		tableReport, err := step.load(step.path)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", step.table, err)
		}
		if err := l.recordBuildInfo(report.RunID, tableReport, builtAt); err != nil {
			return nil, err
		}
		report.Tables = append(report.Tables, tableReport)
	}

	return report, nil
}

// LoadOrders loads the order extract, keeping the first row per
// (order_ID, sku_ID).
func (l *Loader) LoadOrders(path string) (TableReport, error) {
	report := TableReport{Table: "orders", SourceFile: path}

	orders, err := ReadOrders(path)
	if err != nil {
		return report, err
	}

	type key struct{ orderID, skuID string }
	seen := make(map[key]bool, len(orders))
	kept := orders[:0]
	for _, o := range orders {
		k := key{o.OrderID, o.SkuID}
		if seen[k] {
			report.RowsDropped++
			continue
		}
		seen[k] = true
		kept = append(kept, o)
	}

	err = l.insert("INSERT INTO orders (order_ID, sku_ID, user_ID, order_time, quantity, final_unit_price, seq) VALUES (?, ?, ?, ?, ?, ?, ?)",
		len(kept), func(seq int) []interface{} {
			o := kept[seq]
			return []interface{}{o.OrderID, o.SkuID, o.UserID, o.OrderTime.Format(models.TimeLayout), o.Quantity, o.FinalUnitPrice, seq}
		})
	if err != nil {
		return report, err
	}

	report.Rows = len(kept)
	log.WithFields(log.Fields{"table": "orders", "rows": report.Rows, "duplicates": report.RowsDropped}).Info("extract loaded")
	return report, nil
}

// LoadDeliveries loads the delivery extract, keeping the first row per
// (order_ID, package_ID).
func (l *Loader) LoadDeliveries(path string) (TableReport, error) {
	report := TableReport{Table: "delivery", SourceFile: path}

	deliveries, err := ReadDeliveries(path)
	if err != nil {
		return report, err
	}

	type key struct{ orderID, packageID string }
	seen := make(map[key]bool, len(deliveries))
	kept := deliveries[:0]
	for _, d := range deliveries {
		k := key{d.OrderID, d.PackageID}
		if seen[k] {
			report.RowsDropped++
			continue
		}
		seen[k] = true
		kept = append(kept, d)
	}

	err = l.insert("INSERT INTO delivery (order_ID, package_ID, ship_out_time, seq) VALUES (?, ?, ?, ?)",
		len(kept), func(seq int) []interface{} {
			d := kept[seq]
			return []interface{}{d.OrderID, d.PackageID, d.ShipOutTime.Format(models.TimeLayout), seq}
		})
	if err != nil {
		return report, err
	}

	report.Rows = len(kept)
	log.WithFields(log.Fields{"table": "delivery", "rows": report.Rows, "duplicates": report.RowsDropped}).Info("extract loaded")
	return report, nil
}

// LoadClicks loads the click extract. Clicks carry no key, so nothing is
// deduplicated, but rows with the unknown-user sentinel are dropped.
func (l *Loader) LoadClicks(path string) (TableReport, error) {
	report := TableReport{Table: "clicks", SourceFile: path}

	clicks, err := ReadClicks(path)
	if err != nil {
		return report, err
	}

	kept := clicks[:0]
	for _, c := range clicks {
		if c.UserID == models.UnknownUserID {
			report.RowsDropped++
			continue
		}
		kept = append(kept, c)
	}

	err = l.insert("INSERT INTO clicks (user_ID, sku_ID, request_time, seq) VALUES (?, ?, ?, ?)",
		len(kept), func(seq int) []interface{} {
			c := kept[seq]
			return []interface{}{c.UserID, c.SkuID, c.RequestTime.Format(models.TimeLayout), seq}
		})
	if err != nil {
		return report, err
	}

	report.Rows = len(kept)
	log.WithFields(log.Fields{"table": "clicks", "rows": report.Rows, "dropped": report.RowsDropped}).Info("extract loaded")
	return report, nil
}

// LoadUsers loads the user extract, keeping the first row per user_ID. Only
// user_ID and plus go into the store; the demographic columns are read by
// the PLUS imputation model directly from the extract.
func (l *Loader) LoadUsers(path string) (TableReport, error) {
	report := TableReport{Table: "users", SourceFile: path}

	users, err := ReadUsers(path)
	if err != nil {
		return report, err
	}

	seen := make(map[string]bool, len(users))
	kept := users[:0]
	for _, u := range users {
		if seen[u.UserID] {
			report.RowsDropped++
			continue
		}
		seen[u.UserID] = true
		kept = append(kept, u)
	}

	err = l.insert("INSERT INTO users (user_ID, plus, seq) VALUES (?, ?, ?)",
		len(kept), func(seq int) []interface{} {
			u := kept[seq]
			return []interface{}{u.UserID, u.Plus, seq}
		})
	if err != nil {
		return report, err
	}

	report.Rows = len(kept)
	log.WithFields(log.Fields{"table": "users", "rows": report.Rows, "duplicates": report.RowsDropped}).Info("extract loaded")
	return report, nil
}

// insert runs n prepared inserts inside a single transaction. Any failure,
// constraint violations included, rolls the whole table back.
func (l *Loader) insert(query string, n int, args func(seq int) []interface{}) error {
	tx, err := l.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	stmt, err := tx.Prepare(query)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for seq := 0; seq < n; seq++ {
		if _, err := stmt.Exec(args(seq)...); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to insert row %d: %w", seq, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

func (l *Loader) recordBuildInfo(runID string, report TableReport, builtAt time.Time) error {
	_, err := l.db.Exec(
		"INSERT INTO build_info (run_ID, table_name, source_file, row_count, rows_dropped, built_at) VALUES (?, ?, ?, ?, ?, ?)",
		runID, report.Table, report.SourceFile, report.Rows, report.RowsDropped, builtAt.Format(models.TimeLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to record build info: %w", err)
	}
	return nil
}
