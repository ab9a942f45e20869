package models

import "time"

// IDLength is the fixed width of every JD identifier (order, sku, user,
// package). The store enforces it with CHECK constraints.
const IDLength = 10

// TimeLayout is the timestamp format used by the JD extracts and by the
// datetime columns of the store.
const TimeLayout = "2006-01-02 15:04:05"

// UnknownUserID marks click events with no identifiable user in the raw
// extract. The loader drops these rows before insertion.
const UnknownUserID = "-"

// Order is a single line item of an order. An order containing several SKUs
// appears as several rows sharing the same OrderID, so the record is keyed
// by (OrderID, SkuID).
type Order struct {
	OrderID        string    `json:"order_ID" db:"order_ID"`
	SkuID          string    `json:"sku_ID" db:"sku_ID"`
	UserID         string    `json:"user_ID" db:"user_ID"`
	OrderTime      time.Time `json:"order_time" db:"order_time"`
	Quantity       int       `json:"quantity" db:"quantity"`
	FinalUnitPrice float64   `json:"final_unit_price" db:"final_unit_price"`

	// Promise is the delivery-commitment code from the raw extract. The
	// store schema does not keep it; the delivery analysis reads it straight
	// from the extract.
	Promise string `json:"promise,omitempty" db:"-"`
}

// Value is the amount paid for this line item.
func (o Order) Value() float64 {
	return float64(o.Quantity) * o.FinalUnitPrice
}

// Delivery is one shipped package. An order may ship as several packages,
// so the record is keyed by (OrderID, PackageID).
type Delivery struct {
	OrderID     string    `json:"order_ID" db:"order_ID"`
	PackageID   string    `json:"package_ID" db:"package_ID"`
	ShipOutTime time.Time `json:"ship_out_time" db:"ship_out_time"`

	// ArrTime is the package arrival time from the raw extract, used by the
	// delivery analysis. The store keeps ship_out_time only.
	ArrTime time.Time `json:"arr_time,omitempty" db:"-"`
}

// Click is a browsing event. Clicks carry no uniqueness constraint and may
// reference SKUs that were never ordered.
type Click struct {
	UserID      string    `json:"user_ID" db:"user_ID"`
	SkuID       string    `json:"sku_ID" db:"sku_ID"`
	RequestTime time.Time `json:"request_time" db:"request_time"`
}

// User is a registered customer. Plus is 1 for loyalty-program members and
// 0 otherwise. The demographic fields come along from the raw extract for
// the PLUS imputation model; the store keeps user_ID and plus only.
type User struct {
	UserID string `json:"user_ID" db:"user_ID"`
	Plus   int    `json:"plus" db:"plus"`

	UserLevel     string `json:"user_level,omitempty" db:"-"`
	Gender        string `json:"gender,omitempty" db:"-"`
	Education     string `json:"education,omitempty" db:"-"`
	PurchasePower string `json:"purchase_power,omitempty" db:"-"`
	CityLevel     string `json:"city_level,omitempty" db:"-"`
}
