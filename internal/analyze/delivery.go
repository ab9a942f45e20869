package analyze

import (
	"fmt"
	"time"

	"github.com/matthieukhl/ordersight/internal/models"
	"github.com/montanaflynn/stats"
)

// DeliveryObservation is one order in the delivery-time regression dataset.
type DeliveryObservation struct {
	OrderID        string
	OrderTime      time.Time
	DeliveryTime   float64 // hours from order placement to final arrival
	OrderTimeOfDay float64 // fractional hour of day the order was placed
}

// DatasetParams bounds the regression dataset.
type DatasetParams struct {
	PromiseCode      string  // delivery-promise code to keep
	MaxDeliveryHours float64 // drop deliveries slower than this
}

// BuildDeliveryDataset joins raw orders to raw deliveries and derives the
// regression variables. Orders are filtered to the configured promise code
// and collapsed to one row per order; an order shipping as several packages
// is timed by its last-arriving package. Deliveries outside
// (0, MaxDeliveryHours] are dropped. Output preserves extract order.
func BuildDeliveryDataset(orders []models.Order, deliveries []models.Delivery, params DatasetParams) []DeliveryObservation {
	lastArrival := make(map[string]time.Time, len(deliveries))
	for _, d := range deliveries {
		if arr, ok := lastArrival[d.OrderID]; !ok || d.ArrTime.After(arr) {
			lastArrival[d.OrderID] = d.ArrTime
		}
	}

	seen := make(map[string]bool, len(orders))
	var observations []DeliveryObservation
	for _, o := range orders {
		if o.Promise != params.PromiseCode || seen[o.OrderID] {
			continue
		}
		seen[o.OrderID] = true

		arr, ok := lastArrival[o.OrderID]
		if !ok {
			continue // no delivery on record, standard inner-join exclusion
		}

		deliveryTime := arr.Sub(o.OrderTime).Hours()
		if deliveryTime <= 0 || deliveryTime > params.MaxDeliveryHours {
			continue
		}

		observations = append(observations, DeliveryObservation{
			OrderID:        o.OrderID,
			OrderTime:      o.OrderTime,
			DeliveryTime:   deliveryTime,
			OrderTimeOfDay: float64(o.OrderTime.Hour()) + float64(o.OrderTime.Minute())/60,
		})
	}

	return observations
}

// TimesOfDay extracts the regressor column.
func TimesOfDay(observations []DeliveryObservation) []float64 {
	xs := make([]float64, len(observations))
	for i, o := range observations {
		xs[i] = o.OrderTimeOfDay
	}
	return xs
}

// DeliveryTimes extracts the response column.
func DeliveryTimes(observations []DeliveryObservation) []float64 {
	ys := make([]float64, len(observations))
	for i, o := range observations {
		ys[i] = o.DeliveryTime
	}
	return ys
}

// DeliverySummary holds descriptive statistics of the delivery times.
type DeliverySummary struct {
	Count  int
	Mean   float64
	Median float64
	StdDev float64
	P90    float64
}

// Describe computes descriptive statistics over the dataset's delivery
// times.
func Describe(observations []DeliveryObservation) (*DeliverySummary, error) {
	if len(observations) == 0 {
		return nil, fmt.Errorf("empty dataset")
	}

	data := stats.Float64Data(DeliveryTimes(observations))

	mean, err := data.Mean()
	if err != nil {
		return nil, err
	}
	median, err := data.Median()
	if err != nil {
		return nil, err
	}
	stddev, err := data.StandardDeviation()
	if err != nil {
		return nil, err
	}
	p90, err := data.Percentile(90)
	if err != nil {
		return nil, err
	}

	return &DeliverySummary{
		Count:  len(observations),
		Mean:   mean,
		Median: median,
		StdDev: stddev,
		P90:    p90,
	}, nil
}
