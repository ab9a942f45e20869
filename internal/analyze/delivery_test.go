package analyze

import (
	"testing"
	"time"

	"github.com/matthieukhl/ordersight/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(hour, min int) time.Time {
	return time.Date(2020, 3, 1, hour, min, 0, 0, time.UTC)
}

var testParams = DatasetParams{PromiseCode: "1", MaxDeliveryHours: 72}

func TestBuildDeliveryDatasetFiltersAndJoins(t *testing.T) {
	orders := []models.Order{
		{OrderID: "O000000001", OrderTime: day(9, 30), Promise: "1"},
		{OrderID: "O000000001", OrderTime: day(9, 30), Promise: "1"}, // second line item, same order
		{OrderID: "O000000002", OrderTime: day(10, 0), Promise: "2"}, // wrong promise code
		{OrderID: "O000000003", OrderTime: day(11, 0), Promise: "1"}, // no delivery on record
	}
	deliveries := []models.Delivery{
		{OrderID: "O000000001", PackageID: "P000000001", ArrTime: day(9, 30).Add(20 * time.Hour)},
		{OrderID: "O000000002", PackageID: "P000000002", ArrTime: day(10, 0).Add(5 * time.Hour)},
	}

	observations := BuildDeliveryDataset(orders, deliveries, testParams)
	require.Len(t, observations, 1)

	o := observations[0]
	assert.Equal(t, "O000000001", o.OrderID)
	assert.InDelta(t, 20.0, o.DeliveryTime, 1e-9)
	assert.InDelta(t, 9.5, o.OrderTimeOfDay, 1e-9)
}

func TestBuildDeliveryDatasetUsesLastArrivingPackage(t *testing.T) {
	orders := []models.Order{
		{OrderID: "O000000001", OrderTime: day(8, 0), Promise: "1"},
	}
	deliveries := []models.Delivery{
		{OrderID: "O000000001", PackageID: "P000000001", ArrTime: day(8, 0).Add(30 * time.Hour)},
		{OrderID: "O000000001", PackageID: "P000000002", ArrTime: day(8, 0).Add(12 * time.Hour)},
	}

	observations := BuildDeliveryDataset(orders, deliveries, testParams)
	require.Len(t, observations, 1)
	assert.InDelta(t, 30.0, observations[0].DeliveryTime, 1e-9)
}

func TestBuildDeliveryDatasetBoundsDeliveryTime(t *testing.T) {
	orders := []models.Order{
		{OrderID: "O000000001", OrderTime: day(8, 0), Promise: "1"},
		{OrderID: "O000000002", OrderTime: day(8, 0), Promise: "1"},
		{OrderID: "O000000003", OrderTime: day(8, 0), Promise: "1"},
	}
	deliveries := []models.Delivery{
		// Past the 72-hour bound.
		{OrderID: "O000000001", PackageID: "P000000001", ArrTime: day(8, 0).Add(100 * time.Hour)},
		// Arrival before the order: bad timestamps, dropped.
		{OrderID: "O000000002", PackageID: "P000000002", ArrTime: day(8, 0).Add(-2 * time.Hour)},
		// Exactly at the bound is kept.
		{OrderID: "O000000003", PackageID: "P000000003", ArrTime: day(8, 0).Add(72 * time.Hour)},
	}

	observations := BuildDeliveryDataset(orders, deliveries, testParams)
	require.Len(t, observations, 1)
	assert.Equal(t, "O000000003", observations[0].OrderID)
}

func TestDescribe(t *testing.T) {
	observations := []DeliveryObservation{
		{DeliveryTime: 10},
		{DeliveryTime: 20},
		{DeliveryTime: 30},
	}

	summary, err := Describe(observations)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Count)
	assert.InDelta(t, 20.0, summary.Mean, 1e-9)
	assert.InDelta(t, 20.0, summary.Median, 1e-9)

	_, err = Describe(nil)
	require.Error(t, err)
}
