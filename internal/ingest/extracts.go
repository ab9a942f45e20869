package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/matthieukhl/ordersight/internal/models"
)

// The raw JD extracts carry many more columns than the store keeps. The
// readers look columns up by header name and parse only what the schema and
// the analysis pipeline need, leaving everything else on the floor.

// ReadOrders parses the order extract into typed line-item records.
func ReadOrders(path string) ([]models.Order, error) {
	var orders []models.Order

	err := readExtract(path, []string{"order_ID", "sku_ID", "user_ID", "order_time", "quantity", "final_unit_price", "promise"},
		func(row func(column string) string) error {
			orderTime, err := parseTime(row("order_time"))
			if err != nil {
				return err
			}
			quantity, err := strconv.Atoi(row("quantity"))
			if err != nil {
				return fmt.Errorf("bad quantity %q: %w", row("quantity"), err)
			}
			price, err := strconv.ParseFloat(row("final_unit_price"), 64)
			if err != nil {
				return fmt.Errorf("bad final_unit_price %q: %w", row("final_unit_price"), err)
			}

			orders = append(orders, models.Order{
				OrderID:        row("order_ID"),
				SkuID:          row("sku_ID"),
				UserID:         row("user_ID"),
				OrderTime:      orderTime,
				Quantity:       quantity,
				FinalUnitPrice: price,
				Promise:        row("promise"),
			})
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("failed to read order extract: %w", err)
	}

	return orders, nil
}

// ReadDeliveries parses the delivery extract into typed package records.
func ReadDeliveries(path string) ([]models.Delivery, error) {
	var deliveries []models.Delivery

	err := readExtract(path, []string{"order_ID", "package_ID", "ship_out_time", "arr_time"},
		func(row func(column string) string) error {
			shipOut, err := parseTime(row("ship_out_time"))
			if err != nil {
				return err
			}
			arr, err := parseTime(row("arr_time"))
			if err != nil {
				return err
			}

			deliveries = append(deliveries, models.Delivery{
				OrderID:     row("order_ID"),
				PackageID:   row("package_ID"),
				ShipOutTime: shipOut,
				ArrTime:     arr,
			})
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("failed to read delivery extract: %w", err)
	}

	return deliveries, nil
}

// ReadClicks parses the click extract. Sentinel rows with an unknown user
// are kept here; the loader decides what to drop.
func ReadClicks(path string) ([]models.Click, error) {
	var clicks []models.Click

	err := readExtract(path, []string{"user_ID", "sku_ID", "request_time"},
		func(row func(column string) string) error {
			requestTime, err := parseTime(row("request_time"))
			if err != nil {
				return err
			}

			clicks = append(clicks, models.Click{
				UserID:      row("user_ID"),
				SkuID:       row("sku_ID"),
				RequestTime: requestTime,
			})
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("failed to read click extract: %w", err)
	}

	return clicks, nil
}

// ReadUsers parses the user extract, demographics included.
func ReadUsers(path string) ([]models.User, error) {
	var users []models.User

	err := readExtract(path, []string{"user_ID", "plus", "user_level", "gender", "education", "purchase_power", "city_level"},
		func(row func(column string) string) error {
			plus, err := strconv.Atoi(row("plus"))
			if err != nil {
				return fmt.Errorf("bad plus flag %q: %w", row("plus"), err)
			}

			users = append(users, models.User{
				UserID:        row("user_ID"),
				Plus:          plus,
				UserLevel:     row("user_level"),
				Gender:        row("gender"),
				Education:     row("education"),
				PurchasePower: row("purchase_power"),
				CityLevel:     row("city_level"),
			})
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("failed to read user extract: %w", err)
	}

	return users, nil
}

// readExtract streams a CSV extract, resolving the required columns by
// header name and invoking fn once per data row.
func readExtract(path string, columns []string, fn func(row func(column string) string) error) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	reader := csv.NewReader(file)

	header, err := reader.Read()
	if err != nil {
		return fmt.Errorf("failed to read header: %w", err)
	}

	index := make(map[string]int, len(columns))
	for _, column := range columns {
		found := false
		for i, name := range header {
			if name == column {
				index[column] = i
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("extract is missing column %q", column)
		}
	}

	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("line %d: %w", line+1, err)
		}
		line++

		row := func(column string) string {
			return record[index[column]]
		}
		if err := fn(row); err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
	}
}

func parseTime(value string) (time.Time, error) {
	t, err := time.Parse(models.TimeLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad timestamp %q: %w", value, err)
	}
	return t, nil
}
